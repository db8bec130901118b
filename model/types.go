package model

import (
	"xdao.co/cnftmint/mint"
	"xdao.co/cnftmint/resolver"
	"xdao.co/cnftmint/wallet"
)

type Creator struct {
	Address  string `json:"address"`
	Verified bool   `json:"verified"`
	Share    uint8  `json:"share"`
}

type Variant struct {
	Index    int       `json:"index"`
	Name     string    `json:"name"`
	Symbol   string    `json:"symbol"`
	URI      string    `json:"uri"`
	Creators []Creator `json:"creators"`
}

// Image is a resolution outcome. A false Resolved means "show a placeholder".
type Image struct {
	Resolved  bool     `json:"resolved"`
	HTTPURL   string   `json:"httpUrl,omitempty"`
	TriedURLs []string `json:"triedUrls"`
}

type Wallet struct {
	Connected bool   `json:"connected"`
	Identity  string `json:"identity,omitempty"`
}

type MintResult struct {
	Signature   string `json:"signature"`
	URI         string `json:"uri"`
	ExplorerURL string `json:"explorerUrl"`
	Image       *Image `json:"image,omitempty"`
}

func VariantsFrom(vs []mint.Variant) []Variant {
	out := make([]Variant, 0, len(vs))
	for i, v := range vs {
		cs := make([]Creator, 0, len(v.Creators))
		for _, c := range v.Creators {
			cs = append(cs, Creator{Address: c.Address.String(), Verified: c.Verified, Share: c.Share})
		}
		out = append(out, Variant{Index: i, Name: v.Name, Symbol: v.Symbol, URI: v.MetadataURI, Creators: cs})
	}
	return out
}

func ImageFrom(img resolver.Image, ok bool) Image {
	tried := img.Tried
	if tried == nil {
		tried = []string{}
	}
	if !ok {
		return Image{Resolved: false, TriedURLs: tried}
	}
	return Image{Resolved: true, HTTPURL: img.HTTPURL, TriedURLs: tried}
}

func WalletFrom(p wallet.Provider) Wallet {
	id, ok := p.CurrentIdentity()
	if !p.IsConnected() || !ok {
		return Wallet{}
	}
	return Wallet{Connected: true, Identity: id.String()}
}

func MintResultFrom(r mint.Result) MintResult {
	return MintResult{Signature: r.Signature, URI: r.URI, ExplorerURL: r.ExplorerURL}
}
