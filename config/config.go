// Package config holds the compiled-in deployment constants and an optional
// TOML overlay for the command-line tools.
//
// Example overlay:
//
//	[gateway]
//	access_points = ["https://ipfs.io/ipfs/", "https://dweb.link/ipfs/"]
//	timeout_ms = 5000
//
//	[mint]
//	cluster = "devnet"
//
//	[submitter]
//	backend = "grpc"
//	options = { grpc-target = "127.0.0.1:7600" }
//
// Values absent from the file keep their defaults. A non-empty list replaces
// the default list rather than extending it.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"xdao.co/cnftmint/gateway"
	"xdao.co/cnftmint/mint"
	"xdao.co/cnftmint/resolver"
	"xdao.co/cnftmint/wallet"
)

type Config struct {
	Gateway   Gateway   `toml:"gateway"`
	Mint      Mint      `toml:"mint"`
	Submitter Submitter `toml:"submitter"`
	Logging   Logging   `toml:"logging"`
	HTTP      HTTP      `toml:"http"`
}

type Gateway struct {
	AccessPoints     []string `toml:"access_points"`
	ImageExtensions  []string `toml:"image_extensions"`
	TimeoutMillis    int      `toml:"timeout_ms"`
	MaxDocumentBytes int64    `toml:"max_document_bytes"`
}

type Mint struct {
	MerkleTree     wallet.Identity `toml:"merkle_tree"`
	CollectionMint wallet.Identity `toml:"collection_mint"`
	ExplorerBase   string          `toml:"explorer_base"`
	Cluster        string          `toml:"cluster"`
	DebounceMillis int             `toml:"debounce_ms"`
	Variants       []mint.Variant  `toml:"variants"`
}

// Submitter selects a submitter backend by registry name. Options keys mirror
// the backend's flag names.
type Submitter struct {
	Backend string            `toml:"backend"`
	Options map[string]string `toml:"options"`
}

type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type HTTP struct {
	Listen string `toml:"listen"`
}

// Deployment constants.
var (
	defaultTree       = wallet.MustParseIdentity("EpmQQngjpkqNpfrriw5JyXYbkUP6i1ph9h31vR2jEdvW")
	defaultCollection = wallet.MustParseIdentity("CPsXpcmo5B1os7Rr9FPNDj6oTwoCZqQ4S8QJAiQDJTSo")
	defaultCreator    = wallet.MustParseIdentity("44P1KCTk7dqLkZNFCdrYZ352Eps7bibSDqkpMYMLM3fG")
)

const (
	variantRoot = "ipfs://bafybeifikwvqllaf2yzonmm4seorkhlkshjtcqopog24rq75einzf6hp4a/"
	variantName = "Subscriber Giveaway"
	variantSym  = "SUB"
)

// Default returns the compiled-in configuration.
func Default() Config {
	variants := make([]mint.Variant, 0, 3)
	for _, f := range []string{"variant-a.json", "variant-b.json", "variant-c.json"} {
		variants = append(variants, mint.Variant{
			Name:        variantName,
			Symbol:      variantSym,
			MetadataURI: variantRoot + f,
			Creators:    []mint.Creator{{Address: defaultCreator, Verified: true, Share: 100}},
		})
	}
	return Config{
		Gateway: Gateway{
			AccessPoints: []string{
				"https://ipfs.io/ipfs/",
				"https://cloudflare-ipfs.com/ipfs/",
				"https://gateway.pinata.cloud/ipfs/",
			},
			ImageExtensions:  append([]string(nil), resolver.DefaultExtensions...),
			TimeoutMillis:    int(gateway.DefaultTimeout / time.Millisecond),
			MaxDocumentBytes: gateway.DefaultMaxDocumentBytes,
		},
		Mint: Mint{
			MerkleTree:     defaultTree,
			CollectionMint: defaultCollection,
			ExplorerBase:   "https://explorer.solana.com",
			Cluster:        "devnet",
			DebounceMillis: int(mint.DefaultDebounce / time.Millisecond),
			Variants:       variants,
		},
		Submitter: Submitter{Backend: "dryrun"},
		Logging:   Logging{Level: "info", Format: "console"},
		HTTP:      HTTP{Listen: "127.0.0.1:8080"},
	}
}

// LoadFile overlays the TOML file at path onto Default and validates the
// result.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, errors.New("config: empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	var file Config
	if err := toml.Unmarshal(b, &file); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.overlay(file)
	return cfg, cfg.Validate()
}

func (c *Config) overlay(f Config) {
	if len(f.Gateway.AccessPoints) > 0 {
		c.Gateway.AccessPoints = f.Gateway.AccessPoints
	}
	if len(f.Gateway.ImageExtensions) > 0 {
		c.Gateway.ImageExtensions = f.Gateway.ImageExtensions
	}
	if f.Gateway.TimeoutMillis != 0 {
		c.Gateway.TimeoutMillis = f.Gateway.TimeoutMillis
	}
	if f.Gateway.MaxDocumentBytes != 0 {
		c.Gateway.MaxDocumentBytes = f.Gateway.MaxDocumentBytes
	}

	if !f.Mint.MerkleTree.IsZero() {
		c.Mint.MerkleTree = f.Mint.MerkleTree
	}
	if !f.Mint.CollectionMint.IsZero() {
		c.Mint.CollectionMint = f.Mint.CollectionMint
	}
	if f.Mint.ExplorerBase != "" {
		c.Mint.ExplorerBase = f.Mint.ExplorerBase
	}
	if f.Mint.Cluster != "" {
		c.Mint.Cluster = f.Mint.Cluster
	}
	if f.Mint.DebounceMillis != 0 {
		c.Mint.DebounceMillis = f.Mint.DebounceMillis
	}
	if len(f.Mint.Variants) > 0 {
		c.Mint.Variants = f.Mint.Variants
	}

	if f.Submitter.Backend != "" {
		c.Submitter.Backend = f.Submitter.Backend
	}
	if len(f.Submitter.Options) > 0 {
		c.Submitter.Options = f.Submitter.Options
	}
	if f.Logging.Level != "" {
		c.Logging.Level = f.Logging.Level
	}
	if f.Logging.Format != "" {
		c.Logging.Format = f.Logging.Format
	}
	if f.HTTP.Listen != "" {
		c.HTTP.Listen = f.HTTP.Listen
	}
}

func (c Config) Validate() error {
	if err := gateway.AccessPoints(c.Gateway.AccessPoints).Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Gateway.TimeoutMillis < 0 {
		return errors.New("config: gateway.timeout_ms must not be negative")
	}
	if c.Mint.DebounceMillis < 0 {
		return errors.New("config: mint.debounce_ms must not be negative")
	}
	if err := c.MintSettings().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Submitter.Backend == "" {
		return errors.New("config: submitter.backend is required")
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("config: invalid logging.format %q", c.Logging.Format)
	}
	return nil
}

// MintSettings projects the mint section for mint.New.
func (c Config) MintSettings() mint.Settings {
	return mint.Settings{
		MerkleTree:     c.Mint.MerkleTree,
		CollectionMint: c.Mint.CollectionMint,
		Variants:       append([]mint.Variant(nil), c.Mint.Variants...),
		ExplorerBase:   c.Mint.ExplorerBase,
		Cluster:        c.Mint.Cluster,
		Debounce:       time.Duration(c.Mint.DebounceMillis) * time.Millisecond,
	}
}

// ResolverOptions projects the gateway section for resolver.New. The logger
// is left for the caller.
func (c Config) ResolverOptions() resolver.Options {
	return resolver.Options{
		AccessPoints: append(gateway.AccessPoints(nil), c.Gateway.AccessPoints...),
		Extensions:   append([]string(nil), c.Gateway.ImageExtensions...),
	}
}

// ClientOptions projects the gateway section for gateway.NewClient.
func (c Config) ClientOptions() gateway.Options {
	return gateway.Options{
		Timeout:          time.Duration(c.Gateway.TimeoutMillis) * time.Millisecond,
		MaxDocumentBytes: c.Gateway.MaxDocumentBytes,
	}
}
