// Package resolver turns NFT metadata references into a working image URL.
//
// The metadata-declared image is authoritative when the document is reachable.
// Guessing the image path from the document path is a fallback for when it is
// not. Every network step walks the gateways in order and stops at the first
// success; exhausting every option yields "unavailable", never an error.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"xdao.co/cnftmint/cidutil"
	"xdao.co/cnftmint/contentref"
	"xdao.co/cnftmint/gateway"
)

// Fetcher performs gateway requests. *gateway.Client implements it.
type Fetcher interface {
	// Fetch returns the body of a successful GET.
	Fetch(ctx context.Context, url string) ([]byte, error)
	// Probe reports existence without downloading the body.
	Probe(ctx context.Context, url string) error
}

// Image is a resolved image location. Tried is diagnostic only.
type Image struct {
	HTTPURL string   `json:"httpUrl"`
	Tried   []string `json:"triedUrls"`
}

type Resolver struct {
	fetch Fetcher
	aps   gateway.AccessPoints
	exts  []string
	log   *zap.Logger
}

// New constructs a Resolver over f.
func New(f Fetcher, opts Options) (*Resolver, error) {
	if f == nil {
		return nil, errors.New("resolver: nil fetcher")
	}
	if err := opts.AccessPoints.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	return &Resolver{
		fetch: f,
		aps:   append(gateway.AccessPoints(nil), opts.AccessPoints...),
		exts:  append([]string(nil), opts.Extensions...),
		log:   opts.Logger,
	}, nil
}

// AccessPoints returns a copy of the configured gateways.
func (r *Resolver) AccessPoints() gateway.AccessPoints {
	return append(gateway.AccessPoints(nil), r.aps...)
}

// ResolveImage resolves the image for the metadata document at metadataRef.
//
// ok is false when no candidate exists at any gateway; callers should render
// a placeholder. A later display failure of the returned URL calls for a fresh
// ResolveImage, not for moving on to the next gateway.
func (r *Resolver) ResolveImage(ctx context.Context, metadataRef string) (Image, bool) {
	ref, err := contentref.Parse(metadataRef)
	if err != nil {
		r.log.Warn("image unresolved: bad metadata reference", zap.String("ref", metadataRef), zap.Error(err))
		return Image{}, false
	}

	var tried []string
	doc, hit, _ := r.FetchDocument(ctx, ref)
	tried = append(tried, hit.Tried...)

	for _, cand := range r.Candidates(ref, doc) {
		if ctx.Err() != nil {
			break
		}
		var urls []string
		if contentref.IsHTTP(cand) {
			urls = []string{cand}
		} else {
			urls = r.aps.URLs(cand)
		}
		h, ok := gateway.First(ctx, urls, r.fetch.Probe)
		tried = append(tried, h.Tried...)
		if ok {
			r.log.Debug("image resolved",
				zap.String("ref", metadataRef),
				zap.String("url", h.URL),
				zap.Int("attempts", len(tried)))
			return Image{HTTPURL: h.URL, Tried: tried}, true
		}
	}

	r.log.Warn("image unresolved",
		zap.String("ref", metadataRef),
		zap.Int("attempts", len(tried)))
	return Image{Tried: tried}, false
}

// FetchDocument retrieves and parses the metadata document at ref from the
// first gateway that serves a JSON object.
func (r *Resolver) FetchDocument(ctx context.Context, ref contentref.Ref) (*Document, gateway.Hit, bool) {
	var doc *Document
	hit, ok := gateway.First(ctx, r.aps.URLs(ref.Path()), func(ctx context.Context, url string) error {
		b, err := r.fetch.Fetch(ctx, url)
		if err != nil {
			r.log.Debug("metadata document not served",
				zap.String("url", url),
				zap.Bool("absent", gateway.IsNotFound(err)),
				zap.Error(err))
			return err
		}
		if err := r.verify(ref, b); err != nil {
			r.log.Warn("gateway served mismatching bytes", zap.String("url", url), zap.Error(err))
			return err
		}
		d, err := ParseDocument(b)
		if err != nil {
			return fmt.Errorf("resolver: parse %s: %w", url, err)
		}
		doc = d
		return nil
	})
	if !ok {
		return nil, hit, false
	}
	return doc, hit, true
}

// Candidates lists image locations to probe, in order: the document's
// declared image (if any), then ref with its extension replaced by each
// configured image extension. Duplicates are dropped, as is the document
// path itself. A reference without a sub-path has nothing to substitute.
//
// Entries are bare content paths, or absolute http(s) URLs when the document
// declares one.
func (r *Resolver) Candidates(ref contentref.Ref, doc *Document) []string {
	var out []string
	// The document itself is never an image candidate.
	seen := map[string]struct{}{ref.Path(): {}}
	add := func(s string) {
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	if declared, ok := doc.ImageRef(); ok {
		if contentref.IsHTTP(declared) {
			add(declared)
		} else if p, err := contentref.Parse(declared); err == nil {
			add(p.Path())
		}
	}
	if ref.Rest == "" {
		return out
	}
	for _, ext := range r.exts {
		add(ref.WithExt(ext).Path())
	}
	return out
}

// verify checks bytes served for a bare raw-codec CID. Other references are
// not locally verifiable and pass.
func (r *Resolver) verify(ref contentref.Ref, b []byte) error {
	if ref.Rest != "" {
		return nil
	}
	id, ok := ref.CID()
	if !ok || !cidutil.Verifiable(id) {
		return nil
	}
	if err := cidutil.Verify(id, b); err != nil {
		return fmt.Errorf("%w: %v", gateway.ErrCIDMismatch, err)
	}
	return nil
}
