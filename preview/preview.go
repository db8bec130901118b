// Package preview holds display-side state for image tiles.
//
// A Tile owns one metadata reference. Load resolves it from scratch; a
// display failure of the resolved URL calls ReportLoadFailure, which also
// resolves from scratch because the failure may be specific to the candidate
// rather than to the gateway. Close tears the tile down: probes already in
// flight run to completion, but their results are dropped.
package preview

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"xdao.co/cnftmint/resolver"
)

// ImageResolver is satisfied by *resolver.Resolver.
type ImageResolver interface {
	ResolveImage(ctx context.Context, metadataRef string) (resolver.Image, bool)
}

// State is what a tile renders. Resolved=false means placeholder.
type State struct {
	Ref      string         `json:"ref"`
	Image    resolver.Image `json:"image"`
	Resolved bool           `json:"resolved"`
	// Generation increases with every applied resolution.
	Generation uint64 `json:"generation"`
}

type Tile struct {
	res   ImageResolver
	ref   string
	apply func(State)

	gen    atomic.Uint64
	closed atomic.Bool

	// applyMu serializes acceptance and the apply callback; Close takes it
	// so no callback runs once Close has returned.
	applyMu sync.Mutex

	mu    sync.Mutex
	state State
}

// NewTile returns a tile for ref. apply, if non-nil, receives every state
// the tile accepts; it is never called after Close.
func NewTile(res ImageResolver, ref string, apply func(State)) *Tile {
	return &Tile{res: res, ref: ref, apply: apply, state: State{Ref: ref}}
}

// Load resolves the tile's reference and applies the result unless the tile
// was closed or a newer Load started meanwhile. applied reports which.
func (t *Tile) Load(ctx context.Context) (st State, applied bool) {
	gen := t.gen.Add(1)
	img, ok := t.res.ResolveImage(ctx, t.ref)
	st = State{Ref: t.ref, Image: img, Resolved: ok, Generation: gen}

	if t.closed.Load() || t.gen.Load() != gen {
		return st, false
	}
	t.applyMu.Lock()
	defer t.applyMu.Unlock()
	if t.closed.Load() || t.gen.Load() != gen {
		return st, false
	}
	t.mu.Lock()
	t.state = st
	t.mu.Unlock()

	if t.apply != nil {
		t.apply(st)
	}
	return st, true
}

// ReportLoadFailure handles a display-time failure of the current URL by
// resolving again from the metadata document.
func (t *Tile) ReportLoadFailure(ctx context.Context) (State, bool) {
	return t.Load(ctx)
}

// State returns the last applied state.
func (t *Tile) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Close tears the tile down. It does not cancel in-flight resolutions, but
// waits for a running apply callback to return. apply must not call Close.
func (t *Tile) Close() {
	t.applyMu.Lock()
	t.closed.Store(true)
	t.applyMu.Unlock()
}

// ResolveAll resolves refs concurrently, at most limit at a time (0 means no
// limit). Each resolution is itself sequential. The result is in refs order.
func ResolveAll(ctx context.Context, res ImageResolver, refs []string, limit int) []State {
	out := make([]State, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			img, ok := res.ResolveImage(gctx, ref)
			out[i] = State{Ref: ref, Image: img, Resolved: ok, Generation: 1}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
