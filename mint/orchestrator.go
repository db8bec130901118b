// Package mint orchestrates compressed-NFT mint submissions.
//
// A Mint call picks a variant, submits the collection-aware request with the
// collection left unverified, normalizes whatever the sender returns into a
// signature, and classifies failures. Collection and authority failures earn
// exactly one retry with the no-collection request; everything else is
// reported as classified.
package mint

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"xdao.co/cnftmint/metrics"
	"xdao.co/cnftmint/signature"
	"xdao.co/cnftmint/wallet"
)

// DefaultDebounce is the minimum spacing between Mint invocations.
const DefaultDebounce = 3000 * time.Millisecond

// Submitter sends a request and waits for confirmation.
//
// The returned Result may have any shape signature.Normalize understands. A
// failure's Error() text is classified, so implementations should preserve
// the program's error message.
type Submitter interface {
	Submit(ctx context.Context, req Request) (signature.Result, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, req Request) (signature.Result, error)

func (f SubmitterFunc) Submit(ctx context.Context, req Request) (signature.Result, error) {
	return f(ctx, req)
}

// Settings is the read-only configuration of an Orchestrator.
type Settings struct {
	MerkleTree     wallet.Identity
	CollectionMint wallet.Identity
	Variants       []Variant
	// ExplorerBase is the block explorer origin, without trailing slash.
	ExplorerBase string
	// Cluster is the explorer's network tag.
	Cluster  string
	Debounce time.Duration
}

func (s Settings) Validate() error {
	if s.MerkleTree.IsZero() {
		return errors.New("mint: merkle tree is required")
	}
	if s.CollectionMint.IsZero() {
		return errors.New("mint: collection mint is required")
	}
	if len(s.Variants) == 0 {
		return errors.New("mint: at least one variant is required")
	}
	for _, v := range s.Variants {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	if s.ExplorerBase == "" || s.Cluster == "" {
		return errors.New("mint: explorer base and cluster are required")
	}
	return nil
}

// Result is a confirmed mint.
type Result struct {
	Signature   string `json:"signature"`
	URI         string `json:"uri"`
	ExplorerURL string `json:"explorerUrl"`
}

// ExplorerURL renders the explorer link for sig.
func ExplorerURL(base, cluster, sig string) string {
	return fmt.Sprintf("%s/tx/%s?cluster=%s", base, url.PathEscape(sig), url.QueryEscape(cluster))
}

// Phase is the state of one Mint call's attempt machine.
type Phase uint8

const (
	PhasePrimary Phase = iota
	PhaseAlternateRetry
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePrimary:
		return "primary"
	case PhaseAlternateRetry:
		return "alternate"
	case PhaseSucceeded:
		return "succeeded"
	default:
		return "failed"
	}
}

// Shape returns the request shape submitted in p.
func (p Phase) Shape() Shape {
	if p == PhaseAlternateRetry {
		return ShapeNoCollection
	}
	return ShapeCollection
}

// Next is the transition taken when the attempt made in p fails with kind.
func Next(p Phase, kind Kind) Phase {
	if p == PhasePrimary && ShouldRetry(kind) {
		return PhaseAlternateRetry
	}
	return PhaseFailed
}

type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	// Now replaces time.Now.
	Now func() time.Time
	// Pick returns an index in [0, n). It replaces a uniform random choice.
	Pick func(n int) int
}

type Orchestrator struct {
	settings  Settings
	wallet    wallet.Provider
	submitter Submitter

	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	pick    func(n int) int

	// last holds the UnixNano of the last admitted invocation, 0 if none.
	last atomic.Int64
}

// New returns an Orchestrator. Settings are copied.
func New(settings Settings, w wallet.Provider, s Submitter, opts Options) (*Orchestrator, error) {
	if w == nil {
		return nil, errors.New("mint: nil wallet provider")
	}
	if s == nil {
		return nil, errors.New("mint: nil submitter")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if settings.Debounce <= 0 {
		settings.Debounce = DefaultDebounce
	}
	settings.Variants = append([]Variant(nil), settings.Variants...)

	o := &Orchestrator{
		settings:  settings,
		wallet:    w,
		submitter: s,
		log:       opts.Logger,
		metrics:   opts.Metrics,
		now:       opts.Now,
		pick:      opts.Pick,
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.pick == nil {
		o.pick = rand.Intn
	}
	return o, nil
}

// Variants returns a copy of the configured variants.
func (o *Orchestrator) Variants() []Variant {
	return append([]Variant(nil), o.settings.Variants...)
}

// Mint runs one mint. Errors are *Error.
func (o *Orchestrator) Mint(ctx context.Context) (Result, error) {
	if !o.admit(o.now()) {
		o.log.Info("mint rejected: too soon after previous attempt")
		o.metrics.MintAttempt("rejected", string(KindDebounceRejected))
		return Result{}, newError(KindDebounceRejected, "", nil)
	}

	owner, ok := o.wallet.CurrentIdentity()
	if !o.wallet.IsConnected() || !ok || owner.IsZero() {
		o.log.Info("mint rejected: wallet not connected")
		o.metrics.MintAttempt("rejected", string(KindConnectionRequired))
		return Result{}, newError(KindConnectionRequired, "", nil)
	}

	v := o.settings.Variants[o.pick(len(o.settings.Variants))]
	log := o.log.With(
		zap.String("attempt", uuid.NewString()),
		zap.String("owner", owner.String()),
		zap.String("uri", v.MetadataURI),
	)

	var original *Error
	for phase := PhasePrimary; ; {
		req := Build(phase.Shape(), owner, o.settings.MerkleTree, o.settings.CollectionMint, v)
		log.Debug("submitting mint", zap.Stringer("phase", phase), zap.String("shape", string(req.Shape)))

		res, err := o.submit(ctx, req)
		if err == nil {
			o.metrics.MintAttempt(phase.String(), "success")
			log.Info("mint confirmed",
				zap.Stringer("phase", phase),
				zap.String("signature", res.Signature),
				zap.String("explorer", res.ExplorerURL))
			return res, nil
		}
		o.metrics.MintAttempt(phase.String(), string(err.Kind))
		log.Warn("mint attempt failed",
			zap.Stringer("phase", phase),
			zap.String("kind", string(err.Kind)),
			zap.String("raw", err.Raw))

		if original == nil {
			original = err
		}
		phase = Next(phase, err.Kind)
		if phase == PhaseFailed {
			return Result{}, original
		}
	}
}

func (o *Orchestrator) submit(ctx context.Context, req Request) (Result, *Error) {
	raw, err := o.submitter.Submit(ctx, req)
	if err != nil {
		msg := err.Error()
		return Result{}, newError(Classify(msg), msg, err)
	}
	sig := signature.Normalize(raw)
	if sig == "" {
		return Result{}, newError(KindMissingSignature, "", nil)
	}
	return Result{
		Signature:   sig,
		URI:         req.Metadata.URI,
		ExplorerURL: ExplorerURL(o.settings.ExplorerBase, o.settings.Cluster, sig),
	}, nil
}

// admit records now as the latest invocation unless the previous admitted one
// is closer than the debounce window. It never blocks.
func (o *Orchestrator) admit(now time.Time) bool {
	ts := now.UnixNano()
	for {
		last := o.last.Load()
		if last != 0 && ts-last < int64(o.settings.Debounce) {
			return false
		}
		if o.last.CompareAndSwap(last, ts) {
			return true
		}
	}
}
