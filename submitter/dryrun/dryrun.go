// Package dryrun is an offline submitter. It never touches a network and
// derives a stable 64-byte signature from the request bytes, which makes it
// useful for demos and for exercising the orchestrator end to end.
package dryrun

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"

	"xdao.co/cnftmint/mint"
	"xdao.co/cnftmint/signature"
	"xdao.co/cnftmint/submitter"
)

// Result shapes the submitter can answer with.
const (
	ShapeString = "string"
	ShapePair   = "pair"
	ShapeObject = "object"
	ShapeBytes  = "bytes"
)

type Submitter struct {
	// Shape selects the result shape. Empty means ShapeString.
	Shape string
	// Fail, when set, is returned as the error text for every request.
	Fail string
	// FailCollection is returned only for collection-shaped requests.
	FailCollection string
}

var _ mint.Submitter = (*Submitter)(nil)

// Sign returns the deterministic signature bytes for req.
func Sign(req mint.Request) ([]byte, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	sum := sha3.Sum512(b)
	return sum[:], nil
}

func (s *Submitter) Submit(ctx context.Context, req mint.Request) (signature.Result, error) {
	if err := ctx.Err(); err != nil {
		return signature.Result{}, err
	}
	if err := req.Validate(); err != nil {
		return signature.Result{}, err
	}
	if s.Fail != "" {
		return signature.Result{}, errors.New(s.Fail)
	}
	if s.FailCollection != "" && req.Shape == mint.ShapeCollection {
		return signature.Result{}, errors.New(s.FailCollection)
	}

	raw, err := Sign(req)
	if err != nil {
		return signature.Result{}, err
	}
	sig := base58.Encode(raw)
	switch s.Shape {
	case "", ShapeString:
		return signature.String(sig), nil
	case ShapePair:
		return signature.Pair(sig, map[string]any{"confirmation": "dryrun"}), nil
	case ShapeObject:
		return signature.Object(nil, signature.String(sig).Ref()), nil
	case ShapeBytes:
		return signature.Bytes(raw), nil
	default:
		return signature.Result{}, fmt.Errorf("dryrun: unknown result shape %q", s.Shape)
	}
}

func init() {
	submitter.MustRegister(submitter.Backend{
		Name:        "dryrun",
		Description: "offline submitter returning deterministic signatures",
		Usage:       submitter.UsageCLI | submitter.UsageDaemon,
		Flags: []submitter.Flag{
			{Name: "dryrun-shape", Default: ShapeString, Usage: "Result shape: string, pair, object or bytes"},
			{Name: "dryrun-fail", Usage: "Fail every request with this program error text"},
			{Name: "dryrun-fail-collection", Usage: "Fail collection-shaped requests with this program error text"},
		},
		Open: func(opts map[string]string) (mint.Submitter, func() error, error) {
			s := &Submitter{
				Shape:          opts["dryrun-shape"],
				Fail:           opts["dryrun-fail"],
				FailCollection: opts["dryrun-fail-collection"],
			}
			switch s.Shape {
			case "", ShapeString, ShapePair, ShapeObject, ShapeBytes:
			default:
				return nil, nil, fmt.Errorf("dryrun: unknown result shape %q", s.Shape)
			}
			return s, nil, nil
		},
	})
}
