// Package gateway turns content paths into gateway URLs and walks them in
// priority order.
//
// URL construction is a pure string operation. The networked part is the
// probe loop in First: one attempt in flight at a time, stop at the first
// success, report exhaustion without an error so the caller decides what
// "unavailable" means.
package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// AccessPoints is an ordered list of gateway base URLs. Index 0 is tried first.
type AccessPoints []string

// Validate checks that every entry is an absolute http(s) URL.
func (a AccessPoints) Validate() error {
	if len(a) == 0 {
		return ErrNoAccessPoint
	}
	for i, ap := range a {
		u, err := url.Parse(ap)
		if err != nil {
			return fmt.Errorf("gateway: access point %d: %w", i, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("gateway: access point %d: %q is not an http(s) base url", i, ap)
		}
	}
	return nil
}

// URLs returns the candidate URL for contentPath at each access point, in order.
func (a AccessPoints) URLs(contentPath string) []string {
	out := make([]string, 0, len(a))
	for _, ap := range a {
		out = append(out, Join(ap, contentPath))
	}
	return out
}

// Join appends contentPath to accessPoint with exactly one slash between them.
func Join(accessPoint, contentPath string) string {
	contentPath = strings.TrimLeft(contentPath, "/")
	if strings.HasSuffix(accessPoint, "/") {
		return accessPoint + contentPath
	}
	return accessPoint + "/" + contentPath
}

// Hit describes the outcome of a probe loop.
type Hit struct {
	// URL is the first URL for which the attempt succeeded.
	URL string
	// Index is the position of URL in the input, or -1 on exhaustion.
	Index int
	// Tried lists every URL attempted, in order, including URL itself.
	Tried []string
}

// Attempt tries a single URL. A nil error is a verified success.
type Attempt func(ctx context.Context, url string) error

// First runs try over urls sequentially and stops at the first success.
//
// On exhaustion it returns ok=false and a Hit whose Tried lists every attempt.
// A done context stops progression to the next URL; the attempt already in
// flight is left to the Attempt implementation.
func First(ctx context.Context, urls []string, try Attempt) (Hit, bool) {
	hit := Hit{Index: -1, Tried: make([]string, 0, len(urls))}
	for i, u := range urls {
		if ctx.Err() != nil {
			break
		}
		hit.Tried = append(hit.Tried, u)
		if err := try(ctx, u); err == nil {
			hit.URL = u
			hit.Index = i
			return hit, true
		}
	}
	return hit, false
}
