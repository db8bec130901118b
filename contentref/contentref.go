// Package contentref parses content-addressed references.
//
// A reference is either scheme-prefixed ("ipfs://<id>/<path>") or bare
// ("<id>/<path>"). Gateways are addressed with the bare form, so the scheme
// only survives for display.
package contentref

import (
	"errors"
	"path"
	"strings"

	"github.com/ipfs/go-cid"
)

var ErrEmpty = errors.New("contentref: empty reference")

// Ref is a parsed content reference.
type Ref struct {
	// Scheme is the scheme without "://", or "" for bare references.
	Scheme string
	// Root is the first path segment, typically a CID.
	Root string
	// Rest is everything after Root, without the leading slash.
	Rest string
}

// Parse splits s into scheme, root and remaining path.
//
// The root is not required to decode as a CID; use Ref.CID to find out.
func Parse(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, ErrEmpty
	}
	var r Ref
	if i := strings.Index(s, "://"); i > 0 && validScheme(s[:i]) {
		r.Scheme = strings.ToLower(s[:i])
		s = s[i+3:]
	}
	s = strings.TrimLeft(s, "/")
	if s == "" {
		return Ref{}, ErrEmpty
	}
	r.Root, r.Rest, _ = strings.Cut(s, "/")
	return r, nil
}

// Path returns the gateway-relative path "<root>[/<rest>]".
func (r Ref) Path() string {
	if r.Rest == "" {
		return r.Root
	}
	return r.Root + "/" + r.Rest
}

func (r Ref) String() string {
	if r.Scheme == "" {
		return r.Path()
	}
	return r.Scheme + "://" + r.Path()
}

// CID decodes Root. ok is false when Root is not a CID.
func (r Ref) CID() (cid.Cid, bool) {
	id, err := cid.Decode(r.Root)
	if err != nil || !id.Defined() {
		return cid.Undef, false
	}
	return id, true
}

// WithExt returns r with the extension of its last segment replaced by ext.
// A reference without a sub-path is returned unchanged.
func (r Ref) WithExt(ext string) Ref {
	if r.Rest == "" {
		return r
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	out := r
	out.Rest = strings.TrimSuffix(r.Rest, path.Ext(r.Rest)) + ext
	return out
}

// IsHTTP reports whether s is already an absolute http(s) URL.
func IsHTTP(s string) bool {
	l := strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

func validScheme(s string) bool {
	for i, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}
