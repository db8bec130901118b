// Package wallet defines the identity-provider boundary the mint flow
// consumes and a minimal provider for programs that already know the owner.
package wallet

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"sync"

	"github.com/mr-tron/base58"
)

var (
	// ErrConnection is returned by Connect when no identity can be obtained.
	ErrConnection = errors.New("wallet: connection failed")
	// ErrInvalidIdentity reports a string that is not a base58 ed25519 public key.
	ErrInvalidIdentity = errors.New("wallet: invalid identity")
)

// Identity is a 32-byte ed25519 public key, displayed base58.
type Identity [ed25519.PublicKeySize]byte

// ParseIdentity decodes a base58 public key.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	b, err := base58.Decode(s)
	if err != nil {
		return id, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidIdentity, len(b), len(id))
	}
	copy(id[:], b)
	return id, nil
}

// MustParseIdentity is like ParseIdentity but panics on error.
// It is meant for compiled-in constants.
func MustParseIdentity(s string) Identity {
	id, err := ParseIdentity(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id Identity) String() string { return base58.Encode(id[:]) }

func (id Identity) IsZero() bool { return id == Identity{} }

// PublicKey returns id as an ed25519 key.
func (id Identity) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(append([]byte(nil), id[:]...))
}

func (id Identity) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *Identity) UnmarshalText(b []byte) error {
	parsed, err := ParseIdentity(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Provider is the identity provider collaborator.
//
// The mint flow only reads IsConnected and CurrentIdentity. Connect and
// Disconnect belong to whoever drives the session (UI, CLI, HTTP handler).
type Provider interface {
	IsConnected() bool
	Connect(ctx context.Context) error
	Disconnect() error
	CurrentIdentity() (Identity, bool)
}

// Static is a Provider whose identity is fixed at construction.
// Connect succeeds whenever that identity is set.
type Static struct {
	mu        sync.RWMutex
	identity  Identity
	connected bool
}

var _ Provider = (*Static)(nil)

// NewStatic returns a disconnected provider for identity.
func NewStatic(identity Identity) *Static {
	return &Static{identity: identity}
}

// Connected returns a provider for identity that is already connected.
func Connected(identity Identity) *Static {
	return &Static{identity: identity, connected: !identity.IsZero()}
}

func (s *Static) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

func (s *Static) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity.IsZero() {
		return fmt.Errorf("%w: no identity configured", ErrConnection)
	}
	s.connected = true
	return nil
}

func (s *Static) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

func (s *Static) CurrentIdentity() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.connected {
		return Identity{}, false
	}
	return s.identity, true
}

// SetIdentity replaces the identity and disconnects.
func (s *Static) SetIdentity(identity Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
	s.connected = false
}
