// Package submitter is a build-time registry of mint.Submitter backends.
//
// Backends typically register themselves in init():
//
//	submitter.MustRegister(submitter.Backend{ ... })
//
// Options reach a backend as a string map whose keys mirror its flag names,
// so the same backend can be driven from a config file or the command line.
package submitter

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/pflag"

	"xdao.co/cnftmint/mint"
)

// Usage is the set of hosts a backend may run under. A backend linked into a
// binary is still refused when the binary's host is not in its set.
type Usage uint8

const (
	// UsageCLI is the cnftmint CLI and its HTTP server.
	UsageCLI Usage = 1 << iota
	// UsageDaemon is a signer daemon wrapping the backend for remote callers.
	UsageDaemon
)

func (u Usage) allows(host Usage) bool { return u&host != 0 }

func (u Usage) String() string {
	var names []string
	if u&UsageCLI != 0 {
		names = append(names, "cli")
	}
	if u&UsageDaemon != 0 {
		names = append(names, "daemon")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// Flag describes one backend option.
type Flag struct {
	Name    string
	Default string
	Usage   string
}

type Backend struct {
	Name        string
	Description string
	Usage       Usage
	Flags       []Flag

	// Open constructs the submitter. opts holds every declared flag, with
	// defaults filled in. It returns an optional close function.
	Open func(opts map[string]string) (mint.Submitter, func() error, error)
}

var (
	mu       sync.RWMutex
	backends = map[string]Backend{}
)

func Register(b Backend) error {
	if b.Name == "" {
		return fmt.Errorf("submitter: backend name is required")
	}
	if b.Open == nil {
		return fmt.Errorf("submitter: backend %q missing Open", b.Name)
	}
	if b.Usage == 0 {
		return fmt.Errorf("submitter: backend %q missing Usage", b.Name)
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := backends[b.Name]; exists {
		return fmt.Errorf("submitter: backend %q already registered", b.Name)
	}
	backends[b.Name] = b
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(b Backend) {
	if err := Register(b); err != nil {
		panic(err)
	}
}

// List returns backends matching usage, sorted by name.
func List(usage Usage) []Backend {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Backend, 0, len(backends))
	for _, b := range backends {
		if b.Usage.allows(usage) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns backend names matching usage, sorted.
func Names(usage Usage) []string {
	bs := List(usage)
	n := make([]string, 0, len(bs))
	for _, b := range bs {
		n = append(n, b.Name)
	}
	return n
}

// RegisterFlags adds the flags of every backend matching usage to fs.
// Flags already defined on fs are skipped.
func RegisterFlags(fs *pflag.FlagSet, usage Usage) {
	for _, b := range List(usage) {
		for _, f := range b.Flags {
			if fs.Lookup(f.Name) != nil {
				continue
			}
			fs.String(f.Name, f.Default, fmt.Sprintf("%s (for --submitter=%s)", f.Usage, b.Name))
		}
	}
}

// Open opens the named backend with opts layered over its flag defaults.
func Open(name string, usage Usage, opts map[string]string) (mint.Submitter, func() error, error) {
	b, err := lookup(name, usage)
	if err != nil {
		return nil, nil, err
	}
	merged := make(map[string]string, len(b.Flags))
	for _, f := range b.Flags {
		merged[f.Name] = f.Default
	}
	for k, v := range opts {
		merged[k] = v
	}
	return b.Open(merged)
}

// OpenWithFlags is Open with any flags explicitly set on fs overriding opts.
func OpenWithFlags(name string, usage Usage, opts map[string]string, fs *pflag.FlagSet) (mint.Submitter, func() error, error) {
	b, err := lookup(name, usage)
	if err != nil {
		return nil, nil, err
	}
	merged := make(map[string]string, len(opts)+len(b.Flags))
	for k, v := range opts {
		merged[k] = v
	}
	if fs != nil {
		for _, f := range b.Flags {
			if fl := fs.Lookup(f.Name); fl != nil && fl.Changed {
				merged[f.Name] = fl.Value.String()
			}
		}
	}
	return Open(name, usage, merged)
}

func lookup(name string, usage Usage) (Backend, error) {
	mu.RLock()
	b, ok := backends[name]
	mu.RUnlock()
	if !ok {
		return Backend{}, fmt.Errorf("unknown submitter %q", name)
	}
	if !b.Usage.allows(usage) {
		return Backend{}, fmt.Errorf("submitter %q runs under %s, not %s", name, b.Usage, usage)
	}
	return b, nil
}
