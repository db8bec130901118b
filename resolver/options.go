package resolver

import (
	"go.uber.org/zap"

	"xdao.co/cnftmint/gateway"
)

// DefaultExtensions are the image extensions tried, in order, when the
// metadata document is unreachable or declares no image.
var DefaultExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// Options configures a Resolver.
type Options struct {
	// AccessPoints are the gateways, in priority order. Required.
	AccessPoints gateway.AccessPoints
	// Extensions replaces DefaultExtensions when non-empty.
	Extensions []string

	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if len(o.Extensions) == 0 {
		o.Extensions = DefaultExtensions
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
