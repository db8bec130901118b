package main

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"xdao.co/cnftmint/config"
	"xdao.co/cnftmint/gateway"
	"xdao.co/cnftmint/logging"
	"xdao.co/cnftmint/metrics"
	"xdao.co/cnftmint/mint"
	"xdao.co/cnftmint/resolver"
	"xdao.co/cnftmint/submitter"
	"xdao.co/cnftmint/wallet"
)

type commandContext struct {
	configPath    string
	logLevel      string
	logFormat     string
	submitterName string
	flags         *pflag.FlagSet

	// logOut replaces stderr for logs; tests set it.
	logOut io.Writer

	once     sync.Once
	cfg      config.Config
	log      *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	err      error
}

func (c *commandContext) ensure() error {
	c.once.Do(func() {
		cfg := config.Default()
		if path := strings.TrimSpace(c.configPath); path != "" {
			loaded, err := config.LoadFile(path)
			if err != nil {
				c.err = err
				return
			}
			cfg = loaded
		}
		if c.logLevel != "" {
			cfg.Logging.Level = c.logLevel
		}
		if c.logFormat != "" {
			cfg.Logging.Format = c.logFormat
		}
		if c.submitterName != "" {
			cfg.Submitter.Backend = c.submitterName
		}
		out := c.logOut
		if out == nil {
			out = os.Stderr
		}
		log, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, out)
		if err != nil {
			c.err = err
			return
		}
		c.cfg = cfg
		c.log = log
		c.registry = prometheus.NewRegistry()
		c.metrics = metrics.New(c.registry)
	})
	return c.err
}

func (c *commandContext) resolver() (*resolver.Resolver, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	copts := c.cfg.ClientOptions()
	copts.Logger = c.log.Named("gateway")
	copts.Metrics = c.metrics
	ropts := c.cfg.ResolverOptions()
	ropts.Logger = c.log.Named("resolver")
	return resolver.New(gateway.NewClient(copts), ropts)
}

// orchestrator opens the configured submitter. The returned close function
// is never nil.
func (c *commandContext) orchestrator(w wallet.Provider) (*mint.Orchestrator, func() error, error) {
	if err := c.ensure(); err != nil {
		return nil, nil, err
	}
	sub, closeFn, err := submitter.OpenWithFlags(c.cfg.Submitter.Backend, submitter.UsageCLI, c.cfg.Submitter.Options, c.flags)
	if err != nil {
		return nil, nil, err
	}
	if closeFn == nil {
		closeFn = func() error { return nil }
	}
	o, err := mint.New(c.cfg.MintSettings(), w, sub, mint.Options{
		Logger:  c.log.Named("mint"),
		Metrics: c.metrics,
	})
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return o, closeFn, nil
}
