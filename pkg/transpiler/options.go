package transpiler

import (
	"github.com/iotaledger/hive.go/logger"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"runa/pkg/compiler"
)

// Option configures a Transpiler.
type Option func(*config)

type config struct {
	log          *logger.Logger
	registerer   prometheus.Registerer
	extensions   []compiler.Extension
	typeComments bool
}

func defaultConfig() *config {
	return &config{
		log:        zap.NewNop().Sugar(),
		registerer: prometheus.NewRegistry(),
		extensions: []compiler.Extension{
			compiler.PatternsExtension,
			compiler.AsyncExtension,
			compiler.FunctionalExtension,
			compiler.TypesExtension,
		},
	}
}

// WithLogger sets the root logger stage events are written to.
func WithLogger(log *logger.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithRegisterer registers the transpiler metrics on reg instead of a
// private registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *config) {
		if reg != nil {
			c.registerer = reg
		}
	}
}

// WithExtensions replaces the grammar extensions. An empty list leaves only
// the core language.
func WithExtensions(exts ...compiler.Extension) Option {
	return func(c *config) {
		c.extensions = exts
	}
}

// WithTypeComments runs the type checker before generation and annotates
// declarations with the inferred types.
func WithTypeComments() Option {
	return func(c *config) {
		c.typeComments = true
	}
}
