package classfile

import (
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("classkit.classfile")

// logger is the part of commonlog.Logger this package writes to.
type logger interface {
	Warningf(format string, values ...any)
	Debugf(format string, values ...any)
}

// Option configures parsing.
type Option func(*config)

type config struct {
	cache   *Utf8Cache
	readers map[string]AttributeReader
	log     logger
}

func newConfig(opts []Option) *config {
	cfg := &config{log: log}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithUtf8Cache interns Utf8 constants through cache. Interning is off
// unless this option is given.
func WithUtf8Cache(cache *Utf8Cache) Option {
	return func(c *config) {
		c.cache = cache
	}
}

// WithAttributeReader registers a decoder for an application-defined
// attribute name. Names of standard attributes cannot be overridden.
func WithAttributeReader(name string, read AttributeReader) Option {
	return func(c *config) {
		if c.readers == nil {
			c.readers = make(map[string]AttributeReader)
		}
		c.readers[name] = read
	}
}

func WithLogger(l commonlog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}
