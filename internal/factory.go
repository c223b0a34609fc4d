package internal

import (
	"log/slog"

	"github.com/pulsefeed/relay/pkg/logger"
)

// Engine selects a router adapter. The enumeration is closed: only the
// listed values construct their adapter family, anything else falls
// back to the default.
type Engine string

const (
	// EngineChi is the primary adapter, backed by a chi trie.
	EngineChi Engine = "chi"

	// EngineRegex is the secondary adapter, a compiled-regexp matcher.
	EngineRegex Engine = "regex"
)

// DefaultEngine is used when the configured engine is not recognized.
const DefaultEngine = EngineChi

// Config configures router construction. Fields carry envconfig tags
// so hosts can bind it straight from the environment.
type Config struct {
	// Engine selects the adapter family.
	Engine Engine `envconfig:"RELAY_ENGINE" default:"chi"`

	// Logger receives framework diagnostics. Defaults to a noop
	// logger when unset.
	Logger *slog.Logger `ignored:"true"`
}

func (c *Config) logger() *slog.Logger {
	if c.Logger == nil {
		return logger.NewNope()
	}
	return c.Logger
}

// constructors is the closed adapter registry keyed by the Engine
// enumeration. Tests stub entries to exercise construction failures.
var constructors = map[Engine]func(*Config) (Router, error){
	EngineChi:   newChiRouter,
	EngineRegex: newRegexRouter,
}

// NewRouter builds the adapter selected by cfg.Engine.
//
// An unrecognized engine value logs a warning and falls back to the
// default adapter. A recognized engine whose construction fails
// propagates that failure: it never silently substitutes a different
// adapter family.
func NewRouter(cfg Config) (Router, error) {
	log := cfg.logger()

	ctor, ok := constructors[cfg.Engine]
	if !ok {
		log.Warn("unknown router engine, using default",
			"engine", string(cfg.Engine),
			"default", string(DefaultEngine),
		)
		ctor = constructors[DefaultEngine]
	}
	return ctor(&cfg)
}
