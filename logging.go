package poststates

import "time"

// MatchEvent describes one entry evaluation during a rendering pass.
type MatchEvent struct {
	Key      string
	Label    string
	Engine   string
	ItemID   int64
	Value    any
	Matched  bool
	Duration time.Duration
	Err      error
}

// MatchLogger records match attempts.
type MatchLogger interface {
	LogMatch(MatchEvent)
}

// MatchLoggerFunc adapts a function to MatchLogger.
type MatchLoggerFunc func(MatchEvent)

// LogMatch implements MatchLogger.
func (f MatchLoggerFunc) LogMatch(event MatchEvent) {
	if f != nil {
		f(event)
	}
}

type noopMatchLogger struct{}

func (noopMatchLogger) LogMatch(MatchEvent) {}

// WithMatchLogger attaches a match logger to the registry. Logging is
// best-effort and never alters the collected label set.
func WithMatchLogger(logger MatchLogger) Option {
	return func(cfg *registryConfig) {
		if logger == nil {
			cfg.logger = noopMatchLogger{}
			return
		}
		cfg.logger = logger
	}
}
