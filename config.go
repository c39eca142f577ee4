package strata

// Config configures a Registry at construction time.
type Config struct {
	// DestroyEmptyArchetypes, when true, removes a non-void archetype from
	// the Registry the moment its row count drops to zero as a side effect
	// of a component-add migration or an entity destruction.
	DestroyEmptyArchetypes bool

	// Logger receives Pipeline diagnostics (skipped stages, system errors).
	// Defaults to a Logger backed by the standard library's log.Default()
	// when left nil.
	Logger Logger
}

// DefaultConfig returns the Config a Registry uses when none is supplied.
func DefaultConfig() Config {
	return Config{
		DestroyEmptyArchetypes: false,
		Logger:                 defaultLogger(),
	}
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = defaultLogger()
	}
	return c
}
