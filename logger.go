package strata

import "log"

// Logger is the diagnostic sink a Registry reports through. Injected via
// Config rather than relied upon as process-wide state, so embedding
// applications can route Pipeline diagnostics (skipped stages, system
// errors) wherever they already log.
type Logger interface {
	Printf(format string, args ...any)
}

// stdLogger adapts the standard library's *log.Logger to Logger. It is the
// default used when a Config leaves Logger unset.
type stdLogger struct {
	inner *log.Logger
}

func (l stdLogger) Printf(format string, args ...any) {
	l.inner.Printf(format, args...)
}

// defaultLogger wraps log.Default() for plain stdlib log.Printf output.
func defaultLogger() Logger {
	return stdLogger{inner: log.Default()}
}

// noopLogger discards everything; useful for tests that assert on Pipeline
// behavior without wanting log noise.
type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}
