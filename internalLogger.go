package syslog

import (
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var internalLogger atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(os.Stderr).With().Timestamp().Str("component", "syslog").Logger()
	internalLogger.Store(&l)
}

// InternalLogger returns the Logger used to write out internal logs, where logs
// get written when something goes wrong in the logging stack itself.
func InternalLogger() *zerolog.Logger { return internalLogger.Load() }

// SetInternalLogger makes l the internal logger. Use zerolog.Nop() to silence
// the package entirely.
func SetInternalLogger(l zerolog.Logger) {
	internalLogger.Store(&l)
}
