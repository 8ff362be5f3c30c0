package kanim

import (
	"errors"
	"log"
	"os"
	"sync/atomic"
)

var (
	// ErrNotFound reports an empty loader response. Recoverable: the element
	// or override that needed the asset is skipped.
	ErrNotFound = errors.New("kanim: asset not found")
	// ErrTransport wraps loader I/O and parse failures.
	ErrTransport = errors.New("kanim: transport error")
	// ErrUnknownCommand reports a command name outside the editor surface.
	ErrUnknownCommand = errors.New("kanim: unknown command")
	// ErrBadArgs reports a known command with the wrong arity or argument types.
	ErrBadArgs = errors.New("kanim: bad command arguments")
	// ErrInvalidIndex reports an out-of-range list index. The list is unchanged.
	ErrInvalidIndex = errors.New("kanim: invalid index")
	// ErrInvalidConfig reports a configuration value outside its legal range.
	ErrInvalidConfig = errors.New("kanim: invalid config")
)

// logger is shared with fetch goroutines.
var logger atomic.Pointer[log.Logger]

func init() { SetLogger(nil) }

// SetLogger redirects warnings emitted by the package. Passing nil restores
// the default stderr logger. It is safe to call while loads are in flight.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(os.Stderr, "", log.LstdFlags)
	}
	logger.Store(l)
}

func logf(format string, args ...any) {
	logger.Load().Printf(format, args...)
}
