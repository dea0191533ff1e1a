// Package invariant reports coding errors.
//
// A violation is always logged. Binaries built with the brewdebug tag
// also panic, so bugs surface loudly during development while release
// builds log and carry on with the offending record skipped.
package invariant

import (
	"fmt"
	"log/slog"
)

// Violation logs a broken invariant and, in debug builds, panics.
func Violation(msg string, args ...any) {
	slog.Error("invariant violated: "+msg, args...)
	if debug {
		panic(fmt.Sprintf("invariant violated: %s %v", msg, args))
	}
}

// Check calls Violation when cond is false and reports cond.
func Check(cond bool, msg string, args ...any) bool {
	if !cond {
		Violation(msg, args...)
	}
	return cond
}

// Debug reports whether violations panic.
func Debug() bool { return debug }
