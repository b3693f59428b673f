// Package monitoring decouples library packages from the process-wide
// logging setup: pipeline stages report diagnostics through Logf without
// knowing where the output goes.
package monitoring

import "log"

// Logf emits a diagnostic line. The default writes through log.Printf; a
// host binary or a test swaps it out with SetLogger to capture or silence
// the stream.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger installs f as the diagnostic sink. A nil f mutes diagnostics
// entirely.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
