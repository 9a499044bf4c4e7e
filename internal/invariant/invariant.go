// Package invariant holds programming-error assertions that are compiled in
// only for verification builds (go build -tags panzoom_verify). In regular
// builds every check is a no-op.
package invariant

import "fmt"

// Check panics with a formatted message when cond is false and assertions are
// enabled.
func Check(cond bool, format string, args ...any) {
	if Enabled && !cond {
		panic(fmt.Sprintf("panzoom invariant: "+format, args...))
	}
}

// NoError panics when err is non-nil and assertions are enabled.
func NoError(err error) {
	if Enabled && err != nil {
		panic(fmt.Sprintf("panzoom invariant: %v", err))
	}
}
