//go:build panzoom_verify

package invariant

// Enabled reports whether assertions are compiled in.
const Enabled = true
