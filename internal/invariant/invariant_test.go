package invariant

import (
	"errors"
	"strings"
	"testing"
)

func panics(f func()) (msg string, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			msg, _ = r.(string)
			panicked = true
		}
	}()
	f()
	return "", false
}

func TestCheckHolds(t *testing.T) {
	if _, p := panics(func() { Check(true, "never") }); p {
		t.Error("Check(true) panicked")
	}
	if _, p := panics(func() { NoError(nil) }); p {
		t.Error("NoError(nil) panicked")
	}
}

func TestCheckViolated(t *testing.T) {
	msg, p := panics(func() { Check(false, "scale %g", 2.0) })
	if p != Enabled {
		t.Fatalf("Check(false) panicked = %v, want %v", p, Enabled)
	}
	if Enabled && !strings.Contains(msg, "scale 2") {
		t.Errorf("panic message = %q", msg)
	}

	_, p = panics(func() { NoError(errors.New("fix point moved")) })
	if p != Enabled {
		t.Errorf("NoError(err) panicked = %v, want %v", p, Enabled)
	}
}
