package cli

import (
	"testing"

	"github.com/fatih/color"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// Disable colors in tests to avoid ANSI codes in output assertions
	color.NoColor = true
	goleak.VerifyTestMain(m,
		// signal.NotifyContext starts the runtime's signal loop once per process.
		goleak.IgnoreAnyFunction("os/signal.loop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)
}
