package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vortideck/bannerctl/internal/banner"
	"github.com/vortideck/bannerctl/internal/repl"
)

var rule = strings.Repeat("=", 50)

// runSession connects, runs the menu and reports how the session ended.
// Every handled failure is printed and swallowed, so the exit status is zero.
func runSession(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	url := resolveURL(endpointURL)

	fmt.Fprintln(out, "VortiDeck OBS Banner WebSocket API Test")
	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "Connecting to %s...\n", url)

	debugf("dialing %s", url)
	conn, err := sessionFactory.Dial(ctx, url)
	if err != nil {
		debugf("dial failed: %v", err)
		if ctx.Err() != nil {
			fmt.Fprintln(out, "\nTest interrupted by user.")
			return nil
		}
		repl.PrintError(errOut, "Could not connect to "+url)
		fmt.Fprintln(errOut, "Make sure the OBS plugin is loaded and the WebSocket server is running.")
		return nil
	}
	defer func() {
		if err := conn.Close(); err != nil {
			debugf("close: %v", err)
		}
	}()

	fmt.Fprintf(out, "Connected to %s\n", url)
	fmt.Fprintln(out, rule)

	reader := sessionFactory.NewReader()
	defer reader.Close()

	menu := repl.NewMenu(conn, reader, out)
	menu.OnTransition = func(from, to repl.State) {
		debugf("state %s -> %s", from, to)
	}
	menu.OnSent = logSent

	err = menu.Run(ctx)
	switch {
	case err == nil:
	case errors.Is(err, repl.ErrInterrupted):
		fmt.Fprintln(out, "\nTest interrupted by user.")
	default:
		repl.PrintError(errOut, err.Error())
	}
	return nil
}

// logSent reports the frame size and checks the payload decodes back to cmd.
func logSent(cmd banner.Command, payload []byte) {
	if !Debug {
		return
	}
	debugf("sent %s frame (%d bytes)", cmd.Name(), len(payload))

	decoded, err := banner.Decode(payload)
	if err != nil {
		debugf("sent payload does not decode: %v", err)
		return
	}
	if decoded != cmd {
		debugf("sent payload decodes to %s, want %s", decoded.Name(), cmd.Name())
	}
}
