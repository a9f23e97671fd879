package main

import (
	"fmt"
	"os"
	"regexp"

	"github.com/vortideck/bannerctl/internal/cli"
)

// formatCobraError converts verbose Cobra errors to user-friendly messages.
func formatCobraError(err error) string {
	msg := err.Error()

	// Positional arguments: `unknown command "x" for "bannerctl"` or "accepts 0 arg(s), received 1"
	re := regexp.MustCompile(`^(unknown command "[^"]*"|accepts 0 arg\(s\))`)
	if re.MatchString(msg) {
		return "bannerctl takes no arguments; run it and pick a command from the menu"
	}

	return msg
}

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", formatCobraError(err))
		os.Exit(1)
	}
}
