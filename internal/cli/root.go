package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vortideck/bannerctl/internal/banner"
	"golang.org/x/term"
)

// Version is set at build time.
var Version = "dev"

// Debug enables verbose debug output.
var Debug bool

// NoColor disables color output.
var NoColor bool

// endpointURL is the --url flag value. Empty means use the environment or default.
var endpointURL string

// envURL overrides the endpoint when --url is not given.
const envURL = "BANNERCTL_URL"

var rootCmd = &cobra.Command{
	Use:   "bannerctl",
	Short: "Interactive tester for the OBS banner WebSocket API",
	Long: `bannerctl connects to the VortiDeck OBS plugin's WebSocket server and sends
show_banner, hide_banner and set_banner commands picked from a menu.`,
	Version:       Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		color.NoColor = !shouldUseColor()
	},
	RunE: runSession,
}

func init() {
	rootCmd.Flags().StringVar(&endpointURL, "url", "", fmt.Sprintf("WebSocket endpoint (default %s, or $%s)", banner.DefaultURL, envURL))
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "Enable verbose debug output")
	rootCmd.PersistentFlags().BoolVar(&NoColor, "no-color", false, "Disable color output")
	rootCmd.SetVersionTemplate(`bannerctl version {{.Version}}
`)
}

// debugOut receives debug output; replaceable for testing.
var debugOut io.Writer = os.Stderr

// debugf logs a debug message if debug mode is enabled.
func debugf(format string, args ...any) {
	if Debug {
		fmt.Fprintf(debugOut, "[DEBUG] "+format+"\n", args...)
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// resolveURL picks the endpoint: flag, then environment, then the default.
func resolveURL(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := strings.TrimSpace(os.Getenv(envURL)); env != "" {
		return env
	}
	return banner.DefaultURL
}

// shouldUseColor determines if color output should be used based on flags and environment.
func shouldUseColor() bool {
	if NoColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
