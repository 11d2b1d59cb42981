// ABOUTME: Root command for the sparkcalc CLI
// ABOUTME: Handles global flags and configuration

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	apiURL     string
	jsonOutput bool
	remote     bool
)

const defaultAPIURL = "http://localhost:8080"

// Exit codes shared by every command
const (
	exitOK     = 0
	exitFailed = 1 // non-compliant, failing or in deficit
	exitError  = 2 // invalid input, connectivity or backend errors
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "sparkcalc",
	Short: "Electrical calculations for electricians",
	Long: `sparkcalc runs cable derating and sizing, earthing touch/step voltage,
off-grid solar, micro-hydro and pricing calculations.

Calculator inputs are YAML or JSON files using the API field names. Calculations
run locally unless --remote is given, in which case they are sent to the API.

Exit codes:
  0 - Calculation succeeded and the design passes
  1 - Calculation succeeded but the design is non-compliant, failing or in deficit
  2 - Error (invalid input, connectivity, backend error)

Environment Variables:
  SPARKCALC_API_URL  Backend API URL (default: http://localhost:8080)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides SPARKCALC_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().BoolVar(&remote, "remote", false, "Send calculations to the API instead of running them locally")
}

// GetAPIURL returns the API URL from flag, env, or default (in priority order)
func GetAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	if envURL := os.Getenv("SPARKCALC_API_URL"); envURL != "" {
		return envURL
	}
	return defaultAPIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// IsRemote returns whether calculations go to the API
func IsRemote() bool {
	return remote
}
