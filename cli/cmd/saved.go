// ABOUTME: Saved calculations commands for the sparkcalc CLI
// ABOUTME: Lists and deletes calculations stored by the API

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sparkcalc/sparkcalc/backend/models"
	"github.com/sparkcalc/sparkcalc/cli/internal/client"
	"github.com/sparkcalc/sparkcalc/cli/internal/tui/icons"
)

var savedKind string

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Manage saved calculations",
	Long:  `List or delete calculations saved to the API with --save.`,
}

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved calculations, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runSavedList(ctx, os.Stdout, models.CalculationKind(savedKind))
		if exitCode != exitOK {
			os.Exit(exitCode)
		}
	},
}

var savedDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a saved calculation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runSavedDelete(ctx, os.Stdout, args[0])
		if exitCode != exitOK {
			os.Exit(exitCode)
		}
	},
}

func init() {
	savedListCmd.Flags().StringVar(&savedKind, "kind", "", "Only list calculations of this kind (e.g. cable-derating)")
	savedCmd.AddCommand(savedListCmd, savedDeleteCmd)
	rootCmd.AddCommand(savedCmd)
}

func runSavedList(ctx context.Context, w io.Writer, kind models.CalculationKind) int {
	if kind != "" && !kind.Valid() {
		fmt.Fprintf(w, "Error: unknown calculation kind %q\n", kind)
		return exitError
	}

	calcs, err := client.New(GetAPIURL()).ListCalculations(ctx, kind)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(calcs))
		return exitOK
	}
	fmt.Fprintln(w, formatSavedList(calcs))
	return exitOK
}

func runSavedDelete(ctx context.Context, w io.Writer, id string) int {
	if err := client.New(GetAPIURL()).DeleteCalculation(ctx, id); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	fmt.Fprintf(w, "Deleted %s\n", id)
	return exitOK
}

func formatSavedList(calcs []models.SavedCalculation) string {
	var b block
	b.title(icons.Info, fmt.Sprintf("Saved calculations (%d)", len(calcs)))
	if len(calcs) == 0 {
		b.line("No saved calculations")
		return b.String()
	}
	for _, c := range calcs {
		b.row(c.ID, "%-16s %s  %s", c.Kind, c.CreatedAt.Format("2006-01-02 15:04"), c.Name)
	}
	return b.String()
}
