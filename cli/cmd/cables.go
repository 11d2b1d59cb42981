// ABOUTME: Cables command for the sparkcalc CLI
// ABOUTME: Lists the cable database used by cable sizing and cheaper alternatives

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sparkcalc/sparkcalc/backend/cabledb"
	"github.com/sparkcalc/sparkcalc/backend/models"
	"github.com/sparkcalc/sparkcalc/cli/internal/client"
	"github.com/sparkcalc/sparkcalc/cli/internal/tui/icons"
)

// cableQuery selects which part of the cable database to show
type cableQuery struct {
	key        string
	method     string
	minCurrent float64
	sizeMm2    float64
	maxBudget  float64
}

var cablesQuery cableQuery

var cablesCmd = &cobra.Command{
	Use:   "cables",
	Short: "List cables in the sizing database",
	Long: `List the cable constructions available to cable sizing. With --cable, show
every size of one cable with its ratings per installation method, voltage drop
and price per metre.

--method lists only the cables tabulated for an installation method, and
--min-current further narrows that to cables with a size rated for at least
that many amps. --cable with --size and --budget lists cheaper cables of the
same size within the budget per metre, largest saving first.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runCables(ctx, os.Stdout, cablesQuery)
		if exitCode != exitOK {
			os.Exit(exitCode)
		}
	},
}

func init() {
	cablesCmd.Flags().StringVar(&cablesQuery.key, "cable", "", "Show the sizes of one cable by key")
	cablesCmd.Flags().StringVar(&cablesQuery.method, "method", "", "Only cables tabulated for this installation method (e.g. method-c)")
	cablesCmd.Flags().Float64Var(&cablesQuery.minCurrent, "min-current", 0, "With --method, only cables with a size rated for at least this current (A)")
	cablesCmd.Flags().Float64Var(&cablesQuery.sizeMm2, "size", 0, "With --cable and --budget, list cheaper cables of this size (mm²)")
	cablesCmd.Flags().Float64Var(&cablesQuery.maxBudget, "budget", 0, "Maximum price per metre (£) for alternatives")
	rootCmd.AddCommand(cablesCmd)
}

// runCables prints the cable database and returns exit code
func runCables(ctx context.Context, w io.Writer, q cableQuery) int {
	if err := q.check(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	if q.sizeMm2 > 0 {
		return runAlternatives(ctx, w, q)
	}

	cables, err := loadCables(ctx, models.InstallationMethod(q.method), q.minCurrent)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	if q.key != "" {
		var found *cabledb.Cable
		for i := range cables {
			if cables[i].Key == q.key {
				found = &cables[i]
				break
			}
		}
		if found == nil {
			fmt.Fprintf(w, "Error: unknown cable %q\n", q.key)
			return exitError
		}
		cables = []cabledb.Cable{*found}
	}

	switch {
	case IsJSONOutput():
		fmt.Fprintln(w, formatJSON(cables))
	case q.key != "":
		fmt.Fprintln(w, formatCableSizes(cables[0]))
	default:
		fmt.Fprintln(w, formatCables(cables))
	}
	return exitOK
}

func (q cableQuery) check() error {
	if q.method != "" && !models.InstallationMethod(q.method).Valid() {
		return fmt.Errorf("unknown installation method %q", q.method)
	}
	if q.minCurrent < 0 || (q.minCurrent > 0 && q.method == "") {
		return errors.New("--min-current needs --method and a positive current")
	}
	if q.sizeMm2 < 0 || q.maxBudget < 0 {
		return errors.New("--size and --budget must be positive")
	}
	if (q.sizeMm2 > 0) != (q.maxBudget > 0) {
		return errors.New("--size and --budget must be given together")
	}
	if q.sizeMm2 > 0 && q.key == "" {
		return errors.New("alternatives need --cable")
	}
	return nil
}

func runAlternatives(ctx context.Context, w io.Writer, q cableQuery) int {
	var (
		alts []cabledb.Alternative
		err  error
	)
	if IsRemote() {
		alts, err = client.New(GetAPIURL()).CableAlternatives(ctx, q.key, q.sizeMm2, q.maxBudget)
	} else {
		alts, err = localAlternatives(q)
	}
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(alts))
	} else {
		fmt.Fprintln(w, formatAlternatives(q, alts))
	}
	return exitOK
}

func localAlternatives(q cableQuery) ([]cabledb.Alternative, error) {
	db, err := cabledb.Load()
	if err != nil {
		return nil, err
	}
	alts, ok := db.Alternatives(q.key, q.sizeMm2, q.maxBudget)
	if !ok {
		return nil, fmt.Errorf("no %gmm² size of cable %q", q.sizeMm2, q.key)
	}
	return alts, nil
}

func loadCables(ctx context.Context, method models.InstallationMethod, minCurrent float64) ([]cabledb.Cable, error) {
	if IsRemote() {
		c := client.New(GetAPIURL())
		if method != "" {
			return c.CablesByMethod(ctx, method, minCurrent)
		}
		return c.Cables(ctx)
	}
	db, err := cabledb.Load()
	if err != nil {
		return nil, err
	}
	switch {
	case minCurrent > 0:
		return db.ByCurrentRating(minCurrent, method), nil
	case method != "":
		return db.ByMethod(method), nil
	}
	return db.Cables(), nil
}

func formatCables(cables []cabledb.Cable) string {
	var b block
	b.title(icons.Cable, "Cable database")
	for _, c := range cables {
		var smallest, largest float64
		if len(c.Sizes) > 0 {
			smallest = c.Sizes[0].SizeMm2
			largest = c.Sizes[len(c.Sizes)-1].SizeMm2
		}
		b.row(c.Key, "%s (%s, %g-%g mm²)", c.Name, c.CableType, smallest, largest)
	}
	return b.String()
}

func formatAlternatives(q cableQuery, alts []cabledb.Alternative) string {
	var b block
	b.title(icons.Cable, fmt.Sprintf("Alternatives to %s %g mm² within £%.2f/m", q.key, q.sizeMm2, q.maxBudget))
	if len(alts) == 0 {
		b.line("No cheaper cable of this size within budget")
		return b.String()
	}
	for _, a := range alts {
		b.row(a.Cable, "%s | £%s/m | saves £%s/m", a.Name, a.PricePerM.StringFixed(2), a.SavingPerM.StringFixed(2))
	}
	return b.String()
}

func formatCableSizes(c cabledb.Cable) string {
	var b block
	b.title(icons.Cable, c.Name)
	for _, s := range c.Sizes {
		methods := make([]string, 0, len(s.Ratings))
		for m := range s.Ratings {
			methods = append(methods, m)
		}
		sort.Strings(methods)

		ratings := make([]string, 0, len(methods))
		for _, m := range methods {
			ratings = append(ratings, fmt.Sprintf("%s %gA", m, s.Ratings[m]))
		}
		b.row(fmt.Sprintf("%g mm²", s.SizeMm2), "%s | %g mV/A/m | £%.2f/m",
			strings.Join(ratings, ", "), s.MVPerAM, s.PricePerM)
	}
	if len(c.Applications) > 0 {
		b.section("Applications")
		for _, a := range c.Applications {
			b.line("• " + a)
		}
	}
	if len(c.Limitations) > 0 {
		b.section("Limitations")
		for _, l := range c.Limitations {
			b.line("• " + l)
		}
	}
	b.recommendations(c.Recommendations)
	return b.String()
}
