// ABOUTME: Calculator commands for the sparkcalc CLI
// ABOUTME: Runs each engine locally or through the API and maps results to exit codes

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sparkcalc/sparkcalc/backend/cabledb"
	"github.com/sparkcalc/sparkcalc/backend/models"
	"github.com/sparkcalc/sparkcalc/backend/services"
	"github.com/sparkcalc/sparkcalc/cli/internal/client"
)

var inputValidator = services.NewValidator()

// calculator binds an engine's input and result types to its CLI presentation
type calculator[I any, R any] struct {
	kind   models.CalculationKind
	use    string
	short  string
	long   string
	run    func(I) (R, error)
	human  func(R) string
	failed func(R) bool
}

func deratingCalculator() calculator[models.CableDeratingInput, models.CableDeratingResult] {
	return calculator[models.CableDeratingInput, models.CableDeratingResult]{
		kind:  models.KindCableDerating,
		use:   "derating",
		short: "Derate a cable's tabulated rating",
		long: `Apply temperature, grouping, thermal insulation and soil factors to a
tabulated cable rating. When design_current and device_rating are given the
Ib ≤ In ≤ Iz coordination check is included and a failure exits 1.`,
		run:   services.NewDeratingCalculator().Calculate,
		human: formatDerating,
		failed: func(r models.CableDeratingResult) bool {
			return r.Compliance != nil && !r.Compliance.Compliant
		},
	}
}

func sizingCalculator() calculator[models.CableSizingInput, models.CableSizingResult] {
	return calculator[models.CableSizingInput, models.CableSizingResult]{
		kind:  models.KindCableSizing,
		use:   "sizing",
		short: "Select the smallest compliant cable size",
		long: `Pick the smallest size from the cable database that carries the load after
derating and keeps voltage drop within 3% (lighting) or 5% (power).`,
		run: func(in models.CableSizingInput) (models.CableSizingResult, error) {
			return services.NewSizingCalculator(cabledb.MustLoad()).Size(in)
		},
		human: formatSizing,
		failed: func(r models.CableSizingResult) bool {
			return !r.VoltageDropOK || (r.Derating.Compliance != nil && !r.Derating.Compliance.Compliant)
		},
	}
}

func touchStepCalculator() calculator[models.TouchStepInput, models.TouchStepResult] {
	return calculator[models.TouchStepInput, models.TouchStepResult]{
		kind:  models.KindTouchStep,
		use:   "touch-step",
		short: "Assess earthing touch and step voltages",
		long: `Compute electrode resistance, earth potential rise and touch/step voltages,
and compare them with the permissible limits for the fault duration. A failing
contact scenario exits 1.`,
		run:   services.NewTouchStepCalculator().Calculate,
		human: formatTouchStep,
		failed: func(r models.TouchStepResult) bool {
			return !r.Passed()
		},
	}
}

func offGridCalculator() calculator[models.OffGridInput, models.OffGridResult] {
	return calculator[models.OffGridInput, models.OffGridResult]{
		kind:  models.KindOffGrid,
		use:   "off-grid",
		short: "Size an off-grid solar and battery system",
		long: `Size the solar array, battery bank, inverter and charge controller for a
daily load and autonomy target, with a GBP cost breakdown. A daily energy
deficit exits 1.`,
		run:   services.NewOffGridCalculator().Calculate,
		human: formatOffGrid,
		failed: func(r models.OffGridResult) bool {
			return r.DailyEnergyBalanceKwh < 0
		},
	}
}

func microHydroCalculator() calculator[models.MicroHydroInput, models.MicroHydroResult] {
	return calculator[models.MicroHydroInput, models.MicroHydroResult]{
		kind:  models.KindMicroHydro,
		use:   "micro-hydro",
		short: "Assess a micro-hydro site",
		long: `Estimate generation from flow and head, select a turbine, size the penstock
and compute capital cost and payback. A site with no revenue exits 1.`,
		run:    services.NewMicroHydroCalculator().Calculate,
		human:  formatMicroHydro,
		failed: func(r models.MicroHydroResult) bool {
			return !r.Viability.Viable()
		},
	}
}

func pricingCalculator() calculator[models.PricingInput, models.PricingResult] {
	return calculator[models.PricingInput, models.PricingResult]{
		kind:  models.KindPricing,
		use:   "pricing",
		short: "Cost a typical job and compare against the market",
		long: `Break a typical job into labour, materials, overhead and profit, compare the
hourly rate with competitors and project monthly revenue. A projected revenue
below target exits 1.`,
		run:   services.NewPricingCalculator().Calculate,
		human: formatPricing,
		failed: func(r models.PricingResult) bool {
			return r.RevenueGap.IsPositive()
		},
	}
}

func init() {
	rootCmd.AddCommand(
		newCalculatorCommand(deratingCalculator()),
		newCalculatorCommand(sizingCalculator()),
		newCalculatorCommand(touchStepCalculator()),
		newCalculatorCommand(offGridCalculator()),
		newCalculatorCommand(microHydroCalculator()),
		newCalculatorCommand(pricingCalculator()),
	)
}

// newCalculatorCommand builds the cobra command for one calculator
func newCalculatorCommand[I any, R any](c calculator[I, R]) *cobra.Command {
	var file, saveName string

	cmd := &cobra.Command{
		Use:   c.use,
		Short: c.short,
		Long:  c.long,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			exitCode := runCalculatorFile(ctx, os.Stdout, cmd.InOrStdin(), c, file, saveName)
			if exitCode != exitOK {
				os.Exit(exitCode)
			}
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Input file (YAML or JSON), - for stdin")
	cmd.Flags().StringVar(&saveName, "save", "", "Save the calculation to the API under this name")
	return cmd
}

// runCalculatorFile reads the input file and runs the calculator
func runCalculatorFile[I any, R any](ctx context.Context, w io.Writer, stdin io.Reader, c calculator[I, R], file, saveName string) int {
	var input I
	if err := readInput(file, stdin, &input); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	return runCalculation(ctx, w, c, input, saveName)
}

// runCalculation computes, optionally saves and prints a result, returning the exit code
func runCalculation[I any, R any](ctx context.Context, w io.Writer, c calculator[I, R], input I, saveName string) int {
	result, err := compute(ctx, c, input)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	var saved *models.SavedCalculation
	if saveName != "" {
		saved, err = client.New(GetAPIURL()).SaveCalculation(ctx, saveName, c.kind, input)
		if err != nil {
			fmt.Fprintf(w, "Error: saving calculation: %v\n", err)
			return exitError
		}
	}

	switch {
	case IsJSONOutput() && saved != nil:
		fmt.Fprintln(w, formatJSON(saved))
	case IsJSONOutput():
		fmt.Fprintln(w, formatJSON(result))
	default:
		fmt.Fprintln(w, c.human(result))
		if saved != nil {
			fmt.Fprintf(w, "\nSaved as %s\n", saved.ID)
		}
	}

	if c.failed != nil && c.failed(result) {
		return exitFailed
	}
	return exitOK
}

// compute runs the engine locally, or remotely with --remote
func compute[I any, R any](ctx context.Context, c calculator[I, R], input I) (R, error) {
	var result R
	if IsRemote() {
		err := client.New(GetAPIURL()).Calculate(ctx, c.kind, input, &result)
		return result, err
	}

	if err := inputValidator.Validate(input); err != nil {
		return result, err
	}
	return c.run(input)
}
