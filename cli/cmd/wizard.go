// ABOUTME: Interactive derating wizard command for the sparkcalc CLI
// ABOUTME: Collects a cable derating input in a TUI then runs the calculation

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sparkcalc/sparkcalc/backend/models"
	"github.com/sparkcalc/sparkcalc/cli/internal/tui/wizard"
)

var wizardFile string

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Step through a cable derating calculation interactively",
	Long: `Collect a cable derating input in three steps (cable, installation, load)
and run the calculation. With --file, the wizard starts from an existing input.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runWizard(ctx, os.Stdout, cmd.InOrStdin())
		if exitCode != exitOK {
			os.Exit(exitCode)
		}
	},
}

func init() {
	wizardCmd.Flags().StringVarP(&wizardFile, "file", "f", "", "Start from an existing input file")
	rootCmd.AddCommand(wizardCmd)
}

// wizardModel hosts the wizard and records how it finished
type wizardModel struct {
	wizard    *wizard.Wizard
	input     *models.CableDeratingInput
	cancelled bool
}

func (m *wizardModel) Init() tea.Cmd {
	return m.wizard.Init()
}

func (m *wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case wizard.WizardCompleteMsg:
		m.input = msg.Input
		return m, tea.Quit
	case wizard.WizardCancelledMsg:
		m.cancelled = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancelled = true
			return m, tea.Quit
		}
	}

	_, cmd := m.wizard.Update(msg)
	return m, cmd
}

func (m *wizardModel) View() string {
	if m.input != nil || m.cancelled {
		return ""
	}
	return m.wizard.View()
}

func runWizard(ctx context.Context, w io.Writer, stdin io.Reader) int {
	var defaults *models.CableDeratingInput
	if wizardFile != "" {
		defaults = &models.CableDeratingInput{}
		if err := readInput(wizardFile, stdin, defaults); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitError
		}
	}

	model := &wizardModel{wizard: wizard.New(defaults)}
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	if model.cancelled || model.input == nil {
		fmt.Fprintln(w, "Wizard cancelled")
		return exitError
	}

	return runCalculation(ctx, w, deratingCalculator(), *model.input, "")
}
