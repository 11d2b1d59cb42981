// ABOUTME: Cable derating wizard as a bubbletea model
// ABOUTME: Uses huh forms with visual progress indicator for step navigation

package wizard

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sparkcalc/sparkcalc/backend/models"
	"github.com/sparkcalc/sparkcalc/cli/internal/tui/icons"
	"github.com/sparkcalc/sparkcalc/cli/internal/tui/styles"
)

// WizardCompleteMsg is sent when the wizard finishes successfully
type WizardCompleteMsg struct {
	Input *models.CableDeratingInput
}

// WizardCancelledMsg is sent when the wizard is cancelled
type WizardCancelledMsg struct{}

// Wizard collects a cable derating input as a bubbletea model
type Wizard struct {
	input *models.CableDeratingInput
	form  *huh.Form
	step  int
	width int

	// Form field values (strings for huh inputs)
	baseRating     string
	ambientTemp    string
	numberOfCables string
	soilResistance string
	designCurrent  string
	deviceRating   string
}

// Step names for progress indicator
var stepNames = []string{"Cable", "Installation", "Load"}

// createTheme returns a huh theme using the CLI palette
func createTheme() *huh.Theme {
	t := huh.ThemeBase()

	amber := lipgloss.Color("#F59E0B")      // primary
	amberLight := lipgloss.Color("#FCD34D") // accents
	gray := lipgloss.Color("#9CA3AF")
	grayLight := lipgloss.Color("#E5E7EB")
	red := lipgloss.Color("#F87171")
	slate := lipgloss.Color("#334155")

	// Group styles (section headers)
	t.Group.Title = lipgloss.NewStyle().
		Foreground(amber).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	// Focused field styles
	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(amber)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(amberLight).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(red).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(red)

	// Select field styles
	t.Focused.SelectSelector = lipgloss.NewStyle().
		Foreground(amber).
		SetString("> ")
	t.Focused.Option = lipgloss.NewStyle().
		Foreground(grayLight)
	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(amber).
		Bold(true)
	t.Focused.NextIndicator = lipgloss.NewStyle().
		Foreground(amber).
		MarginLeft(1).
		SetString("→")
	t.Focused.PrevIndicator = lipgloss.NewStyle().
		Foreground(amber).
		MarginRight(1).
		SetString("←")

	// Text input styles
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(amber)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(amber)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(grayLight)

	// Button styles
	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#111827")).
		Background(amber).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(gray).
		Background(slate).
		Padding(0, 2).
		MarginRight(1)

	// Blurred field styles (inherit from focused with muted colors)
	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)
	t.Blurred.SelectSelector = lipgloss.NewStyle().
		Foreground(gray).
		SetString("  ")
	t.Blurred.Option = lipgloss.NewStyle().
		Foreground(gray)

	return t
}

var cableTypeOptions = []huh.Option[models.CableType]{
	huh.NewOption("PVC 70°C", models.CableTypePVC70),
	huh.NewOption("XLPE 90°C", models.CableTypeXLPE90),
	huh.NewOption("Mineral 105°C", models.CableTypeMineral105),
	huh.NewOption("Silicone 180°C", models.CableTypeSilicone180),
}

var methodOptions = []huh.Option[models.InstallationMethod]{
	huh.NewOption("A1 - conduit in insulated wall", models.MethodA1),
	huh.NewOption("A2 - multicore conduit in insulated wall", models.MethodA2),
	huh.NewOption("B1 - conduit on a wall", models.MethodB1),
	huh.NewOption("B2 - multicore trunking on a wall", models.MethodB2),
	huh.NewOption("C - clipped direct", models.MethodC),
	huh.NewOption("D1 - ducts in the ground", models.MethodD1),
	huh.NewOption("D2 - direct in the ground", models.MethodD2),
	huh.NewOption("E - multicore in free air", models.MethodE),
	huh.NewOption("F - single-core touching in free air", models.MethodF),
	huh.NewOption("G - single-core spaced in free air", models.MethodG),
}

var insulationOptions = []huh.Option[models.ThermalInsulation]{
	huh.NewOption("None", models.InsulationNone),
	huh.NewOption("One side touching", models.InsulationOneSideTouching),
	huh.NewOption("One side embedded", models.InsulationOneSideEmbedded),
	huh.NewOption("Surrounded, 50 mm", models.InsulationSurrounded50mm),
	huh.NewOption("Surrounded, 100 mm", models.InsulationSurrounded100mm),
	huh.NewOption("Surrounded, 200 mm", models.InsulationSurrounded200mm),
	huh.NewOption("Surrounded, 300 mm", models.InsulationSurrounded300mm),
	huh.NewOption("Surrounded, 400 mm", models.InsulationSurrounded400mm),
	huh.NewOption("Fully surrounded", models.InsulationFullySurrounded),
}

// deviceRatingOptions offers no compliance check followed by every standard rating
func deviceRatingOptions() []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("None (skip compliance check)", "")}
	for _, r := range models.StandardDeviceRatings {
		v := strconv.FormatFloat(r, 'f', -1, 64)
		opts = append(opts, huh.NewOption(v+" A", v))
	}
	return opts
}

// New creates a wizard seeded from defaults, or a 2.5 mm² clipped-direct circuit when nil
func New(defaults *models.CableDeratingInput) *Wizard {
	input := &models.CableDeratingInput{
		BaseRatingAmps:         27,
		CableType:              models.CableTypePVC70,
		InstallationMethod:     models.MethodC,
		AmbientTempC:           30,
		NumberOfCables:         1,
		ThermalInsulation:      models.InsulationNone,
		SoilThermalResistivity: 2.5,
	}
	if defaults != nil {
		copied := *defaults
		input = &copied
	}

	w := &Wizard{
		input:          input,
		step:           1,
		baseRating:     formatFloat(input.BaseRatingAmps),
		ambientTemp:    formatFloat(input.AmbientTempC),
		numberOfCables: strconv.Itoa(input.NumberOfCables),
		soilResistance: formatFloat(input.SoilThermalResistivity),
	}
	if input.DesignCurrent != nil {
		w.designCurrent = formatFloat(*input.DesignCurrent)
	}
	if input.DeviceRating != nil {
		w.deviceRating = formatFloat(*input.DeviceRating)
	}

	w.form = w.createStep1Form()
	return w
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (w *Wizard) createStep1Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[models.CableType]().
				Title("Cable type").
				Description("Use ↑/↓ to select, Enter to confirm").
				Options(cableTypeOptions...).
				Value(&w.input.CableType),
			huh.NewInput().
				Title("Tabulated rating (A)").
				Description("Current-carrying capacity from the cable tables").
				Placeholder("e.g., 27").
				CharLimit(7).
				Value(&w.baseRating).
				Validate(validatePositiveFloat),
		).Title("Step 1: Cable").
			Description("Which cable are you derating?"),
	).WithTheme(createTheme())
}

func (w *Wizard) createStep2Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[models.InstallationMethod]().
				Title("Installation method").
				Description("Reference method from Appendix 4").
				Options(methodOptions...).
				Value(&w.input.InstallationMethod),
			huh.NewSelect[models.ThermalInsulation]().
				Title("Thermal insulation").
				Description("Building insulation around the cable").
				Options(insulationOptions...).
				Value(&w.input.ThermalInsulation),
			huh.NewInput().
				Title("Number of circuits grouped").
				Placeholder("e.g., 3").
				CharLimit(3).
				Value(&w.numberOfCables).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Ambient temperature (°C)").
				Placeholder("e.g., 30").
				CharLimit(6).
				Value(&w.ambientTemp).
				Validate(validateTemperature),
			huh.NewInput().
				Title("Soil thermal resistivity (K·m/W)").
				Description("Used for buried methods only").
				Placeholder("e.g., 2.5").
				CharLimit(6).
				Value(&w.soilResistance).
				Validate(validateNonNegativeFloat),
		).Title("Step 2: Installation").
			Description("How and where is the cable installed?"),
	).WithTheme(createTheme())
}

func (w *Wizard) createStep3Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Design current Ib (A)").
				Description("Leave blank to skip the compliance check").
				Placeholder("e.g., 20").
				CharLimit(7).
				Value(&w.designCurrent).
				Validate(validateOptionalPositiveFloat),
			huh.NewSelect[string]().
				Title("Protective device rating In").
				Options(deviceRatingOptions()...).
				Value(&w.deviceRating),
		).Title("Step 3: Load").
			Description("Check Ib ≤ In ≤ Iz for the circuit"),
	).WithTheme(createTheme())
}

// Init implements tea.Model
func (w *Wizard) Init() tea.Cmd {
	return w.form.Init()
}

// Update implements tea.Model
func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		form, cmd := w.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			w.form = f
		}
		return w, cmd

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return w, func() tea.Msg { return WizardCancelledMsg{} }
		}
	}

	form, cmd := w.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		w.form = f
	}

	if w.form.State == huh.StateCompleted {
		return w.advanceStep()
	}

	return w, cmd
}

func (w *Wizard) advanceStep() (tea.Model, tea.Cmd) {
	switch w.step {
	case 1:
		w.step = 2
		w.form = w.createStep2Form()
		return w, w.form.Init()

	case 2:
		w.step = 3
		w.form = w.createStep3Form()
		return w, w.form.Init()

	case 3:
		w.applyFields()
		return w, func() tea.Msg {
			return WizardCompleteMsg{Input: w.input}
		}
	}

	return w, nil
}

// applyFields parses the text fields into the input; validators have already run
func (w *Wizard) applyFields() {
	w.input.BaseRatingAmps, _ = strconv.ParseFloat(strings.TrimSpace(w.baseRating), 64)
	w.input.AmbientTempC, _ = strconv.ParseFloat(strings.TrimSpace(w.ambientTemp), 64)
	w.input.NumberOfCables, _ = strconv.Atoi(strings.TrimSpace(w.numberOfCables))
	w.input.SoilThermalResistivity, _ = strconv.ParseFloat(strings.TrimSpace(w.soilResistance), 64)
	w.input.DesignCurrent = parseOptional(w.designCurrent)
	w.input.DeviceRating = parseOptional(w.deviceRating)
}

func parseOptional(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// SetWidth sets the wizard width for proper rendering
func (w *Wizard) SetWidth(width int) {
	w.width = width
}

// View implements tea.Model
func (w *Wizard) View() string {
	var sb strings.Builder

	sb.WriteString(w.renderProgress())
	sb.WriteString("\n\n")
	sb.WriteString(w.form.View())

	return sb.String()
}

// renderProgress renders the step progress indicator
func (w *Wizard) renderProgress() string {
	width := w.width - 1
	if width < 60 {
		width = 60
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary)

	var steps []string
	for i, name := range stepNames {
		stepNum := i + 1
		var indicator string
		var nameStyle lipgloss.Style

		switch {
		case stepNum < w.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Secondary).Render(icons.CheckOK.String())
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		case stepNum == w.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("●")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
		default:
			indicator = lipgloss.NewStyle().Foreground(styles.Muted).Render("○")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		}

		steps = append(steps, fmt.Sprintf("%s %s", indicator, nameStyle.Render(name)))
	}

	stepsLine := strings.Join(steps, "    ")

	// "│  " + bar + " │" = 5 chars overhead
	barWidth := width - 5
	filledWidth := (w.step * barWidth) / len(stepNames)
	emptyWidth := barWidth - filledWidth

	filledBar := lipgloss.NewStyle().Foreground(styles.Primary).Render(strings.Repeat("━", filledWidth))
	emptyBar := lipgloss.NewStyle().Foreground(styles.Surface).Render(strings.Repeat("─", emptyWidth))

	title := icons.Wizard.String() + " Progress"
	styledTitle := titleStyle.Render(title)
	titleWidth := lipgloss.Width(title)

	// "┌─ " + title + " " + fill + "┐"
	topBorder := "┌─ " + styledTitle + " " + strings.Repeat("─", max(0, width-5-titleWidth)) + "┐"

	stepsPadding := max(0, width-4-lipgloss.Width(stepsLine))
	stepsLinePadded := "│ " + stepsLine + strings.Repeat(" ", stepsPadding) + " │"
	progressLinePadded := "│  " + filledBar + emptyBar + " │"
	bottomBorder := "└" + strings.Repeat("─", width-2) + "┘"

	return borderStyle.Render(strings.Join([]string{
		topBorder,
		stepsLinePadded,
		progressLinePadded,
		bottomBorder,
	}, "\n"))
}

// GetInput returns the collected derating input
func (w *Wizard) GetInput() *models.CableDeratingInput {
	return w.input
}

func validatePositiveInt(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return fmt.Errorf("must be a positive whole number")
	}
	return nil
}

func validatePositiveFloat(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return fmt.Errorf("must be a positive number")
	}
	return nil
}

func validateNonNegativeFloat(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return fmt.Errorf("must be zero or more")
	}
	return nil
}

func validateOptionalPositiveFloat(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return validatePositiveFloat(s)
}

func validateTemperature(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < -40 || v > 200 {
		return fmt.Errorf("must be between -40 and 200")
	}
	return nil
}
