// ABOUTME: Human-readable output for calculator results
// ABOUTME: Renders results as styled key/value blocks with warnings and recommendations

package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sparkcalc/sparkcalc/backend/models"
	"github.com/sparkcalc/sparkcalc/cli/internal/tui/icons"
	"github.com/sparkcalc/sparkcalc/cli/internal/tui/styles"
)

const labelWidth = 28

// block accumulates lines of a rendered result
type block struct {
	lines []string
}

func (b *block) title(icon icons.Icon, text string) {
	if len(b.lines) > 0 {
		b.lines = append(b.lines, "")
	}
	b.lines = append(b.lines, styles.Title.Render(icon.String()+" "+text))
}

func (b *block) section(text string) {
	b.lines = append(b.lines, "", styles.Subtitle.Render(text))
}

func (b *block) row(label, format string, args ...any) {
	b.lines = append(b.lines, "  "+styles.KeyStyle.Render(fmt.Sprintf("%-*s", labelWidth, label))+" "+fmt.Sprintf(format, args...))
}

func (b *block) line(text string) {
	b.lines = append(b.lines, "  "+text)
}

func (b *block) status(ok bool, pass, fail string) {
	if ok {
		b.line(styles.StatusOK.Render(icons.CheckOK.String() + " " + pass))
	} else {
		b.line(styles.StatusCritical.Render(icons.Critical.String() + " " + fail))
	}
}

func (b *block) warnings(ws []models.Warning) {
	if len(ws) == 0 {
		return
	}
	b.section("Warnings")
	for _, w := range ws {
		style := styles.StatusInfo
		switch w.Severity {
		case models.SeverityCritical:
			style = styles.StatusCritical
		case models.SeverityWarning:
			style = styles.StatusWarning
		}
		b.line(style.Render(icons.ForSeverity(w.Severity).String()) + " " + w.Message)
	}
}

func (b *block) recommendations(rs []string) {
	if len(rs) == 0 {
		return
	}
	b.section("Recommendations")
	for _, r := range rs {
		b.line("• " + r)
	}
}

func (b *block) String() string {
	return strings.Join(b.lines, "\n")
}

func gbp(d decimal.Decimal) string {
	return "£" + d.StringFixed(2)
}

// formatJSON renders any result as indented JSON
func formatJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data)
}

func formatDerating(r models.CableDeratingResult) string {
	var b block
	b.title(icons.Cable, "Cable Derating")
	deratingRows(&b, r)
	b.warnings(r.Warnings)
	return b.String()
}

func deratingRows(b *block, r models.CableDeratingResult) {
	b.row("Base rating (It)", "%.2f A", r.BaseRating)
	b.row("Temperature factor (Ca)", "%.3f", r.TemperatureFactor)
	b.row("Grouping factor (Cg)", "%.3f", r.GroupingFactor)
	b.row("Insulation factor (Ci)", "%.3f", r.InsulationFactor)
	b.row("Soil factor (Cs)", "%.3f", r.SoilFactor)
	b.row("Total derating", "%.3f", r.TotalDerating)
	b.row("Derated rating (Iz)", "%s  (%.1f%% reduction)", styles.ValueStyle.Render(fmt.Sprintf("%.2f A", r.FinalRating)), r.DeratingPercentage)

	if c := r.Compliance; c != nil {
		b.section("Compliance (Ib ≤ In ≤ Iz)")
		b.row("Design current (Ib)", "%.2f A", c.Ib)
		b.row("Device rating (In)", "%.2f A", c.In)
		b.row("Derated rating (Iz)", "%.2f A", c.Iz)
		b.row("Safety margin", "%.1f%%", c.SafetyMargin)
		b.status(c.Compliant, "Compliant", complianceFailure(c))
	}
}

func complianceFailure(c *models.ComplianceCheck) string {
	switch {
	case !c.IbInCompliant && !c.InIzCompliant:
		return "Non-compliant: Ib exceeds In and In exceeds Iz"
	case !c.IbInCompliant:
		return "Non-compliant: design current exceeds device rating"
	default:
		return "Non-compliant: device rating exceeds derated cable rating"
	}
}

func formatSizing(r models.CableSizingResult) string {
	var b block
	b.title(icons.Cable, "Cable Sizing")
	b.row("Cable", "%s", r.Cable)
	b.row("Selected size", "%s", styles.ValueStyle.Render(fmt.Sprintf("%gmm²", r.SizeMm2)))
	b.row("Tabulated rating", "%.0f A", r.TabulatedRating)
	deratingRows(&b, r.Derating)

	b.section("Voltage drop")
	b.row("Drop", "%.2f V (%.2f%%)", r.VoltageDropVolts, r.VoltageDropPercent)
	b.row("Limit", "%.0f%%", r.VoltageDropLimit)
	b.row("Usage of limit", "%s", styles.ProgressBar(percentOfLimit(r.VoltageDropPercent, r.VoltageDropLimit), 20))
	b.status(r.VoltageDropOK, "Within limit", "Exceeds limit")

	b.section("Cost")
	b.row("Per metre", "%s", gbp(r.CostPerMetre))
	b.row("Total cable", "%s", gbp(r.TotalCableCost))

	b.warnings(r.Warnings)
	return b.String()
}

func percentOfLimit(value, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return value / limit * 100
}

func formatTouchStep(r models.TouchStepResult) string {
	var b block
	b.title(icons.Earth, "Touch & Step Voltage")
	b.row("Electrode resistance", "%.2f Ω", r.ElectrodeResistanceOhms)
	b.row("Earth potential rise", "%.1f V", r.EarthPotentialRiseVolts)
	b.row("Touch voltage", "%.1f V (limit %.0f V)", r.TouchVoltage, r.PermissibleTouchVoltage)
	b.row("Step voltage", "%.1f V (limit %.0f V)", r.StepVoltage, r.PermissibleStepVoltage)
	b.row("Body impedance", "%.0f Ω", r.BodyImpedanceOhms)
	b.row("Body current", "%.1f mA", r.BodyCurrentMilliamps)
	b.row("Physiological zone", "%d (%s)  %s", r.PhysiologicalZoneNumber, r.PhysiologicalZone, r.ZoneDescription)
	b.row("Safety margin", "%.1f%%", r.SafetyMarginPercent)
	if r.HotSite {
		b.line(styles.StatusWarning.Render(icons.Warning.String() + " Hot site: EPR exceeds 430 V"))
	}
	b.status(r.Passed(), "PASS", "FAIL")
	b.recommendations(r.Recommendations)
	return b.String()
}

func formatOffGrid(r models.OffGridResult) string {
	var b block
	b.title(icons.Sun, "Off-Grid System")
	b.row("Required solar capacity", "%.2f kW", r.RequiredSolarCapacityKw)
	b.row("Panels", "%d (%.2f kW array)", r.NumberOfPanels, r.ArrayCapacityKw)
	b.row("Battery capacity required", "%.0f Ah", r.RequiredBatteryCapacityAh)
	b.row("Batteries", "%d", r.NumberOfBatteries)
	b.row("Inverter", "%.2f kW", r.InverterSizeKw)
	b.row("Charge controller", "%.1f A", r.ChargeControllerSizeAmps)
	b.row("Daily energy balance", "%+.2f kWh", r.DailyEnergyBalanceKwh)
	b.row("Overall efficiency", "%.1f%%", r.OverallEfficiencyPercent)
	b.row("System rating", "%s", styles.ValueStyle.Render(string(r.SystemRating)))

	b.section("Efficiency chain")
	for _, s := range r.EfficiencyChain {
		b.row(s.Stage, "%.1f%%  (loss %.2f kWh)", s.EfficiencyPercent, s.LossKwh)
	}

	b.section("Costs")
	b.row("Panels", "%s", gbp(r.Costs.Panels))
	b.row("Batteries", "%s", gbp(r.Costs.Batteries))
	b.row("Inverter", "%s", gbp(r.Costs.Inverter))
	b.row("Charge controller", "%s", gbp(r.Costs.ChargeController))
	b.row("Installation", "%s", gbp(r.Costs.Installation))
	b.row("Miscellaneous", "%s", gbp(r.Costs.Miscellaneous))
	b.row("VAT", "%s", gbp(r.Costs.VAT))
	b.row("Total", "%s", styles.ValueStyle.Render(gbp(r.Costs.Total)))

	if r.WireLossWarning != "" {
		b.line(styles.StatusWarning.Render(icons.Warning.String()) + " " + r.WireLossWarning)
	}
	b.status(r.DailyEnergyBalanceKwh >= 0, "Generation covers consumption", "Daily energy deficit")
	b.warnings(r.Warnings)
	b.recommendations(r.Recommendations)
	return b.String()
}

func formatMicroHydro(r models.MicroHydroResult) string {
	var b block
	b.title(icons.Water, "Micro-Hydro")
	b.row("Theoretical power", "%.2f kW", r.TheoreticalPowerKw)
	b.row("Practical power", "%s", styles.ValueStyle.Render(fmt.Sprintf("%.2f kW", r.PracticalPowerKw)))
	b.row("Annual generation", "%.0f kWh", r.AnnualGenerationKwh)
	b.row("Turbine", "%s (%.0f%% efficient)", r.RecommendedTurbine, r.TurbineEfficiency*100)
	b.row("Suitability", "%s", r.TurbineSuitability)

	b.section("Penstock")
	b.row("Diameter", "%.0f mm", r.Penstock.DiameterMm)
	b.row("Material", "%s", r.Penstock.Material)
	b.row("Static pressure", "%.2f bar", r.Penstock.PressureBar)

	b.section("Economics")
	b.row("Turbine", "%s", gbp(r.Costs.Turbine))
	b.row("Civil works", "%s", gbp(r.Costs.CivilWorks))
	b.row("Electrical", "%s", gbp(r.Costs.Electrical))
	b.row("Installation", "%s", gbp(r.Costs.Installation))
	b.row("Penstock", "%s", gbp(r.Costs.Penstock))
	b.row("Total", "%s", styles.ValueStyle.Render(gbp(r.Costs.Total)))
	b.row("Annual revenue", "%s", gbp(r.AnnualRevenue))
	if r.PaybackYears > 0 {
		b.row("Payback", "%.1f years", r.PaybackYears)
	}
	b.status(r.Viability.Viable(), r.ViabilityMessage, r.ViabilityMessage)
	return b.String()
}

func formatPricing(r models.PricingResult) string {
	var b block
	b.title(icons.Pound, "Pricing")
	b.row("Available hours", "%.0f h/month", r.TotalAvailableHours)
	b.row("Required hourly rate", "%s", gbp(r.RequiredHourlyRate))
	b.row("Average job", "%.2f h", r.AverageJobHours)

	b.section("Typical job")
	b.row("Labour", "%s", gbp(r.JobCosting.Labour))
	b.row("Materials", "%s", gbp(r.JobCosting.Materials))
	b.row("Overhead", "%s", gbp(r.JobCosting.Overhead))
	b.row("Total cost", "%s", gbp(r.JobCosting.TotalCost))
	b.row("Profit", "%s", gbp(r.JobCosting.Profit))
	b.row("Minimum quote", "%s", styles.ValueStyle.Render(gbp(r.MinimumQuote)))
	if r.JobCosting.VAT.IsPositive() {
		b.row("VAT", "%s", gbp(r.JobCosting.VAT))
		b.row("Quote inc. VAT", "%s", gbp(r.JobCosting.QuoteIncVAT))
	}

	b.section("Market")
	if r.MarketPosition == models.PositionNoData {
		b.row("Position", "no competitor data")
	} else {
		b.row("Competitor average", "£%.2f/h", r.AverageCompetitorRate)
		b.row("Position", "%s (%+.1f%%)", r.MarketPosition, r.MarketPositionPercent)
	}

	b.section("Monthly")
	b.row("Jobs", "%.1f (%d whole)", r.JobsPerMonth, r.WholeJobsPerMonth)
	b.row("Projected revenue", "%s", gbp(r.ProjectedMonthlyRevenue))
	b.row("Revenue gap", "%s", gbp(r.RevenueGap))
	b.row("Utilisation", "%s %.0f%%", styles.ProgressBar(r.UtilizationRatePercent, 20), r.UtilizationRatePercent)
	b.status(!r.RevenueGap.IsPositive(), "Projected revenue meets target", "Projected revenue below target")

	b.warnings(r.Warnings)
	return b.String()
}
