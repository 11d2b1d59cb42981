// ABOUTME: Off-grid solar and battery sizing calculator
// ABOUTME: Sizes array, battery bank, inverter and controller with costs and rating

package services

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/sparkcalc/sparkcalc/backend/models"
)

const (
	// InverterSurgeMargin oversizes the inverter for motor and inrush loads
	InverterSurgeMargin = 1.25
	// PeakLoadHours estimates peak kW as daily kWh over this many hours
	PeakLoadHours = 6.0
	// ControllerSafetyMargin oversizes the charge controller for irradiance peaks
	ControllerSafetyMargin = 1.25

	// DefaultCableRunM is the assumed array to controller run
	DefaultCableRunM = 10.0
	// ReferenceConductorMm2 is the DC conductor assumed for the wire-loss estimate
	ReferenceConductorMm2 = 16.0
	// CopperResistivity is in Ω·mm²/m at 20 °C
	CopperResistivity = 0.0175
	// WireLossThresholdPercent triggers the wire-loss warning
	WireLossThresholdPercent = 3.0
)

// Equipment price assumptions (GBP, ex VAT)
const (
	PanelCostPerWatt           = 0.45
	LithiumCostPerKwh          = 450.0
	AGMCostPerKwh              = 180.0
	InverterCostPerKw          = 300.0
	ChargeControllerCostPerAmp = 4.0
)

var (
	installationRate = decimal.NewFromFloat(0.15)
	miscRate         = decimal.NewFromFloat(0.10)
)

// OffGridCalculator sizes stand-alone PV systems
type OffGridCalculator struct{}

// NewOffGridCalculator creates a new calculator
func NewOffGridCalculator() *OffGridCalculator {
	return &OffGridCalculator{}
}

// Calculate sizes the system. Counts are rounded up so the system is never
// under-provisioned.
func (c *OffGridCalculator) Calculate(input models.OffGridInput) (models.OffGridResult, error) {
	if err := checkOffGridInput(input); err != nil {
		return models.OffGridResult{}, err
	}

	systemV := float64(input.SystemVoltageDC)
	dod := input.DepthOfDischargePercent / 100

	requiredKw := input.DailyConsumptionKwh / input.PeakSunHours / (input.SystemEfficiencyPercent / 100)
	panels, err := ceilCount("number of panels", requiredKw*1000/input.PanelWattage)
	if err != nil {
		return models.OffGridResult{}, err
	}
	arrayW := float64(panels) * input.PanelWattage

	requiredAh := input.DailyConsumptionKwh * input.AutonomyDays * 1000 / (systemV * dod)
	batteryStrings, err := ceilCount("battery strings", requiredAh/(input.BatteryCapacityAh*dod)*locationMultiplier(input.BatteryLocation))
	if err != nil {
		return models.OffGridResult{}, err
	}
	series, err := seriesCount(systemV, input.BatteryVoltage)
	if err != nil {
		return models.OffGridResult{}, err
	}
	batteries, err := ceilCount("number of batteries", float64(batteryStrings)*float64(series))
	if err != nil {
		return models.OffGridResult{}, err
	}

	peakKw := input.DailyConsumptionKwh / PeakLoadHours
	if input.PeakPowerKw != nil && *input.PeakPowerKw > 0 {
		peakKw = *input.PeakPowerKw
	}
	if err := checkFinite("system size", arrayW, requiredAh, peakKw*InverterSurgeMargin); err != nil {
		return models.OffGridResult{}, err
	}

	generatedKwh := arrayW * input.PeakSunHours / 1000
	chain, overall := efficiencyChain(generatedKwh, input.BatteryType)

	result := models.OffGridResult{
		RequiredSolarCapacityKw:   requiredKw,
		NumberOfPanels:            panels,
		ArrayCapacityKw:           arrayW / 1000,
		RequiredBatteryCapacityAh: requiredAh,
		NumberOfBatteries:         batteries,
		InverterSizeKw:            peakKw * InverterSurgeMargin,
		ChargeControllerSizeAmps:  arrayW / systemV * ControllerSafetyMargin,
		DailyEnergyBalanceKwh:     generatedKwh - input.DailyConsumptionKwh,
		OverallEfficiencyPercent:  overall,
		EfficiencyChain:           chain,
	}
	result.Costs, err = c.costs(input, result)
	if err != nil {
		return models.OffGridResult{}, err
	}
	result.SystemRating = c.rate(input, result, generatedKwh)
	result.WireLossWarning = wireLossWarning(arrayW, systemV, input.CableRunM)
	result.Warnings = c.GenerateWarnings(input, result)
	result.Recommendations = c.recommendations(input, result)

	return result, nil
}

func checkOffGridInput(input models.OffGridInput) error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"daily consumption", input.DailyConsumptionKwh},
		{"peak sun hours", input.PeakSunHours},
		{"autonomy days", input.AutonomyDays},
		{"panel wattage", input.PanelWattage},
		{"battery capacity", input.BatteryCapacityAh},
		{"battery voltage", input.BatteryVoltage},
		{"depth of discharge", input.DepthOfDischargePercent},
		{"system efficiency", input.SystemEfficiencyPercent},
	} {
		if !(f.value > 0) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be greater than zero", ErrInvalidInput, f.name)
		}
	}
	if input.DepthOfDischargePercent > 100 || input.SystemEfficiencyPercent > 100 {
		return fmt.Errorf("%w: percentages cannot exceed 100", ErrInvalidInput)
	}
	switch input.SystemVoltageDC {
	case 12, 24, 48:
	default:
		return fmt.Errorf("%w: system voltage must be 12, 24 or 48V", ErrInvalidInput)
	}
	if !input.BatteryType.Valid() {
		return fmt.Errorf("%w: unknown battery type %q", ErrInvalidInput, sanitizeForLog(string(input.BatteryType)))
	}
	if !input.BatteryLocation.Valid() {
		return fmt.Errorf("%w: unknown battery location %q", ErrInvalidInput, sanitizeForLog(string(input.BatteryLocation)))
	}
	return nil
}

// locationMultiplier adds capacity for cold-weather losses outside a heated space
func locationMultiplier(loc models.BatteryLocation) float64 {
	switch loc {
	case models.LocationSheltered:
		return 1.15
	case models.LocationOutdoor:
		return 1.30
	}
	return 1.0
}

// seriesCount is the number of batteries per string to reach the system voltage
func seriesCount(systemV, batteryV float64) (int, error) {
	if batteryV >= systemV {
		return 1, nil
	}
	return ceilCount("batteries per string", systemV/batteryV)
}

// batteryEfficiency is the round-trip efficiency by chemistry
func batteryEfficiency(t models.BatteryType) float64 {
	switch t {
	case models.BatteryLithium:
		return 95
	case models.BatteryAGM:
		return 85
	}
	return 0
}

// efficiencyChain walks generated energy through each conversion stage
func efficiencyChain(generatedKwh float64, battery models.BatteryType) ([]models.EfficiencyStage, float64) {
	stages := []models.EfficiencyStage{
		{Stage: "Solar panels", EfficiencyPercent: 95},
		{Stage: "MPPT charge controller", EfficiencyPercent: 98},
		{Stage: "Battery round-trip", EfficiencyPercent: batteryEfficiency(battery)},
		{Stage: "Inverter", EfficiencyPercent: 94},
		{Stage: "Wiring", EfficiencyPercent: 97},
	}

	energy := generatedKwh
	overall := 1.0
	for i := range stages {
		eff := stages[i].EfficiencyPercent / 100
		stages[i].LossKwh = energy * (1 - eff)
		energy -= stages[i].LossKwh
		overall *= eff
	}
	return stages, overall * 100
}

func (c *OffGridCalculator) costs(input models.OffGridInput, r models.OffGridResult) (models.OffGridCosts, error) {
	perKwh := LithiumCostPerKwh
	if input.BatteryType == models.BatteryAGM {
		perKwh = AGMCostPerKwh
	}
	batteryKwh := float64(r.NumberOfBatteries) * input.BatteryCapacityAh * input.BatteryVoltage / 1000

	panels := float64(r.NumberOfPanels) * input.PanelWattage * PanelCostPerWatt
	batteries := batteryKwh * perKwh
	inverter := r.InverterSizeKw * InverterCostPerKw
	controller := r.ChargeControllerSizeAmps * ChargeControllerCostPerAmp
	if err := checkFinite("equipment cost", panels, batteries, inverter, controller); err != nil {
		return models.OffGridCosts{}, err
	}

	costs := models.OffGridCosts{
		Panels:           pounds(panels),
		Batteries:        pounds(batteries),
		Inverter:         pounds(inverter),
		ChargeController: pounds(controller),
	}
	equipment := sum(costs.Panels, costs.Batteries, costs.Inverter, costs.ChargeController)
	costs.Installation = percentOf(equipment, installationRate)
	costs.Miscellaneous = percentOf(equipment, miscRate)
	costs.VAT = percentOf(sum(equipment, costs.Installation, costs.Miscellaneous), VATRate)
	costs.Total = sum(equipment, costs.Installation, costs.Miscellaneous, costs.VAT)
	return costs, nil
}

// rate classifies the design from its generation margin, downgraded one
// step when the cost per daily kWh is high
func (c *OffGridCalculator) rate(input models.OffGridInput, r models.OffGridResult, generatedKwh float64) models.SystemRating {
	ladder := []models.SystemRating{
		models.RatingExcellent, models.RatingGood, models.RatingAdequate, models.RatingMarginal, models.RatingPoor,
	}

	ratio := generatedKwh / input.DailyConsumptionKwh
	idx := 4
	switch {
	case ratio >= 1.3:
		idx = 0
	case ratio >= 1.15:
		idx = 1
	case ratio >= 1.0:
		idx = 2
	case ratio >= 0.85:
		idx = 3
	}

	costPerDailyKwh := r.Costs.Total.InexactFloat64() / input.DailyConsumptionKwh
	if costPerDailyKwh > 3000 && idx < len(ladder)-1 {
		idx++
	}
	return ladder[idx]
}

// wireLossWarning estimates DC loss on the array cable against a reference conductor
func wireLossWarning(arrayW, systemV, runM float64) string {
	if runM <= 0 {
		runM = DefaultCableRunM
	}
	current := arrayW / systemV
	dropV := 2 * runM * current * CopperResistivity / ReferenceConductorMm2
	dropPct := dropV / systemV * 100
	if dropPct <= WireLossThresholdPercent {
		return ""
	}
	return fmt.Sprintf("Estimated DC cable loss of %.1f%% at %.0fA over %.0fm: increase conductor size or use a higher system voltage",
		dropPct, current, runM)
}

// GenerateWarnings flags energy deficits and component mismatches
func (c *OffGridCalculator) GenerateWarnings(input models.OffGridInput, r models.OffGridResult) []models.Warning {
	warnings := []models.Warning{}

	if r.DailyEnergyBalanceKwh < 0 {
		warnings = append(warnings, models.Warning{
			Severity: models.SeverityCritical,
			Message:  fmt.Sprintf("Energy deficit of %.2f kWh/day at design sun hours", -r.DailyEnergyBalanceKwh),
		})
	}
	if input.BatteryVoltage > float64(input.SystemVoltageDC) {
		warnings = append(warnings, models.Warning{
			Severity: models.SeverityCritical,
			Message:  fmt.Sprintf("Battery voltage %.0fV exceeds the %dV system voltage", input.BatteryVoltage, input.SystemVoltageDC),
		})
	} else if math.Mod(float64(input.SystemVoltageDC), input.BatteryVoltage) != 0 {
		warnings = append(warnings, models.Warning{
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("%.0fV batteries do not divide evenly into a %dV string", input.BatteryVoltage, input.SystemVoltageDC),
		})
	}
	if input.BatteryType == models.BatteryAGM && input.DepthOfDischargePercent > 50 {
		warnings = append(warnings, models.Warning{
			Severity: models.SeverityWarning,
			Message:  "AGM depth of discharge above 50% will shorten battery life",
		})
	}
	if input.AutonomyDays < 2 {
		warnings = append(warnings, models.Warning{
			Severity: models.SeverityInfo,
			Message:  "Less than two days of autonomy leaves little margin for overcast weather",
		})
	}
	if r.ChargeControllerSizeAmps > 100 {
		warnings = append(warnings, models.Warning{
			Severity: models.SeverityInfo,
			Message:  fmt.Sprintf("Charge current of %.0fA needs multiple controllers in parallel", r.ChargeControllerSizeAmps),
		})
	}

	return warnings
}

func (c *OffGridCalculator) recommendations(input models.OffGridInput, r models.OffGridResult) []string {
	recs := []string{}

	if r.DailyEnergyBalanceKwh < 0 {
		if extra, err := ceilCount("extra panels", -r.DailyEnergyBalanceKwh*1000/(input.PanelWattage*input.PeakSunHours)); err == nil {
			recs = append(recs, fmt.Sprintf("Add %d more %.0fW panels to cover the daily deficit", extra, input.PanelWattage))
		}
	}
	if input.DailyConsumptionKwh > 5 && input.SystemVoltageDC < 48 {
		recs = append(recs, "Use a 48V system to reduce DC currents and cable sizes")
	}
	if input.BatteryLocation != models.LocationIndoor {
		recs = append(recs, "Fit an insulated, ventilated battery enclosure to limit cold-weather capacity loss")
	}
	if input.BatteryType == models.BatteryAGM && input.AutonomyDays >= 3 {
		recs = append(recs, "Lithium batteries allow deeper discharge and reduce bank size for long autonomy")
	}
	if r.SystemRating == models.RatingExcellent {
		recs = append(recs, "Generation comfortably exceeds demand; consider reducing array size if cost is a concern")
	}
	return recs
}
