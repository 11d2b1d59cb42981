// ABOUTME: Micro-hydro power and economics calculator
// ABOUTME: Turbine selection by head, penstock sizing, capital cost and payback

package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sparkcalc/sparkcalc/backend/models"
)

const (
	// WaterDensity in kg/m³
	WaterDensity = 1000.0
	// Gravity in m/s²
	Gravity = 9.81
	// GeneratorEfficiency applied after the turbine
	GeneratorEfficiency = 0.95
	// HoursPerYear used for annual generation
	HoursPerYear = 8760.0

	// PenstockVelocity is the design water velocity in m/s
	PenstockVelocity = 2.5
	// SteelPressureBar is the working pressure at which steel replaces HDPE
	SteelPressureBar = 10.0

	// CivilCostPerKw and ElectricalCostPerKw are GBP per kW installed
	CivilCostPerKw      = 800.0
	ElectricalCostPerKw = 600.0
	// CivilFloorSmall applies below SmallSchemeKw, CivilFloorLarge above
	CivilFloorSmall = 12000.0
	CivilFloorLarge = 20000.0
	SmallSchemeKw   = 10.0
)

var hydroInstallationRate = decimal.NewFromFloat(0.18)

// turbineSpec holds the operating envelope and cost of a turbine family
type turbineSpec struct {
	efficiency float64
	costPerKw  float64
	minHead    float64
	maxHead    float64
	minFlow    float64
	maxFlow    float64
}

// specFor returns the envelope for a concrete turbine type
func specFor(t models.TurbineType) (turbineSpec, bool) {
	switch t {
	case models.TurbinePelton:
		return turbineSpec{efficiency: 0.88, costPerKw: 2500, minHead: 50, maxHead: 1000, minFlow: 0.005, maxFlow: 0.5}, true
	case models.TurbineTurgo:
		return turbineSpec{efficiency: 0.85, costPerKw: 2800, minHead: 30, maxHead: 250, minFlow: 0.01, maxFlow: 1.0}, true
	case models.TurbineFrancis:
		return turbineSpec{efficiency: 0.90, costPerKw: 2200, minHead: 10, maxHead: 300, minFlow: 0.1, maxFlow: 10}, true
	case models.TurbineKaplan:
		return turbineSpec{efficiency: 0.90, costPerKw: 3000, minHead: 2, maxHead: 30, minFlow: 0.3, maxFlow: 30}, true
	case models.TurbineCrossflow:
		return turbineSpec{efficiency: 0.78, costPerKw: 1800, minHead: 2, maxHead: 100, minFlow: 0.02, maxFlow: 5}, true
	}
	return turbineSpec{}, false
}

// SelectTurbine picks the conventional turbine family for a head
func SelectTurbine(headM float64) models.TurbineType {
	switch {
	case headM >= 50:
		return models.TurbinePelton
	case headM >= 30:
		return models.TurbineTurgo
	case headM >= 10:
		return models.TurbineFrancis
	case headM >= 2:
		return models.TurbineKaplan
	default:
		return models.TurbineCrossflow
	}
}

// MicroHydroCalculator sizes run-of-river hydro schemes
type MicroHydroCalculator struct{}

// NewMicroHydroCalculator creates a new calculator
func NewMicroHydroCalculator() *MicroHydroCalculator {
	return &MicroHydroCalculator{}
}

// Calculate computes generation, penstock and economics for the site
func (c *MicroHydroCalculator) Calculate(input models.MicroHydroInput) (models.MicroHydroResult, error) {
	if !(input.FlowRateM3s > 0) || !(input.HeadMeters > 0) {
		return models.MicroHydroResult{}, fmt.Errorf("%w: flow rate and head must be greater than zero", ErrInvalidInput)
	}
	if !(input.AvailabilityFactorPercent > 0) || input.AvailabilityFactorPercent > 100 {
		return models.MicroHydroResult{}, fmt.Errorf("%w: availability factor must be between 0 and 100", ErrInvalidInput)
	}
	if input.ElectricityRatePerKwh < 0 || input.PenstockLengthMeters < 0 {
		return models.MicroHydroResult{}, fmt.Errorf("%w: tariff and penstock length cannot be negative", ErrInvalidInput)
	}

	turbine := input.TurbineType
	if turbine == models.TurbineAuto {
		turbine = SelectTurbine(input.HeadMeters)
	}
	spec, ok := specFor(turbine)
	if !ok {
		return models.MicroHydroResult{}, fmt.Errorf("%w: unknown turbine type %q", ErrInvalidInput, sanitizeForLog(string(input.TurbineType)))
	}

	theoretical := WaterDensity * Gravity * input.FlowRateM3s * input.HeadMeters / 1000
	practical := theoretical * spec.efficiency * GeneratorEfficiency
	annual := practical * HoursPerYear * input.AvailabilityFactorPercent / 100
	if err := checkFinite("generated power", theoretical, annual, practical*math.Max(spec.costPerKw, CivilCostPerKw)); err != nil {
		return models.MicroHydroResult{}, err
	}
	if err := checkFinite("annual revenue", annual*input.ElectricityRatePerKwh); err != nil {
		return models.MicroHydroResult{}, err
	}

	penstock, err := sizePenstock(input.FlowRateM3s, input.HeadMeters, input.PenstockLengthMeters)
	if err != nil {
		return models.MicroHydroResult{}, err
	}

	result := models.MicroHydroResult{
		TheoreticalPowerKw:  theoretical,
		PracticalPowerKw:    practical,
		AnnualGenerationKwh: annual,
		RecommendedTurbine:  turbine,
		TurbineEfficiency:   spec.efficiency,
		TurbineSuitability:  suitability(input, turbine, spec),
		Penstock:            penstock,
	}

	turbineCost := pounds(practical * spec.costPerKw)
	civilFloor := CivilFloorLarge
	if practical < SmallSchemeKw {
		civilFloor = CivilFloorSmall
	}
	civil := pounds(math.Max(civilFloor, practical*CivilCostPerKw))
	electrical := pounds(practical * ElectricalCostPerKw)
	installation := percentOf(sum(turbineCost, civil, electrical), hydroInstallationRate)

	result.Costs = models.MicroHydroCosts{
		Turbine:      turbineCost,
		CivilWorks:   civil,
		Electrical:   electrical,
		Installation: installation,
		Penstock:     result.Penstock.Cost,
		Total:        sum(turbineCost, civil, electrical, installation, result.Penstock.Cost),
	}

	result.AnnualRevenue = pounds(annual * input.ElectricityRatePerKwh)
	if result.AnnualRevenue.IsPositive() {
		result.PaybackYears = result.Costs.Total.Div(result.AnnualRevenue).InexactFloat64()
	}
	result.Viability, result.ViabilityMessage = viability(result.PaybackYears, result.AnnualRevenue)

	return result, nil
}

// sizePenstock sizes the pipe for the design velocity and picks its material
func sizePenstock(flow, head, lengthM float64) (models.Penstock, error) {
	area := flow / PenstockVelocity
	diameterMm := math.Sqrt(4*area/math.Pi) * 1000
	pressure := WaterDensity * Gravity * head / 100000
	cost := lengthM * (80 + diameterMm/10*15)
	if err := checkFinite("penstock", diameterMm, pressure, cost); err != nil {
		return models.Penstock{}, err
	}

	material := models.PenstockHDPE
	if pressure >= SteelPressureBar {
		material = models.PenstockSteel
	}

	return models.Penstock{
		DiameterMm:  diameterMm,
		Material:    material,
		PressureBar: pressure,
		Cost:        pounds(cost),
	}, nil
}

// suitability compares the site against the turbine's operating envelope
func suitability(input models.MicroHydroInput, turbine models.TurbineType, spec turbineSpec) string {
	name := strings.ToUpper(string(turbine[:1])) + string(turbine[1:])

	var issues []string
	if input.HeadMeters < spec.minHead || input.HeadMeters > spec.maxHead {
		issues = append(issues, fmt.Sprintf("head of %.1fm is outside the %g-%gm range", input.HeadMeters, spec.minHead, spec.maxHead))
	}
	if input.FlowRateM3s < spec.minFlow || input.FlowRateM3s > spec.maxFlow {
		issues = append(issues, fmt.Sprintf("flow of %.3fm³/s is outside the %g-%gm³/s range", input.FlowRateM3s, spec.minFlow, spec.maxFlow))
	}

	if len(issues) == 0 {
		return fmt.Sprintf("%s turbine is well suited to %.1fm head and %.2fm³/s flow", name, input.HeadMeters, input.FlowRateM3s)
	}

	msg := fmt.Sprintf("%s turbine is a poor match: %s", name, strings.Join(issues, " and "))
	if typical := SelectTurbine(input.HeadMeters); typical != turbine {
		msg += fmt.Sprintf(" (a %s turbine is typical for this head)", typical)
	}
	return msg
}

// viability grades the payback period
func viability(paybackYears float64, revenue decimal.Decimal) (models.Viability, string) {
	switch {
	case !revenue.IsPositive():
		return models.ViabilityNotViable, "Not viable: no revenue at the given electricity rate"
	case paybackYears > 20:
		return models.ViabilityPoor, "Poor: payback exceeds 20 years"
	case paybackYears > 15:
		return models.ViabilityMarginal, "Marginal: payback between 15 and 20 years"
	case paybackYears > 10:
		return models.ViabilityReasonable, "Reasonable: payback between 10 and 15 years"
	default:
		return models.ViabilityExcellent, "Excellent: payback within 10 years"
	}
}
