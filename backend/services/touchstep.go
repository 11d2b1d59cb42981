// ABOUTME: Earth electrode touch and step voltage calculator
// ABOUTME: EPR from electrode resistance, BS EN 50522 limits and IEC 60479 zones

package services

import (
	"fmt"
	"math"

	"github.com/sparkcalc/sparkcalc/backend/models"
)

const (
	// TouchVoltageFactor is the simplified BS EN 50522 touch/EPR ratio
	TouchVoltageFactor = 0.7
	// StepVoltageFactor is the ENA TS 41-24 step/EPR ratio
	StepVoltageFactor = 0.2
	// HotSiteEPRVolts is the EPR above which ENA TS 41-24 classes a site as hot
	HotSiteEPRVolts = 430.0
)

// permissibleLimit is one row of the duration → permissible voltage table
type permissibleLimit struct {
	durationS float64
	touchV    float64
	stepV     float64
}

// permissibleLimits follows BS EN 50522 Annex B (touch) with step limits for
// foot-to-foot current paths. Longer faults permit lower voltages.
var permissibleLimits = []permissibleLimit{
	{durationS: 0.05, touchV: 716, stepV: 2500},
	{durationS: 0.1, touchV: 654, stepV: 2000},
	{durationS: 0.2, touchV: 537, stepV: 1600},
	{durationS: 0.5, touchV: 220, stepV: 1000},
	{durationS: 1, touchV: 117, stepV: 600},
	{durationS: 2, touchV: 96, stepV: 450},
	{durationS: 5, touchV: 86, stepV: 350},
	{durationS: 10, touchV: 85, stepV: 300},
}

// FaultDurations returns the tabulated fault clearance times in seconds
func FaultDurations() []float64 {
	out := make([]float64, len(permissibleLimits))
	for i, l := range permissibleLimits {
		out[i] = l.durationS
	}
	return out
}

// permissibleVoltages looks up the touch and step limits for an exact tabulated duration
func permissibleVoltages(durationS float64) (permissibleLimit, bool) {
	for _, l := range permissibleLimits {
		if l.durationS == durationS {
			return l, true
		}
	}
	return permissibleLimit{}, false
}

// TouchStepCalculator assesses touch and step voltages at an earth electrode
type TouchStepCalculator struct{}

// NewTouchStepCalculator creates a new calculator
func NewTouchStepCalculator() *TouchStepCalculator {
	return &TouchStepCalculator{}
}

// Calculate computes the electrode resistance, EPR and body-current assessment
func (c *TouchStepCalculator) Calculate(input models.TouchStepInput) (models.TouchStepResult, error) {
	if !(input.EarthFaultCurrentAmps > 0) {
		return models.TouchStepResult{}, fmt.Errorf("%w: earth fault current must be greater than zero", ErrInvalidInput)
	}
	if !input.ContactScenario.Valid() {
		return models.TouchStepResult{}, fmt.Errorf("%w: unknown contact scenario %q", ErrInvalidInput, sanitizeForLog(string(input.ContactScenario)))
	}
	limits, ok := permissibleVoltages(input.FaultDurationS)
	if !ok {
		return models.TouchStepResult{}, fmt.Errorf("%w: fault duration %gs is not tabulated", ErrInvalidInput, input.FaultDurationS)
	}

	resistance, err := c.ElectrodeResistance(input)
	if err != nil {
		return models.TouchStepResult{}, err
	}

	bodyImpedance := input.BodyImpedanceOhms
	if bodyImpedance <= 0 {
		bodyImpedance = models.DefaultBodyImpedanceOhms
	}

	epr := input.EarthFaultCurrentAmps * resistance
	if err := checkFinite("earth potential rise", epr, bodyImpedance); err != nil {
		return models.TouchStepResult{}, err
	}
	result := models.TouchStepResult{
		ElectrodeResistanceOhms: resistance,
		EarthPotentialRiseVolts: epr,
		TouchVoltage:            epr * TouchVoltageFactor,
		StepVoltage:             epr * StepVoltageFactor,
		PermissibleTouchVoltage: limits.touchV,
		PermissibleStepVoltage:  limits.stepV,
		BodyImpedanceOhms:       bodyImpedance,
		HotSite:                 epr > HotSiteEPRVolts,
	}

	actual, permissible := result.TouchVoltage, result.PermissibleTouchVoltage
	if input.ContactScenario == models.ContactStep {
		actual, permissible = result.StepVoltage, result.PermissibleStepVoltage
	}

	result.BodyCurrentMilliamps = actual / bodyImpedance * 1000
	result.PhysiologicalZone = classifyZone(result.BodyCurrentMilliamps)
	result.PhysiologicalZoneNumber = result.PhysiologicalZone.Number()
	result.ZoneDescription = result.PhysiologicalZone.Description()

	result.PassOrFail = "fail"
	if actual <= permissible {
		result.PassOrFail = "pass"
	}
	if permissible > 0 {
		result.SafetyMarginPercent = (permissible - actual) / permissible * 100
	}

	result.Recommendations = c.recommendations(input, result)
	return result, nil
}

// ElectrodeResistance returns the resistance to remote earth for the input geometry
func (c *TouchStepCalculator) ElectrodeResistance(input models.TouchStepInput) (float64, error) {
	rho := input.SoilResistivityOhmM
	if !(rho > 0) {
		return 0, fmt.Errorf("%w: soil resistivity must be greater than zero", ErrInvalidInput)
	}

	var r float64
	switch input.ElectrodeType {
	case models.ElectrodeRod:
		l, d := input.RodLengthM, input.RodDiameterM
		if !(l > 0 && d > 0) {
			return 0, fmt.Errorf("%w: rod electrode requires length and diameter", ErrInvalidInput)
		}
		r = rho / (2 * math.Pi * l) * math.Log(4*l/d)
	case models.ElectrodePlate:
		a := input.PlateAreaM2
		if !(a > 0) {
			return 0, fmt.Errorf("%w: plate electrode requires area", ErrInvalidInput)
		}
		r = rho / (4 * math.Sqrt(a/math.Pi))
	case models.ElectrodeStrip:
		l, w, d := input.StripLengthM, input.StripWidthM, input.StripDepthM
		if !(l > 0 && w > 0 && d > 0) {
			return 0, fmt.Errorf("%w: strip electrode requires length, width and depth", ErrInvalidInput)
		}
		r = rho / (math.Pi * l) * math.Log(2*l*l/(w*d))
	case models.ElectrodeMesh:
		a, l := input.MeshAreaM2, input.MeshConductorLengthM
		if !(a > 0 && l > 0) {
			return 0, fmt.Errorf("%w: mesh electrode requires area and total conductor length", ErrInvalidInput)
		}
		radius := math.Sqrt(a / math.Pi)
		r = rho/(4*radius) + rho/l
	default:
		return 0, fmt.Errorf("%w: unknown electrode type %q", ErrInvalidInput, sanitizeForLog(string(input.ElectrodeType)))
	}

	// Geometries too short for their cross-section give a non-positive log term.
	if !(r > 0) || math.IsInf(r, 0) {
		return 0, fmt.Errorf("%w: electrode dimensions give a non-physical resistance", ErrInvalidInput)
	}
	return r, nil
}

// classifyZone maps body current (mA) to an IEC 60479-1 zone
func classifyZone(milliamps float64) models.PhysiologicalZone {
	switch {
	case milliamps < 0.5:
		return models.ZoneAC1
	case milliamps < 10:
		return models.ZoneAC2
	case milliamps <= 100:
		return models.ZoneAC3
	default:
		return models.ZoneAC4
	}
}

func (c *TouchStepCalculator) recommendations(input models.TouchStepInput, result models.TouchStepResult) []string {
	recs := []string{}

	if result.HotSite {
		recs = append(recs, fmt.Sprintf("EPR of %.0fV exceeds %.0fV: hot site, isolate incoming telecoms and metallic services", result.EarthPotentialRiseVolts, HotSiteEPRVolts))
	}
	if result.Passed() {
		if len(recs) == 0 {
			recs = append(recs, "Touch and step voltages are within permissible limits")
		}
		return recs
	}

	switch input.ElectrodeType {
	case models.ElectrodeRod:
		recs = append(recs, "Drive a longer rod or add parallel rods spaced at least one rod length apart")
	case models.ElectrodePlate, models.ElectrodeStrip:
		recs = append(recs, "Extend the electrode or supplement it with a buried ring conductor")
	case models.ElectrodeMesh:
		recs = append(recs, "Reduce mesh spacing or extend the grid beyond the equipment footprint")
	}
	recs = append(recs,
		"Reduce the fault clearance time to raise the permissible voltage",
		"Apply a high-resistivity surface layer such as crushed rock or asphalt",
	)
	if input.ContactScenario == models.ContactTouch {
		recs = append(recs, "Install a potential grading ring around exposed metalwork")
	}
	return recs
}
