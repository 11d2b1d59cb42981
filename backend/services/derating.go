// ABOUTME: BS 7671 cable derating calculator
// ABOUTME: Combines ambient, grouping, thermal insulation and soil factors into Iz

package services

import (
	"fmt"
	"math"

	"github.com/sparkcalc/sparkcalc/backend/models"
)

const (
	// RefAmbientAirC is the tabulated ambient for cables in air
	RefAmbientAirC = 30.0
	// RefAmbientGroundC is the tabulated ground temperature for buried cables
	RefAmbientGroundC = 20.0
	// RefSoilResistivity is the tabulated soil thermal resistivity (K·m/W)
	RefSoilResistivity = 2.5

	// MinFactor and MaxFactor bound every individual correction factor
	MinFactor = 0.1
	MaxFactor = 1.2
)

// groupingBuckets are the circuit counts tabulated in BS 7671 Table 4C1
var groupingBuckets = [...]int{1, 2, 3, 4, 6, 9, 12, 16, 20}

// Grouping factors per bucket, one table per installation family.
var (
	// Table 4C1 item 1: bunched in air, on a surface, embedded or enclosed
	groupingEnclosed = [...]float64{1.00, 0.80, 0.70, 0.65, 0.57, 0.50, 0.45, 0.41, 0.38}
	// Table 4C1 item 2: single layer on a wall or floor, touching
	groupingClipped = [...]float64{1.00, 0.85, 0.79, 0.75, 0.72, 0.70, 0.70, 0.70, 0.70}
	// Table 4C2: direct in ground, nil spacing between circuits
	groupingBuried = [...]float64{1.00, 0.75, 0.65, 0.60, 0.50, 0.41, 0.36, 0.32, 0.29}
	// Table 4C1 item 4: single layer on perforated tray, touching
	groupingFreeAir = [...]float64{1.00, 0.88, 0.82, 0.77, 0.73, 0.72, 0.72, 0.72, 0.72}
)

// DeratingCalculator applies BS 7671 correction factors to a tabulated rating
type DeratingCalculator struct{}

// NewDeratingCalculator creates a new calculator
func NewDeratingCalculator() *DeratingCalculator {
	return &DeratingCalculator{}
}

// Calculate derates the input's base rating. It returns ErrInvalidInput when
// the rating is not positive or an enum is outside its closed set.
func (c *DeratingCalculator) Calculate(input models.CableDeratingInput) (models.CableDeratingResult, error) {
	if !(input.BaseRatingAmps > 0) || math.IsInf(input.BaseRatingAmps, 0) {
		return models.CableDeratingResult{}, fmt.Errorf("%w: base rating must be greater than zero", ErrInvalidInput)
	}

	factors, err := c.Factors(input)
	if err != nil {
		return models.CableDeratingResult{}, err
	}

	result := models.CableDeratingResult{
		TemperatureFactor: factors.Ca,
		GroupingFactor:    factors.Cg,
		InsulationFactor:  factors.Ci,
		SoilFactor:        factors.Cs,
		TotalDerating:     factors.Total(),
		BaseRating:        input.BaseRatingAmps,
	}
	result.FinalRating = input.BaseRatingAmps * result.TotalDerating
	if err := checkFinite("final rating", result.FinalRating); err != nil {
		return models.CableDeratingResult{}, err
	}
	result.DeratingPercentage = (input.BaseRatingAmps - result.FinalRating) / input.BaseRatingAmps * 100

	if input.DesignCurrent != nil && input.DeviceRating != nil {
		result.Compliance = checkCompliance(*input.DesignCurrent, *input.DeviceRating, result.FinalRating)
	}

	result.Warnings = c.GenerateWarnings(result, factors.beyondGroupingTable)
	return result, nil
}

// DeratingFactors holds the four correction factors for one installation
type DeratingFactors struct {
	Ca, Cg, Ci, Cs float64

	beyondGroupingTable bool
}

// Total returns Ca × Cg × Ci × Cs, capped at MaxFactor
func (f DeratingFactors) Total() float64 {
	return math.Min(f.Ca*f.Cg*f.Ci*f.Cs, MaxFactor)
}

// Factors computes the correction factors without applying them to a rating
func (c *DeratingCalculator) Factors(input models.CableDeratingInput) (DeratingFactors, error) {
	refTemp, ok := input.CableType.RefTempC()
	if !ok {
		return DeratingFactors{}, fmt.Errorf("%w: unknown cable type %q", ErrInvalidInput, sanitizeForLog(string(input.CableType)))
	}
	family, ok := input.InstallationMethod.Family()
	if !ok {
		return DeratingFactors{}, fmt.Errorf("%w: unknown installation method %q", ErrInvalidInput, sanitizeForLog(string(input.InstallationMethod)))
	}
	ci, ok := insulationFactor(input.ThermalInsulation)
	if !ok {
		return DeratingFactors{}, fmt.Errorf("%w: unknown thermal insulation %q", ErrInvalidInput, sanitizeForLog(string(input.ThermalInsulation)))
	}
	if input.NumberOfCables < 1 {
		return DeratingFactors{}, fmt.Errorf("%w: number of cables must be at least 1", ErrInvalidInput)
	}
	if err := checkFinite("ambient temperature", input.AmbientTempC); err != nil {
		return DeratingFactors{}, err
	}

	buried := input.InstallationMethod.Buried()
	cs := 1.0
	if buried {
		if !(input.SoilThermalResistivity > 0) || math.IsInf(input.SoilThermalResistivity, 0) {
			return DeratingFactors{}, fmt.Errorf("%w: soil thermal resistivity is required for buried methods", ErrInvalidInput)
		}
		cs = soilFactor(input.SoilThermalResistivity)
	}

	cg, beyond := groupingFactor(family, input.NumberOfCables)

	return DeratingFactors{
		Ca:                  temperatureFactor(refTemp, input.AmbientTempC, buried),
		Cg:                  cg,
		Ci:                  ci,
		Cs:                  cs,
		beyondGroupingTable: beyond,
	}, nil
}

// temperatureFactor returns Ca for a cable of the given maximum operating temperature
func temperatureFactor(refTemp, ambient float64, buried bool) float64 {
	refAmbient := RefAmbientAirC
	if buried {
		refAmbient = RefAmbientGroundC
	}
	if ambient == refAmbient {
		return 1.0
	}
	numerator := refTemp - ambient
	if numerator <= 0 {
		return MinFactor
	}
	return clamp(math.Sqrt(numerator/(refTemp-refAmbient)), MinFactor, MaxFactor)
}

// groupingFactor returns Cg for n circuits. Counts between buckets use the next
// larger bucket. Counts above the last bucket use its value and report beyond=true.
func groupingFactor(family models.MethodFamily, n int) (factor float64, beyond bool) {
	var table [len(groupingBuckets)]float64
	switch family {
	case models.FamilyEnclosed:
		table = groupingEnclosed
	case models.FamilyClipped:
		table = groupingClipped
	case models.FamilyBuried:
		table = groupingBuried
	case models.FamilyFreeAir:
		table = groupingFreeAir
	}

	for i, bucket := range groupingBuckets {
		if n <= bucket {
			return table[i], false
		}
	}
	return table[len(table)-1], true
}

// insulationFactor returns Ci for the insulation category
func insulationFactor(t models.ThermalInsulation) (float64, bool) {
	switch t {
	case models.InsulationNone:
		return 1.00, true
	case models.InsulationOneSideTouching:
		return 0.89, true
	case models.InsulationOneSideEmbedded:
		return 0.75, true
	case models.InsulationSurrounded50mm:
		return 0.88, true
	case models.InsulationSurrounded100mm:
		return 0.78, true
	case models.InsulationSurrounded200mm:
		return 0.63, true
	case models.InsulationSurrounded300mm:
		return 0.56, true
	case models.InsulationSurrounded400mm:
		return 0.51, true
	case models.InsulationFullySurrounded:
		return 0.36, true
	}
	return 0, false
}

// soilFactor returns Cs relative to the tabulated 2.5 K·m/W
func soilFactor(resistivity float64) float64 {
	return math.Min(math.Sqrt(RefSoilResistivity/resistivity), MaxFactor)
}

// checkCompliance evaluates Ib ≤ In ≤ Iz
func checkCompliance(ib, in, iz float64) *models.ComplianceCheck {
	check := &models.ComplianceCheck{
		Ib:            ib,
		In:            in,
		Iz:            iz,
		IbInCompliant: ib <= in,
		InIzCompliant: in <= iz,
	}
	check.Compliant = check.IbInCompliant && check.InIzCompliant

	if iz > 0 {
		check.SafetyMargin = (iz - in) / iz * 100
	}
	return check
}

// GenerateWarnings flags heavy derating and failed coordination
func (c *DeratingCalculator) GenerateWarnings(result models.CableDeratingResult, beyondGroupingTable bool) []models.Warning {
	warnings := []models.Warning{}

	if result.TotalDerating < 0.5 {
		warnings = append(warnings, models.Warning{
			Severity: models.SeverityCritical,
			Message:  fmt.Sprintf("Severe derating: cable retains only %.0f%% of its tabulated rating", result.TotalDerating*100),
		})
	}
	if result.TemperatureFactor < 0.8 {
		warnings = append(warnings, models.Warning{
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("High ambient temperature (Ca = %.2f)", result.TemperatureFactor),
		})
	}
	if result.GroupingFactor < 0.7 {
		warnings = append(warnings, models.Warning{
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("Significant grouping derating (Cg = %.2f): consider spacing or separate routes", result.GroupingFactor),
		})
	}
	if beyondGroupingTable {
		warnings = append(warnings, models.Warning{
			Severity: models.SeverityInfo,
			Message:  fmt.Sprintf("Number of circuits exceeds the tabulated range; the %d-circuit factor has been applied", groupingBuckets[len(groupingBuckets)-1]),
		})
	}
	if result.InsulationFactor < 0.7 {
		warnings = append(warnings, models.Warning{
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("Thermal insulation derating (Ci = %.2f): reroute to avoid insulation where possible", result.InsulationFactor),
		})
	}
	if result.SoilFactor < 0.9 && result.SoilFactor != 1.0 {
		warnings = append(warnings, models.Warning{
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("Poor soil conditions (Cs = %.2f): consider thermal backfill", result.SoilFactor),
		})
	}

	if cc := result.Compliance; cc != nil && !cc.Compliant {
		if !cc.IbInCompliant {
			warnings = append(warnings, models.Warning{
				Severity: models.SeverityCritical,
				Message:  fmt.Sprintf("Design current %.1fA exceeds device rating %.0fA (Ib > In)", cc.Ib, cc.In),
			})
		}
		if !cc.InIzCompliant {
			warnings = append(warnings, models.Warning{
				Severity: models.SeverityCritical,
				Message:  fmt.Sprintf("Device rating %.0fA exceeds derated cable capacity %.1fA (In > Iz)", cc.In, cc.Iz),
			})
		}
	}

	return warnings
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
