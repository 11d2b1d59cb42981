// ABOUTME: Cable sizing calculator backed by the embedded cable database
// ABOUTME: Selects the smallest conductor meeting In ≤ Iz and the voltage drop limit

package services

import (
	"errors"
	"fmt"
	"math"

	"github.com/sparkcalc/sparkcalc/backend/cabledb"
	"github.com/sparkcalc/sparkcalc/backend/models"
)

// ErrNoSuitableSize is returned when no tabulated size satisfies the circuit
var ErrNoSuitableSize = errors.New("no suitable cable size")

const (
	// SinglePhaseVolts and ThreePhaseVolts are UK nominal supply voltages
	SinglePhaseVolts = 230.0
	ThreePhaseVolts  = 400.0
)

// SizingCalculator selects conductor sizes from a cable database
type SizingCalculator struct {
	db       *cabledb.DB
	derating *DeratingCalculator
}

// NewSizingCalculator creates a calculator over db
func NewSizingCalculator(db *cabledb.DB) *SizingCalculator {
	return &SizingCalculator{db: db, derating: NewDeratingCalculator()}
}

// Size picks the smallest conductor whose derated rating covers the device
// rating and design current, upsizing further if voltage drop is exceeded.
func (c *SizingCalculator) Size(input models.CableSizingInput) (models.CableSizingResult, error) {
	cable, ok := c.db.Cable(input.Cable)
	if !ok {
		return models.CableSizingResult{}, fmt.Errorf("%w: unknown cable %q", ErrInvalidInput, sanitizeForLog(input.Cable))
	}
	if !cable.SupportsMethod(input.InstallationMethod) {
		return models.CableSizingResult{}, fmt.Errorf("%w: %s is not tabulated for method %s", ErrInvalidInput, cable.Key, input.InstallationMethod.Code())
	}
	if !(input.DesignCurrent > 0) || !(input.DeviceRating > 0) || !(input.LengthM > 0) {
		return models.CableSizingResult{}, fmt.Errorf("%w: design current, device rating and length must be greater than zero", ErrInvalidInput)
	}

	deratingInput := models.CableDeratingInput{
		CableType:              cable.CableType,
		InstallationMethod:     input.InstallationMethod,
		AmbientTempC:           input.AmbientTempC,
		NumberOfCables:         input.NumberOfCables,
		ThermalInsulation:      input.ThermalInsulation,
		SoilThermalResistivity: input.SoilThermalResistivity,
		DesignCurrent:          &input.DesignCurrent,
		DeviceRating:           &input.DeviceRating,
	}
	factors, err := c.derating.Factors(deratingInput)
	if err != nil {
		return models.CableSizingResult{}, err
	}

	required := math.Max(input.DesignCurrent, input.DeviceRating)
	first, ok := cable.SmallestSize(input.InstallationMethod, required, factors.Total())
	if !ok {
		return models.CableSizingResult{}, fmt.Errorf("%w: %s cannot carry %.0fA at a derating of %.2f", ErrNoSuitableSize, cable.Key, required, factors.Total())
	}

	limit := input.CircuitType.VoltageDropLimitPercent()
	code := input.InstallationMethod.Code()

	chosen := first
	var dropV, dropPct float64
	for _, s := range cable.Sizes {
		if s.SizeMm2 < first.SizeMm2 || s.Ratings[code] <= 0 {
			continue
		}
		chosen = s
		dropV, dropPct = voltageDrop(s.MVPerAM, input.DesignCurrent, input.LengthM, input.ThreePhase)
		if dropPct <= limit {
			break
		}
	}

	if err := checkFinite("voltage drop", dropV, chosen.PricePerM*input.LengthM); err != nil {
		return models.CableSizingResult{}, err
	}

	tabulated, _ := cable.Rating(chosen.SizeMm2, input.InstallationMethod)
	deratingInput.BaseRatingAmps = tabulated
	derated, err := c.derating.Calculate(deratingInput)
	if err != nil {
		return models.CableSizingResult{}, err
	}

	result := models.CableSizingResult{
		Cable:              cable.Key,
		SizeMm2:            chosen.SizeMm2,
		TabulatedRating:    tabulated,
		Derating:           derated,
		VoltageDropVolts:   dropV,
		VoltageDropPercent: dropPct,
		VoltageDropLimit:   limit,
		VoltageDropOK:      dropPct <= limit,
		CostPerMetre:       pounds(chosen.PricePerM),
		TotalCableCost:     pounds(chosen.PricePerM * input.LengthM),
		Warnings:           []models.Warning{},
	}

	if chosen.SizeMm2 > first.SizeMm2 {
		result.Warnings = append(result.Warnings, models.Warning{
			Severity: models.SeverityInfo,
			Message:  fmt.Sprintf("Upsized from %gmm² to %gmm² to meet the %.0f%% voltage drop limit", first.SizeMm2, chosen.SizeMm2, limit),
		})
	}
	if !result.VoltageDropOK {
		result.Warnings = append(result.Warnings, models.Warning{
			Severity: models.SeverityCritical,
			Message:  fmt.Sprintf("Voltage drop of %.1f%% exceeds the %.0f%% limit even at the largest size", dropPct, limit),
		})
	}
	result.Warnings = append(result.Warnings, derated.Warnings...)

	return result, nil
}

// voltageDrop returns the drop in volts and as a percentage of nominal voltage.
// Tabulated mV/A/m is for single-phase; three-phase uses √3/2 of it.
func voltageDrop(mvPerAM, designCurrent, lengthM float64, threePhase bool) (float64, float64) {
	nominal := SinglePhaseVolts
	mv := mvPerAM
	if threePhase {
		nominal = ThreePhaseVolts
		mv = mvPerAM * math.Sqrt(3) / 2
	}
	volts := mv * designCurrent * lengthM / 1000
	return volts, volts / nominal * 100
}
