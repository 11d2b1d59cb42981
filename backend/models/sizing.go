// ABOUTME: Data models for cable size selection and voltage drop
// ABOUTME: Combines derating factors with tabulated capacities from the cable database

package models

import "github.com/shopspring/decimal"

// CircuitType sets the voltage drop limit
type CircuitType string

const (
	CircuitLighting CircuitType = "lighting" // 3%
	CircuitPower    CircuitType = "power"    // 5%
)

// Valid reports whether c is a known circuit type
func (c CircuitType) Valid() bool {
	return c == CircuitLighting || c == CircuitPower
}

// VoltageDropLimitPercent returns the permitted voltage drop for the circuit type
func (c CircuitType) VoltageDropLimitPercent() float64 {
	if c == CircuitLighting {
		return 3
	}
	return 5
}

// CableSizingInput describes a circuit to be sized from the cable database
type CableSizingInput struct {
	Cable                  string             `json:"cable" validate:"required"` // cable database key, e.g. "pvc-twin-earth"
	InstallationMethod     InstallationMethod `json:"installation_method" validate:"required,enum"`
	AmbientTempC           float64            `json:"ambient_temp_c" validate:"gte=-40,lte=200"`
	NumberOfCables         int                `json:"number_of_cables" validate:"gte=1,lte=1000"`
	ThermalInsulation      ThermalInsulation  `json:"thermal_insulation" validate:"required,enum"`
	SoilThermalResistivity float64            `json:"soil_thermal_resistivity,omitempty" validate:"gte=0,lte=100"`
	DesignCurrent          float64            `json:"design_current" validate:"gt=0,lte=10000"`
	DeviceRating           float64            `json:"device_rating" validate:"device_rating"`
	LengthM                float64            `json:"length_m" validate:"gt=0,lte=10000"`
	ThreePhase             bool               `json:"three_phase"`
	CircuitType            CircuitType        `json:"circuit_type" validate:"required,enum"`
}

// CableSizingResult is the selected conductor and its voltage drop
type CableSizingResult struct {
	Cable              string              `json:"cable"`
	SizeMm2            float64             `json:"size_mm2"`
	TabulatedRating    float64             `json:"tabulated_rating"`
	Derating           CableDeratingResult `json:"derating"`
	VoltageDropVolts   float64             `json:"voltage_drop_volts"`
	VoltageDropPercent float64             `json:"voltage_drop_percent"`
	VoltageDropLimit   float64             `json:"voltage_drop_limit_percent"`
	VoltageDropOK      bool                `json:"voltage_drop_ok"`
	CostPerMetre       decimal.Decimal     `json:"cost_per_metre"`
	TotalCableCost     decimal.Decimal     `json:"total_cable_cost"`
	Warnings           []Warning           `json:"warnings"`
}
