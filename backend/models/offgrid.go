// ABOUTME: Data models for off-grid solar and battery system sizing
// ABOUTME: Includes efficiency chain stages and a GBP cost breakdown

package models

import "github.com/shopspring/decimal"

// BatteryType is the battery chemistry
type BatteryType string

const (
	BatteryLithium BatteryType = "lithium"
	BatteryAGM     BatteryType = "agm"
)

// Valid reports whether b is a known chemistry
func (b BatteryType) Valid() bool {
	return b == BatteryLithium || b == BatteryAGM
}

// BatteryLocation is where the battery bank is housed
type BatteryLocation string

const (
	LocationIndoor    BatteryLocation = "indoor"
	LocationSheltered BatteryLocation = "sheltered"
	LocationOutdoor   BatteryLocation = "outdoor"
)

// Valid reports whether l is a known location
func (l BatteryLocation) Valid() bool {
	switch l {
	case LocationIndoor, LocationSheltered, LocationOutdoor:
		return true
	}
	return false
}

// SystemRating classifies an off-grid design
type SystemRating string

const (
	RatingExcellent SystemRating = "excellent"
	RatingGood      SystemRating = "good"
	RatingAdequate  SystemRating = "adequate"
	RatingMarginal  SystemRating = "marginal"
	RatingPoor      SystemRating = "poor"
)

// OffGridInput describes the load profile and chosen components
type OffGridInput struct {
	DailyConsumptionKwh     float64         `json:"daily_consumption_kwh" validate:"gt=0,lte=10000"`
	PeakSunHours            float64         `json:"peak_sun_hours" validate:"gt=0,lte=24"`
	AutonomyDays            float64         `json:"autonomy_days" validate:"gt=0,lte=30"`
	SystemVoltageDC         int             `json:"system_voltage_dc" validate:"oneof=12 24 48"`
	PanelWattage            float64         `json:"panel_wattage" validate:"gte=1,lte=5000"`
	BatteryCapacityAh       float64         `json:"battery_capacity_ah" validate:"gte=1,lte=10000"`
	BatteryVoltage          float64         `json:"battery_voltage" validate:"gte=1,lte=1000"`
	BatteryType             BatteryType     `json:"battery_type" validate:"required,enum"`
	BatteryLocation         BatteryLocation `json:"battery_location" validate:"required,enum"`
	DepthOfDischargePercent float64         `json:"depth_of_discharge_percent" validate:"gt=0,lte=100"`
	SystemEfficiencyPercent float64         `json:"system_efficiency_percent" validate:"gt=0,lte=100"`
	PeakPowerKw             *float64        `json:"peak_power_kw,omitempty" validate:"omitempty,gt=0,lte=10000"`
	CableRunM               float64         `json:"cable_run_m,omitempty" validate:"gte=0,lte=1000"` // array to controller, 0 = 10 m
}

// EfficiencyStage is one conversion step between array and load
type EfficiencyStage struct {
	Stage             string  `json:"stage"`
	EfficiencyPercent float64 `json:"efficiency_percent"`
	LossKwh           float64 `json:"loss_kwh"`
}

// OffGridCosts is the GBP cost breakdown; Total is the sum of all other fields
type OffGridCosts struct {
	Panels           decimal.Decimal `json:"panels"`
	Batteries        decimal.Decimal `json:"batteries"`
	Inverter         decimal.Decimal `json:"inverter"`
	ChargeController decimal.Decimal `json:"charge_controller"`
	Installation     decimal.Decimal `json:"installation"`
	Miscellaneous    decimal.Decimal `json:"miscellaneous"`
	VAT              decimal.Decimal `json:"vat"`
	Total            decimal.Decimal `json:"total"`
}

// OffGridResult holds the sized system
type OffGridResult struct {
	RequiredSolarCapacityKw   float64           `json:"required_solar_capacity_kw"`
	NumberOfPanels            int               `json:"number_of_panels"`
	ArrayCapacityKw           float64           `json:"array_capacity_kw"`
	RequiredBatteryCapacityAh float64           `json:"required_battery_capacity_ah"`
	NumberOfBatteries         int               `json:"number_of_batteries"`
	InverterSizeKw            float64           `json:"inverter_size_kw"`
	ChargeControllerSizeAmps  float64           `json:"charge_controller_size_amps"`
	DailyEnergyBalanceKwh     float64           `json:"daily_energy_balance_kwh"` // negative = deficit
	OverallEfficiencyPercent  float64           `json:"overall_efficiency_percent"`
	EfficiencyChain           []EfficiencyStage `json:"efficiency_chain"`
	Costs                     OffGridCosts      `json:"cost_breakdown"`
	SystemRating              SystemRating      `json:"system_rating"`
	Warnings                  []Warning         `json:"warnings"`
	Recommendations           []string          `json:"recommendations"`
	WireLossWarning           string            `json:"wire_loss_warning,omitempty"`
}
