// ABOUTME: Data models for micro-hydro power and economics assessment
// ABOUTME: Turbine selection, penstock sizing and payback outputs

package models

import "github.com/shopspring/decimal"

// TurbineType is a hydro turbine family, or "auto" for selection by head
type TurbineType string

const (
	TurbineAuto      TurbineType = "auto"
	TurbinePelton    TurbineType = "pelton"
	TurbineTurgo     TurbineType = "turgo"
	TurbineFrancis   TurbineType = "francis"
	TurbineKaplan    TurbineType = "kaplan"
	TurbineCrossflow TurbineType = "crossflow"
)

// Valid reports whether t is a known turbine type or auto
func (t TurbineType) Valid() bool {
	switch t {
	case TurbineAuto, TurbinePelton, TurbineTurgo, TurbineFrancis, TurbineKaplan, TurbineCrossflow:
		return true
	}
	return false
}

// PenstockMaterial is the pipe material chosen for the working pressure
type PenstockMaterial string

const (
	PenstockHDPE  PenstockMaterial = "HDPE"
	PenstockSteel PenstockMaterial = "Steel"
)

// Viability grades a scheme by its simple payback
type Viability string

const (
	ViabilityNotViable  Viability = "not-viable"
	ViabilityPoor       Viability = "poor"
	ViabilityMarginal   Viability = "marginal"
	ViabilityReasonable Viability = "reasonable"
	ViabilityExcellent  Viability = "excellent"
)

// Viable reports whether the scheme earns any revenue at all
func (v Viability) Viable() bool {
	return v != ViabilityNotViable
}

// MicroHydroInput describes the site hydrology and tariff
type MicroHydroInput struct {
	FlowRateM3s               float64     `json:"flow_rate_m3s" validate:"gt=0,lte=1000"`
	HeadMeters                float64     `json:"head_meters" validate:"gt=0,lte=2000"`
	TurbineType               TurbineType `json:"turbine_type" validate:"required,enum"`
	AvailabilityFactorPercent float64     `json:"availability_factor_percent" validate:"gt=0,lte=100"`
	ElectricityRatePerKwh     float64     `json:"electricity_rate_per_kwh" validate:"gte=0,lte=10"` // GBP
	PenstockLengthMeters      float64     `json:"penstock_length_meters" validate:"gte=0,lte=100000"`
}

// Penstock is the sized supply pipe
type Penstock struct {
	DiameterMm  float64          `json:"diameter_mm"`
	Material    PenstockMaterial `json:"material"`
	PressureBar float64          `json:"pressure_bar"`
	Cost        decimal.Decimal  `json:"cost"`
}

// MicroHydroCosts is the GBP capital cost breakdown; Total is the sum of all other fields
type MicroHydroCosts struct {
	Turbine      decimal.Decimal `json:"turbine"`
	CivilWorks   decimal.Decimal `json:"civil_works"`
	Electrical   decimal.Decimal `json:"electrical"`
	Installation decimal.Decimal `json:"installation"`
	Penstock     decimal.Decimal `json:"penstock"`
	Total        decimal.Decimal `json:"total"`
}

// MicroHydroResult holds generation, penstock and economics
type MicroHydroResult struct {
	TheoreticalPowerKw  float64         `json:"theoretical_power_kw"`
	PracticalPowerKw    float64         `json:"practical_power_kw"`
	AnnualGenerationKwh float64         `json:"annual_generation_kwh"`
	RecommendedTurbine  TurbineType     `json:"recommended_turbine"`
	TurbineEfficiency   float64         `json:"turbine_efficiency"`
	TurbineSuitability  string          `json:"turbine_suitability"`
	Penstock            Penstock        `json:"penstock"`
	Costs               MicroHydroCosts `json:"cost_breakdown"`
	AnnualRevenue       decimal.Decimal `json:"annual_revenue"`
	PaybackYears        float64         `json:"payback_years"` // 0 when there is no revenue
	Viability           Viability       `json:"viability"`
	ViabilityMessage    string          `json:"viability_message"`
}
