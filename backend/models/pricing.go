// ABOUTME: Data models for electrical contractor pricing strategy
// ABOUTME: Job costing, market position and monthly revenue projection

package models

import "github.com/shopspring/decimal"

// MarketPosition labels the hourly rate relative to local competitors
type MarketPosition string

const (
	PositionPremium     MarketPosition = "premium"
	PositionCompetitive MarketPosition = "competitive"
	PositionBudget      MarketPosition = "budget"
	PositionNoData      MarketPosition = "no-data"
)

// CompetitorRate is one competitor's advertised hourly rate
type CompetitorRate struct {
	Name       string  `json:"name"`
	HourlyRate float64 `json:"hourly_rate" validate:"gt=0,lte=10000"`
}

// PricingInput describes the business's rates and targets
type PricingInput struct {
	HourlyRate             float64          `json:"hourly_rate" validate:"gt=0,lte=10000"`
	MaterialsMarkupPercent float64          `json:"materials_markup_percent" validate:"gte=0,lte=1000"`
	OverheadPercent        float64          `json:"overhead_percent" validate:"gte=0,lte=1000"`
	ProfitMarginPercent    float64          `json:"profit_margin_percent" validate:"gte=0,lt=100"`
	AverageJobSize         float64          `json:"average_job_size" validate:"gte=1,lte=10000000"` // GBP
	AverageJobHours        float64          `json:"average_job_hours,omitempty" validate:"gte=0,lte=10000"`
	TargetMonthlyRevenue   float64          `json:"target_monthly_revenue" validate:"gte=0,lte=1000000000"`
	WorkingDaysPerMonth    float64          `json:"working_days_per_month" validate:"gt=0,lte=31"`
	HoursPerDay            float64          `json:"hours_per_day" validate:"gt=0,lte=24"`
	VATRegistered          bool             `json:"vat_registered"`
	Competitors            []CompetitorRate `json:"competitors" validate:"dive"`
}

// JobCosting breaks a typical job into cost components
type JobCosting struct {
	Labour       decimal.Decimal `json:"labour"`
	Materials    decimal.Decimal `json:"materials"`
	Overhead     decimal.Decimal `json:"overhead"`
	TotalCost    decimal.Decimal `json:"total_cost"` // labour + materials + overhead
	Profit       decimal.Decimal `json:"profit"`
	MinimumQuote decimal.Decimal `json:"minimum_quote"` // total_cost + profit
	VAT          decimal.Decimal `json:"vat"`
	QuoteIncVAT  decimal.Decimal `json:"quote_inc_vat"`
}

// PricingResult holds the pricing analysis
type PricingResult struct {
	TotalAvailableHours     float64         `json:"total_available_hours"`
	RequiredHourlyRate      decimal.Decimal `json:"required_hourly_rate"`
	AverageJobHours         float64         `json:"average_job_hours"`
	JobCosting              JobCosting      `json:"job_costing"`
	MinimumQuote            decimal.Decimal `json:"minimum_quote"`
	AverageCompetitorRate   float64         `json:"average_competitor_rate"`
	MarketPositionPercent   float64         `json:"market_position_percent"`
	MarketPosition          MarketPosition  `json:"market_position"`
	JobsPerMonth            float64         `json:"jobs_per_month"`       // available hours / job hours
	WholeJobsPerMonth       int             `json:"whole_jobs_per_month"` // complete jobs that fit the month
	ProjectedMonthlyRevenue decimal.Decimal `json:"projected_monthly_revenue"`
	RevenueGap              decimal.Decimal `json:"revenue_gap"` // target - projected, negative = surplus
	UtilizationRatePercent  float64         `json:"utilization_rate_percent"`
	Warnings                []Warning       `json:"warnings"`
}
