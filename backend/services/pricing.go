// ABOUTME: Pricing strategy calculator for electrical contractors
// ABOUTME: Required rate, job costing, market position and revenue projection

package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sparkcalc/sparkcalc/backend/models"
)

const (
	// MaterialsShareOfJob is the share of an average job spent on materials
	MaterialsShareOfJob = 0.30
	// LabourShareOfJob estimates job hours when none are supplied
	LabourShareOfJob = 0.70
	// MarketBandPercent separates competitive from premium/budget positioning
	MarketBandPercent = 15.0
)

// PricingCalculator analyses a contractor's rates against costs and targets
type PricingCalculator struct{}

// NewPricingCalculator creates a new calculator
func NewPricingCalculator() *PricingCalculator {
	return &PricingCalculator{}
}

// Calculate produces the pricing analysis
func (c *PricingCalculator) Calculate(input models.PricingInput) (models.PricingResult, error) {
	if !(input.HourlyRate > 0) || !(input.AverageJobSize > 0) {
		return models.PricingResult{}, fmt.Errorf("%w: hourly rate and average job size must be greater than zero", ErrInvalidInput)
	}
	if input.ProfitMarginPercent < 0 || input.ProfitMarginPercent >= 100 {
		return models.PricingResult{}, fmt.Errorf("%w: profit margin must be at least 0 and below 100%%", ErrInvalidInput)
	}
	totalHours := input.WorkingDaysPerMonth * input.HoursPerDay
	if !(totalHours > 0) {
		return models.PricingResult{}, fmt.Errorf("%w: working days and hours per day must be greater than zero", ErrInvalidInput)
	}

	jobHours := input.AverageJobHours
	if jobHours <= 0 {
		jobHours = input.AverageJobSize * LabourShareOfJob / input.HourlyRate
	}
	jobs := totalHours / jobHours
	if err := checkFinite("job hours", jobHours, jobs, input.TargetMonthlyRevenue/totalHours); err != nil {
		return models.PricingResult{}, err
	}
	wholeJobs, err := floorCount("jobs per month", jobs)
	if err != nil {
		return models.PricingResult{}, err
	}

	result := models.PricingResult{
		TotalAvailableHours: totalHours,
		RequiredHourlyRate:  pounds(input.TargetMonthlyRevenue / totalHours),
		AverageJobHours:     jobHours,
	}

	result.JobCosting, err = jobCosting(input, jobHours)
	if err != nil {
		return models.PricingResult{}, err
	}
	result.MinimumQuote = result.JobCosting.MinimumQuote

	result.AverageCompetitorRate, result.MarketPositionPercent, result.MarketPosition = marketPosition(input.HourlyRate, input.Competitors)

	result.JobsPerMonth = jobs
	result.WholeJobsPerMonth = wholeJobs
	result.ProjectedMonthlyRevenue = result.MinimumQuote.Mul(decimal.NewFromFloat(jobs)).Round(2)
	result.RevenueGap = pounds(input.TargetMonthlyRevenue).Sub(result.ProjectedMonthlyRevenue)
	result.UtilizationRatePercent = float64(wholeJobs) * jobHours / totalHours * 100

	result.Warnings = c.GenerateWarnings(input, result)
	return result, nil
}

// jobCosting prices an average job so that MinimumQuote = TotalCost + Profit exactly
func jobCosting(input models.PricingInput, jobHours float64) (models.JobCosting, error) {
	labourCost := jobHours * input.HourlyRate
	materialsCost := input.AverageJobSize * MaterialsShareOfJob * (1 + input.MaterialsMarkupPercent/100)
	if err := checkFinite("job cost", labourCost, materialsCost, input.OverheadPercent); err != nil {
		return models.JobCosting{}, err
	}

	labour := pounds(labourCost)
	materials := pounds(materialsCost)
	overhead := percentOf(sum(labour, materials), decimal.NewFromFloat(input.OverheadPercent/100))
	totalCost := sum(labour, materials, overhead)

	margin := decimal.NewFromFloat(1 - input.ProfitMarginPercent/100)
	quote := totalCost.Div(margin).Round(2)

	costing := models.JobCosting{
		Labour:       labour,
		Materials:    materials,
		Overhead:     overhead,
		TotalCost:    totalCost,
		Profit:       quote.Sub(totalCost),
		MinimumQuote: quote,
		VAT:          decimal.Zero,
		QuoteIncVAT:  quote,
	}
	if input.VATRegistered {
		costing.VAT = percentOf(quote, VATRate)
		costing.QuoteIncVAT = quote.Add(costing.VAT)
	}
	return costing, nil
}

// marketPosition compares the hourly rate with the competitor average
func marketPosition(rate float64, competitors []models.CompetitorRate) (avg, percent float64, position models.MarketPosition) {
	var total float64
	var n int
	for _, comp := range competitors {
		if comp.HourlyRate > 0 {
			total += comp.HourlyRate
			n++
		}
	}
	if n == 0 {
		return 0, 0, models.PositionNoData
	}

	avg = total / float64(n)
	percent = (rate - avg) / avg * 100
	switch {
	case percent > MarketBandPercent:
		position = models.PositionPremium
	case percent < -MarketBandPercent:
		position = models.PositionBudget
	default:
		position = models.PositionCompetitive
	}
	return avg, percent, position
}

// GenerateWarnings flags rates and projections that miss the revenue target
func (c *PricingCalculator) GenerateWarnings(input models.PricingInput, r models.PricingResult) []models.Warning {
	warnings := []models.Warning{}

	if required := r.RequiredHourlyRate.InexactFloat64(); input.HourlyRate < required {
		warnings = append(warnings, models.Warning{
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("Hourly rate £%.2f is below the £%.2f needed to reach the monthly target", input.HourlyRate, required),
		})
	}
	if r.WholeJobsPerMonth == 0 {
		warnings = append(warnings, models.Warning{
			Severity: models.SeverityCritical,
			Message:  "An average job takes longer than the available monthly hours",
		})
	} else if r.RevenueGap.IsPositive() {
		warnings = append(warnings, models.Warning{
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("Projected revenue falls short of target by £%s", r.RevenueGap.StringFixed(2)),
		})
	}
	if input.ProfitMarginPercent < 10 {
		warnings = append(warnings, models.Warning{
			Severity: models.SeverityInfo,
			Message:  "Profit margin below 10% leaves little room for overruns",
		})
	}
	if r.MarketPosition == models.PositionBudget {
		warnings = append(warnings, models.Warning{
			Severity: models.SeverityInfo,
			Message:  fmt.Sprintf("Rate is %.0f%% below the local average of £%.2f", -r.MarketPositionPercent, r.AverageCompetitorRate),
		})
	}

	return warnings
}
