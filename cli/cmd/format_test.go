// ABOUTME: Tests for human-readable result formatting
// ABOUTME: Checks key labels, compliance messages and GBP rendering

package cmd

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/sparkcalc/sparkcalc/backend/models"
)

func TestGBP(t *testing.T) {
	assert.Equal(t, "£1234.50", gbp(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "£0.00", gbp(decimal.Zero))
}

func TestComplianceFailure(t *testing.T) {
	tests := []struct {
		name  string
		check models.ComplianceCheck
		want  string
	}{
		{"both fail", models.ComplianceCheck{}, "Ib exceeds In and In exceeds Iz"},
		{"ib over in", models.ComplianceCheck{InIzCompliant: true}, "design current exceeds device rating"},
		{"in over iz", models.ComplianceCheck{IbInCompliant: true}, "device rating exceeds derated cable rating"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, complianceFailure(&tt.check), tt.want)
		})
	}
}

func TestFormatDerating_WithCompliance(t *testing.T) {
	r := models.CableDeratingResult{
		BaseRating:        32,
		TemperatureFactor: 1,
		GroupingFactor:    0.8,
		InsulationFactor:  1,
		SoilFactor:        1,
		TotalDerating:     0.8,
		FinalRating:       25.6,
		Compliance: &models.ComplianceCheck{
			Ib: 20, In: 25, Iz: 25.6,
			IbInCompliant: true, InIzCompliant: true, Compliant: true,
		},
		Warnings: []models.Warning{{Severity: models.SeverityWarning, Message: "Grouping reduces capacity"}},
	}

	out := formatDerating(r)

	assert.Contains(t, out, "Grouping factor (Cg)")
	assert.Contains(t, out, "25.60 A")
	assert.Contains(t, out, "Compliant")
	assert.Contains(t, out, "Grouping reduces capacity")
}

func TestFormatTouchStep_HotSite(t *testing.T) {
	r := models.TouchStepResult{
		EarthPotentialRiseVolts: 600,
		PassOrFail:              "fail",
		HotSite:                 true,
		PhysiologicalZone:       models.ZoneAC4,
		PhysiologicalZoneNumber: 4,
		Recommendations:         []string{"Install additional rods"},
	}

	out := formatTouchStep(r)

	assert.Contains(t, out, "4 (AC-4)")
	assert.Contains(t, out, "Hot site")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "Install additional rods")
}

func TestFormatMicroHydro_NoPaybackWhenNotViable(t *testing.T) {
	r := models.MicroHydroResult{
		Viability:        models.ViabilityNotViable,
		ViabilityMessage: "Not viable: no revenue",
	}

	out := formatMicroHydro(r)

	assert.False(t, r.Viability.Viable())
	assert.NotContains(t, out, "Payback")
	assert.Contains(t, out, "Not viable: no revenue")
}

func TestFormatPricing_NoCompetitors(t *testing.T) {
	r := models.PricingResult{MarketPosition: models.PositionNoData}

	assert.Contains(t, formatPricing(r), "no competitor data")
}

func TestFormatPricing_FractionalJobs(t *testing.T) {
	r := models.PricingResult{JobsPerMonth: 22.857142857, WholeJobsPerMonth: 22}

	assert.Contains(t, formatPricing(r), "22.9 (22 whole)")
}

func TestPercentOfLimit(t *testing.T) {
	assert.InDelta(t, 50.0, percentOfLimit(2.5, 5), 1e-9)
	assert.Equal(t, 0.0, percentOfLimit(1, 0))
}

func TestFormatJSON(t *testing.T) {
	assert.JSONEq(t, `{"a": 1}`, formatJSON(map[string]int{"a": 1}))
}
