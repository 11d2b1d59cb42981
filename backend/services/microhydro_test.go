// ABOUTME: Tests for the micro-hydro power and economics calculator
// ABOUTME: Validates power equations, turbine selection, penstock sizing and payback

package services

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sparkcalc/sparkcalc/backend/models"
)

func baseHydroInput() models.MicroHydroInput {
	return models.MicroHydroInput{
		FlowRateM3s:               0.5,
		HeadMeters:                25,
		TurbineType:               models.TurbineAuto,
		AvailabilityFactorPercent: 85,
		ElectricityRatePerKwh:     0.15,
		PenstockLengthMeters:      100,
	}
}

func TestMicroHydroCalculator_PowerEquations(t *testing.T) {
	calc := NewMicroHydroCalculator()

	r, err := calc.Calculate(baseHydroInput())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// 1000 × 9.81 × 0.5 × 25 / 1000
	if math.Abs(r.TheoreticalPowerKw-122.625) > 1e-9 {
		t.Errorf("Expected theoretical 122.625kW, got %v", r.TheoreticalPowerKw)
	}
	if r.RecommendedTurbine != models.TurbineFrancis {
		t.Errorf("Expected francis at 25m head, got %s", r.RecommendedTurbine)
	}
	// 122.625 × 0.90 × 0.95
	if math.Abs(r.PracticalPowerKw-104.844375) > 1e-9 {
		t.Errorf("Expected practical 104.844375kW, got %v", r.PracticalPowerKw)
	}
	if r.PracticalPowerKw >= r.TheoreticalPowerKw {
		t.Error("Expected practical power below theoretical")
	}
	wantAnnual := 104.844375 * 8760 * 0.85
	if math.Abs(r.AnnualGenerationKwh-wantAnnual) > 1e-6 {
		t.Errorf("Expected annual generation %v, got %v", wantAnnual, r.AnnualGenerationKwh)
	}
	if !strings.HasPrefix(r.TurbineSuitability, "Francis turbine is well suited") {
		t.Errorf("Unexpected suitability %q", r.TurbineSuitability)
	}
}

func TestSelectTurbine(t *testing.T) {
	tests := []struct {
		head float64
		want models.TurbineType
	}{
		{1, models.TurbineCrossflow},
		{2, models.TurbineKaplan},
		{9.9, models.TurbineKaplan},
		{10, models.TurbineFrancis},
		{29.9, models.TurbineFrancis},
		{30, models.TurbineTurgo},
		{49.9, models.TurbineTurgo},
		{50, models.TurbinePelton},
		{400, models.TurbinePelton},
	}

	for _, tt := range tests {
		if got := SelectTurbine(tt.head); got != tt.want {
			t.Errorf("SelectTurbine(%v) = %s, want %s", tt.head, got, tt.want)
		}
	}
}

func TestMicroHydroCalculator_ExplicitTurbine(t *testing.T) {
	calc := NewMicroHydroCalculator()
	input := baseHydroInput()
	input.TurbineType = models.TurbinePelton

	r, err := calc.Calculate(input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if r.RecommendedTurbine != models.TurbinePelton {
		t.Errorf("Expected explicit pelton to be honoured, got %s", r.RecommendedTurbine)
	}
	if r.TurbineEfficiency != 0.88 {
		t.Errorf("Expected pelton efficiency 0.88, got %v", r.TurbineEfficiency)
	}
	if !strings.Contains(r.TurbineSuitability, "poor match") || !strings.Contains(r.TurbineSuitability, "francis") {
		t.Errorf("Expected a poor-match note pointing at francis, got %q", r.TurbineSuitability)
	}
}

func TestSizePenstock(t *testing.T) {
	p, err := sizePenstock(0.5, 25, 100)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := math.Sqrt(0.8/math.Pi) * 1000
	if math.Abs(p.DiameterMm-want) > 1e-9 {
		t.Errorf("Expected diameter %v, got %v", want, p.DiameterMm)
	}
	if p.Material != models.PenstockHDPE {
		t.Errorf("Expected HDPE at 25m head, got %s", p.Material)
	}
	if math.Abs(p.PressureBar-2.4525) > 1e-9 {
		t.Errorf("Expected 2.4525 bar, got %v", p.PressureBar)
	}

	doubled, _ := sizePenstock(1.0, 25, 100)
	if math.Abs(doubled.DiameterMm/p.DiameterMm-math.Sqrt2) > 1e-9 {
		t.Errorf("Expected doubling flow to scale diameter by √2, got ratio %v", doubled.DiameterMm/p.DiameterMm)
	}

	if steel, _ := sizePenstock(0.5, 120, 100); steel.Material != models.PenstockSteel {
		t.Errorf("Expected steel at 120m head, got %s", steel.Material)
	}

	if free, _ := sizePenstock(0.5, 25, 0); !free.Cost.IsZero() {
		t.Errorf("Expected zero cost for zero length, got %s", free.Cost)
	}

	if _, err := sizePenstock(1e300, 25, 1e300); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for an overflowing penstock cost, got %v", err)
	}
}

func TestMicroHydroCalculator_Economics(t *testing.T) {
	calc := NewMicroHydroCalculator()

	r, _ := calc.Calculate(baseHydroInput())
	c := r.Costs

	total := c.Turbine.Add(c.CivilWorks).Add(c.Electrical).Add(c.Installation).Add(c.Penstock)
	if !total.Equal(c.Total) {
		t.Errorf("Expected total %s to equal components %s", c.Total, total)
	}
	if !c.Penstock.Equal(r.Penstock.Cost) {
		t.Errorf("Expected penstock cost %s in breakdown, got %s", r.Penstock.Cost, c.Penstock)
	}

	wantPayback := c.Total.Div(r.AnnualRevenue).InexactFloat64()
	if r.PaybackYears != wantPayback {
		t.Errorf("Expected payback %v, got %v", wantPayback, r.PaybackYears)
	}
	if r.PaybackYears <= 0 {
		t.Error("Expected a positive payback with a positive tariff")
	}
}

func TestMicroHydroCalculator_SmallSchemeCivilFloor(t *testing.T) {
	calc := NewMicroHydroCalculator()
	input := baseHydroInput()
	input.FlowRateM3s = 0.01
	input.HeadMeters = 10

	r, _ := calc.Calculate(input)
	if r.PracticalPowerKw >= SmallSchemeKw {
		t.Fatalf("Expected a small scheme, got %vkW", r.PracticalPowerKw)
	}
	if !r.Costs.CivilWorks.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("Expected civil floor of 12000, got %s", r.Costs.CivilWorks)
	}
}

func TestMicroHydroCalculator_ZeroTariff(t *testing.T) {
	calc := NewMicroHydroCalculator()
	input := baseHydroInput()
	input.ElectricityRatePerKwh = 0

	r, err := calc.Calculate(input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if r.PaybackYears != 0 {
		t.Errorf("Expected payback 0 without revenue, got %v", r.PaybackYears)
	}
	if r.Viability != models.ViabilityNotViable || r.Viability.Viable() {
		t.Errorf("Expected not viable, got %q", r.Viability)
	}
	if !strings.HasPrefix(r.ViabilityMessage, "Not viable") {
		t.Errorf("Unexpected viability message %q", r.ViabilityMessage)
	}
}

func TestViability(t *testing.T) {
	revenue := decimal.NewFromInt(1000)

	tests := []struct {
		payback float64
		want    models.Viability
		prefix  string
	}{
		{5, models.ViabilityExcellent, "Excellent"},
		{10, models.ViabilityExcellent, "Excellent"},
		{12, models.ViabilityReasonable, "Reasonable"},
		{15, models.ViabilityReasonable, "Reasonable"},
		{18, models.ViabilityMarginal, "Marginal"},
		{25, models.ViabilityPoor, "Poor"},
	}

	for _, tt := range tests {
		got, msg := viability(tt.payback, revenue)
		if got != tt.want {
			t.Errorf("viability(%v) = %q, want %q", tt.payback, got, tt.want)
		}
		if !strings.HasPrefix(msg, tt.prefix) {
			t.Errorf("viability(%v) message = %q, want prefix %q", tt.payback, msg, tt.prefix)
		}
	}
}

func TestMicroHydroCalculator_InvalidInput(t *testing.T) {
	calc := NewMicroHydroCalculator()

	tests := []struct {
		name   string
		mutate func(*models.MicroHydroInput)
	}{
		{"zero flow", func(in *models.MicroHydroInput) { in.FlowRateM3s = 0 }},
		{"negative head", func(in *models.MicroHydroInput) { in.HeadMeters = -5 }},
		{"availability above 100", func(in *models.MicroHydroInput) { in.AvailabilityFactorPercent = 110 }},
		{"negative tariff", func(in *models.MicroHydroInput) { in.ElectricityRatePerKwh = -0.1 }},
		{"unknown turbine", func(in *models.MicroHydroInput) { in.TurbineType = "archimedes" }},
		{"overflowing power", func(in *models.MicroHydroInput) { in.FlowRateM3s, in.HeadMeters = 1e300, 1e300 }},
		{"overflowing revenue", func(in *models.MicroHydroInput) { in.ElectricityRatePerKwh = 1e305 }},
		{"overflowing penstock", func(in *models.MicroHydroInput) { in.PenstockLengthMeters = 1e308 }},
		{"infinite flow", func(in *models.MicroHydroInput) { in.FlowRateM3s = math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := baseHydroInput()
			tt.mutate(&input)
			if _, err := calc.Calculate(input); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
