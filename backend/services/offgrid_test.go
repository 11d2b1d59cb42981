// ABOUTME: Tests for the off-grid solar and battery sizing calculator
// ABOUTME: Validates rounding, provisioning invariants, efficiency chain and costs

package services

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sparkcalc/sparkcalc/backend/models"
)

func baseOffGridInput() models.OffGridInput {
	return models.OffGridInput{
		DailyConsumptionKwh:     5,
		PeakSunHours:            3.5,
		AutonomyDays:            2,
		SystemVoltageDC:         48,
		PanelWattage:            400,
		BatteryCapacityAh:       100,
		BatteryVoltage:          48,
		BatteryType:             models.BatteryLithium,
		BatteryLocation:         models.LocationIndoor,
		DepthOfDischargePercent: 80,
		SystemEfficiencyPercent: 85,
	}
}

func TestOffGridCalculator_ReferenceScenario(t *testing.T) {
	calc := NewOffGridCalculator()

	r, err := calc.Calculate(baseOffGridInput())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// 5 / 3.5 / 0.85 = 1.68kW
	if math.Abs(r.RequiredSolarCapacityKw-1.68) > 0.005 {
		t.Errorf("Expected required capacity ~1.68kW, got %v", r.RequiredSolarCapacityKw)
	}
	// ceil(1680.67 / 400) = 5
	if r.NumberOfPanels != 5 {
		t.Errorf("Expected 5 panels, got %d", r.NumberOfPanels)
	}
	// 5 × 2 × 1000 / (48 × 0.8) = 260.4Ah; ceil(260.4 / 80) = 4
	if r.NumberOfBatteries != 4 {
		t.Errorf("Expected 4 batteries, got %d", r.NumberOfBatteries)
	}
	// 5 / 6 × 1.25
	if math.Abs(r.InverterSizeKw-5.0/6.0*1.25) > 1e-12 {
		t.Errorf("Expected inverter %v, got %v", 5.0/6.0*1.25, r.InverterSizeKw)
	}
	// 2000W / 48V × 1.25
	if math.Abs(r.ChargeControllerSizeAmps-2000.0/48*1.25) > 1e-9 {
		t.Errorf("Expected controller %v A, got %v", 2000.0/48*1.25, r.ChargeControllerSizeAmps)
	}
	// 5 × 400 × 3.5 / 1000 - 5 = 2
	if math.Abs(r.DailyEnergyBalanceKwh-2) > 1e-9 {
		t.Errorf("Expected balance 2kWh, got %v", r.DailyEnergyBalanceKwh)
	}
	if r.WireLossWarning != "" {
		t.Errorf("Expected no wire loss warning at 48V, got %q", r.WireLossWarning)
	}
}

func TestOffGridCalculator_PeakPowerOverridesHeuristic(t *testing.T) {
	calc := NewOffGridCalculator()
	input := baseOffGridInput()
	peak := 3.0
	input.PeakPowerKw = &peak

	r, _ := calc.Calculate(input)
	if r.InverterSizeKw != 3.75 {
		t.Errorf("Expected 3.75kW inverter, got %v", r.InverterSizeKw)
	}
}

func TestOffGridCalculator_LocationDerating(t *testing.T) {
	calc := NewOffGridCalculator()

	tests := []struct {
		location models.BatteryLocation
		want     int
	}{
		{models.LocationIndoor, 4},    // ceil(3.26)
		{models.LocationSheltered, 4}, // ceil(3.26 × 1.15 = 3.74)
		{models.LocationOutdoor, 5},   // ceil(3.26 × 1.30 = 4.23)
	}

	for _, tt := range tests {
		t.Run(string(tt.location), func(t *testing.T) {
			input := baseOffGridInput()
			input.BatteryLocation = tt.location
			r, _ := calc.Calculate(input)
			if r.NumberOfBatteries != tt.want {
				t.Errorf("Expected %d batteries, got %d", tt.want, r.NumberOfBatteries)
			}
		})
	}
}

func TestOffGridCalculator_SeriesStrings(t *testing.T) {
	calc := NewOffGridCalculator()
	input := baseOffGridInput()
	input.BatteryVoltage = 12

	r, _ := calc.Calculate(input)
	// four parallel strings of four 12V batteries
	if r.NumberOfBatteries != 16 {
		t.Errorf("Expected 16 batteries, got %d", r.NumberOfBatteries)
	}
}

func TestSeriesCount(t *testing.T) {
	tests := []struct {
		systemV, batteryV float64
		want              int
	}{
		{48, 48, 1},
		{48, 51.2, 1},
		{48, 12, 4},
		{24, 5, 5},
	}
	for _, tt := range tests {
		got, err := seriesCount(tt.systemV, tt.batteryV)
		if err != nil {
			t.Fatalf("seriesCount(%v, %v) returned %v", tt.systemV, tt.batteryV, err)
		}
		if got != tt.want {
			t.Errorf("seriesCount(%v, %v) = %d, want %d", tt.systemV, tt.batteryV, got, tt.want)
		}
	}

	if _, err := seriesCount(48, 1e-300); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for an unbounded string, got %v", err)
	}
}

func TestOffGridCalculator_NeverUnderProvisioned(t *testing.T) {
	calc := NewOffGridCalculator()

	prevPanels := 0
	for daily := 0.5; daily <= 30; daily += 0.25 {
		input := baseOffGridInput()
		input.DailyConsumptionKwh = daily

		r, err := calc.Calculate(input)
		if err != nil {
			t.Fatalf("Expected no error at %v kWh, got %v", daily, err)
		}
		if r.NumberOfPanels < 1 || r.NumberOfBatteries < 1 {
			t.Fatalf("Expected at least one panel and battery at %v kWh", daily)
		}
		if r.RequiredSolarCapacityKw*1000 > float64(r.NumberOfPanels)*input.PanelWattage {
			t.Errorf("Array under-provisioned at %v kWh", daily)
		}
		if r.RequiredBatteryCapacityAh > float64(r.NumberOfBatteries)*input.BatteryCapacityAh {
			t.Errorf("Battery bank under-provisioned at %v kWh", daily)
		}
		if r.NumberOfPanels < prevPanels {
			t.Errorf("Panel count fell from %d to %d as consumption rose to %v", prevPanels, r.NumberOfPanels, daily)
		}
		prevPanels = r.NumberOfPanels
	}
}

func TestEfficiencyChain(t *testing.T) {
	stages, overall := efficiencyChain(10, models.BatteryLithium)

	if len(stages) != 5 {
		t.Fatalf("Expected 5 stages, got %d", len(stages))
	}
	if stages[0].Stage != "Solar panels" || stages[4].Stage != "Wiring" {
		t.Errorf("Unexpected stage order %v", stages)
	}

	// 0.95 × 0.98 × 0.95 × 0.94 × 0.97
	want := 0.95 * 0.98 * 0.95 * 0.94 * 0.97 * 100
	if math.Abs(overall-want) > 1e-9 {
		t.Errorf("Expected overall %v, got %v", want, overall)
	}

	var losses float64
	for _, s := range stages {
		if s.LossKwh <= 0 {
			t.Errorf("Expected positive loss at %s", s.Stage)
		}
		losses += s.LossKwh
	}
	// losses + delivered = generated
	if math.Abs(10-losses-10*overall/100) > 1e-9 {
		t.Errorf("Expected losses to reconcile with overall efficiency, got %v", losses)
	}

	_, agm := efficiencyChain(10, models.BatteryAGM)
	if agm >= overall {
		t.Errorf("Expected AGM chain (%v) below lithium (%v)", agm, overall)
	}
}

func TestOffGridCalculator_CostTotalsEqualComponents(t *testing.T) {
	calc := NewOffGridCalculator()

	for _, bt := range []models.BatteryType{models.BatteryLithium, models.BatteryAGM} {
		input := baseOffGridInput()
		input.BatteryType = bt
		r, _ := calc.Calculate(input)
		c := r.Costs

		sum := c.Panels.Add(c.Batteries).Add(c.Inverter).Add(c.ChargeController).
			Add(c.Installation).Add(c.Miscellaneous).Add(c.VAT)
		if !sum.Equal(c.Total) {
			t.Errorf("%s: expected total %s to equal sum of components %s", bt, c.Total, sum)
		}
		// 5 panels × 400W × £0.45
		if !c.Panels.Equal(decimal.NewFromInt(900)) {
			t.Errorf("Expected panel cost 900, got %s", c.Panels)
		}
		if !c.VAT.IsPositive() {
			t.Error("Expected VAT to be charged")
		}
	}
}

func TestOffGridCalculator_Rate(t *testing.T) {
	calc := NewOffGridCalculator()
	input := baseOffGridInput()

	tests := []struct {
		name      string
		generated float64
		total     int64
		want      models.SystemRating
	}{
		{"large surplus", 7, 1000, models.RatingExcellent},
		{"healthy surplus", 6, 1000, models.RatingGood},
		{"just enough", 5.1, 1000, models.RatingAdequate},
		{"small deficit", 4.5, 1000, models.RatingMarginal},
		{"large deficit", 3, 1000, models.RatingPoor},
		{"surplus but expensive", 7, 20000, models.RatingGood},
		{"deficit and expensive stays poor", 3, 20000, models.RatingPoor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := models.OffGridResult{Costs: models.OffGridCosts{Total: decimal.NewFromInt(tt.total)}}
			if got := calc.rate(input, r, tt.generated); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestWireLossWarning(t *testing.T) {
	// 2000W at 12V is 166.7A: 2 × 10m × 166.7A × 0.0175 / 16 = 3.65V, 30% of 12V
	if msg := wireLossWarning(2000, 12, 0); msg == "" {
		t.Error("Expected wire loss warning at 12V")
	}
	// 2000W at 48V is 41.7A: 0.91V, 1.9% of 48V
	if msg := wireLossWarning(2000, 48, 0); msg != "" {
		t.Errorf("Expected no warning at 48V, got %q", msg)
	}
	// long run at 48V: 2 × 100m × 41.7A × 0.0175 / 16 = 9.1V
	if msg := wireLossWarning(2000, 48, 100); msg == "" {
		t.Error("Expected wire loss warning for a 100m run")
	}
}

func TestOffGridCalculator_Warnings(t *testing.T) {
	calc := NewOffGridCalculator()
	input := baseOffGridInput()
	input.BatteryType = models.BatteryAGM
	input.BatteryVoltage = 36
	input.AutonomyDays = 1

	r, _ := calc.Calculate(input)

	messages := map[string]bool{}
	for _, w := range r.Warnings {
		messages[w.Message] = true
	}
	for _, want := range []string{
		"AGM depth of discharge above 50% will shorten battery life",
		"Less than two days of autonomy leaves little margin for overcast weather",
		"36V batteries do not divide evenly into a 48V string",
	} {
		if !messages[want] {
			t.Errorf("Expected warning %q, got %v", want, r.Warnings)
		}
	}
}

func TestOffGridCalculator_InvalidInput(t *testing.T) {
	calc := NewOffGridCalculator()

	tests := []struct {
		name   string
		mutate func(*models.OffGridInput)
	}{
		{"zero consumption", func(in *models.OffGridInput) { in.DailyConsumptionKwh = 0 }},
		{"zero sun hours", func(in *models.OffGridInput) { in.PeakSunHours = 0 }},
		{"zero panel wattage", func(in *models.OffGridInput) { in.PanelWattage = 0 }},
		{"zero depth of discharge", func(in *models.OffGridInput) { in.DepthOfDischargePercent = 0 }},
		{"efficiency above 100", func(in *models.OffGridInput) { in.SystemEfficiencyPercent = 120 }},
		{"unsupported system voltage", func(in *models.OffGridInput) { in.SystemVoltageDC = 36 }},
		{"unknown battery type", func(in *models.OffGridInput) { in.BatteryType = "nicd" }},
		{"unknown location", func(in *models.OffGridInput) { in.BatteryLocation = "loft" }},
		{"vanishing panel wattage", func(in *models.OffGridInput) { in.PanelWattage = 1e-300 }},
		{"vanishing battery capacity", func(in *models.OffGridInput) { in.BatteryCapacityAh = 1e-300 }},
		{"vanishing battery voltage", func(in *models.OffGridInput) { in.BatteryVoltage = 1e-300 }},
		{"overflowing battery cost", func(in *models.OffGridInput) { in.BatteryCapacityAh, in.BatteryVoltage = 1e200, 1e200 }},
		{"overflowing peak power", func(in *models.OffGridInput) { peak := 1e308; in.PeakPowerKw = &peak }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := baseOffGridInput()
			tt.mutate(&input)
			if _, err := calc.Calculate(input); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestOffGridCalculator_Idempotent(t *testing.T) {
	calc := NewOffGridCalculator()
	first, _ := calc.Calculate(baseOffGridInput())
	second, _ := calc.Calculate(baseOffGridInput())
	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical results for identical input")
	}
}
