// ABOUTME: Tests for cable sizing against the embedded cable database
// ABOUTME: Validates smallest-size selection, voltage drop upsizing and error paths

package services

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sparkcalc/sparkcalc/backend/cabledb"
	"github.com/sparkcalc/sparkcalc/backend/models"
)

func newTestSizingCalculator(t *testing.T) *SizingCalculator {
	t.Helper()
	db, err := cabledb.Load()
	if err != nil {
		t.Fatalf("Expected embedded cable database to load, got %v", err)
	}
	return NewSizingCalculator(db)
}

func baseSizingInput() models.CableSizingInput {
	return models.CableSizingInput{
		Cable:              "pvc-twin-earth",
		InstallationMethod: models.MethodC,
		AmbientTempC:       30,
		NumberOfCables:     1,
		ThermalInsulation:  models.InsulationNone,
		DesignCurrent:      28,
		DeviceRating:       32,
		LengthM:            20,
		CircuitType:        models.CircuitPower,
	}
}

func TestSizingCalculator_SmallestCompliantSize(t *testing.T) {
	calc := newTestSizingCalculator(t)

	r, err := calc.Size(baseSizingInput())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// 1.5mm² is 26A, 2.5mm² is 36A under method C
	if r.SizeMm2 != 2.5 {
		t.Errorf("Expected 2.5mm², got %v", r.SizeMm2)
	}
	if r.TabulatedRating != 36 {
		t.Errorf("Expected tabulated 36A, got %v", r.TabulatedRating)
	}
	// 18 mV/A/m × 28A × 20m
	if math.Abs(r.VoltageDropVolts-10.08) > 1e-9 {
		t.Errorf("Expected 10.08V drop, got %v", r.VoltageDropVolts)
	}
	if math.Abs(r.VoltageDropPercent-10.08/230*100) > 1e-9 {
		t.Errorf("Expected %.2f%% drop, got %v", 10.08/230*100, r.VoltageDropPercent)
	}
	if !r.VoltageDropOK || r.VoltageDropLimit != 5 {
		t.Errorf("Expected drop within the 5%% limit, got ok=%v limit=%v", r.VoltageDropOK, r.VoltageDropLimit)
	}
	if r.Derating.Compliance == nil || !r.Derating.Compliance.Compliant {
		t.Errorf("Expected a compliant Ib ≤ In ≤ Iz check, got %+v", r.Derating.Compliance)
	}
	if !r.TotalCableCost.Equal(decimal.NewFromInt(45)) {
		t.Errorf("Expected 20m × £2.25 = £45, got %s", r.TotalCableCost)
	}
	if models.HasCritical(r.Warnings) {
		t.Errorf("Expected no critical warnings, got %v", r.Warnings)
	}
}

func TestSizingCalculator_UpsizesForVoltageDrop(t *testing.T) {
	calc := newTestSizingCalculator(t)
	input := baseSizingInput()
	input.LengthM = 40

	r, err := calc.Size(input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// 2.5mm² gives 8.8% and 4mm² 5.4%; 6mm² gives 3.6%
	if r.SizeMm2 != 6 {
		t.Errorf("Expected 6mm² after upsizing, got %v", r.SizeMm2)
	}
	if !r.VoltageDropOK {
		t.Errorf("Expected drop within limit, got %v%%", r.VoltageDropPercent)
	}

	found := false
	for _, w := range r.Warnings {
		if w.Severity == models.SeverityInfo && w.Message == "Upsized from 2.5mm² to 6mm² to meet the 5% voltage drop limit" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected upsizing note, got %v", r.Warnings)
	}
}

func TestSizingCalculator_LightingLimit(t *testing.T) {
	calc := newTestSizingCalculator(t)
	input := baseSizingInput()
	input.CircuitType = models.CircuitLighting

	r, _ := calc.Size(input)
	// 4.38% on 2.5mm² fails 3%; 4mm² gives 2.68%
	if r.SizeMm2 != 4 {
		t.Errorf("Expected 4mm² for a 3%% lighting limit, got %v", r.SizeMm2)
	}
}

func TestSizingCalculator_ThreePhase(t *testing.T) {
	calc := newTestSizingCalculator(t)
	input := models.CableSizingInput{
		Cable:              "swa-xlpe",
		InstallationMethod: models.MethodC,
		AmbientTempC:       30,
		NumberOfCables:     1,
		ThermalInsulation:  models.InsulationNone,
		DesignCurrent:      40,
		DeviceRating:       40,
		LengthM:            50,
		ThreePhase:         true,
		CircuitType:        models.CircuitPower,
	}

	r, err := calc.Size(input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	// 2.5mm² carries 43A but drops 7.8% at 400V; 4mm² drops 4.8%
	if r.SizeMm2 != 4 {
		t.Errorf("Expected 4mm², got %v", r.SizeMm2)
	}
	want := 11 * math.Sqrt(3) / 2 * 40 * 50 / 1000
	if math.Abs(r.VoltageDropVolts-want) > 1e-9 {
		t.Errorf("Expected %vV drop, got %v", want, r.VoltageDropVolts)
	}
}

func TestSizingCalculator_DeratingDrivesSelection(t *testing.T) {
	calc := newTestSizingCalculator(t)
	input := baseSizingInput()
	input.NumberOfCables = 4

	r, err := calc.Size(input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	// clipped grouping of 4 is 0.75: 36 × 0.75 = 27A < 32A, 49 × 0.75 = 36.75A
	if r.SizeMm2 != 4 {
		t.Errorf("Expected 4mm² with grouping, got %v", r.SizeMm2)
	}
	if r.Derating.FinalRating < input.DeviceRating {
		t.Errorf("Expected derated rating %v to cover device %v", r.Derating.FinalRating, input.DeviceRating)
	}
}

func TestSizingCalculator_Errors(t *testing.T) {
	calc := newTestSizingCalculator(t)

	tests := []struct {
		name    string
		mutate  func(*models.CableSizingInput)
		wantErr error
	}{
		{"unknown cable", func(in *models.CableSizingInput) { in.Cable = "bell-wire" }, ErrInvalidInput},
		{"untabulated method", func(in *models.CableSizingInput) { in.InstallationMethod = models.MethodD1 }, ErrInvalidInput},
		{"zero length", func(in *models.CableSizingInput) { in.LengthM = 0 }, ErrInvalidInput},
		{"overflowing length", func(in *models.CableSizingInput) { in.LengthM = 1e308 }, ErrInvalidInput},
		{"infinite ambient", func(in *models.CableSizingInput) { in.AmbientTempC = math.Inf(-1) }, ErrInvalidInput},
		{"beyond largest size", func(in *models.CableSizingInput) {
			in.DesignCurrent = 100
			in.DeviceRating = 100
		}, ErrNoSuitableSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := baseSizingInput()
			tt.mutate(&input)
			if _, err := calc.Size(input); !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestVoltageDrop(t *testing.T) {
	v, pct := voltageDrop(18, 10, 10, false)
	if math.Abs(v-1.8) > 1e-12 || math.Abs(pct-1.8/230*100) > 1e-12 {
		t.Errorf("single-phase: got %vV %v%%", v, pct)
	}

	v3, pct3 := voltageDrop(18, 10, 10, true)
	if math.Abs(v3-1.8*math.Sqrt(3)/2) > 1e-12 || math.Abs(pct3-v3/400*100) > 1e-12 {
		t.Errorf("three-phase: got %vV %v%%", v3, pct3)
	}
}
