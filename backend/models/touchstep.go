// ABOUTME: Data models for earth electrode touch and step voltage assessment
// ABOUTME: Covers BS EN 50522 permissible limits and IEC 60479 body current zones

package models

// ElectrodeType is the earth electrode geometry
type ElectrodeType string

const (
	ElectrodeRod   ElectrodeType = "rod"
	ElectrodePlate ElectrodeType = "plate"
	ElectrodeStrip ElectrodeType = "strip"
	ElectrodeMesh  ElectrodeType = "mesh"
)

// Valid reports whether e is a known electrode geometry
func (e ElectrodeType) Valid() bool {
	switch e {
	case ElectrodeRod, ElectrodePlate, ElectrodeStrip, ElectrodeMesh:
		return true
	}
	return false
}

// ContactScenario selects which voltage the body is exposed to
type ContactScenario string

const (
	ContactTouch ContactScenario = "touch" // hand to feet
	ContactStep  ContactScenario = "step"  // foot to foot
)

// Valid reports whether c is a known contact scenario
func (c ContactScenario) Valid() bool {
	return c == ContactTouch || c == ContactStep
}

// PhysiologicalZone is an IEC 60479-1 AC time/current zone
type PhysiologicalZone string

const (
	ZoneAC1 PhysiologicalZone = "AC-1"
	ZoneAC2 PhysiologicalZone = "AC-2"
	ZoneAC3 PhysiologicalZone = "AC-3"
	ZoneAC4 PhysiologicalZone = "AC-4"
)

// Number returns the zone index 1-4
func (z PhysiologicalZone) Number() int {
	switch z {
	case ZoneAC1:
		return 1
	case ZoneAC2:
		return 2
	case ZoneAC3:
		return 3
	case ZoneAC4:
		return 4
	}
	return 0
}

// Description returns the expected physiological effect
func (z PhysiologicalZone) Description() string {
	switch z {
	case ZoneAC1:
		return "Imperceptible, no reaction"
	case ZoneAC2:
		return "Perceptible, no harmful effects"
	case ZoneAC3:
		return "Muscular contraction, inability to let go"
	case ZoneAC4:
		return "Risk of ventricular fibrillation"
	}
	return ""
}

// DefaultBodyImpedanceOhms is used when no body impedance is supplied
const DefaultBodyImpedanceOhms = 1000.0

// TouchStepInput describes an earth fault at an electrode
type TouchStepInput struct {
	EarthFaultCurrentAmps float64         `json:"earth_fault_current_amps" validate:"gt=0,lte=1000000"`
	SoilResistivityOhmM   float64         `json:"soil_resistivity_ohm_m" validate:"gt=0,lte=100000"`
	ElectrodeType         ElectrodeType   `json:"electrode_type" validate:"required,enum"`
	RodLengthM            float64         `json:"rod_length_m,omitempty" validate:"gte=0,lte=10000"`
	RodDiameterM          float64         `json:"rod_diameter_m,omitempty" validate:"gte=0,lte=10000"`
	PlateAreaM2           float64         `json:"plate_area_m2,omitempty" validate:"gte=0,lte=1000000"`
	StripLengthM          float64         `json:"strip_length_m,omitempty" validate:"gte=0,lte=10000"`
	StripWidthM           float64         `json:"strip_width_m,omitempty" validate:"gte=0,lte=10000"`
	StripDepthM           float64         `json:"strip_depth_m,omitempty" validate:"gte=0,lte=10000"`
	MeshAreaM2            float64         `json:"mesh_area_m2,omitempty" validate:"gte=0,lte=1000000"`
	MeshConductorLengthM  float64         `json:"mesh_conductor_length_m,omitempty" validate:"gte=0,lte=10000"`
	FaultDurationS        float64         `json:"fault_duration_s" validate:"fault_duration"`
	ContactScenario       ContactScenario `json:"contact_scenario" validate:"required,enum"`
	BodyImpedanceOhms     float64         `json:"body_impedance_ohms,omitempty" validate:"gte=0,lte=100000"` // 0 = default 1000
}

// TouchStepResult holds the electrode, voltage and body-current assessment
type TouchStepResult struct {
	ElectrodeResistanceOhms float64           `json:"electrode_resistance_ohms"`
	EarthPotentialRiseVolts float64           `json:"earth_potential_rise_volts"`
	TouchVoltage            float64           `json:"touch_voltage"`
	StepVoltage             float64           `json:"step_voltage"`
	PermissibleTouchVoltage float64           `json:"permissible_touch_voltage"`
	PermissibleStepVoltage  float64           `json:"permissible_step_voltage"`
	BodyImpedanceOhms       float64           `json:"body_impedance_ohms"`
	BodyCurrentMilliamps    float64           `json:"body_current_ma"`
	PhysiologicalZone       PhysiologicalZone `json:"physiological_zone"`
	PhysiologicalZoneNumber int               `json:"physiological_zone_number"`
	ZoneDescription         string            `json:"zone_description"`
	PassOrFail              string            `json:"pass_or_fail"` // "pass", "fail"
	SafetyMarginPercent     float64           `json:"safety_margin_percent"`
	HotSite                 bool              `json:"hot_site"`
	Recommendations         []string          `json:"recommendations"`
}

// Passed reports whether the selected contact scenario is within limits
func (r *TouchStepResult) Passed() bool {
	return r.PassOrFail == "pass"
}
