// ABOUTME: Data models for BS 7671 cable current-rating derating
// ABOUTME: Closed enums for cable type, installation method and insulation contact

package models

// CableType identifies the insulation class and so its maximum operating temperature
type CableType string

const (
	CableTypePVC70       CableType = "pvc-70"
	CableTypeXLPE90      CableType = "xlpe-90"
	CableTypeMineral105  CableType = "mineral-105"
	CableTypeSilicone180 CableType = "silicone-180"
)

// CableTypes lists every supported cable type in display order
var CableTypes = []CableType{CableTypePVC70, CableTypeXLPE90, CableTypeMineral105, CableTypeSilicone180}

// Valid reports whether c is a known cable type
func (c CableType) Valid() bool {
	_, ok := c.RefTempC()
	return ok
}

// RefTempC returns the tabulated maximum conductor operating temperature
func (c CableType) RefTempC() (float64, bool) {
	switch c {
	case CableTypePVC70:
		return 70, true
	case CableTypeXLPE90:
		return 90, true
	case CableTypeMineral105:
		return 105, true
	case CableTypeSilicone180:
		return 180, true
	}
	return 0, false
}

// InstallationMethod is a BS 7671 Appendix 4 reference method
type InstallationMethod string

const (
	MethodA1 InstallationMethod = "method-a1" // enclosed in conduit in thermally insulating wall
	MethodA2 InstallationMethod = "method-a2" // multicore in conduit in thermally insulating wall
	MethodB1 InstallationMethod = "method-b1" // enclosed in conduit on a wall
	MethodB2 InstallationMethod = "method-b2" // multicore in trunking on a wall
	MethodC  InstallationMethod = "method-c"  // clipped direct
	MethodD1 InstallationMethod = "method-d1" // in ducts in the ground
	MethodD2 InstallationMethod = "method-d2" // direct in the ground
	MethodE  InstallationMethod = "method-e"  // multicore in free air or on perforated tray
	MethodF  InstallationMethod = "method-f"  // single-core touching in free air
	MethodG  InstallationMethod = "method-g"  // single-core spaced in free air
)

// InstallationMethods lists every reference method in table order
var InstallationMethods = []InstallationMethod{
	MethodA1, MethodA2, MethodB1, MethodB2, MethodC, MethodD1, MethodD2, MethodE, MethodF, MethodG,
}

// MethodFamily groups reference methods that share a grouping-factor table
type MethodFamily int

const (
	FamilyEnclosed MethodFamily = iota + 1
	FamilyClipped
	FamilyBuried
	FamilyFreeAir
)

// Family returns the grouping-table family of the method
func (m InstallationMethod) Family() (MethodFamily, bool) {
	switch m {
	case MethodA1, MethodA2, MethodB1, MethodB2:
		return FamilyEnclosed, true
	case MethodC:
		return FamilyClipped, true
	case MethodD1, MethodD2:
		return FamilyBuried, true
	case MethodE, MethodF, MethodG:
		return FamilyFreeAir, true
	}
	return 0, false
}

// Valid reports whether m is a known reference method
func (m InstallationMethod) Valid() bool {
	_, ok := m.Family()
	return ok
}

// Buried reports whether the method places the cable in the ground
func (m InstallationMethod) Buried() bool {
	f, _ := m.Family()
	return f == FamilyBuried
}

// Code returns the short BS 7671 code, e.g. "C" or "D1"
func (m InstallationMethod) Code() string {
	switch m {
	case MethodA1:
		return "A1"
	case MethodA2:
		return "A2"
	case MethodB1:
		return "B1"
	case MethodB2:
		return "B2"
	case MethodC:
		return "C"
	case MethodD1:
		return "D1"
	case MethodD2:
		return "D2"
	case MethodE:
		return "E"
	case MethodF:
		return "F"
	case MethodG:
		return "G"
	}
	return ""
}

// ThermalInsulation describes how much building insulation surrounds the cable
type ThermalInsulation string

const (
	InsulationNone            ThermalInsulation = "none"
	InsulationOneSideTouching ThermalInsulation = "one-side-touching"
	InsulationOneSideEmbedded ThermalInsulation = "one-side-embedded"
	InsulationSurrounded50mm  ThermalInsulation = "surrounded-50mm"
	InsulationSurrounded100mm ThermalInsulation = "surrounded-100mm"
	InsulationSurrounded200mm ThermalInsulation = "surrounded-200mm"
	InsulationSurrounded300mm ThermalInsulation = "surrounded-300mm"
	InsulationSurrounded400mm ThermalInsulation = "surrounded-400mm"
	InsulationFullySurrounded ThermalInsulation = "fully-surrounded"
)

// ThermalInsulations lists every insulation category from least to most onerous
var ThermalInsulations = []ThermalInsulation{
	InsulationNone, InsulationOneSideTouching, InsulationOneSideEmbedded,
	InsulationSurrounded50mm, InsulationSurrounded100mm, InsulationSurrounded200mm,
	InsulationSurrounded300mm, InsulationSurrounded400mm, InsulationFullySurrounded,
}

// Valid reports whether t is a known insulation category
func (t ThermalInsulation) Valid() bool {
	for _, known := range ThermalInsulations {
		if t == known {
			return true
		}
	}
	return false
}

// StandardDeviceRatings are the protective device ratings (A) accepted for compliance checks
var StandardDeviceRatings = []float64{6, 10, 16, 20, 25, 32, 40, 50, 63, 80, 100, 125, 160, 200, 250}

// IsStandardDeviceRating reports whether amps is a standard protective device rating
func IsStandardDeviceRating(amps float64) bool {
	for _, r := range StandardDeviceRatings {
		if r == amps {
			return true
		}
	}
	return false
}

// CableDeratingInput describes a cable run and its installation conditions
type CableDeratingInput struct {
	BaseRatingAmps         float64            `json:"base_rating_amps" validate:"gt=0,lte=10000"`
	CableType              CableType          `json:"cable_type" validate:"required,enum"`
	InstallationMethod     InstallationMethod `json:"installation_method" validate:"required,enum"`
	AmbientTempC           float64            `json:"ambient_temp_c" validate:"gte=-40,lte=200"`
	NumberOfCables         int                `json:"number_of_cables" validate:"gte=1,lte=1000"`
	ThermalInsulation      ThermalInsulation  `json:"thermal_insulation" validate:"required,enum"`
	SoilThermalResistivity float64            `json:"soil_thermal_resistivity,omitempty" validate:"gte=0,lte=100"`  // K·m/W, buried methods only
	DesignCurrent          *float64           `json:"design_current,omitempty" validate:"omitempty,gt=0,lte=10000"` // Ib
	DeviceRating           *float64           `json:"device_rating,omitempty" validate:"omitempty,device_rating"`
}

// ComplianceCheck is the Ib ≤ In ≤ Iz coordination check
type ComplianceCheck struct {
	Ib            float64 `json:"ib"`
	In            float64 `json:"in"`
	Iz            float64 `json:"iz"`
	IbInCompliant bool    `json:"ib_in_compliant"`
	InIzCompliant bool    `json:"in_iz_compliant"`
	Compliant     bool    `json:"compliant"`
	SafetyMargin  float64 `json:"safety_margin"` // percent of Iz above In
}

// CableDeratingResult holds the derating factors and the derated capacity
type CableDeratingResult struct {
	TemperatureFactor  float64          `json:"temperature_factor"` // Ca
	GroupingFactor     float64          `json:"grouping_factor"`    // Cg
	InsulationFactor   float64          `json:"insulation_factor"`  // Ci
	SoilFactor         float64          `json:"soil_factor"`        // Cs
	TotalDerating      float64          `json:"total_derating"`
	BaseRating         float64          `json:"base_rating"`
	FinalRating        float64          `json:"final_rating"` // Iz
	DeratingPercentage float64          `json:"derating_percentage"`
	Compliance         *ComplianceCheck `json:"compliance,omitempty"` // nil when not requested
	Warnings           []Warning        `json:"warnings"`
}
