// ABOUTME: Declarative route table for API endpoints
// ABOUTME: Defines all routes with their HTTP methods and handlers

package handlers

import (
	"net/http"

	"github.com/sparkcalc/sparkcalc/backend/models"
)

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method  string           // HTTP method (GET, POST, etc.)
	Path    string           // URL path (e.g., "/api/v1/health")
	Name    string           // metrics label
	Handler http.HandlerFunc // Handler function
}

// Pattern returns the ServeMux pattern for the route.
func (r Route) Pattern() string {
	return r.Method + " " + r.Path
}

// Routes returns all API routes for registration.
func (h *Handler) Routes() []Route {
	return []Route{
		// Health & documentation
		{Method: http.MethodGet, Path: "/api/v1/health", Name: "health", Handler: h.Health},
		{Method: http.MethodGet, Path: "/api/v1/openapi.yaml", Name: "openapi", Handler: h.OpenAPISpec},

		// Calculators
		{Method: http.MethodPost, Path: "/api/v1/calculate/cable-derating", Name: "calculate_cable_derating", Handler: h.Calculate(models.KindCableDerating)},
		{Method: http.MethodPost, Path: "/api/v1/calculate/cable-sizing", Name: "calculate_cable_sizing", Handler: h.Calculate(models.KindCableSizing)},
		{Method: http.MethodPost, Path: "/api/v1/calculate/touch-step", Name: "calculate_touch_step", Handler: h.Calculate(models.KindTouchStep)},
		{Method: http.MethodPost, Path: "/api/v1/calculate/off-grid", Name: "calculate_off_grid", Handler: h.Calculate(models.KindOffGrid)},
		{Method: http.MethodPost, Path: "/api/v1/calculate/micro-hydro", Name: "calculate_micro_hydro", Handler: h.Calculate(models.KindMicroHydro)},
		{Method: http.MethodPost, Path: "/api/v1/calculate/pricing", Name: "calculate_pricing", Handler: h.Calculate(models.KindPricing)},

		// Reference data
		{Method: http.MethodGet, Path: "/api/v1/cables", Name: "cables", Handler: h.ListCables},
		{Method: http.MethodGet, Path: "/api/v1/cables/{key}/alternatives", Name: "cable_alternatives", Handler: h.CableAlternatives},

		// Saved calculations
		{Method: http.MethodPost, Path: "/api/v1/calculations", Name: "calculations_save", Handler: h.SaveCalculation},
		{Method: http.MethodGet, Path: "/api/v1/calculations", Name: "calculations_list", Handler: h.ListCalculations},
		{Method: http.MethodGet, Path: "/api/v1/calculations/{id}", Name: "calculations_get", Handler: h.GetCalculation},
		{Method: http.MethodDelete, Path: "/api/v1/calculations/{id}", Name: "calculations_delete", Handler: h.DeleteCalculation},
	}
}
