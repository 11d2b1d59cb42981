// ABOUTME: Saved calculation record and API response envelopes
// ABOUTME: Stores engine input and result as raw JSON keyed by calculator kind

package models

import (
	"encoding/json"
	"time"
)

// CalculationKind names the calculator that produced a saved record
type CalculationKind string

const (
	KindCableDerating CalculationKind = "cable-derating"
	KindCableSizing   CalculationKind = "cable-sizing"
	KindTouchStep     CalculationKind = "touch-step"
	KindOffGrid       CalculationKind = "off-grid"
	KindMicroHydro    CalculationKind = "micro-hydro"
	KindPricing       CalculationKind = "pricing"
)

// Valid reports whether k is a known calculator kind
func (k CalculationKind) Valid() bool {
	switch k {
	case KindCableDerating, KindCableSizing, KindTouchStep, KindOffGrid, KindMicroHydro, KindPricing:
		return true
	}
	return false
}

// SavedCalculation is a named calculation persisted through the store
type SavedCalculation struct {
	ID        string          `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Kind      CalculationKind `json:"kind" db:"kind"`
	Input     json.RawMessage `json:"input" db:"input"`
	Result    json.RawMessage `json:"result" db:"result"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// SaveCalculationRequest is the body of POST /api/v1/calculations
type SaveCalculationRequest struct {
	Name  string          `json:"name" validate:"required,max=200"`
	Kind  CalculationKind `json:"kind" validate:"required,enum"`
	Input json.RawMessage `json:"input" validate:"required"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Code    int               `json:"code"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// CacheStatus summarises the calculation result cache
type CacheStatus struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// HealthResponse reports service liveness and collaborators
type HealthResponse struct {
	Status      string      `json:"status"` // "ok", "degraded"
	Version     string      `json:"version"`
	Store       string      `json:"store"` // "memory", "postgres"
	StoreStatus string      `json:"store_status"`
	Cache       CacheStatus `json:"cache"`
	Cables      int         `json:"cables"`
	Time        time.Time   `json:"time"`
}
