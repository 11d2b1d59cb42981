// ABOUTME: HTTP handlers for the electrical calculation API
// ABOUTME: Wires calculators, validation, result cache, metrics and the calculation store

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sparkcalc/sparkcalc/backend/cabledb"
	"github.com/sparkcalc/sparkcalc/backend/cache"
	"github.com/sparkcalc/sparkcalc/backend/config"
	"github.com/sparkcalc/sparkcalc/backend/middleware"
	"github.com/sparkcalc/sparkcalc/backend/models"
	"github.com/sparkcalc/sparkcalc/backend/services"
	"github.com/sparkcalc/sparkcalc/backend/store"
)

// Version is reported by the health endpoint; set with -ldflags at build time
var Version = "dev"

const defaultMaxBodyBytes = 1 << 20

type Handler struct {
	cfg       *config.Config
	cache     *cache.Cache
	store     store.Store
	metrics   *middleware.Metrics
	validator *services.Validator
	cables    *cabledb.DB
	engines   map[models.CalculationKind]engine
}

// NewHandler builds the API handler. A nil cache disables memoisation, a nil
// store falls back to memory and nil metrics disables instrumentation.
func NewHandler(cfg *config.Config, c *cache.Cache, st store.Store, m *middleware.Metrics) *Handler {
	if st == nil {
		st = store.NewMemoryStore()
	}

	h := &Handler{
		cfg:       cfg,
		cache:     c,
		store:     st,
		metrics:   m,
		validator: services.NewValidator(),
		cables:    cabledb.MustLoad(),
	}

	derating := services.NewDeratingCalculator()
	sizing := services.NewSizingCalculator(h.cables)
	touchStep := services.NewTouchStepCalculator()
	offGrid := services.NewOffGridCalculator()
	microHydro := services.NewMicroHydroCalculator()
	pricing := services.NewPricingCalculator()

	h.engines = map[models.CalculationKind]engine{
		models.KindCableDerating: bind(h, models.KindCableDerating, derating.Calculate),
		models.KindCableSizing:   bind(h, models.KindCableSizing, sizing.Size),
		models.KindTouchStep:     bind(h, models.KindTouchStep, touchStep.Calculate),
		models.KindOffGrid:       bind(h, models.KindOffGrid, offGrid.Calculate),
		models.KindMicroHydro:    bind(h, models.KindMicroHydro, microHydro.Calculate),
		models.KindPricing:       bind(h, models.KindPricing, pricing.Calculate, h.defaultHourlyRate),
	}

	return h
}

// defaultHourlyRate fills an omitted hourly rate from DEFAULT_HOURLY_RATE
func (h *Handler) defaultHourlyRate(in *models.PricingInput) {
	if in.HourlyRate == 0 && h.cfg != nil {
		in.HourlyRate = h.cfg.DefaultHourlyRate
	}
}

func (h *Handler) maxBodyBytes() int64 {
	if h.cfg != nil && h.cfg.MaxRequestBodyBytes > 0 {
		return h.cfg.MaxRequestBodyBytes
	}
	return defaultMaxBodyBytes
}

// Health returns API liveness with store and cache status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:      "ok",
		Version:     Version,
		Store:       h.store.Name(),
		StoreStatus: "ok",
		Cables:      len(h.cables.Cables()),
		Time:        time.Now().UTC(),
	}

	if h.cache != nil {
		s := h.cache.Stats()
		resp.Cache = models.CacheStatus{Entries: s.Entries, Hits: s.Hits, Misses: s.Misses}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		slog.Warn("Store ping failed", "store", h.store.Name(), "error", err)
		resp.Status = "degraded"
		resp.StoreStatus = "unavailable"
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	h.writeJSON(w, code, models.ErrorResponse{Error: message, Code: code})
}

func (h *Handler) writeErrorDetails(w http.ResponseWriter, message, details string, code int) {
	h.writeJSON(w, code, models.ErrorResponse{Error: message, Details: details, Code: code})
}
