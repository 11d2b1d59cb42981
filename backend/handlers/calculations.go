// ABOUTME: Saved calculation endpoints backed by the calculation store
// ABOUTME: Saving re-runs the engine so stored results always match their input

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sparkcalc/sparkcalc/backend/models"
	"github.com/sparkcalc/sparkcalc/backend/services"
	"github.com/sparkcalc/sparkcalc/backend/store"
)

// SaveCalculation runs the named engine over the request input and stores the
// prepared input with its result.
func (h *Handler) SaveCalculation(w http.ResponseWriter, r *http.Request) {
	data, ok := h.readBody(w, r)
	if !ok {
		return
	}

	var req models.SaveCalculationRequest
	if err := decodeStrict(data, &req); err != nil {
		h.writeCalculationError(w, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		h.writeCalculationError(w, err)
		return
	}

	calc, err := h.run(req.Kind, req.Input)
	if err != nil {
		h.writeCalculationError(w, err)
		return
	}
	resultJSON, err := json.Marshal(calc.result)
	if err != nil {
		h.writeCalculationError(w, err)
		return
	}

	saved, err := h.store.Save(r.Context(), models.SavedCalculation{
		Name:   req.Name,
		Kind:   req.Kind,
		Input:  calc.input,
		Result: resultJSON,
	})
	if err != nil {
		slog.Error("Failed to save calculation", "kind", req.Kind, "error", err)
		h.writeError(w, "Failed to save calculation", http.StatusInternalServerError)
		return
	}

	slog.Info("Calculation saved", "id", saved.ID, "kind", saved.Kind)
	w.Header().Set("Location", "/api/v1/calculations/"+saved.ID)
	h.writeJSON(w, http.StatusCreated, saved)
}

// ListCalculations returns saved calculations, optionally filtered by ?kind=.
func (h *Handler) ListCalculations(w http.ResponseWriter, r *http.Request) {
	kind := models.CalculationKind(r.URL.Query().Get("kind"))
	if kind != "" && !kind.Valid() {
		h.writeErrorDetails(w, "Invalid kind", "kind must name a calculator", http.StatusBadRequest)
		return
	}

	calcs, err := h.store.List(r.Context(), kind)
	if err != nil {
		slog.Error("Failed to list calculations", "error", err)
		h.writeError(w, "Failed to list calculations", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, calcs)
}

// GetCalculation returns one saved calculation.
func (h *Handler) GetCalculation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := services.ValidateID(id); err != nil {
		h.writeErrorDetails(w, "Invalid calculation id", err.Error(), http.StatusBadRequest)
		return
	}

	calc, err := h.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.writeError(w, "Calculation not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("Failed to fetch calculation", "id", id, "error", err)
		h.writeError(w, "Failed to fetch calculation", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, calc)
}

// DeleteCalculation removes one saved calculation.
func (h *Handler) DeleteCalculation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := services.ValidateID(id); err != nil {
		h.writeErrorDetails(w, "Invalid calculation id", err.Error(), http.StatusBadRequest)
		return
	}

	err := h.store.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.writeError(w, "Calculation not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("Failed to delete calculation", "id", id, "error", err)
		h.writeError(w, "Failed to delete calculation", http.StatusInternalServerError)
		return
	}

	slog.Info("Calculation deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
