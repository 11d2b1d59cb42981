// ABOUTME: Cable database endpoints for reference lookups
// ABOUTME: Lists cables by installation method and current, and cheaper alternatives

package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/sparkcalc/sparkcalc/backend/models"
)

// ListCables returns the embedded cable database. ?method= narrows it to the
// cables tabulated for that installation method and ?min_current= further to
// those with a size rated for at least that many amps.
func (h *Handler) ListCables(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	method := models.InstallationMethod(q.Get("method"))
	minCurrent := q.Get("min_current")

	if method == "" {
		if minCurrent != "" {
			h.writeErrorDetails(w, "Invalid query", "min_current requires method", http.StatusBadRequest)
			return
		}
		h.writeJSON(w, http.StatusOK, h.cables.Cables())
		return
	}
	if !method.Valid() {
		h.writeErrorDetails(w, "Invalid method", "method must be a reference method such as method-c", http.StatusBadRequest)
		return
	}
	if minCurrent == "" {
		h.writeJSON(w, http.StatusOK, h.cables.ByMethod(method))
		return
	}

	amps, err := positiveParam("min_current", minCurrent)
	if err != nil {
		h.writeErrorDetails(w, "Invalid query", err.Error(), http.StatusBadRequest)
		return
	}
	h.writeJSON(w, http.StatusOK, h.cables.ByCurrentRating(amps, method))
}

// CableAlternatives lists cheaper cables in the same ?size= whose price per
// metre is within ?max_budget=, largest saving first.
func (h *Handler) CableAlternatives(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	size, err := positiveParam("size", q.Get("size"))
	if err != nil {
		h.writeErrorDetails(w, "Invalid query", err.Error(), http.StatusBadRequest)
		return
	}
	budget, err := positiveParam("max_budget", q.Get("max_budget"))
	if err != nil {
		h.writeErrorDetails(w, "Invalid query", err.Error(), http.StatusBadRequest)
		return
	}

	key := r.PathValue("key")
	alts, ok := h.cables.Alternatives(key, size, budget)
	if !ok {
		h.writeErrorDetails(w, "Cable not found", fmt.Sprintf("no %gmm² size of %q", size, key), http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, alts)
}

func positiveParam(name, raw string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(name + " must be a number")
	}
	if !(v > 0) || math.IsInf(v, 0) {
		return 0, errors.New(name + " must be greater than zero")
	}
	return v, nil
}
