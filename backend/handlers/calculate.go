// ABOUTME: Calculation endpoints shared by every engine
// ABOUTME: Decodes, validates, memoises and maps engine errors to HTTP status codes

package handlers

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sparkcalc/sparkcalc/backend/middleware"
	"github.com/sparkcalc/sparkcalc/backend/models"
	"github.com/sparkcalc/sparkcalc/backend/services"
)

// calculation is one engine run. input is the prepared input as canonical
// JSON; cached reports whether the result came from the result cache.
type calculation struct {
	input  json.RawMessage
	result any
	cached bool
}

// engine decodes a JSON input, validates it and runs a calculator
type engine func(data []byte) (calculation, error)

// decodeError marks a body that is not valid JSON for the target type
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "invalid JSON: " + e.err.Error() }

func (e *decodeError) Unwrap() error { return e.err }

// bind adapts a typed calculator into an engine
func bind[I any, R any](h *Handler, kind models.CalculationKind, run func(I) (R, error), prepare ...func(*I)) engine {
	return func(data []byte) (calculation, error) {
		var input I
		if err := decodeStrict(data, &input); err != nil {
			return calculation{}, err
		}
		for _, p := range prepare {
			p(&input)
		}
		if err := h.validator.Validate(input); err != nil {
			return calculation{}, err
		}

		canonical, err := json.Marshal(input)
		if err != nil {
			return calculation{}, err
		}
		compute := func() (interface{}, error) {
			return run(input)
		}
		if h.cache == nil {
			result, err := compute()
			return calculation{input: canonical, result: result}, err
		}

		result, cached, err := h.cache.GetOrCompute(cacheKey(kind, canonical), compute)
		if cached {
			h.metrics.CacheHit()
		} else {
			h.metrics.CacheMiss()
		}
		return calculation{input: canonical, result: result, cached: cached}, err
	}
}

func cacheKey(kind models.CalculationKind, canonical []byte) string {
	sum := sha256.Sum256(canonical)
	return "calc:" + string(kind) + ":" + hex.EncodeToString(sum[:])
}

// decodeStrict rejects unknown fields and trailing data
func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &decodeError{err: err}
	}
	if dec.More() {
		return &decodeError{err: errors.New("unexpected data after JSON body")}
	}
	return nil
}

// run executes the engine for kind over data
func (h *Handler) run(kind models.CalculationKind, data []byte) (calculation, error) {
	eng, ok := h.engines[kind]
	if !ok {
		return calculation{}, fmt.Errorf("%w: unknown calculation kind %q", services.ErrInvalidInput, kind)
	}

	calc, err := eng(data)
	h.metrics.Calculation(string(kind), outcome(err))
	if err != nil {
		slog.Debug("Calculation failed", "kind", kind, "error", err)
	}
	return calc, err
}

func outcome(err error) string {
	var ve *services.ValidationError
	var de *decodeError
	switch {
	case err == nil:
		return middleware.OutcomeOK
	case errors.As(err, &ve), errors.As(err, &de):
		return middleware.OutcomeInvalid
	default:
		return middleware.OutcomeRejected
	}
}

// readBody reads a size-limited request body, writing 413 or 400 on failure
func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes()))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeErrorDetails(w, "Request body too large", fmt.Sprintf("limit is %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return nil, false
		}
		h.writeError(w, "Failed to read request body", http.StatusBadRequest)
		return nil, false
	}
	return data, true
}

// Calculate returns the handler for one calculator kind.
func (h *Handler) Calculate(kind models.CalculationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, ok := h.readBody(w, r)
		if !ok {
			return
		}

		calc, err := h.run(kind, data)
		if err != nil {
			h.writeCalculationError(w, err)
			return
		}

		if h.cache != nil {
			if calc.cached {
				w.Header().Set("X-Cache", "HIT")
			} else {
				w.Header().Set("X-Cache", "MISS")
			}
		}
		h.writeJSON(w, http.StatusOK, calc.result)
	}
}

// writeCalculationError maps decode, validation and engine errors to responses
func (h *Handler) writeCalculationError(w http.ResponseWriter, err error) {
	var de *decodeError
	var ve *services.ValidationError
	switch {
	case errors.As(err, &de):
		h.writeErrorDetails(w, "Invalid JSON", de.err.Error(), http.StatusBadRequest)
	case errors.As(err, &ve):
		h.writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Error:   "Validation failed",
			Details: ve.Error(),
			Code:    http.StatusBadRequest,
			Fields:  ve.Fields,
		})
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrNoSuitableSize):
		h.writeErrorDetails(w, "Calculation rejected", err.Error(), http.StatusUnprocessableEntity)
	default:
		slog.Error("Calculation failed", "error", err)
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}
