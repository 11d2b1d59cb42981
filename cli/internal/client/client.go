// ABOUTME: HTTP client for the SparkCalc API
// ABOUTME: Wraps API calls with proper error handling for CLI usage

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sparkcalc/sparkcalc/backend/cabledb"
	"github.com/sparkcalc/sparkcalc/backend/models"
)

// Client is the API client for the SparkCalc backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client with the given base URL
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Message    string
	Details    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	var sb strings.Builder
	sb.WriteString("backend error: ")
	sb.WriteString(e.Message)
	if e.Details != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Details)
		sb.WriteString(")")
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "\n  %s: %s", k, e.Fields[k])
	}
	return sb.String()
}

// IsStatus reports whether err is an APIError with the given status code
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// Health calls GET /api/v1/health
func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	var health models.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Cables calls GET /api/v1/cables
func (c *Client) Cables(ctx context.Context) ([]cabledb.Cable, error) {
	var cables []cabledb.Cable
	if err := c.do(ctx, http.MethodGet, "/api/v1/cables", nil, &cables); err != nil {
		return nil, err
	}
	return cables, nil
}

// CablesByMethod calls GET /api/v1/cables?method=, narrowed to cables with a
// size rated for at least minCurrent amps when minCurrent is positive
func (c *Client) CablesByMethod(ctx context.Context, method models.InstallationMethod, minCurrent float64) ([]cabledb.Cable, error) {
	q := url.Values{"method": {string(method)}}
	if minCurrent > 0 {
		q.Set("min_current", strconv.FormatFloat(minCurrent, 'f', -1, 64))
	}

	var cables []cabledb.Cable
	if err := c.do(ctx, http.MethodGet, "/api/v1/cables?"+q.Encode(), nil, &cables); err != nil {
		return nil, err
	}
	return cables, nil
}

// CableAlternatives calls GET /api/v1/cables/{key}/alternatives
func (c *Client) CableAlternatives(ctx context.Context, key string, sizeMm2, maxBudget float64) ([]cabledb.Alternative, error) {
	q := url.Values{
		"size":       {strconv.FormatFloat(sizeMm2, 'f', -1, 64)},
		"max_budget": {strconv.FormatFloat(maxBudget, 'f', -1, 64)},
	}

	var alts []cabledb.Alternative
	path := "/api/v1/cables/" + url.PathEscape(key) + "/alternatives?" + q.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &alts); err != nil {
		return nil, err
	}
	return alts, nil
}

// Calculate posts input to the calculator for kind and decodes the result into out
func (c *Client) Calculate(ctx context.Context, kind models.CalculationKind, input, out any) error {
	return c.do(ctx, http.MethodPost, "/api/v1/calculate/"+string(kind), input, out)
}

// SaveCalculation calls POST /api/v1/calculations
func (c *Client) SaveCalculation(ctx context.Context, name string, kind models.CalculationKind, input any) (*models.SavedCalculation, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input: %w", err)
	}

	req := models.SaveCalculationRequest{Name: name, Kind: kind, Input: raw}
	var saved models.SavedCalculation
	if err := c.do(ctx, http.MethodPost, "/api/v1/calculations", req, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListCalculations calls GET /api/v1/calculations, optionally filtered by kind
func (c *Client) ListCalculations(ctx context.Context, kind models.CalculationKind) ([]models.SavedCalculation, error) {
	path := "/api/v1/calculations"
	if kind != "" {
		path += "?kind=" + url.QueryEscape(string(kind))
	}

	var calcs []models.SavedCalculation
	if err := c.do(ctx, http.MethodGet, path, nil, &calcs); err != nil {
		return nil, err
	}
	return calcs, nil
}

// DeleteCalculation calls DELETE /api/v1/calculations/{id}
func (c *Client) DeleteCalculation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/calculations/"+url.PathEscape(id), nil, nil)
}

// do sends a JSON request and decodes a JSON response into out when out is non-nil
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal input: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled {
		return fmt.Errorf("request canceled")
	}
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("request timed out")
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	var errResp models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error == "" {
		return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("status %d", resp.StatusCode)}
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    errResp.Error,
		Details:    errResp.Details,
		Fields:     errResp.Fields,
	}
}
