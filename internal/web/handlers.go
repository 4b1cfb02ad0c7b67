package web

// handlers.go contains the HTTP handlers for the validation API.
//
// Budgets can be submitted two ways:
//   - multipart/form-data with the file under the "file" field
//   - the raw file as the request body
//
// Engine settings may be overridden per request via query parameters:
// decimals, decimal_separator, currency_symbol, validate_negative.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/budget/internal/config"
	"github.com/JonMunkholm/budget/internal/engine"
	"github.com/JonMunkholm/budget/internal/logging"
	"github.com/google/uuid"
)

// ValidateResponse is the JSON body returned by the validate endpoint.
type ValidateResponse struct {
	InvocationID string `json:"invocation_id"`
	Filename     string `json:"filename,omitempty"`

	// OK is false when the result contains fatal or error-severity entries.
	OK bool `json:"ok"`

	Rows            []engine.LineRow         `json:"rows"`
	Errors          []engine.ValidationError `json:"errors"`
	Totals          engine.Totals            `json:"totals"`
	FormattedTotals engine.FormattedTotals   `json:"formatted_totals"`
	Stats           engine.Stats             `json:"stats"`
	Inconsistencies []engine.Inconsistency   `json:"inconsistencies,omitempty"`
}

// TreeResponse is the JSON body returned by the tree endpoint.
type TreeResponse struct {
	InvocationID string `json:"invocation_id"`
	Filename     string `json:"filename,omitempty"`

	OK bool `json:"ok"`

	Tree   []*engine.Node           `json:"tree"`
	Errors []engine.ValidationError `json:"errors"`
	Totals engine.Totals            `json:"totals"`
}

// handleHealthz reports service liveness.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleQueueStatus returns the current state of the run limiter.
// Used for monitoring and to check if the system can accept more runs.
func (s *Server) handleQueueStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.limiter.Status())
}

// handleValidate runs the full pipeline and returns rows, errors, totals,
// and diagnostics. Responds 422 when the input could not be parsed at all.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	s.runValidation(w, r, func(w http.ResponseWriter, filename string, result engine.Result, cfg engine.Config) {
		resp := ValidateResponse{
			InvocationID:    uuid.NewString(),
			Filename:        filename,
			OK:              !result.HasBlocking(),
			Rows:            result.Rows,
			Errors:          result.Errors,
			Totals:          result.Totals,
			FormattedTotals: result.Totals.Format(cfg),
			Stats:           result.Stats,
			Inconsistencies: result.Inconsistencies,
		}
		if hasFatal(result) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
		}
		writeJSON(w, resp)
	})
}

// handleTree runs the pipeline and returns the nested hierarchy instead of
// the flat row list.
func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	s.runValidation(w, r, func(w http.ResponseWriter, filename string, result engine.Result, cfg engine.Config) {
		resp := TreeResponse{
			InvocationID: uuid.NewString(),
			Filename:     filename,
			OK:           !result.HasBlocking(),
			Tree:         engine.BuildTree(result.Rows),
			Errors:       result.Errors,
			Totals:       result.Totals,
		}
		if resp.Tree == nil {
			resp.Tree = []*engine.Node{}
		}
		if hasFatal(result) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
		}
		writeJSON(w, resp)
	})
}

// runValidation handles the shared request plumbing: slot acquisition, body
// extraction, engine configuration, and the pipeline run itself.
func (s *Server) runValidation(w http.ResponseWriter, r *http.Request, respond func(http.ResponseWriter, string, engine.Result, engine.Config)) {
	// Bound the whole run, slot wait included, so a slow upload cannot hold
	// a validation slot past the configured upload timeout.
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
	defer cancel()
	r = r.WithContext(ctx)

	if err := s.limiter.Acquire(ctx); err != nil {
		status := http.StatusRequestTimeout
		if errors.Is(err, errTooManyRuns) {
			status = http.StatusTooManyRequests
		}
		s.respondError(w, r, err, status)
		return
	}
	defer s.limiter.Release()

	file, filename, err := s.budgetFile(w, r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	defer file.Close()

	cfg := s.engineConfig(r)
	result := engine.Process(file, cfg)

	logger := logging.FromContext(r.Context())
	logger.Info("validation completed",
		"filename", filename,
		"rows", len(result.Rows),
		"errors", len(result.Errors),
		"blocking", result.HasBlocking(),
	)

	respond(w, filename, result, cfg)
}

// budgetFile extracts the uploaded budget from the request, either from a
// multipart form or the raw body. The returned reader is size-capped.
func (s *Server) budgetFile(w http.ResponseWriter, r *http.Request) (io.ReadCloser, string, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxSize); err != nil {
			return nil, "", fmt.Errorf("invalid form: %w", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", fmt.Errorf("no file provided: %w", err)
		}
		return file, header.Filename, nil
	}

	return r.Body, r.URL.Query().Get("filename"), nil
}

// engineConfig builds the engine configuration for one request, starting
// from the server defaults and applying query parameter overrides.
func (s *Server) engineConfig(r *http.Request) engine.Config {
	cfg := engineDefaults(s.cfg.Engine)

	q := r.URL.Query()
	if v := q.Get("decimals"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 6 {
			cfg.Decimals = n
		}
	}
	if v := q.Get("decimal_separator"); v != "" {
		switch strings.ToLower(v) {
		case "comma":
			cfg.DecimalSeparator = engine.SeparatorComma
		case "dot":
			cfg.DecimalSeparator = engine.SeparatorDot
		}
	}
	if v := q.Get("currency_symbol"); v != "" {
		cfg.CurrencySymbol = v
	}
	if v := q.Get("validate_negative"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ValidateNegative = b
		}
	}

	return cfg
}

// engineDefaults converts the application configuration into an engine
// configuration.
func engineDefaults(c config.EngineConfig) engine.Config {
	cfg := engine.Config{
		Decimals:         c.Decimals,
		CurrencySymbol:   c.CurrencySymbol,
		DecimalSeparator: engine.SeparatorDot,
		ValidateNegative: c.ValidateNegative,
	}
	if strings.EqualFold(c.DecimalSeparator, "comma") {
		cfg.DecimalSeparator = engine.SeparatorComma
	}
	return cfg
}

// hasFatal reports whether the result contains a fatal parse error.
func hasFatal(result engine.Result) bool {
	for _, e := range result.Errors {
		if e.Severity == engine.SeverityFatal {
			return true
		}
	}
	return false
}
