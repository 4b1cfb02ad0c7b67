package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, statusCode)
//  3. Error is mapped via mapError to get a user-friendly message
//  4. Technical error + context is logged with request ID for correlation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// userMessage is a mapped, client-safe description of a failure.
type userMessage struct {
	Code    string
	Message string
	Action  string
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side and returns a JSON response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	msg := mapError(err)

	// Get request ID for correlation
	requestID := middleware.GetReqID(r.Context())

	// Log the technical error with context
	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", msg.Code,
		"request_id", requestID,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// mapError converts an internal error into a client-safe message with a
// support code. Unknown errors get a generic message so internals never leak.
func mapError(err error) userMessage {
	if errors.Is(err, errTooManyRuns) {
		return userMessage{
			Code:    "RUN001",
			Message: "Too many budgets are being validated right now.",
			Action:  "Wait a few seconds and retry.",
		}
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "request body too large"):
		return userMessage{
			Code:    "FILE001",
			Message: "The uploaded file exceeds the maximum allowed size.",
			Action:  "Split the budget into smaller files and upload again.",
		}
	case strings.Contains(lower, "no file"), strings.Contains(lower, "missing form"):
		return userMessage{
			Code:    "FILE002",
			Message: "No budget file was found in the request.",
			Action:  "Attach the file under the 'file' form field or send it as the request body.",
		}
	case strings.Contains(lower, "invalid form"), strings.Contains(lower, "multipart"):
		return userMessage{
			Code:    "FILE003",
			Message: "The upload form could not be parsed.",
			Action:  "Use multipart/form-data with a 'file' field, or send the raw file as the body.",
		}
	}

	return userMessage{
		Code:    "SRV001",
		Message: "The request could not be processed.",
		Action:  "Retry, and contact support with the code if the problem persists.",
	}
}
