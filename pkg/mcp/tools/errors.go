package tools

import (
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/robwestz/mcp-blcwrtr/pkg/apperrors"
)

// ErrorResponse represents a structured error in tool results. Actionable
// errors are returned as successful tool results so the calling agent sees
// the details instead of an opaque protocol failure.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult creates a tool result containing a structured error.
// Use this for recoverable errors the caller can act on (unknown order,
// illegal transition, stale matrix). System failures still return Go
// errors.
func NewErrorResult(code, message string) *mcp.CallToolResult {
	resp := ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
	}
	jsonBytes, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// NewErrorResultWithDetails creates an error result with additional context.
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	resp := ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
		Details: details,
	}
	jsonBytes, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// domainErrorCode maps the engine's sentinel errors onto tool error codes.
// Empty string means the error is a system failure, not actionable input.
func domainErrorCode(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrConflict):
		return "conflict"
	case errors.Is(err, apperrors.ErrIllegalTransition):
		return "illegal_transition"
	case errors.Is(err, apperrors.ErrDependencyUnavailable):
		return "dependency_unavailable"
	case errors.Is(err, apperrors.ErrOrderLocked):
		return "order_locked"
	case errors.Is(err, apperrors.ErrStaleMatrix):
		return "stale_matrix"
	default:
		return ""
	}
}

// NewDomainErrorResult creates an error result for a recognized domain
// error. Returns nil when the error is a system failure the caller should
// surface as a Go error.
func NewDomainErrorResult(err error) *mcp.CallToolResult {
	code := domainErrorCode(err)
	if code == "" {
		return nil
	}
	return NewErrorResult(code, err.Error())
}
