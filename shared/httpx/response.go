package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// API error codes returned in { "success": false, "error": "...", "code": "..." }.
const (
	CodeInvalidRequest      = "invalid_request"
	CodeValidationFailed    = "validation_failed"
	CodeUnauthorized        = "unauthorized"
	CodeForbidden           = "forbidden"
	CodeNotFound            = "not_found"
	CodeConflict            = "conflict"
	CodePlanUpgradeRequired = "plan_upgrade_required"
	CodeRateLimited         = "rate_limited"
	CodeInternal            = "internal_error"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

var ErrEmptyBody = errors.New("request body is empty")

// Envelope is the response shape shared by every endpoint.
type Envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a success envelope. data may be nil.
func OK(w http.ResponseWriter, code int, data any) {
	WriteJSON(w, code, Envelope{Success: true, Data: data})
}

// Error writes a failure envelope. If errCode is empty it is derived from code.
func Error(w http.ResponseWriter, code int, errCode, message string) {
	if errCode == "" {
		errCode = defaultErrCode(code)
	}
	WriteJSON(w, code, Envelope{Success: false, Error: message, Code: errCode})
}

// ValidationError writes a 400 with per-field messages.
func ValidationError(w http.ResponseWriter, fields map[string]string) {
	WriteJSON(w, http.StatusBadRequest, Envelope{
		Success: false,
		Error:   "validation failed",
		Code:    CodeValidationFailed,
		Fields:  fields,
	})
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}

	return nil
}

func defaultErrCode(httpCode int) string {
	switch httpCode {
	case http.StatusBadRequest:
		return CodeInvalidRequest
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusPaymentRequired:
		return CodePlanUpgradeRequired
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusTooManyRequests:
		return CodeRateLimited
	default:
		return CodeInternal
	}
}
