// Package response writes the JSON envelopes returned by the HTTP API.
package response

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrorResponse is the body of every failed request. RequestID matches the
// X-Request-Id assigned by the router so a client report can be found in the
// server log.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Code      int    `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// SuccessResponse wraps the data of a successful request.
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// JSON encodes data and writes it with the given status. Encoding happens
// before the header is sent, so a value that cannot be encoded still yields
// a clean 500.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	var buf bytes.Buffer
	if data != nil {
		if err := json.NewEncoder(&buf).Encode(data); err != nil {
			http.Error(w, "failed to encode response", http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// Success writes a 200 envelope around data.
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, SuccessResponse{Data: data})
}

// Error writes an error envelope for r with the given status.
func Error(w http.ResponseWriter, r *http.Request, status int, err error) {
	JSON(w, status, ErrorResponse{
		Error:     http.StatusText(status),
		Message:   err.Error(),
		Code:      status,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// BadRequest writes a 400 envelope.
func BadRequest(w http.ResponseWriter, r *http.Request, err error) {
	Error(w, r, http.StatusBadRequest, err)
}
