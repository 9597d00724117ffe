package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	Success(w, map[string]int{"lands": 17})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"lands":17}}`, w.Body.String())
}

func TestJSON_UnencodableValue(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, map[string]interface{}{"bad": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestError_CarriesRequestID(t *testing.T) {
	var captured ErrorResponse
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Error(w, r, http.StatusUnprocessableEntity, errors.New("too many lands"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&captured))
	assert.Equal(t, "Unprocessable Entity", captured.Error)
	assert.Equal(t, "too many lands", captured.Message)
	assert.Equal(t, http.StatusUnprocessableEntity, captured.Code)
	assert.NotEmpty(t, captured.RequestID)
}

func TestBadRequest_WithoutRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	BadRequest(w, httptest.NewRequest(http.MethodPost, "/", nil), errors.New("invalid decklist line"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, w.Body.String(), "request_id")
}
