package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteProblem_FillsDefaults(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteProblem(rec, Problem{Status: http.StatusTooManyRequests, Code: "X"})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var p Problem
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	assert.Equal(t, "about:blank", p.Type)
	assert.Equal(t, "Too Many Requests", p.Title)
	assert.Equal(t, "X", p.Code)
}

func TestJSON_WrapsData(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"data":{"n":1}}`, rec.Body.String())
}

func TestHandleError(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, ErrServiceUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"service temporarily unavailable"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	HandleError(rec, errors.New("raw"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
