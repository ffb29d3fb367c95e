package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	w := doRequest(t, http.HandlerFunc(NotFound), "DELETE", "/transactions/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"Route not found"}`, w.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	w := doRequest(t, http.HandlerFunc(MethodNotAllowed), "PATCH", "/transactions", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"Method not allowed"}`, w.Body.String())
}
