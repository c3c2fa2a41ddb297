package middleware

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapRecoversPanics(t *testing.T) {
	var logs, access bytes.Buffer
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("sensor sent garbage")
	})
	h := Wrap(panicky, log.New(&logs, "", 0), &access)

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?CPM=1", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), "ERROR:")
	assert.Contains(t, logs.String(), "sensor sent garbage")
	assert.Contains(t, access.String(), "GET /?CPM=1")
}

func TestWrapPassesThrough(t *testing.T) {
	var logs bytes.Buffer
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := Wrap(ok, log.New(&logs, "", 0), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, logs.String())
}
