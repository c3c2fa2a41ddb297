package controller

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"radmon.influxDB/internal/config"
	"radmon.influxDB/internal/models"
	"radmon.influxDB/internal/repository"
	"radmon.influxDB/internal/service"
)

func newFileController(t *testing.T, path string) (*ReadingController, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.Sink = config.SinkFile
	cfg.FilePath = path
	svc := service.NewReadingService(&cfg, repository.NewFileRepository(path), log.New(&buf, "", 0), nil)
	return NewReadingController(svc), &buf
}

func TestHandleReadingAppendsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radiation.csv")
	ctrl, logs := newFileController(t, path)

	rec := httptest.NewRecorder()
	ctrl.HandleReading(rec, httptest.NewRequest(http.MethodGet, "/?CPM=10.5&ACPM=12.3&uSV=0.05", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d+,10.5,12.3,0.05\n$`), string(data))
	assert.Regexp(t, regexp.MustCompile(`^REQUEST: \d+,10.5,12.3,0.05\n$`), logs.String())
}

func TestHandleReadingBadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radiation.csv")
	ctrl, logs := newFileController(t, path)

	rec := httptest.NewRecorder()
	ctrl.HandleReading(rec, httptest.NewRequest(http.MethodGet, "/?CPM=10.5&ACPM=oops&uSV=0.05", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body models.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, models.ErrorCodeInvalidFormat, body.Code)
	assert.Contains(t, body.Message, "ACPM")

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "nothing should be written for a rejected request")
	assert.True(t, strings.HasPrefix(logs.String(), "ERROR: "))
}

func TestHandleReadingSinkFailureStillOK(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", "radiation.csv")
	ctrl, logs := newFileController(t, path)

	rec := httptest.NewRecorder()
	ctrl.HandleReading(rec, httptest.NewRequest(http.MethodPost, "/anything?CPM=1&ACPM=2&uSV=3", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.True(t, strings.HasPrefix(logs.String(), "ERROR: "))
	assert.Contains(t, logs.String(), path)
}
