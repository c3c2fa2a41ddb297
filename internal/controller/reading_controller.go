package controller

import (
	"context"
	"errors"
	"net/http"

	"radmon.influxDB/internal/models"
	"radmon.influxDB/internal/service"
	"radmon.influxDB/internal/utils"
)

// ReadingController handles HTTP requests from the radiation monitor.
type ReadingController struct {
	service *service.ReadingService
}

// NewReadingController creates a new ReadingController.
func NewReadingController(service *service.ReadingService) *ReadingController {
	return &ReadingController{
		service: service,
	}
}

// HandleReading ingests the CPM, ACPM and uSV query parameters. Bad input gets a
// 400 with a JSON diagnostic; everything else, sink failures included, gets an
// empty 200 because the firmware ignores the response.
func (c *ReadingController) HandleReading(w http.ResponseWriter, r *http.Request) {
	// The sensor may hang up early; the write should still complete.
	ctx := context.WithoutCancel(r.Context())

	_, err := c.service.Ingest(ctx, r.URL.Query())
	var apiErr models.APIError
	if errors.As(err, &apiErr) {
		utils.RespondWithError(w, apiErr)
		return
	}

	w.WriteHeader(http.StatusOK)
}
