package routes

import (
	"github.com/gorilla/mux"
	"radmon.influxDB/internal/controller"
)

// NewRouter sends every request, whatever its method or path, to the reading handler.
func NewRouter(controller *controller.ReadingController) *mux.Router {
	router := mux.NewRouter()
	router.SkipClean(true)
	router.PathPrefix("/").HandlerFunc(controller.HandleReading)
	return router
}
