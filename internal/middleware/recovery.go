package middleware

import (
	"io"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
)

// Wrap installs panic recovery around next so that one bad request cannot take
// down the listener. When accessLog is non-nil every request is also written to
// it in Apache common log format.
func Wrap(next http.Handler, logger *log.Logger, accessLog io.Writer) http.Handler {
	h := handlers.RecoveryHandler(
		handlers.RecoveryLogger(errorLogger{logger}),
		handlers.PrintRecoveryStack(false),
	)(next)
	if accessLog != nil {
		h = handlers.LoggingHandler(accessLog, h)
	}
	return h
}

// errorLogger prefixes recovered panics the same way ingestion failures are logged.
type errorLogger struct {
	logger *log.Logger
}

func (l errorLogger) Println(v ...interface{}) {
	l.logger.Println(append([]interface{}{"ERROR:"}, v...)...)
}
