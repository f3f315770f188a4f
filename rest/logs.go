package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/RKrahl/photoidx/logging"
)

// LogsHandler serves the most recent log entries, newest first.
type LogsHandler struct {
	logs logging.LogsExporter
}

func NewLogsHandler(logs logging.LogsExporter) LogsHandler {
	return LogsHandler{logs: logs}
}

func (l LogsHandler) InitRoutes(r *mux.Router) {
	r.Handle("/logs", WithMiddleWares(l, "logs")).Methods("GET")
}

func (l LogsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if err := l.logs.Export(w, true); err != nil {
		logging.From(r.Context()).Warn("Failed to export logs", zap.Error(err))
	}
}
