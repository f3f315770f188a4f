// Package rest serves a read-only JSON view of one photo index.
package rest

import (
	"context"
	"errors"
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/RKrahl/photoidx/library"
	"github.com/RKrahl/photoidx/logging"
)

// App serves the index of a photo directory. The index is read per
// request under a shared lock and released afterwards, so command line
// tools can update it while the server runs.
type App struct {
	dir    string
	radius float64
}

func NewApp(dir string, defaultRadius float64) *App {
	return &App{dir: dir, radius: defaultRadius}
}

func (a *App) InitRoutes(r *mux.Router) {
	r.Handle("/items", WithMiddleWares(http.HandlerFunc(a.getItems), "items")).Methods("GET")
	r.Handle("/items/{filename:.+}", WithMiddleWares(http.HandlerFunc(a.getItem), "item")).Methods("GET")
	r.Handle("/stats", WithMiddleWares(http.HandlerFunc(a.getStats), "stats")).Methods("GET")
	r.Handle("/tags", WithMiddleWares(http.HandlerFunc(a.getTags), "tags")).Methods("GET")
}

// withIndex opens the index and passes it to f. Failures to open are
// answered here.
func (a *App) withIndex(w http.ResponseWriter, r *http.Request, f func(context.Context, *library.Index)) {
	ctx := r.Context()
	idx, err := library.Open(ctx, a.dir)
	if err != nil {
		status, reason := openFailure(err)
		indexOpenFailures.WithLabelValues(reason).Inc()
		if status == http.StatusInternalServerError {
			logging.From(ctx).Error("Failed to open index", zap.String("dir", a.dir), zap.Error(err))
		}
		if status == http.StatusServiceUnavailable {
			w.Header().Set("Retry-After", "1")
		}
		Respond(r).WithError(w, status, err)
		return
	}
	defer idx.Close()
	f(ctx, idx)
}

func openFailure(err error) (int, string) {
	switch {
	case errors.Is(err, library.ErrAlreadyLocked):
		return http.StatusServiceUnavailable, "locked"
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound, "missing"
	case errors.Is(err, library.ErrInvalidRecord):
		return http.StatusInternalServerError, "invalid"
	default:
		return http.StatusInternalServerError, "error"
	}
}
