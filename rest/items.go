package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/RKrahl/photoidx/filter"
	"github.com/RKrahl/photoidx/library"
	"github.com/RKrahl/photoidx/logging"
	"github.com/RKrahl/photoidx/rest/cursor"
	"github.com/RKrahl/photoidx/rest/views"
	"github.com/RKrahl/photoidx/stats"
)

// criteriaFrom builds the filter from the query parameters tags,
// selected, date, gpspos, gpsradius and file.
func (a *App) criteriaFrom(q url.Values) (filter.Criteria, error) {
	opts := filter.Options{
		Date:      q.Get("date"),
		GPSPos:    q.Get("gpspos"),
		GPSRadius: a.radius,
		Files:     q["file"],
	}
	if _, present := q["tags"]; present {
		tags := q.Get("tags")
		opts.Tags = &tags
	}
	if s := q.Get("selected"); s != "" {
		selected, err := strconv.ParseBool(s)
		if err != nil {
			return filter.Criteria{}, fmt.Errorf("%w: selected=%q", filter.ErrInvalidFormat, s)
		}
		opts.Selected = &selected
	}
	if s := q.Get("gpsradius"); s != "" {
		radius, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return filter.Criteria{}, fmt.Errorf("%w: gpsradius=%q", filter.ErrInvalidFormat, s)
		}
		if radius <= 0 {
			return filter.Criteria{}, fmt.Errorf("%w: gpsradius must be positive, got %g", filter.ErrInvalidFormat, radius)
		}
		opts.GPSRadius = radius
	}
	return opts.Criteria()
}

// filtered opens the index and passes the items matching the query to f.
func (a *App) filtered(w http.ResponseWriter, r *http.Request, f func(context.Context, *library.Index, filter.Criteria)) {
	criteria, err := a.criteriaFrom(r.URL.Query())
	if err != nil {
		Respond(r).WithError(w, http.StatusBadRequest, err)
		return
	}
	a.withIndex(w, r, func(ctx context.Context, idx *library.Index) {
		f(ctx, idx, criteria)
	})
}

func (a *App) getItems(w http.ResponseWriter, r *http.Request) {
	a.filtered(w, r, func(ctx context.Context, idx *library.Index, criteria filter.Criteria) {
		c := cursor.DecodeFromRequest(r)
		items, hasMore := cursor.Slice(criteria.Apply(idx.Items()), c)
		if err := idx.Err(); err != nil {
			respondWithIndexError(ctx, w, r, err)
			return
		}
		data := make([]views.Item, len(items))
		for i, item := range items {
			data[i] = views.ItemFrom(item)
		}
		Respond(r).WithJSON(w, http.StatusOK, cursor.PageFor(cursor.LinkFor(r.URL), data, c, hasMore))
	})
}

func (a *App) getItem(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]
	a.withIndex(w, r, func(ctx context.Context, idx *library.Index) {
		item, err := idx.Lookup(filename)
		if err != nil {
			respondWithIndexError(ctx, w, r, err)
			return
		}
		Respond(r).WithJSON(w, http.StatusOK, views.ItemFrom(item))
	})
}

func (a *App) getStats(w http.ResponseWriter, r *http.Request) {
	a.filtered(w, r, func(ctx context.Context, idx *library.Index, criteria filter.Criteria) {
		s := stats.Collect(criteria.Apply(idx.Items()))
		if err := idx.Err(); err != nil {
			respondWithIndexError(ctx, w, r, err)
			return
		}
		Respond(r).WithJSON(w, http.StatusOK, s)
	})
}

func (a *App) getTags(w http.ResponseWriter, r *http.Request) {
	a.filtered(w, r, func(ctx context.Context, idx *library.Index, criteria filter.Criteria) {
		s := stats.Collect(criteria.Apply(idx.Items()))
		if err := idx.Err(); err != nil {
			respondWithIndexError(ctx, w, r, err)
			return
		}
		tags := make([]views.TagCount, 0, s.ByTag.Len())
		s.ByTag.Scan(func(tag string, count int) bool {
			tags = append(tags, views.TagCount{Tag: tag, Count: count})
			return true
		})
		Respond(r).WithJSON(w, http.StatusOK, cursor.Unpaged(tags))
	})
}

func respondWithIndexError(ctx context.Context, w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, library.ErrNotFound) {
		Respond(r).WithError(w, http.StatusNotFound, err)
		return
	}
	logging.From(ctx).Error("Failed to read index", zap.Error(err))
	Respond(r).WithError(w, http.StatusInternalServerError, err)
}
