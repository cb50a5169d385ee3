package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "pipeledger/internal/errors"
	"pipeledger/internal/services"
)

// SpreadHandler serves spread computations.
type SpreadHandler struct {
	service      SpreadServiceInterface
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewSpreadHandler creates a new spread handler
func NewSpreadHandler(service SpreadServiceInterface, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *SpreadHandler {
	return &SpreadHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "spread")),
		errorHandler: errorHandler,
	}
}

// Routes returns the spread routes
func (h *SpreadHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/difference", h.GetDifference)
	r.Get("/average", h.GetAverage)
	r.Get("/transit", h.GetTransit)
	return r
}

// GetDifference handles GET /api/spreads/difference
func (h *SpreadHandler) GetDifference(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := services.DifferenceQuery{
		A:       query.Get("a"),
		B:       query.Get("b"),
		Column:  query.Get("column"),
		ColumnB: query.Get("column_b"),
		Key:     query.Get("key"),
	}
	var err error
	if q.From, err = dateParam(r, "from"); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if q.To, err = dateParam(r, "to"); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	includeSynthetic, err := boolParam(r, "synthetic", true)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	q.SkipSynthetic = !includeSynthetic

	points, err := h.service.Difference(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"a":      q.A,
		"b":      q.B,
		"column": q.Column,
		"data":   points,
		"count":  len(points),
	})
}

// GetAverage handles GET /api/spreads/average
func (h *SpreadHandler) GetAverage(w http.ResponseWriter, r *http.Request) {
	years, err := yearsParam(r, "years")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	includeSynthetic, err := boolParam(r, "synthetic", true)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	entity, column := r.URL.Query().Get("entity"), r.URL.Query().Get("column")

	points, err := h.service.Average(r.Context(), entity, column, years, !includeSynthetic)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"entity": entity,
		"column": column,
		"years":  years,
		"data":   points,
		"count":  len(points),
	})
}

// GetTransit handles GET /api/spreads/transit
func (h *SpreadHandler) GetTransit(w http.ResponseWriter, r *http.Request) {
	on, err := dateParam(r, "on")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	origin, destination := r.URL.Query().Get("origin"), r.URL.Query().Get("destination")

	days, err := h.service.Transit(r.Context(), origin, destination, on)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"origin":      origin,
		"destination": destination,
		"on":          on,
		"data":        days,
		"count":       len(days),
	})
}
