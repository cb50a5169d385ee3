package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "pipeledger/internal/errors"
	"pipeledger/internal/services"
)

// LedgerHandler serves the entity tables.
type LedgerHandler struct {
	service      LedgerServiceInterface
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(service LedgerServiceInterface, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *LedgerHandler {
	return &LedgerHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "ledger")),
		errorHandler: errorHandler,
	}
}

// Routes returns the entity routes
func (h *LedgerHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListEntities)
	r.Route("/{entity}", func(r chi.Router) {
		r.Get("/", h.GetEntity)
		r.Get("/rows", h.GetRows)
		r.Get("/freshness", h.GetFreshness)
	})
	return r
}

// ListEntities handles GET /api/entities
func (h *LedgerHandler) ListEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := h.service.Entities(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"data":  entities,
		"count": len(entities),
	})
}

// GetEntity handles GET /api/entities/{entity}
func (h *LedgerHandler) GetEntity(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Entity(r.Context(), chi.URLParam(r, "entity"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// GetRows handles GET /api/entities/{entity}/rows
func (h *LedgerHandler) GetRows(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")

	var (
		q   services.RowQuery
		err error
	)
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

	rows, err := h.service.Rows(r.Context(), entity, q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "rows served",
		slog.String("entity", entity),
		slog.Int("count", len(rows)))

	render.JSON(w, r, map[string]interface{}{
		"entity": entity,
		"data":   rows,
		"count":  len(rows),
	})
}

// GetFreshness handles GET /api/entities/{entity}/freshness
func (h *LedgerHandler) GetFreshness(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	records, err := h.service.Freshness(r.Context(), entity)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"entity": entity,
		"data":   records,
		"count":  len(records),
	})
}
