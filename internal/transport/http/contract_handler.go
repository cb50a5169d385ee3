package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "pipeledger/internal/errors"
)

// ContractHandler serves contract-month and nomination calendar lookups.
type ContractHandler struct {
	service      ContractServiceInterface
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewContractHandler creates a new contract handler
func NewContractHandler(service ContractServiceInterface, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *ContractHandler {
	return &ContractHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "contract")),
		errorHandler: errorHandler,
	}
}

// GetContract handles GET /api/contracts/{code}
func (h *ContractHandler) GetContract(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year", 0)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	info, err := h.service.Contract(r.Context(), chi.URLParam(r, "code"), year)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}

// GetDeadline handles GET /api/calendar/deadline
func (h *ContractHandler) GetDeadline(w http.ResponseWriter, r *http.Request) {
	start, err := dateParam(r, "cycle_start")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	lead, err := intParam(r, "lead", 0)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	d, err := h.service.NominationDeadline(r.Context(), start, lead)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, d)
}
