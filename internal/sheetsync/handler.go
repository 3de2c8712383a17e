package sheetsync

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockledger/stockledger/internal/shared"
)

// Handler wires the sync endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the sheetsync handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers sync routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/run", h.handleRun)
	r.Get("/logs", h.handleLogs)
	r.Get("/config", h.handleGetConfig)
	r.Put("/config", h.handlePutConfig)
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.SyncNow(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, ErrSyncInProgress):
			shared.RespondError(w, http.StatusConflict, err)
		case errors.Is(err, ErrNotConfigured):
			shared.RespondError(w, http.StatusUnprocessableEntity, err)
		default:
			h.logger.Error("sync run", slog.Any("error", err))
			shared.RespondError(w, http.StatusInternalServerError, err)
		}
		return
	}
	shared.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	logs, err := h.service.ListLogs(r.Context(), limit)
	if err != nil {
		h.logger.Error("list sync logs", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, logs)
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.GetConfig(r.Context())
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			shared.RespondError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("get sheet config", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, cfg)
}

type configRequest struct {
	SpreadsheetID string `json:"spreadsheetId" validate:"required"`
	SheetName     string `json:"sheetName" validate:"required"`
	Active        bool   `json:"active"`
}

func (h *Handler) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cfg := SheetConfig{SpreadsheetID: req.SpreadsheetID, SheetName: req.SheetName, Active: req.Active}
	if err := h.service.UpdateConfig(r.Context(), cfg); err != nil {
		h.logger.Error("update sheet config", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, cfg)
}
