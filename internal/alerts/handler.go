package alerts

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockledger/stockledger/internal/shared"
)

// Handler wires HTTP endpoints for reorder alerts and settings.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the alerts handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers alert routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleCompute)
	r.Get("/settings", h.handleGetSettings)
	r.Put("/settings", h.handleUpdateSettings)
}

func (h *Handler) handleCompute(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.ComputeAlerts(r.Context())
	if err != nil {
		h.logger.Error("compute alerts", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.GetSettings(r.Context())
	if err != nil {
		h.logger.Error("get alert settings", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, settings)
}

type settingsRequest struct {
	LowStockThreshold         int  `json:"lowStockThreshold" validate:"required,gt=0"`
	CriticalStockThreshold    int  `json:"criticalStockThreshold" validate:"gte=0"`
	DefaultReorderQuantity    int  `json:"defaultReorderQuantity" validate:"required,gt=0"`
	EmailNotificationsEnabled bool `json:"emailNotificationsEnabled"`
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	settings := Settings{
		LowStockThreshold:         req.LowStockThreshold,
		CriticalStockThreshold:    req.CriticalStockThreshold,
		DefaultReorderQuantity:    req.DefaultReorderQuantity,
		EmailNotificationsEnabled: req.EmailNotificationsEnabled,
	}
	if err := h.service.UpdateSettings(r.Context(), settings); err != nil {
		if errors.Is(err, ErrInvalidThresholds) {
			shared.RespondError(w, http.StatusUnprocessableEntity, err)
			return
		}
		h.logger.Error("update alert settings", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, settings)
}
