package summary

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stockledger/stockledger/internal/shared"
)

// Handler serves the daily summary read endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
	loc     *time.Location
	now     func() time.Time
}

// NewHandler constructs the summary handler. loc is the business timezone
// the daily window is computed in.
func NewHandler(logger *slog.Logger, service *Service, loc *time.Location) *Handler {
	return &Handler{logger: logger, service: service, loc: loc, now: time.Now}
}

// MountRoutes registers summary routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/daily", h.handleDaily)
}

func (h *Handler) handleDaily(w http.ResponseWriter, r *http.Request) {
	date := h.now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, h.loc)
		if err != nil {
			http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = parsed
	}

	result, err := h.service.Summarize(r.Context(), date, h.loc)
	if err != nil {
		h.logger.Error("daily summary", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, result)
}
