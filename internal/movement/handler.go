package movement

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/singleflight"

	"github.com/stockledger/stockledger/internal/shared"
)

// Handler serves movement analysis reads. Identical concurrent requests are
// collapsed into one computation via singleflight, since the analysis is a
// pure function of the ledger.
type Handler struct {
	logger  *slog.Logger
	service *Service
	group   singleflight.Group
}

// NewHandler constructs the movement handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers movement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleAnalyze)
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	windowDays := 30
	if s := q.Get("window_days"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			http.Error(w, "invalid window_days", http.StatusBadRequest)
			return
		}
		windowDays = v
	}
	var itemID int64
	if s := q.Get("item_id"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v <= 0 {
			http.Error(w, "invalid item_id", http.StatusBadRequest)
			return
		}
		itemID = v
	}

	key := fmt.Sprintf("%d:%d", windowDays, itemID)
	result, err, _ := h.group.Do(key, func() (any, error) {
		return h.service.AnalyzeMovement(r.Context(), windowDays, itemID)
	})
	if err != nil {
		h.logger.Error("analyze movement", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, result)
}
