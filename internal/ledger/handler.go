package ledger

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stockledger/stockledger/internal/shared"
)

// Handler wires HTTP endpoints for stock changes and history.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the ledger handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers stock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/changes", h.handleApplyChange)
	r.Post("/set", h.handleSetQuantity)
	r.Post("/import", h.handleImport)
	r.Get("/{itemID}/history", h.handleHistory)
}

type applyChangeRequest struct {
	ItemID          int64  `json:"itemId" validate:"required,gt=0"`
	ChangeType      string `json:"changeType" validate:"required"`
	QuantityChange  int    `json:"quantityChange" validate:"required"`
	Notes           string `json:"notes"`
	PurchaseOrderID string `json:"purchaseOrderId"`
}

func (h *Handler) handleApplyChange(w http.ResponseWriter, r *http.Request) {
	var req applyChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	input := ChangeInput{
		ItemID: req.ItemID,
		Type:   ChangeType(req.ChangeType),
		Delta:  req.QuantityChange,
		Notes:  req.Notes,
	}
	if req.PurchaseOrderID != "" {
		id, err := uuid.Parse(req.PurchaseOrderID)
		if err != nil {
			http.Error(w, "invalid purchase order id", http.StatusBadRequest)
			return
		}
		input.PurchaseOrderID = &id
	}
	entry, err := h.service.ApplyChange(r.Context(), input)
	if err != nil {
		h.respondErr(w, err, "apply stock change")
		return
	}
	shared.RespondJSON(w, http.StatusCreated, entry)
}

type setQuantityRequest struct {
	ItemID     int64  `json:"itemId" validate:"required,gt=0"`
	Quantity   int    `json:"quantity" validate:"gte=0"`
	ChangeType string `json:"changeType"`
	Notes      string `json:"notes"`
}

func (h *Handler) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	changeType := ChangeType(req.ChangeType)
	if req.ChangeType == "" {
		changeType = ChangeAdjustment
	}
	entry, err := h.service.SetQuantity(r.Context(), req.ItemID, req.Quantity, changeType, req.Notes)
	if err != nil {
		h.respondErr(w, err, "set stock quantity")
		return
	}
	shared.RespondJSON(w, http.StatusCreated, entry)
}

type importRequest struct {
	Items []StockUpdate `json:"items" validate:"required,min=1,dive"`
	Notes string        `json:"notes"`
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	report, err := h.service.ImportStock(r.Context(), req.Items, req.Notes)
	if err != nil {
		h.respondErr(w, err, "import stock")
		return
	}
	shared.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil || itemID <= 0 {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, stats, err := h.service.GetHistory(r.Context(), itemID, limit)
	if err != nil {
		h.respondErr(w, err, "get stock history")
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{
		"history": entries,
		"stats":   stats,
	})
}

func (h *Handler) respondErr(w http.ResponseWriter, err error, op string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidChangeType):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		h.logger.Error(op, slog.Any("error", err))
	}
	shared.RespondError(w, status, err)
}
