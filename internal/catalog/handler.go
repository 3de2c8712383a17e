package catalog

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockledger/stockledger/internal/shared"
)

// Handler wires the item master-data endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the catalog handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers item routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Post("/bulk", h.handleBulkCreate)
	r.Get("/low-stock", h.handleLowStock)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
	r.Get("/{id}/price-history", h.handlePriceHistory)
}

type itemResponse struct {
	ID             int64         `json:"id"`
	ItemCode       string        `json:"itemCode"`
	Name           string        `json:"name"`
	Category       Category      `json:"category"`
	PurchasePrice  *shared.Money `json:"purchasePrice"`
	WholesalePrice *shared.Money `json:"wholesalePrice"`
	RetailPrice    *shared.Money `json:"retailPrice"`
	OpeningStock   int           `json:"openingStock"`
	AvailableQty   int           `json:"availableQty"`
	LastSoldAt     *time.Time    `json:"lastSoldDate,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

func toResponse(item Item) itemResponse {
	return itemResponse{
		ID:             item.ID,
		ItemCode:       item.ItemCode,
		Name:           item.Name,
		Category:       item.Category,
		PurchasePrice:  item.PurchasePrice,
		WholesalePrice: item.WholesalePrice,
		RetailPrice:    item.RetailPrice,
		OpeningStock:   item.OpeningStock,
		AvailableQty:   item.AvailableQty,
		LastSoldAt:     item.LastSoldAt,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}

func toResponses(items []Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toResponse(item))
	}
	return out
}

type itemRequest struct {
	ItemCode       string        `json:"itemCode" validate:"required"`
	Name           string        `json:"name" validate:"required"`
	Category       Category      `json:"category" validate:"required"`
	PurchasePrice  *shared.Money `json:"purchasePrice"`
	WholesalePrice *shared.Money `json:"wholesalePrice"`
	RetailPrice    *shared.Money `json:"retailPrice"`
	OpeningStock   int           `json:"openingStock" validate:"gte=0"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list items", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toResponses(items))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, err, "get item")
		return
	}
	shared.RespondJSON(w, http.StatusOK, toResponse(item))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeItem(w, r)
	if !ok {
		return
	}
	item, err := h.service.Create(r.Context(), CreateInput{
		ItemCode:       req.ItemCode,
		Name:           req.Name,
		Category:       req.Category,
		PurchasePrice:  req.PurchasePrice,
		WholesalePrice: req.WholesalePrice,
		RetailPrice:    req.RetailPrice,
		OpeningStock:   req.OpeningStock,
	})
	if err != nil {
		h.respondErr(w, err, "create item")
		return
	}
	shared.RespondJSON(w, http.StatusCreated, toResponse(item))
}

func (h *Handler) handleBulkCreate(w http.ResponseWriter, r *http.Request) {
	var reqs []itemRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	inputs := make([]CreateInput, 0, len(reqs))
	for _, req := range reqs {
		inputs = append(inputs, CreateInput{
			ItemCode:       req.ItemCode,
			Name:           req.Name,
			Category:       req.Category,
			PurchasePrice:  req.PurchasePrice,
			WholesalePrice: req.WholesalePrice,
			RetailPrice:    req.RetailPrice,
			OpeningStock:   req.OpeningStock,
		})
	}
	result, err := h.service.BulkCreate(r.Context(), inputs)
	if err != nil {
		h.logger.Error("bulk create items", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeItem(w, r)
	if !ok {
		return
	}
	err := h.service.Update(r.Context(), id, UpdateInput{
		ItemCode:       req.ItemCode,
		Name:           req.Name,
		Category:       req.Category,
		PurchasePrice:  req.PurchasePrice,
		WholesalePrice: req.WholesalePrice,
		RetailPrice:    req.RetailPrice,
	})
	if err != nil {
		h.respondErr(w, err, "update item")
		return
	}
	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, err, "reload item")
		return
	}
	shared.RespondJSON(w, http.StatusOK, toResponse(item))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondErr(w, err, "delete item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	threshold, _ := strconv.Atoi(r.URL.Query().Get("threshold"))
	items, err := h.service.LowStock(r.Context(), threshold)
	if err != nil {
		h.logger.Error("low stock items", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toResponses(items))
}

func (h *Handler) handlePriceHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	changes, err := h.service.PriceHistory(r.Context(), id)
	if err != nil {
		h.respondErr(w, err, "price history")
		return
	}
	type changeResponse struct {
		ID             int64         `json:"id"`
		ItemID         int64         `json:"itemId"`
		PurchasePrice  *shared.Money `json:"purchasePrice"`
		WholesalePrice *shared.Money `json:"wholesalePrice"`
		RetailPrice    *shared.Money `json:"retailPrice"`
		ChangedAt      time.Time     `json:"changedAt"`
	}
	out := make([]changeResponse, 0, len(changes))
	for _, c := range changes {
		out = append(out, changeResponse{
			ID:             c.ID,
			ItemID:         c.ItemID,
			PurchasePrice:  c.PurchasePrice,
			WholesalePrice: c.WholesalePrice,
			RetailPrice:    c.RetailPrice,
			ChangedAt:      c.ChangedAt,
		})
	}
	shared.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) decodeItem(w http.ResponseWriter, r *http.Request) (itemRequest, bool) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return itemRequest{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return itemRequest{}, false
	}
	return req, true
}

func (h *Handler) respondErr(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrItemNotFound):
		shared.RespondError(w, http.StatusNotFound, err)
	case errors.Is(err, ErrDuplicateCode), errors.Is(err, ErrDuplicateName):
		shared.RespondError(w, http.StatusConflict, err)
	case errors.Is(err, ErrUnknownCategory):
		shared.RespondError(w, http.StatusUnprocessableEntity, err)
	default:
		h.logger.Error(op, slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, err)
	}
}
