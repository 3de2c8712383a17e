package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/stockledger/stockledger/internal/shared"
)

// ChangeType enumerates why an item's quantity changed. The set is closed;
// anything outside it is rejected before reaching storage.
type ChangeType string

const (
	// ChangePurchase is inbound stock from a purchase order.
	ChangePurchase ChangeType = "purchase"
	// ChangeSale is outbound stock sold to a customer.
	ChangeSale ChangeType = "sale"
	// ChangeAdjustment is a manual correction, either sign.
	ChangeAdjustment ChangeType = "adjustment"
	// ChangeImport is a bulk overwrite from CSV or sheet sync.
	ChangeImport ChangeType = "import"
)

// Valid reports whether t is one of the four known change types.
func (t ChangeType) Valid() bool {
	switch t {
	case ChangePurchase, ChangeSale, ChangeAdjustment, ChangeImport:
		return true
	}
	return false
}

// StockHistoryEntry is one immutable record in the append-only stock ledger.
// QuantityAfter snapshots the item's available quantity immediately after the
// change was applied; replaying entries in createdAt order must reproduce the
// item's current quantity.
type StockHistoryEntry struct {
	ID              int64      `json:"id"`
	ItemID          int64      `json:"itemId"`
	ChangeType      ChangeType `json:"changeType"`
	QuantityChange  int        `json:"quantityChange"`
	QuantityAfter   int        `json:"quantityAfter"`
	PurchaseOrderID *uuid.UUID `json:"purchaseOrderId,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// ChangeInput describes a relative quantity change.
type ChangeInput struct {
	ItemID          int64
	Type            ChangeType
	Delta           int
	Notes           string
	PurchaseOrderID *uuid.UUID
}

// StockUpdate is the (itemCode, quantity) tuple shape shared by the CSV
// import and sheet sync collaborators. Quantity is an absolute target, not a
// delta.
type StockUpdate struct {
	ItemCode string `json:"itemCode"`
	Quantity int    `json:"quantity"`
}

// ImportReport is the collect-and-report outcome of a bulk import. Unresolved
// item codes are listed rather than failing the whole batch.
type ImportReport struct {
	Updated  int      `json:"updated"`
	NotFound []string `json:"notFound"`
}

// HistoryStats summarises an item's ledger for display.
type HistoryStats struct {
	TotalSales    int `json:"totalSales"`
	TotalRestocks int `json:"totalRestocks"`
	CurrentStock  int `json:"currentStock"`
}

var (
	// ErrItemNotFound indicates the referenced item does not resolve.
	ErrItemNotFound = errors.New("ledger: item not found")
	// ErrInsufficientStock indicates a change would drive available
	// quantity below zero. The operation is rejected, never clamped.
	ErrInsufficientStock = errors.New("ledger: insufficient stock")
	// ErrInvalidQuantity indicates a zero delta or a delta whose sign does
	// not match the change type.
	ErrInvalidQuantity = errors.New("ledger: invalid quantity change")
	// ErrInvalidChangeType indicates a change type outside the closed set.
	ErrInvalidChangeType = errors.New("ledger: invalid change type")
)

func init() {
	shared.RegisterUserSafe(ErrItemNotFound, ErrInsufficientStock, ErrInvalidQuantity, ErrInvalidChangeType)
}
