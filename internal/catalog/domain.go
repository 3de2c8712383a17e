package catalog

import (
	"errors"
	"time"

	"github.com/stockledger/stockledger/internal/shared"
)

// Category enumerates the fixed set of item categories.
type Category string

const (
	CategoryMotorola Category = "Motorola"
	CategorySamsung  Category = "Samsung"
	CategoryRedmi    Category = "Redmi"
	CategoryRealme   Category = "Realme"
	CategoryMeizu    Category = "Meizu"
	CategoryHonor    Category = "Honor"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryMotorola, CategorySamsung, CategoryRedmi, CategoryRealme, CategoryMeizu, CategoryHonor:
		return true
	}
	return false
}

// Item is the master record for a stocked product. AvailableQty is owned by
// the stock ledger and must never be written through this package;
// OpeningStock is recorded once at creation and kept as a historical
// reference.
type Item struct {
	ID             int64
	ItemCode       string
	Name           string
	Category       Category
	PurchasePrice  *shared.Money
	WholesalePrice *shared.Money
	RetailPrice    *shared.Money
	OpeningStock   int
	AvailableQty   int
	LastSoldAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PriceChange is one historical snapshot of an item's price points.
type PriceChange struct {
	ID             int64
	ItemID         int64
	PurchasePrice  *shared.Money
	WholesalePrice *shared.Money
	RetailPrice    *shared.Money
	ChangedAt      time.Time
}

// CreateInput carries fields for a new item.
type CreateInput struct {
	ItemCode       string
	Name           string
	Category       Category
	PurchasePrice  *shared.Money
	WholesalePrice *shared.Money
	RetailPrice    *shared.Money
	OpeningStock   int
}

// UpdateInput carries mutable item fields. Quantity fields are absent on
// purpose: available quantity changes only through the stock ledger.
type UpdateInput struct {
	ItemCode       string
	Name           string
	Category       Category
	PurchasePrice  *shared.Money
	WholesalePrice *shared.Money
	RetailPrice    *shared.Money
}

// BulkCreateResult reports the outcome of a bulk item upload. Skipped rows
// never abort the batch.
type BulkCreateResult struct {
	Created int           `json:"created"`
	Skipped []SkippedItem `json:"skipped"`
}

// SkippedItem names one rejected bulk row and why it was rejected.
type SkippedItem struct {
	ItemCode string `json:"itemCode"`
	Reason   string `json:"reason"`
}

var (
	// ErrDuplicateCode indicates the item code is already taken.
	ErrDuplicateCode = errors.New("catalog: item code already exists")
	// ErrDuplicateName indicates the item name is already taken.
	ErrDuplicateName = errors.New("catalog: item name already exists")
	// ErrUnknownCategory indicates a category outside the fixed set.
	ErrUnknownCategory = errors.New("catalog: unknown category")
	// ErrItemNotFound indicates the referenced item does not exist.
	ErrItemNotFound = errors.New("catalog: item not found")
)

func init() {
	shared.RegisterUserSafe(ErrDuplicateCode, ErrDuplicateName, ErrUnknownCategory, ErrItemNotFound)
}
