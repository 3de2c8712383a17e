package movement

import "github.com/stockledger/stockledger/internal/catalog"

// Category classifies an item's sales pace.
type Category string

const (
	CategoryFast   Category = "fast"
	CategoryMedium Category = "medium"
	CategorySlow   Category = "slow"
	CategoryNone   Category = "none"
)

// Classify maps a daily sales rate to a movement category. Boundaries are
// inclusive: exactly 5/day is fast, exactly 1/day is medium. This is the
// single place the thresholds live.
func Classify(soldQty int, avgPerDay float64) Category {
	switch {
	case soldQty == 0:
		return CategoryNone
	case avgPerDay >= 5:
		return CategoryFast
	case avgPerDay >= 1:
		return CategoryMedium
	default:
		return CategorySlow
	}
}

// Stats is the per-item movement analysis over a caller-supplied window.
type Stats struct {
	ItemID       int64            `json:"id"`
	ItemCode     string           `json:"itemCode"`
	ItemName     string           `json:"itemName"`
	Category     catalog.Category `json:"category"`
	AvailableQty int              `json:"availableQty"`
	SoldQty      int              `json:"soldQty"`
	OrderCount   int              `json:"orderCount"`
	AvgPerDay    float64          `json:"avgPerDay"`
	Movement     Category         `json:"movementCategory"`
}

// SaleTotal aggregates sale entries for one item within a window.
type SaleTotal struct {
	ItemID     int64
	SoldQty    int
	OrderCount int
}

// ItemRef is the item state the engine needs for reporting.
type ItemRef struct {
	ID           int64
	ItemCode     string
	Name         string
	Category     catalog.Category
	AvailableQty int
}
