package summary

import (
	"github.com/stockledger/stockledger/internal/shared"
)

// lowStockFloor is the fixed cutoff for the daily digest's low-stock list.
// It is deliberately independent of the configurable alert thresholds.
const lowStockFloor = 20

// topSellerCount caps the top-sellers list in the digest.
const topSellerCount = 5

// ItemSales is a per-item sales rollup for the digest.
type ItemSales struct {
	Name         string       `json:"name"`
	Code         string       `json:"code"`
	QuantitySold int          `json:"quantitySold"`
	Revenue      shared.Money `json:"revenue"`
}

// LowStockItem is an item under the digest's fixed stock floor.
type LowStockItem struct {
	Name         string `json:"name"`
	Code         string `json:"code"`
	AvailableQty int    `json:"availableQty"`
}

// ItemRef names an item that recorded no sales in the summarized day.
type ItemRef struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// SalesSummary is the daily rollup handed to the notification collaborator.
type SalesSummary struct {
	Date            string         `json:"date"`
	TotalItemsSold  int            `json:"totalItemsSold"`
	TotalRevenue    shared.Money   `json:"totalRevenue"`
	TopSellingItems []ItemSales    `json:"topSellingItems"`
	LowStockItems   []LowStockItem `json:"lowStockItems"`
	NoSalesItems    []ItemRef      `json:"noSalesItems"`
}

// SaleLine is one sale ledger entry joined with its item, as read by the
// aggregator.
type SaleLine struct {
	ItemID         int64
	Name           string
	Code           string
	QuantityChange int
	WholesalePrice *shared.Money
}
