package summary

import (
	"context"
	"sort"
	"time"

	"github.com/stockledger/stockledger/internal/shared"
)

// ItemRow identifies an item for the no-sales check.
type ItemRow struct {
	ID   int64
	Name string
	Code string
}

// ReaderPort supplies the materialized query results the aggregator folds.
type ReaderPort interface {
	SaleLines(ctx context.Context, start, end time.Time) ([]SaleLine, error)
	LowStock(ctx context.Context, floor int) ([]LowStockItem, error)
	Items(ctx context.Context) ([]ItemRow, error)
}

// Notifier receives the finished summary. Delivery policy, retries included,
// belongs to the implementation; the aggregator only logs failures.
type Notifier interface {
	Send(ctx context.Context, s SalesSummary) error
}

// Service computes day-bounded sales rollups.
type Service struct {
	reader ReaderPort
}

// NewService builds Service.
func NewService(reader ReaderPort) *Service {
	return &Service{reader: reader}
}

// Summarize rolls up sales for the calendar day containing date in loc.
// The window is [startOfDay, endOfDay) in that zone. Revenue uses the
// wholesale price tier only; the ledger does not record which tier a sale
// actually closed at.
func (s *Service) Summarize(ctx context.Context, date time.Time, loc *time.Location) (SalesSummary, error) {
	local := date.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	lines, err := s.reader.SaleLines(ctx, start, end)
	if err != nil {
		return SalesSummary{}, err
	}

	out := SalesSummary{
		Date:            start.Format("Monday, January 2, 2006"),
		TopSellingItems: []ItemSales{},
		LowStockItems:   []LowStockItem{},
		NoSalesItems:    []ItemRef{},
	}

	perItem := map[int64]*ItemSales{}
	sold := map[int64]bool{}
	order := []int64{}
	for _, line := range lines {
		qty := line.QuantityChange
		if qty < 0 {
			qty = -qty
		}
		var price shared.Money
		if line.WholesalePrice != nil {
			price = *line.WholesalePrice
		}
		revenue := price.MulQty(qty)

		out.TotalItemsSold += qty
		out.TotalRevenue += revenue
		sold[line.ItemID] = true

		if agg, ok := perItem[line.ItemID]; ok {
			agg.QuantitySold += qty
			agg.Revenue += revenue
			continue
		}
		perItem[line.ItemID] = &ItemSales{Name: line.Name, Code: line.Code, QuantitySold: qty, Revenue: revenue}
		order = append(order, line.ItemID)
	}

	top := make([]ItemSales, 0, len(order))
	for _, id := range order {
		top = append(top, *perItem[id])
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].QuantitySold > top[j].QuantitySold })
	if len(top) > topSellerCount {
		top = top[:topSellerCount]
	}
	out.TopSellingItems = top

	lowStock, err := s.reader.LowStock(ctx, lowStockFloor)
	if err != nil {
		return SalesSummary{}, err
	}
	out.LowStockItems = lowStock

	items, err := s.reader.Items(ctx)
	if err != nil {
		return SalesSummary{}, err
	}
	for _, it := range items {
		if !sold[it.ID] {
			out.NoSalesItems = append(out.NoSalesItems, ItemRef{Name: it.Name, Code: it.Code})
		}
	}
	return out, nil
}
