package movement

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"
)

// ReaderPort abstracts the read-only queries the engine runs against the
// ledger and item store. Aggregates are always recomputed from the ledger,
// never served from cached values.
type ReaderPort interface {
	SaleTotals(ctx context.Context, since time.Time, itemID int64) ([]SaleTotal, error)
	Items(ctx context.Context, itemID int64) ([]ItemRef, error)
}

// Service is the velocity and movement engine. It is read-only and
// idempotent: the same window with no intervening writes yields identical
// results.
type Service struct {
	reader ReaderPort
	now    func() time.Time
}

// NewService builds Service.
func NewService(reader ReaderPort) *Service {
	return &Service{reader: reader, now: time.Now}
}

// ErrInvalidWindow indicates a non-positive analysis window.
var ErrInvalidWindow = errors.New("movement: window must be at least one day")

// AnalyzeMovement aggregates sale entries over the trailing windowDays and
// classifies each item's pace. itemID of zero analyses the whole catalog.
// Results are sorted by sold quantity descending, item id ascending on ties.
func (s *Service) AnalyzeMovement(ctx context.Context, windowDays int, itemID int64) ([]Stats, error) {
	if windowDays <= 0 {
		return nil, ErrInvalidWindow
	}
	since := s.now().UTC().AddDate(0, 0, -windowDays)

	items, err := s.reader.Items(ctx, itemID)
	if err != nil {
		return nil, err
	}
	totals, err := s.reader.SaleTotals(ctx, since, itemID)
	if err != nil {
		return nil, err
	}
	byItem := make(map[int64]SaleTotal, len(totals))
	for _, t := range totals {
		byItem[t.ItemID] = t
	}

	stats := make([]Stats, 0, len(items))
	for _, item := range items {
		total := byItem[item.ID]
		avgPerDay := float64(total.SoldQty) / float64(windowDays)
		stats = append(stats, Stats{
			ItemID:       item.ID,
			ItemCode:     item.ItemCode,
			ItemName:     item.Name,
			Category:     item.Category,
			AvailableQty: item.AvailableQty,
			SoldQty:      total.SoldQty,
			OrderCount:   total.OrderCount,
			AvgPerDay:    round2(avgPerDay),
			Movement:     Classify(total.SoldQty, avgPerDay),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].SoldQty != stats[j].SoldQty {
			return stats[i].SoldQty > stats[j].SoldQty
		}
		return stats[i].ItemID < stats[j].ItemID
	})
	return stats, nil
}

// WeeklyVelocity reports units sold per week per item from a fixed trailing
// 30-day window, the rate consumed by the reorder alert engine.
func (s *Service) WeeklyVelocity(ctx context.Context) (map[int64]float64, error) {
	const windowDays = 30
	since := s.now().UTC().AddDate(0, 0, -windowDays)
	totals, err := s.reader.SaleTotals(ctx, since, 0)
	if err != nil {
		return nil, err
	}
	velocity := make(map[int64]float64, len(totals))
	for _, t := range totals {
		velocity[t.ItemID] = float64(t.SoldQty) / windowDays * 7
	}
	return velocity, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
