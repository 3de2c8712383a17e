package alerts

import (
	"context"
	"math"
	"sort"

	"github.com/stockledger/stockledger/internal/catalog"
)

// SettingsRepository persists alert settings.
type SettingsRepository interface {
	Get(ctx context.Context) (Settings, bool, error)
	Upsert(ctx context.Context, settings Settings) error
}

// VelocityPort supplies units-per-week sales rates keyed by item id.
type VelocityPort interface {
	WeeklyVelocity(ctx context.Context) (map[int64]float64, error)
}

// ItemsPort lists the items considered for alerting.
type ItemsPort interface {
	List(ctx context.Context) ([]ItemStock, error)
}

// ItemStock is the item state the engine reads.
type ItemStock struct {
	ID           int64
	ItemCode     string
	Name         string
	Category     catalog.Category
	AvailableQty int
}

// Service computes reorder alerts from current stock and sales velocity.
type Service struct {
	settings SettingsRepository
	velocity VelocityPort
	items    ItemsPort
}

// NewService builds Service.
func NewService(settings SettingsRepository, velocity VelocityPort, items ItemsPort) *Service {
	return &Service{settings: settings, velocity: velocity, items: items}
}

// GetSettings returns the stored settings, or defaults when none exist.
func (s *Service) GetSettings(ctx context.Context) (Settings, error) {
	settings, ok, err := s.settings.Get(ctx)
	if err != nil {
		return Settings{}, err
	}
	if !ok {
		return DefaultSettings(), nil
	}
	return settings, nil
}

// UpdateSettings validates and persists new thresholds. Invalid threshold
// pairs are rejected before anything is written.
func (s *Service) UpdateSettings(ctx context.Context, settings Settings) error {
	if settings.CriticalStockThreshold >= settings.LowStockThreshold {
		return ErrInvalidThresholds
	}
	if settings.LowStockThreshold <= 0 || settings.CriticalStockThreshold < 0 || settings.DefaultReorderQuantity <= 0 {
		return ErrInvalidThresholds
	}
	return s.settings.Upsert(ctx, settings)
}

// ComputeAlerts evaluates every item against the configured thresholds.
// Items at or above the low threshold are excluded. The result is sorted
// critical-first, then by soonest stockout.
func (s *Service) ComputeAlerts(ctx context.Context) (Report, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return Report{}, err
	}
	items, err := s.items.List(ctx)
	if err != nil {
		return Report{}, err
	}
	velocity, err := s.velocity.WeeklyVelocity(ctx)
	if err != nil {
		return Report{}, err
	}

	report := Report{Alerts: []Record{}}
	for _, item := range items {
		level, ok := classify(item.AvailableQty, settings)
		if !ok {
			continue
		}
		weekly := velocity[item.ID]
		record := Record{
			ItemID:           item.ID,
			ItemCode:         item.ItemCode,
			Name:             item.Name,
			Category:         item.Category,
			AvailableQty:     item.AvailableQty,
			SalesVelocity:    math.Round(weekly*10) / 10,
			Level:            level,
			SuggestedReorder: suggestedReorder(settings.DefaultReorderQuantity, weekly),
		}
		if weekly > 0 {
			record.DaysUntilStockout = int(math.Floor(float64(item.AvailableQty) / (weekly / 7)))
		}
		report.Alerts = append(report.Alerts, record)
		if level == LevelCritical {
			report.Summary.Critical++
		} else {
			report.Summary.LowStock++
		}
	}

	sort.SliceStable(report.Alerts, func(i, j int) bool {
		a, b := report.Alerts[i], report.Alerts[j]
		if (a.Level == LevelCritical) != (b.Level == LevelCritical) {
			return a.Level == LevelCritical
		}
		return a.DaysUntilStockout < b.DaysUntilStockout
	})
	return report, nil
}

// classify returns the alert level for a quantity, or false when the item
// does not alert.
func classify(qty int, settings Settings) (Level, bool) {
	switch {
	case qty < settings.CriticalStockThreshold:
		return LevelCritical, true
	case qty < settings.LowStockThreshold:
		return LevelLow, true
	default:
		return "", false
	}
}

// suggestedReorder never goes below the configured default, but scales up
// for fast movers to cover roughly two weeks of sales.
func suggestedReorder(defaultQty int, weekly float64) int {
	scaled := int(math.Ceil(weekly * 2))
	if scaled > defaultQty {
		return scaled
	}
	return defaultQty
}
