package alerts

import (
	"errors"

	"github.com/stockledger/stockledger/internal/catalog"
	"github.com/stockledger/stockledger/internal/shared"
)

// Level classifies reorder urgency.
type Level string

const (
	LevelCritical Level = "critical"
	LevelLow      Level = "low"
)

// Settings are the per-deployment alert thresholds. The critical threshold
// must stay strictly below the low threshold.
type Settings struct {
	LowStockThreshold         int  `json:"lowStockThreshold"`
	CriticalStockThreshold    int  `json:"criticalStockThreshold"`
	DefaultReorderQuantity    int  `json:"defaultReorderQuantity"`
	EmailNotificationsEnabled bool `json:"emailNotificationsEnabled"`
}

// DefaultSettings returns the values used before any explicit configuration.
func DefaultSettings() Settings {
	return Settings{
		LowStockThreshold:      10,
		CriticalStockThreshold: 5,
		DefaultReorderQuantity: 50,
	}
}

// Record is one reorder alert for an item at risk of running out.
// DaysUntilStockout is zero when the item has no recent sales; stagnant
// stock near zero still alerts, but a finite stockout estimate would be
// meaningless.
type Record struct {
	ItemID            int64            `json:"id"`
	ItemCode          string           `json:"itemCode"`
	Name              string           `json:"name"`
	Category          catalog.Category `json:"category"`
	AvailableQty      int              `json:"availableQty"`
	SalesVelocity     float64          `json:"salesVelocity"`
	DaysUntilStockout int              `json:"daysUntilStockout,omitempty"`
	Level             Level            `json:"alertLevel"`
	SuggestedReorder  int              `json:"suggestedReorder"`
}

// Summary counts alerts per level.
type Summary struct {
	Critical int `json:"critical"`
	LowStock int `json:"lowStock"`
}

// Report is the full alert computation output.
type Report struct {
	Alerts  []Record `json:"alerts"`
	Summary Summary  `json:"summary"`
}

// ErrInvalidThresholds indicates critical >= low on a settings update.
var ErrInvalidThresholds = errors.New("alerts: critical threshold must be less than low stock threshold")

func init() {
	shared.RegisterUserSafe(ErrInvalidThresholds)
}
