package sheetsync

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/stockledger/stockledger/internal/shared"
)

// Status of a completed sync run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// SheetConfig is the persisted pointer to the external two-column sheet
// (column A item code, column B quantity; range semantics live behind the
// Source port).
type SheetConfig struct {
	SpreadsheetID string     `json:"spreadsheetId"`
	SheetName     string     `json:"sheetName"`
	Active        bool       `json:"active"`
	LastSyncAt    *time.Time `json:"lastSyncAt,omitempty"`
}

// SyncLog records the outcome of one sync run.
type SyncLog struct {
	ID           int64     `json:"id"`
	RunID        uuid.UUID `json:"runId"`
	Status       Status    `json:"status"`
	ItemsUpdated int       `json:"itemsUpdated"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	SyncedAt     time.Time `json:"syncedAt"`
}

// SyncResult is what SyncNow returns to its caller.
type SyncResult struct {
	RunID        uuid.UUID `json:"runId"`
	Status       Status    `json:"status"`
	ItemsUpdated int       `json:"itemsUpdated"`
	NotFound     []string  `json:"notFound"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

var (
	// ErrSyncInProgress means another run holds the sync lock.
	ErrSyncInProgress = errors.New("sheetsync: a sync run is already in progress")
	// ErrNotConfigured means no active sheet configuration exists.
	ErrNotConfigured = errors.New("sheetsync: no active sheet configured")
)

func init() {
	shared.RegisterUserSafe(ErrSyncInProgress, ErrNotConfigured)
}
