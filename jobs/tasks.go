package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDailySummary triggers the daily sales summary digest.
	TaskDailySummary = "summary:daily"
	// TaskSheetSync triggers the nightly sheet-sourced stock sync.
	TaskSheetSync = "sheets:sync"
)

// DailySummaryPayload optionally pins the summarized day. An empty Date
// means the current day in the configured business timezone at run time.
type DailySummaryPayload struct {
	Date string `json:"date,omitempty"`
}

// NewDailySummaryTask constructs an Asynq task for the daily digest.
func NewDailySummaryTask(payload DailySummaryPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDailySummary, body, asynq.Queue(QueueDefault)), nil
}

// SheetSyncPayload carries scheduling metadata for the sync run.
type SheetSyncPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewSheetSyncTask constructs an Asynq task for the sheet sync.
func NewSheetSyncTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(SheetSyncPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSheetSync, body, asynq.Queue(QueueDefault)), nil
}
