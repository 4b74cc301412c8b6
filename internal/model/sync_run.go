package model

import (
	"encoding/json"
	"time"
)

type SyncKind string

const (
	SyncKindEvents    SyncKind = "events"
	SyncKindResources SyncKind = "resources"
)

type SyncStatus string

const (
	SyncStatusSuccess     SyncStatus = "success"
	SyncStatusFailed      SyncStatus = "failed"
	SyncStatusRateLimited SyncStatus = "rate_limited"
)

type SyncRun struct {
	ID           int64           `json:"id"`
	Kind         SyncKind        `json:"kind"`
	Trigger      string          `json:"trigger"`
	Status       SyncStatus      `json:"status"`
	Stats        json.RawMessage `json:"stats,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   time.Time       `json:"finished_at"`
}
