package entity

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

type RunKind string

const (
	RunKindPriceRefresh RunKind = "price_refresh"
	RunKindHoldingsSync RunKind = "holdings_sync"
)

type RunTrigger string

const (
	TriggerManual   RunTrigger = "manual"
	TriggerSchedule RunTrigger = "schedule"
)

type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// RefreshRun records one execution of a batch job against an upstream feed.
type RefreshRun struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Kind         RunKind        `gorm:"type:varchar(30);not null;index" json:"kind"`
	Trigger      RunTrigger     `gorm:"type:varchar(10);not null" json:"trigger"`
	Status       RunStatus      `gorm:"type:varchar(10);not null" json:"status"`
	TriggeredBy  *uint          `json:"triggered_by,omitempty"`
	StartedAt    time.Time      `gorm:"not null;index" json:"started_at"`
	CompletedAt  sql.NullTime   `json:"completed_at"`
	Output       datatypes.JSON `gorm:"type:jsonb" json:"output"`
	ErrorMessage sql.NullString `json:"error_message"`
}

func (RefreshRun) TableName() string {
	return "refresh_runs"
}
