package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ActivityLog is one manager-visible trail entry.
type ActivityLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	ActorRole  string            `json:"actor_role"`
	ActorName  string            `json:"actor_name,omitempty"`
	Action     string            `json:"action"`
	TargetType string            `json:"target_type"`
	TargetID   string            `json:"target_id,omitempty"`
	Metadata   datatypes.JSONMap `json:"metadata,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (ActivityLog) TableName() string { return "activity_logs" }

const (
	ActionBatchSubmitted     = "request.batch_submitted"
	ActionStatusChanged      = "request.status_changed"
	ActionBatchStatusChanged = "request.batch_status_changed"
	ActionMaterialAdded      = "catalog.material_added"
	ActionCatalogImported    = "catalog.imported"
	ActionPINChanged         = "settings.pin_changed"
	ActionUnlockFailed       = "auth.unlock_failed"
)
