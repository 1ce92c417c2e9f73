package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockroom/internal/activity/domain"
	pkgdb "github.com/smallbiznis/stockroom/pkg/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

type activityRow struct {
	ID         int64
	ActorRole  string
	ActorName  *string
	Action     string
	TargetType string
	TargetID   *string
	Metadata   datatypes.JSONMap
	RequestID  *string
	CreatedAt  string
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.ActivityLog) error {
	if entry == nil {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO activity_logs (
			id, actor_role, actor_name, action, target_type, target_id,
			metadata, request_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(entry.ID),
		entry.ActorRole,
		nullable(entry.ActorName),
		entry.Action,
		entry.TargetType,
		nullable(entry.TargetID),
		entry.Metadata,
		nullable(entry.RequestID),
		pkgdb.FormatTime(entry.CreatedAt),
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.ActivityLog, error) {
	stmt := db.WithContext(ctx).Table("activity_logs")
	if action := strings.TrimSpace(filter.Action); action != "" {
		stmt = stmt.Where("action = ?", action)
	}
	if targetType := strings.TrimSpace(filter.TargetType); targetType != "" {
		stmt = stmt.Where("target_type = ?", targetType)
	}
	if targetID := strings.TrimSpace(filter.TargetID); targetID != "" {
		stmt = stmt.Where("target_id = ?", targetID)
	}
	// snowflake ids grow with time, so id order is creation order
	if filter.BeforeID != 0 {
		stmt = stmt.Where("id < ?", int64(filter.BeforeID))
	}
	stmt = stmt.Order("id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}

	var rows []activityRow
	if err := stmt.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*domain.ActivityLog, 0, len(rows))
	for _, row := range rows {
		createdAt, err := pkgdb.ParseTime(row.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, &domain.ActivityLog{
			ID:         snowflake.ID(row.ID),
			ActorRole:  row.ActorRole,
			ActorName:  deref(row.ActorName),
			Action:     row.Action,
			TargetType: row.TargetType,
			TargetID:   deref(row.TargetID),
			Metadata:   row.Metadata,
			RequestID:  deref(row.RequestID),
			CreatedAt:  createdAt,
		})
	}
	return out, nil
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
