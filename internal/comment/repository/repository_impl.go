package repository

import (
	"context"
	"fmt"

	"github.com/smallbiznis/stockroom/internal/comment/domain"
	pkgdb "github.com/smallbiznis/stockroom/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

type commentRow struct {
	ID        int64   `gorm:"column:id;primaryKey"`
	RequestID int64   `gorm:"column:request_id"`
	ByRole    string  `gorm:"column:by_role"`
	ByName    *string `gorm:"column:by_name"`
	Text      string  `gorm:"column:text"`
	At        string  `gorm:"column:at"`
}

func (commentRow) TableName() string { return "comments" }

func (r *repo) Insert(ctx context.Context, db *gorm.DB, comment *domain.Comment) error {
	row := commentRow{
		RequestID: comment.RequestID,
		ByRole:    string(comment.AuthorRole),
		Text:      comment.Text,
		At:        pkgdb.FormatTime(comment.CreatedAt),
	}
	if comment.AuthorName != "" {
		name := comment.AuthorName
		row.ByName = &name
	}
	if err := db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	comment.ID = row.ID
	return nil
}

func (r *repo) ListByRequest(ctx context.Context, db *gorm.DB, requestID int64) ([]domain.Comment, error) {
	var rows []commentRow
	err := db.WithContext(ctx).Raw(
		`SELECT id, request_id, by_role, by_name, text, at FROM comments WHERE request_id = ? ORDER BY id ASC`,
		requestID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Comment, 0, len(rows))
	for _, row := range rows {
		at, err := pkgdb.ParseTime(row.At)
		if err != nil {
			return nil, fmt.Errorf("comment %d: %w", row.ID, err)
		}
		c := domain.Comment{
			ID:         row.ID,
			RequestID:  row.RequestID,
			AuthorRole: domain.Role(row.ByRole),
			Text:       row.Text,
			CreatedAt:  at,
		}
		if row.ByName != nil {
			c.AuthorName = *row.ByName
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *repo) RequestExists(ctx context.Context, db *gorm.DB, requestID int64) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM requests WHERE id = ?`, requestID).Scan(&n).Error
	return n > 0, err
}

func (r *repo) SetUnread(ctx context.Context, db *gorm.DB, requestID int64, role domain.Role, unread bool) error {
	column := "new_comment_for_requestor"
	if role == domain.RoleManager {
		column = "new_comment_for_manager"
	}
	flag := 0
	if unread {
		flag = 1
	}
	return db.WithContext(ctx).Exec(
		`UPDATE requests SET `+column+` = ? WHERE id = ?`,
		flag,
		requestID,
	).Error
}
