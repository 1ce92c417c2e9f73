package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/stockroom/internal/request/domain"
	pkgdb "github.com/smallbiznis/stockroom/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const selectColumns = `id, batch_id, department, item_type, material_description, oracle_number,
	free_text_item, quantity, is_spr, status, timestamp, status_changed_at,
	new_comment_for_manager, new_comment_for_requestor`

// requestRow mirrors the stored columns; legacy rows may hold NULLs.
type requestRow struct {
	ID                     int64   `gorm:"column:id;primaryKey"`
	BatchID                *string `gorm:"column:batch_id"`
	Department             *string `gorm:"column:department"`
	ItemType               *string `gorm:"column:item_type"`
	MaterialDescription    *string `gorm:"column:material_description"`
	OracleNumber           *string `gorm:"column:oracle_number"`
	FreeTextItem           *string `gorm:"column:free_text_item"`
	Quantity               int     `gorm:"column:quantity"`
	IsSPR                  bool    `gorm:"column:is_spr"`
	Status                 string  `gorm:"column:status"`
	Timestamp              string  `gorm:"column:timestamp"`
	StatusChangedAt        *string `gorm:"column:status_changed_at"`
	NewCommentForManager   bool    `gorm:"column:new_comment_for_manager"`
	NewCommentForRequestor bool    `gorm:"column:new_comment_for_requestor"`
}

func (requestRow) TableName() string { return "requests" }

func (r *repo) Insert(ctx context.Context, db *gorm.DB, req *domain.Request) error {
	ts := pkgdb.FormatTime(req.SubmittedAt)
	changed := pkgdb.FormatTime(req.StatusChangedAt)
	row := requestRow{
		BatchID:                nullable(req.BatchID),
		Department:             nullable(req.Department),
		ItemType:               nullable(string(req.ItemType)),
		MaterialDescription:    nullable(req.MaterialDescription),
		OracleNumber:           nullable(req.ExternalCode),
		FreeTextItem:           nullable(req.FreeTextDescription),
		Quantity:               req.Quantity,
		IsSPR:                  req.IsSPR,
		Status:                 string(req.Status),
		Timestamp:              ts,
		StatusChangedAt:        &changed,
		NewCommentForManager:   req.UnreadForManager,
		NewCommentForRequestor: req.UnreadForRequestor,
	}
	if err := db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	req.ID = row.ID
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Request, error) {
	var rows []requestRow
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM requests WHERE id = ?`,
		id,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out, err := toDomain(rows[0])
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repo) ListByBatch(ctx context.Context, db *gorm.DB, batchID string) ([]domain.Request, error) {
	var rows []requestRow
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM requests WHERE batch_id = ? ORDER BY id ASC`,
		batchID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainList(rows)
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Request, error) {
	stmt := db.WithContext(ctx).Table("requests").Select(selectColumns)
	if filter.Department != "" {
		stmt = stmt.Where("department = ?", filter.Department)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", string(filter.Status))
	}
	if filter.UnreadForManager {
		stmt = stmt.Where("new_comment_for_manager = 1")
	}
	if filter.NewFirst {
		stmt = stmt.Order("status = 'new' DESC")
	}
	stmt = stmt.Order("id DESC")

	var rows []requestRow
	if err := stmt.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainList(rows)
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id int64, status domain.Status, changedAt time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE requests SET status = ?, status_changed_at = ? WHERE id = ?`,
		string(status),
		pkgdb.FormatTime(changedAt),
		id,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) UpdateBatchStatus(ctx context.Context, db *gorm.DB, batchID string, status domain.Status, changedAt time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE requests SET status = ?, status_changed_at = ? WHERE batch_id = ?`,
		string(status),
		pkgdb.FormatTime(changedAt),
		batchID,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB, department string, now time.Time, overdueDays int) ([]domain.RawStatusCount, error) {
	var counts []domain.RawStatusCount
	err := db.WithContext(ctx).Raw(
		`SELECT status,
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN julianday(?) - julianday(status_changed_at) > ? THEN 1 ELSE 0 END), 0) AS overdue
		 FROM requests
		 WHERE department = ?
		 GROUP BY status`,
		pkgdb.FormatTime(now),
		overdueDays,
		department,
	).Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *repo) CountByStatusAll(ctx context.Context, db *gorm.DB, status domain.Status) (int, error) {
	var n int
	err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM requests WHERE status = ?`, string(status)).Scan(&n).Error
	return n, err
}

func (r *repo) CountUnreadForManager(ctx context.Context, db *gorm.DB) (int, error) {
	var n int
	err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM requests WHERE new_comment_for_manager = 1`).Scan(&n).Error
	return n, err
}

func toDomainList(rows []requestRow) ([]domain.Request, error) {
	out := make([]domain.Request, 0, len(rows))
	for _, row := range rows {
		item, err := toDomain(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func toDomain(row requestRow) (domain.Request, error) {
	submittedAt, err := pkgdb.ParseTime(row.Timestamp)
	if err != nil {
		return domain.Request{}, fmt.Errorf("request %d timestamp: %w", row.ID, err)
	}
	changedAt := submittedAt
	if row.StatusChangedAt != nil {
		changedAt, err = pkgdb.ParseTime(*row.StatusChangedAt)
		if err != nil {
			return domain.Request{}, fmt.Errorf("request %d status_changed_at: %w", row.ID, err)
		}
	}
	return domain.Request{
		ID:                  row.ID,
		BatchID:             deref(row.BatchID),
		Department:          deref(row.Department),
		ItemType:            domain.ItemType(deref(row.ItemType)),
		MaterialDescription: deref(row.MaterialDescription),
		ExternalCode:        deref(row.OracleNumber),
		FreeTextDescription: deref(row.FreeTextItem),
		Quantity:            row.Quantity,
		IsSPR:               row.IsSPR,
		Status:              domain.Status(row.Status),
		SubmittedAt:         submittedAt,
		StatusChangedAt:     changedAt,
		UnreadForManager:    row.NewCommentForManager,
		UnreadForRequestor:  row.NewCommentForRequestor,
	}, nil
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
