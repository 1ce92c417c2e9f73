package repository

import (
	"context"

	"github.com/smallbiznis/stockroom/internal/material/domain"
	pkgdb "github.com/smallbiznis/stockroom/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, description, code string) (bool, error) {
	err := db.WithContext(ctx).Exec(
		`INSERT INTO materials (description, oracle, active) VALUES (?, ?, 1)`,
		description,
		code,
	).Error
	if pkgdb.IsDuplicateKeyErr(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]domain.Material, error) {
	var materials []domain.Material
	err := db.WithContext(ctx).Raw(
		`SELECT id, description, oracle, active FROM materials WHERE active = 1 ORDER BY description ASC, id ASC`,
	).Scan(&materials).Error
	if err != nil {
		return nil, err
	}
	return materials, nil
}

func (r *repo) FindActiveByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Material, error) {
	var material domain.Material
	err := db.WithContext(ctx).Raw(
		`SELECT id, description, oracle, active FROM materials WHERE id = ? AND active = 1`,
		id,
	).Scan(&material).Error
	if err != nil {
		return nil, err
	}
	if material.ID == 0 {
		return nil, nil
	}
	return &material, nil
}
