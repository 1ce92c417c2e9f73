package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/stockroom/internal/setting/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("setting.service"),
		repo: p.Repo,
	}
}

func (s *Service) Get(ctx context.Context, key, def string) (string, error) {
	value, ok, err := s.Lookup(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return def, nil
	}
	return value, nil
}

func (s *Service) Lookup(ctx context.Context, key string) (string, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, domain.ErrInvalidKey
	}
	return s.repo.Find(ctx, s.db, key)
}

// Set upserts key. A nil db writes outside any caller transaction.
func (s *Service) Set(ctx context.Context, db *gorm.DB, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrInvalidKey
	}
	if db == nil {
		db = s.db
	}
	return s.repo.Upsert(ctx, db, key, value)
}
