package service

import (
	"context"
	"strconv"
	"strings"

	activitydomain "github.com/smallbiznis/stockroom/internal/activity/domain"
	"github.com/smallbiznis/stockroom/internal/material/domain"
	obsmetrics "github.com/smallbiznis/stockroom/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     domain.Repository
	Activity activitydomain.Service
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	activity activitydomain.Service
	metrics  *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("material.service"),
		repo:     p.Repo,
		activity: p.Activity,
		metrics:  p.Metrics,
	}
}

func (s *Service) Add(ctx context.Context, req domain.AddMaterialRequest) (domain.AddMaterialResult, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return domain.AddMaterialResult{}, domain.ErrInvalidDescription
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return domain.AddMaterialResult{}, domain.ErrInvalidCode
	}

	var inserted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		inserted, err = s.repo.Insert(ctx, tx, description, code)
		if err != nil || !inserted {
			return err
		}
		return s.activity.Record(ctx, tx, activitydomain.RecordRequest{
			Action:     activitydomain.ActionMaterialAdded,
			TargetType: "material",
			TargetID:   code,
			Metadata:   map[string]any{"description": description},
		})
	})
	if err != nil {
		return domain.AddMaterialResult{}, err
	}
	return domain.AddMaterialResult{Inserted: inserted}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListMaterialsRequest) ([]domain.Material, error) {
	materials, err := s.repo.ListActive(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return domain.FilterCatalog(materials, req.Query), nil
}

func (s *Service) GetActive(ctx context.Context, id int64) (domain.Material, error) {
	if id <= 0 {
		return domain.Material{}, domain.ErrInvalidID
	}
	item, err := s.repo.FindActiveByID(ctx, s.db, id)
	if err != nil {
		return domain.Material{}, err
	}
	if item == nil {
		return domain.Material{}, domain.ErrNotFound
	}
	return *item, nil
}

// Import adds every parsed row in one transaction; duplicates count as skipped.
func (s *Service) Import(ctx context.Context, req domain.ImportRequest) (domain.ImportResult, error) {
	rows, err := parseImport(req.Filename, req.Content)
	if err != nil {
		s.log.Info("import rejected", zap.String("filename", req.Filename), zap.Error(err))
		return domain.ImportResult{}, err
	}

	var result domain.ImportResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			inserted, err := s.repo.Insert(ctx, tx, row.Description, row.Code)
			if err != nil {
				return err
			}
			if inserted {
				result.Added++
			} else {
				result.Skipped++
			}
		}
		return s.activity.Record(ctx, tx, activitydomain.RecordRequest{
			Action:     activitydomain.ActionCatalogImported,
			TargetType: "catalog",
			TargetID:   req.Filename,
			Metadata: map[string]any{
				"added":   strconv.Itoa(result.Added),
				"skipped": strconv.Itoa(result.Skipped),
			},
		})
	})
	if err != nil {
		return domain.ImportResult{}, err
	}

	s.metrics.RecordImport(ctx, result.Added, result.Skipped)
	s.log.Info("catalog imported",
		zap.String("filename", req.Filename),
		zap.Int("added", result.Added),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *Service) Template() []byte {
	return csvTemplate()
}

func (s *Service) TemplateXLSX() ([]byte, error) {
	return xlsxTemplate()
}
