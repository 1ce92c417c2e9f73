package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockroom/internal/activity/domain"
	"github.com/smallbiznis/stockroom/internal/clock"
	obscontext "github.com/smallbiznis/stockroom/internal/observability/context"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("activity.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, db *gorm.DB, req domain.RecordRequest) error {
	action := strings.TrimSpace(req.Action)
	if action == "" {
		return domain.ErrInvalidAction
	}
	targetType := strings.TrimSpace(req.TargetType)
	if targetType == "" {
		targetType = "unknown"
	}

	role, name := obscontext.ActorFromContext(ctx)
	if role == "" {
		role = "system"
	}

	payload := datatypes.JSONMap{}
	for key, value := range req.Metadata {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if isSecretKey(key) {
			value = maskToken
		}
		payload[key] = value
	}

	entry := domain.ActivityLog{
		ID:         s.genID.Generate(),
		ActorRole:  role,
		ActorName:  name,
		Action:     action,
		TargetType: targetType,
		TargetID:   strings.TrimSpace(req.TargetID),
		Metadata:   payload,
		RequestID:  obscontext.RequestIDFromContext(ctx),
		CreatedAt:  s.clock.Now(),
	}

	if db == nil {
		db = s.db
	}
	if err := s.repo.Insert(ctx, db, &entry); err != nil {
		s.log.Warn("failed to write activity log", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListActivityRequest) (domain.ListActivityResponse, error) {
	var before snowflake.ID
	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return domain.ListActivityResponse{}, domain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(cursor.ID))
		if err != nil || id == 0 {
			return domain.ListActivityResponse{}, domain.ErrInvalidPageToken
		}
		before = id
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 250 {
		pageSize = 250
	}

	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Action:     req.Action,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		BeforeID:   before,
		Limit:      pageSize,
	})
	if err != nil {
		return domain.ListActivityResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(entry *domain.ActivityLog) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: entry.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if len(items) > pageSize {
		items = items[:pageSize]
	}

	entries := make([]domain.ActivityLog, 0, len(items))
	for _, item := range items {
		entries = append(entries, *item)
	}
	return domain.ListActivityResponse{PageInfo: *pageInfo, Entries: entries}, nil
}

const maskToken = "****"

func isSecretKey(key string) bool {
	key = strings.ToLower(key)
	return strings.Contains(key, "pin") || strings.Contains(key, "secret") || strings.Contains(key, "token")
}
