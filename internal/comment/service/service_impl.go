package service

import (
	"context"
	"strings"
	"time"

	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/comment/domain"
	obsmetrics "github.com/smallbiznis/stockroom/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Repo    domain.Repository
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	repo    domain.Repository
	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("comment.service"),
		clock:   p.Clock,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

// Post appends a comment and flags the thread unread for the other side in
// the same transaction.
func (s *Service) Post(ctx context.Context, req domain.PostCommentRequest) (domain.Comment, error) {
	if req.RequestID <= 0 {
		return domain.Comment{}, domain.ErrInvalidRequestID
	}
	role, err := domain.ParseRole(string(req.Role))
	if err != nil {
		return domain.Comment{}, err
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return domain.Comment{}, domain.ErrInvalidText
	}

	comment := domain.Comment{
		RequestID:  req.RequestID,
		AuthorRole: role,
		AuthorName: strings.TrimSpace(req.AuthorName),
		Text:       text,
		CreatedAt:  s.clock.Now().UTC().Truncate(time.Second),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureRequest(ctx, tx, req.RequestID); err != nil {
			return err
		}
		if err := s.repo.Insert(ctx, tx, &comment); err != nil {
			return err
		}
		if err := s.repo.SetUnread(ctx, tx, req.RequestID, role.Opposite(), true); err != nil {
			return err
		}
		if req.MarkOwnRead {
			return s.repo.SetUnread(ctx, tx, req.RequestID, role, false)
		}
		return nil
	})
	if err != nil {
		return domain.Comment{}, err
	}

	s.metrics.RecordComment(ctx, string(role))
	return comment, nil
}

func (s *Service) MarkRead(ctx context.Context, requestID int64, role domain.Role) error {
	if requestID <= 0 {
		return domain.ErrInvalidRequestID
	}
	parsed, err := domain.ParseRole(string(role))
	if err != nil {
		return err
	}
	if err := s.ensureRequest(ctx, s.db, requestID); err != nil {
		return err
	}
	return s.repo.SetUnread(ctx, s.db, requestID, parsed, false)
}

func (s *Service) List(ctx context.Context, requestID int64) ([]domain.Comment, error) {
	if requestID <= 0 {
		return nil, domain.ErrInvalidRequestID
	}
	if err := s.ensureRequest(ctx, s.db, requestID); err != nil {
		return nil, err
	}
	return s.repo.ListByRequest(ctx, s.db, requestID)
}

func (s *Service) ensureRequest(ctx context.Context, db *gorm.DB, requestID int64) error {
	ok, err := s.repo.RequestExists(ctx, db, requestID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}
