package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	activitydomain "github.com/smallbiznis/stockroom/internal/activity/domain"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	obsmetrics "github.com/smallbiznis/stockroom/internal/observability/metrics"
	"github.com/smallbiznis/stockroom/internal/request/domain"
	"github.com/smallbiznis/stockroom/pkg/search"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Cfg         config.Config
	Departments *config.DepartmentsHolder
	Clock       clock.Clock
	Repo        domain.Repository
	Activity    activitydomain.Service
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	overdueDays int
	departments *config.DepartmentsHolder
	clock       clock.Clock
	repo        domain.Repository
	activity    activitydomain.Service
	metrics     *obsmetrics.Metrics
	newBatchID  func() string
}

func New(p Params) domain.Service {
	overdue := p.Cfg.OverdueDays
	if overdue <= 0 {
		overdue = 14
	}
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("request.service"),
		overdueDays: overdue,
		departments: p.Departments,
		clock:       p.Clock,
		repo:        p.Repo,
		activity:    p.Activity,
		metrics:     p.Metrics,
		newBatchID:  uuid.NewString,
	}
}

// SubmitBatch writes every item under one new batch id, all or nothing.
func (s *Service) SubmitBatch(ctx context.Context, req domain.SubmitBatchRequest) (domain.SubmitBatchResult, error) {
	department, err := s.resolveDepartment(req.Department)
	if err != nil {
		return domain.SubmitBatchResult{}, err
	}
	if len(req.Items) == 0 {
		return domain.SubmitBatchResult{}, domain.ErrEmptyBatch
	}

	items := make([]domain.ItemSpec, len(req.Items))
	for i, item := range req.Items {
		item.MaterialDescription = strings.TrimSpace(item.MaterialDescription)
		item.ExternalCode = strings.TrimSpace(item.ExternalCode)
		item.FreeTextDescription = strings.TrimSpace(item.FreeTextDescription)
		if err := item.Validate(); err != nil {
			return domain.SubmitBatchResult{}, fmt.Errorf("items[%d]: %w", i, err)
		}
		items[i] = item
	}

	batchID := s.newBatchID()
	ids := make([]int64, 0, len(items))
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			now := s.clock.Now()
			row := domain.Request{
				BatchID:             batchID,
				Department:          department,
				ItemType:            item.ItemType,
				MaterialDescription: item.MaterialDescription,
				ExternalCode:        item.ExternalCode,
				FreeTextDescription: item.FreeTextDescription,
				Quantity:            item.Quantity,
				IsSPR:               item.IsSPR,
				Status:              domain.StatusNew,
				SubmittedAt:         now,
				StatusChangedAt:     now,
			}
			if err := s.repo.Insert(ctx, tx, &row); err != nil {
				return err
			}
			ids = append(ids, row.ID)
		}
		return s.activity.Record(ctx, tx, activitydomain.RecordRequest{
			Action:     activitydomain.ActionBatchSubmitted,
			TargetType: "batch",
			TargetID:   batchID,
			Metadata: map[string]any{
				"department": department,
				"lines":      len(ids),
			},
		})
	})
	if err != nil {
		s.log.Error("submit batch failed", zap.String("department", department), zap.Error(err))
		return domain.SubmitBatchResult{}, err
	}

	s.metrics.RecordRequestsSubmitted(ctx, department, len(ids))
	return domain.SubmitBatchResult{BatchID: batchID, RequestIDs: ids}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (domain.Request, error) {
	if req.ID <= 0 {
		return domain.Request{}, domain.ErrInvalidID
	}
	to, err := domain.ParseStatus(req.Status)
	if err != nil {
		return domain.Request{}, err
	}

	var updated domain.Request
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByID(ctx, tx, req.ID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		if !domain.CanTransition(current.Status, to) {
			return &domain.TransitionError{RequestID: current.ID, From: current.Status, To: to}
		}

		now := s.clock.Now()
		if _, err := s.repo.UpdateStatus(ctx, tx, current.ID, to, now); err != nil {
			return err
		}
		updated = *current
		updated.Status = to
		updated.StatusChangedAt = now.UTC().Truncate(time.Second)

		return s.activity.Record(ctx, tx, activitydomain.RecordRequest{
			Action:     activitydomain.ActionStatusChanged,
			TargetType: "request",
			TargetID:   strconv.FormatInt(current.ID, 10),
			Metadata:   map[string]any{"from": string(current.Status), "to": string(to)},
		})
	})
	if err != nil {
		return domain.Request{}, err
	}

	s.metrics.RecordStatusChange(ctx, string(to), 1)
	return updated, nil
}

// UpdateStatusForBatch validates every row of the batch before touching any;
// one illegal row rejects the whole update. A SingleKey addresses the one
// legacy row without a batch id.
func (s *Service) UpdateStatusForBatch(ctx context.Context, req domain.UpdateBatchStatusRequest) ([]domain.Request, error) {
	batchID := strings.TrimSpace(req.BatchID)
	if batchID == "" {
		return nil, domain.ErrInvalidBatchID
	}
	if id, ok := domain.ParseSingleKey(batchID); ok {
		return s.updateSingle(ctx, id, req.Status)
	}
	to, err := domain.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var updated []domain.Request
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.repo.ListByBatch(ctx, tx, batchID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return domain.ErrNotFound
		}
		for _, row := range rows {
			if !domain.CanTransition(row.Status, to) {
				return &domain.TransitionError{RequestID: row.ID, From: row.Status, To: to}
			}
		}

		now := s.clock.Now()
		if _, err := s.repo.UpdateBatchStatus(ctx, tx, batchID, to, now); err != nil {
			return err
		}
		for i := range rows {
			rows[i].Status = to
			rows[i].StatusChangedAt = now.UTC().Truncate(time.Second)
		}
		updated = rows

		return s.activity.Record(ctx, tx, activitydomain.RecordRequest{
			Action:     activitydomain.ActionBatchStatusChanged,
			TargetType: "batch",
			TargetID:   batchID,
			Metadata:   map[string]any{"to": string(to), "lines": len(rows)},
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordStatusChange(ctx, string(to), len(updated))
	return updated, nil
}

// CountsByStatusForDept returns all five statuses in display order with raw
// overdue counts; hiding overdue for terminal statuses is left to callers.
func (s *Service) updateSingle(ctx context.Context, id int64, status string) ([]domain.Request, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.BatchID != "" {
		return nil, domain.ErrNotFound
	}
	updated, err := s.UpdateStatus(ctx, domain.UpdateStatusRequest{ID: id, Status: status})
	if err != nil {
		return nil, err
	}
	return []domain.Request{updated}, nil
}

func (s *Service) CountsByStatusForDept(ctx context.Context, department string) ([]domain.StatusCount, error) {
	dept, err := s.resolveDepartment(department)
	if err != nil {
		return nil, err
	}
	raw, err := s.repo.CountByStatus(ctx, s.db, dept, s.clock.Now(), s.overdueDays)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[domain.Status]domain.RawStatusCount, len(raw))
	for _, r := range raw {
		byStatus[domain.Status(r.Status)] = r
	}
	out := make([]domain.StatusCount, 0, len(domain.Statuses))
	for _, st := range domain.Statuses {
		r := byStatus[st]
		out = append(out, domain.StatusCount{
			Status:  st,
			Label:   st.Label(),
			Total:   r.Total,
			Overdue: r.Overdue,
		})
	}
	return out, nil
}

func (s *Service) ListForDepartment(ctx context.Context, department, status string) ([]domain.Request, error) {
	dept, err := s.resolveDepartment(department)
	if err != nil {
		return nil, err
	}
	filter := domain.ListFilter{Department: dept}
	if strings.TrimSpace(status) != "" {
		st, err := domain.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) ListForManager(ctx context.Context, f domain.ManagerFilter) ([]domain.Request, error) {
	filter := domain.ListFilter{UnreadForManager: f.OnlyUnread, NewFirst: true}
	if strings.TrimSpace(f.Department) != "" {
		dept, err := s.resolveDepartment(f.Department)
		if err != nil {
			return nil, err
		}
		filter.Department = dept
	}
	if strings.TrimSpace(f.Status) != "" {
		st, err := domain.ParseStatus(f.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}

	rows, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	tokens := search.Tokens(f.Query)
	if len(tokens) == 0 {
		return rows, nil
	}
	out := rows[:0]
	for _, r := range rows {
		text := r.MaterialDescription + " " + r.ExternalCode + " " + r.FreeTextDescription
		if search.ContainsAll(text, tokens) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Service) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	newCount, err := s.repo.CountByStatusAll(ctx, s.db, domain.StatusNew)
	if err != nil {
		return domain.Dashboard{}, err
	}
	unread, err := s.repo.CountUnreadForManager(ctx, s.db)
	if err != nil {
		return domain.Dashboard{}, err
	}
	return domain.Dashboard{NewRequests: newCount, UnreadComments: unread}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (domain.Request, error) {
	if id <= 0 {
		return domain.Request{}, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Request{}, err
	}
	if item == nil {
		return domain.Request{}, domain.ErrNotFound
	}
	return *item, nil
}

// resolveDepartment accepts a configured department name or slug and returns the name.
func (s *Service) resolveDepartment(value string) (string, error) {
	dept, ok := s.departments.Get().Find(value)
	if !ok {
		return "", domain.ErrInvalidDepartment
	}
	return dept.Name, nil
}
