package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/stockroom/internal/cart/domain"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	materialdomain "github.com/smallbiznis/stockroom/internal/material/domain"
	requestdomain "github.com/smallbiznis/stockroom/internal/request/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log         *zap.Logger
	Clock       clock.Clock
	Store       domain.Store
	Departments *config.DepartmentsHolder
	Materials   materialdomain.Service
	Requests    requestdomain.Service
}

// lockRetry is how often a waiting mutation polls a held cart lock.
const lockRetry = 10 * time.Millisecond

type Service struct {
	log         *zap.Logger
	clock       clock.Clock
	store       domain.Store
	departments *config.DepartmentsHolder
	materials   materialdomain.Service
	requests    requestdomain.Service
	lockWait    time.Duration
}

func New(p Params) domain.Service {
	return &Service{
		log:         p.Log.Named("cart.service"),
		clock:       p.Clock,
		store:       p.Store,
		departments: p.Departments,
		materials:   p.Materials,
		requests:    p.Requests,
		lockWait:    2 * time.Second,
	}
}

func (s *Service) Get(ctx context.Context, cartID string) (domain.Cart, error) {
	if err := validateCartID(cartID); err != nil {
		return domain.Cart{}, err
	}
	cart, err := s.store.Load(ctx, cartID)
	if err != nil {
		return domain.Cart{}, err
	}
	if cart.Items == nil {
		cart.Items = []domain.Item{}
	}
	return cart, nil
}

func (s *Service) SetDepartment(ctx context.Context, cartID, department string) (domain.SetDepartmentResult, error) {
	if err := validateCartID(cartID); err != nil {
		return domain.SetDepartmentResult{}, err
	}
	dept, ok := s.departments.Get().Find(department)
	if !ok {
		return domain.SetDepartmentResult{}, domain.ErrInvalidDepartment
	}

	release, err := s.acquire(ctx, cartID)
	if err != nil {
		return domain.SetDepartmentResult{}, err
	}
	defer release()

	cart, err := s.store.Load(ctx, cartID)
	if err != nil {
		return domain.SetDepartmentResult{}, err
	}

	cleared := false
	if cart.Department != dept.Name {
		cleared = len(cart.Items) > 0
		cart.Items = nil
		cart.Department = dept.Name
	}
	if err := s.save(ctx, &cart); err != nil {
		return domain.SetDepartmentResult{}, err
	}
	return domain.SetDepartmentResult{Cart: cart, Cleared: cleared}, nil
}

func (s *Service) AddItem(ctx context.Context, cartID string, req domain.AddItemRequest) (domain.Cart, error) {
	if err := validateCartID(cartID); err != nil {
		return domain.Cart{}, err
	}
	item, err := s.buildItem(ctx, req)
	if err != nil {
		return domain.Cart{}, err
	}

	release, err := s.acquire(ctx, cartID)
	if err != nil {
		return domain.Cart{}, err
	}
	defer release()

	cart, err := s.store.Load(ctx, cartID)
	if err != nil {
		return domain.Cart{}, err
	}
	cart.Items = append(cart.Items, item)
	if err := s.save(ctx, &cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

func (s *Service) buildItem(ctx context.Context, req domain.AddItemRequest) (domain.Item, error) {
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return domain.Item{}, domain.ErrInvalidQuantity
	}

	switch requestdomain.ItemType(strings.ToLower(strings.TrimSpace(req.ItemType))) {
	case requestdomain.ItemTypeCatalog:
		if req.MaterialID <= 0 {
			return domain.Item{}, domain.ErrMaterialRequired
		}
		material, err := s.materials.GetActive(ctx, req.MaterialID)
		if err != nil {
			if errors.Is(err, materialdomain.ErrNotFound) {
				return domain.Item{}, domain.ErrMaterialNotFound
			}
			return domain.Item{}, err
		}
		return domain.Item{
			ItemType:            requestdomain.ItemTypeCatalog,
			MaterialID:          material.ID,
			MaterialDescription: material.Description,
			ExternalCode:        material.Code,
			Quantity:            qty,
		}, nil
	case requestdomain.ItemTypeFreeText:
		text := strings.TrimSpace(req.FreeText)
		if text == "" {
			return domain.Item{}, domain.ErrFreeTextRequired
		}
		return domain.Item{
			ItemType:            requestdomain.ItemTypeFreeText,
			FreeTextDescription: text,
			Quantity:            qty,
			IsSPR:               req.IsSPR,
		}, nil
	default:
		return domain.Item{}, domain.ErrInvalidItemType
	}
}

func (s *Service) RemoveItem(ctx context.Context, cartID string, index int) (domain.Cart, error) {
	if err := validateCartID(cartID); err != nil {
		return domain.Cart{}, err
	}
	release, err := s.acquire(ctx, cartID)
	if err != nil {
		return domain.Cart{}, err
	}
	defer release()

	cart, err := s.store.Load(ctx, cartID)
	if err != nil {
		return domain.Cart{}, err
	}
	if index < 0 || index >= len(cart.Items) {
		return domain.Cart{}, domain.ErrInvalidIndex
	}
	cart.Items = append(cart.Items[:index], cart.Items[index+1:]...)
	if err := s.save(ctx, &cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

func (s *Service) Clear(ctx context.Context, cartID string) error {
	if err := validateCartID(cartID); err != nil {
		return err
	}
	release, err := s.acquire(ctx, cartID)
	if err != nil {
		return err
	}
	defer release()

	return s.store.Delete(ctx, cartID)
}

// Submit does not wait for the lock: a second submit of the same cart is
// rejected with ErrCartBusy.
func (s *Service) Submit(ctx context.Context, cartID string) (requestdomain.SubmitBatchResult, error) {
	if err := validateCartID(cartID); err != nil {
		return requestdomain.SubmitBatchResult{}, err
	}

	release, err := s.store.Lock(ctx, cartID)
	if err != nil {
		return requestdomain.SubmitBatchResult{}, err
	}
	defer release()

	cart, err := s.store.Load(ctx, cartID)
	if err != nil {
		return requestdomain.SubmitBatchResult{}, err
	}
	if len(cart.Items) == 0 {
		return requestdomain.SubmitBatchResult{}, domain.ErrEmptyCart
	}
	if cart.Department == "" {
		return requestdomain.SubmitBatchResult{}, domain.ErrDepartmentRequired
	}

	specs := make([]requestdomain.ItemSpec, 0, len(cart.Items))
	for _, item := range cart.Items {
		specs = append(specs, item.Spec())
	}
	res, err := s.requests.SubmitBatch(ctx, requestdomain.SubmitBatchRequest{
		Department: cart.Department,
		Items:      specs,
	})
	if err != nil {
		return requestdomain.SubmitBatchResult{}, err
	}

	cart.Items = nil
	if err := s.save(ctx, &cart); err != nil {
		// batch is committed; only the cart is stale
		s.log.Warn("failed to clear submitted cart", zap.String("batch_id", res.BatchID), zap.Error(err))
	}
	return res, nil
}

// acquire takes the cart lock, polling until lockWait elapses.
func (s *Service) acquire(ctx context.Context, cartID string) (func(), error) {
	deadline := time.Now().Add(s.lockWait)
	for {
		release, err := s.store.Lock(ctx, cartID)
		if !errors.Is(err, domain.ErrCartBusy) {
			return release, err
		}
		if !time.Now().Before(deadline) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetry):
		}
	}
}

func (s *Service) save(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = s.clock.Now()
	if cart.Items == nil {
		cart.Items = []domain.Item{}
	}
	return s.store.Save(ctx, *cart)
}

func validateCartID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrInvalidCartID
	}
	return nil
}
