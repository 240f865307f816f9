package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/amberline/internal/models"
)

// ReturnNotifier receives persisted return events. Implementations run
// best-effort; the orchestrator never waits on them.
type ReturnNotifier interface {
	ReturnRequestCreated(req *models.ReturnRequest, order *models.Order, caller Caller)
	ReturnRequestTransitioned(req *models.ReturnRequest, target string)
}

// ReturnService composes the resolver, store, lifecycle and dispatcher into
// the public return request operations. It holds no state between calls.
type ReturnService struct {
	store     *ReturnStore
	orders    *OrderResolver
	lifecycle *Lifecycle
	notifier  ReturnNotifier
	timeout   time.Duration
}

// NewReturnService constructs ReturnService. A zero timeout disables the
// per-operation store deadline.
func NewReturnService(store *ReturnStore, orders *OrderResolver, lifecycle *Lifecycle, notifier ReturnNotifier, timeout time.Duration) *ReturnService {
	return &ReturnService{
		store:     store,
		orders:    orders,
		lifecycle: lifecycle,
		notifier:  notifier,
		timeout:   timeout,
	}
}

// CreateReturnInput is the caller-supplied content of a new request.
type CreateReturnInput struct {
	OrderNumber string   `json:"order_number"`
	Reason      string   `json:"reason"`
	Photos      []string `json:"photos"`
}

// Create files a return request against a prior order. Guests are allowed;
// authenticated callers may only file against their own orders. At most one
// pending request may exist per order at a time.
func (s *ReturnService) Create(ctx context.Context, caller Caller, input CreateReturnInput) (*models.ReturnRequest, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, &ValidationError{Field: "reason", Message: "is required"}
	}

	order, err := s.orders.Resolve(ctx, input.OrderNumber)
	if err != nil {
		return nil, err
	}

	if err := canCreateFor(caller, order); err != nil {
		return nil, err
	}

	existing, err := s.store.FindExistingPending(ctx, order.OrderNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicatePending
	}

	photos := input.Photos
	if photos == nil {
		photos = []string{}
	}

	req := &models.ReturnRequest{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Reason:      reason,
		Photos:      photos,
		Status:      models.ReturnStatusPending,
	}
	if caller.Authenticated {
		id := caller.ID
		req.UserID = &id
	}

	if err := s.store.Insert(ctx, req); err != nil {
		return nil, err
	}

	req.Order = order
	go s.notifier.ReturnRequestCreated(req, order, caller)

	return req, nil
}

// List returns requests visible to the caller, newest-first. Staff see all;
// customers see their own.
func (s *ReturnService) List(ctx context.Context, caller Caller, filter ReturnFilter) ([]models.ReturnRequest, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	scope, err := listScope(caller)
	if err != nil {
		return nil, err
	}
	filter.UserID = scope

	return s.store.ListFiltered(ctx, filter)
}

// Get returns a single request if the caller may see it.
func (s *ReturnService) Get(ctx context.Context, caller Caller, id uuid.UUID) (*models.ReturnRequest, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	req, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := canView(caller, req); err != nil {
		return nil, err
	}

	return req, nil
}

// Transition moves a request to a new status. Staff only. The lifecycle
// computes the update set, including the one-time RA number issuance on
// first approval; notification dispatch happens after the write and never
// affects the result.
func (s *ReturnService) Transition(ctx context.Context, caller Caller, id uuid.UUID, target string, fields TransitionFields) (*models.ReturnRequest, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	if err := canManage(caller); err != nil {
		return nil, err
	}

	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates, err := s.lifecycle.Apply(ctx, current, target, fields)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}

	go s.notifier.ReturnRequestTransitioned(updated, updated.Status)

	return updated, nil
}

// Delete removes a request permanently. Staff only, irreversible.
func (s *ReturnService) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	if err := canManage(caller); err != nil {
		return err
	}

	return s.store.Delete(ctx, id)
}

func (s *ReturnService) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}
