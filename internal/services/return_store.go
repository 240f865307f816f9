package services

import (
	"context"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/amberline/internal/models"
)

// ReturnStore is the persistence adapter for return requests. Reads that
// carry the order along fetch it (and its line items) as separate keyed
// queries rather than a join, degrading to a bare request when the order
// side is unavailable.
type ReturnStore struct {
	db     *gorm.DB
	orders *OrderResolver
}

// NewReturnStore constructs ReturnStore.
func NewReturnStore(db *gorm.DB, orders *OrderResolver) *ReturnStore {
	return &ReturnStore{db: db, orders: orders}
}

// ReturnFilter narrows list reads.
type ReturnFilter struct {
	Status      string
	OrderNumber string
	UserID      *uuid.UUID
}

// Insert persists a new return request.
func (s *ReturnStore) Insert(ctx context.Context, req *models.ReturnRequest) error {
	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return storeErr("returns.insert", err)
	}
	return nil
}

// FindByID loads a single request together with its requester and order.
func (s *ReturnStore) FindByID(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error) {
	var req models.ReturnRequest
	err := retryRead(func() error {
		return s.db.WithContext(ctx).Preload("User").First(&req, "id = ?", id).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, storeErr("returns.find", err)
	}

	s.attachOrder(ctx, &req)
	return &req, nil
}

// FindExistingPending returns the pending request for an order number, if
// one exists. The comparison is case-insensitive. A nil result with nil
// error means no pending request.
func (s *ReturnStore) FindExistingPending(ctx context.Context, orderNumber string) (*models.ReturnRequest, error) {
	var req models.ReturnRequest
	err := retryRead(func() error {
		return s.db.WithContext(ctx).
			Where("LOWER(order_number) = LOWER(?) AND status = ?", orderNumber, models.ReturnStatusPending).
			First(&req).Error
	})
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("returns.pending", err)
	}
	return &req, nil
}

// ListFiltered returns requests newest-first, optionally narrowed by status,
// order number and owning user.
func (s *ReturnStore) ListFiltered(ctx context.Context, filter ReturnFilter) ([]models.ReturnRequest, error) {
	query := s.db.WithContext(ctx).Model(&models.ReturnRequest{}).Preload("User")

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OrderNumber != "" {
		query = query.Where("LOWER(order_number) = LOWER(?)", filter.OrderNumber)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var requests []models.ReturnRequest
	err := retryRead(func() error {
		return query.Order("created_at desc").Find(&requests).Error
	})
	if err != nil {
		return nil, storeErr("returns.list", err)
	}

	for i := range requests {
		s.attachOrder(ctx, &requests[i])
	}
	return requests, nil
}

// Update applies a partial field set and returns the fresh record.
func (s *ReturnStore) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.ReturnRequest, error) {
	result := s.db.WithContext(ctx).Model(&models.ReturnRequest{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, storeErr("returns.update", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.FindByID(ctx, id)
}

// Delete removes a request permanently. Deleting an absent request reports
// ErrNotFound.
func (s *ReturnStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.ReturnRequest{}, "id = ?", id)
	if result.Error != nil {
		return storeErr("returns.delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// retryRead runs an idempotent read once more on infrastructure failure.
// Not-found is an answer, not a failure, and is never retried. Writes go
// through unretried; they are not idempotent.
func retryRead(fn func() error) error {
	err := fn()
	if err == nil || err == gorm.ErrRecordNotFound {
		return err
	}
	return fn()
}

func (s *ReturnStore) attachOrder(ctx context.Context, req *models.ReturnRequest) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "id = ?", req.OrderID).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Printf("[Returns] order fetch failed for request %s: %v", req.ID, err)
		}
		return
	}
	order.Items = s.orders.LoadItems(ctx, order.ID)
	req.Order = &order
}
