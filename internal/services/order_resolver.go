package services

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/amberline/internal/models"
)

// OrderResolver finds the order behind a caller-supplied order number.
// Customer input is unreliable (casing, stray whitespace, guest typos), so
// the lookup tries several comparison forms before giving up, and keeps
// "no such order" separate from "the store is broken".
type OrderResolver struct {
	db      *gorm.DB
	findOne func(ctx context.Context, clause, arg string) (*models.Order, error)
}

// NewOrderResolver constructs OrderResolver.
func NewOrderResolver(db *gorm.DB) *OrderResolver {
	r := &OrderResolver{db: db}
	r.findOne = r.queryOrder
	return r
}

func (r *OrderResolver) queryOrder(ctx context.Context, clause, arg string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where(clause, arg).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// Resolve looks up an order by its number. Strategies run in a fixed order
// and the first match wins. A record-not-found on one strategy never aborts
// the rest; a real store failure is remembered but later strategies still get
// their chance. Only when nothing matched is the captured failure (or
// ErrNotFound) returned.
func (r *OrderResolver) Resolve(ctx context.Context, rawOrderNumber string) (*models.Order, error) {
	trimmed := strings.TrimSpace(rawOrderNumber)
	if trimmed == "" {
		return nil, &ValidationError{Field: "order_number", Message: "is required"}
	}
	normalized := strings.ToUpper(trimmed)

	strategies := []struct {
		name  string
		query string
		arg   string
	}{
		{"case-insensitive", "LOWER(order_number) = LOWER(?)", trimmed},
		{"normalized", "order_number = ?", normalized},
		{"exact", "order_number = ?", trimmed},
	}

	var firstFailure error
	for _, strategy := range strategies {
		order, err := r.findOne(ctx, strategy.query, strategy.arg)
		if err == nil {
			order.Items = r.LoadItems(ctx, order.ID)
			return order, nil
		}
		if err == gorm.ErrRecordNotFound {
			continue
		}
		if firstFailure == nil {
			firstFailure = storeErr("orders."+strategy.name, err)
		}
	}

	if firstFailure != nil {
		return nil, firstFailure
	}
	return nil, ErrNotFound
}

// LoadItems fetches the line items for an order. The items live behind a
// separate keyed query; if it fails the order is still usable, just without
// its item list.
func (r *OrderResolver) LoadItems(ctx context.Context, orderID uuid.UUID) []models.OrderItem {
	var items []models.OrderItem
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		log.Printf("[Returns] line item fetch failed for order %s: %v", orderID, err)
		return nil
	}
	return items
}
