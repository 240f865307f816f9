package services

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/amberline/internal/database"
	"github.com/example/amberline/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()

	user := models.User{
		FirstName:   "Test",
		LastName:    "User",
		Email:       email,
		DisplayName: "Test User",
		Role:        role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedOrder(t *testing.T, db *gorm.DB, orderNumber string, userID *uuid.UUID, shippingEmail string) *models.Order {
	t.Helper()

	order := models.Order{
		UserID:        userID,
		OrderNumber:   orderNumber,
		Status:        "shipped",
		PlacedAt:      time.Now().Add(-72 * time.Hour),
		Currency:      "USD",
		ShippingName:  "Jordan Reyes",
		ShippingEmail: shippingEmail,
		Items: []models.OrderItem{
			{ProductName: "Amber Eau de Parfum 50ml", Quantity: 1, UnitPrice: 89, LineTotal: 89},
			{ProductName: "Cedar Soap Bar", Quantity: 2, UnitPrice: 8, LineTotal: 16},
		},
	}
	order.Subtotal = 105
	order.TotalAmount = 105
	require.NoError(t, db.Create(&order).Error)
	return &order
}

// recordingNotifier captures dispatched events so tests can wait for the
// fire-and-forget goroutine to land.
type recordingNotifier struct {
	mu           sync.Mutex
	created      []createdEvent
	transitioned []transitionedEvent
}

type createdEvent struct {
	req    *models.ReturnRequest
	order  *models.Order
	caller Caller
}

type transitionedEvent struct {
	req    *models.ReturnRequest
	target string
}

func (n *recordingNotifier) ReturnRequestCreated(req *models.ReturnRequest, order *models.Order, caller Caller) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, createdEvent{req: req, order: order, caller: caller})
}

func (n *recordingNotifier) ReturnRequestTransitioned(req *models.ReturnRequest, target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.transitioned = append(n.transitioned, transitionedEvent{req: req, target: target})
}

func (n *recordingNotifier) createdCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.created)
}

func (n *recordingNotifier) lastCreated() createdEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.created[len(n.created)-1]
}

func (n *recordingNotifier) transitionedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.transitioned)
}

func newTestService(t *testing.T) (*ReturnService, *gorm.DB, *recordingNotifier) {
	t.Helper()

	db := newTestDB(t)
	resolver := NewOrderResolver(db)
	store := NewReturnStore(db, resolver)
	lifecycle := NewLifecycle(NewRANumberGenerator(db))
	notifier := &recordingNotifier{}
	service := NewReturnService(store, resolver, lifecycle, notifier, 5*time.Second)
	return service, db, notifier
}
