package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/amberline/internal/middleware"
	"github.com/example/amberline/internal/models"
	"github.com/example/amberline/internal/utils"
)

// OrderHandler manages order endpoints.
type OrderHandler struct {
	db *gorm.DB
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB) *OrderHandler {
	return &OrderHandler{db: db}
}

type orderItemRequest struct {
	ProductID        string  `json:"product_id"`
	ProductVariantID string  `json:"product_variant_id"`
	ProductName      string  `json:"product_name"`
	VariantLabel     string  `json:"variant_label"`
	ImageURL         string  `json:"image_url"`
	Quantity         int     `json:"quantity"`
	UnitPrice        float64 `json:"unit_price"`
	LineTotal        float64 `json:"line_total"`
}

type createOrderRequest struct {
	Currency            string             `json:"currency"`
	Items               []orderItemRequest `json:"items"`
	ShippingName        string             `json:"shipping_name"`
	ShippingEmail       string             `json:"shipping_email"`
	ShippingAddressLine string             `json:"shipping_address_line"`
	ShippingCity        string             `json:"shipping_city"`
	ShippingFee         float64            `json:"shipping_fee"`
	TotalAmount         float64            `json:"total_amount"`
	Notes               string             `json:"notes"`
}

// CreateOrder places an order. The route sits behind the optional auth
// middleware: authenticated users get the order attached to their account,
// guests must supply shipping contact details instead.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if len(req.Items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "order must contain at least one item")
	}

	order := models.Order{
		Currency:            req.Currency,
		ShippingName:        req.ShippingName,
		ShippingEmail:       req.ShippingEmail,
		ShippingAddressLine: req.ShippingAddressLine,
		ShippingCity:        req.ShippingCity,
		ShippingFee:         req.ShippingFee,
		Notes:               req.Notes,
		Status:              "pending",
		PlacedAt:            time.Now(),
	}

	if user, ok := middleware.CurrentUser(c); ok {
		id := user.ID
		order.UserID = &id
		if order.ShippingName == "" {
			order.ShippingName = user.FullName()
		}
		if order.ShippingEmail == "" {
			order.ShippingEmail = user.Email
		}
	} else if order.ShippingEmail == "" {
		return fiber.NewError(fiber.StatusBadRequest, "guest orders require a shipping email")
	}

	if order.Currency == "" {
		order.Currency = "USD"
	}

	var subtotal float64
	for _, item := range req.Items {
		lineTotal := item.LineTotal
		if lineTotal == 0 {
			lineTotal = item.UnitPrice * float64(item.Quantity)
		}

		orderItem := models.OrderItem{
			ProductName:  item.ProductName,
			VariantLabel: item.VariantLabel,
			ImageURL:     item.ImageURL,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			LineTotal:    lineTotal,
		}

		if item.ProductID != "" {
			if id, err := uuid.Parse(item.ProductID); err == nil {
				orderItem.ProductID = &id
			}
		}
		if item.ProductVariantID != "" {
			if id, err := uuid.Parse(item.ProductVariantID); err == nil {
				orderItem.ProductVariantID = &id
			}
		}

		subtotal += orderItem.LineTotal
		order.Items = append(order.Items, orderItem)
	}

	order.Subtotal = subtotal
	order.TotalAmount = req.TotalAmount
	if order.TotalAmount == 0 {
		order.TotalAmount = subtotal + order.ShippingFee
	}

	if order.OrderNumber == "" {
		order.OrderNumber = h.generateOrderNumber()
	}

	if err := h.db.Create(&order).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":           order.ID,
			"order_number": order.OrderNumber,
			"status":       order.Status,
			"placed_at":    order.PlacedAt,
			"total":        order.TotalAmount,
			"currency":     order.Currency,
		},
	})
}

// ListOrders returns orders for the authenticated user.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Where("user_id = ?", user.ID).Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order for the authenticated user.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Items").
		First(&order, "id = ? AND user_id = ?", id, user.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

func (h *OrderHandler) generateOrderNumber() string {
	return fmt.Sprintf("ORD-%d", time.Now().UnixNano()%1000000000)
}
