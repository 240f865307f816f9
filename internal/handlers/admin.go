package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/amberline/internal/middleware"
	"github.com/example/amberline/internal/models"
	"github.com/example/amberline/internal/utils"
)

// AdminHandler manages admin-only endpoints.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

func requireStaff(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	if !user.IsStaff() {
		return fiber.NewError(fiber.StatusForbidden, "forbidden")
	}
	return nil
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	if err := requireStaff(c); err != nil {
		return err
	}

	var totalUsers int64
	if err := h.db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return err
	}

	var totalOrders int64
	if err := h.db.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		return err
	}

	var totalReturns int64
	if err := h.db.Model(&models.ReturnRequest{}).Count(&totalReturns).Error; err != nil {
		return err
	}

	// Return requests by status
	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var statusCounts []statusCount
	if err := h.db.Model(&models.ReturnRequest{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return err
	}

	returnsByStatus := make(map[string]int64)
	for _, sc := range statusCounts {
		returnsByStatus[sc.Status] = sc.Count
	}

	var pendingReturns int64
	if err := h.db.Model(&models.ReturnRequest{}).
		Where("status = ?", models.ReturnStatusPending).
		Count(&pendingReturns).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_users":       totalUsers,
			"total_orders":      totalOrders,
			"total_returns":     totalReturns,
			"pending_returns":   pendingReturns,
			"returns_by_status": returnsByStatus,
		},
	})
}

// ListAllOrders returns all orders with pagination, filtering, and user info.
func (h *AdminHandler) ListAllOrders(c *fiber.Ctx) error {
	if err := requireStaff(c); err != nil {
		return err
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if search := c.Query("search"); search != "" {
		query = query.Where(
			"order_number ILIKE ? OR shipping_email ILIKE ?",
			"%"+search+"%", "%"+search+"%",
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("User").
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

// RecentReturnRequests returns the most recent 5 return requests for the
// dashboard.
func (h *AdminHandler) RecentReturnRequests(c *fiber.Ctx) error {
	if err := requireStaff(c); err != nil {
		return err
	}

	var requests []models.ReturnRequest
	if err := h.db.Preload("User").
		Order("created_at desc").
		Limit(5).
		Find(&requests).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    requests,
	})
}
