package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/amberline/internal/middleware"
	"github.com/example/amberline/internal/services"
)

// ReturnRequestHandler exposes the return request operations over HTTP.
type ReturnRequestHandler struct {
	service *services.ReturnService
}

// NewReturnRequestHandler constructs ReturnRequestHandler.
func NewReturnRequestHandler(service *services.ReturnService) *ReturnRequestHandler {
	return &ReturnRequestHandler{service: service}
}

// Create files a return request. Guests are allowed, so the route sits
// behind the optional auth middleware.
func (h *ReturnRequestHandler) Create(c *fiber.Ctx) error {
	var input services.CreateReturnInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req, err := h.service.Create(c.UserContext(), callerFrom(c), input)
	if err != nil {
		return mapReturnError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    req,
	})
}

// List returns the requests visible to the caller.
func (h *ReturnRequestHandler) List(c *fiber.Ctx) error {
	filter := services.ReturnFilter{
		Status:      c.Query("status"),
		OrderNumber: c.Query("order_number"),
	}

	requests, err := h.service.List(c.UserContext(), callerFrom(c), filter)
	if err != nil {
		return mapReturnError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    requests,
	})
}

// Get returns a single request.
func (h *ReturnRequestHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	req, err := h.service.Get(c.UserContext(), callerFrom(c), id)
	if err != nil {
		return mapReturnError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": req})
}

type transitionRequest struct {
	Status          string  `json:"status"`
	AdminNotes      *string `json:"admin_notes"`
	RejectionReason *string `json:"rejection_reason"`
	ReturnAddress   *string `json:"return_address"`
}

// Transition moves a request to a new status. Staff only.
func (h *ReturnRequestHandler) Transition(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var body transitionRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if body.Status == "" {
		return fiber.NewError(fiber.StatusBadRequest, "status is required")
	}

	fields := services.TransitionFields{
		AdminNotes:      body.AdminNotes,
		RejectionReason: body.RejectionReason,
		ReturnAddress:   body.ReturnAddress,
	}

	req, err := h.service.Transition(c.UserContext(), callerFrom(c), id, body.Status, fields)
	if err != nil {
		return mapReturnError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": req})
}

// Delete removes a request permanently. Staff only.
func (h *ReturnRequestHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.service.Delete(c.UserContext(), callerFrom(c), id); err != nil {
		return mapReturnError(err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "return request deleted"})
}

// callerFrom builds the explicit caller identity from the request context.
func callerFrom(c *fiber.Ctx) services.Caller {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return services.Guest()
	}
	return services.CallerFromUser(user)
}

// mapReturnError translates the service error taxonomy onto HTTP statuses.
// Store failures become a generic 500 so internal detail never reaches the
// caller.
func mapReturnError(err error) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return fiber.NewError(fiber.StatusBadRequest, verr.Error())
	}

	var serr *services.StoreError
	if errors.As(err, &serr) {
		return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "not found")
	case errors.Is(err, services.ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, "forbidden")
	case errors.Is(err, services.ErrDuplicatePending):
		return fiber.NewError(fiber.StatusConflict, "a pending return request already exists for this order")
	case errors.Is(err, services.ErrInvalidStatus):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "invalid status")
	}

	return err
}
