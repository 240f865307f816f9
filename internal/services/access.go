package services

import (
	"github.com/google/uuid"

	"github.com/example/amberline/internal/models"
)

// Caller identifies who is invoking an operation. A zero Caller is a guest.
// Identity is always passed explicitly rather than read from request-global
// state.
type Caller struct {
	ID            uuid.UUID
	Authenticated bool
	Email         string
	Name          string
	Role          string
}

// Guest returns an unauthenticated caller.
func Guest() Caller {
	return Caller{}
}

// CallerFromUser builds a Caller from a loaded user record.
func CallerFromUser(user *models.User) Caller {
	if user == nil {
		return Guest()
	}
	return Caller{
		ID:            user.ID,
		Authenticated: true,
		Email:         user.Email,
		Name:          user.FullName(),
		Role:          user.Role,
	}
}

// IsStaff reports whether the caller holds an administrative role.
func (c Caller) IsStaff() bool {
	return c.Authenticated && (c.Role == models.RoleAdmin || c.Role == models.RoleSuperadmin)
}

// canCreateFor checks creation rights against the resolved order. Guests may
// always create; an authenticated caller may not file against an order owned
// by somebody else.
func canCreateFor(caller Caller, order *models.Order) error {
	if !caller.Authenticated {
		return nil
	}
	if order.UserID != nil && *order.UserID != caller.ID {
		return ErrForbidden
	}
	return nil
}

// listScope returns the user scope for list reads: staff see everything,
// customers only their own requests, guests nothing.
func listScope(caller Caller) (*uuid.UUID, error) {
	if caller.IsStaff() {
		return nil, nil
	}
	if !caller.Authenticated {
		return nil, ErrForbidden
	}
	id := caller.ID
	return &id, nil
}

// canView checks single-record read rights.
func canView(caller Caller, req *models.ReturnRequest) error {
	if caller.IsStaff() {
		return nil
	}
	if caller.Authenticated && req.UserID != nil && *req.UserID == caller.ID {
		return nil
	}
	return ErrForbidden
}

// canManage gates status transitions and deletes to staff.
func canManage(caller Caller) error {
	if caller.IsStaff() {
		return nil
	}
	return ErrForbidden
}
