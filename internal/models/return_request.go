package models

import (
	"time"

	"github.com/google/uuid"
)

// Return request statuses. A request starts as pending and is moved by staff
// through the remaining states.
const (
	ReturnStatusPending    = "pending"
	ReturnStatusApproved   = "approved"
	ReturnStatusRejected   = "rejected"
	ReturnStatusProcessing = "processing"
	ReturnStatusCompleted  = "completed"
	ReturnStatusCancelled  = "cancelled"
)

// ReturnRequest tracks a customer's request to send back a prior purchase.
// OrderID and OrderNumber are fixed at creation; the authorization number and
// the approved/completed timestamps are written exactly once by the status
// transitions.
type ReturnRequest struct {
	BaseModel
	UserID                    *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User                      *User      `json:"user,omitempty"`
	OrderID                   uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	Order                     *Order     `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	OrderNumber               string     `gorm:"index" json:"order_number"`
	Reason                    string     `json:"reason"`
	Photos                    []string   `gorm:"serializer:json" json:"photos"`
	Status                    string     `gorm:"index;default:pending" json:"status"`
	AdminNotes                *string    `json:"admin_notes"`
	RejectionReason           *string    `json:"rejection_reason"`
	ReturnAddress             *string    `json:"return_address"`
	ReturnAuthorizationNumber *string    `gorm:"uniqueIndex" json:"return_authorization_number"`
	ApprovedAt                *time.Time `json:"approved_at"`
	CompletedAt               *time.Time `json:"completed_at"`
}

// IsReturnStatus reports whether s is one of the six recognized statuses.
func IsReturnStatus(s string) bool {
	switch s {
	case ReturnStatusPending, ReturnStatusApproved, ReturnStatusRejected,
		ReturnStatusProcessing, ReturnStatusCompleted, ReturnStatusCancelled:
		return true
	}
	return false
}
