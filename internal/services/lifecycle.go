package services

import (
	"context"
	"strings"
	"time"

	"github.com/example/amberline/internal/models"
)

// TransitionFields carries the staff-settable fields of a status transition.
// Nil fields are left untouched on the record.
type TransitionFields struct {
	AdminNotes      *string `json:"admin_notes"`
	RejectionReason *string `json:"rejection_reason"`
	ReturnAddress   *string `json:"return_address"`
}

// Lifecycle validates status transitions and computes the resulting update
// set. It never touches the store itself; the orchestrator persists what it
// returns.
type Lifecycle struct {
	ra *RANumberGenerator
}

// NewLifecycle constructs Lifecycle.
func NewLifecycle(ra *RANumberGenerator) *Lifecycle {
	return &Lifecycle{ra: ra}
}

// Apply validates the target status against the current record and builds
// the partial update to persist. The RA number and approved_at are written
// only on the first entry into approved, completed_at only on the first
// entry into completed; re-applying the same transition changes neither.
func (l *Lifecycle) Apply(ctx context.Context, current *models.ReturnRequest, target string, fields TransitionFields) (map[string]interface{}, error) {
	target = strings.ToLower(strings.TrimSpace(target))
	if !models.IsReturnStatus(target) {
		return nil, ErrInvalidStatus
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":     target,
		"updated_at": now,
	}

	if target == models.ReturnStatusApproved && current.ReturnAuthorizationNumber == nil {
		updates["return_authorization_number"] = l.ra.Generate(ctx)
		updates["approved_at"] = now
	}

	if target == models.ReturnStatusCompleted && current.CompletedAt == nil {
		updates["completed_at"] = now
	}

	if fields.AdminNotes != nil {
		updates["admin_notes"] = *fields.AdminNotes
	}
	if fields.RejectionReason != nil {
		updates["rejection_reason"] = *fields.RejectionReason
	}
	if fields.ReturnAddress != nil {
		updates["return_address"] = *fields.ReturnAddress
	}

	return updates, nil
}
