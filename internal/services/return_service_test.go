package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/amberline/internal/models"
)

func TestCreateGuestReturnRequest(t *testing.T) {
	service, db, notifier := newTestService(t)
	seedOrder(t, db, "ord-2024-001", nil, "jordan@example.com")

	req, err := service.Create(context.Background(), Guest(), CreateReturnInput{
		OrderNumber: "ORD-2024-001",
		Reason:      "wrong size",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ReturnStatusPending, req.Status)
	assert.Equal(t, "ord-2024-001", req.OrderNumber, "canonical casing from the store wins")
	assert.Nil(t, req.UserID)
	assert.NotNil(t, req.Photos)
	assert.Empty(t, req.Photos)
	assert.Nil(t, req.ReturnAuthorizationNumber)

	assert.Eventually(t, func() bool {
		return notifier.createdCount() == 1
	}, time.Second, 10*time.Millisecond, "creation event must be dispatched")

	event := notifier.lastCreated()
	assert.Equal(t, "jordan@example.com", event.order.ShippingEmail)
	assert.False(t, event.caller.Authenticated)
}

func TestCreateRequiresReason(t *testing.T) {
	service, db, _ := newTestService(t)
	seedOrder(t, db, "ORD-2024-002", nil, "")

	_, err := service.Create(context.Background(), Guest(), CreateReturnInput{
		OrderNumber: "ORD-2024-002",
		Reason:      "   ",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "reason", verr.Field)
}

func TestCreateUnknownOrderIsNotFound(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Create(context.Background(), Guest(), CreateReturnInput{
		OrderNumber: "ORD-MISSING",
		Reason:      "arrived broken",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateForbiddenOnSomeoneElsesOrder(t *testing.T) {
	service, db, _ := newTestService(t)
	owner := seedUser(t, db, "owner@example.com", models.RoleCustomer)
	seedOrder(t, db, "ORD-2024-003", &owner.ID, "")
	other := seedUser(t, db, "other@example.com", models.RoleCustomer)

	_, err := service.Create(context.Background(), CallerFromUser(other), CreateReturnInput{
		OrderNumber: "ORD-2024-003",
		Reason:      "changed my mind",
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateDuplicatePendingIsRejectedUntilResolved(t *testing.T) {
	service, db, _ := newTestService(t)
	admin := seedUser(t, db, "admin@example.com", models.RoleAdmin)
	seedOrder(t, db, "ORD-2024-004", nil, "guest@example.com")

	first, err := service.Create(context.Background(), Guest(), CreateReturnInput{
		OrderNumber: "ORD-2024-004",
		Reason:      "wrong size",
	})
	require.NoError(t, err)

	// The uniqueness check is case-insensitive on the order number.
	_, err = service.Create(context.Background(), Guest(), CreateReturnInput{
		OrderNumber: "ord-2024-004",
		Reason:      "second attempt",
	})
	assert.ErrorIs(t, err, ErrDuplicatePending)

	// Once the pending request moves on, a fresh one may be filed.
	_, err = service.Transition(context.Background(), CallerFromUser(admin), first.ID, models.ReturnStatusRejected, TransitionFields{})
	require.NoError(t, err)

	_, err = service.Create(context.Background(), Guest(), CreateReturnInput{
		OrderNumber: "ORD-2024-004",
		Reason:      "second attempt",
	})
	assert.NoError(t, err)
}

func TestListScopesToCaller(t *testing.T) {
	service, db, _ := newTestService(t)
	admin := seedUser(t, db, "admin@example.com", models.RoleAdmin)
	alice := seedUser(t, db, "alice@example.com", models.RoleCustomer)
	bob := seedUser(t, db, "bob@example.com", models.RoleCustomer)

	seedOrder(t, db, "ORD-A", &alice.ID, "")
	seedOrder(t, db, "ORD-B", &bob.ID, "")
	seedOrder(t, db, "ORD-G", nil, "guest@example.com")

	for _, tc := range []struct {
		caller Caller
		order  string
	}{
		{CallerFromUser(alice), "ORD-A"},
		{CallerFromUser(bob), "ORD-B"},
		{Guest(), "ORD-G"},
	} {
		_, err := service.Create(context.Background(), tc.caller, CreateReturnInput{
			OrderNumber: tc.order,
			Reason:      "does not fit",
		})
		require.NoError(t, err)
	}

	all, err := service.List(context.Background(), CallerFromUser(admin), ReturnFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := service.List(context.Background(), CallerFromUser(alice), ReturnFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "ORD-A", mine[0].OrderNumber)

	_, err = service.List(context.Background(), Guest(), ReturnFilter{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListFiltersByStatus(t *testing.T) {
	service, db, _ := newTestService(t)
	admin := seedUser(t, db, "admin@example.com", models.RoleAdmin)
	seedOrder(t, db, "ORD-1", nil, "a@example.com")
	seedOrder(t, db, "ORD-2", nil, "b@example.com")

	first, err := service.Create(context.Background(), Guest(), CreateReturnInput{OrderNumber: "ORD-1", Reason: "scratched"})
	require.NoError(t, err)
	_, err = service.Create(context.Background(), Guest(), CreateReturnInput{OrderNumber: "ORD-2", Reason: "scratched"})
	require.NoError(t, err)

	_, err = service.Transition(context.Background(), CallerFromUser(admin), first.ID, models.ReturnStatusApproved, TransitionFields{})
	require.NoError(t, err)

	approved, err := service.List(context.Background(), CallerFromUser(admin), ReturnFilter{Status: models.ReturnStatusApproved})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "ORD-1", approved[0].OrderNumber)
}

func TestGetEnforcesOwnership(t *testing.T) {
	service, db, _ := newTestService(t)
	admin := seedUser(t, db, "admin@example.com", models.RoleAdmin)
	alice := seedUser(t, db, "alice@example.com", models.RoleCustomer)
	bob := seedUser(t, db, "bob@example.com", models.RoleCustomer)
	seedOrder(t, db, "ORD-A", &alice.ID, "")

	req, err := service.Create(context.Background(), CallerFromUser(alice), CreateReturnInput{
		OrderNumber: "ORD-A",
		Reason:      "broken cap",
	})
	require.NoError(t, err)

	got, err := service.Get(context.Background(), CallerFromUser(alice), req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, got.ID)
	require.NotNil(t, got.Order, "reads are enriched with the order")
	assert.Len(t, got.Order.Items, 2)

	_, err = service.Get(context.Background(), CallerFromUser(bob), req.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = service.Get(context.Background(), CallerFromUser(admin), req.ID)
	assert.NoError(t, err)
}

func TestTransitionApproveIssuesRAOnceAndIsIdempotent(t *testing.T) {
	service, db, notifier := newTestService(t)
	admin := seedUser(t, db, "admin@example.com", models.RoleAdmin)
	seedOrder(t, db, "ORD-2024-005", nil, "guest@example.com")

	req, err := service.Create(context.Background(), Guest(), CreateReturnInput{
		OrderNumber: "ORD-2024-005",
		Reason:      "wrong shade",
	})
	require.NoError(t, err)

	address := "Amberline Returns, 12 Dockside Lane"
	first, err := service.Transition(context.Background(), CallerFromUser(admin), req.ID, models.ReturnStatusApproved, TransitionFields{
		ReturnAddress: &address,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ReturnStatusApproved, first.Status)
	require.NotNil(t, first.ReturnAuthorizationNumber)
	assert.Regexp(t, raPattern, *first.ReturnAuthorizationNumber)
	require.NotNil(t, first.ApprovedAt)
	require.NotNil(t, first.ReturnAddress)
	assert.Equal(t, address, *first.ReturnAddress)

	second, err := service.Transition(context.Background(), CallerFromUser(admin), req.ID, models.ReturnStatusApproved, TransitionFields{})
	require.NoError(t, err)
	require.NotNil(t, second.ReturnAuthorizationNumber)
	assert.Equal(t, *first.ReturnAuthorizationNumber, *second.ReturnAuthorizationNumber)
	require.NotNil(t, second.ApprovedAt)
	assert.True(t, first.ApprovedAt.Equal(*second.ApprovedAt), "re-approval must not move approved_at")

	assert.Eventually(t, func() bool {
		return notifier.transitionedCount() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestTransitionRejectedKeepsRAUnset(t *testing.T) {
	service, db, _ := newTestService(t)
	admin := seedUser(t, db, "admin@example.com", models.RoleAdmin)
	seedOrder(t, db, "ORD-2024-006", nil, "guest@example.com")

	req, err := service.Create(context.Background(), Guest(), CreateReturnInput{
		OrderNumber: "ORD-2024-006",
		Reason:      "smells off",
	})
	require.NoError(t, err)

	reason := "Item used"
	updated, err := service.Transition(context.Background(), CallerFromUser(admin), req.ID, models.ReturnStatusRejected, TransitionFields{
		RejectionReason: &reason,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ReturnStatusRejected, updated.Status)
	assert.Nil(t, updated.ReturnAuthorizationNumber)
	assert.Nil(t, updated.ApprovedAt)
	require.NotNil(t, updated.RejectionReason)
	assert.Equal(t, reason, *updated.RejectionReason)
}

func TestTransitionInvalidStatusLeavesRecordUntouched(t *testing.T) {
	service, db, _ := newTestService(t)
	admin := seedUser(t, db, "admin@example.com", models.RoleAdmin)
	seedOrder(t, db, "ORD-2024-007", nil, "guest@example.com")

	req, err := service.Create(context.Background(), Guest(), CreateReturnInput{
		OrderNumber: "ORD-2024-007",
		Reason:      "leaked in transit",
	})
	require.NoError(t, err)

	_, err = service.Transition(context.Background(), CallerFromUser(admin), req.ID, "refunded", TransitionFields{})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	var stored models.ReturnRequest
	require.NoError(t, db.First(&stored, "id = ?", req.ID).Error)
	assert.Equal(t, models.ReturnStatusPending, stored.Status)
}

func TestTransitionCompletedSetsCompletedAt(t *testing.T) {
	service, db, _ := newTestService(t)
	admin := seedUser(t, db, "admin@example.com", models.RoleAdmin)
	seedOrder(t, db, "ORD-2024-008", nil, "guest@example.com")

	req, err := service.Create(context.Background(), Guest(), CreateReturnInput{
		OrderNumber: "ORD-2024-008",
		Reason:      "no longer needed",
	})
	require.NoError(t, err)

	updated, err := service.Transition(context.Background(), CallerFromUser(admin), req.ID, models.ReturnStatusCompleted, TransitionFields{})
	require.NoError(t, err)
	assert.NotNil(t, updated.CompletedAt)
}

func TestTransitionIsStaffOnly(t *testing.T) {
	service, db, _ := newTestService(t)
	alice := seedUser(t, db, "alice@example.com", models.RoleCustomer)
	seedOrder(t, db, "ORD-A", &alice.ID, "")

	req, err := service.Create(context.Background(), CallerFromUser(alice), CreateReturnInput{
		OrderNumber: "ORD-A",
		Reason:      "too strong",
	})
	require.NoError(t, err)

	_, err = service.Transition(context.Background(), CallerFromUser(alice), req.ID, models.ReturnStatusApproved, TransitionFields{})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = service.Transition(context.Background(), Guest(), req.ID, models.ReturnStatusApproved, TransitionFields{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestTransitionMissingRequestIsNotFound(t *testing.T) {
	service, db, _ := newTestService(t)
	admin := seedUser(t, db, "admin@example.com", models.RoleAdmin)

	_, err := service.Transition(context.Background(), CallerFromUser(admin), seedOrder(t, db, "ORD-X", nil, "").ID, models.ReturnStatusApproved, TransitionFields{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteIsStaffOnlyAndReportsMissing(t *testing.T) {
	service, db, _ := newTestService(t)
	admin := seedUser(t, db, "admin@example.com", models.RoleAdmin)
	alice := seedUser(t, db, "alice@example.com", models.RoleCustomer)
	seedOrder(t, db, "ORD-A", &alice.ID, "")

	req, err := service.Create(context.Background(), CallerFromUser(alice), CreateReturnInput{
		OrderNumber: "ORD-A",
		Reason:      "duplicate order",
	})
	require.NoError(t, err)

	assert.ErrorIs(t, service.Delete(context.Background(), CallerFromUser(alice), req.ID), ErrForbidden)

	require.NoError(t, service.Delete(context.Background(), CallerFromUser(admin), req.ID))
	assert.ErrorIs(t, service.Delete(context.Background(), CallerFromUser(admin), req.ID), ErrNotFound)
}
