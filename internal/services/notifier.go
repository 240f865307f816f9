package services

import (
	"log"

	"github.com/example/amberline/internal/models"
)

// Mailer is the transactional email collaborator. Every send is best-effort:
// a returned error is logged by the dispatcher and never reaches the caller
// of the operation that triggered it.
type Mailer interface {
	SendReturnRequestConfirmation(p ReturnEmailPayload) error
	SendAdminReturnRequestNotification(p ReturnEmailPayload) error
	SendReturnAuthorization(p ReturnEmailPayload) error
	SendReturnRejection(p ReturnEmailPayload) error
	SendReturnStatusUpdate(p ReturnEmailPayload) error
}

// AdminAlerter pushes real-time staff alerts alongside the email channel.
// Like the mailer, every call is best-effort.
type AdminAlerter interface {
	NotifyNewReturnRequest(n ReturnRequestNotification) error
	NotifyReturnStatusChanged(n ReturnStatusChangeNotification) error
}

// NotificationDispatcher fans a persisted return event out to the customer
// and the shop staff. Each recipient is attempted independently so a failing
// customer email never suppresses the admin alert, and vice versa.
type NotificationDispatcher struct {
	mailer   Mailer
	telegram AdminAlerter
}

// NewNotificationDispatcher constructs NotificationDispatcher.
func NewNotificationDispatcher(mailer Mailer, telegram AdminAlerter) *NotificationDispatcher {
	return &NotificationDispatcher{mailer: mailer, telegram: telegram}
}

// ReturnRequestCreated sends the creation confirmation to the requester and
// the new-request alert to staff.
func (d *NotificationDispatcher) ReturnRequestCreated(req *models.ReturnRequest, order *models.Order, caller Caller) {
	payload := d.buildPayload(req, order, caller)

	if payload.To != "" {
		if err := d.mailer.SendReturnRequestConfirmation(payload); err != nil {
			log.Printf("[Returns] confirmation email failed for request %s: %v", req.ID, err)
		}
	} else {
		log.Printf("[Returns] no customer email for request %s, confirmation skipped", req.ID)
	}

	if err := d.mailer.SendAdminReturnRequestNotification(payload); err != nil {
		log.Printf("[Returns] admin email failed for request %s: %v", req.ID, err)
	}

	if d.telegram != nil {
		err := d.telegram.NotifyNewReturnRequest(ReturnRequestNotification{
			RequestID:     req.ID.String(),
			OrderNumber:   req.OrderNumber,
			CustomerName:  payload.Name,
			CustomerEmail: payload.To,
			Reason:        req.Reason,
			Items:         payload.Items,
			TotalAmount:   payload.Total,
			Currency:      payload.Currency,
		})
		if err != nil {
			log.Printf("[Returns] telegram alert failed for request %s: %v", req.ID, err)
		}
	}
}

// ReturnRequestTransitioned sends the customer-facing notice matching the
// status the request just entered, plus the staff status-change alert. The
// staff alert is never suppressed by a missing customer email.
func (d *NotificationDispatcher) ReturnRequestTransitioned(req *models.ReturnRequest, target string) {
	payload := d.buildPayload(req, req.Order, Guest())

	if d.telegram != nil {
		err := d.telegram.NotifyReturnStatusChanged(ReturnStatusChangeNotification{
			RequestID:   req.ID.String(),
			OrderNumber: req.OrderNumber,
			NewStatus:   target,
			RANumber:    payload.RANumber,
		})
		if err != nil {
			log.Printf("[Returns] telegram status alert failed for request %s: %v", req.ID, err)
		}
	}

	if payload.To == "" {
		log.Printf("[Returns] no customer email for request %s, %s notice skipped", req.ID, target)
		return
	}

	var err error
	switch target {
	case models.ReturnStatusApproved:
		err = d.mailer.SendReturnAuthorization(payload)
	case models.ReturnStatusRejected:
		err = d.mailer.SendReturnRejection(payload)
	default:
		err = d.mailer.SendReturnStatusUpdate(payload)
	}
	if err != nil {
		log.Printf("[Returns] %s email failed for request %s: %v", target, req.ID, err)
	}
}

// buildPayload assembles the email payload, resolving the recipient from the
// requester's account when there is one and from the order's shipping
// contact for guests.
func (d *NotificationDispatcher) buildPayload(req *models.ReturnRequest, order *models.Order, caller Caller) ReturnEmailPayload {
	payload := ReturnEmailPayload{
		RequestID:   req.ID.String(),
		OrderNumber: req.OrderNumber,
		Reason:      req.Reason,
		Status:      req.Status,
	}

	if req.ReturnAuthorizationNumber != nil {
		payload.RANumber = *req.ReturnAuthorizationNumber
	}
	if req.ReturnAddress != nil {
		payload.ReturnAddress = *req.ReturnAddress
	}
	if req.AdminNotes != nil {
		payload.AdminNotes = *req.AdminNotes
	}
	if req.RejectionReason != nil {
		payload.RejectionReason = *req.RejectionReason
	}

	switch {
	case caller.Authenticated && caller.Email != "":
		payload.To = caller.Email
		payload.Name = caller.Name
	case req.User != nil && req.User.Email != "":
		payload.To = req.User.Email
		payload.Name = req.User.FullName()
	case order != nil && order.ShippingEmail != "":
		payload.To = order.ShippingEmail
		payload.Name = order.ShippingName
	}

	if order != nil {
		payload.Items = order.Items
		payload.Total = order.TotalAmount
		payload.Currency = order.Currency
	}

	return payload
}
