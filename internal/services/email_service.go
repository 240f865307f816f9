package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/example/amberline/internal/config"
	"github.com/example/amberline/internal/models"
)

// ReturnEmailPayload is the structured content handed to the email templates.
type ReturnEmailPayload struct {
	To              string
	Name            string
	RequestID       string
	OrderNumber     string
	Reason          string
	Status          string
	RANumber        string
	ReturnAddress   string
	AdminNotes      string
	RejectionReason string
	Items           []models.OrderItem
	Total           float64
	Currency        string
}

// EmailService delivers transactional return emails over SMTP.
type EmailService struct {
	host       string
	port       int
	username   string
	password   string
	from       string
	adminEmail string
}

// NewEmailService constructs EmailService from configuration.
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:       cfg.SMTPHost,
		port:       cfg.SMTPPort,
		username:   cfg.SMTPUsername,
		password:   cfg.SMTPPassword,
		from:       cfg.EmailFrom,
		adminEmail: cfg.AdminEmail,
	}
}

// SendReturnRequestConfirmation tells the customer their request was received.
func (s *EmailService) SendReturnRequestConfirmation(p ReturnEmailPayload) error {
	body := s.layout(fmt.Sprintf(`
		<h2>We received your return request</h2>
		<p>Hello %s,</p>
		<p>Your return request for order <strong>%s</strong> has been received and is awaiting review.</p>
		<p><strong>Reason:</strong> %s</p>
		%s
		<p>We will email you as soon as it has been reviewed.</p>`,
		displayName(p.Name), p.OrderNumber, p.Reason, s.itemsTable(p)))
	return s.send(p.To, fmt.Sprintf("Return request received — order %s", p.OrderNumber), body)
}

// SendAdminReturnRequestNotification alerts staff about a new request.
func (s *EmailService) SendAdminReturnRequestNotification(p ReturnEmailPayload) error {
	body := s.layout(fmt.Sprintf(`
		<h2>New return request</h2>
		<p><strong>Order:</strong> %s</p>
		<p><strong>Customer:</strong> %s (%s)</p>
		<p><strong>Reason:</strong> %s</p>
		%s`,
		p.OrderNumber, displayName(p.Name), p.To, p.Reason, s.itemsTable(p)))
	return s.send(s.adminEmail, fmt.Sprintf("New return request for order %s", p.OrderNumber), body)
}

// SendReturnAuthorization tells the customer their return was approved.
func (s *EmailService) SendReturnAuthorization(p ReturnEmailPayload) error {
	address := p.ReturnAddress
	if address == "" {
		address = "will be provided separately"
	}
	body := s.layout(fmt.Sprintf(`
		<h2>Your return has been approved</h2>
		<p>Hello %s,</p>
		<p>Your return for order <strong>%s</strong> is approved.</p>
		<p><strong>Return authorization number:</strong> %s</p>
		<p>Please write this number on the outside of your package.</p>
		<p><strong>Ship to:</strong> %s</p>
		%s`,
		displayName(p.Name), p.OrderNumber, p.RANumber, address, s.itemsTable(p)))
	return s.send(p.To, fmt.Sprintf("Return approved — authorization %s", p.RANumber), body)
}

// SendReturnRejection tells the customer their return was declined.
func (s *EmailService) SendReturnRejection(p ReturnEmailPayload) error {
	reason := p.RejectionReason
	if reason == "" {
		reason = "not specified"
	}
	body := s.layout(fmt.Sprintf(`
		<h2>Your return request was declined</h2>
		<p>Hello %s,</p>
		<p>Unfortunately we cannot accept the return for order <strong>%s</strong>.</p>
		<p><strong>Reason:</strong> %s</p>
		%s
		<p>Reply to this email if you believe this is a mistake.</p>`,
		displayName(p.Name), p.OrderNumber, reason, s.itemsTable(p)))
	return s.send(p.To, fmt.Sprintf("Return request declined — order %s", p.OrderNumber), body)
}

// SendReturnStatusUpdate covers the remaining transitions with a generic
// status notice.
func (s *EmailService) SendReturnStatusUpdate(p ReturnEmailPayload) error {
	ra := ""
	if p.RANumber != "" {
		ra = fmt.Sprintf("<p><strong>Return authorization number:</strong> %s</p>", p.RANumber)
	}
	notes := ""
	if p.AdminNotes != "" {
		notes = fmt.Sprintf("<p><strong>Notes:</strong> %s</p>", p.AdminNotes)
	}
	body := s.layout(fmt.Sprintf(`
		<h2>Return status update</h2>
		<p>Hello %s,</p>
		<p>Your return for order <strong>%s</strong> is now <strong>%s</strong>.</p>
		%s%s`,
		displayName(p.Name), p.OrderNumber, p.Status, ra, notes))
	return s.send(p.To, fmt.Sprintf("Return update — order %s is %s", p.OrderNumber, p.Status), body)
}

func (s *EmailService) send(to, subject, htmlBody string) error {
	if s.host == "" {
		log.Println("[Email] SMTP not configured, skipping send")
		return nil
	}
	if to == "" {
		log.Printf("[Email] no recipient for %q, skipping send", subject)
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(s.host,
		mail.WithPort(s.port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(s.username),
		mail.WithPassword(s.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	return client.DialAndSend(msg)
}

func (s *EmailService) itemsTable(p ReturnEmailPayload) string {
	if len(p.Items) == 0 {
		return ""
	}

	var rows strings.Builder
	for _, item := range p.Items {
		rows.WriteString(fmt.Sprintf(`
			<tr>
				<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%.2f %s</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%.2f %s</td>
			</tr>`,
			item.ProductName, item.Quantity, item.UnitPrice, p.Currency, item.LineTotal, p.Currency))
	}

	return fmt.Sprintf(`
		<table style="width: 100%%; border-collapse: collapse; margin: 16px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Item</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Qty</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Unit price</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>%s</tbody>
			<tfoot>
				<tr>
					<td colspan="3" style="padding: 8px; text-align: right; font-weight: bold;">Order total:</td>
					<td style="padding: 8px; font-weight: bold;">%.2f %s</td>
				</tr>
			</tfoot>
		</table>`, rows.String(), p.Total, p.Currency)
}

func (s *EmailService) layout(content string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 24px; border-radius: 10px;">
		%s
		<p style="margin-top: 24px; color: #555;">
			Kind regards,<br>
			<strong>The Amberline team</strong>
		</p>
	</div>
</body>
</html>`, content)
}

func displayName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}
