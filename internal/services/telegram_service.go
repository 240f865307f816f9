package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/example/amberline/internal/models"
)

// TelegramService handles sending notifications to Telegram.
type TelegramService struct {
	botToken    string
	adminChatID string
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	msg := telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(s.adminChatID, text)
}

// FormatPrice formats price with currency and thousand separators.
func FormatPrice(amount float64, currency string) string {
	if currency == "" {
		currency = "USD"
	}
	intAmount := int64(amount)
	str := fmt.Sprintf("%d", intAmount)

	var result strings.Builder
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return result.String() + " " + currency
}

// ReturnRequestNotification contains return request data for the admin alert.
type ReturnRequestNotification struct {
	RequestID     string
	OrderNumber   string
	CustomerName  string
	CustomerEmail string
	Reason        string
	Items         []models.OrderItem
	TotalAmount   float64
	Currency      string
}

// ReturnStatusChangeNotification contains transition data for the admin alert.
type ReturnStatusChangeNotification struct {
	RequestID   string
	OrderNumber string
	NewStatus   string
	RANumber    string
}

// NotifyReturnStatusChanged alerts the admin chat when a return request
// changes status.
func (s *TelegramService) NotifyReturnStatusChanged(n ReturnStatusChangeNotification) error {
	if s.adminChatID == "" {
		return nil
	}

	ra := ""
	if n.RANumber != "" {
		ra = fmt.Sprintf("\n<b>🔖 RA number:</b> %s", n.RANumber)
	}

	message := fmt.Sprintf(`<b>🔄 RETURN STATUS CHANGED</b>
<b>📋 Order:</b> %s
<b>📌 Status:</b> %s%s
━━━━━━━━━━━━━━━━━━`,
		n.OrderNumber,
		strings.ToUpper(n.NewStatus),
		ra,
	)

	return s.SendToAdmin(message)
}

// NotifyNewReturnRequest alerts the admin chat about a freshly filed return
// request.
func (s *TelegramService) NotifyNewReturnRequest(n ReturnRequestNotification) error {
	if s.adminChatID == "" {
		return nil
	}

	customerName := n.CustomerName
	if customerName == "" {
		customerName = "Guest"
	}
	customerEmail := n.CustomerEmail
	if customerEmail == "" {
		customerEmail = "not provided"
	}

	var itemsList strings.Builder
	for i, item := range n.Items {
		itemsList.WriteString(fmt.Sprintf("%d. <b>%s</b>\n   %d x %s = %s\n",
			i+1,
			item.ProductName,
			item.Quantity,
			FormatPrice(item.UnitPrice, n.Currency),
			FormatPrice(item.LineTotal, n.Currency),
		))
	}

	message := fmt.Sprintf(`<b>↩️ NEW RETURN REQUEST</b>
<b>📋 Order:</b> %s
<b>👤 Customer:</b> %s
<b>✉️ Email:</b> %s
<b>📝 Reason:</b> %s
<b>📦 Items:</b>
%s
<b>💰 Order total:</b> %s
━━━━━━━━━━━━━━━━━━`,
		n.OrderNumber,
		customerName,
		customerEmail,
		n.Reason,
		itemsList.String(),
		FormatPrice(n.TotalAmount, n.Currency),
	)

	return s.SendToAdmin(strings.TrimSpace(message))
}
