// Package notify delivers customer notifications about order status changes.
//
// A Dispatcher implements ports.StatusNotifier: it composes one e-mail and one SMS
// per change, queues them without blocking the caller, and sends them from worker
// goroutines with exponential-backoff retries. Senders are pluggable; SMTPSender
// talks to a mail server and LogSender only records the intent.
package notify

import (
	"errors"
	"fmt"
	"strings"

	"delivery-tracker/internal/core/domain/model/order"
)

// Channel identifies how a message reaches the customer.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

var (
	// ErrRecipientRequired is returned by senders for a message with no address.
	ErrRecipientRequired = errors.New("notification recipient is required")

	// ErrInvalidRecipient is returned for an address that cannot be used in a header.
	ErrInvalidRecipient = errors.New("notification recipient is invalid")
)

// Message is one outbound notification.
type Message struct {
	Channel Channel
	To      string
	Subject string
	Body    string
	OrderID order.ID
	Status  order.Status
}

// Compose builds the messages announcing status to contact.
// A channel is skipped when the contact has no address for it.
//
// The pending status is only announced once, on creation, so its e-mail reads as a
// confirmation.
func Compose(contact order.Contact, orderID order.ID, status order.Status) []Message {
	messages := make([]Message, 0, 2)

	if email := strings.TrimSpace(contact.Email); email != "" {
		subject := fmt.Sprintf("Order #%d update", orderID)
		if status == order.Pending {
			subject = fmt.Sprintf("Order #%d confirmed", orderID)
		}
		messages = append(messages, Message{
			Channel: ChannelEmail,
			To:      email,
			Subject: subject,
			Body: fmt.Sprintf("Hello,\n\nYour order #%d is now: %s\n%s\n\nYou can follow it live in the app.\n",
				orderID, heading(status), status.Message()),
			OrderID: orderID,
			Status:  status,
		})
	}

	if phone := strings.TrimSpace(contact.Phone); phone != "" {
		messages = append(messages, Message{
			Channel: ChannelSMS,
			To:      phone,
			Body:    fmt.Sprintf("Delivery Tracker: %s (order #%d)", status.Message(), orderID),
			OrderID: orderID,
			Status:  status,
		})
	}

	return messages
}

// heading renders "in_transit" as "IN TRANSIT".
func heading(status order.Status) string {
	return strings.ToUpper(strings.ReplaceAll(status.String(), "_", " "))
}
