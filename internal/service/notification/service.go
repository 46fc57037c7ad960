package notification

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/careflowhq/frontdesk/internal/config"
	"github.com/careflowhq/frontdesk/internal/model"
)

// Notifier delivers booking confirmations. Delivery is best-effort; the
// allocator never fails a committed booking on a notification error.
type Notifier interface {
	BookingConfirmed(recipient string, booking *model.Booking) error
	BookingCancelled(recipient string, booking *model.Booking) error
}

type emailNotifier struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailNotifier(cfg config.SMTPConfig) Notifier {
	return &emailNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (n *emailNotifier) BookingConfirmed(recipient string, booking *model.Booking) error {
	body := fmt.Sprintf(
		"Your appointment has been scheduled for %s at %s.",
		booking.Date.Format("Monday, January 2 2006"),
		booking.TimeSlot,
	)
	return n.send(recipient, "Appointment Confirmed", body)
}

func (n *emailNotifier) BookingCancelled(recipient string, booking *model.Booking) error {
	body := fmt.Sprintf(
		"Your appointment on %s at %s has been cancelled.",
		booking.Date.Format("Monday, January 2 2006"),
		booking.TimeSlot,
	)
	return n.send(recipient, "Appointment Cancelled", body)
}

func (n *emailNotifier) send(recipient, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send %q to %s: %w", subject, recipient, err)
	}
	return nil
}

// NoopNotifier is used when SMTP is not configured.
type NoopNotifier struct{}

func (NoopNotifier) BookingConfirmed(string, *model.Booking) error { return nil }
func (NoopNotifier) BookingCancelled(string, *model.Booking) error { return nil }
