package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crm-backend/internal/config"

	"github.com/wneessen/go-mail"
)

// Reminder describes one order a customer is reminded about
type Reminder struct {
	OrderID      string
	CustomerName string
	Email        string
	OrderDate    time.Time
	Total        string
	Items        []string
}

// Mailer delivers order reminders
type Mailer interface {
	// SendReminders delivers reminders over one connection and returns one
	// error (nil on success) per reminder, in order.
	SendReminders(ctx context.Context, reminders []Reminder) []error
}

// SMTPMailer sends reminders through an SMTP relay
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendReminders(ctx context.Context, reminders []Reminder) []error {
	errs := make([]error, len(reminders))

	msgs := make([]*mail.Msg, 0, len(reminders))
	positions := make([]int, 0, len(reminders))
	for i, r := range reminders {
		msg, err := BuildReminder(m.cfg.From, r)
		if err != nil {
			errs[i] = err
			continue
		}
		msgs = append(msgs, msg)
		positions = append(positions, i)
	}
	if len(msgs) == 0 {
		return errs
	}

	failAll := func(err error) []error {
		for _, i := range positions {
			errs[i] = err
		}
		return errs
	}

	client, err := m.newClient()
	if err != nil {
		return failAll(err)
	}
	if err := client.DialWithContext(ctx); err != nil {
		return failAll(fmt.Errorf("failed to connect to %s: %w", m.cfg.Host, err))
	}
	defer client.Close()

	sendErr := client.Send(msgs...)
	for j, msg := range msgs {
		if msg.IsDelivered() {
			continue
		}
		cause := sendErr
		if msg.HasSendError() {
			cause = msg.SendError()
		}
		if cause == nil {
			cause = errors.New("message was not delivered")
		}
		i := positions[j]
		errs[i] = fmt.Errorf("failed to send reminder for order %s: %w", reminders[i].OrderID, cause)
	}
	return errs
}

func (m *SMTPMailer) newClient() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	return client, nil
}

// BuildReminder renders the plain-text reminder message
func BuildReminder(from string, r Reminder) (*mail.Msg, error) {
	if r.Email == "" {
		return nil, fmt.Errorf("order %s has no customer email", r.OrderID)
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := msg.To(r.Email); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", r.Email, err)
	}
	msg.Subject(fmt.Sprintf("Your order %s", shortID(r.OrderID)))
	msg.SetBodyString(mail.TypeTextPlain, reminderBody(r))

	return msg, nil
}

func reminderBody(r Reminder) string {
	var b strings.Builder

	name := r.CustomerName
	if name == "" {
		name = "customer"
	}
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	fmt.Fprintf(&b, "This is a reminder about your order %s placed on %s.\n\n",
		r.OrderID, r.OrderDate.UTC().Format("2006-01-02 15:04 MST"))

	for _, item := range r.Items {
		fmt.Fprintf(&b, "  - %s\n", item)
	}
	if len(r.Items) > 0 {
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Total: %s\n", r.Total)
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
