package submit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/vortex-fintech/contactform/timeutil"
)

// MailDialer is the part of *gomail.Dialer the Mailer uses.
type MailDialer interface {
	DialAndSend(...*gomail.Message) error
}

func NewDialer(host string, port int, user, pass string) MailDialer {
	return gomail.NewDialer(host, port, user, pass)
}

// Mailer delivers each submission as a plain-text e-mail to a fixed
// recipient, with Reply-To set to the submitter's address.
type Mailer struct {
	dialer MailDialer
	from   string
	to     string
	clock  timeutil.Clock
}

func NewMailer(d MailDialer, from, to string) *Mailer {
	return &Mailer{dialer: d, from: from, to: to, clock: timeutil.Default}
}

func (m *Mailer) Submit(ctx context.Context, sub Submission) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to)
	msg.SetHeader("Reply-To", sub.Form.Email)
	msg.SetHeader("Subject", "Contact form: "+sub.Form.Name)
	msg.SetBody("text/plain", mailBody(sub))

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return Receipt{}, fmt.Errorf("send mail for %s: %w: %v", sub.ID, ErrTransientNetwork, err)
		}
	case <-ctx.Done():
		return Receipt{}, ctx.Err()
	}

	return Receipt{
		ID:      sub.ID,
		Status:  StatusSuccess,
		Message: SuccessMessage,
		At:      m.clock.Now(),
	}, nil
}

func mailBody(sub Submission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", sub.Form.Name)
	fmt.Fprintf(&b, "Email: %s\n", sub.Form.Email)
	fmt.Fprintf(&b, "Phone: %s\n", sub.Form.Phone)
	fmt.Fprintf(&b, "Submitted: %s\n", sub.At.Format(time.RFC3339))
	fmt.Fprintf(&b, "Submission: %s\n\n", sub.ID)
	b.WriteString(sub.Form.Message)
	b.WriteString("\n")
	return b.String()
}
