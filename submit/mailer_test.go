package submit_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/vortex-fintech/contactform/contact"
	"github.com/vortex-fintech/contactform/submit"
)

type mockDialer struct {
	mu        sync.Mutex
	sent      []*gomail.Message
	sendError error
	block     chan struct{}
}

func (m *mockDialer) DialAndSend(msgs ...*gomail.Message) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendError != nil {
		return m.sendError
	}
	m.sent = append(m.sent, msgs...)
	return nil
}

var validForm = contact.Form{
	Name:    "John O'Connor-Smith",
	Email:   "john.doe+test@example.co.uk",
	Phone:   "(555) 123-4567",
	Message: "This is a valid message for testing purposes with proper length.",
}

func TestMailer_Sends(t *testing.T) {
	d := &mockDialer{}
	m := submit.NewMailer(d, "noreply@example.com", "support@example.com")
	id := uuid.New()

	rcpt, err := m.Submit(context.Background(), submit.Submission{ID: id, Form: validForm, At: t0})
	require.NoError(t, err)
	assert.Equal(t, id, rcpt.ID)
	assert.Equal(t, submit.StatusSuccess, rcpt.Status)

	require.Len(t, d.sent, 1)
	msg := d.sent[0]
	assert.Equal(t, []string{"noreply@example.com"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"support@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{validForm.Email}, msg.GetHeader("Reply-To"))
	assert.Equal(t, []string{"Contact form: John O'Connor-Smith"}, msg.GetHeader("Subject"))
}

func TestMailer_SendErrorIsTransient(t *testing.T) {
	d := &mockDialer{sendError: errors.New("SMTP connection failed")}
	m := submit.NewMailer(d, "noreply@example.com", "support@example.com")

	_, err := m.Submit(context.Background(), submit.Submission{ID: uuid.New(), Form: validForm})
	require.ErrorIs(t, err, submit.ErrTransientNetwork)
	assert.Contains(t, err.Error(), "SMTP connection failed")
}

func TestMailer_Canceled(t *testing.T) {
	d := &mockDialer{}
	m := submit.NewMailer(d, "noreply@example.com", "support@example.com")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Submit(ctx, submit.Submission{Form: validForm})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, d.sent)
}

func TestMailer_DeadlineWhileSending(t *testing.T) {
	d := &mockDialer{block: make(chan struct{})}
	defer close(d.block)
	m := submit.NewMailer(d, "noreply@example.com", "support@example.com")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.Submit(ctx, submit.Submission{Form: validForm})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
