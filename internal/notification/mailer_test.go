package notification

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/go-mail/mail/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/notification/models"
)

type recordingDialer struct {
	sent []*mail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*mail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestMailerSendInvitation(t *testing.T) {
	payload := models.InvitationPayload{
		Email:        "bob@example.com",
		ProjectID:    4,
		ProjectTitle: "Site A",
		Token:        "tok",
		AcceptURL:    "http://localhost:8080/api/invitations/accept?token=tok",
	}

	t.Run("renders subject and both bodies", func(t *testing.T) {
		dialer := &recordingDialer{}
		m, err := NewMailerWithDialer(dialer, "noreply@projecthub.test")
		require.NoError(t, err)

		require.NoError(t, m.SendInvitation(context.Background(), "bob@example.com", payload))
		require.Len(t, dialer.sent, 1)

		msg := dialer.sent[0]
		assert.Equal(t, []string{"bob@example.com"}, msg.GetHeader("To"))
		assert.Equal(t, []string{"noreply@projecthub.test"}, msg.GetHeader("From"))
		assert.Equal(t, []string{"You have been invited to Site A"}, msg.GetHeader("Subject"))

		var buf bytes.Buffer
		_, err = msg.WriteTo(&buf)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "text/html")
		assert.Contains(t, buf.String(), "Site A")
	})

	t.Run("transport failure is returned", func(t *testing.T) {
		m, err := NewMailerWithDialer(&recordingDialer{err: errors.New("connection refused")}, "noreply@projecthub.test")
		require.NoError(t, err)

		err = m.SendInvitation(context.Background(), "bob@example.com", payload)
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("cancelled context skips the send", func(t *testing.T) {
		dialer := &recordingDialer{}
		m, err := NewMailerWithDialer(dialer, "noreply@projecthub.test")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, m.SendInvitation(ctx, "bob@example.com", payload), context.Canceled)
		assert.Empty(t, dialer.sent)
	})
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	sender := NewLogSender(slog.New(slog.NewTextHandler(&buf, nil)))

	err := sender.SendInvitation(context.Background(), "bob@example.com", models.InvitationPayload{ProjectID: 2})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "recipient=bob@example.com")
}
