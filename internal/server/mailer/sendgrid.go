package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendFunc func(ctx context.Context, m *mail.SGMailV3) (status int, body string, err error)

// SendGridTransport sends through the SendGrid v3 API.
type SendGridTransport struct {
	send sendFunc
}

func NewSendGridTransport(apiKey string) *SendGridTransport {
	client := sendgrid.NewSendClient(apiKey)
	return &SendGridTransport{
		send: func(ctx context.Context, m *mail.SGMailV3) (int, string, error) {
			resp, err := client.SendWithContext(ctx, m)
			if err != nil {
				return 0, "", err
			}
			return resp.StatusCode, resp.Body, nil
		},
	}
}

func (t *SendGridTransport) Deliver(ctx context.Context, m Message) error {
	from := mail.NewEmail("", m.From)
	to := mail.NewEmail("", m.To)
	msg := mail.NewSingleEmail(from, m.Subject, to, m.Text, m.HTML)

	status, body, err := t.send(ctx, msg)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", status, body)
	}
	return nil
}
