package mailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

type SendGridMailer struct {
	apiKey string
	host   string
}

// NewSendGridMailer returns a mailer for the SendGrid v3 API. An empty host
// selects the public API.
func NewSendGridMailer(apiKey, host string) *SendGridMailer {
	if host == "" {
		host = sendGridHost
	}
	return &SendGridMailer{apiKey: apiKey, host: host}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	v3 := mail.NewV3Mail()
	v3.SetFrom(mail.NewEmail("", msg.From))
	v3.Subject = msg.Subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", msg.To))
	v3.AddPersonalizations(p)
	v3.AddContent(mail.NewContent("text/plain", msg.Body))

	request := sendgrid.GetRequest(m.apiKey, sendGridEndpoint, m.host)
	request.Method = rest.Post
	request.Body = mail.GetRequestBody(v3)

	resp, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid send failed: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
