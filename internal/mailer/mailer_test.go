package mailer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-auth-service/internal/config"
)

func TestNew_SelectsProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		want    interface{}
		wantErr bool
	}{
		{
			name: "smtp",
			cfg: config.Config{
				Mail: config.MailConfig{Provider: config.MailProviderSMTP},
				SMTP: config.SMTPConfig{Host: "smtp.example.com", Port: 587, User: "u", Password: "p"},
			},
			want: &SMTPMailer{},
		},
		{
			name:    "smtp without host",
			cfg:     config.Config{Mail: config.MailConfig{Provider: config.MailProviderSMTP}},
			wantErr: true,
		},
		{
			name: "sendgrid",
			cfg:  config.Config{Mail: config.MailConfig{Provider: config.MailProviderSendGrid, SendGridAPIKey: "k"}},
			want: &SendGridMailer{},
		},
		{
			name:    "sendgrid without key",
			cfg:     config.Config{Mail: config.MailConfig{Provider: config.MailProviderSendGrid}},
			wantErr: true,
		},
		{
			name: "resend",
			cfg:  config.Config{Mail: config.MailConfig{Provider: config.MailProviderResend, ResendAPIKey: "k"}},
			want: &ResendMailer{},
		},
		{
			name: "log",
			cfg:  config.Config{Mail: config.MailConfig{Provider: config.MailProviderLog}},
			want: &LogMailer{},
		},
		{
			name:    "unknown",
			cfg:     config.Config{Mail: config.MailConfig{Provider: "fax"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, m)
		})
	}
}

func TestNewResetPasswordMessage(t *testing.T) {
	link := ResetLink("http://localhost:3000/reset-password/", "abc123")
	assert.Equal(t, "http://localhost:3000/reset-password/abc123", link)

	msg := NewResetPasswordMessage("noreply@example.com", "a@x.com", link)
	assert.Equal(t, "noreply@example.com", msg.From)
	assert.Equal(t, "a@x.com", msg.To)
	assert.Equal(t, "Reset your password", msg.Subject)
	assert.Contains(t, msg.Body, link)
}

func TestBuildSMTPMessage(t *testing.T) {
	mm, err := buildSMTPMessage(Message{From: "noreply@example.com", To: "a@x.com", Subject: "s", Body: "b"})
	require.NoError(t, err)
	to := mm.GetToString()
	require.Len(t, to, 1)
	assert.Contains(t, to[0], "a@x.com")

	_, err = buildSMTPMessage(Message{From: "not an address", To: "a@x.com"})
	assert.Error(t, err)
}

func TestSendGridMailer_Send(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := NewSendGridMailer("key", srv.URL)
	err := m.Send(context.Background(), Message{From: "noreply@example.com", To: "a@x.com", Subject: "s", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, "s", got["subject"])
}

func TestSendGridMailer_SendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	m := NewSendGridMailer("key", srv.URL)
	err := m.Send(context.Background(), Message{From: "noreply@example.com", To: "a@x.com", Subject: "s", Body: "b"})
	assert.Error(t, err)
}

func TestResendMailer_Send(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer srv.Close()

	m, err := NewResendMailer("key", srv.URL)
	require.NoError(t, err)

	err = m.Send(context.Background(), Message{From: "noreply@example.com", To: "a@x.com", Subject: "s", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, "noreply@example.com", got["from"])
	assert.Equal(t, []interface{}{"a@x.com"}, got["to"])
	assert.Equal(t, "s", got["subject"])
	assert.Equal(t, "b", got["text"])
}

func TestResendMailer_SendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"invalid from"}`))
	}))
	defer srv.Close()

	m, err := NewResendMailer("key", srv.URL)
	require.NoError(t, err)

	err = m.Send(context.Background(), Message{From: "bad", To: "a@x.com", Subject: "s", Body: "b"})
	assert.ErrorContains(t, err, "resend send failed")
}

func TestLogMailer_Send(t *testing.T) {
	assert.NoError(t, NewLogMailer().Send(context.Background(), Message{To: "a@x.com"}))
}
