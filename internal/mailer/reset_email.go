package mailer

import (
	"fmt"
	"strings"
)

const resetPasswordSubject = "Reset your password"

// ResetLink joins the configured reset URL base and the raw token.
func ResetLink(urlBase, token string) string {
	return strings.TrimRight(urlBase, "/") + "/" + token
}

// NewResetPasswordMessage builds the email sent when a password reset is requested.
func NewResetPasswordMessage(from, to, link string) Message {
	return Message{
		From:    from,
		To:      to,
		Subject: resetPasswordSubject,
		Body: fmt.Sprintf("You are receiving this email because you want to reset your password. "+
			"Please click on the following link, or paste this into your browser to complete the process: %s\n\n"+
			"If you did not request this, please ignore this email and your password will remain unchanged.", link),
	}
}
