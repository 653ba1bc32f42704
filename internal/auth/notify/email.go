// Package notify delivers one-time codes to principals. Only email delivery
// is implemented, but the CodeSender interface keeps the service layer open
// to other channels.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/dexxter/dexxter/pkg/mailx"
)

// CodeSender delivers a login verification code to an address.
type CodeSender interface {
	SendCode(ctx context.Context, address, code string, validity time.Duration) error
}

const otpSubject = "DEXX-TER Admin Login - OTP Verification"

// EmailSender delivers verification codes over a mailx.Mail transport.
type EmailSender struct {
	Mail mailx.Mail
	From string // sender address, e.g. "DEXX-TER Security <noreply@example.com>"
}

func NewEmailSender(mail mailx.Mail, from string) *EmailSender {
	return &EmailSender{Mail: mail, From: from}
}

func (s *EmailSender) SendCode(ctx context.Context, address, code string, validity time.Duration) error {
	body := fmt.Sprintf(
		"A login attempt was made to your DEXX-TER admin account.\r\n"+
			"\r\n"+
			"Your one-time password is: %s\r\n"+
			"\r\n"+
			"This code expires in %s. If you did not request this login,\r\n"+
			"ignore this email and contact support immediately.\r\n"+
			"\r\n"+
			"This is an automated message from the DEXX-TER security system.\r\n"+
			"Please do not reply to this email.\r\n",
		code, formatValidity(validity))

	return s.Mail.Send(ctx, mailx.Message{
		From:     s.From,
		To:       []string{address},
		Subject:  otpSubject,
		TextBody: body,
	})
}

func formatValidity(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d == time.Minute {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", int(d.Minutes()))
}
