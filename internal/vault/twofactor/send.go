package twofactor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/genpass/internal/common"
	"github.com/dmitrijs2005/genpass/internal/vault/notify"
)

const (
	codeSubject      = "GenPass Authentication Code"
	challengeSubject = "GenPass - 2FA Verification Code"
)

func codeBody(code string, ttl time.Duration) string {
	return fmt.Sprintf("Your one-time password is: %s\n\n"+
		"This code will expire in %s.\n"+
		"If you didn't request this code, please ignore this email.\n", code, minutes(ttl))
}

func challengeBody(code string, ttl time.Duration) string {
	return fmt.Sprintf("Your verification code for GenPass 2FA setup is: %s\n\n"+
		"This code will expire in %s.\n"+
		"If you did not request this code, please ignore this email.\n", code, minutes(ttl))
}

func minutes(d time.Duration) string {
	m := int(d.Round(time.Minute) / time.Minute)
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}

func checkRecipient(recipient string) (string, error) {
	recipient = strings.TrimSpace(recipient)
	if !common.ValidEmail(recipient) {
		return "", common.ErrInvalidEmail
	}
	return recipient, nil
}

func deliver(ctx context.Context, n notify.Notifier, msg notify.Message) error {
	err := n.Notify(ctx, msg)
	if err == nil || errors.Is(err, common.ErrNotification) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrNotification, err)
}

// SendCode generates the current TOTP code and mails it to recipient.
func SendCode(ctx context.Context, a *Authenticator, n notify.Notifier, recipient string) error {
	recipient, err := checkRecipient(recipient)
	if err != nil {
		return err
	}

	code, err := a.GenerateCode(ctx)
	if err != nil {
		return err
	}

	return deliver(ctx, n, notify.Message{
		Recipient: recipient,
		Subject:   codeSubject,
		Body:      codeBody(code, a.opts.Interval),
	})
}

// SendChallenge issues a challenge for recipient and mails the code.
func SendChallenge(ctx context.Context, t *ChallengeTable, n notify.Notifier, recipient string) error {
	recipient, err := checkRecipient(recipient)
	if err != nil {
		return err
	}

	code, err := t.Issue(recipient)
	if err != nil {
		return err
	}

	return deliver(ctx, n, notify.Message{
		Recipient: recipient,
		Subject:   challengeSubject,
		Body:      challengeBody(code, t.ttl),
	})
}
