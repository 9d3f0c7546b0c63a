package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/genpass/internal/common"
)

var errNotConfigured = errors.New("smtp: server or sender not configured")

// SMTPNotifier sends messages through an SMTP relay using STARTTLS and PLAIN
// authentication as the sender account.
type SMTPNotifier struct {
	Server   string
	Port     int
	Sender   string
	Password string

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPNotifier(server string, port int, sender, password string) *SMTPNotifier {
	return &SMTPNotifier{
		Server:   server,
		Port:     port,
		Sender:   sender,
		Password: password,
		sendMail: smtp.SendMail,
	}
}

func (n *SMTPNotifier) Notify(ctx context.Context, msg Message) error {
	if n.Server == "" || n.Sender == "" {
		return fmt.Errorf("%w: %w", common.ErrNotification, errNotConfigured)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrNotification, err)
	}

	addr := net.JoinHostPort(n.Server, strconv.Itoa(n.Port))
	auth := smtp.PlainAuth("", n.Sender, n.Password, n.Server)

	if err := n.sendMail(addr, auth, n.Sender, []string{msg.Recipient}, n.compose(msg)); err != nil {
		return fmt.Errorf("%w: smtp send: %w", common.ErrNotification, err)
	}
	return nil
}

// compose builds an RFC 5322 message. Header values are stripped of line
// breaks.
func (n *SMTPNotifier) compose(msg Message) []byte {
	clean := strings.NewReplacer("\r", "", "\n", "")

	var b strings.Builder
	b.WriteString("From: " + clean.Replace(n.Sender) + "\r\n")
	b.WriteString("To: " + clean.Replace(msg.Recipient) + "\r\n")
	b.WriteString("Subject: " + clean.Replace(msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}
