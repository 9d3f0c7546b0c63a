// Package notify delivers out-of-band messages such as one-time codes.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/genpass/internal/common"
)

// Message is a single plain-text notification.
type Message struct {
	Recipient string
	Subject   string
	Body      string
}

// Notifier hands a message to an external delivery channel.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// WriterNotifier prints messages to w. It is used when no SMTP server is
// configured.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrNotification, err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	_, err := fmt.Fprintf(n.w, "To: %s\nSubject: %s\n\n%s\n", msg.Recipient, msg.Subject, msg.Body)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrNotification, err)
	}
	return nil
}
