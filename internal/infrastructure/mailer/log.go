package mailer

import (
	"context"
	"log"
	"strings"

	"github.com/sngm3741/contact-form/api/internal/contact/domain"
)

// LogNotifier writes messages to the server log instead of delivering them.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, email domain.Email) error {
	if n.logger != nil {
		n.logger.Printf("メール送信 (log): from=%q to=%q subject=%q\n%s", email.From, strings.Join(email.To, ","), email.Subject, email.Body)
	}
	return nil
}
