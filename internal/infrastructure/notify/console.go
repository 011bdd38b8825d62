// Package notify contains delivery transport adapters for the notification
// Sender port. External messenger integration is deliberately out of scope;
// the console sender writes deliveries to the structured log, which is
// enough for development and for audit trails in deployments that rely on
// the in-portal notification list.
package notify

import (
	"context"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/notification"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/logger"
)

// ConsoleSender implements notification.Sender by logging each delivery.
type ConsoleSender struct {
	log *logger.Logger
}

// NewConsoleSender creates a console sender.
func NewConsoleSender(log *logger.Logger) *ConsoleSender {
	if log == nil {
		log = logger.Default()
	}
	return &ConsoleSender{log: log.With(logger.Component("notify.console"))}
}

var _ notification.Sender = (*ConsoleSender)(nil)

// Send logs the notification. Never fails.
func (s *ConsoleSender) Send(ctx context.Context, n *notification.Notification) error {
	s.log.Info("notification delivered",
		logger.String("notification_id", n.ID.String()),
		logger.String("type", n.Type.String()),
		logger.String("recipient_id", n.RecipientID),
		logger.String("title", n.Title),
		logger.String("message", n.Message))
	return nil
}
