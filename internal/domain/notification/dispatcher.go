package notification

import (
	"context"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/logger"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/retry"
)

// ═══════════════════════════════════════════════════════════════════════════
// DISPATCHER
// ═══════════════════════════════════════════════════════════════════════════

// Dispatcher fans one message out to every recipient in an audience. Each
// delivery is attempted with retry; one recipient's failure never blocks
// the rest.
type Dispatcher struct {
	directory Directory
	sender    Sender
	repo      Repository
	retrier   *retry.Retrier
	log       *logger.Logger
}

// NewDispatcher wires a dispatcher. The repository may be nil when no
// delivery log is wanted (tests, one-off tools).
func NewDispatcher(directory Directory, sender Sender, repo Repository, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Default()
	}
	return &Dispatcher{
		directory: directory,
		sender:    sender,
		repo:      repo,
		retrier:   retry.DispatchRetrier(),
		log:       log.With(logger.Component("notification.dispatcher")),
	}
}

// Report summarizes one dispatch run.
type Report struct {
	Matched int // recipients inside the audience
	Skipped int // matched but notifications disabled
	Sent    int
	Failed  int
}

// Dispatch sends the message to every enabled recipient in the audience.
// Returns an error only when the audience cannot be resolved at all;
// per-recipient failures are counted in the report and logged.
func (d *Dispatcher) Dispatch(ctx context.Context, typ Type, audience Audience, title, message string) (Report, error) {
	recipients, err := d.directory.ListRecipients(ctx, audience)
	if err != nil {
		return Report{}, shared.WrapError("notification", "Dispatch", shared.ErrExternalService,
			"failed to resolve audience", err)
	}

	report := Report{Matched: len(recipients)}
	for _, r := range recipients {
		if !r.Enabled {
			report.Skipped++
			continue
		}

		if err := d.deliver(ctx, typ, r, title, message); err != nil {
			report.Failed++
			d.log.Error("notification delivery failed",
				logger.String("recipient_id", r.ID),
				logger.String("type", typ.String()),
				logger.Err(err))
			continue
		}
		report.Sent++
	}

	d.log.Info("dispatch complete",
		logger.String("type", typ.String()),
		logger.RecipientCount(report.Matched),
		logger.Int("sent", report.Sent),
		logger.Int("skipped", report.Skipped),
		logger.Int("failed", report.Failed))

	return report, nil
}

// deliver builds, sends, and records one notification.
func (d *Dispatcher) deliver(ctx context.Context, typ Type, r Recipient, title, message string) error {
	n, err := NewNotification(typ, r.ID, title, message)
	if err != nil {
		return err
	}

	if err := n.MarkSending(); err != nil {
		return err
	}

	sendErr := d.retrier.Do(ctx, func(ctx context.Context) error {
		return d.sender.Send(ctx, n)
	})
	if sendErr != nil {
		_ = n.MarkFailed(sendErr)
	} else if err := n.MarkSent(); err != nil {
		return err
	}

	if d.repo != nil {
		if err := d.repo.Save(ctx, n); err != nil {
			d.log.Warn("failed to persist notification record",
				logger.String("notification_id", n.ID.String()),
				logger.Err(err))
		}
	}

	return sendErr
}
