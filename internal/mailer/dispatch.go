package mailer

import (
	"context"
	"log/slog"
	"time"
)

// Dispatcher sends mail asynchronously. Delivery runs on its own goroutine
// with a detached, bounded context so a slow provider never blocks the
// request that triggered the mail.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher with the given per-send timeout.
func NewDispatcher(sender Sender, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sender:  sender,
		timeout: timeout,
		logger:  logger,
	}
}

// Dispatch delivers the message in the background. Failures are logged; the
// caller is never blocked on or informed of delivery.
func (d *Dispatcher) Dispatch(msg *Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.sender.Send(ctx, msg); err != nil {
			d.logger.Error("mail dispatch failed",
				slog.String("sender", d.sender.Name()),
				slog.String("to", msg.To),
				slog.String("subject", msg.Subject),
				slog.String("error", err.Error()),
			)
		}
	}()
}
