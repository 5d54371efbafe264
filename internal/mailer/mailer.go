// Package mailer sends transactional email for the verification and password
// reset flows.
package mailer

import (
	"context"
)

// Message is a transactional email to deliver.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender defines the interface for delivering email through a provider.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg *Message) error
}
