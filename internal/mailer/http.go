package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prasetia/inventaris/pkg/httpclient"
)

// HTTPSender delivers email through an HTTP mail provider API. Calls go
// through a circuit breaker so a failing provider does not pile up requests.
type HTTPSender struct {
	client   *httpclient.CircuitBreakerClient
	endpoint string
	apiKey   string
	from     string
	logger   *slog.Logger
}

// NewHTTPSender creates a provider-backed sender.
func NewHTTPSender(client *httpclient.CircuitBreakerClient, endpoint, apiKey, from string, logger *slog.Logger) *HTTPSender {
	return &HTTPSender{
		client:   client,
		endpoint: endpoint,
		apiKey:   apiKey,
		from:     from,
		logger:   logger,
	}
}

// Name returns the name of this sender.
func (s *HTTPSender) Name() string {
	return "http-provider"
}

// Send posts the message to the provider API.
func (s *HTTPSender) Send(ctx context.Context, msg *Message) error {
	payload := struct {
		From    string `json:"from"`
		To      string `json:"to"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Body:    msg.Body,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := newProviderRequest(ctx, s.endpoint, s.apiKey, bytes.NewReader(body))
	if err != nil {
		return err
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		if errors.Is(err, httpclient.ErrCircuitOpen) {
			s.logger.WarnContext(ctx, "mail provider circuit open, dropping send",
				slog.String("to", msg.To),
			)
		}
		return fmt.Errorf("send mail: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mail provider returned status %d: %s", resp.StatusCode, string(respBody))
	}

	s.logger.DebugContext(ctx, "mail sent",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)

	return nil
}
