package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// WebhookOptions configures WebhookSender.
type WebhookOptions struct {
	URL           string
	Token         string
	RatePerSecond float64
	Burst         int
	Timeout       time.Duration
	MaxElapsed    time.Duration
}

// WebhookSender posts messages as JSON to a mail relay. Transient failures
// are retried with exponential backoff; 4xx responses other than 429 are not.
type WebhookSender struct {
	url     string
	token   string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger

	maxElapsed      time.Duration
	initialInterval time.Duration
}

func NewWebhookSender(opts WebhookOptions, logger *zap.Logger) *WebhookSender {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxElapsed == 0 {
		opts.MaxElapsed = time.Minute
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 2
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookSender{
		url:             opts.URL,
		token:           opts.Token,
		client:          &http.Client{Timeout: opts.Timeout},
		limiter:         rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
		logger:          logger,
		maxElapsed:      opts.MaxElapsed,
		initialInterval: 500 * time.Millisecond,
	}
}

// statusError is a non-2xx relay response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("relay responded %d: %s", e.code, e.body)
}

func (s *WebhookSender) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return eris.Wrap(err, "notify: encode message")
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.initialInterval
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = s.maxElapsed

	attempt := 0
	op := func() error {
		attempt++
		if err := s.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		err := s.post(ctx, payload)
		var se *statusError
		if errors.As(err, &se) && se.code >= 400 && se.code < 500 && se.code != http.StatusTooManyRequests {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		s.logger.Warn("mail relay failed, retrying",
			zap.String("to", msg.To),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(bo, ctx), notify); err != nil {
		return eris.Wrapf(err, "notify: send to %s", msg.To)
	}
	return nil
}

func (s *WebhookSender) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &statusError{code: resp.StatusCode, body: string(bytes.TrimSpace(body))}
}
