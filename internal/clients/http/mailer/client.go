package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrUnavailable is returned while the breaker is open or the provider answers 5xx.
var ErrUnavailable = errors.New("mail provider unavailable")

// Message is the provider payload for one email.
type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Client posts messages to a transactional mail API behind a circuit breaker.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[struct{}]
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the default 5s-timeout client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithBreakerSettings replaces the default breaker settings.
func WithBreakerSettings(st gobreaker.Settings) Option {
	return func(cl *Client) {
		cl.breaker = gobreaker.NewCircuitBreaker[struct{}](st)
	}
}

// SendOption configures a single Send call.
type SendOption func(*sendOptions)

type sendOptions struct {
	idempotencyKey string
}

// WithIdempotencyKey sets the Idempotency-Key header for the request.
func WithIdempotencyKey(key string) SendOption {
	return func(opts *sendOptions) {
		opts.idempotencyKey = strings.TrimSpace(key)
	}
}

// NewClient builds a client for baseURL authenticated with apiKey.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("mailer base URL is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("mailer API key is required")
	}
	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:    "mailer",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Send delivers msg. Client errors (4xx) do not count against the breaker.
func (c *Client) Send(ctx context.Context, msg Message, optFns ...SendOption) error {
	if c == nil || c.httpClient == nil {
		return errors.New("mailer client not configured")
	}
	if len(msg.To) == 0 {
		return errors.New("mailer recipient is required")
	}
	var opts sendOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode mail message: %w", err)
	}

	var clientErr error
	_, err = c.breaker.Execute(func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
		if err != nil {
			return struct{}{}, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		if opts.idempotencyKey != "" {
			req.Header.Set("Idempotency-Key", opts.idempotencyKey)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return struct{}{}, fmt.Errorf("call mail provider: %w", err)
		}
		defer resp.Body.Close()
		detail := readDetail(resp.Body)
		switch {
		case resp.StatusCode >= http.StatusInternalServerError:
			return struct{}{}, fmt.Errorf("%w: %s %s", ErrUnavailable, resp.Status, detail)
		case resp.StatusCode >= http.StatusBadRequest:
			clientErr = fmt.Errorf("mail provider rejected message: %s %s", resp.Status, detail)
		}
		return struct{}{}, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err != nil {
		return err
	}
	return clientErr
}

func readDetail(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4<<10))
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			return msg
		}
	}
	return strings.TrimSpace(string(raw))
}
