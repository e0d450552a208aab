// Package upload sends mosaic payloads through an injectable transport with
// bounded exponential backoff, failure classification, and a content-derived
// idempotency key.
package upload

import (
	"context"
	"errors"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/localguard/localguard/pkg/frame"
)

// RetryPolicy is the immutable retry configuration for one client.
type RetryPolicy struct {
	// MaxRetries is the number of re-attempts after the first try.
	MaxRetries int
	// BaseDelay seeds the exponential backoff before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the grown backoff delay.
	MaxDelay time.Duration
	// Jitter adds up to this much randomness to each delay. Zero keeps the
	// schedule fully deterministic.
	Jitter time.Duration
}

// DefaultRetryPolicy mirrors the shipped configuration defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  250 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Jitter:     100 * time.Millisecond,
	}
}

// Envelope bundles everything one transport send needs.
type Envelope struct {
	Endpoint       string
	Body           []byte
	AccessToken    string
	IdempotencyKey string
	RequestID      string
}

// Transport delivers one envelope to the ingest backend.
type Transport interface {
	Send(ctx context.Context, envelope Envelope) error
}

// Report describes a successful upload.
type Report struct {
	Attempts       int
	IdempotencyKey string
	RequestID      string
}

// Options configure an upload client.
type Options struct {
	Endpoint  string
	Policy    RetryPolicy
	Transport Transport
	// Sleeper waits between attempts; defaults to a context-aware timer.
	Sleeper func(context.Context, time.Duration) error
	// Rand supplies jitter randomness; defaults to math/rand.
	Rand func(n int64) int64
}

// Client uploads payloads synchronously from the caller's perspective,
// blocking across retries. Run it off the UI thread if responsiveness
// matters.
type Client struct {
	endpoint  string
	policy    RetryPolicy
	transport Transport
	sleeper   func(context.Context, time.Duration) error
	rand      func(n int64) int64
}

// NewClient validates options and returns an upload client. The endpoint
// must be HTTPS; validation happens once here, not per call.
func NewClient(opts Options) (*Client, error) {
	if opts.Transport == nil {
		return nil, &EndpointError{Reason: "upload transport must be provided"}
	}
	parsed, err := url.Parse(opts.Endpoint)
	if err != nil {
		return nil, &EndpointError{Reason: "invalid ingest url: " + err.Error()}
	}
	if parsed.Scheme != "https" {
		return nil, &EndpointError{Reason: "ingest endpoint must use https"}
	}
	if opts.Policy.MaxRetries < 0 {
		return nil, errors.New("max retries must not be negative")
	}
	if opts.Policy.BaseDelay < 0 || opts.Policy.MaxDelay < 0 || opts.Policy.Jitter < 0 {
		return nil, errors.New("retry delays must not be negative")
	}

	sleeper := opts.Sleeper
	if sleeper == nil {
		sleeper = defaultSleeper
	}
	random := opts.Rand
	if random == nil {
		random = rand.Int63n
	}

	return &Client{
		endpoint:  opts.Endpoint,
		policy:    opts.Policy,
		transport: opts.Transport,
		sleeper:   sleeper,
		rand:      random,
	}, nil
}

// Upload sends one payload, retrying retriable failures with bounded
// exponential backoff. A permanent failure or retry exhaustion returns a
// TerminalError carrying the attempt count; success reports the attempts
// taken. The only side effect is the transport call itself.
func (c *Client) Upload(ctx context.Context, payload frame.MosaicPayload, accessToken string) (Report, error) {
	if strings.TrimSpace(accessToken) == "" {
		return Report{}, errors.New("access token must not be blank")
	}

	body, err := payload.EncodeJSON()
	if err != nil {
		return Report{}, err
	}
	key, err := IdempotencyKey(payload)
	if err != nil {
		return Report{}, err
	}

	envelope := Envelope{
		Endpoint:       c.endpoint,
		Body:           body,
		AccessToken:    accessToken,
		IdempotencyKey: key,
		RequestID:      uuid.NewString(),
	}

	delay := c.policy.BaseDelay
	attempts := 0
	for {
		attempts++
		sendErr := c.transport.Send(ctx, envelope)
		if sendErr == nil {
			return Report{
				Attempts:       attempts,
				IdempotencyKey: key,
				RequestID:      envelope.RequestID,
			}, nil
		}

		class := Classify(sendErr)
		if class == Permanent || attempts > c.policy.MaxRetries {
			return Report{}, &TerminalError{Attempts: attempts, Class: class, Err: sendErr}
		}

		if err := c.sleeper(ctx, c.withJitter(delay)); err != nil {
			return Report{}, &TerminalError{Attempts: attempts, Class: Permanent, Err: err}
		}
		delay = nextDelay(delay, c.policy.MaxDelay)
	}
}

func (c *Client) withJitter(delay time.Duration) time.Duration {
	if c.policy.Jitter <= 0 {
		return delay
	}
	return delay + time.Duration(c.rand(int64(c.policy.Jitter)))
}

func nextDelay(current, max time.Duration) time.Duration {
	if current <= 0 {
		return 0
	}
	doubled := current * 2
	if doubled > max || doubled < current {
		return max
	}
	return doubled
}

func defaultSleeper(ctx context.Context, wait time.Duration) error {
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
