package upload

import (
	"context"
	"sync"
)

// ScriptedTransport replays a fixed sequence of outcomes, then succeeds. It
// records every envelope it receives so tests can assert on idempotency keys
// and attempt counts.
type ScriptedTransport struct {
	mu       sync.Mutex
	script   []error
	sent     []Envelope
	attempts int
}

// NewScriptedTransport builds a transport failing with each scripted error in
// order before succeeding on subsequent sends.
func NewScriptedTransport(script ...error) *ScriptedTransport {
	return &ScriptedTransport{script: script}
}

// Send implements Transport.
func (t *ScriptedTransport) Send(_ context.Context, envelope Envelope) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, envelope)
	t.attempts++
	if t.attempts <= len(t.script) {
		return t.script[t.attempts-1]
	}
	return nil
}

// Attempts reports how many sends were observed.
func (t *ScriptedTransport) Attempts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempts
}

// Sent returns a copy of the observed envelopes in send order.
func (t *ScriptedTransport) Sent() []Envelope {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Envelope, len(t.sent))
	copy(out, t.sent)
	return out
}
