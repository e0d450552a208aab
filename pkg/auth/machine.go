// Package auth implements login, session tokens, and the time-driven session
// state machine that gates whether capture may proceed.
package auth

// SessionToken carries the credentials issued by a successful login. Expiry
// is an absolute epoch-millisecond deadline so re-evaluation is a pure
// function of a caller-supplied timestamp.
type SessionToken struct {
	AccessToken string
	SessionID   string
	ExpiresAtMS int64
}

// Expired reports whether the token has expired at nowMS.
func (t SessionToken) Expired(nowMS int64) bool {
	return nowMS >= t.ExpiresAtMS
}

// State enumerates the session lifecycle positions.
type State string

const (
	// StateUnauthenticated means no valid session exists.
	StateUnauthenticated State = "unauthenticated"
	// StateAuthenticated means a session token is held.
	StateAuthenticated State = "authenticated"
	// StateReauthRequired means the held session expired; a fresh login is
	// the only way back to StateAuthenticated.
	StateReauthRequired State = "reauth_required"
)

// StateMachine tracks the session lifecycle with explicit legal transitions.
// It never reads a clock itself; expiry detection happens only when a caller
// supplies a timestamp.
type StateMachine struct {
	state State
	token SessionToken
}

// NewStateMachine creates a machine in the unauthenticated state.
func NewStateMachine() *StateMachine {
	return &StateMachine{state: StateUnauthenticated}
}

// State returns the current lifecycle position.
func (m *StateMachine) State() State { return m.state }

// Token returns the held session token when authenticated.
func (m *StateMachine) Token() (SessionToken, bool) {
	if m.state != StateAuthenticated {
		return SessionToken{}, false
	}
	return m.token, true
}

// OnLoginSuccess transitions to authenticated regardless of prior state.
func (m *StateMachine) OnLoginSuccess(token SessionToken) {
	m.state = StateAuthenticated
	m.token = token
}

// OnTick re-evaluates expiry at nowMS. It is the only transition into
// reauth-required and a no-op in every other state.
func (m *StateMachine) OnTick(nowMS int64) {
	if m.state == StateAuthenticated && m.token.Expired(nowMS) {
		m.state = StateReauthRequired
		m.token = SessionToken{}
	}
}

// Logout forces the unauthenticated state from anywhere.
func (m *StateMachine) Logout() {
	m.state = StateUnauthenticated
	m.token = SessionToken{}
}

// CanCapture reports whether capture is allowed at nowMS. Expiry is
// re-checked here so callers that skip ticks still get a correct
// point-in-time answer.
func (m *StateMachine) CanCapture(nowMS int64) bool {
	return m.state == StateAuthenticated && !m.token.Expired(nowMS)
}
