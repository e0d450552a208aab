package auth

import (
	"errors"
	"fmt"
	"strings"
)

// StaticTransport is a deterministic in-process transport used for tests and
// offline runs. It issues tokens derived from the request and rejects the
// literal credential "fail" so failure paths stay exercisable.
type StaticTransport struct {
	// ExpiresInSeconds overrides the issued token lifetime; zero means the
	// 30-minute default.
	ExpiresInSeconds int64
	// Err, when set, is returned for every authenticate call.
	Err error
}

const defaultStaticExpirySeconds = 30 * 60

// Authenticate implements Transport.
func (t *StaticTransport) Authenticate(_ string, request LoginRequest) (LoginResponse, error) {
	if t.Err != nil {
		return LoginResponse{}, t.Err
	}
	if strings.EqualFold(strings.TrimSpace(request.Username), "fail") ||
		strings.EqualFold(strings.TrimSpace(request.Password), "fail") {
		return LoginResponse{}, errors.New("credentials rejected by static auth transport")
	}

	expires := t.ExpiresInSeconds
	if expires == 0 {
		expires = defaultStaticExpirySeconds
	}
	return LoginResponse{
		AccessToken:      fmt.Sprintf("static-token-%s", strings.TrimSpace(request.Username)),
		SessionID:        fmt.Sprintf("session-%s", strings.TrimSpace(request.Username)),
		ExpiresInSeconds: expires,
	}, nil
}
