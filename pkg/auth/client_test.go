package auth

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

const testEndpoint = "https://auth.local-guard.test/r1/cstore-auth"

func TestValidateEndpointPolicy(t *testing.T) {
	cases := []struct {
		name     string
		endpoint string
		wantErr  bool
	}{
		{name: "valid", endpoint: testEndpoint},
		{name: "valid with prefix path", endpoint: "https://gateway.example.com/api/r1/cstore-auth"},
		{name: "http scheme", endpoint: "http://auth.local-guard.test/r1/cstore-auth", wantErr: true},
		{name: "wrong suffix", endpoint: "https://auth.local-guard.test/r1/auth", wantErr: true},
		{name: "no path", endpoint: "https://auth.local-guard.test", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateEndpoint(tc.endpoint)
			if tc.wantErr {
				var endpointErr *EndpointError
				require.ErrorAs(t, err, &endpointErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewClientRequiresTransport(t *testing.T) {
	_, err := NewClient(testEndpoint, nil)
	require.Error(t, err)
}

func TestLoginIssuesTokenWithAbsoluteExpiry(t *testing.T) {
	client, err := NewClient(testEndpoint, &StaticTransport{ExpiresInSeconds: 60})
	require.NoError(t, err)

	token, err := client.Login(Credentials{Username: "operator", Password: "secret"}, 1_000)
	require.NoError(t, err)
	require.Equal(t, "static-token-operator", token.AccessToken)
	require.Equal(t, "session-operator", token.SessionID)
	require.Equal(t, int64(61_000), token.ExpiresAtMS)
}

func TestLoginRejectsBlankCredentialsLocally(t *testing.T) {
	transport := &StaticTransport{Err: errors.New("transport must not be reached")}
	client, err := NewClient(testEndpoint, transport)
	require.NoError(t, err)

	_, err = client.Login(Credentials{Username: " ", Password: "secret"}, 0)
	require.ErrorIs(t, err, ErrEmptyCredential)

	_, err = client.Login(Credentials{Username: "operator", Password: ""}, 0)
	require.ErrorIs(t, err, ErrEmptyCredential)
}

func TestLoginWrapsTransportFailures(t *testing.T) {
	cause := errors.New("backend unavailable")
	client, err := NewClient(testEndpoint, &StaticTransport{Err: cause})
	require.NoError(t, err)

	_, err = client.Login(Credentials{Username: "operator", Password: "secret"}, 0)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.ErrorIs(t, err, cause)
}

func TestLoginRejectsIncompleteResponse(t *testing.T) {
	client, err := NewClient(testEndpoint, blankTokenTransport{})
	require.NoError(t, err)

	_, err = client.Login(Credentials{Username: "operator", Password: "secret"}, 0)
	var responseErr *ResponseError
	require.ErrorAs(t, err, &responseErr)
}

func TestExpirySaturatesInsteadOfOverflowing(t *testing.T) {
	client, err := NewClient(testEndpoint, &StaticTransport{ExpiresInSeconds: math.MaxInt64})
	require.NoError(t, err)

	token, err := client.Login(Credentials{Username: "operator", Password: "secret"}, 10)
	require.NoError(t, err)
	require.Equal(t, int64(math.MaxInt64), token.ExpiresAtMS)
	require.False(t, token.Expired(math.MaxInt64-1))
}

func TestStaticTransportRejectsFailCredential(t *testing.T) {
	client, err := NewClient(testEndpoint, &StaticTransport{})
	require.NoError(t, err)

	_, err = client.Login(Credentials{Username: "fail", Password: "secret"}, 0)
	require.Error(t, err)
}

type blankTokenTransport struct{}

func (blankTokenTransport) Authenticate(string, LoginRequest) (LoginResponse, error) {
	return LoginResponse{AccessToken: "", SessionID: "session-1", ExpiresInSeconds: 60}, nil
}
