package auth

import (
	"fmt"
	"math"
	"net/url"
	"strings"
)

// RequiredAuthPath is the path suffix every v1 auth endpoint must carry.
const RequiredAuthPath = "/r1/cstore-auth"

// Credentials are the user-provided login inputs. They are kept ephemeral and
// never logged.
type Credentials struct {
	Username string
	Password string
}

// LoginRequest is the wire request forwarded to the auth transport.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the wire response returned by the auth transport.
type LoginResponse struct {
	AccessToken      string `json:"access_token"`
	SessionID        string `json:"session_id"`
	ExpiresInSeconds int64  `json:"expires_in_seconds"`
}

// Transport sends login requests to the auth backend.
type Transport interface {
	Authenticate(endpoint string, request LoginRequest) (LoginResponse, error)
}

// Client validates endpoint policy once at construction and executes the
// login flow through an injectable transport.
type Client struct {
	endpoint  string
	transport Transport
}

// NewClient creates a validated auth client. Endpoint policy violations fail
// here, before any call is attempted.
func NewClient(endpoint string, transport Transport) (*Client, error) {
	if transport == nil {
		return nil, &EndpointError{Reason: "auth transport must be provided"}
	}
	if err := ValidateEndpoint(endpoint); err != nil {
		return nil, err
	}
	return &Client{endpoint: endpoint, transport: transport}, nil
}

// Endpoint returns the configured auth endpoint.
func (c *Client) Endpoint() string { return c.endpoint }

// Login executes the login flow and converts the server response into a
// session token. Blank credentials are rejected locally before any transport
// call; blank response fields are rejected before a token is issued.
func (c *Client) Login(credentials Credentials, nowMS int64) (SessionToken, error) {
	if strings.TrimSpace(credentials.Username) == "" || strings.TrimSpace(credentials.Password) == "" {
		return SessionToken{}, ErrEmptyCredential
	}

	response, err := c.transport.Authenticate(c.endpoint, LoginRequest{
		Username: credentials.Username,
		Password: credentials.Password,
	})
	if err != nil {
		return SessionToken{}, &TransportError{Err: err}
	}

	if strings.TrimSpace(response.AccessToken) == "" || strings.TrimSpace(response.SessionID) == "" {
		return SessionToken{}, &ResponseError{Reason: "response missing token or session id"}
	}

	return SessionToken{
		AccessToken: response.AccessToken,
		SessionID:   response.SessionID,
		ExpiresAtMS: saturatingExpiry(nowMS, response.ExpiresInSeconds),
	}, nil
}

// ValidateEndpoint enforces the v1 auth endpoint constraints: HTTPS scheme
// and a path ending with RequiredAuthPath.
func ValidateEndpoint(endpoint string) error {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return &EndpointError{Reason: fmt.Sprintf("invalid auth url: %v", err)}
	}
	if parsed.Scheme != "https" {
		return &EndpointError{Reason: "auth endpoint must use https"}
	}
	if !strings.HasSuffix(parsed.Path, RequiredAuthPath) {
		return &EndpointError{Reason: "auth endpoint path must end with " + RequiredAuthPath}
	}
	return nil
}

func saturatingExpiry(nowMS, expiresInSeconds int64) int64 {
	if expiresInSeconds <= 0 {
		return nowMS
	}
	if expiresInSeconds > (math.MaxInt64-nowMS)/1000 {
		return math.MaxInt64
	}
	return nowMS + expiresInSeconds*1000
}
