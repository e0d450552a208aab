package auth

import (
	"errors"
	"fmt"
)

// ErrEmptyCredential indicates a blank username or password.
var ErrEmptyCredential = errors.New("username and password must be non-empty")

// EndpointError reports an auth endpoint that violates transport policy.
type EndpointError struct {
	Reason string
}

func (e *EndpointError) Error() string {
	return "invalid endpoint: " + e.Reason
}

// ResponseError reports a login response that violates the auth contract.
type ResponseError struct {
	Reason string
}

func (e *ResponseError) Error() string {
	return "invalid auth response: " + e.Reason
}

// TransportError wraps a failure from the auth backend transport.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("auth transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
