// Package syncerr defines the failure taxonomy shared by the sync endpoints.
// Each error type matches one sentinel through errors.Is and maps to a
// single HTTP status.
package syncerr

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"
)

var (
	ErrConfig      = errors.New("configuration error")
	ErrUpstream    = errors.New("upstream error")
	ErrNotFound    = errors.New("not found")
	ErrRateLimited = errors.New("rate limited")
)

// ConfigError is returned when credentials or identifiers are missing or
// malformed. It is never retried.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Component, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Component, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// UpstreamError wraps a failed call to an external service. StatusCode is
// the upstream HTTP status, or 0 when the request never got a response.
type UpstreamError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

func NewUpstreamError(service string, statusCode int, err error) *UpstreamError {
	return &UpstreamError{Service: service, StatusCode: statusCode, Err: err}
}

// NotFoundError reports that the configured calendar or folder does not exist
// or is not visible to the credentials in use.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// RateLimitedError is returned when a sync is requested before the cooldown
// window has elapsed.
type RateLimitedError struct {
	Remaining time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("please wait %d seconds before syncing again", e.RetryAfterSeconds())
}

func (e *RateLimitedError) Is(target error) bool { return target == ErrRateLimited }

// RetryAfterSeconds rounds the remaining wait up to whole seconds.
func (e *RateLimitedError) RetryAfterSeconds() int {
	return int(math.Ceil(e.Remaining.Seconds()))
}

// HTTPStatus maps an error from the sync path to the status returned to the
// caller. Upstream credential rejections surface as 401.
func HTTPStatus(err error) int {
	var upstream *UpstreamError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &upstream) && (upstream.StatusCode == http.StatusUnauthorized || upstream.StatusCode == http.StatusForbidden):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
