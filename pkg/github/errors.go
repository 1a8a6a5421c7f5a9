package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/go-github/v73/github"
)

// Kind classifies an Error so callers can branch without string matching.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindRateLimited
	KindForbidden
	KindUnauthorized
	KindUnprocessable
	KindUnavailable
	KindNetwork
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	case KindUnprocessable:
		return "unprocessable"
	case KindUnavailable:
		return "unavailable"
	case KindNetwork:
		return "network"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error is the only error type returned across the package boundary.
// Message is safe to show to an end user verbatim.
type Error struct {
	Kind    Kind
	Message string

	// Reset is set for KindRateLimited when the provider reported a
	// quota reset time.
	Reset time.Time

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or zero when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsCancelled reports whether err is a cancellation outcome. Callers
// should treat it as a silent no-op, not a failure.
func IsCancelled(err error) bool {
	return KindOf(err) == KindCancelled
}

func validationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func notFoundError(username string, err error) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("User '%s' not found.", username),
		Err:     err,
	}
}

func rateLimitedError(reset time.Time, err error) *Error {
	message := "API rate limit exceeded. Please try again later."
	if !reset.IsZero() {
		message = fmt.Sprintf("API rate limit exceeded. Please try again after %s.", reset.Local().Format(time.Kitchen))
	}
	return &Error{Kind: KindRateLimited, Message: message, Reset: reset, Err: err}
}

func cancelledError(reason string, err error) *Error {
	message := "Request cancelled."
	if reason != "" {
		message = fmt.Sprintf("Request cancelled: %s.", reason)
	}
	return &Error{Kind: KindCancelled, Message: message, Err: err}
}

// mapError converts a go-github or transport failure into an *Error.
// subject is the username the request was about, used for not-found
// messages; it may be empty for search requests.
func mapError(ctx context.Context, err error, subject string) *Error {
	if err == nil {
		return nil
	}

	var alreadyMapped *Error
	if errors.As(err, &alreadyMapped) {
		return alreadyMapped
	}

	if errors.Is(err, context.Canceled) {
		reason := ""
		var cause *cancelCause
		if errors.As(context.Cause(ctx), &cause) {
			reason = cause.reason
		}
		return cancelledError(reason, err)
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return rateLimitedError(rateErr.Rate.Reset.Time, err)
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		reset := time.Time{}
		if abuseErr.RetryAfter != nil {
			reset = time.Now().Add(*abuseErr.RetryAfter)
		}
		return rateLimitedError(reset, err)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusNotFound:
			return notFoundError(subject, err)
		case http.StatusUnauthorized:
			return &Error{
				Kind:    KindUnauthorized,
				Message: "GitHub rejected the stored credentials. Please set a new token.",
				Err:     err,
			}
		case http.StatusForbidden, http.StatusTooManyRequests:
			if remaining := respErr.Response.Header.Get("X-Ratelimit-Remaining"); remaining == "0" {
				return rateLimitedError(parseResetHeader(respErr.Response.Header), err)
			}
			return &Error{
				Kind:    KindForbidden,
				Message: "Access denied by GitHub. Your token may lack the required permissions.",
				Err:     err,
			}
		case http.StatusUnprocessableEntity:
			return &Error{
				Kind:    KindUnprocessable,
				Message: "GitHub could not process the search query. Please adjust your search.",
				Err:     err,
			}
		}
		if respErr.Response.StatusCode >= http.StatusInternalServerError {
			return &Error{
				Kind:    KindUnavailable,
				Message: "GitHub is temporarily unavailable. Please try again later.",
				Err:     err,
			}
		}
		return &Error{
			Kind:    KindUnavailable,
			Message: "An unexpected error occurred while talking to GitHub. Please try again later.",
			Err:     err,
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &Error{
			Kind:    KindNetwork,
			Message: "No response from GitHub. Please check your internet connection.",
			Err:     err,
		}
	}

	return &Error{
		Kind:    KindNetwork,
		Message: "No response from GitHub. Please check your internet connection.",
		Err:     err,
	}
}

func parseResetHeader(h http.Header) time.Time {
	raw := h.Get("X-Ratelimit-Reset")
	if raw == "" {
		return time.Time{}
	}
	var epoch int64
	if _, err := fmt.Sscanf(raw, "%d", &epoch); err != nil {
		return time.Time{}
	}
	return time.Unix(epoch, 0)
}
