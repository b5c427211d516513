package client

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes carried by API errors.
const (
	CodeUnauthenticated         = "UNAUTHENTICATED"
	CodeCredentialRefreshFailed = "CREDENTIAL_REFRESH_FAILED"
	CodeNetwork                 = "NETWORK_ERROR"
	CodeDuplicateResource       = "DUPLICATE_RESOURCE"
	CodeNotFound                = "NOT_FOUND"
	CodeValidation              = "VALIDATION_ERROR"
	CodeAPI                     = "API_ERROR"
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// Code returns the text code of err, or "" if it carries none.
func Code(err error) string {
	var ge *goerrors.Error
	if goerrors.As(err, &ge) {
		return ge.TextCode
	}
	return ""
}

// IsCode reports whether err carries the given text code.
func IsCode(err error, code string) bool {
	return err != nil && Code(err) == code
}

// Message returns the server or taxonomy message of err without the category
// prefix and wrapped source.
func Message(err error) string {
	var ge *goerrors.Error
	if goerrors.As(err, &ge) {
		return ge.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// UserMessage renders err for display.
func UserMessage(err error) string {
	switch Code(err) {
	case CodeUnauthenticated:
		return "You are not signed in. Run `wealthwise login`."
	case CodeCredentialRefreshFailed:
		return "Your session could not be refreshed. Please sign in again."
	case CodeNetwork:
		return "Network error. Check your connection and try again."
	case "":
		if err == nil {
			return ""
		}
		return err.Error()
	}
	return Message(err)
}

func unauthenticated(cause error) *goerrors.Error {
	return goerrors.Wrap(cause, goerrors.CategoryAuth, "not authenticated").
		WithTextCode(CodeUnauthenticated)
}

func refreshFailed(cause error) *goerrors.Error {
	return goerrors.Wrap(cause, goerrors.CategoryAuth, "credential refresh failed").
		WithTextCode(CodeCredentialRefreshFailed)
}

func networkError(cause error) *goerrors.Error {
	return goerrors.Wrap(cause, goerrors.CategoryExternal, "network error").
		WithTextCode(CodeNetwork)
}

// statusError classifies an HTTP failure. The *HTTPError stays reachable
// through errors.As.
func statusError(status int, message string) *goerrors.Error {
	if message == "" {
		message = http.StatusText(status)
	}
	category, code := goerrors.CategoryExternal, CodeAPI
	switch status {
	case http.StatusUnauthorized:
		category, code = goerrors.CategoryAuth, CodeUnauthenticated
	case http.StatusNotFound:
		category, code = goerrors.CategoryNotFound, CodeNotFound
	case http.StatusConflict:
		category, code = goerrors.CategoryConflict, CodeDuplicateResource
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		category, code = goerrors.CategoryValidation, CodeValidation
	}
	return goerrors.Wrap(&HTTPError{StatusCode: status, Message: message}, category, message).
		WithCode(status).
		WithTextCode(code)
}
