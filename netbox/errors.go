package netbox

import (
	"fmt"
	"net/http"
	"strings"

	nb "github.com/netbox-community/go-netbox/v4"
	"github.com/pkg/errors"
)

// APIError - A non-2xx or undecodable response from NetBox.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("NetBox %v %v failed (status %d)", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("NetBox %v %v failed (status %d): %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// IsAuthError - If NetBox refused the token.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// wrapError maps a library error to an APIError when NetBox answered, else wraps the transport error.
func wrapError(err error, response *http.Response, method string, operation string) error {
	var openAPIError *nb.GenericOpenAPIError
	if response == nil || !errors.As(err, &openAPIError) {
		return errors.Wrapf(err, "NetBox %v %v", method, operation)
	}

	path := operation
	if response.Request != nil && response.Request.URL != nil {
		path = response.Request.URL.Path
	}
	message := strings.TrimSpace(string(openAPIError.Body()))
	if message == "" || response.StatusCode < 300 {
		// Decoding failed, or the body was empty
		message = openAPIError.Error()
	}
	return &APIError{
		Method:     method,
		Path:       path,
		StatusCode: response.StatusCode,
		Message:    message,
	}
}
