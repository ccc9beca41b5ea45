package loader

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// HTTPError is returned when the document endpoint answers with a status of 400 or
// above.
type HTTPError struct {
	URL        string
	StatusCode int
	// StatusText is the reason phrase, e.g. "Not Found".
	StatusText string
}

func (e *HTTPError) Error() string {
	return "error fetching JSON: " + e.StatusText
}

// newHTTPError takes the reason phrase the server sent, falling back to the standard
// one for the code.
func newHTTPError(url string, resp *http.Response) *HTTPError {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	if text == "" {
		text = fmt.Sprintf("status %d", resp.StatusCode)
	}
	return &HTTPError{URL: url, StatusCode: resp.StatusCode, StatusText: text}
}

// ParseError is returned when the body is not a JSON element array.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
