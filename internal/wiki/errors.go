package wiki

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no page matches the requested topic.
	ErrNotFound = errors.New("page not found")

	// ErrEmptyTopic is returned when the topic is empty or only contains
	// whitespace.
	ErrEmptyTopic = errors.New("topic must not be empty")
)

// DisambiguationError is returned when a topic resolves to a disambiguation
// page. Candidates holds the alternative titles the page lists, in page
// order.
type DisambiguationError struct {
	// Topic is the topic as requested by the caller.
	Topic string

	// Title is the title of the disambiguation page.
	Title string

	// Candidates are the article titles offered by the page.
	Candidates []string
}

// Error implements the error interface.
func (e *DisambiguationError) Error() string {
	return fmt.Sprintf("%q may refer to: %s", e.Title,
		strings.Join(e.Candidates, ", "))
}

// UpstreamError wraps any failure of the encyclopedia service itself: a
// transport error, a timeout, a non-2xx status, a malformed body or an API
// error object.
type UpstreamError struct {
	// Op names the request that failed (search, page, links, parse).
	Op string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("wikipedia %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// apiError is the error object the MediaWiki API embeds in a 200 response.
type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// Error implements the error interface.
func (e *apiError) Error() string {
	return fmt.Sprintf("api error %s: %s", e.Code, e.Info)
}

// asUpstream makes sure err belongs to the failure taxonomy. Errors that
// already are lookup failures are returned untouched, anything else is
// wrapped as an UpstreamError for the given op.
func asUpstream(op string, err error) error {
	var (
		upErr  *UpstreamError
		disErr *DisambiguationError
	)
	switch {
	case errors.As(err, &upErr), errors.As(err, &disErr),
		errors.Is(err, ErrNotFound):

		return err
	}

	return &UpstreamError{Op: op, Err: err}
}
