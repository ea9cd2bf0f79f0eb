// Package poferrors defines the typed failures a prediction request can end with.
package poferrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for callers and metrics.
type Kind int

const (
	// KindUnknown is any failure that was not raised by a pipeline gate.
	KindUnknown Kind = iota

	// KindInvalidImage covers missing, undecodable or zero-size images and
	// diagrams in which no nodes were detected.
	KindInvalidImage

	// KindNoSiteID is returned when the down-site identifier is empty.
	KindNoSiteID

	// KindSiteIDNotFound is returned when the down-site identifier cannot be
	// matched confidently against the identifiers read from the image.
	KindSiteIDNotFound

	// KindInternal marks a broken invariant inside the pipeline, not bad input.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidImage:
		return "InvalidImage"
	case KindNoSiteID:
		return "NoSiteId"
	case KindSiteIDNotFound:
		return "SiteIdNotFound"
	case KindInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// UserFacing reports whether the kind describes a problem with the request
// rather than with the service.
func (k Kind) UserFacing() bool {
	return k == KindInvalidImage || k == KindNoSiteID || k == KindSiteIDNotFound
}

// Error is a classified pipeline failure.
type Error struct {
	Kind    Kind
	Message string

	// Candidate and Score describe the best near miss of a failed match.
	Candidate string
	Score     int

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s]%s: %s", e.Kind, e.Message, e.cause.Error())
	}
	return fmt.Sprintf("[%s]%s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New returns an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf returns an error of the given kind with a formatted message.
func Newf(kind Kind, format string, a ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

// Wrap classifies cause under kind.
func Wrap(kind Kind, cause error, msg string) *Error {
	return &Error{Kind: kind, Message: msg, cause: cause}
}

// NotFound returns a SiteIdNotFound error carrying the near miss.
func NotFound(downID, candidate string, score int) *Error {
	e := Newf(KindSiteIDNotFound, "site down with id %q closest match %q has low similarity (%d%%)", downID, candidate, score)
	e.Candidate = candidate
	e.Score = score
	return e
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
