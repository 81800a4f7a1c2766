// Package failure classifies domain errors so transports can map them without
// knowing every sentinel.
package failure

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindInternal covers infrastructure errors and anything unclassified.
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindConflict
	// KindIntegrity means a referenced row vanished inside an otherwise valid workflow.
	KindIntegrity
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindIntegrity:
		return "integrity"
	default:
		return "internal"
	}
}

// Error is a classified domain error. Package level sentinels are *Error values and
// are matched with errors.Is.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string { return e.Message }

// Wrapf attaches context to a sentinel while keeping it matchable.
func Wrapf(sentinel *Error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// KindOf reports the classification of err, KindInternal when unclassified.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindInternal
}

// CodeOf reports the machine readable code of err, "internal" when unclassified.
func CodeOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return "internal"
}
