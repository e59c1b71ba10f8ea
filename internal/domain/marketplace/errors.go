package marketplace

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindNotFound               ErrorKind = "not_found"
	KindNotOwned               ErrorKind = "not_owned"
	KindPermission             ErrorKind = "permission_denied"
	KindValidation             ErrorKind = "validation_error"
	KindDuplicateActiveListing ErrorKind = "duplicate_active_listing"
	KindBidTooLow              ErrorKind = "bid_too_low"
	KindCardCurrentlyListed    ErrorKind = "card_currently_listed"
	KindMarketplace            ErrorKind = "marketplace_error"
	KindDatabase               ErrorKind = "database_error"
)

// Error is the structured failure every engine operation returns.
// Message is safe to show to callers, Err carries the internal cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind so callers can write errors.Is(err, marketplace.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound               = &Error{Kind: KindNotFound, Message: "not found"}
	ErrNotOwned               = &Error{Kind: KindNotOwned, Message: "card is not owned by the caller"}
	ErrPermission             = &Error{Kind: KindPermission, Message: "permission denied"}
	ErrValidation             = &Error{Kind: KindValidation, Message: "invalid request"}
	ErrDuplicateActiveListing = &Error{Kind: KindDuplicateActiveListing, Message: "card already has an active listing"}
	ErrBidTooLow              = &Error{Kind: KindBidTooLow, Message: "bid must exceed the current highest bid"}
	ErrCardCurrentlyListed    = &Error{Kind: KindCardCurrentlyListed, Message: "card has an active listing"}
	ErrMarketplace            = &Error{Kind: KindMarketplace, Message: "marketplace operation failed"}
	ErrDatabase               = &Error{Kind: KindDatabase, Message: "storage failure"}
)

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func validation(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

func marketplaceErr(msg string, err error) *Error {
	return &Error{Kind: KindMarketplace, Message: msg, Err: err}
}

// classify turns anything that is not already an *Error into a database error.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var merr *Error
	if errors.As(err, &merr) {
		return err
	}
	if errors.Is(err, ErrActiveListingExists) {
		return &Error{Kind: KindDuplicateActiveListing, Message: "card already has an active listing", Err: err}
	}
	if errors.Is(err, ErrConflict) {
		return &Error{Kind: KindMarketplace, Message: "concurrent update, retry the request", Err: err}
	}
	if errors.Is(err, ErrRecordNotFound) {
		return &Error{Kind: KindNotFound, Message: "record not found", Err: err}
	}
	return &Error{Kind: KindDatabase, Message: "failed to " + op, Err: err}
}

// rejected reports whether err is a business-rule refusal rather than a
// storage or chain failure.
func rejected(err error) bool {
	var merr *Error
	if !errors.As(err, &merr) {
		return false
	}
	switch merr.Kind {
	case KindNotFound, KindNotOwned, KindPermission, KindValidation,
		KindDuplicateActiveListing, KindBidTooLow, KindCardCurrentlyListed:
		return true
	case KindMarketplace, KindDatabase:
		return false
	}
	return false
}

// KindOf returns the kind of err, or marketplace_error for foreign errors.
func KindOf(err error) ErrorKind {
	var merr *Error
	if errors.As(err, &merr) {
		return merr.Kind
	}
	return KindMarketplace
}
