package storageadapter

import (
	"errors"
	"fmt"
	"strings"
)

// Failure reasons shared by adapters
const (
	// ReasonNetworkError is the only transient reason, the repository retries it
	ReasonNetworkError = "network-error"
	// ReasonNoAccessAllowed is reported to a dedicated unauthorized event
	ReasonNoAccessAllowed = "no-access-allowed"
	ReasonNotFound        = "map-not-found"
	ReasonFormatError     = "format-error"
	ReasonStorageError    = "storage-error"
)

// Failure is a backend failure: a reason followed by optional extra values, in order
type Failure struct {
	Reason string
	Extra  []any
	Err    error
}

func NewFailure(reason string, extra ...any) *Failure {
	return &Failure{Reason: reason, Extra: extra}
}

// Wrap attaches the underlying cause
func (f *Failure) Wrap(err error) *Failure {
	f.Err = err
	return f
}

func (f *Failure) Error() string {
	var sb strings.Builder
	sb.WriteString(f.Reason)
	for _, e := range f.Extra {
		sb.WriteString(": ")
		sb.WriteString(fmt.Sprint(e))
	}
	if f.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(f.Err.Error())
	}
	return sb.String()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func (f *Failure) Unauthorized() bool {
	return f.Reason == ReasonNoAccessAllowed
}

// ReasonOf returns the reason and extra values of err.
// Errors that are not a Failure use their message as reason.
func ReasonOf(err error) (reason string, extra []any) {
	if err == nil {
		return "", nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason, f.Extra
	}
	return err.Error(), nil
}

// IsNetworkError reports a transient failure worth retrying
func IsNetworkError(err error) bool {
	var f *Failure
	return errors.As(err, &f) && f.Reason == ReasonNetworkError
}

// IsUnauthorized reports the no-access-allowed reason or any error marking itself unauthorized
func IsUnauthorized(err error) bool {
	var u interface{ Unauthorized() bool }
	return errors.As(err, &u) && u.Unauthorized()
}
