package cache

import (
	"errors"
	"fmt"
)

// MergeErrorCode categorizes merge failures.
type MergeErrorCode string

const (
	// ErrCodeSourceNotFound indicates the merge source location does not exist.
	ErrCodeSourceNotFound MergeErrorCode = "SOURCE_NOT_FOUND"

	// ErrCodeSourceEqualsTarget indicates the merge source is the target itself.
	ErrCodeSourceEqualsTarget MergeErrorCode = "SOURCE_EQUALS_TARGET"
)

// MergeError reports a failed merge call. The target store is left in
// its prior state for every failure that carries this type.
type MergeError struct {
	Code   MergeErrorCode
	Target string
	Source string
}

// Error implements the error interface.
func (e *MergeError) Error() string {
	switch e.Code {
	case ErrCodeSourceNotFound:
		return fmt.Sprintf("%s: merge source %q does not exist", e.Code, e.Source)
	case ErrCodeSourceEqualsTarget:
		return fmt.Sprintf("%s: merge source %q is the target", e.Code, e.Source)
	default:
		return fmt.Sprintf("%s: merge %q into %q failed", e.Code, e.Source, e.Target)
	}
}

// IsSourceNotFound reports whether err is a SOURCE_NOT_FOUND merge
// error. Uses errors.As to handle wrapped errors.
func IsSourceNotFound(err error) bool {
	var me *MergeError
	if errors.As(err, &me) {
		return me.Code == ErrCodeSourceNotFound
	}
	return false
}

// IsSourceEqualsTarget reports whether err is a SOURCE_EQUALS_TARGET
// merge error. Uses errors.As to handle wrapped errors.
func IsSourceEqualsTarget(err error) bool {
	var me *MergeError
	if errors.As(err, &me) {
		return me.Code == ErrCodeSourceEqualsTarget
	}
	return false
}
