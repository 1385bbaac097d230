package publish

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a run stopped
type ErrorKind string

const (
	KindScanFailed          ErrorKind = "scan_failed"
	KindDeletionFailed      ErrorKind = "deletion_failed"
	KindDeletionCheckFailed ErrorKind = "deletion_check_failed"
	KindDeletionTimeout     ErrorKind = "deletion_timeout"
	KindUploadFailed        ErrorKind = "upload_failed"
	KindCancelled           ErrorKind = "cancelled"
)

// Error is the terminal failure of a run. Every kind aborts the run; none
// is retried.
type Error struct {
	Kind ErrorKind
	// Path is the relative path of the file being uploaded, for upload failures
	Path string
	// StatusCode is the HTTP status that caused the failure, 0 for transport errors
	StatusCode int
	Details    string
	Err        error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindScanFailed:
		msg = "failed to enumerate local files"
	case KindDeletionFailed:
		msg = "failed to delete remote folder"
	case KindDeletionCheckFailed:
		msg = "failed to check remote folder deletion"
	case KindDeletionTimeout:
		msg = "timed out waiting for remote folder deletion"
	case KindUploadFailed:
		msg = fmt.Sprintf("failed to upload %s", e.Path)
	case KindCancelled:
		msg = "publish cancelled"
	default:
		msg = string(e.Kind)
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a publish error anywhere in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var pubErr *Error
	if errors.As(err, &pubErr) {
		return pubErr.Kind, true
	}
	return "", false
}
