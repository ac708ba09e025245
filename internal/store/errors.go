package store

import (
	"errors"

	"github.com/minio/minio-go/v7"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrAccessDenied   = errors.New("access denied")
	ErrRecordNotFound = errors.New("record not found")
)

// IsRetryable reports whether a remote failure is worth another attempt.
// Missing objects and denied access never heal on retry.
func IsRetryable(err error) bool {
	return !errors.Is(err, ErrObjectNotFound) && !errors.Is(err, ErrAccessDenied)
}

// classifyError maps backend error codes onto the package sentinels, keeping
// the original error in the chain.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return errors.Join(ErrObjectNotFound, err)
	case "AccessDenied":
		return errors.Join(ErrAccessDenied, err)
	}
	return err
}
