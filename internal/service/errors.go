package service

import (
	"fmt"
)

type ErrMalformedNotification struct {
	error
}

func NewErrMalformedNotification(message string) *ErrMalformedNotification {
	return &ErrMalformedNotification{fmt.Errorf("malformed notification: %s", message)}
}

type ErrProcessingFailed struct {
	error
}

func NewErrProcessingFailed(objectKey string, cause error) *ErrProcessingFailed {
	return &ErrProcessingFailed{fmt.Errorf("processing failed for %q: %w", objectKey, cause)}
}
