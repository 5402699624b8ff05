package service

import (
	"errors"
	"fmt"
)

var (
	ErrUserAlreadyExist = errors.New("user already exist")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidEmail     = errors.New("invalid email")

	// ErrActivationCodeNotSent is returned together with the created user when
	// registration succeeded but the activation code could not be issued or delivered.
	ErrActivationCodeNotSent = errors.New("activation code not sent")

	ErrUserAlreadyActivated   = errors.New("user already activated")
	ErrActivationCodeExpired  = errors.New("activation code expired")
	ErrInvalidActivationCode  = errors.New("invalid activation code")
	ErrMaxAttemptsExceeded    = errors.New("maximum number of activation code attempts exceeded")
	ErrExpirationTimeOverflow = errors.New("activation code expiration time overflow")

	errConcurrentModification = errors.New("activation code kept changing during the update")
)

// InvalidActivationCodeError is returned when a submitted code does not match
// a live code. It matches ErrInvalidActivationCode with errors.Is.
type InvalidActivationCodeError struct {
	RemainingAttempts int
}

func (e *InvalidActivationCodeError) Error() string {
	return fmt.Sprintf("%s: %d attempts remaining", ErrInvalidActivationCode, e.RemainingAttempts)
}

func (e *InvalidActivationCodeError) Is(target error) bool {
	return target == ErrInvalidActivationCode
}

type StorageOp string

const (
	StorageOpRead     StorageOp = "read"
	StorageOpCreate   StorageOp = "create"
	StorageOpUpdate   StorageOp = "update"
	StorageOpDelete   StorageOp = "delete"
	StorageOpPurge    StorageOp = "purge"
	StorageOpActivate StorageOp = "activate"
)

// StorageError wraps a failure of the record store or the user store.
// It never stands for a missing row.
type StorageError struct {
	Op  StorageOp
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("activation storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageError(op StorageOp, err error) error {
	return &StorageError{Op: op, Err: err}
}
