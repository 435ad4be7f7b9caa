package service

import (
	"errors"
	"strings"
)

var (
	// ErrPersistence marks storage failures. The in-memory trade set stays
	// authoritative when it is returned.
	ErrPersistence = errors.New("persistence failure")

	// ErrStoreClosed is returned by operations attempted after Close.
	ErrStoreClosed = errors.New("trade store is closed")
)

// ValidationError lists every rule a capture request violated.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "trade rejected: " + strings.Join(e.Messages, "; ")
}

// PersistenceError reports a failed load, save or delete of the trade record.
// It matches ErrPersistence with errors.Is.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "persistence failure on " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
