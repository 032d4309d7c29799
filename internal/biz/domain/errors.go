package domain

import "fmt"

// ValidationError is a malformed command from the primary user.
// It is always reported back to the issuing user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError marks a draft-lifecycle command with no active draft.
// Treated as a silent no-op toward the contact.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + ": not found"
}

// GenerationError is a text-provider failure. Recovered locally with a
// fixed fallback message, never surfaced to either party.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// PersistenceError is a store read/write failure. Reads degrade to safe
// defaults; write failures are reported only on the primary user's
// diagnostic channel.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
