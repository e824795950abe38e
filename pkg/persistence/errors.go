// Package persistence provides standardized error types for storage operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrFlowNotFound indicates no flow exists for the given identifier.
	ErrFlowNotFound = errors.New("flow not found")

	// ErrBotNotFound indicates no bot exists for the given identifier.
	ErrBotNotFound = errors.New("bot not found")

	// ErrExecutionNotFound indicates no execution record exists for the given identifier.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrNodeExecutionNotFound indicates no node execution record exists for the given identifier.
	ErrNodeExecutionNotFound = errors.New("node execution not found")

	// ErrExecutionSealed indicates an attempt to reseal a terminal execution record.
	ErrExecutionSealed = errors.New("execution already sealed")
)

// StorageError wraps storage errors with the operation and entity involved.
type StorageError struct {
	Op       string
	Entity   string
	EntityID string
	Err      error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s failed for %s %s: %v", e.Op, e.Entity, e.EntityID, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewStorageError creates a storage error with context.
func NewStorageError(op, entity, entityID string, err error) *StorageError {
	return &StorageError{
		Op:       op,
		Entity:   entity,
		EntityID: entityID,
		Err:      err,
	}
}

// IsFlowNotFound checks whether an error indicates a missing flow.
func IsFlowNotFound(err error) bool {
	return errors.Is(err, ErrFlowNotFound)
}

// IsBotNotFound checks whether an error indicates a missing bot.
func IsBotNotFound(err error) bool {
	return errors.Is(err, ErrBotNotFound)
}

// IsExecutionNotFound checks whether an error indicates a missing execution record.
func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}
