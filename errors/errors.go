/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrConfiguration is returned when an entity type has no usable collection binding
	ErrConfiguration = errors.New("invalid entity configuration")

	// ErrInvalidState is returned when an operation is called on an entity in the wrong state
	ErrInvalidState = errors.New("invalid entity state")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyExists is returned when attempting to create an entity that already exists
	ErrAlreadyExists = errors.New("entity already exists")
)

// ConfigurationError is returned when a model is defined without a collection binding.
type ConfigurationError struct {
	TypeName string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("no collection binding found for %s", e.TypeName)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// InvalidStateError represents an operation that cannot run in the entity's current state
type InvalidStateError struct {
	Operation string
	Reason    string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s: %s", e.Operation, e.Reason)
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// AlreadyExistsError represents an error when an entity already exists
type AlreadyExistsError struct {
	Collection string
	ID         string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with id %q already exists", e.Collection, e.ID)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// Helper functions for creating errors

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(typeName string) error {
	return &ConfigurationError{TypeName: typeName}
}

// NewInvalidStateError creates a new InvalidStateError
func NewInvalidStateError(operation, reason string) error {
	return &InvalidStateError{Operation: operation, Reason: reason}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// WrapValidationError creates a ValidationError that keeps the underlying cause
func WrapValidationError(field string, err error) error {
	return &ValidationError{Field: field, Message: err.Error(), Err: err}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(collection, id string) error {
	return &AlreadyExistsError{Collection: collection, ID: id}
}

// IsConfigurationError checks if an error is a configuration error
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsInvalidState checks if an error is an invalid state error
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}
