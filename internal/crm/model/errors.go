package model

import "errors"

var (
	// ErrNotFound is returned by lookups of an unknown lead, shipment or document.
	ErrNotFound = errors.New("not found")

	// ErrValidation wraps every field-level validation failure.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidStatus is returned when a status value is outside its enumeration.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrDuplicateSalesRep is returned when a representative name is already registered.
	ErrDuplicateSalesRep = errors.New("sales representative already registered")

	// ErrUnknownSalesRep is returned when a record names a representative that is not registered.
	ErrUnknownSalesRep = errors.New("unknown sales representative")

	// ErrInvalidDocumentTransition is returned when a document cannot be verified from its current status.
	ErrInvalidDocumentTransition = errors.New("invalid document transition")
)
