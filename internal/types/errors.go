package types

import "errors"

// Sentinel errors for DocCheck operations.
var (
	// ErrSchemaViolation indicates a rule failed required-field checks on accept.
	ErrSchemaViolation = errors.New("rule violates schema")

	// ErrUnknownDocumentType indicates a category outside the known set.
	ErrUnknownDocumentType = errors.New("unknown document type")

	// ErrCoercionFailed indicates a field value could not be converted for a validator.
	ErrCoercionFailed = errors.New("type coercion failed")

	// ErrDocumentNotFound indicates no archived document matches the given ID.
	ErrDocumentNotFound = errors.New("document not found")
)
