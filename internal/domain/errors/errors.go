package errors

import (
	"errors"
	"fmt"
)

var (
	// Saga / routing errors
	ErrUnknownSource = errors.New("event source is not a saga participant")
	ErrInvalidStatus = errors.New("event status outside the saga protocol")

	// Participant record errors
	ErrAlreadyProcessed    = errors.New("transaction already processed by this participant")
	ErrPaymentNotFound     = errors.New("payment not found by orderId and transactionId")
	ErrValidationNotFound  = errors.New("validation not found by orderId and transactionId")
	ErrInventoryNotFound   = errors.New("inventory not found for product")
	ErrInsufficientStock   = errors.New("insufficient stock for product")
	ErrProductNotFound     = errors.New("product does not exist")
	ErrAmountBelowMinimum  = errors.New("amount below the minimum transactable value")

	// Audit / order errors
	ErrEventNotFound = errors.New("event not found")
	ErrOrderNotFound = errors.New("order not found")
)

// DomainError wraps errors with a stable code and human-readable context.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError is an expected, domain-level failure. Participants convert
// these into a ROLLBACK_PENDING/FAIL transition plus a history entry; they are
// never allowed to escape as a process crash.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidation reports whether err is a validation-class failure, either a
// *ValidationError or one of the sentinel errors that represent expected
// domain conditions.
func IsValidation(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	for _, sentinel := range []error{
		ErrAlreadyProcessed,
		ErrPaymentNotFound,
		ErrValidationNotFound,
		ErrInventoryNotFound,
		ErrInsufficientStock,
		ErrProductNotFound,
		ErrAmountBelowMinimum,
		ErrEventNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
