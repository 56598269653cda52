package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENT_MODIFICATION", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrIntegrityViolation  = NewDomainError("INTEGRITY_VIOLATION", "Data integrity invariant violated")
)

// Error codes for business rule failures in the order lifecycle.
// Handlers map these onto HTTP statuses; the codes themselves are part of
// the API contract so the UI can explain the rejection.
const (
	ErrCodeOutOfOrderStage  = "OUT_OF_ORDER_STAGE"
	ErrCodeCountMismatch    = "COUNT_MISMATCH"
	ErrCodeMissingReason    = "MISSING_REASON"
	ErrCodeMissingNotes     = "MISSING_NOTES"
	ErrCodeInvalidPrice     = "INVALID_PRICE"
	ErrCodeAlreadyAssigned  = "ALREADY_ASSIGNED"
	ErrCodeQCHold           = "QC_HOLD"
	ErrCodeNotReadyToShip   = "NOT_READY_TO_SHIP"
	ErrCodeNoActiveSupplier = "NO_ACTIVE_SUPPLIER"
)
