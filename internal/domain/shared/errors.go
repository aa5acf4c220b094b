package shared

// DomainError is a business rule violation that the HTTP layer maps to a
// status through its Code.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string { return e.Message }

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

var ErrNotFound = NewDomainError("NOT_FOUND", "Resource not found")
