package app

import "fmt"

// DomainError carries the HTTP status and stable error code for the JSON
// error envelope. Engine sentinel errors are translated into these in
// mapError; constructing one directly pins the response shape.
type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}
