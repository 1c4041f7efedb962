package model

type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// DomainError carries the membership and authorization failure kinds so
// controllers can map each kind to exactly one HTTP status. Every operation
// either succeeds or fails with a single kind, never a partial result.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
}

func (e *DomainError) Error() string {
	return e.Message
}
