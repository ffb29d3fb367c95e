package services

import "fmt"

// MsgAllFieldsRequired is the validation message for a create request with a
// missing field.
const MsgAllFieldsRequired = "All fields are required"

// ValidationError reports a missing or unparsable transaction field.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// InvalidIDError reports an identifier that can never match a stored record.
type InvalidIDError struct {
	ID string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid transaction id %q", e.ID)
}

// NotFoundError reports a well-formed identifier with no matching record.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("transaction %s not found", e.ID)
}

// EmptyMessageError reports a blank chat message.
type EmptyMessageError struct{}

func (e *EmptyMessageError) Error() string {
	return "message is required"
}

// UpstreamError reports a failed call to the completion API. Status is the
// HTTP status returned by the endpoint, or 0 when no response arrived.
type UpstreamError struct {
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("completion API returned status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("completion API request failed: %s", e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// StoreError reports a persistence failure during Op.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
