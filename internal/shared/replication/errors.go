package replication

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOperation = errors.New("invalid change operation")
	ErrMalformedEvent   = errors.New("malformed change event")
	ErrDelivery         = errors.New("change delivery failed")
	ErrApply            = errors.New("change apply failed")
)

// DeliveryError reports that a change was committed locally but could not be
// handed to the transport. The local write is not rolled back.
type DeliveryError struct {
	Operation Operation
	EntityID  string
	Topic     string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %s %s to %q: %v", e.Operation, e.EntityID, e.Topic, e.Err)
}

func (e *DeliveryError) Unwrap() []error {
	return []error{ErrDelivery, e.Err}
}

// ApplyError reports that a remote change could not be written to storage.
// Redelivery is left to the transport.
type ApplyError struct {
	Operation Operation
	EntityID  string
	Err       error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply %s %s: %v", e.Operation, e.EntityID, e.Err)
}

func (e *ApplyError) Unwrap() []error {
	return []error{ErrApply, e.Err}
}
