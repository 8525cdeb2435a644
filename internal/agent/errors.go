package agent

import (
	"errors"
	"fmt"
)

var ErrUnknownWorkflow = errors.New("unknown workflow")

// ProviderError wraps a failed call to the model endpoint, tagged with the
// operation that issued it. Provider failures are never retried here.
type ProviderError struct {
	Operation string
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("model call failed for %s: %v", e.Operation, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// MalformedResponseError reports a model reply that is not valid JSON or does
// not match the expected schema. Raw carries the full reply for diagnostics.
type MalformedResponseError struct {
	Operation string
	Raw       string
	Err       error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response for %s: %v", e.Operation, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
