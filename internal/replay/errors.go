package replay

import (
	"errors"
	"fmt"
)

// Errors returned by scenario loading and replay.
var (
	// ErrNotScenario indicates input that is not a mapping at the top
	// level.
	ErrNotScenario = errors.New("scenario must be a mapping")

	// ErrNoDocument indicates a scenario without a starting tree.
	ErrNoDocument = errors.New("scenario has no document")
)

// ScenarioError reports an invalid field inside an otherwise readable
// scenario file.
type ScenarioError struct {
	Field   string
	Message string
	Err     error
}

func (e *ScenarioError) Error() string {
	return fmt.Sprintf("scenario field %s: %s", e.Field, e.Message)
}

func (e *ScenarioError) Unwrap() error {
	return e.Err
}

// StepError reports an operation the document rejected mid-replay.
type StepError struct {
	Index int
	Kind  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("operation %d (%s): %v", e.Index+1, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
