// errors.go - Typed failures for external model calls

package ai

import "fmt"

// RecognitionError is a transport or API failure while calling the vision
// capability. Kept distinct from recognized text so callers can never
// mistake a failure message for OCR output.
type RecognitionError struct {
	Provider string
	Err      error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("text recognition failed (%s): %v", e.Provider, e.Err)
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// CompletionError is a transport or API failure while calling the text
// completion capability.
type CompletionError struct {
	Provider string
	Err      error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("text completion failed (%s): %v", e.Provider, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}
