// errors.go - The scheduler's distinct failure shapes

package scheduler

import "fmt"

// InvalidTimeError means the record's date/time pair does not form a valid
// local date-time. Raised before any network I/O.
type InvalidTimeError struct {
	Date string
	Time string
	Err  error
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid date/time %q %q: %v", e.Date, e.Time, e.Err)
}

func (e *InvalidTimeError) Unwrap() error {
	return e.Err
}

// TransportError is a network failure or a non-200 response from the
// calendar endpoint
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("calendar endpoint unreachable: %v", e.Err)
	}
	return fmt.Sprintf("calendar endpoint returned HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ApplicationError is a 200 response whose status field is not "success";
// the endpoint accepted the call but rejected the event
type ApplicationError struct {
	Status  string
	Message string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("calendar rejected event (status %q): %s", e.Status, e.Message)
}

// ResponseDecodeError is a 200 response whose body is not valid JSON
type ResponseDecodeError struct {
	Err  error
	Body string
}

func (e *ResponseDecodeError) Error() string {
	return fmt.Sprintf("undecodable calendar response: %v", e.Err)
}

func (e *ResponseDecodeError) Unwrap() error {
	return e.Err
}
