// scheduler.go - Calendar event creation against the external endpoint

package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hospitex/medscan/internal/common"
)

const (
	// Appointments have a fixed one-hour duration
	eventDuration = time.Hour

	// inputLayout is the joint date+time format the record fields must parse as
	inputLayout = "2006-01-02 15:04"

	// wireLayout is the ISO-8601 local date-time sent to the calendar endpoint
	wireLayout = "2006-01-02T15:04:05"
)

// Request carries the fields needed to create one calendar event
type Request struct {
	Title    string
	Date     string // YYYY-MM-DD
	Time     string // HH:MM
	Location string
}

// Result is a successfully created event
type Result struct {
	EventID       string `json:"event_id"`
	StartDateTime string `json:"start_datetime"`
	EndDateTime   string `json:"end_datetime"`
}

type eventPayload struct {
	Title         string `json:"title"`
	Location      string `json:"location"`
	StartDateTime string `json:"startDateTime"`
	EndDateTime   string `json:"endDateTime"`
}

type eventResponse struct {
	Status  string `json:"status"`
	EventID string `json:"eventId"`
	Message string `json:"message"`
}

// Scheduler posts event-creation requests to the configured endpoint
type Scheduler struct {
	endpoint string
	client   *http.Client
}

// New creates a Scheduler for the given event-creation endpoint
func New(endpoint string) *Scheduler {
	return &Scheduler{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// BuildTitle derives the event title from department and doctor
func BuildTitle(department, doctor *string) string {
	parts := []string{}
	if department != nil && strings.TrimSpace(*department) != "" {
		parts = append(parts, strings.TrimSpace(*department))
	}
	if doctor != nil && strings.TrimSpace(*doctor) != "" {
		parts = append(parts, strings.TrimSpace(*doctor))
	}
	if len(parts) == 0 {
		return "Medical appointment"
	}
	return strings.Join(parts, " - ")
}

// Schedule validates the date/time pair, computes the one-hour range, and
// issues a single synchronous POST. The four outcomes (success, transport
// failure, application rejection, undecodable body) are kept distinct.
// No retry, no idempotency key: re-invoking after an unobserved success
// creates a duplicate event server-side.
func (s *Scheduler) Schedule(ctx context.Context, req Request, reqCtx *common.RequestContext) (*Result, error) {
	start, err := time.ParseInLocation(inputLayout, req.Date+" "+req.Time, time.Local)
	if err != nil {
		return nil, &InvalidTimeError{Date: req.Date, Time: req.Time, Err: err}
	}
	end := start.Add(eventDuration)

	payload := eventPayload{
		Title:         req.Title,
		Location:      req.Location,
		StartDateTime: start.Format(wireLayout),
		EndDateTime:   end.Format(wireLayout),
	}

	body, err := s.postEvent(ctx, payload)
	if err != nil {
		return nil, err
	}

	var parsed eventResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &ResponseDecodeError{Err: err, Body: string(body)}
	}

	if parsed.Status != "success" {
		return nil, &ApplicationError{Status: parsed.Status, Message: parsed.Message}
	}

	reqCtx.LogInfo("📅 Event created: %s (%s → %s)", parsed.EventID, payload.StartDateTime, payload.EndDateTime)

	return &Result{
		EventID:       parsed.EventID,
		StartDateTime: payload.StartDateTime,
		EndDateTime:   payload.EndDateTime,
	}, nil
}

// postEvent performs the HTTP call and returns the body of a 200 response
func (s *Scheduler) postEvent(ctx context.Context, payload eventPayload) ([]byte, error) {
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
