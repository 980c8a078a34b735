// extractor.go - Structured field extraction from recognized document text

package extractor

import (
	"context"
	"fmt"

	"github.com/hospitex/medscan/configs"
	"github.com/hospitex/medscan/internal/ai"
	"github.com/hospitex/medscan/internal/common"
)

// ExtractionError is a transport or API failure calling the text capability.
// Propagated to the caller instead of being downgraded to an empty record,
// so the UI layer can decide between a partial-data warning and an abort.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("field extraction failed: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one extraction call
type Result struct {
	Record       Record `json:"record"`
	FallbackUsed bool   `json:"fallback_used"`
	RawResponse  string `json:"raw_response,omitempty"`
}

// Extractor pulls the five appointment fields out of recognized text
type Extractor struct {
	provider ai.Provider
}

// New creates an Extractor backed by the given provider
func New(provider ai.Provider) *Extractor {
	return &Extractor{provider: provider}
}

// Extract issues one text-completion call and parses the response into a
// Record. A structural parse failure falls back to per-key pattern search;
// a failed model call is surfaced as *ExtractionError.
func (e *Extractor) Extract(ctx context.Context, recognizedText string, reqCtx *common.RequestContext) (*Result, error) {
	raw, err := e.provider.CompleteText(ctx,
		ai.ExtractionSystemPrompt,
		ai.BuildExtractionUserPrompt(recognizedText),
		configs.EXTRACT_MAX_TOKENS,
		reqCtx,
	)
	if err != nil {
		return nil, &ExtractionError{Err: err}
	}

	record, fallbackUsed := ParseRecord(raw)
	if fallbackUsed {
		// Flagged so extraction-quality regressions stay observable
		reqCtx.LogWarning("Structured decode failed, recovered fields via pattern search (found: %d/5)", record.FoundCount())
	}

	return &Result{
		Record:       record,
		FallbackUsed: fallbackUsed,
		RawResponse:  raw,
	}, nil
}
