// interface.go - Provider interface for supporting multiple AI backends

package ai

import (
	"context"

	"github.com/hospitex/medscan/internal/common"
)

// Provider defines the two external model capabilities the pipeline uses.
// This allows us to swap backends (OpenAI, Gemini) behind the same interface.
type Provider interface {
	// RecognizeText sends a normalized image to the vision capability and
	// returns the text the model sees in it. Exactly one external call,
	// no retries. Failures are a *RecognitionError, never an error string
	// disguised as output.
	RecognizeText(ctx context.Context, imageData []byte, mimeType string, reqCtx *common.RequestContext) (string, error)

	// CompleteText issues a single system+user text completion with a
	// bounded output length. Failures are a *CompletionError.
	CompleteText(ctx context.Context, system, user string, maxTokens int, reqCtx *common.RequestContext) (string, error)

	// ProviderName returns the backend name (e.g., "openai", "gemini")
	ProviderName() string
}
