// gemini.go - Gemini provider on the official generative-ai SDK

package ai

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/hospitex/medscan/configs"
	"github.com/hospitex/medscan/internal/common"
	"google.golang.org/api/option"
)

// GeminiProvider implements Provider using the Gemini API
type GeminiProvider struct {
	apiKey       string
	visionModel  string
	extractModel string
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(apiKey, visionModel, extractModel string) *GeminiProvider {
	return &GeminiProvider{
		apiKey:       apiKey,
		visionModel:  visionModel,
		extractModel: extractModel,
	}
}

// ProviderName returns "gemini"
func (g *GeminiProvider) ProviderName() string {
	return "gemini"
}

// RecognizeText sends the normalized image with the fixed recognition prompt
func (g *GeminiProvider) RecognizeText(ctx context.Context, imageData []byte, mimeType string, reqCtx *common.RequestContext) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", &RecognitionError{Provider: "gemini", Err: fmt.Errorf("failed to create client: %w", err)}
	}
	defer client.Close()

	model := client.GenerativeModel(g.visionModel)
	model.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: ptr(int32(configs.RECOGNIZE_MAX_TOKENS)),
	}

	reqCtx.LogInfo("📖 Vision model: %s (MaxOutputTokens: %d)", g.visionModel, configs.RECOGNIZE_MAX_TOKENS)

	resp, err := model.GenerateContent(ctx,
		genai.Text(RecognitionPrompt),
		genai.Blob{
			MIMEType: mimeType,
			Data:     imageData,
		},
	)
	if err != nil {
		return "", &RecognitionError{Provider: "gemini", Err: err}
	}

	text, err := firstTextPart(resp)
	if err != nil {
		return "", &RecognitionError{Provider: "gemini", Err: err}
	}
	return text, nil
}

// CompleteText issues a system+user text completion
func (g *GeminiProvider) CompleteText(ctx context.Context, system, user string, maxTokens int, reqCtx *common.RequestContext) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", &CompletionError{Provider: "gemini", Err: fmt.Errorf("failed to create client: %w", err)}
	}
	defer client.Close()

	model := client.GenerativeModel(g.extractModel)
	model.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: ptr(int32(maxTokens)),
	}
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{
			genai.Text(system),
		},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", &CompletionError{Provider: "gemini", Err: err}
	}

	text, err := firstTextPart(resp)
	if err != nil {
		return "", &CompletionError{Provider: "gemini", Err: err}
	}
	return text, nil
}

// firstTextPart extracts the first text part of the first candidate
func firstTextPart(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini API")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok && string(text) != "" {
			return string(text), nil
		}
	}
	return "", fmt.Errorf("empty response from Gemini API")
}

// ptr is a helper function to get a pointer to an int32 value
func ptr(i int32) *int32 {
	return &i
}
