// openai.go - OpenAI-compatible chat completions client (vision + text)

package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hospitex/medscan/configs"
	"github.com/hospitex/medscan/internal/common"
)

// OpenAIProvider implements Provider against the chat/completions API
type OpenAIProvider struct {
	apiKey       string
	baseURL      string
	visionModel  string
	extractModel string
	client       *http.Client
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey, baseURL, visionModel, extractModel string) *OpenAIProvider {
	return &OpenAIProvider{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		visionModel:  visionModel,
		extractModel: extractModel,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ProviderName returns "openai"
func (p *OpenAIProvider) ProviderName() string {
	return "openai"
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type openaiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// RecognizeText sends the normalized image as a base64 data URI in a single
// user message with the fixed recognition prompt.
func (p *OpenAIProvider) RecognizeText(ctx context.Context, imageData []byte, mimeType string, reqCtx *common.RequestContext) (string, error) {
	base64Image := base64.StdEncoding.EncodeToString(imageData)
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64Image)

	reqCtx.LogInfo("📊 Image payload: %.2f KB, MIME type: %s", float64(len(imageData))/1024.0, mimeType)

	body := map[string]any{
		"model": p.visionModel,
		"messages": []any{
			map[string]any{
				"role": "user",
				"content": []any{
					map[string]any{"type": "text", "text": RecognitionPrompt},
					map[string]any{"type": "image_url", "image_url": map[string]any{"url": dataURL}},
				},
			},
		},
		"max_tokens": configs.RECOGNIZE_MAX_TOKENS,
	}

	content, err := p.chatCompletion(ctx, body)
	if err != nil {
		return "", &RecognitionError{Provider: "openai", Err: err}
	}
	return content, nil
}

// CompleteText issues a system+user text completion
func (p *OpenAIProvider) CompleteText(ctx context.Context, system, user string, maxTokens int, reqCtx *common.RequestContext) (string, error) {
	body := map[string]any{
		"model": p.extractModel,
		"messages": []any{
			map[string]any{"role": "system", "content": system},
			map[string]any{"role": "user", "content": user},
		},
		"max_tokens": maxTokens,
	}

	content, err := p.chatCompletion(ctx, body)
	if err != nil {
		return "", &CompletionError{Provider: "openai", Err: err}
	}
	return content, nil
}

// chatCompletion makes one HTTP request to the chat/completions endpoint
func (p *OpenAIProvider) chatCompletion(ctx context.Context, body map[string]any) (string, error) {
	requestBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp openaiErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err == nil && errorResp.Error.Message != "" {
			return "", fmt.Errorf("openai API error (%d): %s", resp.StatusCode, errorResp.Error.Message)
		}
		return "", fmt.Errorf("openai API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty completion content")
	}
	return content, nil
}
