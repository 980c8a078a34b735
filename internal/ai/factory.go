// factory.go - Provider factory for creating the configured AI backend

package ai

import (
	"fmt"
	"log"

	"github.com/hospitex/medscan/configs"
)

// CreateProvider creates an AI provider based on configuration
func CreateProvider() (Provider, error) {
	switch configs.AI_PROVIDER {
	case "openai":
		log.Printf("🔵 Creating OpenAI provider (vision: %s, extract: %s)", configs.VISION_MODEL_NAME, configs.EXTRACT_MODEL_NAME)
		return NewOpenAIProvider(configs.OPENAI_API_KEY, configs.OPENAI_BASE_URL, configs.VISION_MODEL_NAME, configs.EXTRACT_MODEL_NAME), nil

	case "gemini":
		log.Printf("🔷 Creating Gemini provider (vision: %s, extract: %s)", configs.VISION_MODEL_NAME, configs.EXTRACT_MODEL_NAME)
		return NewGeminiProvider(configs.GEMINI_API_KEY, configs.VISION_MODEL_NAME, configs.EXTRACT_MODEL_NAME), nil

	default:
		return nil, fmt.Errorf("unsupported AI provider: %s (supported: openai, gemini)", configs.AI_PROVIDER)
	}
}
