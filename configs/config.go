// config.go - Configuration loaded from environment variables

package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	// AI provider configuration
	AI_PROVIDER     string // "openai" or "gemini"
	OPENAI_API_KEY  string
	OPENAI_BASE_URL string
	GEMINI_API_KEY  string

	// Model names for the two pipeline calls
	VISION_MODEL_NAME  string
	EXTRACT_MODEL_NAME string

	// Output-length caps for the two model calls
	RECOGNIZE_MAX_TOKENS int
	EXTRACT_MAX_TOKENS   int

	// Calendar integration
	CALENDAR_API_URL string

	// Server configuration
	PORT            string
	UPLOAD_DIR      string
	ALLOWED_ORIGINS string

	// MongoDB configuration (optional - empty URI disables history storage)
	MONGO_URI     string
	MONGO_DB_NAME string

	// Image normalization settings
	MAX_IMAGE_DIMENSION = 1000
	JPEG_QUALITY        = 85

	// Session lifetime in minutes
	SESSION_TTL_MINUTES = 30
)

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Load .env file if exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AI_PROVIDER = getEnv("AI_PROVIDER", "openai")

	// Required: API credential for the selected provider, no default
	OPENAI_API_KEY = getEnv("OPENAI_API_KEY", "")
	GEMINI_API_KEY = getEnv("GEMINI_API_KEY", "")
	switch AI_PROVIDER {
	case "openai":
		if OPENAI_API_KEY == "" {
			log.Fatal("OPENAI_API_KEY environment variable is required")
		}
	case "gemini":
		if GEMINI_API_KEY == "" {
			log.Fatal("GEMINI_API_KEY environment variable is required")
		}
	default:
		log.Fatalf("Unsupported AI_PROVIDER: %s (supported: openai, gemini)", AI_PROVIDER)
	}

	// Required: event-creation endpoint, no default
	CALENDAR_API_URL = getEnv("CALENDAR_API_URL", "")
	if CALENDAR_API_URL == "" {
		log.Fatal("CALENDAR_API_URL environment variable is required")
	}

	OPENAI_BASE_URL = getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1")

	// Optional with defaults
	if AI_PROVIDER == "gemini" {
		VISION_MODEL_NAME = getEnv("VISION_MODEL_NAME", "gemini-2.5-flash")
		EXTRACT_MODEL_NAME = getEnv("EXTRACT_MODEL_NAME", "gemini-2.5-flash")
	} else {
		VISION_MODEL_NAME = getEnv("VISION_MODEL_NAME", "gpt-4o-mini")
		EXTRACT_MODEL_NAME = getEnv("EXTRACT_MODEL_NAME", "gpt-4o-mini")
	}

	RECOGNIZE_MAX_TOKENS = getEnvInt("RECOGNIZE_MAX_TOKENS", 300)
	EXTRACT_MAX_TOKENS = getEnvInt("EXTRACT_MAX_TOKENS", 200)

	PORT = getEnv("PORT", "8080")
	UPLOAD_DIR = getEnv("UPLOAD_DIR", "uploads")
	ALLOWED_ORIGINS = getEnv("ALLOWED_ORIGINS", "*")

	// MongoDB configuration
	MONGO_URI = getEnv("MONGO_URI", "")
	MONGO_DB_NAME = getEnv("MONGO_DB_NAME", "medscandb")

	// Image normalization
	MAX_IMAGE_DIMENSION = getEnvInt("MAX_IMAGE_DIMENSION", 1000)
	JPEG_QUALITY = getEnvInt("JPEG_QUALITY", 85)

	SESSION_TTL_MINUTES = getEnvInt("SESSION_TTL_MINUTES", 30)

	log.Println("✓ Configuration loaded successfully")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
