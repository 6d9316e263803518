package config

import "os"

const (
	defaultAIGatewayURL = "https://ai.gateway.lovable.dev/v1/chat/completions"
	defaultAIModel      = "google/gemini-2.5-flash"
)

// AIAPIKey returns the bearer credential for the AI gateway. Read at call
// time so a missing key is detected per invocation, not cached at startup.
func AIAPIKey() string {
	return os.Getenv("AI_API_KEY")
}

func AIGatewayURL() string {
	return getenv("AI_GATEWAY_URL", defaultAIGatewayURL)
}

func AIModel() string {
	return getenv("AI_MODEL", defaultAIModel)
}

func JWTSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

func SessionSecret() []byte {
	return []byte(os.Getenv("SESSION_SECRET"))
}

func Port() string {
	return getenv("PORT", "8080")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
