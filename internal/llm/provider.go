package llm

import (
	"context"
	"strings"

	"github.com/ppiankov/schemeqa/internal/model"
)

// Completer turns an ordered list of role-tagged messages into one text completion
type Completer interface {
	Complete(ctx context.Context, messages []model.Message) (*Completion, error)
}

// Provider is a Completer backed by a named LLM service
type Provider interface {
	Completer

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// NameOf returns the provider name behind c, or "unknown" when c does not
// report one
func NameOf(c Completer) string {
	if named, ok := c.(interface{ Name() string }); ok && named.Name() != "" {
		return named.Name()
	}
	return "unknown"
}

// Completion is the text returned by a provider
type Completion struct {
	// Text is the raw completion, untrimmed
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "gemini"
	Provider string

	// Model name (provider-specific), empty picks the provider default
	Model string

	// APIKey for OpenAI/Anthropic/Gemini
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling, 0 asks for the most deterministic output
	Temperature float32

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Timeout:   30,
		MaxTokens: 1024,
	}
}

func (c Config) maxTokens() int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 1024
}

// splitSystem pulls system messages out of the conversation for APIs that
// take the system instruction as a separate field
func splitSystem(messages []model.Message) (string, []model.Message) {
	var system []string
	rest := make([]model.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == model.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n\n"), rest
}
