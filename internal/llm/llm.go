package llm

import (
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go/v2/option"

	"github.com/seoforge/seoforge/internal/common"
	"github.com/seoforge/seoforge/internal/llm/providers"
)

type Message = providers.Message

type Provider = providers.Provider

// StatusFromError reports the HTTP status attached to a provider error, or 0.
func StatusFromError(err error) int {
	return providers.StatusFromError(err)
}

// NewProvider selects a chat provider from the environment. SEOFORGE_PROVIDER
// forces a choice; otherwise OPENAI_API_KEY selects OpenAI and the local
// deterministic provider is the last resort.
func NewProvider() Provider {
	logger := common.Logger()
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	forced := strings.ToLower(strings.TrimSpace(os.Getenv("SEOFORGE_PROVIDER")))

	if forced == "langchain" {
		provider, err := providers.NewLangchainProvider(
			apiKey,
			strings.TrimSpace(os.Getenv("SEOFORGE_LLM_BASE_URL")),
			strings.TrimSpace(os.Getenv("SEOFORGE_LLM_MODEL")),
		)
		if err != nil {
			logger.Warn("llm: langchain provider unavailable; falling back to local", "error", err)
			return providers.NewLocalProvider()
		}
		return provider
	}
	if forced == "local" {
		logger.Info("llm: local provider forced")
		return providers.NewLocalProvider()
	}
	if apiKey != "" {
		opts := []option.RequestOption{option.WithAPIKey(apiKey)}
		if timeoutStr := strings.TrimSpace(os.Getenv("OPENAI_HTTP_TIMEOUT")); timeoutStr != "" {
			timeout, err := time.ParseDuration(timeoutStr)
			if err != nil {
				logger.Warn("llm: invalid OPENAI_HTTP_TIMEOUT, using default", "value", timeoutStr, "error", err)
			} else {
				logger.Info("llm: configuring OpenAI client with custom HTTP timeout", "timeout", timeout)
				opts = append(opts, option.WithRequestTimeout(timeout))
			}
		}
		if endpoint := strings.TrimSpace(os.Getenv("OPENAI_ENDPOINT")); endpoint != "" {
			logger.Info("llm: configuring OpenAI client with custom endpoint", "endpoint", endpoint)
			opts = append(opts, option.WithBaseURL(endpoint))
		}
		logger.Info("llm: OpenAI provider selected")
		return providers.NewOpenAIProvider(opts...)
	}
	logger.Warn("llm: OPENAI_API_KEY not set; falling back to local provider")
	return providers.NewLocalProvider()
}

// NormalizeMessages prepares a conversation for a provider call; every
// Provider applies it before mapping roles.
func NormalizeMessages(messages []Message) ([]Message, error) {
	return providers.NormalizeMessages(messages)
}
