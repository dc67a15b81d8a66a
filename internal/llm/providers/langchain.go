package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/seoforge/seoforge/internal/common"
)

// LangchainProvider adapts a langchaingo model, which covers self-hosted or
// OpenAI-compatible endpoints (vLLM, LM Studio, proxies) behind one flag.
type LangchainProvider struct {
	model llms.Model
	name  string
}

func NewLangchainProvider(token, baseURL, model string) (*LangchainProvider, error) {
	opts := []lcopenai.Option{lcopenai.WithToken(token)}
	if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
		opts = append(opts, lcopenai.WithBaseURL(trimmed))
	}
	if trimmed := strings.TrimSpace(model); trimmed != "" {
		opts = append(opts, lcopenai.WithModel(trimmed))
	}
	m, err := lcopenai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init langchain model: %w", err)
	}
	common.Logger().Info("llm: langchain provider configured", "base_url", baseURL, "model", model)
	return &LangchainProvider{model: m, name: "langchain"}, nil
}

func (p *LangchainProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	logger := common.Logger()
	msgs, err := NormalizeMessages(messages)
	if err != nil {
		return "", err
	}
	content := make([]llms.MessageContent, 0, len(msgs))
	for _, msg := range msgs {
		role := schema.ChatMessageTypeHuman
		switch msg.Role {
		case "system":
			role = schema.ChatMessageTypeSystem
		case "assistant":
			role = schema.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, msg.Content))
	}
	resp, err := p.model.GenerateContent(ctx, content)
	if err != nil {
		logger.Error("llm: langchain completion failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	logger.Debug("llm: langchain completion succeeded")
	return resp.Choices[0].Content, nil
}

func (p *LangchainProvider) Name() string {
	return p.name
}
