package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, messages []Message) (Response, error) {
	system, contents := toGeminiContents(messages)
	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return Response{}, Classify(ProviderGemini, err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return Response{}, Classify(ProviderGemini, ErrEmptyResponse)
	}

	out := Response{Content: text, Model: c.model}
	if u := resp.UsageMetadata; u != nil {
		out.PromptTokens = int(u.PromptTokenCount)
		out.CompletionTokens = int(u.CandidatesTokenCount)
		out.TotalTokens = int(u.TotalTokenCount)
	}
	return out, nil
}

// toGeminiContents folds system messages into a single system instruction,
// since Gemini has no system role in the conversation itself.
func toGeminiContents(messages []Message) (string, []*genai.Content) {
	var system []string
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
			continue
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
			continue
		}
		parts := []*genai.Part{genai.NewPartFromText(m.Content)}
		if m.Attachment != nil && len(m.Attachment.Data) > 0 {
			parts = append(parts, genai.NewPartFromBytes(m.Attachment.Data, m.Attachment.MIMEType))
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}
	return strings.Join(system, "\n\n"), contents
}
