package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"autocrm/internal/config"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderYandex = "yandex"
)

// Factory creates LLM clients with consistent logic
type Factory struct {
	OpenaiAPIKey       string
	OpenaiBaseURL      string
	OpenaiModel        string
	OpenRouterReferrer string
	OpenRouterTitle    string
	GeminiAPIKey       string
	GeminiModel        string
	YandexOAuthToken   string
	YandexFolderID     string
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		OpenaiAPIKey:       cfg.OpenAIAPIKey,
		OpenaiBaseURL:      cfg.OpenAIBaseURL,
		OpenaiModel:        cfg.OpenAIModel,
		OpenRouterReferrer: cfg.OpenRouterReferrer,
		OpenRouterTitle:    cfg.OpenRouterTitle,
		GeminiAPIKey:       cfg.GeminiAPIKey,
		GeminiModel:        cfg.GeminiModel,
		YandexOAuthToken:   cfg.YandexOAuthToken,
		YandexFolderID:     cfg.YandexFolderID,
	}
}

// CreateClient builds a single provider client. An empty model selects the
// provider's configured default.
func (f *Factory) CreateClient(ctx context.Context, provider, model string) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderOpenAI:
		if model == "" {
			model = f.OpenaiModel
		}
		return NewOpenAI(f.OpenaiAPIKey, f.OpenaiBaseURL, model, f.OpenRouterReferrer, f.OpenRouterTitle), nil
	case ProviderGemini:
		if model == "" {
			model = f.GeminiModel
		}
		return NewGemini(ctx, f.GeminiAPIKey, model)
	case ProviderYandex:
		return NewYandex(f.YandexOAuthToken, f.YandexFolderID)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}

// CreateChain builds the primary client followed by every fallback that could
// be initialised. Fallbacks that fail to build are skipped; the primary is
// mandatory.
func (f *Factory) CreateChain(ctx context.Context, primary string, fallbacks []string) ([]NamedClient, error) {
	first, err := f.CreateClient(ctx, primary, "")
	if err != nil {
		return nil, err
	}
	chain := []NamedClient{{Name: strings.ToLower(primary), Client: first}}
	for _, p := range fallbacks {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || p == chain[0].Name {
			continue
		}
		c, err := f.CreateClient(ctx, p, "")
		if err != nil {
			log.Printf("⚠️ fallback provider %s unavailable: %v", p, err)
			continue
		}
		chain = append(chain, NamedClient{Name: p, Client: c})
	}
	return chain, nil
}
