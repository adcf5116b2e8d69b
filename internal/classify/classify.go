// Package classify scores draft text before it is shown to channel
// administrators. Backends: a local lexical scorer and two LLM-backed ones.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/set-night/postrelay/internal/domain"
)

// Classifier derives topic, spam verdict and keywords from a draft's text.
type Classifier interface {
	Classify(ctx context.Context, text string) (domain.Classification, error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(ctx context.Context, text string) (domain.Classification, error)

func (f ClassifierFunc) Classify(ctx context.Context, text string) (domain.Classification, error) {
	return f(ctx, text)
}

const (
	verdictSpam    = "⚠️ Likely spam"
	verdictNotSpam = "✅ Not spam"
	noKeywords     = "🔑 Keywords: none"
)

func spamVerdict(spam bool) string {
	if spam {
		return verdictSpam
	}
	return verdictNotSpam
}

func keywordSummary(words []string) string {
	if len(words) == 0 {
		return noKeywords
	}
	return "🔑 Keywords: " + strings.Join(words, ", ")
}

type fallback struct {
	primary   Classifier
	secondary Classifier
}

// WithFallback returns a Classifier that uses secondary whenever primary fails.
func WithFallback(primary, secondary Classifier) Classifier {
	return &fallback{primary: primary, secondary: secondary}
}

func (f *fallback) Classify(ctx context.Context, text string) (domain.Classification, error) {
	c, err := f.primary.Classify(ctx, text)
	if err == nil {
		return c, nil
	}
	slog.Warn("classifier failed, using fallback", "error", err)
	return f.secondary.Classify(ctx, text)
}

// Config selects and configures a backend.
type Config struct {
	Backend         string
	OpenRouterKey   string
	OpenRouterModel string
	AnthropicKey    string
	AnthropicModel  string
	AnthropicURL    string
}

// New builds the configured classifier. Remote backends fall back to the
// lexical one on failure.
func New(cfg Config) (Classifier, error) {
	lexical := NewLexical()

	switch cfg.Backend {
	case "", "lexical":
		return lexical, nil
	case "openrouter":
		if cfg.OpenRouterKey == "" {
			return nil, fmt.Errorf("openrouter classifier requires OPENROUTER_API_KEY")
		}
		return WithFallback(NewOpenRouter(cfg.OpenRouterKey, cfg.OpenRouterModel), lexical), nil
	case "anthropic":
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("anthropic classifier requires ANTHROPIC_API_KEY")
		}
		return WithFallback(NewAnthropic(cfg.AnthropicKey, cfg.AnthropicModel, cfg.AnthropicURL), lexical), nil
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", cfg.Backend)
	}
}
