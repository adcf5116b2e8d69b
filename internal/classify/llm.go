package classify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/set-night/postrelay/internal/domain"
)

const systemPrompt = `You moderate posts submitted to a Telegram channel.
Reply with a single JSON object and nothing else:
{"label": "<one or two word topic>", "confidence": <0..1>, "spam": <true|false>, "keywords": ["<up to 5 keywords>"]}`

const maxPromptRunes = 4000

type verdict struct {
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence"`
	Spam       bool     `json:"spam"`
	Keywords   []string `json:"keywords"`
}

func truncate(text string) string {
	r := []rune(text)
	if len(r) <= maxPromptRunes {
		return text
	}
	return string(r[:maxPromptRunes])
}

// parseVerdict extracts the JSON object from a model reply. Models sometimes
// wrap it in prose or code fences.
func parseVerdict(reply string) (domain.Classification, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return domain.Classification{}, fmt.Errorf("%w: no json in reply", domain.ErrClassifierBackend)
	}

	var v verdict
	if err := json.Unmarshal([]byte(reply[start:end+1]), &v); err != nil {
		return domain.Classification{}, fmt.Errorf("%w: parse verdict: %v", domain.ErrClassifierBackend, err)
	}

	label := strings.TrimSpace(v.Label)
	if label == "" {
		label = labelOther
	}
	conf := v.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	if len(v.Keywords) > maxKeywords {
		v.Keywords = v.Keywords[:maxKeywords]
	}

	return domain.Classification{
		Label:      label,
		Confidence: conf,
		Spam:       spamVerdict(v.Spam),
		Keywords:   keywordSummary(v.Keywords),
	}, nil
}
