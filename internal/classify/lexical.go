package classify

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/set-night/postrelay/internal/domain"
)

const (
	labelOther  = "other"
	maxKeywords = 5
)

var topics = map[string][]string{
	"announcement": {"announce", "announcement", "release", "launch", "update", "new", "анонс", "релиз", "обновление"},
	"event":        {"event", "meetup", "conference", "tomorrow", "today", "join", "встреча", "мероприятие", "сегодня", "завтра"},
	"question":     {"how", "why", "what", "where", "help", "question", "как", "почему", "вопрос", "помогите"},
	"advertising":  {"sale", "discount", "buy", "price", "offer", "promo", "скидка", "купить", "цена", "акция"},
	"greeting":     {"hello", "hi", "hey", "welcome", "привет", "здравствуйте", "добро"},
	"job":          {"job", "hiring", "vacancy", "salary", "remote", "вакансия", "работа", "зарплата"},
}

var spamMarkers = []string{"free money", "earn", "casino", "crypto giveaway", "click here", "заработок", "казино", "бесплатно"}

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "this": {}, "that": {}, "are": {}, "you": {}, "your": {},
	"was": {}, "but": {}, "not": {}, "have": {}, "has": {}, "from": {}, "all": {}, "our": {},
	"это": {}, "как": {}, "что": {}, "для": {}, "или": {}, "его": {}, "она": {}, "они": {}, "все": {},
}

// Lexical is a dependency-free classifier based on keyword tables.
type Lexical struct{}

func NewLexical() *Lexical { return &Lexical{} }

func (l *Lexical) Classify(_ context.Context, text string) (domain.Classification, error) {
	words := tokenize(text)
	label, confidence := topicOf(words)
	return domain.Classification{
		Label:      label,
		Confidence: confidence,
		Spam:       spamVerdict(isSpam(text, words)),
		Keywords:   keywordSummary(keywords(words)),
	}, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// topicOf picks the topic with most hits; confidence is its share of all hits.
func topicOf(words []string) (string, float64) {
	hits := make(map[string]int)
	total := 0
	for _, w := range words {
		for label, vocab := range topics {
			for _, v := range vocab {
				if w == v {
					hits[label]++
					total++
				}
			}
		}
	}
	if total == 0 {
		return labelOther, 0
	}

	best, bestHits := labelOther, 0
	for label, n := range hits {
		if n > bestHits || (n == bestHits && label < best) {
			best, bestHits = label, n
		}
	}
	return best, float64(bestHits) / float64(total)
}

func isSpam(text string, words []string) bool {
	lower := strings.ToLower(text)
	for _, m := range spamMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}

	links := strings.Count(lower, "http://") + strings.Count(lower, "https://") + strings.Count(lower, "t.me/")
	if links >= 3 {
		return true
	}

	letters, upper := 0, 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	return letters >= 20 && upper*10 >= letters*7 && len(words) > 3
}

func keywords(words []string) []string {
	freq := make(map[string]int)
	var order []string
	for _, w := range words {
		if len([]rune(w)) < 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, seen := freq[w]; !seen {
			order = append(order, w)
		}
		freq[w]++
	}

	sort.SliceStable(order, func(i, j int) bool { return freq[order[i]] > freq[order[j]] })
	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	return order
}
