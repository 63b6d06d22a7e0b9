package classifier

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
)

const (
	minTitleRunes         = 3
	fallbackMaxConfidence = 0.6
	fallbackBaseConf      = 0.4
	fallbackStepConf      = 0.05
	neutralConfidence     = 0.5
	fallbackReasonPrefix  = "fallback: "
)

type rule struct {
	category domain.Category
	pattern  *regexp.Regexp
}

func wordPattern(words ...string) *regexp.Regexp {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	return regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b`)
}

// rules is ordered; on equal match counts the earlier distracting category wins.
var rules = []rule{
	{domain.CategoryStreaming, wordPattern("netflix", "youtube", "twitch", "hulu", "primevideo", "stream", "streaming", "episode", "season", "trailer", "series", "movie")},
	{domain.CategorySocial, wordPattern("instagram", "facebook", "twitter", "tiktok", "reddit", "discord", "snapchat", "pinterest", "tumblr", "whatsapp", "messenger")},
	{domain.CategoryGaming, wordPattern("game", "gaming", "steam", "play", "playing", "minecraft", "fortnite", "roblox", "valorant")},
	{domain.CategoryEntertainment, wordPattern("spotify", "music", "video", "live", "entertainment", "fun", "funny", "meme", "joke", "comedy", "drama", "reality", "show", "preview")},
	{domain.CategoryEducational, wordPattern("focusguard", "course", "tutorial", "learn", "study", "education", "academic", "university", "college", "school", "lecture", "lesson", "assignment", "homework", "exam", "test", "quiz", "research", "paper", "thesis", "dissertation", "documentation", "guide", "manual", "book", "textbook", "reference", "library", "scholar", "professor", "teacher", "instructor", "student", "learning", "knowledge")},
	{domain.CategoryWork, wordPattern("work", "project", "task", "job", "business", "office", "meeting", "presentation", "report", "analysis", "data", "code", "programming", "development", "design", "planning", "strategy", "management", "admin", "dashboard", "tool", "software", "application", "system", "database", "server", "network", "security", "finance", "accounting", "marketing", "sales", "customer", "client", "product", "service", "quality", "efficiency", "productivity", "performance", "terminal", "editor")},
}

var (
	positiveWords = wordPattern("great", "good", "best", "love", "awesome", "amazing", "happy", "fun", "funny", "win", "excellent", "nice")
	negativeWords = wordPattern("bad", "worst", "hate", "error", "failed", "failure", "broken", "sad", "angry", "crash", "bug", "problem")
)

// KeywordCapability is the deterministic fallback. Its confidence never
// exceeds fallbackMaxConfidence so primary verdicts always rank higher.
type KeywordCapability struct{}

func NewKeywordCapability() *KeywordCapability {
	return &KeywordCapability{}
}

func (k *KeywordCapability) Classify(_ context.Context, req Request) (domain.Verdict, error) {
	return k.classify(req), nil
}

func (k *KeywordCapability) classify(req Request) domain.Verdict {
	title := strings.TrimSpace(req.Title)
	if utf8.RuneCountInString(title) < minTitleRunes {
		return domain.Verdict{
			Category:   domain.CategoryNeutral,
			Confidence: neutralConfidence,
			Sentiment:  domain.SentimentNeutral,
			Reasoning:  fallbackReasonPrefix + "title too short to classify",
			Source:     domain.VerdictSourceFallback,
		}
	}

	lower := strings.ToLower(title)
	counts := make(map[domain.Category]int, len(rules))
	for _, r := range rules {
		counts[r.category] += len(r.pattern.FindAllStringIndex(lower, -1))
	}
	counts[domain.CategoryWork] += sessionKeywordMatches(lower, req.Keywords)

	distracting, distractingCount := topDistracting(counts)
	educational := counts[domain.CategoryEducational]
	work := counts[domain.CategoryWork]

	category := domain.CategoryNeutral
	matches := 0
	switch {
	case distractingCount > educational && distractingCount > work:
		category, matches = distracting, distractingCount
	case educational > distractingCount && educational > work:
		category, matches = domain.CategoryEducational, educational
	case work > distractingCount && work > educational:
		category, matches = domain.CategoryWork, work
	}

	confidence := neutralConfidence
	if matches > 0 {
		confidence = min(fallbackMaxConfidence, fallbackBaseConf+fallbackStepConf*float64(matches))
	}

	sentiment, score := scoreSentiment(lower)

	return domain.Verdict{
		Category:       category,
		IsDistraction:  category.IsDistracting(),
		Confidence:     confidence,
		Sentiment:      sentiment,
		SentimentScore: score,
		Reasoning: fmt.Sprintf("%skeyword match (distracting=%d educational=%d work=%d)",
			fallbackReasonPrefix, distractingCount, educational, work),
		Source: domain.VerdictSourceFallback,
	}
}

func topDistracting(counts map[domain.Category]int) (domain.Category, int) {
	best := domain.CategoryEntertainment
	bestCount := 0
	total := 0
	for _, r := range rules {
		if !r.category.IsDistracting() {
			continue
		}
		n := counts[r.category]
		total += n
		if n > bestCount {
			best, bestCount = r.category, n
		}
	}
	return best, total
}

func sessionKeywordMatches(lowerTitle string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if utf8.RuneCountInString(kw) < minTitleRunes {
			continue
		}
		n += len(keywordPattern(kw).FindAllStringIndex(lowerTitle, -1))
	}
	return n
}

// keywordPattern matches kw as a whole word. Edges that are not word
// characters, as in "c++", get no boundary assertion.
func keywordPattern(kw string) *regexp.Regexp {
	expr := regexp.QuoteMeta(kw)
	if isWordByte(kw[0]) {
		expr = `\b` + expr
	}
	if isWordByte(kw[len(kw)-1]) {
		expr += `\b`
	}
	return regexp.MustCompile(expr)
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func scoreSentiment(lowerTitle string) (domain.Sentiment, float64) {
	pos := len(positiveWords.FindAllStringIndex(lowerTitle, -1))
	neg := len(negativeWords.FindAllStringIndex(lowerTitle, -1))
	if pos+neg == 0 {
		return domain.SentimentNeutral, 0
	}

	score := float64(pos-neg) / float64(pos+neg)
	switch {
	case score > 0.1:
		return domain.SentimentPositive, score
	case score < -0.1:
		return domain.SentimentNegative, score
	default:
		return domain.SentimentNeutral, score
	}
}
