package domain

// Category is the activity class assigned to an observed window title.
type Category string

const (
	CategoryEducational   Category = "educational"
	CategoryWork          Category = "work"
	CategoryEntertainment Category = "entertainment"
	CategorySocial        Category = "social"
	CategoryGaming        Category = "gaming"
	CategoryStreaming     Category = "streaming"
	CategoryNeutral       Category = "neutral"
)

func (c Category) String() string {
	return string(c)
}

func (c Category) IsValid() bool {
	switch c {
	case CategoryEducational, CategoryWork, CategoryEntertainment,
		CategorySocial, CategoryGaming, CategoryStreaming, CategoryNeutral:
		return true
	}
	return false
}

// IsProductive reports whether the category can never count as a distraction.
func (c Category) IsProductive() bool {
	return c == CategoryEducational || c == CategoryWork
}

func (c Category) IsDistracting() bool {
	switch c {
	case CategoryEntertainment, CategorySocial, CategoryGaming, CategoryStreaming:
		return true
	}
	return false
}

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// VerdictSource names the capability that produced a verdict.
type VerdictSource string

const (
	VerdictSourcePrimary  VerdictSource = "primary"
	VerdictSourceFallback VerdictSource = "fallback"
)

type Verdict struct {
	Category       Category      `json:"category"`
	IsDistraction  bool          `json:"is_distraction"`
	Confidence     float64       `json:"confidence"`
	Sentiment      Sentiment     `json:"sentiment"`
	SentimentScore float64       `json:"sentiment_score"`
	Reasoning      string        `json:"reasoning"`
	Source         VerdictSource `json:"source"`
}

// Normalize clamps scores into range, maps unknown categories to neutral and
// forces educational and work verdicts to be non-distracting.
func (v Verdict) Normalize() Verdict {
	if !v.Category.IsValid() {
		v.Category = CategoryNeutral
	}
	if v.Category.IsProductive() || v.Category == CategoryNeutral {
		v.IsDistraction = false
	}

	v.Confidence = clamp(v.Confidence, 0, 1)
	v.SentimentScore = clamp(v.SentimentScore, -1, 1)

	switch v.Sentiment {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
	default:
		v.Sentiment = SentimentNeutral
	}

	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
