package domain

import "time"

// Sentiment carries the lexical sentiment signal attached to an article.
type Sentiment struct {
	Score float64 `json:"score" yaml:"score"`
	Label string  `json:"label" yaml:"label"`
}

// ArticleRecord is a core entity describing an ingested article. Records are
// immutable once produced by the ingestion collaborator.
type ArticleRecord struct {
	ID          string
	Title       string
	BodyText    string
	Source      string
	Themes      []string
	PublishedAt time.Time
	Sentiment   Sentiment
}

// Text returns the concatenation scored by the similarity backends.
func (a ArticleRecord) Text() string {
	if a.BodyText == "" {
		return a.Title
	}
	return a.Title + " " + a.BodyText
}

// HasPublishedAt reports whether the record carries a usable timestamp.
func (a ArticleRecord) HasPublishedAt() bool {
	return !a.PublishedAt.IsZero()
}

// ThemeSet exposes themes as a set for overlap computations.
func (a ArticleRecord) ThemeSet() map[string]struct{} {
	if len(a.Themes) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a.Themes))
	for _, theme := range a.Themes {
		set[theme] = struct{}{}
	}
	return set
}

// CorroborationHit is one ranked match returned to the caller. Derived per
// request, never persisted.
type CorroborationHit struct {
	CandidateID string  `json:"id"`
	Title       string  `json:"title"`
	Source      string  `json:"source"`
	Similarity  float64 `json:"similarity"`
}

// AnalysisReport aggregates the request-time outputs for one article.
type AnalysisReport struct {
	Article               ArticleRecord
	Corroborations        []CorroborationHit
	CorroborationCount    int
	CorroborationStrength float64
	Confidence            float64
	ConfidenceExplanation ConfidenceExplanation
	BayesianPosterior     float64
	AnalyzedAt            time.Time
}
