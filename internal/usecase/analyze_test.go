package usecase

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"NewsCorroborator/internal/confidence"
	"NewsCorroborator/internal/corroboration"
	"NewsCorroborator/internal/domain"
	"NewsCorroborator/internal/fusion"
	"NewsCorroborator/internal/ports"
	"NewsCorroborator/internal/similarity"
)

type memEvidence struct {
	mu   sync.Mutex
	rows []domain.Evidence
}

func (m *memEvidence) Append(ctx context.Context, evidence domain.Evidence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, evidence)
	return nil
}

func (m *memEvidence) Claim(ctx context.Context, limit int) (ports.EvidenceBatch, error) {
	return nil, nil
}

type memPriors struct {
	priors map[domain.EntityKey]domain.PriorRecord
}

func (m *memPriors) GetPrior(ctx context.Context, key domain.EntityKey) (*domain.PriorRecord, error) {
	if prior, ok := m.priors[key]; ok {
		return &prior, nil
	}
	return nil, nil
}

func newTestAnalyzer(evidence *memEvidence, priors *memPriors) *Analyzer {
	chain := similarity.NewChain(slog.Default(),
		similarity.NewLexicalBackend(), similarity.NewFuzzyBackend())
	matcher := corroboration.NewMatcher(chain, corroboration.NewPrefilter(), 25, 3, slog.Default())
	return NewAnalyzer(AnalyzerDeps{
		Matcher:    matcher,
		Calculator: confidence.NewCalculator(),
		Engine:     fusion.NewEngine(),
		Evidence:   evidence,
		Priors:     priors,
		Logger:     slog.Default(),
	})
}

func TestAnalyzeProducesReportAndEnqueuesEvidence(t *testing.T) {
	t.Parallel()

	now := time.Now()
	article := domain.ArticleRecord{
		ID:          "a1",
		Title:       "central bank raises interest rates again",
		BodyText:    "the central bank announced another increase of interest rates",
		Source:      "reuters",
		Themes:      []string{"economy"},
		PublishedAt: now,
		Sentiment:   domain.Sentiment{Score: -0.3, Label: "negative"},
	}
	twin := article
	twin.ID = "a2"
	twin.Title = "central bank raises interest rates once more"
	twin.PublishedAt = now.Add(-2 * time.Hour)

	evidence := &memEvidence{}
	priors := &memPriors{priors: map[domain.EntityKey]domain.PriorRecord{}}

	report, err := newTestAnalyzer(evidence, priors).Analyze(context.Background(), article,
		[]domain.ArticleRecord{twin}, map[string]any{"model_prob": 0.7, "coverage": 0.6})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if report.CorroborationCount != 1 {
		t.Fatalf("expected 1 corroboration, got %d", report.CorroborationCount)
	}
	if report.CorroborationStrength <= 0 {
		t.Fatalf("corroboration strength = %f, want > 0", report.CorroborationStrength)
	}
	if report.Confidence < 0 || report.Confidence > 1 {
		t.Fatalf("confidence %f out of [0,1]", report.Confidence)
	}
	if report.BayesianPosterior < 0 || report.BayesianPosterior > 1 {
		t.Fatalf("posterior %f out of [0,1]", report.BayesianPosterior)
	}
	if report.ConfidenceExplanation.SentimentStrength != 0.3 {
		t.Fatalf("sentiment strength should be |score|: %f",
			report.ConfidenceExplanation.SentimentStrength)
	}

	evidence.mu.Lock()
	defer evidence.mu.Unlock()
	if len(evidence.rows) != 2 {
		t.Fatalf("expected 2 evidence rows enqueued, got %d", len(evidence.rows))
	}
	types := map[string]bool{}
	for _, row := range evidence.rows {
		types[row.EntityType] = true
		if row.Value < 0 || row.Value > 1 || row.Confidence < 0 || row.Confidence > 1 {
			t.Fatalf("evidence out of range: %+v", row)
		}
	}
	if !types[EntityArticle] || !types[EntitySource] {
		t.Fatalf("expected article and source evidence, got %v", types)
	}
}

func TestAnalyzePrefersFusedSourcePrior(t *testing.T) {
	t.Parallel()

	article := domain.ArticleRecord{ID: "a1", Title: "short note", Source: "obscure-blog"}

	evidence := &memEvidence{}
	priors := &memPriors{priors: map[domain.EntityKey]domain.PriorRecord{
		{EntityType: EntitySource, EntityID: "obscure-blog"}: {Mu: 0.15},
	}}

	report, err := newTestAnalyzer(evidence, priors).Analyze(context.Background(), article, nil,
		map[string]any{"source_reliability": 0.9})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if report.ConfidenceExplanation.SourceReliability != 0.15 {
		t.Fatalf("fused prior should override caller value, got %f",
			report.ConfidenceExplanation.SourceReliability)
	}
}

func TestAnalyzeEmptyPool(t *testing.T) {
	t.Parallel()

	evidence := &memEvidence{}
	priors := &memPriors{priors: map[domain.EntityKey]domain.PriorRecord{}}

	report, err := newTestAnalyzer(evidence, priors).Analyze(context.Background(),
		domain.ArticleRecord{ID: "a1", Title: "isolated story", Source: "afp"}, nil, nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if report.CorroborationCount != 0 || report.CorroborationStrength != 0 {
		t.Fatalf("empty pool should yield no corroboration: %+v", report)
	}
	if report.Confidence < 0 || report.Confidence > 1 {
		t.Fatalf("confidence %f out of [0,1]", report.Confidence)
	}
}
