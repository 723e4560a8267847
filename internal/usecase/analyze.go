package usecase

import (
	"context"
	"log/slog"
	"math"
	"time"

	"NewsCorroborator/internal/confidence"
	"NewsCorroborator/internal/corroboration"
	"NewsCorroborator/internal/domain"
	"NewsCorroborator/internal/fusion"
	"NewsCorroborator/internal/ports"
)

// Entity types owned by the analysis flow.
const (
	EntitySource  = "source"
	EntityArticle = "article"
)

// AnalyzerDeps wires all collaborators into the analysis usecase.
type AnalyzerDeps struct {
	Matcher    *corroboration.Matcher
	Calculator *confidence.Calculator
	Engine     *fusion.Engine
	Evidence   ports.EvidenceStore
	Priors     ports.PriorStore
	Logger     *slog.Logger
}

// Analyzer implements the request-time evaluation of one article against a
// recent pool: corroboration matching, confidence calibration, single-shot
// Bayesian fusion, and evidence enqueueing for later batch fusion.
type Analyzer struct {
	matcher    *corroboration.Matcher
	calculator *confidence.Calculator
	engine     *fusion.Engine
	evidence   ports.EvidenceStore
	priors     ports.PriorStore
	logger     *slog.Logger
}

// NewAnalyzer constructs the orchestration component.
func NewAnalyzer(deps AnalyzerDeps) *Analyzer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		matcher:    deps.Matcher,
		calculator: deps.Calculator,
		engine:     deps.Engine,
		evidence:   deps.Evidence,
		priors:     deps.Priors,
		logger:     logger,
	}
}

// Analyze evaluates one article. signals is the loosely-typed feature dict
// supplied by the boundary collaborator (model probability, novelty,
// coverage); corroboration and sentiment features are derived here and
// override whatever the caller sent. Analysis always returns a report;
// evidence enqueue failures are logged, not surfaced.
func (a *Analyzer) Analyze(ctx context.Context, article domain.ArticleRecord, pool []domain.ArticleRecord, signals map[string]any) (domain.AnalysisReport, error) {
	hits := a.matcher.Find(ctx, article, pool, 0, 0)

	count := len(hits)
	strength := 0.0
	for _, hit := range hits {
		strength += hit.Similarity
	}
	if count > 0 {
		strength /= float64(count)
	}

	features := domain.FeaturesFromMap(signals)
	features.CorroborationCount = float64(count)
	features.SentimentStrength = math.Abs(article.Sentiment.Score)
	features.SourceReliability = a.sourceReliability(ctx, article.Source, features.SourceReliability)

	score, explanation := a.calculator.Compute(features)

	posterior := a.engine.FuseLogOdds(score, []float64{strength, features.SourceReliability})

	a.enqueueEvidence(ctx, article, score, strength, count)

	return domain.AnalysisReport{
		Article:               article,
		Corroborations:        hits,
		CorroborationCount:    count,
		CorroborationStrength: strength,
		Confidence:            score,
		ConfidenceExplanation: explanation,
		BayesianPosterior:     posterior,
		AnalyzedAt:            time.Now().UTC(),
	}, nil
}

// sourceReliability prefers the fused belief about the source over the
// caller-supplied value.
func (a *Analyzer) sourceReliability(ctx context.Context, source string, fallback float64) float64 {
	if a.priors == nil || source == "" {
		return fallback
	}
	prior, err := a.priors.GetPrior(ctx, domain.EntityKey{EntityType: EntitySource, EntityID: source})
	if err != nil {
		a.logger.Warn("load source prior failed", "source", source, "error", err)
		return fallback
	}
	if prior == nil {
		return fallback
	}
	return prior.Mu
}

// enqueueEvidence registers the derived signals as likelihoods for the
// batch worker: the article's corroboration strength, and the article
// confidence as evidence about its source's trustworthiness.
func (a *Analyzer) enqueueEvidence(ctx context.Context, article domain.ArticleRecord, score, strength float64, count int) {
	if a.evidence == nil {
		return
	}

	countNorm := float64(count) / 5.0
	if countNorm > 1 {
		countNorm = 1
	}

	rows := []domain.Evidence{
		{
			EntityType:   EntityArticle,
			EntityID:     article.ID,
			EvidenceType: "corroboration",
			Value:        strength,
			Confidence:   countNorm,
		},
		{
			EntityType:   EntitySource,
			EntityID:     article.Source,
			EvidenceType: "article_confidence",
			Value:        score,
			Confidence:   strength,
		},
	}
	for _, row := range rows {
		if row.EntityID == "" {
			continue
		}
		if err := a.evidence.Append(ctx, row); err != nil {
			a.logger.Warn("enqueue evidence failed",
				"entityType", row.EntityType, "entityId", row.EntityID, "error", err)
		}
	}
}
