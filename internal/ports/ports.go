package ports

import (
	"context"
	"time"

	"NewsCorroborator/internal/domain"
)

// Embedder produces one dense vector per input text. Implementations are
// expected to be safe for concurrent use.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
	ModelName() string
}

// EvidenceStore persists the evidence queue consumed by the batch worker.
// Claim must hand disjoint subsets to concurrent callers (claim-with-skip);
// MarkProcessed flips rows exactly once.
type EvidenceStore interface {
	Append(ctx context.Context, evidence domain.Evidence) error
	Claim(ctx context.Context, limit int) (EvidenceBatch, error)
}

// EvidenceBatch is one claimed set of rows. Row locks are held until the
// batch is either committed or rolled back.
type EvidenceBatch interface {
	Rows() []domain.Evidence
	MarkProcessed(ctx context.Context, ids []int64) error
	UpsertPrior(ctx context.Context, prior domain.PriorRecord) error
	Commit() error
	Rollback() error
}

// PriorStore reads the latest fused belief about an entity.
type PriorStore interface {
	GetPrior(ctx context.Context, key domain.EntityKey) (*domain.PriorRecord, error)
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
