package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"NewsCorroborator/internal/domain"
	"NewsCorroborator/internal/ports"
)

// psql builds queries with Postgres dollar placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const schema = `
CREATE TABLE IF NOT EXISTS bayes_evidence (
    id            BIGSERIAL PRIMARY KEY,
    entity_type   TEXT NOT NULL,
    entity_id     TEXT NOT NULL,
    evidence_type TEXT NOT NULL,
    value         DOUBLE PRECISION NOT NULL,
    confidence    DOUBLE PRECISION NOT NULL,
    processed     BOOLEAN NOT NULL DEFAULT FALSE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_bayes_evidence_unprocessed
    ON bayes_evidence (created_at) WHERE processed = FALSE;

CREATE TABLE IF NOT EXISTS bayes_priors (
    entity_type TEXT NOT NULL,
    entity_id   TEXT NOT NULL,
    mu          DOUBLE PRECISION NOT NULL,
    sigma       DOUBLE PRECISION NOT NULL,
    alpha       DOUBLE PRECISION,
    beta        DOUBLE PRECISION,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (entity_type, entity_id)
);`

// PostgresStore owns the two core tables: the evidence queue and the fused
// priors. Claim relies on FOR UPDATE SKIP LOCKED so concurrent workers each
// take a disjoint subset of rows.
type PostgresStore struct {
	db *sql.DB
}

var _ ports.EvidenceStore = (*PostgresStore)(nil)
var _ ports.PriorStore = (*PostgresStore)(nil)

// Open connects to Postgres and ensures the schema. A connectivity failure
// here is fatal by design: the worker must stop rather than spin silently.
func Open(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStore wraps an existing connection without schema init.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append inserts one evidence row into the queue.
func (s *PostgresStore) Append(ctx context.Context, evidence domain.Evidence) error {
	query, args, err := psql.Insert("bayes_evidence").
		Columns("entity_type", "entity_id", "evidence_type", "value", "confidence").
		Values(evidence.EntityType, evidence.EntityID, evidence.EvidenceType, evidence.Value, evidence.Confidence).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert evidence: %w", err)
	}
	return nil
}

// Claim opens a transaction and locks up to limit unprocessed rows in
// creation order, skipping rows already locked by another worker. Locks are
// held until the returned batch commits or rolls back.
func (s *PostgresStore) Claim(ctx context.Context, limit int) (ports.EvidenceBatch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin claim tx: %w", err)
	}

	query, args, err := psql.Select("id", "entity_type", "entity_id", "evidence_type", "value", "confidence", "created_at").
		From("bayes_evidence").
		Where(sq.Eq{"processed": false}).
		OrderBy("created_at").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("build claim query: %w", err)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("claim evidence: %w", err)
	}

	var claimed []domain.Evidence
	for rows.Next() {
		var row domain.Evidence
		if err := rows.Scan(&row.ID, &row.EntityType, &row.EntityID, &row.EvidenceType,
			&row.Value, &row.Confidence, &row.CreatedAt); err != nil {
			_ = rows.Close()
			_ = tx.Rollback()
			return nil, fmt.Errorf("scan evidence: %w", err)
		}
		claimed = append(claimed, row)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		_ = tx.Rollback()
		return nil, fmt.Errorf("iterate evidence: %w", err)
	}
	if err := rows.Close(); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("close rows: %w", err)
	}

	return &postgresBatch{tx: tx, rows: claimed}, nil
}

// GetPrior loads the latest fused belief for an entity, or nil when none
// exists yet.
func (s *PostgresStore) GetPrior(ctx context.Context, key domain.EntityKey) (*domain.PriorRecord, error) {
	query, args, err := psql.Select("entity_type", "entity_id", "mu", "sigma", "alpha", "beta", "updated_at").
		From("bayes_priors").
		Where(sq.Eq{"entity_type": key.EntityType, "entity_id": key.EntityID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build prior query: %w", err)
	}

	var (
		prior       domain.PriorRecord
		alpha, beta sql.NullFloat64
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&prior.EntityType, &prior.EntityID, &prior.Mu, &prior.Sigma, &alpha, &beta, &prior.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query prior: %w", err)
	}
	prior.Alpha = alpha.Float64
	prior.Beta = beta.Float64
	return &prior, nil
}

// postgresBatch carries one claim transaction through fuse and persist.
type postgresBatch struct {
	tx   *sql.Tx
	rows []domain.Evidence
}

var _ ports.EvidenceBatch = (*postgresBatch)(nil)

func (b *postgresBatch) Rows() []domain.Evidence { return b.rows }

// UpsertPrior writes one fused posterior inside the claim transaction.
func (b *postgresBatch) UpsertPrior(ctx context.Context, prior domain.PriorRecord) error {
	query, args, err := psql.Insert("bayes_priors").
		Columns("entity_type", "entity_id", "mu", "sigma", "alpha", "beta", "updated_at").
		Values(prior.EntityType, prior.EntityID, prior.Mu, prior.Sigma, prior.Alpha, prior.Beta, prior.UpdatedAt).
		Suffix(`ON CONFLICT (entity_type, entity_id) DO UPDATE
            SET mu = EXCLUDED.mu, sigma = EXCLUDED.sigma,
                alpha = EXCLUDED.alpha, beta = EXCLUDED.beta,
                updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build prior upsert: %w", err)
	}
	if _, err := b.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert prior: %w", err)
	}
	return nil
}

// MarkProcessed flips the processed flag for the given row ids.
func (b *postgresBatch) MarkProcessed(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := b.tx.ExecContext(ctx,
		`UPDATE bayes_evidence SET processed = TRUE WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

func (b *postgresBatch) Commit() error {
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("commit claim tx: %w", err)
	}
	return nil
}

func (b *postgresBatch) Rollback() error {
	if err := b.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("rollback claim tx: %w", err)
	}
	return nil
}
