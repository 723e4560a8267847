package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"NewsCorroborator/internal/domain"
	"NewsCorroborator/internal/fusion"
	"NewsCorroborator/internal/ports"
)

// Phase is the worker's position in its cycle state machine.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseClaiming   Phase = "claiming"
	PhaseGrouping   Phase = "grouping"
	PhaseFusing     Phase = "fusing"
	PhasePersisting Phase = "persisting"
)

// minSigma is the floor of the uncertainty proxy derived from fused
// confidence.
const minSigma = 0.01

// CycleStats summarizes one worker invocation.
type CycleStats struct {
	Claimed   int
	Groups    int
	Fused     int
	Persisted int
	Marked    int
}

// BatchWorker periodically claims unprocessed evidence rows, fuses each
// entity group through the Bayesian engine, and durably upserts the
// resulting posterior. Multiple instances may run against the same queue;
// safety is delegated entirely to the store's claim-with-skip primitive.
type BatchWorker struct {
	store      ports.EvidenceStore
	engine     *fusion.Engine
	claimLimit int
	logger     *slog.Logger
	instanceID string

	mu    sync.Mutex
	phase Phase
}

// NewBatchWorker wires the worker. Each instance gets a unique id for log
// attribution when several workers share one queue.
func NewBatchWorker(store ports.EvidenceStore, engine *fusion.Engine, claimLimit int, logger *slog.Logger) *BatchWorker {
	if claimLimit <= 0 {
		claimLimit = 200
	}
	if logger == nil {
		logger = slog.Default()
	}
	instanceID := uuid.NewString()
	return &BatchWorker{
		store:      store,
		engine:     engine,
		claimLimit: claimLimit,
		logger:     logger.With("worker", instanceID),
		instanceID: instanceID,
		phase:      PhaseIdle,
	}
}

// Phase reports the worker's current cycle phase.
func (w *BatchWorker) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

func (w *BatchWorker) setPhase(phase Phase) {
	w.mu.Lock()
	w.phase = phase
	w.mu.Unlock()
}

// RunCycle performs one claim-group-fuse-persist pass. Rows belonging to a
// group whose fusion or prior upsert failed are left unprocessed so the next
// cycle retries them; one group's failure never aborts the rest of the
// batch. With an empty queue the cycle is a no-op.
func (w *BatchWorker) RunCycle(ctx context.Context) (CycleStats, error) {
	defer w.setPhase(PhaseIdle)

	w.setPhase(PhaseClaiming)
	batch, err := w.store.Claim(ctx, w.claimLimit)
	if err != nil {
		return CycleStats{}, fmt.Errorf("claim evidence: %w", err)
	}

	rows := batch.Rows()
	if len(rows) == 0 {
		_ = batch.Rollback()
		w.logger.Debug("no unprocessed evidence")
		return CycleStats{}, nil
	}
	stats := CycleStats{Claimed: len(rows)}

	w.setPhase(PhaseGrouping)
	groups := groupByEntity(rows)
	stats.Groups = len(groups)

	w.setPhase(PhaseFusing)
	fused := w.fuseGroups(groups)
	stats.Fused = len(fused)

	w.setPhase(PhasePersisting)
	now := time.Now().UTC()
	var processedIDs []int64
	for _, group := range fused {
		params := w.engine.ComputeBetaParams(group.result.Posterior, group.result.Confidence)
		sigma := 1 - group.result.Confidence
		if sigma < minSigma {
			sigma = minSigma
		}
		prior := domain.PriorRecord{
			EntityType: group.key.EntityType,
			EntityID:   group.key.EntityID,
			Mu:         group.result.Posterior,
			Sigma:      sigma,
			Alpha:      params.Alpha,
			Beta:       params.Beta,
			UpdatedAt:  now,
		}
		if err := batch.UpsertPrior(ctx, prior); err != nil {
			w.logger.Error("upsert prior failed, leaving group for retry",
				"entityType", group.key.EntityType, "entityId", group.key.EntityID, "error", err)
			continue
		}
		stats.Persisted++
		processedIDs = append(processedIDs, group.rowIDs...)
	}

	if len(processedIDs) > 0 {
		if err := batch.MarkProcessed(ctx, processedIDs); err != nil {
			_ = batch.Rollback()
			return stats, fmt.Errorf("mark processed: %w", err)
		}
		stats.Marked = len(processedIDs)
	}

	if err := batch.Commit(); err != nil {
		return stats, fmt.Errorf("commit batch: %w", err)
	}

	w.logger.Info("batch cycle complete",
		"claimed", stats.Claimed, "groups", stats.Groups,
		"persisted", stats.Persisted, "marked", stats.Marked)
	return stats, nil
}

type entityGroup struct {
	key    domain.EntityKey
	rowIDs []int64
	result fusion.Result
}

func groupByEntity(rows []domain.Evidence) map[domain.EntityKey][]domain.Evidence {
	groups := make(map[domain.EntityKey][]domain.Evidence)
	for _, row := range rows {
		groups[row.Key()] = append(groups[row.Key()], row)
	}
	return groups
}

// fuseGroups runs the sequential fold for every group. Groups share no
// state, so they fuse concurrently; the fold within one group stays ordered.
func (w *BatchWorker) fuseGroups(groups map[domain.EntityKey][]domain.Evidence) []entityGroup {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		fused []entityGroup
	)
	for key, rows := range groups {
		wg.Add(1)
		go func(key domain.EntityKey, rows []domain.Evidence) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					w.logger.Error("group fusion panicked, skipping group",
						"entityType", key.EntityType, "entityId", key.EntityID, "panic", r)
				}
			}()

			observations := make([]fusion.Observation, len(rows))
			ids := make([]int64, len(rows))
			for i, row := range rows {
				observations[i] = fusion.Observation{
					Type:       row.EvidenceType,
					Value:      row.Value,
					Confidence: row.Confidence,
				}
				ids[i] = row.ID
			}
			result := w.engine.FuseSequential(observations)

			mu.Lock()
			fused = append(fused, entityGroup{key: key, rowIDs: ids, result: result})
			mu.Unlock()
		}(key, rows)
	}
	wg.Wait()
	return fused
}
