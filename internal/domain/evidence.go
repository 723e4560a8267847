package domain

import "time"

// Evidence is a single queued likelihood observation about an entity.
// Rows are append-only; the batch worker consumes each row exactly once.
type Evidence struct {
	ID           int64
	EntityType   string
	EntityID     string
	EvidenceType string
	Value        float64
	Confidence   float64
	Processed    bool
	CreatedAt    time.Time
}

// EntityKey identifies the subject of evidence rows and priors.
type EntityKey struct {
	EntityType string
	EntityID   string
}

// Key returns the grouping key for an evidence row.
func (e Evidence) Key() EntityKey {
	return EntityKey{EntityType: e.EntityType, EntityID: e.EntityID}
}

// PriorRecord holds the fused belief about an entity. Upserted, never
// duplicated, on each batch cycle.
type PriorRecord struct {
	EntityType string
	EntityID   string
	Mu         float64
	Sigma      float64
	Alpha      float64
	Beta       float64
	UpdatedAt  time.Time
}
