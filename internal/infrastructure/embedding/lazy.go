package embedding

import (
	"context"
	"sync"

	"NewsCorroborator/internal/ports"
)

// Lazy defers embedder construction to the first embedding call and
// guarantees the underlying handle is built exactly once, even under
// concurrent first use. The handle is treated as read-only afterwards.
type Lazy struct {
	construct func() ports.Embedder
	once      sync.Once
	embedder  ports.Embedder
}

var _ ports.Embedder = (*Lazy)(nil)

// NewLazy wraps a constructor for deferred single initialization.
func NewLazy(construct func() ports.Embedder) *Lazy {
	return &Lazy{construct: construct}
}

func (l *Lazy) init() {
	l.once.Do(func() {
		l.embedder = l.construct()
	})
}

// ModelName initializes the handle if needed and reports its model.
func (l *Lazy) ModelName() string {
	l.init()
	if l.embedder == nil {
		return ""
	}
	return l.embedder.ModelName()
}

// EmbedTexts initializes the handle if needed and delegates.
func (l *Lazy) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	l.init()
	if l.embedder == nil {
		return nil, ErrNoProvider
	}
	return l.embedder.EmbedTexts(ctx, texts)
}
