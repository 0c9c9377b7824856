package ports

import (
	"context"
	"database/sql"
	"time"

	"RegScanner/internal/domain"
)

// UpdateRepository is the persistence collaborator. The core never embeds
// storage logic beyond these three operations.
type UpdateRepository interface {
	// SaveUpdate upserts the canonical record by URL.
	SaveUpdate(ctx context.Context, update domain.StoredUpdate) error

	// GetUpdateByURL returns the stored record for a URL, or nil when none
	// exists.
	GetUpdateByURL(ctx context.Context, url string) (*domain.StoredUpdate, error)

	// BatchQuery runs fn inside one transaction; used by quality-audit
	// tooling that needs a connection-scoped batch read.
	BatchQuery(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// CompletionRequest is one chat-style call to an AI provider.
type CompletionRequest struct {
	Model       string
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Provider abstracts one AI endpoint. Implementations reduce whatever wire
// shape the provider speaks to the first message content.
type Provider interface {
	Name() string
	DefaultModel() string
	// MinInterval is the minimum spacing between requests this provider
	// tolerates; the classification service serializes on it.
	MinInterval() time.Duration
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
