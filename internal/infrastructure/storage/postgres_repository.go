package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"RegScanner/internal/domain"
	"RegScanner/internal/ports"
)

// PostgresRepository persists canonical regulatory updates into Postgres.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.UpdateRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var updateColumns = []string{
	"id", "headline", "url", "authority", "published_at",
	"summary", "ai_summary", "content_type", "impact_level", "urgency",
	"business_impact", "confidence", "sectors", "tags", "firm_types",
	"compliance_deadline", "phases", "resources", "created_at", "updated_at",
}

// SaveUpdate upserts the canonical record by URL. Structured fields go
// into JSON columns; flat string lists into text arrays.
func (r *PostgresRepository) SaveUpdate(ctx context.Context, update domain.StoredUpdate) error {
	if r.db == nil {
		return nil
	}

	sectors, err := json.Marshal(update.Sectors)
	if err != nil {
		return fmt.Errorf("encode sectors: %w", err)
	}
	phases, err := json.Marshal(update.Phases)
	if err != nil {
		return fmt.Errorf("encode phases: %w", err)
	}
	resources, err := json.Marshal(update.Resources)
	if err != nil {
		return fmt.Errorf("encode resources: %w", err)
	}

	query, args, err := r.builder.
		Insert("regulatory_updates").
		Columns(updateColumns...).
		Values(
			update.ID,
			update.Headline,
			update.URL,
			update.Authority,
			update.PublishedAt,
			update.Summary,
			update.AISummary,
			update.ContentType,
			update.ImpactLevel,
			update.Urgency,
			update.BusinessImpact,
			update.Confidence,
			sectors,
			pq.StringArray(update.Tags),
			pq.StringArray(update.FirmTypes),
			update.ComplianceDeadline,
			phases,
			resources,
			update.CreatedAt,
			update.UpdatedAt,
		).
		Suffix(`ON CONFLICT (url) DO UPDATE
            SET ai_summary = EXCLUDED.ai_summary,
                content_type = EXCLUDED.content_type,
                impact_level = EXCLUDED.impact_level,
                urgency = EXCLUDED.urgency,
                business_impact = EXCLUDED.business_impact,
                confidence = EXCLUDED.confidence,
                sectors = EXCLUDED.sectors,
                tags = EXCLUDED.tags,
                firm_types = EXCLUDED.firm_types,
                compliance_deadline = EXCLUDED.compliance_deadline,
                phases = EXCLUDED.phases,
                resources = EXCLUDED.resources,
                updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert update: %w", err)
	}
	return nil
}

// GetUpdateByURL returns the stored record for a URL, or nil when absent.
func (r *PostgresRepository) GetUpdateByURL(ctx context.Context, url string) (*domain.StoredUpdate, error) {
	if r.db == nil {
		return nil, nil
	}

	query, args, err := r.builder.
		Select(updateColumns...).
		From("regulatory_updates").
		Where(sq.Eq{"url": url}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var (
		rec       domain.StoredUpdate
		sectors   []byte
		phases    []byte
		resources []byte
		tags      pq.StringArray
		firmTypes pq.StringArray
	)
	row := r.db.QueryRowContext(ctx, query, args...)
	err = row.Scan(
		&rec.ID,
		&rec.Headline,
		&rec.URL,
		&rec.Authority,
		&rec.PublishedAt,
		&rec.Summary,
		&rec.AISummary,
		&rec.ContentType,
		&rec.ImpactLevel,
		&rec.Urgency,
		&rec.BusinessImpact,
		&rec.Confidence,
		&sectors,
		&tags,
		&firmTypes,
		&rec.ComplianceDeadline,
		&phases,
		&resources,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select update: %w", err)
	}

	if len(sectors) > 0 {
		if err := json.Unmarshal(sectors, &rec.Sectors); err != nil {
			return nil, fmt.Errorf("decode sectors: %w", err)
		}
	}
	if len(phases) > 0 {
		if err := json.Unmarshal(phases, &rec.Phases); err != nil {
			return nil, fmt.Errorf("decode phases: %w", err)
		}
	}
	if len(resources) > 0 {
		if err := json.Unmarshal(resources, &rec.Resources); err != nil {
			return nil, fmt.Errorf("decode resources: %w", err)
		}
	}
	rec.Tags = tags
	rec.FirmTypes = firmTypes
	return &rec, nil
}

// BatchQuery runs fn inside one transaction.
func (r *PostgresRepository) BatchQuery(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if r.db == nil {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
