package alias

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	omerrors "github.com/otherjamesbrown/orgmatch/pkg/errors"
)

// PostgresRepository persists alias overrides in PostgreSQL for shared
// deployments where several operators curate the same map.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a repository over an existing pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// AliasRecord is one persisted override with curation metadata.
type AliasRecord struct {
	External  string
	Canonical string
	AddedBy   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Load reads the full alias map into an in-memory Store.
func (r *PostgresRepository) Load(ctx context.Context) (*Store, error) {
	rows, err := r.db.Query(ctx,
		`SELECT external_id, canonical_id FROM identity_aliases`)
	if err != nil {
		return nil, fmt.Errorf("loading aliases: %w", err)
	}
	defer rows.Close()

	store := NewStore()
	for rows.Next() {
		var external, canonical string
		if err := rows.Scan(&external, &canonical); err != nil {
			return nil, fmt.Errorf("scanning alias row: %w", err)
		}
		store.Set(external, canonical)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading alias rows: %w", err)
	}
	return store, nil
}

// Upsert records or corrects an override.
func (r *PostgresRepository) Upsert(ctx context.Context, external, canonical, addedBy string) error {
	query := `
		INSERT INTO identity_aliases (external_id, canonical_id, added_by, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (external_id)
		DO UPDATE SET canonical_id = EXCLUDED.canonical_id,
		              added_by = EXCLUDED.added_by,
		              updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, Normalize(external), Normalize(canonical), addedBy); err != nil {
		return fmt.Errorf("upserting alias: %w", err)
	}
	return nil
}

// Get returns a single override, or ErrNotFound when absent.
func (r *PostgresRepository) Get(ctx context.Context, external string) (*AliasRecord, error) {
	query := `
		SELECT external_id, canonical_id, added_by, created_at, updated_at
		FROM identity_aliases
		WHERE external_id = $1
	`
	var rec AliasRecord
	err := r.db.QueryRow(ctx, query, Normalize(external)).Scan(
		&rec.External, &rec.Canonical, &rec.AddedBy, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("alias %s: %w", external, omerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("getting alias: %w", err)
	}
	return &rec, nil
}

// List returns all overrides ordered by external identifier.
func (r *PostgresRepository) List(ctx context.Context) ([]AliasRecord, error) {
	query := `
		SELECT external_id, canonical_id, added_by, created_at, updated_at
		FROM identity_aliases
		ORDER BY external_id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing aliases: %w", err)
	}
	defer rows.Close()

	var records []AliasRecord
	for rows.Next() {
		var rec AliasRecord
		if err := rows.Scan(&rec.External, &rec.Canonical, &rec.AddedBy, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning alias row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Schema is the DDL for the alias table, applied by deployment tooling.
const Schema = `
CREATE TABLE IF NOT EXISTS identity_aliases (
	external_id  TEXT PRIMARY KEY,
	canonical_id TEXT NOT NULL,
	added_by     TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
