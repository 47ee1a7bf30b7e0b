package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"mediawatch/internal/domain"
	"mediawatch/internal/ports"
)

// PostgresArchive keeps a flat history of every ingested coverage item. It is
// a secondary seen-set for duplicate detection and an audit trail; the
// authoritative published collections live in the content store.
type PostgresArchive struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.ArchiveRepository = (*PostgresArchive)(nil)

// NewPostgresArchive wires a sql.DB implementation.
func NewPostgresArchive(db *sql.DB) *PostgresArchive {
	return &PostgresArchive{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// KnownURLs returns every URL the archive has seen.
func (r *PostgresArchive) KnownURLs(ctx context.Context) ([]string, error) {
	if r.db == nil {
		return nil, nil
	}

	query, args, err := r.builder.Select("url").From("coverage_items").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query known urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan url: %w", err)
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return urls, nil
}

// SaveRun inserts the run's items, skipping URLs already recorded.
func (r *PostgresArchive) SaveRun(ctx context.Context, items []domain.CoverageItem) error {
	if r.db == nil || len(items) == 0 {
		return nil
	}

	insert := r.builder.Insert("coverage_items").Columns(
		"external_id", "headline", "url", "outlet", "published_date",
		"category", "search_term", "source_name", "discovered_at",
	)
	for _, item := range items {
		insert = insert.Values(
			item.ID, item.Headline, item.URL, item.Outlet, item.PublishedDate,
			string(item.Category), item.SearchTerm, item.SourceName, item.DiscoveredAt,
		)
	}
	insert = insert.Suffix("ON CONFLICT (url) DO NOTHING")

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run items: %w", err)
	}

	return nil
}
