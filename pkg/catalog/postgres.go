package catalog

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// PostgresConfig locates a catalog table in Postgres.
type PostgresConfig struct {
	// DSN is the Postgres connection string.
	DSN string

	// Table holds one row per catalog item with id, title and description
	// columns.
	Table string
}

var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// LoadPostgres loads a full catalog table from Postgres. Rows are read in
// primary-key order so item positions are stable across a reload of an
// unchanged table.
func LoadPostgres(ctx context.Context, name string, cfg PostgresConfig, logger *zap.Logger) (*Catalog, error) {
	if cfg.DSN == "" || cfg.Table == "" {
		return nil, fmt.Errorf("postgres catalog source requires dsn and table")
	}
	if !identRe.MatchString(cfg.Table) {
		return nil, fmt.Errorf("invalid catalog table name %q", cfg.Table)
	}

	conn, err := pgx.Connect(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	defer func() { _ = conn.Close(ctx) }()

	rows, err := conn.Query(ctx,
		fmt.Sprintf(`SELECT id::text, title, description FROM %s ORDER BY id`, cfg.Table),
	)
	if err != nil {
		return nil, fmt.Errorf("querying catalog table %s: %w", cfg.Table, err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var id, title, description string
		if err := rows.Scan(&id, &title, &description); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		items = append(items, Item{
			ID:    id,
			Title: title,
			Text:  joinText(title, description),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog table %s: %w", cfg.Table, err)
	}

	cat := New(name, items)

	logger.Info("loaded catalog from postgres",
		zap.String("catalog", name),
		zap.String("table", cfg.Table),
		zap.Int("items", cat.Len()),
	)

	return cat, nil
}
