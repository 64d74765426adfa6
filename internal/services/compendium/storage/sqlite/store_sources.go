package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/lorebound/lorekeeper/internal/services/compendium/storage"
)

// PutSource persists a compendium source reference.
func (s *Store) PutSource(ctx context.Context, source storage.SourceRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(source.Code) == "" {
		return fmt.Errorf("source code is required")
	}
	if strings.TrimSpace(source.Name) == "" {
		return fmt.Errorf("source name is required")
	}

	enabled := 0
	if source.Enabled {
		enabled = 1
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO catalog_sources (code, name, enabled, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(code) DO UPDATE SET
	name = excluded.name,
	enabled = excluded.enabled
`,
		source.Code,
		source.Name,
		enabled,
		toMillis(source.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put source: %w", err)
	}
	return nil
}

// ListSources lists all compendium sources ordered by code.
func (s *Store) ListSources(ctx context.Context) ([]storage.SourceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT code, name, enabled, created_at
FROM catalog_sources
ORDER BY code
`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var sources []storage.SourceRecord
	for rows.Next() {
		var rec storage.SourceRecord
		var enabled int
		var createdAt int64
		if err := rows.Scan(&rec.Code, &rec.Name, &enabled, &createdAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		rec.Enabled = enabled != 0
		rec.CreatedAt = fromMillis(createdAt)
		sources = append(sources, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return sources, nil
}
