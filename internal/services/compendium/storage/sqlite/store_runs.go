package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/lorebound/lorekeeper/internal/services/compendium/storage"
)

// PutImportRun records the summary of one completed import run.
func (s *Store) PutImportRun(ctx context.Context, run storage.ImportRunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("import run id is required")
	}

	warnings, err := encodeStrings(run.Warnings)
	if err != nil {
		return fmt.Errorf("encode import run warnings: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO import_runs (
	id, started_at, finished_at, sources_ingested, items_ingested, variants_generated, warnings
) VALUES (?, ?, ?, ?, ?, ?, ?)
`,
		run.ID,
		toMillis(run.StartedAt),
		toMillis(run.FinishedAt),
		run.SourcesIngested,
		run.ItemsIngested,
		run.VariantsGenerated,
		warnings,
	)
	if err != nil {
		return fmt.Errorf("put import run: %w", err)
	}
	return nil
}

// ListImportRuns lists recorded import runs, most recent first.
func (s *Store) ListImportRuns(ctx context.Context) ([]storage.ImportRunRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, started_at, finished_at, sources_ingested, items_ingested, variants_generated, warnings
FROM import_runs
ORDER BY started_at DESC, id
`)
	if err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}
	defer rows.Close()

	var runs []storage.ImportRunRecord
	for rows.Next() {
		var rec storage.ImportRunRecord
		var startedAt, finishedAt int64
		var warnings string
		if err := rows.Scan(
			&rec.ID,
			&startedAt,
			&finishedAt,
			&rec.SourcesIngested,
			&rec.ItemsIngested,
			&rec.VariantsGenerated,
			&warnings,
		); err != nil {
			return nil, fmt.Errorf("scan import run: %w", err)
		}
		rec.StartedAt = fromMillis(startedAt)
		rec.FinishedAt = fromMillis(finishedAt)
		rec.Warnings, err = decodeStrings(warnings)
		if err != nil {
			return nil, fmt.Errorf("decode import run warnings: %w", err)
		}
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}
	return runs, nil
}
