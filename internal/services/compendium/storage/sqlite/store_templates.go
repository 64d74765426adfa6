package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/lorebound/lorekeeper/internal/services/compendium/storage"
)

// PutVariantTemplate persists an ingested generic variant template.
func (s *Store) PutVariantTemplate(ctx context.Context, template storage.VariantTemplateRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(template.Name) == "" {
		return fmt.Errorf("template name is required")
	}
	if strings.TrimSpace(template.Source) == "" {
		return fmt.Errorf("template source is required")
	}
	if strings.TrimSpace(template.Data) == "" {
		return fmt.Errorf("template data is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO catalog_variant_templates (name, source, data, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(name, source) DO UPDATE SET
	data = excluded.data
`,
		template.Name,
		template.Source,
		template.Data,
		toMillis(template.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put variant template: %w", err)
	}
	return nil
}

// ListVariantTemplates lists all variant templates ordered by (name, source).
func (s *Store) ListVariantTemplates(ctx context.Context) ([]storage.VariantTemplateRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT name, source, data, created_at
FROM catalog_variant_templates
ORDER BY name, source
`)
	if err != nil {
		return nil, fmt.Errorf("list variant templates: %w", err)
	}
	defer rows.Close()

	var templates []storage.VariantTemplateRecord
	for rows.Next() {
		var rec storage.VariantTemplateRecord
		var createdAt int64
		if err := rows.Scan(&rec.Name, &rec.Source, &rec.Data, &createdAt); err != nil {
			return nil, fmt.Errorf("scan variant template: %w", err)
		}
		rec.CreatedAt = fromMillis(createdAt)
		templates = append(templates, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list variant templates: %w", err)
	}
	return templates, nil
}
