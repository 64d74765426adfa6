package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lorebound/lorekeeper/internal/services/compendium/storage"
)

func nullableString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

// PutItem persists one catalog item row.
func (s *Store) PutItem(ctx context.Context, item storage.ItemRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("item name is required")
	}
	if strings.TrimSpace(item.Source) == "" {
		return fmt.Errorf("item source is required")
	}
	if strings.TrimSpace(item.Data) == "" {
		return fmt.Errorf("item data is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO catalog_items (name, source, item_type, rarity, data, variant_of, base_item, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name, source) DO UPDATE SET
	item_type = excluded.item_type,
	rarity = excluded.rarity,
	data = excluded.data,
	variant_of = excluded.variant_of,
	base_item = excluded.base_item
`,
		item.Name,
		item.Source,
		nullableString(item.ItemType),
		nullableString(item.Rarity),
		item.Data,
		nullableString(item.VariantOf),
		nullableString(item.BaseItem),
		toMillis(item.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// GetItem fetches one catalog item by its (name, source) identity.
func (s *Store) GetItem(ctx context.Context, name, source string) (storage.ItemRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.ItemRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ItemRecord{}, fmt.Errorf("storage is not configured")
	}
	name = strings.TrimSpace(name)
	source = strings.TrimSpace(source)
	if name == "" {
		return storage.ItemRecord{}, fmt.Errorf("item name is required")
	}
	if source == "" {
		return storage.ItemRecord{}, fmt.Errorf("item source is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT name, source, item_type, rarity, data, variant_of, base_item, created_at
FROM catalog_items
WHERE name = ? AND source = ?
`, name, source)

	rec, err := scanItem(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ItemRecord{}, storage.ErrNotFound
		}
		return storage.ItemRecord{}, fmt.Errorf("get item: %w", err)
	}
	return rec, nil
}

// ListItems lists all catalog items ordered by (name, source).
func (s *Store) ListItems(ctx context.Context) ([]storage.ItemRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT name, source, item_type, rarity, data, variant_of, base_item, created_at
FROM catalog_items
ORDER BY name, source
`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []storage.ItemRecord
	for rows.Next() {
		rec, err := scanItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// CountItems reports the number of catalog item rows.
func (s *Store) CountItems(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var count int64
	row := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM catalog_items")
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}

// ReplaceGeneratedItems atomically replaces every generated catalog row with
// the provided set. The delete is scoped to rows carrying variant_of
// provenance; hand-authored and directly-ingested rows are never touched. A
// failure mid-write rolls the whole transaction back, leaving the catalog in
// its pre-run state.
func (s *Store) ReplaceGeneratedItems(ctx context.Context, items []storage.ItemRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	for _, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("generated item name is required")
		}
		if strings.TrimSpace(item.Source) == "" {
			return fmt.Errorf("generated item source is required")
		}
		if strings.TrimSpace(item.VariantOf) == "" {
			return fmt.Errorf("generated item %s|%s is missing variant provenance", item.Name, item.Source)
		}
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin generated item replace: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback generated item replace: %v", cause, rollbackErr)
		}
		return cause
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM catalog_items WHERE variant_of IS NOT NULL"); err != nil {
		return rollbackWith(fmt.Errorf("delete generated items: %w", err))
	}

	insert, err := tx.PrepareContext(ctx, `
INSERT INTO catalog_items (name, source, item_type, rarity, data, variant_of, base_item, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name, source) DO NOTHING
`)
	if err != nil {
		return rollbackWith(fmt.Errorf("prepare generated item insert: %w", err))
	}
	defer insert.Close()

	for _, item := range items {
		if _, err := insert.ExecContext(ctx,
			item.Name,
			item.Source,
			nullableString(item.ItemType),
			nullableString(item.Rarity),
			item.Data,
			item.VariantOf,
			nullableString(item.BaseItem),
			toMillis(item.CreatedAt),
		); err != nil {
			return rollbackWith(fmt.Errorf("insert generated item %s|%s: %w", item.Name, item.Source, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit generated item replace: %w", err)
	}
	return nil
}

func scanItem(scan func(dest ...any) error) (storage.ItemRecord, error) {
	var rec storage.ItemRecord
	var itemType, rarity, variantOf, baseItem sql.NullString
	var createdAt int64
	if err := scan(
		&rec.Name,
		&rec.Source,
		&itemType,
		&rarity,
		&rec.Data,
		&variantOf,
		&baseItem,
		&createdAt,
	); err != nil {
		return storage.ItemRecord{}, err
	}
	rec.ItemType = itemType.String
	rec.Rarity = rarity.String
	rec.VariantOf = variantOf.String
	rec.BaseItem = baseItem.String
	rec.CreatedAt = fromMillis(createdAt)
	return rec, nil
}
