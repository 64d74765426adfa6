package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lorebound/lorekeeper/internal/services/compendium/storage"
)

// PutBaseItem persists an ingested base equipment definition.
func (s *Store) PutBaseItem(ctx context.Context, item storage.BaseItemRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("base item name is required")
	}
	if strings.TrimSpace(item.Source) == "" {
		return fmt.Errorf("base item source is required")
	}
	if strings.TrimSpace(item.Data) == "" {
		return fmt.Errorf("base item data is required")
	}

	properties, err := encodeStrings(item.Properties)
	if err != nil {
		return fmt.Errorf("encode base item properties: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO catalog_base_items (
	name, source, item_type, weapon_category, dmg1, dmg_type, weight, scf_type, properties, data, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name, source) DO UPDATE SET
	item_type = excluded.item_type,
	weapon_category = excluded.weapon_category,
	dmg1 = excluded.dmg1,
	dmg_type = excluded.dmg_type,
	weight = excluded.weight,
	scf_type = excluded.scf_type,
	properties = excluded.properties,
	data = excluded.data
`,
		item.Name,
		item.Source,
		nullableString(item.ItemType),
		nullableString(item.WeaponCategory),
		nullableString(item.Dmg1),
		nullableString(item.DmgType),
		item.Weight,
		nullableString(item.ScfType),
		properties,
		item.Data,
		toMillis(item.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put base item: %w", err)
	}
	return nil
}

// ListBaseItems lists all base items ordered by (name, source).
func (s *Store) ListBaseItems(ctx context.Context) ([]storage.BaseItemRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT name, source, item_type, weapon_category, dmg1, dmg_type, weight, scf_type, properties, data, created_at
FROM catalog_base_items
ORDER BY name, source
`)
	if err != nil {
		return nil, fmt.Errorf("list base items: %w", err)
	}
	defer rows.Close()

	var items []storage.BaseItemRecord
	for rows.Next() {
		var rec storage.BaseItemRecord
		var itemType, weaponCategory, dmg1, dmgType, scfType sql.NullString
		var properties string
		var createdAt int64
		if err := rows.Scan(
			&rec.Name,
			&rec.Source,
			&itemType,
			&weaponCategory,
			&dmg1,
			&dmgType,
			&rec.Weight,
			&scfType,
			&properties,
			&rec.Data,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan base item: %w", err)
		}
		rec.ItemType = itemType.String
		rec.WeaponCategory = weaponCategory.String
		rec.Dmg1 = dmg1.String
		rec.DmgType = dmgType.String
		rec.ScfType = scfType.String
		rec.CreatedAt = fromMillis(createdAt)
		rec.Properties, err = decodeStrings(properties)
		if err != nil {
			return nil, fmt.Errorf("decode base item properties: %w", err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list base items: %w", err)
	}
	return items, nil
}

// DeleteSourceContent removes a source's ingested content ahead of a
// re-import: its source row, base items, variant templates, and
// directly-ingested items. Generated rows are left for the next expansion
// run to converge.
func (s *Store) DeleteSourceContent(ctx context.Context, source string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	source = strings.TrimSpace(source)
	if source == "" {
		return fmt.Errorf("source is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin source content delete: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback source content delete: %v", cause, rollbackErr)
		}
		return cause
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM catalog_base_items WHERE source = ?", source); err != nil {
		return rollbackWith(fmt.Errorf("delete source base items: %w", err))
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM catalog_variant_templates WHERE source = ?", source); err != nil {
		return rollbackWith(fmt.Errorf("delete source templates: %w", err))
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM catalog_items WHERE source = ? AND variant_of IS NULL", source); err != nil {
		return rollbackWith(fmt.Errorf("delete source items: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit source content delete: %w", err)
	}
	return nil
}
