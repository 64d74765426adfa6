package compendiumimporter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lorebound/lorekeeper/internal/services/compendium/storage"
	"github.com/lorebound/lorekeeper/internal/services/compendium/variant"
)

func readSourcePayloads(dir string) (sourcePayloads, error) {
	var payloads sourcePayloads
	var err error
	payloads.Source, err = readJSON[sourcePayload](dir, "source.json")
	if err != nil {
		return payloads, err
	}
	payloads.BaseItems, err = readJSON[baseItemsPayload](dir, "items-base.json")
	if err != nil {
		return payloads, err
	}
	payloads.Variants, err = readJSON[magicVariantsPayload](dir, "magicvariants.json")
	if err != nil {
		return payloads, err
	}
	payloads.Items, err = readJSON[itemsPayload](dir, "items.json")
	if err != nil {
		return payloads, err
	}
	return payloads, nil
}

func validateSourcePayloads(code string, payloads sourcePayloads) error {
	if payloads.Source == nil {
		return fmt.Errorf("source.json is required")
	}
	if payloads.Source.Code != code {
		return fmt.Errorf("source code mismatch: %s", payloads.Source.Code)
	}
	if strings.TrimSpace(payloads.Source.Name) == "" {
		return fmt.Errorf("source name is required")
	}

	if payloads.BaseItems != nil {
		for _, raw := range payloads.BaseItems.BaseItems {
			if _, err := variant.DecodeBaseItem(raw); err != nil {
				return err
			}
		}
	}
	if payloads.Variants != nil {
		for _, raw := range payloads.Variants.Variants {
			if _, err := variant.DecodeTemplate(raw); err != nil {
				return err
			}
		}
	}
	if payloads.Items != nil {
		for _, raw := range payloads.Items.Items {
			var header itemHeader
			if err := json.Unmarshal(raw, &header); err != nil {
				return fmt.Errorf("decode item: %w", err)
			}
			if header.Name == "" {
				return fmt.Errorf("item name is required")
			}
		}
	}
	return nil
}

// ingestSource replaces one source's ingested content wholesale: prior
// content for the source is deleted, then the source's base items, variant
// templates, and directly-authored items are inserted. Returns the number of
// catalog item rows ingested.
func ingestSource(ctx context.Context, store storage.CatalogStore, code string, payloads sourcePayloads, now time.Time) (int, error) {
	if store == nil {
		return 0, fmt.Errorf("catalog store is required")
	}

	if err := store.DeleteSourceContent(ctx, code); err != nil {
		return 0, fmt.Errorf("clear source content: %w", err)
	}

	enabled := true
	if payloads.Source.Enabled != nil {
		enabled = *payloads.Source.Enabled
	}
	if err := store.PutSource(ctx, storage.SourceRecord{
		Code:      code,
		Name:      payloads.Source.Name,
		Enabled:   enabled,
		CreatedAt: now,
	}); err != nil {
		return 0, fmt.Errorf("put source: %w", err)
	}

	count := 0

	if payloads.BaseItems != nil {
		for _, raw := range payloads.BaseItems.BaseItems {
			n, err := ingestBaseItem(ctx, store, code, raw, now)
			if err != nil {
				return count, err
			}
			count += n
		}
	}

	if payloads.Variants != nil {
		for _, raw := range payloads.Variants.Variants {
			if err := ingestVariantTemplate(ctx, store, code, raw, now); err != nil {
				return count, err
			}
		}
	}

	if payloads.Items != nil {
		for _, raw := range payloads.Items.Items {
			if err := ingestItem(ctx, store, code, raw, now); err != nil {
				return count, err
			}
			count++
		}
	}

	return count, nil
}

// ingestBaseItem writes both the indexed base item row used by variant
// matching and a plain catalog item row, since mundane equipment is part of
// the catalog in its own right.
func ingestBaseItem(ctx context.Context, store storage.CatalogStore, code string, raw json.RawMessage, now time.Time) (int, error) {
	item, err := variant.DecodeBaseItem(raw)
	if err != nil {
		return 0, err
	}
	source := item.Source
	if source == "" {
		source = code
	}

	record := storage.BaseItemRecord{
		Name:           item.Name,
		Source:         source,
		ItemType:       item.TypeCode,
		WeaponCategory: item.WeaponCategory,
		Dmg1:           stringField(item.Raw, "dmg1"),
		DmgType:        stringField(item.Raw, "dmgType"),
		Weight:         numberField(item.Raw, "weight"),
		ScfType:        stringField(item.Raw, "scfType"),
		Properties:     item.Properties,
		Data:           string(raw),
		CreatedAt:      now,
	}
	if err := store.PutBaseItem(ctx, record); err != nil {
		return 0, fmt.Errorf("put base item %s: %w", item.Name, err)
	}

	var header itemHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return 0, fmt.Errorf("decode base item %s: %w", item.Name, err)
	}
	if err := store.PutItem(ctx, storage.ItemRecord{
		Name:      item.Name,
		Source:    source,
		ItemType:  item.TypeCode,
		Rarity:    header.Rarity,
		Data:      string(raw),
		CreatedAt: now,
	}); err != nil {
		return 0, fmt.Errorf("put base item row %s: %w", item.Name, err)
	}
	return 1, nil
}

func ingestVariantTemplate(ctx context.Context, store storage.CatalogStore, code string, raw json.RawMessage, now time.Time) error {
	tpl, err := variant.DecodeTemplate(raw)
	if err != nil {
		return err
	}
	source := tpl.Source
	if source == "" {
		source = code
	}

	if err := store.PutVariantTemplate(ctx, storage.VariantTemplateRecord{
		Name:      tpl.Name,
		Source:    source,
		Data:      string(raw),
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("put variant template %s: %w", tpl.Name, err)
	}
	return nil
}

func ingestItem(ctx context.Context, store storage.CatalogStore, code string, raw json.RawMessage, now time.Time) error {
	var header itemHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return fmt.Errorf("decode item: %w", err)
	}
	source := header.Source
	if source == "" {
		source = code
	}

	itemType := header.Type
	if idx := strings.IndexByte(itemType, '|'); idx >= 0 {
		itemType = itemType[:idx]
	}

	if err := store.PutItem(ctx, storage.ItemRecord{
		Name:      header.Name,
		Source:    source,
		ItemType:  itemType,
		Rarity:    header.Rarity,
		Data:      string(raw),
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("put item %s: %w", header.Name, err)
	}
	return nil
}

func stringField(raw map[string]any, key string) string {
	value, _ := raw[key].(string)
	return value
}

func numberField(raw map[string]any, key string) float64 {
	value, _ := raw[key].(float64)
	return value
}
