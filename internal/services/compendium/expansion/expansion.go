// Package expansion orchestrates the generic variant expansion pass: load
// templates and base items from the catalog store, run the pure engine over
// the cross product, and atomically replace the generated row set.
//
// The pass runs once, globally, after all requested sources have been
// ingested — a template from one source book must combine with base items
// from another — so the importer treats it as an explicit pipeline stage
// behind an ingestion barrier rather than a per-source hook.
package expansion

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lorebound/lorekeeper/internal/services/compendium/storage"
	"github.com/lorebound/lorekeeper/internal/services/compendium/variant"
)

// Store is the slice of catalog storage the expansion pass needs.
type Store interface {
	ListVariantTemplates(ctx context.Context) ([]storage.VariantTemplateRecord, error)
	ListBaseItems(ctx context.Context) ([]storage.BaseItemRecord, error)
	ReplaceGeneratedItems(ctx context.Context, items []storage.ItemRecord) error
}

var tracer = otel.Tracer("lorekeeper/compendium/expansion")

// Run executes one full expansion pass against the store. Recoverable
// problems (malformed templates, undecodable rows) accumulate as warnings in
// the result; a persistence failure is fatal, rolls back, and leaves the
// catalog unchanged.
func Run(ctx context.Context, store Store) (variant.Result, error) {
	ctx, span := tracer.Start(ctx, "expansion.run")
	defer span.End()

	if store == nil {
		return variant.Result{}, fmt.Errorf("catalog store is required")
	}

	templateRows, err := store.ListVariantTemplates(ctx)
	if err != nil {
		return variant.Result{}, fmt.Errorf("load variant templates: %w", err)
	}
	baseItemRows, err := store.ListBaseItems(ctx)
	if err != nil {
		return variant.Result{}, fmt.Errorf("load base items: %w", err)
	}

	var warnings []string

	templates := make([]variant.Template, 0, len(templateRows))
	for _, row := range templateRows {
		tpl, err := variant.DecodeTemplate([]byte(row.Data))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("template %s|%s skipped: %v", row.Name, row.Source, err))
			continue
		}
		templates = append(templates, tpl)
	}

	baseItems := make([]variant.BaseItem, 0, len(baseItemRows))
	for _, row := range baseItemRows {
		item, err := variant.DecodeBaseItem([]byte(row.Data))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("base item %s|%s skipped: %v", row.Name, row.Source, err))
			continue
		}
		baseItems = append(baseItems, item)
	}

	expanded, res, err := variant.Expand(ctx, templates, baseItems)
	if err != nil {
		return res, fmt.Errorf("expand variants: %w", err)
	}
	res.Warnings = append(warnings, res.Warnings...)

	now := time.Now().UTC()
	records := make([]storage.ItemRecord, 0, len(expanded))
	for _, item := range expanded {
		data, err := json.Marshal(item.Data)
		if err != nil {
			return res, fmt.Errorf("marshal expanded item %s|%s: %w", item.Name, item.Source, err)
		}
		records = append(records, storage.ItemRecord{
			Name:      item.Name,
			Source:    item.Source,
			ItemType:  item.ItemType,
			Rarity:    item.Rarity,
			Data:      string(data),
			VariantOf: item.VariantOf,
			BaseItem:  item.BaseItem,
			CreatedAt: now,
		})
	}

	if err := store.ReplaceGeneratedItems(ctx, records); err != nil {
		return res, fmt.Errorf("persist expanded items: %w", err)
	}

	span.SetAttributes(
		attribute.Int("expansion.templates_processed", res.TemplatesProcessed),
		attribute.Int("expansion.base_items_considered", res.BaseItemsConsidered),
		attribute.Int("expansion.items_generated", res.ItemsGenerated),
		attribute.Int("expansion.items_skipped", res.ItemsSkipped),
		attribute.Int("expansion.warnings", len(res.Warnings)),
	)

	return res, nil
}
