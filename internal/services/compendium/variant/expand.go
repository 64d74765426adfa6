package variant

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// ExpandedItem is one generated catalog entry, ready to persist.
type ExpandedItem struct {
	Name      string
	Source    string
	ItemType  string
	Rarity    string
	VariantOf string
	BaseItem  string
	Data      map[string]any
}

// Result summarises one expansion run.
type Result struct {
	TemplatesProcessed  int
	BaseItemsConsidered int
	ItemsGenerated      int
	ItemsSkipped        int
	Warnings            []string
}

// Expand evaluates the full template × base-item cross product and returns
// the generated items in a stable, deterministic order.
//
// Templates and base items are iterated sorted by (name, source). Matching is
// read-only per pair, so template evaluation fans out across workers; results
// are collected back in template order before deduplication, which keeps the
// output byte-identical across runs regardless of scheduling. When two pairs
// produce the same (name, source) key, the later pair in iteration order
// wins and the earlier item is counted as skipped.
//
// A template that fails validation is skipped and recorded as a warning; it
// never aborts the run.
func Expand(ctx context.Context, templates []Template, items []BaseItem) ([]ExpandedItem, Result, error) {
	var res Result
	res.BaseItemsConsidered = len(items)

	sortedItems := make([]BaseItem, len(items))
	copy(sortedItems, items)
	sort.Slice(sortedItems, func(i, j int) bool {
		if sortedItems[i].Name != sortedItems[j].Name {
			return sortedItems[i].Name < sortedItems[j].Name
		}
		return sortedItems[i].Source < sortedItems[j].Source
	})

	sortedTemplates := make([]Template, len(templates))
	copy(sortedTemplates, templates)
	sort.Slice(sortedTemplates, func(i, j int) bool {
		if sortedTemplates[i].Name != sortedTemplates[j].Name {
			return sortedTemplates[i].Name < sortedTemplates[j].Name
		}
		return sortedTemplates[i].Source < sortedTemplates[j].Source
	})

	valid := sortedTemplates[:0]
	for _, tpl := range sortedTemplates {
		if err := tpl.Validate(); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("template %s skipped: %v", tpl.Name, err))
			continue
		}
		valid = append(valid, tpl)
	}
	res.TemplatesProcessed = len(valid)

	// One result slot per template keeps collection ordered no matter how
	// the workers are scheduled.
	generated := make([][]ExpandedItem, len(valid))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))
	for i, tpl := range valid {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			generated[i] = expandTemplate(tpl, sortedItems)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, res, err
	}

	var out []ExpandedItem
	position := make(map[string]int)
	for _, batch := range generated {
		for _, item := range batch {
			key := item.Name + "|" + item.Source
			if at, seen := position[key]; seen {
				out[at] = item
				res.ItemsSkipped++
				continue
			}
			position[key] = len(out)
			out = append(out, item)
		}
	}
	res.ItemsGenerated = len(out)

	return out, res, nil
}

func expandTemplate(tpl Template, items []BaseItem) []ExpandedItem {
	var out []ExpandedItem
	for _, item := range items {
		if !ItemMatchesTemplate(item, tpl) {
			continue
		}
		out = append(out, buildExpandedItem(item, tpl))
	}
	return out
}

func buildExpandedItem(item BaseItem, tpl Template) ExpandedItem {
	data := Merge(item, tpl)

	expanded := ExpandedItem{
		VariantOf: tpl.Name,
		BaseItem:  item.Name + "|" + item.Source,
		Data:      data,
	}
	expanded.Name, _ = data["name"].(string)
	if source, ok := data["source"].(string); ok && source != "" {
		expanded.Source = source
	} else {
		expanded.Source = item.Source
	}
	if code, ok := data["type"].(string); ok {
		expanded.ItemType = stripSourceSuffix(code)
	}
	expanded.Rarity, _ = data["rarity"].(string)

	return expanded
}
