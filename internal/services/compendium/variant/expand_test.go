package variant

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func expansionFixture(t *testing.T) ([]Template, []BaseItem) {
	t.Helper()

	templates := []Template{
		decodeTemplate(t, `{
			"name": "+1 Weapon",
			"source": "DMG",
			"requires": [{"weapon": true}, {"type": "A"}],
			"excludes": {"net": true},
			"inherits": {"namePrefix": "+1 ", "rarity": "uncommon", "bonusWeapon": "+1"}
		}`),
		decodeTemplate(t, `{
			"name": "Weapon of Warning",
			"source": "DMG",
			"requires": [{"weapon": true}],
			"inherits": {"nameSuffix": " of Warning", "rarity": "uncommon"}
		}`),
	}
	items := []BaseItem{
		decodeItem(t, `{"name": "Shortsword", "source": "PHB", "type": "M", "weapon": true, "rarity": "none"}`),
		decodeItem(t, `{"name": "Arrow", "source": "PHB", "type": "A", "rarity": "none"}`),
		decodeItem(t, `{"name": "Net", "source": "PHB", "type": "M", "weapon": true, "net": true}`),
		decodeItem(t, `{"name": "Rope", "source": "PHB", "type": "G"}`),
	}
	return templates, items
}

func TestExpandCrossProduct(t *testing.T) {
	templates, items := expansionFixture(t)

	out, res, err := Expand(context.Background(), templates, items)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	names := make([]string, len(out))
	for i, item := range out {
		names[i] = item.Name
	}
	// Templates sorted by name: "+1 Weapon" before "Weapon of Warning"; base
	// items sorted by name within each template.
	want := []string{
		"+1 Arrow",
		"+1 Shortsword",
		"Net of Warning",
		"Shortsword of Warning",
	}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("generated names = %v, want %v", names, want)
	}

	if res.TemplatesProcessed != 2 {
		t.Fatalf("TemplatesProcessed = %d", res.TemplatesProcessed)
	}
	if res.BaseItemsConsidered != 4 {
		t.Fatalf("BaseItemsConsidered = %d", res.BaseItemsConsidered)
	}
	if res.ItemsGenerated != len(out) {
		t.Fatalf("ItemsGenerated = %d, want %d", res.ItemsGenerated, len(out))
	}
	if res.ItemsSkipped != 0 {
		t.Fatalf("ItemsSkipped = %d", res.ItemsSkipped)
	}
}

func TestExpandProvenance(t *testing.T) {
	templates, items := expansionFixture(t)

	out, _, err := Expand(context.Background(), templates, items)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	var sword ExpandedItem
	for _, item := range out {
		if item.Name == "+1 Shortsword" {
			sword = item
		}
	}
	if sword.VariantOf != "+1 Weapon" {
		t.Fatalf("VariantOf = %q", sword.VariantOf)
	}
	if sword.BaseItem != "Shortsword|PHB" {
		t.Fatalf("BaseItem = %q", sword.BaseItem)
	}
	if sword.Source != "PHB" {
		t.Fatalf("Source should fall back to the base item, got %q", sword.Source)
	}
	if sword.Rarity != "uncommon" {
		t.Fatalf("Rarity = %q", sword.Rarity)
	}
	if sword.ItemType != "M" {
		t.Fatalf("ItemType = %q", sword.ItemType)
	}
}

func TestExpandInheritedSource(t *testing.T) {
	templates := []Template{
		decodeTemplate(t, `{
			"name": "+1 Weapon",
			"source": "DMG",
			"requires": [{"weapon": true}],
			"inherits": {"namePrefix": "+1 ", "source": "DMG", "rarity": "uncommon"}
		}`),
	}
	items := []BaseItem{
		decodeItem(t, `{"name": "Shortsword", "source": "PHB", "type": "M", "weapon": true}`),
	}

	out, _, err := Expand(context.Background(), templates, items)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one item, got %d", len(out))
	}
	if out[0].Source != "DMG" {
		t.Fatalf("inherited source should win, got %q", out[0].Source)
	}
	if out[0].BaseItem != "Shortsword|PHB" {
		t.Fatalf("provenance keeps the base item's source, got %q", out[0].BaseItem)
	}
}

func TestExpandDeterministic(t *testing.T) {
	templates, items := expansionFixture(t)

	first, _, err := Expand(context.Background(), templates, items)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	// Reversed input order must not change the output.
	reversedTemplates := []Template{templates[1], templates[0]}
	reversedItems := make([]BaseItem, len(items))
	for i, item := range items {
		reversedItems[len(items)-1-i] = item
	}

	for i := 0; i < 5; i++ {
		again, _, err := Expand(context.Background(), reversedTemplates, reversedItems)
		if err != nil {
			t.Fatalf("Expand: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs from first run", i)
		}
	}
}

func TestExpandDedupLastWriteWins(t *testing.T) {
	templates := []Template{
		decodeTemplate(t, `{
			"name": "+1 Weapon (DMG)",
			"source": "DMG",
			"requires": [{"weapon": true}],
			"inherits": {"namePrefix": "+1 ", "rarity": "uncommon"}
		}`),
		decodeTemplate(t, `{
			"name": "+1 Weapon (XDMG)",
			"source": "XDMG",
			"requires": [{"weapon": true}],
			"inherits": {"namePrefix": "+1 ", "rarity": "rare"}
		}`),
	}
	items := []BaseItem{
		decodeItem(t, `{"name": "Club", "source": "PHB", "weapon": true}`),
		decodeItem(t, `{"name": "Dagger", "source": "PHB", "weapon": true}`),
	}

	out, res, err := Expand(context.Background(), templates, items)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	if len(out) != 2 {
		t.Fatalf("expected 2 deduplicated items, got %d", len(out))
	}
	if res.ItemsSkipped != 2 {
		t.Fatalf("ItemsSkipped = %d, want 2", res.ItemsSkipped)
	}
	// The later template wins, but the item keeps its original position.
	if out[0].Name != "+1 Club" || out[1].Name != "+1 Dagger" {
		t.Fatalf("unexpected order: %q, %q", out[0].Name, out[1].Name)
	}
	for _, item := range out {
		if item.VariantOf != "+1 Weapon (XDMG)" {
			t.Fatalf("%s: VariantOf = %q, want the later template", item.Name, item.VariantOf)
		}
		if item.Rarity != "rare" {
			t.Fatalf("%s: Rarity = %q", item.Name, item.Rarity)
		}
	}
}

func TestExpandSkipsInvalidTemplates(t *testing.T) {
	templates := []Template{
		{Name: "No Naming", Requires: []Requirement{{"weapon": {Kind: KindBool, Bool: true}}}},
		{Name: "No Requires", Inherits: Inherits{NamePrefix: "+1 "}},
		decodeTemplate(t, `{
			"name": "+1 Weapon",
			"requires": [{"weapon": true}],
			"inherits": {"namePrefix": "+1 "}
		}`),
	}
	items := []BaseItem{
		decodeItem(t, `{"name": "Club", "source": "PHB", "weapon": true}`),
	}

	out, res, err := Expand(context.Background(), templates, items)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	if len(out) != 1 || out[0].Name != "+1 Club" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if res.TemplatesProcessed != 1 {
		t.Fatalf("TemplatesProcessed = %d", res.TemplatesProcessed)
	}
	if len(res.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", res.Warnings)
	}
	for _, warning := range res.Warnings {
		if !strings.Contains(warning, "skipped") {
			t.Fatalf("warning %q should mention the skip", warning)
		}
	}
}

func TestExpandCancelled(t *testing.T) {
	templates, items := expansionFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := Expand(ctx, templates, items); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
