package expansion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lorebound/lorekeeper/internal/services/compendium/storage"
)

type fakeStore struct {
	templates []storage.VariantTemplateRecord
	baseItems []storage.BaseItemRecord

	templatesErr error
	baseItemsErr error
	replaceErr   error

	replaced [][]storage.ItemRecord
}

func (f *fakeStore) ListVariantTemplates(ctx context.Context) ([]storage.VariantTemplateRecord, error) {
	return f.templates, f.templatesErr
}

func (f *fakeStore) ListBaseItems(ctx context.Context) ([]storage.BaseItemRecord, error) {
	return f.baseItems, f.baseItemsErr
}

func (f *fakeStore) ReplaceGeneratedItems(ctx context.Context, items []storage.ItemRecord) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaced = append(f.replaced, items)
	return nil
}

func seededStore() *fakeStore {
	return &fakeStore{
		templates: []storage.VariantTemplateRecord{
			{
				Name:   "+1 Weapon",
				Source: "DMG",
				Data: `{
					"name": "+1 Weapon",
					"source": "DMG",
					"requires": [{"weapon": true}],
					"excludes": {"net": true},
					"inherits": {"namePrefix": "+1 ", "rarity": "uncommon"}
				}`,
			},
		},
		baseItems: []storage.BaseItemRecord{
			{
				Name:   "Shortsword",
				Source: "PHB",
				Data:   `{"name": "Shortsword", "source": "PHB", "type": "M", "weapon": true}`,
			},
			{
				Name:   "Net",
				Source: "PHB",
				Data:   `{"name": "Net", "source": "PHB", "type": "M", "weapon": true, "net": true}`,
			},
		},
	}
}

func TestRunPersistsGeneratedItems(t *testing.T) {
	store := seededStore()

	res, err := Run(context.Background(), store)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(store.replaced) != 1 {
		t.Fatalf("expected one replace call, got %d", len(store.replaced))
	}
	items := store.replaced[0]
	if len(items) != 1 {
		t.Fatalf("expected one generated item, got %+v", items)
	}
	got := items[0]
	if got.Name != "+1 Shortsword" || got.Source != "PHB" {
		t.Fatalf("unexpected identity %s|%s", got.Name, got.Source)
	}
	if got.VariantOf != "+1 Weapon" || got.BaseItem != "Shortsword|PHB" {
		t.Fatalf("unexpected provenance: %+v", got)
	}
	if got.Rarity != "uncommon" || got.ItemType != "M" {
		t.Fatalf("unexpected indexed fields: %+v", got)
	}
	if !strings.Contains(got.Data, `"+1 Shortsword"`) {
		t.Fatalf("data blob missing composed name: %s", got.Data)
	}

	if res.ItemsGenerated != 1 {
		t.Fatalf("ItemsGenerated = %d", res.ItemsGenerated)
	}
	if res.TemplatesProcessed != 1 {
		t.Fatalf("TemplatesProcessed = %d", res.TemplatesProcessed)
	}
}

func TestRunRequiresStore(t *testing.T) {
	if _, err := Run(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestRunCollectsDecodeWarnings(t *testing.T) {
	store := seededStore()
	store.templates = append(store.templates, storage.VariantTemplateRecord{
		Name: "Broken", Source: "DMG", Data: `{not json`,
	})
	store.baseItems = append(store.baseItems, storage.BaseItemRecord{
		Name: "Nameless", Source: "PHB", Data: `{"source": "PHB"}`,
	})

	res, err := Run(context.Background(), store)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", res.Warnings)
	}
	if res.ItemsGenerated != 1 {
		t.Fatalf("decode failures must not block valid rows, got %d items", res.ItemsGenerated)
	}
}

func TestRunPropagatesStoreErrors(t *testing.T) {
	loadErr := errors.New("load failed")

	store := seededStore()
	store.templatesErr = loadErr
	if _, err := Run(context.Background(), store); !errors.Is(err, loadErr) {
		t.Fatalf("expected template load error, got %v", err)
	}

	store = seededStore()
	store.baseItemsErr = loadErr
	if _, err := Run(context.Background(), store); !errors.Is(err, loadErr) {
		t.Fatalf("expected base item load error, got %v", err)
	}

	store = seededStore()
	store.replaceErr = loadErr
	if _, err := Run(context.Background(), store); !errors.Is(err, loadErr) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestRunEmptyCatalogReplacesWithEmptySet(t *testing.T) {
	store := &fakeStore{}

	res, err := Run(context.Background(), store)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ItemsGenerated != 0 {
		t.Fatalf("ItemsGenerated = %d", res.ItemsGenerated)
	}
	if len(store.replaced) != 1 {
		t.Fatal("an empty catalog still replaces the generated set, clearing stale rows")
	}
}
