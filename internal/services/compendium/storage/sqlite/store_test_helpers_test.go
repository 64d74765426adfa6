package sqlite

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/lorebound/lorekeeper/internal/services/compendium/storage"
)

func openTestCatalogStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.sqlite")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open catalog store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close catalog store: %v", err)
		}
	})
	return store
}

func testTime(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func itemFixture(name, source string) storage.ItemRecord {
	return storage.ItemRecord{
		Name:   name,
		Source: source,
		Data:   fmt.Sprintf(`{"name": %q, "source": %q}`, name, source),
	}
}

func generatedItemFixture(name, source, variantOf, baseItem string) storage.ItemRecord {
	rec := itemFixture(name, source)
	rec.VariantOf = variantOf
	rec.BaseItem = baseItem
	return rec
}
