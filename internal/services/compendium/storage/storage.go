package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// SourceRecord is a compendium source book reference.
type SourceRecord struct {
	Code      string
	Name      string
	Enabled   bool
	CreatedAt time.Time
}

// ItemRecord is one catalog item row. Rows generated by variant expansion
// carry VariantOf and BaseItem provenance; both are empty for hand-authored
// or directly-ingested rows, which the expansion engine must never touch.
type ItemRecord struct {
	Name      string
	Source    string
	ItemType  string
	Rarity    string
	Data      string
	VariantOf string
	BaseItem  string
	CreatedAt time.Time
}

// BaseItemRecord is an ingested base equipment definition, carrying the
// indexed matching fields plus the full original JSON object. Base items are
// immutable once ingested and replaced wholesale on re-import of a source.
type BaseItemRecord struct {
	Name           string
	Source         string
	ItemType       string
	WeaponCategory string
	Dmg1           string
	DmgType        string
	Weight         float64
	ScfType        string
	Properties     []string
	Data           string
	CreatedAt      time.Time
}

// VariantTemplateRecord is an ingested generic variant template, stored as
// its full JSON object. Decoding into the engine's typed representation
// happens at expansion time.
type VariantTemplateRecord struct {
	Name      string
	Source    string
	Data      string
	CreatedAt time.Time
}

// ImportRunRecord summarises one completed import run.
type ImportRunRecord struct {
	ID                string
	StartedAt         time.Time
	FinishedAt        time.Time
	SourcesIngested   int
	ItemsIngested     int
	VariantsGenerated int
	Warnings          []string
}

// CatalogStore persists compendium catalog content.
type CatalogStore interface {
	PutSource(ctx context.Context, source SourceRecord) error
	ListSources(ctx context.Context) ([]SourceRecord, error)

	PutItem(ctx context.Context, item ItemRecord) error
	GetItem(ctx context.Context, name, source string) (ItemRecord, error)
	ListItems(ctx context.Context) ([]ItemRecord, error)
	CountItems(ctx context.Context) (int64, error)

	PutBaseItem(ctx context.Context, item BaseItemRecord) error
	ListBaseItems(ctx context.Context) ([]BaseItemRecord, error)

	PutVariantTemplate(ctx context.Context, template VariantTemplateRecord) error
	ListVariantTemplates(ctx context.Context) ([]VariantTemplateRecord, error)

	// DeleteSourceContent removes a source's ingested base items, templates,
	// and directly-ingested items ahead of a re-import. Generated rows are
	// left alone; the next expansion run converges them.
	DeleteSourceContent(ctx context.Context, source string) error

	// ReplaceGeneratedItems atomically swaps the set of generated catalog
	// rows: within one transaction it deletes every row with non-null
	// variant_of provenance and inserts the freshly computed set. Rows
	// without provenance are never touched.
	ReplaceGeneratedItems(ctx context.Context, items []ItemRecord) error

	PutImportRun(ctx context.Context, run ImportRunRecord) error

	Close() error
}
