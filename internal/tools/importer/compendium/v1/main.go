// Package compendiumimporter ingests compendium source books into the
// catalog database and runs the generic variant expansion pass once all
// requested sources are in.
package compendiumimporter

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lorebound/lorekeeper/internal/platform/config"
	"github.com/lorebound/lorekeeper/internal/services/compendium/expansion"
	"github.com/lorebound/lorekeeper/internal/services/compendium/storage"
	storagesqlite "github.com/lorebound/lorekeeper/internal/services/compendium/storage/sqlite"
)

type envConfig struct {
	DBPath string `env:"LOREKEEPER_CATALOG_DB" envDefault:"data/catalog.db"`
}

// Config holds configuration for the compendium importer.
type Config struct {
	Dir     string
	DBPath  string
	Sources []string
	DryRun  bool
}

// ParseConfig parses environment defaults and CLI flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var defaults envConfig
	if err := config.ParseEnv(&defaults); err != nil {
		return Config{}, err
	}

	cfg := Config{DBPath: defaults.DBPath}

	var sources string
	fs.StringVar(&cfg.Dir, "dir", "", "directory containing one subfolder per source book")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "catalog database path")
	fs.StringVar(&sources, "sources", "", "comma-separated source codes to import (default: all)")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "validate without writing to the database")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.Dir) == "" {
		return Config{}, errors.New("dir is required")
	}
	for _, code := range strings.Split(sources, ",") {
		code = strings.TrimSpace(code)
		if code != "" {
			cfg.Sources = append(cfg.Sources, code)
		}
	}

	return cfg, nil
}

// Run executes the importer using the provided Config.
//
// Sources are ingested one directory at a time; the variant expansion pass
// runs exactly once after the last source, so templates from one book can
// combine with base items from another.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = io.Discard
	}

	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		return errors.New("dir is required")
	}

	codes, err := listSourceDirs(dir)
	if err != nil {
		return err
	}
	if len(codes) == 0 {
		return errors.New("no source directories found")
	}
	if len(cfg.Sources) > 0 {
		codes, err = filterSources(codes, cfg.Sources)
		if err != nil {
			return err
		}
	}

	payloadsByCode := make(map[string]sourcePayloads, len(codes))
	for _, code := range codes {
		payloads, err := readSourcePayloads(filepath.Join(dir, code))
		if err != nil {
			return fmt.Errorf("read %s: %w", code, err)
		}
		if err := validateSourcePayloads(code, payloads); err != nil {
			return fmt.Errorf("validate %s: %w", code, err)
		}
		payloadsByCode[code] = payloads
	}

	if cfg.DryRun {
		_, err = fmt.Fprintf(out, "validated %d source(s)\n", len(codes))
		return err
	}

	store, err := storagesqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open catalog store: %w", err)
	}
	defer store.Close()

	started := time.Now().UTC()
	itemsIngested := 0
	for _, code := range codes {
		count, err := ingestSource(ctx, store, code, payloadsByCode[code], started)
		if err != nil {
			return fmt.Errorf("import %s: %w", code, err)
		}
		itemsIngested += count
	}

	res, err := expansion.Run(ctx, store)
	if err != nil {
		return fmt.Errorf("expand variants: %w", err)
	}

	run := storage.ImportRunRecord{
		ID:                uuid.NewString(),
		StartedAt:         started,
		FinishedAt:        time.Now().UTC(),
		SourcesIngested:   len(codes),
		ItemsIngested:     itemsIngested,
		VariantsGenerated: res.ItemsGenerated,
		Warnings:          res.Warnings,
	}
	if err := store.PutImportRun(ctx, run); err != nil {
		return fmt.Errorf("record import run: %w", err)
	}

	for _, warning := range res.Warnings {
		if _, err := fmt.Fprintf(out, "warning: %s\n", warning); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(out, "imported %d source(s) into %s; expanded %d variant item(s), %d warning(s)\n",
		len(codes), cfg.DBPath, res.ItemsGenerated, len(res.Warnings))
	return err
}

func listSourceDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var codes []string
	for _, entry := range entries {
		if entry.IsDir() {
			codes = append(codes, entry.Name())
		}
	}
	sort.Strings(codes)
	return codes, nil
}

func filterSources(available, requested []string) ([]string, error) {
	present := make(map[string]struct{}, len(available))
	for _, code := range available {
		present[code] = struct{}{}
	}

	var codes []string
	for _, code := range requested {
		if _, ok := present[code]; !ok {
			return nil, fmt.Errorf("source %s not found", code)
		}
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, nil
}

func readJSON[T any](dir string, name string) (*T, error) {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return &value, nil
}
