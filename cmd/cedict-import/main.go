// Command cedict-import loads a CC-CEDICT file into the dictionary database
// used by cedict-mcp.
//
//	cedict-import -src cedict_1_0_ts_utf-8_mdbg.txt.gz
//	cedict-import -registry resources.json -db /tmp/dictionary.db
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/cedict-mcp/internal/config"
	"github.com/dshills/cedict-mcp/internal/dictionary"
	"github.com/dshills/cedict-mcp/internal/logging"
	"github.com/dshills/cedict-mcp/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "cedict-import: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	src := flag.String("src", "", "CC-CEDICT source file, plain or gzipped")
	registry := flag.String("registry", "", "JSON list of resources; the first compatible one is imported")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "dictionary database path")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flag.Parse()

	path, err := sourcePath(*src, *registry)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	store, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	dict := dictionary.New(store, dictionary.WithLogger(logger), dictionary.WithCacheSize(0))
	defer func() { _ = dict.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	stats, err := dict.InstallFile(ctx, path)
	if err != nil {
		return err
	}

	logger.Info("import complete",
		zap.String("src", path),
		zap.String("db", cfg.DBPath),
		zap.Int("lines", stats.Lines),
		zap.Int("entries", stats.Entries),
		zap.Int("skipped", stats.Skipped),
		zap.Duration("took", time.Since(start)))
	return nil
}

// sourcePath picks the file to import from -src or, failing that, from the
// first compatible resource in -registry. Relative registry locations are
// resolved against the registry file.
func sourcePath(src, registry string) (string, error) {
	switch {
	case src != "" && registry != "":
		return "", fmt.Errorf("-src and -registry are mutually exclusive")
	case src != "":
		return src, nil
	case registry == "":
		return "", fmt.Errorf("one of -src or -registry is required")
	}

	resources, err := dictionary.ReadRegistryFile(registry)
	if err != nil {
		return "", err
	}
	r, err := dictionary.SelectResource(resources)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(r.Location) {
		return r.Location, nil
	}
	return filepath.Join(filepath.Dir(registry), r.Location), nil
}
