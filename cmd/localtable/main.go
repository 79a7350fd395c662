package main

import (
	_ "embed"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/leengari/localtable/internal/config"
	"github.com/leengari/localtable/internal/domain/schema"
	"github.com/leengari/localtable/internal/engine"
	"github.com/leengari/localtable/internal/infrastructure/logging"
	"github.com/leengari/localtable/internal/repl"
)

//go:embed default_structure.yaml
var defaultStructure []byte

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	structure := flag.String("structure", "", "Structure file (YAML or JSON), overrides table.structure")
	logLevel := flag.String("log-level", "", "Log level, overrides log.level")
	flag.Parse()

	if err := run(*configPath, *structure, *logLevel); err != nil {
		fmt.Fprintln(os.Stderr, "localtable:", err)
		os.Exit(1)
	}
}

func run(configPath, structure, logLevel string) error {
	cfg, err := config.Load(configPath, os.Getenv)
	if err != nil {
		return err
	}
	if structure != "" {
		cfg.Table.Structure = structure
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger, closeFn, err := logging.SetupLogger(logging.Options{
		Level:     cfg.Log.Level,
		SeqURL:    cfg.Log.SeqURL,
		AddSource: cfg.Log.AddSource,
	})
	if err != nil {
		return err
	}
	defer closeFn()
	slog.SetDefault(logger)

	tbl, err := openTable(cfg.Table, logger)
	if err != nil {
		slog.Error("failed to open table", "error", err)
		return err
	}

	slog.Info("table ready", "table", tbl.Name(), "indexes", tbl.IndexCount())
	repl.New(tbl, os.Stdout, cfg.Shell.PageSize).Start(cfg.Shell)
	return nil
}

func openTable(cfg config.TableConfig, logger *slog.Logger) (*engine.Table, error) {
	var fields []schema.Field
	var err error
	if cfg.Structure != "" {
		fields, err = schema.LoadStructure(cfg.Structure)
	} else {
		fields, err = schema.ParseStructure(defaultStructure, false)
	}
	if err != nil {
		return nil, err
	}

	tbl, err := engine.New(fields, engine.WithName(cfg.Name), engine.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	tbl.AddObserver(engine.NewLoggingObserver(logger))

	for _, keys := range cfg.Indexes {
		if !tbl.IndexOn(keys) {
			return nil, fmt.Errorf("index on %s: %w", keys, tbl.Err())
		}
	}
	if cfg.Order != "" {
		if !tbl.SetCurIndex(cfg.Order) {
			return nil, fmt.Errorf("table.order %q names no index", cfg.Order)
		}
	} else {
		tbl.SetOrder(0)
	}
	return tbl, nil
}
