package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"policyhub/internal/config"
	"policyhub/internal/countries"
	"policyhub/internal/etl"
	"policyhub/internal/model"
	"policyhub/internal/store"
	"policyhub/internal/store/sqlite"
	"policyhub/internal/tabular"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		run(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func run(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config (empty = defaults)")
	measuresDir := fs.String("measures", "", "measures overview workbook dir (overrides config)")
	ccybDir := fs.String("ccyb", "", "ccyb workbook dir (overrides config)")
	dbPath := fs.String("db", "", "sqlite database path (overrides config; empty string in config disables persistence)")
	fs.Parse(args)

	if err := runETL(*configPath, *measuresDir, *ccybDir, *dbPath); err != nil {
		fmt.Fprintln(os.Stderr, "etl run failed:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: etl run [options]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "options:")
	fmt.Fprintln(os.Stderr, "  -config    path to YAML config (default: built-in defaults)")
	fmt.Fprintln(os.Stderr, "  -measures  measures overview workbook dir")
	fmt.Fprintln(os.Stderr, "  -ccyb      ccyb workbook dir")
	fmt.Fprintln(os.Stderr, "  -db        sqlite database path")
}

func runETL(configPath, measuresDir, ccybDir, dbPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if strings.TrimSpace(measuresDir) != "" {
		cfg.Sources.MeasuresDir = measuresDir
	}
	if strings.TrimSpace(ccybDir) != "" {
		cfg.Sources.CCyBDir = ccybDir
	}
	if strings.TrimSpace(dbPath) != "" {
		cfg.DB = dbPath
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	sources := etl.Sources{}
	if workbook, err := tabular.LoadWorkbookDir(cfg.Sources.MeasuresDir); err != nil {
		logger.Warn("measures workbook unavailable",
			zap.String("dir", cfg.Sources.MeasuresDir), zap.Error(err))
	} else {
		sources.Measures = workbook
	}
	if workbook, err := tabular.LoadWorkbookDir(cfg.Sources.CCyBDir); err != nil {
		logger.Warn("ccyb workbook unavailable",
			zap.String("dir", cfg.Sources.CCyBDir), zap.Error(err))
	} else {
		sources.CCyB = workbook
	}

	pipeline := etl.New(logger, countries.NewStaticResolver(), time.Now().UTC())
	result := pipeline.Run(sources)

	st, err := openStore(cfg.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.SaveRun(ctx, result.Run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	if err := st.ReplaceEvents(ctx, store.GroupSyRB, result.SyRB); err != nil {
		return fmt.Errorf("save syrb history: %w", err)
	}
	if err := st.ReplaceEvents(ctx, store.GroupCCyB, recordsToEvents(result.CCyB)); err != nil {
		return fmt.Errorf("save ccyb history: %w", err)
	}
	if err := st.ReplaceEvents(ctx, store.GroupBBM, recordsToEvents(result.BBM)); err != nil {
		return fmt.Errorf("save bbm history: %w", err)
	}
	for _, table := range []model.TrendTable{result.CCyBTrend, result.SyRBTrend, result.BBMTrend} {
		if err := st.ReplaceTrend(ctx, table); err != nil {
			return fmt.Errorf("save trend: %w", err)
		}
	}

	logger.Info("etl run stored",
		zap.String("db", cfg.DB),
		zap.String("run_id", result.Run.ID),
	)
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if strings.TrimSpace(path) == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	var zcfg zap.Config
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func openStore(path string) (store.Store, error) {
	if strings.TrimSpace(path) == "" {
		return &store.NopStore{}, nil
	}
	return sqlite.New(path)
}

func recordsToEvents(records []model.MeasureRecord) []model.Event {
	events := make([]model.Event, 0, len(records))
	for _, record := range records {
		events = append(events, model.Event{MeasureRecord: record})
	}
	return events
}
