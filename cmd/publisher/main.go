package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"policyhub/internal/config"
	"policyhub/internal/etl"
	"policyhub/internal/model"
	"policyhub/internal/snapshot"
	"policyhub/internal/store"
	"policyhub/internal/store/sqlite"
)

const dateLayout = "2006-01-02"

type metaFile struct {
	GeneratedAt string `json:"generated_at"`
	RunID       string `json:"run_id"`
	RunDate     string `json:"run_date"`
}

type historyFile struct {
	GeneratedAt string       `json:"generated_at"`
	Rows        []measureRow `json:"rows"`
}

type measureRow struct {
	Country        string  `json:"country"`
	ISO2           string  `json:"iso2,omitempty"`
	ISO3           string  `json:"iso3,omitempty"`
	Date           string  `json:"date"`
	DecisionDate   string  `json:"decision_date,omitempty"`
	RevocationDate string  `json:"revocation_date,omitempty"`
	Rate           float64 `json:"rate_numeric"`
	RateText       string  `json:"rate,omitempty"`
	Status         string  `json:"status,omitempty"`
	ExposureType   string  `json:"exposure_type,omitempty"`
	SyRBType       string  `json:"syrb_type,omitempty"`
	MeasureType    string  `json:"measure_type,omitempty"`
	Description    string  `json:"description,omitempty"`
	Justification  string  `json:"justification,omitempty"`
	CreditGap      float64 `json:"credit_gap,omitempty"`
	ActiveStatus   string  `json:"active_status,omitempty"`
}

type latestFile struct {
	GeneratedAt string       `json:"generated_at"`
	LatestCCyB  []measureRow `json:"latest_ccyb"`
	LatestSyRB  []measureRow `json:"latest_syrb"`
	ActiveSyRB  []measureRow `json:"active_syrb"`
	ActiveBBM   []bbmRow     `json:"active_bbm"`
}

type bbmRow struct {
	Country      string `json:"country"`
	ISO2         string `json:"iso2,omitempty"`
	Date         string `json:"date"`
	MeasureType  string `json:"measure_type"`
	MeasureShort string `json:"measure_short"`
	Status       string `json:"status,omitempty"`
}

type trendFile struct {
	GeneratedAt string     `json:"generated_at"`
	Columns     []string   `json:"columns"`
	Rows        []trendRow `json:"rows"`
}

type trendRow struct {
	Date   string `json:"date"`
	Counts []int  `json:"counts"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "build":
		build(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func build(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config (empty = defaults)")
	outDir := fs.String("out", "", "output directory (overrides config)")
	dbPath := fs.String("db", "", "sqlite database path (overrides config)")
	fs.Parse(args)

	if err := runBuild(*configPath, *outDir, *dbPath); err != nil {
		fmt.Fprintln(os.Stderr, "publisher build failed:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: publisher build [options]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "options:")
	fmt.Fprintln(os.Stderr, "  -config  path to YAML config (default: built-in defaults)")
	fmt.Fprintln(os.Stderr, "  -out     output directory")
	fmt.Fprintln(os.Stderr, "  -db      sqlite database path")
}

func runBuild(configPath, outDir, dbPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if strings.TrimSpace(outDir) != "" {
		cfg.OutDir = outDir
	}
	if strings.TrimSpace(dbPath) != "" {
		cfg.DB = dbPath
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	st, err := sqlite.New(cfg.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	run, err := st.LatestRun(ctx)
	if err != nil {
		return fmt.Errorf("no stored run: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if err := writeJSON(filepath.Join(cfg.OutDir, "meta.json"), metaFile{
		GeneratedAt: now,
		RunID:       run.ID,
		RunDate:     run.Today.Format(dateLayout),
	}); err != nil {
		return err
	}

	syrb, err := st.ListEvents(ctx, store.GroupSyRB)
	if err != nil {
		return err
	}
	ccyb, err := st.ListEvents(ctx, store.GroupCCyB)
	if err != nil {
		return err
	}
	bbm, err := st.ListEvents(ctx, store.GroupBBM)
	if err != nil {
		return err
	}

	histories := []struct {
		name   string
		events []model.Event
	}{
		{"syrb.json", syrb},
		{"ccyb.json", ccyb},
		{"bbm.json", bbm},
	}
	for _, history := range histories {
		if err := writeJSON(filepath.Join(cfg.OutDir, history.name), historyFile{
			GeneratedAt: now,
			Rows:        toRows(history.events),
		}); err != nil {
			return err
		}
	}

	latest := latestFile{
		GeneratedAt: now,
		LatestCCyB:  toRows(snapshot.LatestByCountry(ccyb)),
		LatestSyRB:  toRows(snapshot.LatestByCountry(syrb)),
		ActiveSyRB:  toRows(snapshot.ActiveSyRB(syrb, run.Today)),
		ActiveBBM:   toBBMRows(snapshot.ActiveBBM(toRecords(bbm))),
	}
	if err := writeJSON(filepath.Join(cfg.OutDir, "latest.json"), latest); err != nil {
		return err
	}

	trends := []struct {
		name    string
		columns []string
	}{
		{"trend_ccyb.json", []string{etl.SeriesCCyB}},
		{"trend_syrb.json", []string{etl.SeriesSyRBGeneral, etl.SeriesSyRBSectoral}},
		{"trend_bbm.json", []string{etl.SeriesBBM}},
	}
	for _, trend := range trends {
		table, err := st.ListTrend(ctx, trend.columns)
		if err != nil {
			return err
		}
		if err := writeJSON(filepath.Join(cfg.OutDir, trend.name), toTrendFile(now, table)); err != nil {
			return err
		}
	}

	fmt.Printf("publisher build complete (out=%s)\n", cfg.OutDir)
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if strings.TrimSpace(path) == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func writeJSON(path string, value any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func toRows(events []model.Event) []measureRow {
	rows := make([]measureRow, 0, len(events))
	for _, event := range events {
		rows = append(rows, measureRow{
			Country:        event.Country,
			ISO2:           event.ISO2,
			ISO3:           event.ISO3,
			Date:           formatDate(event.EffectiveDate),
			DecisionDate:   formatDate(event.DecisionDate),
			RevocationDate: formatDate(event.RevocationDate),
			Rate:           event.Rate,
			RateText:       event.RateText,
			Status:         event.StatusText,
			ExposureType:   string(event.Exposure),
			SyRBType:       string(event.SyRBType),
			MeasureType:    event.MeasureType,
			Description:    event.Description,
			Justification:  event.Justification,
			CreditGap:      event.CreditGap,
			ActiveStatus:   string(event.ActiveStatus),
		})
	}
	return rows
}

func toBBMRows(records []model.MeasureRecord) []bbmRow {
	rows := make([]bbmRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, bbmRow{
			Country:      record.Country,
			ISO2:         record.ISO2,
			Date:         formatDate(record.EffectiveDate),
			MeasureType:  record.MeasureType,
			MeasureShort: snapshot.AbbreviateMeasure(record.MeasureType),
			Status:       record.StatusText,
		})
	}
	return rows
}

func toRecords(events []model.Event) []model.MeasureRecord {
	records := make([]model.MeasureRecord, 0, len(events))
	for _, event := range events {
		records = append(records, event.MeasureRecord)
	}
	return records
}

func toTrendFile(generatedAt string, table model.TrendTable) trendFile {
	out := trendFile{GeneratedAt: generatedAt, Columns: table.Columns}
	for _, row := range table.Rows {
		out.Rows = append(out.Rows, trendRow{
			Date:   row.Date.Format(dateLayout),
			Counts: row.Counts,
		})
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
