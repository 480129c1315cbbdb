package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"policyhub/internal/model"
	"policyhub/internal/store"
)

const dateLayout = "2006-01-02"

type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) SaveRun(ctx context.Context, run model.RunInfo) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, today, ingested_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET today = excluded.today, ingested_at = excluded.ingested_at
	`, run.ID, run.Today.Format(dateLayout), run.IngestedAt.UTC().Format(time.RFC3339))
	return err
}

func (s *Store) LatestRun(ctx context.Context) (model.RunInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, today, ingested_at FROM runs ORDER BY ingested_at DESC LIMIT 1
	`)
	var run model.RunInfo
	var today, ingested string
	if err := row.Scan(&run.ID, &today, &ingested); err != nil {
		return model.RunInfo{}, err
	}
	run.Today = parseDate(today)
	if at, err := time.Parse(time.RFC3339, ingested); err == nil {
		run.IngestedAt = at
	}
	return run, nil
}

// ReplaceEvents restates the full history of one instrument group.
func (s *Store) ReplaceEvents(ctx context.Context, group string, events []model.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM measure_events WHERE grp = ?`, group); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO measure_events (
			grp, instrument, country, iso2, iso3,
			effective_date, decision_date, revocation_date,
			status, description, reference, exposure_text, exposure,
			syrb_type, measure_type, rate, rate_text,
			justification, credit_gap, active_status, synthetic, seq
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, event := range events {
		_, err = stmt.ExecContext(
			ctx,
			group,
			string(event.Instrument),
			event.Country,
			event.ISO2,
			event.ISO3,
			formatDate(event.EffectiveDate),
			formatDate(event.DecisionDate),
			formatDate(event.RevocationDate),
			event.StatusText,
			event.Description,
			event.Reference,
			event.ExposureText,
			string(event.Exposure),
			string(event.SyRBType),
			event.MeasureType,
			event.Rate,
			event.RateText,
			event.Justification,
			event.CreditGap,
			string(event.ActiveStatus),
			event.Synthetic,
			i,
		)
		if err != nil {
			return err
		}
	}

	err = tx.Commit()
	return err
}

func (s *Store) ListEvents(ctx context.Context, group string) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT instrument, country, iso2, iso3,
			effective_date, decision_date, revocation_date,
			status, description, reference, exposure_text, exposure,
			syrb_type, measure_type, rate, rate_text,
			justification, credit_gap, active_status, synthetic
		FROM measure_events WHERE grp = ? ORDER BY seq
	`, group)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]model.Event, 0)
	for rows.Next() {
		var event model.Event
		var instrument, exposure, syrbType, activeStatus string
		var effective, decision, revocation sql.NullString
		err := rows.Scan(
			&instrument, &event.Country, &event.ISO2, &event.ISO3,
			&effective, &decision, &revocation,
			&event.StatusText, &event.Description, &event.Reference,
			&event.ExposureText, &exposure,
			&syrbType, &event.MeasureType, &event.Rate, &event.RateText,
			&event.Justification, &event.CreditGap, &activeStatus, &event.Synthetic,
		)
		if err != nil {
			return nil, err
		}
		event.Instrument = model.Instrument(instrument)
		event.Exposure = model.ExposureClass(exposure)
		event.SyRBType = model.SyRBType(syrbType)
		event.ActiveStatus = model.ActiveStatus(activeStatus)
		event.EffectiveDate = parseNullDate(effective)
		event.DecisionDate = parseNullDate(decision)
		event.RevocationDate = parseNullDate(revocation)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// ReplaceTrend restates every column of the table as (series, date, count)
// rows.
func (s *Store) ReplaceTrend(ctx context.Context, table model.TrendTable) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	del, err := tx.PrepareContext(ctx, `DELETE FROM trend_points WHERE series = ?`)
	if err != nil {
		return err
	}
	defer del.Close()
	for _, column := range table.Columns {
		if _, err = del.ExecContext(ctx, column); err != nil {
			return err
		}
	}

	ins, err := tx.PrepareContext(ctx, `
		INSERT INTO trend_points (series, date, count) VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer ins.Close()

	for _, row := range table.Rows {
		for i, column := range table.Columns {
			if i >= len(row.Counts) {
				continue
			}
			if _, err = ins.ExecContext(ctx, column, row.Date.Format(dateLayout), row.Counts[i]); err != nil {
				return err
			}
		}
	}

	err = tx.Commit()
	return err
}

func (s *Store) ListTrend(ctx context.Context, columns []string) (model.TrendTable, error) {
	table := model.TrendTable{Columns: columns}
	if len(columns) == 0 {
		return table, nil
	}

	byDate := make(map[string][]int)
	dates := make([]string, 0)
	for i, column := range columns {
		rows, err := s.db.QueryContext(ctx, `
			SELECT date, count FROM trend_points WHERE series = ? ORDER BY date
		`, column)
		if err != nil {
			return table, err
		}
		for rows.Next() {
			var date string
			var count int
			if err := rows.Scan(&date, &count); err != nil {
				rows.Close()
				return table, err
			}
			counts, ok := byDate[date]
			if !ok {
				counts = make([]int, len(columns))
				byDate[date] = counts
				dates = append(dates, date)
			}
			counts[i] = count
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return table, err
		}
		rows.Close()
	}

	sort.Strings(dates)
	for _, date := range dates {
		table.Rows = append(table.Rows, model.TrendRow{
			Date:   parseDate(date),
			Counts: byDate[date],
		})
	}
	return table, nil
}

func (s *Store) migrate() error {
	statements := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			today TEXT NOT NULL,
			ingested_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS measure_events (
			grp TEXT NOT NULL,
			instrument TEXT NOT NULL,
			country TEXT NOT NULL,
			iso2 TEXT,
			iso3 TEXT,
			effective_date TEXT,
			decision_date TEXT,
			revocation_date TEXT,
			status TEXT,
			description TEXT,
			reference TEXT,
			exposure_text TEXT,
			exposure TEXT,
			syrb_type TEXT,
			measure_type TEXT,
			rate REAL NOT NULL,
			rate_text TEXT,
			justification TEXT,
			credit_gap REAL NOT NULL DEFAULT 0,
			active_status TEXT,
			synthetic INTEGER NOT NULL DEFAULT 0,
			seq INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_measure_events_grp ON measure_events (grp, seq);`,
		`CREATE TABLE IF NOT EXISTS trend_points (
			series TEXT NOT NULL,
			date TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (series, date)
		);`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}

	return nil
}

func formatDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(dateLayout)
}

func parseNullDate(value sql.NullString) time.Time {
	if !value.Valid {
		return time.Time{}
	}
	return parseDate(value.String)
}

func parseDate(value string) time.Time {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
