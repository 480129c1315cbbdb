package store

import (
	"context"

	"policyhub/internal/model"
)

// Instrument group keys under which histories are persisted.
const (
	GroupSyRB = "syrb"
	GroupCCyB = "ccyb"
	GroupBBM  = "bbm"
)

// Store persists the canonicalized output of a reconciliation run and serves
// it back to the publisher. Histories are replaced wholesale per group: each
// run is a full restatement of the source, not an increment.
type Store interface {
	SaveRun(ctx context.Context, run model.RunInfo) error
	ReplaceEvents(ctx context.Context, group string, events []model.Event) error
	ReplaceTrend(ctx context.Context, table model.TrendTable) error

	LatestRun(ctx context.Context) (model.RunInfo, error)
	ListEvents(ctx context.Context, group string) ([]model.Event, error)
	ListTrend(ctx context.Context, columns []string) (model.TrendTable, error)

	Close() error
}

type NopStore struct{}

func (s *NopStore) SaveRun(ctx context.Context, run model.RunInfo) error {
	_ = ctx
	_ = run
	return nil
}

func (s *NopStore) ReplaceEvents(ctx context.Context, group string, events []model.Event) error {
	_ = ctx
	_ = group
	_ = events
	return nil
}

func (s *NopStore) ReplaceTrend(ctx context.Context, table model.TrendTable) error {
	_ = ctx
	_ = table
	return nil
}

func (s *NopStore) LatestRun(ctx context.Context) (model.RunInfo, error) {
	_ = ctx
	return model.RunInfo{}, nil
}

func (s *NopStore) ListEvents(ctx context.Context, group string) ([]model.Event, error) {
	_ = ctx
	_ = group
	return nil, nil
}

func (s *NopStore) ListTrend(ctx context.Context, columns []string) (model.TrendTable, error) {
	_ = ctx
	return model.TrendTable{Columns: columns}, nil
}

func (s *NopStore) Close() error {
	return nil
}
