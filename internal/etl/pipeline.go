// Package etl orchestrates the normalization and temporal-state
// reconciliation run: canonicalize each source table, expand timelines,
// derive trend series and latest-state snapshots. A failure in one source is
// isolated, logged, and that source's outputs stay empty; the run never
// aborts as a whole.
package etl

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"policyhub/internal/countries"
	"policyhub/internal/diffusion"
	"policyhub/internal/model"
	"policyhub/internal/snapshot"
	"policyhub/internal/tabular"
	"policyhub/internal/timeline"
)

// Trend series and column names as the reporting side expects them.
const (
	SeriesCCyB         = "n_positive"
	SeriesSyRBGeneral  = "General SyRB"
	SeriesSyRBSectoral = "Sectoral SyRB"
	SeriesBBM          = "n_countries"
)

// Sources are the pre-downloaded workbooks handed over by the fetch
// collaborator. Either may be nil when a download failed upstream.
type Sources struct {
	// Measures is the macroprudential measures overview workbook holding the
	// SyRB and BoBM sheets among others.
	Measures *tabular.Workbook
	// CCyB is the countercyclical buffer workbook; its first sheet is the one.
	CCyB *tabular.Workbook
}

// Result is the full output bundle of one run.
type Result struct {
	Run model.RunInfo

	// Full histories, (country asc, date desc). SyRB history is the expanded
	// event list including synthesized revocations.
	SyRB []model.Event
	CCyB []model.MeasureRecord
	BBM  []model.MeasureRecord

	// Latest-state snapshots.
	LatestSyRB []model.Event
	LatestCCyB []model.MeasureRecord
	ActiveSyRB []model.Event
	ActiveBBM  []model.MeasureRecord

	// Diffusion trend tables, one row per calendar day, no gaps.
	CCyBTrend model.TrendTable
	SyRBTrend model.TrendTable
	BBMTrend  model.TrendTable
}

type Pipeline struct {
	log      *zap.Logger
	resolver countries.Resolver
	builder  *timeline.Builder
	run      model.RunInfo
}

// New builds a pipeline. The run date ("today") is captured once here and
// reused by every component, so trend endpoints and active checks stay
// consistent across the whole run. A zero now means wall clock.
func New(log *zap.Logger, resolver countries.Resolver, now time.Time) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	if resolver == nil {
		resolver = countries.NopResolver{}
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return &Pipeline{
		log:      log,
		resolver: resolver,
		builder:  timeline.New(log),
		run: model.RunInfo{
			ID:         uuid.NewString(),
			Today:      model.Day(now),
			IngestedAt: now,
		},
	}
}

// Run executes the full reconciliation over the given sources.
func (p *Pipeline) Run(sources Sources) *Result {
	result := &Result{Run: p.run}
	log := p.log.With(zap.String("run_id", p.run.ID))
	log.Info("starting reconciliation run", zap.Time("today", p.run.Today))

	if sources.Measures != nil {
		events, err := p.processSyRB(sources.Measures)
		if err != nil {
			log.Warn("syrb source unusable", zap.Error(err))
		} else {
			result.SyRB = events
		}

		records, err := p.processBBM(sources.Measures)
		if err != nil {
			log.Warn("bbm source unusable", zap.Error(err))
		} else {
			result.BBM = records
		}
	}
	if sources.CCyB != nil {
		records, err := p.processCCyB(sources.CCyB)
		if err != nil {
			log.Warn("ccyb source unusable", zap.Error(err))
		} else {
			result.CCyB = records
		}
	}

	result.CCyBTrend = p.ccybTrend(result.CCyB)
	result.SyRBTrend = p.syrbTrend(result.SyRB)
	result.BBMTrend = p.bbmTrend(result.BBM)

	result.LatestSyRB = snapshot.LatestByCountry(result.SyRB)
	result.LatestCCyB = snapshot.Latest(result.CCyB,
		func(r model.MeasureRecord) string { return r.Country },
		func(r model.MeasureRecord) time.Time { return r.EffectiveDate },
	)
	result.ActiveSyRB = snapshot.ActiveSyRB(result.SyRB, p.run.Today)
	result.ActiveBBM = snapshot.ActiveBBM(result.BBM)

	log.Info("reconciliation run complete",
		zap.Int("syrb_events", len(result.SyRB)),
		zap.Int("ccyb_records", len(result.CCyB)),
		zap.Int("bbm_records", len(result.BBM)),
		zap.Int("syrb_trend_days", len(result.SyRBTrend.Rows)),
		zap.Int("ccyb_trend_days", len(result.CCyBTrend.Rows)),
		zap.Int("bbm_trend_days", len(result.BBMTrend.Rows)),
	)
	return result
}

func (p *Pipeline) ccybTrend(records []model.MeasureRecord) model.TrendTable {
	if len(records) == 0 {
		return model.TrendTable{Columns: []string{SeriesCCyB}}
	}
	observations := make([]diffusion.Observation, 0, len(records))
	for _, record := range records {
		observations = append(observations, diffusion.Observation{
			Date:    record.EffectiveDate,
			Country: record.Country,
			Rate:    record.Rate,
		})
	}
	points := diffusion.DailyCounts(observations, p.run.Today)
	return diffusion.Merge([]string{SeriesCCyB}, points)
}

func (p *Pipeline) syrbTrend(events []model.Event) model.TrendTable {
	columns := []string{SeriesSyRBGeneral, SeriesSyRBSectoral}
	if len(events) == 0 {
		return model.TrendTable{Columns: columns}
	}

	// Same-day multiplicity is resolved last-decision-wins, which depends on
	// the builder's chronological emission order; keep it date-ascending.
	ordered := make([]model.Event, len(events))
	copy(ordered, events)
	sortByDate(ordered)

	general := make([]diffusion.Observation, 0, len(ordered))
	sectoral := make([]diffusion.Observation, 0, len(ordered))
	for _, event := range ordered {
		observation := diffusion.Observation{
			Date:    event.EffectiveDate,
			Country: event.Country,
			Rate:    event.Rate,
		}
		if event.SyRBType == model.SyRBGeneral {
			general = append(general, observation)
		} else {
			sectoral = append(sectoral, observation)
		}
	}

	return diffusion.Merge(columns,
		diffusion.DailyCounts(general, p.run.Today),
		diffusion.DailyCounts(sectoral, p.run.Today),
	)
}

func (p *Pipeline) bbmTrend(records []model.MeasureRecord) model.TrendTable {
	if len(records) == 0 {
		return model.TrendTable{Columns: []string{SeriesBBM}}
	}
	changes := make([]diffusion.Change, 0, len(records))
	for _, record := range records {
		changes = append(changes, diffusion.Change{
			Date:    record.EffectiveDate,
			Country: record.Country,
			Delta:   1,
		})
		if !record.RevocationDate.IsZero() {
			changes = append(changes, diffusion.Change{
				Date:    record.RevocationDate,
				Country: record.Country,
				Delta:   -1,
			})
		}
	}
	points := diffusion.ActiveCountryCounts(changes, p.run.Today)
	return diffusion.Merge([]string{SeriesBBM}, points)
}

func sortByDate(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].EffectiveDate.Before(events[j].EffectiveDate)
	})
}
