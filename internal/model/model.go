package model

import "time"

type Instrument string

const (
	InstrumentCCyB         Instrument = "ccyb"
	InstrumentSyRBGeneral  Instrument = "syrb-general"
	InstrumentSyRBSectoral Instrument = "syrb-sectoral"
	InstrumentBBM          Instrument = "bbm"
)

type SyRBType string

const (
	SyRBGeneral  SyRBType = "General"
	SyRBSectoral SyRBType = "Sectoral"
)

// ExposureClass tags the economic scope of a measure.
type ExposureClass string

const (
	ExposureGeneral ExposureClass = "General"
	ExposureRRE     ExposureClass = "Residential Real Estate (RRE)"
	ExposureCRE     ExposureClass = "Commercial Real Estate (CRE)"
	ExposureMixed   ExposureClass = "Real Estate (CRE & RRE)"
	ExposureOther   ExposureClass = "Other"
)

type ActiveStatus string

const (
	StatusActive   ActiveStatus = "Active"
	StatusInactive ActiveStatus = "Inactive"
)

// StatusRevoked is the status text carried by synthetic revocation events.
const StatusRevoked = "Revoked"

// MeasureRecord is one canonicalized source row. Optional dates are the zero
// time.Time; a record without a parseable EffectiveDate is dropped before any
// date-dependent processing.
type MeasureRecord struct {
	Instrument     Instrument
	Country        string
	ISO2           string
	ISO3           string
	EffectiveDate  time.Time
	DecisionDate   time.Time
	RevocationDate time.Time
	StatusText     string
	Description    string
	Reference      string
	ExposureText   string
	Exposure       ExposureClass
	SyRBType       SyRBType
	MeasureType    string
	Rate           float64
	RateText       string
	Justification  string
	CreditGap      float64
	ActiveStatus   ActiveStatus
}

// Event is a timeline-resolution unit derived from a MeasureRecord: either the
// record itself (activation) or a synthesized revocation at the record's stated
// revocation date. Events are never mutated after the builder returns them.
type Event struct {
	MeasureRecord
	// Synthetic marks revocation events that have no source row of their own.
	Synthetic bool
}

// TrendPoint is one day of a diffusion series: how many countries had an
// active measure of the series' class on Date.
type TrendPoint struct {
	Date  time.Time
	Count int
}

// TrendTable is a dense daily calendar with one count column per series.
// Rows are contiguous; Counts is indexed like Columns.
type TrendTable struct {
	Columns []string
	Rows    []TrendRow
}

type TrendRow struct {
	Date   time.Time
	Counts []int
}

// RunInfo identifies one ETL run. Today is the shared "now" reference captured
// once at the start of the run and reused by every component.
type RunInfo struct {
	ID         string
	Today      time.Time
	IngestedAt time.Time
}

// Day truncates t to midnight UTC. All calendar arithmetic in the engine
// operates on day-resolution UTC timestamps.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
