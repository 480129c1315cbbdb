package etl

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"policyhub/internal/exposure"
	"policyhub/internal/model"
	"policyhub/internal/rate"
	"policyhub/internal/schema"
	"policyhub/internal/tabular"
	"policyhub/internal/timeline"
)

// processSyRB canonicalizes the systemic risk buffer sheet and expands it
// into the event timeline that doubles as the SyRB full-history table.
func (p *Pipeline) processSyRB(workbook *tabular.Workbook) ([]model.Event, error) {
	dialect := schema.SyRB()
	sheet, err := workbook.Select(dialect.SheetHints...)
	if err != nil {
		return nil, err
	}
	table, err := schema.Map(sheet, dialect)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", sheet.Name, err)
	}
	p.log.Debug("mapped sheet",
		zap.String("sheet", sheet.Name),
		zap.Int("header_row", table.HeaderRow()),
		zap.Int("rows", table.NumRows()),
	)

	records := make([]model.MeasureRecord, 0, table.NumRows())
	for i := 0; i < table.NumRows(); i++ {
		country := table.Get(i, schema.FieldCountry)
		if country == "" {
			continue
		}
		effective := parseDate(table.Get(i, schema.FieldEffectiveDate))
		if effective.IsZero() {
			p.log.Debug("dropping row without parseable effective date",
				zap.String("sheet", sheet.Name), zap.String("country", country))
			continue
		}

		description := table.Get(i, schema.FieldDescription)
		exposureText := table.Get(i, schema.FieldExposureType)
		record := model.MeasureRecord{
			Country:        country,
			ISO2:           p.resolver.ISO2(country),
			EffectiveDate:  effective,
			RevocationDate: parseDate(table.Get(i, schema.FieldRevocationDate)),
			StatusText:     table.Get(i, schema.FieldStatus),
			Description:    description,
			Reference:      table.Get(i, schema.FieldReference),
			ExposureText:   exposureText,
		}

		if table.Has(schema.FieldRateCell) {
			record.Rate = rate.ForRecord(table.Get(i, schema.FieldRateCell), description)
		} else {
			record.Rate = rate.FromText(description)
		}

		record.Exposure = exposure.Classify(exposureText, description)
		record.SyRBType = exposure.SyRBType(record.Exposure)
		if record.SyRBType == model.SyRBGeneral {
			record.Instrument = model.InstrumentSyRBGeneral
		} else {
			record.Instrument = model.InstrumentSyRBSectoral
		}
		records = append(records, record)
	}

	events := p.builder.Build(records, timeline.ByCountrySyRBType)
	for i := range events {
		events[i].RateText = rate.Text(events[i].Rate)
	}

	// Full-history ordering: country ascending, date descending.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Country != events[j].Country {
			return events[i].Country < events[j].Country
		}
		return events[i].EffectiveDate.After(events[j].EffectiveDate)
	})
	return events, nil
}
