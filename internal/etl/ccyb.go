package etl

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"policyhub/internal/model"
	"policyhub/internal/rate"
	"policyhub/internal/schema"
	"policyhub/internal/tabular"
)

// processCCyB canonicalizes the countercyclical buffer table, published as
// the first sheet of its own workbook.
func (p *Pipeline) processCCyB(workbook *tabular.Workbook) ([]model.MeasureRecord, error) {
	sheet, err := workbook.Select()
	if err != nil {
		return nil, err
	}
	table, err := schema.Map(sheet, schema.CCyB())
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
			continue
		}

		record := model.MeasureRecord{
			Instrument:    model.InstrumentCCyB,
			Country:       country,
			ISO2:          p.resolver.ISO2(country),
			ISO3:          p.resolver.ISO3(country),
			EffectiveDate: effective,
			DecisionDate:  parseDate(table.Get(i, schema.FieldDecisionDate)),
			StatusText:    table.Get(i, schema.FieldStatus),
			Justification: table.Get(i, schema.FieldJustification),
			Rate:          rate.FromCell(table.Get(i, schema.FieldRateCell)),
			CreditGap:     parseFloat(table.Get(i, schema.FieldCreditGap)),
		}
		record.RateText = rate.Text(record.Rate)
		records = append(records, record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Country != records[j].Country {
			return records[i].Country < records[j].Country
		}
		return records[i].EffectiveDate.After(records[j].EffectiveDate)
	})
	return records, nil
}
