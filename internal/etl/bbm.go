package etl

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"policyhub/internal/model"
	"policyhub/internal/schema"
	"policyhub/internal/snapshot"
	"policyhub/internal/tabular"
)

// processBBM canonicalizes the borrower-based measures sheet. BBM rows carry
// no rate; activity is a direct status question resolved against the run date.
func (p *Pipeline) processBBM(workbook *tabular.Workbook) ([]model.MeasureRecord, error) {
	dialect := schema.BBM()
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
			continue
		}

		record := model.MeasureRecord{
			Instrument:     model.InstrumentBBM,
			Country:        country,
			ISO2:           p.resolver.ISO2(country),
			EffectiveDate:  effective,
			RevocationDate: parseDate(table.Get(i, schema.FieldRevocationDate)),
			StatusText:     table.Get(i, schema.FieldStatus),
			Description:    table.Get(i, schema.FieldDescription),
			MeasureType:    table.Get(i, schema.FieldMeasureType),
		}
		record.ActiveStatus = snapshot.CheckActiveBBM(record, p.run.Today)
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
