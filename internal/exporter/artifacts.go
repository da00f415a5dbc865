package exporter

import (
	"fipulse/internal/dataset"
	"fipulse/internal/forecast"
	"fipulse/internal/impact"
)

// ExportMatrix writes the association matrix heatmap CSV.
func (w *CSVWriter) ExportMatrix(name string, m *impact.Matrix) error {
	headers, rows := m.CSVRows()
	return w.WriteSimpleCSV(name, headers, rows)
}

// ExportAnnualSeries writes one indicator's annual series.
func (w *CSVWriter) ExportAnnualSeries(name, indicator string, series []dataset.YearValue) error {
	rows := make([][]string, 0, len(series))
	for _, p := range series {
		rows = append(rows, []string{indicator, FormatYear(p.Year), FormatValue(p.Value)})
	}
	return w.WriteSimpleCSV(name, []string{"indicator_code", "year", "value"}, rows)
}

// ExportForecast writes a forecast result with one row per projected year.
func (w *CSVWriter) ExportForecast(name string, result *forecast.Result) error {
	headers := []string{
		"indicator_code", "year", "trend", "event_effect", "forecast",
		"lower_bound", "upper_bound", "optimistic", "pessimistic",
	}
	rows := make([][]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		rows = append(rows, []string{
			result.Indicator,
			FormatYear(row.Year),
			FormatValue(row.Trend),
			FormatSigned(row.EventEffect),
			FormatValue(row.Forecast),
			FormatValue(row.Lower),
			FormatValue(row.Upper),
			FormatValue(row.ScenarioValues[forecast.ScenarioOptimistic]),
			FormatValue(row.ScenarioValues[forecast.ScenarioPessimistic]),
		})
	}
	return w.WriteSimpleCSV(name, headers, rows)
}
