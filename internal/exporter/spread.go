package exporter

import (
	"strconv"

	"pipeledger/internal/spread"
)

// WriteSpread writes a keyed value series, already in chronological order,
// as a two-column CSV.
func (w *CSVWriter) WriteSpread(filePath, valueHeader string, points []spread.Point) error {
	records := make([][]string, len(points))
	for i, p := range points {
		records[i] = []string{p.Key, p.Value.String()}
	}
	return w.WriteSimpleCSV(filePath, []string{"Key", valueHeader}, records)
}

// WriteTransit writes whole-day transit differentials.
func (w *CSVWriter) WriteTransit(filePath string, points []spread.DayPoint) error {
	records := make([][]string, len(points))
	for i, p := range points {
		records[i] = []string{p.Key, strconv.Itoa(p.Days)}
	}
	return w.WriteSimpleCSV(filePath, []string{"Key", "Days"}, records)
}
