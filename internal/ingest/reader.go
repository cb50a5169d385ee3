package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "pipeledger/internal/errors"
	"pipeledger/pkg/contracts/domain"
)

// Column names of a bulletin file.
const (
	ColEntity = "entity"
	ColCycle  = "cycle"
	ColDate   = "date"
	ColField  = "field"
	ColValue  = "value"
)

var requiredColumns = []string{ColEntity, ColDate, ColField, ColValue}

// Reader parses bulletin files.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a Reader.
func NewReader(logger *slog.Logger) *Reader {
	return &Reader{logger: logger.With(slog.String("component", "ingest"))}
}

// Read parses f into a bulletin. Rows whose cycle or date cannot be read are
// skipped with a warning; a file without the required columns is rejected.
func (r *Reader) Read(f File) (domain.Bulletin, error) {
	var (
		records [][]string
		err     error
	)
	switch f.Format {
	case FormatCSV:
		records, err = readCSVFile(f.Path)
	case FormatXLSX:
		records, err = readXLSX(f.Path)
	default:
		return domain.Bulletin{}, apperrors.NewValidationError("unsupported format "+f.Format, nil)
	}
	if err != nil {
		return domain.Bulletin{}, err
	}
	return r.toBulletin(f, records)
}

func readCSVFile(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewIOError("open bulletin", err)
	}
	defer file.Close()
	return ReadCSV(file)
}

// ReadCSV reads all records of a CSV bulletin. A UTF-8 BOM is tolerated.
func ReadCSV(rd io.Reader) ([][]string, error) {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, apperrors.NewValidationError("unreadable CSV bulletin", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

// readXLSX reads the first sheet that has rows.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewIOError("open workbook", err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, apperrors.NewValidationError("unreadable sheet "+name, err)
		}
		if len(rows) > 0 {
			return rows, nil
		}
	}
	return nil, apperrors.NewValidationError("workbook has no rows", nil)
}

func (r *Reader) toBulletin(f File, records [][]string) (domain.Bulletin, error) {
	b := domain.Bulletin{ID: f.ID(), Source: f.Source, Published: f.Published}
	if len(records) == 0 {
		return b, apperrors.NewValidationError("bulletin "+f.Name+" is empty", nil)
	}

	idx := make(map[string]int)
	for i, h := range records[0] {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return b, apperrors.NewValidationError(fmt.Sprintf("bulletin %s has no %q column", f.Name, c), nil)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	for n, row := range records[1:] {
		line := n + 2
		entity := cell(row, ColEntity)
		if entity == "" {
			continue // blank line
		}
		o := domain.Observation{
			EntityKey:       entity,
			Field:           cell(row, ColField),
			Value:           cell(row, ColValue),
			SourceTimestamp: f.Published,
		}

		if c := cell(row, ColCycle); c != "" {
			cycle, err := strconv.Atoi(c)
			if err != nil || cycle < domain.MinCycle || cycle > domain.MaxCycle {
				r.skip(f, line, "cycle", c)
				continue
			}
			o.Cycle = domain.CyclePtr(cycle)
		}

		date := cell(row, ColDate)
		if strings.Contains(date, "/") {
			o.MonthDay = date
		} else if d, err := domain.ParseDate(date); err == nil {
			o.Date = d
		} else {
			r.skip(f, line, "date", date)
			continue
		}

		if o.Field == "" {
			r.skip(f, line, "field", "")
			continue
		}
		b.Observations = append(b.Observations, o)
	}
	return b, nil
}

func (r *Reader) skip(f File, line int, column, value string) {
	r.logger.Warn("bulletin row skipped",
		slog.String("file", f.Name),
		slog.Int("line", line),
		slog.String("column", column),
		slog.String("value", value))
}
