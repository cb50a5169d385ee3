package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"pipeledger/internal/config"
	apperrors "pipeledger/internal/errors"
	"pipeledger/internal/ledger"
)

// maxSheetName is the Excel limit on sheet name length.
const maxSheetName = 31

var sheetNameReplacer = strings.NewReplacer("?", "_", "*", "_", "[", "_", "]", "_", "'", "_")

// WorkbookExporter writes entity tables into an XLSX workbook.
type WorkbookExporter struct {
	dir    string
	logger *slog.Logger
}

// NewWorkbookExporter creates an exporter rooted at the export directory.
func NewWorkbookExporter(paths *config.Paths, logger *slog.Logger) *WorkbookExporter {
	return &WorkbookExporter{
		dir:    paths.ExportDir,
		logger: logger.With(slog.String("component", "exporter")),
	}
}

// ExportLedgers writes one sheet per table, in the order given. Cells hold the
// stored text unchanged; the last column carries the synthetic flag.
func (e *WorkbookExporter) ExportLedgers(filePath string, tables []*ledger.Ledger) error {
	if len(tables) == 0 {
		return apperrors.NewValidationError("no tables to export", nil)
	}
	fullPath := filePath
	if !filepath.IsAbs(fullPath) {
		fullPath = filepath.Join(e.dir, filePath)
	}

	wb := excelize.NewFile()
	defer wb.Close()

	used := make(map[string]bool)
	for i, l := range tables {
		name := sheetName(l.Entity(), used)
		if i == 0 {
			if err := wb.SetSheetName("Sheet1", name); err != nil {
				return apperrors.NewIOError("name sheet", err)
			}
		} else if _, err := wb.NewSheet(name); err != nil {
			return apperrors.NewIOError("create sheet "+name, err)
		}
		if err := writeSheet(wb, name, l); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return apperrors.NewIOError("create export directory", err)
	}
	if err := wb.SaveAs(fullPath); err != nil {
		return apperrors.NewIOError("save workbook", err)
	}

	e.logger.Info("Workbook exported",
		slog.String("path", fullPath),
		slog.Int("sheets", len(tables)))
	return nil
}

func writeSheet(wb *excelize.File, sheet string, l *ledger.Ledger) error {
	header := ledgerHeader(l)
	names := header[1 : len(header)-1]

	head := make([]interface{}, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := wb.SetSheetRow(sheet, "A1", &head); err != nil {
		return apperrors.NewIOError("write sheet header", err)
	}

	for i, row := range l.Rows() {
		values := make([]interface{}, 0, len(head))
		values = append(values, row.Date.String())
		for _, n := range names {
			values = append(values, row.Values[n])
		}
		values = append(values, strconv.FormatBool(row.Synthetic))

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.NewIOError("address sheet row", err)
		}
		if err := wb.SetSheetRow(sheet, cell, &values); err != nil {
			return apperrors.NewIOError(fmt.Sprintf("write sheet row %d", i+2), err)
		}
	}

	if err := wb.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return apperrors.NewIOError("freeze sheet header", err)
	}
	return nil
}

// sheetName derives a unique, valid sheet name from an entity key.
func sheetName(entity string, used map[string]bool) string {
	base := sheetNameReplacer.Replace(config.SafeEntityName(entity))
	if len(base) > maxSheetName {
		base = base[:maxSheetName]
	}
	name := base
	for n := 2; used[name]; n++ {
		suffix := "_" + strconv.Itoa(n)
		trimmed := base
		if len(trimmed)+len(suffix) > maxSheetName {
			trimmed = trimmed[:maxSheetName-len(suffix)]
		}
		name = trimmed + suffix
	}
	used[name] = true
	return name
}
