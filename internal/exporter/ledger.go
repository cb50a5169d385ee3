package exporter

import (
	"log/slog"
	"strconv"

	"pipeledger/internal/config"
	"pipeledger/internal/ledger"
)

// ledgerHeader is the export header of a table: Date, the schema columns,
// then the synthetic flag.
func ledgerHeader(l *ledger.Ledger) []string {
	names := l.Schema().Names()
	head := make([]string, 0, len(names)+2)
	head = append(head, "Date")
	head = append(head, names...)
	return append(head, config.SyntheticColumn)
}

// WriteLedger streams one table to a CSV file, one row at a time, in the
// same layout as its workbook sheet.
func (w *CSVWriter) WriteLedger(filePath string, l *ledger.Ledger) (err error) {
	head := ledgerHeader(l)
	stream, err := w.CreateStreamWriter(filePath, head)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stream.Close(); err == nil {
			err = cerr
		}
	}()

	names := head[1 : len(head)-1]
	record := make([]string, len(head))
	for _, row := range l.Rows() {
		record[0] = row.Date.String()
		for i, n := range names {
			record[i+1] = row.Values[n]
		}
		record[len(record)-1] = strconv.FormatBool(row.Synthetic)
		if err := stream.WriteRecord(record); err != nil {
			return err
		}
	}

	w.logger.Info("Ledger exported",
		slog.String("entity", l.Entity()),
		slog.Int("rows", stream.Rows()))
	return nil
}

// LedgerFileName is the default CSV export name of an entity.
func LedgerFileName(entity string) string {
	return config.SafeEntityName(entity) + ".csv"
}
