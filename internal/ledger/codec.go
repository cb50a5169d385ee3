package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"pipeledger/internal/config"
	apperrors "pipeledger/internal/errors"
	"pipeledger/pkg/contracts/domain"
)

const dateColumn = "Date"

// header returns the fixed file header of a schema.
func header(schema domain.Schema) []string {
	h := make([]string, 0, len(schema.Columns)+2)
	h = append(h, dateColumn)
	h = append(h, schema.Names()...)
	return append(h, config.SyntheticColumn)
}

// InferSchema recognizes the two standard layouts from a file header. Any
// other header is read as a numeric inventory-style table.
func InferSchema(columns []string) domain.Schema {
	cycle := domain.CycleSchema()
	if slices.Equal(columns, cycle.Names()) {
		return cycle
	}
	inv := domain.InventorySchema()
	if slices.Equal(columns, inv.Names()) {
		return inv
	}
	cols := make([]domain.Column, len(columns))
	for i, name := range columns {
		cols[i] = domain.Column{Name: name, Format: domain.FormatNumber}
	}
	return domain.Schema{Kind: domain.TableInventory, Columns: cols}
}

// encode writes the complete table.
func encode(w io.Writer, l *Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header(l.schema)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	names := l.schema.Names()
	record := make([]string, len(names)+2)
	for i, row := range l.rows {
		record[0] = row.Date.String()
		for j, name := range names {
			record[j+1] = row.Values[name]
		}
		record[len(record)-1] = strconv.FormatBool(row.Synthetic)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// decode reads a table. When schema is nil it is inferred from the header.
// Files written before the synthetic flag existed have no trailing column.
func decode(r io.Reader, entity string, schema *domain.Schema) (*Ledger, error) {
	cr := csv.NewReader(r)
	head, err := cr.Read()
	if err == io.EOF {
		return nil, corrupt(entity, "empty file", nil)
	}
	if err != nil {
		return nil, corrupt(entity, "unreadable header", err)
	}
	if len(head) == 0 || head[0] != dateColumn {
		return nil, corrupt(entity, "header must start with "+dateColumn, nil)
	}

	columns := head[1:]
	hasSynthetic := len(columns) > 0 && columns[len(columns)-1] == config.SyntheticColumn
	if hasSynthetic {
		columns = columns[:len(columns)-1]
	}

	var s domain.Schema
	if schema != nil {
		s = *schema
		if !slices.Equal(columns, s.Names()) {
			return nil, corrupt(entity, "header does not match schema", nil)
		}
	} else {
		s = InferSchema(columns)
	}

	l := New(entity, s)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, corrupt(entity, fmt.Sprintf("line %d", line), err)
		}

		d, err := domain.ParseDate(record[0])
		if err != nil {
			return nil, corrupt(entity, fmt.Sprintf("line %d", line), err)
		}
		values := make(map[string]string, len(columns))
		for j, name := range columns {
			values[name] = record[j+1]
		}
		synthetic := false
		if hasSynthetic {
			if v := record[len(record)-1]; v != "" {
				if synthetic, err = strconv.ParseBool(v); err != nil {
					return nil, corrupt(entity, fmt.Sprintf("line %d synthetic flag", line), err)
				}
			}
		}
		// Insert keeps the table sorted even if the file was edited by hand.
		if _, err := l.Insert(d, values, synthetic); err != nil {
			return nil, err
		}
	}

	l.dirty = false
	return l, nil
}

func corrupt(entity, msg string, cause error) error {
	return apperrors.NewIOError(fmt.Sprintf("ledger %s: %s", entity, msg), cause).
		WithContext("entity", entity)
}
