package domain

// TableKind distinguishes the two persisted table layouts.
type TableKind string

const (
	TableInventory TableKind = "inventory"
	TableCycle     TableKind = "cycle"
)

// ValueFormat is the format check applied to a cell before it is written.
type ValueFormat string

const (
	FormatNumber   ValueFormat = "number"
	FormatMonthDay ValueFormat = "monthday"
	FormatDate     ValueFormat = "date"
	FormatText     ValueFormat = "text"
)

// Column is one value column of a ledger table. The leading Date column is implicit.
type Column struct {
	Name   string      `json:"name" yaml:"name" validate:"required"`
	Format ValueFormat `json:"format" yaml:"format" validate:"oneof=number monthday date text"`
}

// Schema is the fixed header of an entity table.
type Schema struct {
	Kind    TableKind `json:"kind" yaml:"kind" validate:"oneof=inventory cycle"`
	Columns []Column  `json:"columns" yaml:"columns" validate:"required,dive"`
}

// InventoryFields are the six numeric fields of an inventory snapshot table.
var InventoryFields = []string{"Open", "Receipts", "Deliveries", "Transfers", "Adjustments", "Close"}

// InventorySchema returns the date + six numeric fields layout.
func InventorySchema() Schema {
	cols := make([]Column, 0, len(InventoryFields))
	for _, f := range InventoryFields {
		cols = append(cols, Column{Name: f, Format: FormatNumber})
	}
	return Schema{Kind: TableInventory, Columns: cols}
}

// CycleSchema returns the fixed 1..72 cycle header. Cells hold the scheduled
// month/day for that cycle.
func CycleSchema() Schema {
	cols := make([]Column, 0, MaxCycle)
	for c := MinCycle; c <= MaxCycle; c++ {
		cols = append(cols, Column{Name: CycleColumn(c), Format: FormatMonthDay})
	}
	return Schema{Kind: TableCycle, Columns: cols}
}

// Column looks up a column by name.
func (s Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Names returns the column names in header order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// LedgerRow is one dated row of an entity table. Values holds raw cell text
// keyed by column name; column order comes from the table schema.
type LedgerRow struct {
	Date      Date              `json:"date"`
	Values    map[string]string `json:"values"`
	Synthetic bool              `json:"synthetic"`
}

// Clone returns a deep copy of the row.
func (r LedgerRow) Clone() LedgerRow {
	values := make(map[string]string, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	return LedgerRow{Date: r.Date, Values: values, Synthetic: r.Synthetic}
}
