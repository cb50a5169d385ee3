package exporter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipeledger/internal/ledger"
	"pipeledger/pkg/contracts/domain"
)

func TestCSVWriter_WriteLedger(t *testing.T) {
	w, dir := setupTestEnv(t)
	l := ledger.New("Route 1", domain.Schema{
		Kind:    domain.TableCycle,
		Columns: []domain.Column{{Name: "7", Format: domain.FormatMonthDay}, {Name: "8", Format: domain.FormatMonthDay}},
	})
	_, err := l.Insert(domain.MustParseDate("2025-01-03"), map[string]string{"8": "1/14"}, false)
	require.NoError(t, err)
	_, err = l.Insert(domain.MustParseDate("2025-01-02"), map[string]string{"7": "1/9"}, true)
	require.NoError(t, err)

	name := LedgerFileName(l.Entity())
	assert.Equal(t, "route_1.csv", name)
	require.NoError(t, w.WriteLedger(name, l))

	assert.Equal(t, [][]string{
		{"Date", "7", "8", "Synthetic"},
		{"2025-01-02", "1/9", "", "true"},
		{"2025-01-03", "", "1/14", "false"},
	}, readCSV(t, filepath.Join(dir, name)))
}
