package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pipeledger/internal/errors"
	"pipeledger/internal/services"
	"pipeledger/pkg/contracts/domain"
)

// run executes the root command against dir and returns its stdout.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PIPELEDGER_TELEMETRY_METRIC_EXPORTER", "none")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--data-dir", dir, "--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSchemaFromFlags(t *testing.T) {
	s, err := schemaFromFlags("inventory", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.InventorySchema(), s)

	s, err = schemaFromFlags("CYCLE", nil)
	require.NoError(t, err)
	assert.Len(t, s.Columns, domain.MaxCycle)

	s, err = schemaFromFlags("inventory", []string{"Rate:number", "Note"})
	require.NoError(t, err)
	assert.Equal(t, []domain.Column{
		{Name: "Rate", Format: domain.FormatNumber},
		{Name: "Note", Format: domain.FormatText},
	}, s.Columns)

	_, err = schemaFromFlags("weekly", nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = schemaFromFlags("inventory", []string{":number"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestOptionalDate(t *testing.T) {
	d, err := optionalDate("from", "")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = optionalDate("from", "2025-1-2")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02", d.String())

	_, err = requiredDate("on", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = optionalDate("from", "tomorrow")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCLI_InitMergeAndQuery(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "init", "ulsd", "--kind", "inventory")
	require.NoError(t, err)
	assert.Contains(t, out, "initialized ulsd")

	inbox := filepath.Join(dir, "inbox")
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "colonial_20250102T080000.csv"),
		[]byte("Entity,Cycle,Date,Field,Value\nulsd,,2025-01-02,Close,100\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "colonial_20250106T080000.csv"),
		[]byte("Entity,Cycle,Date,Field,Value\nulsd,,2025-01-06,Close,104\n"), 0644))

	out, err = run(t, dir, "merge")
	require.NoError(t, err)
	var res struct {
		Bulletins     int `json:"bulletins"`
		CellsChanged  int `json:"cells_changed"`
		SyntheticRows int `json:"synthetic_rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 2, res.Bulletins)
	assert.Equal(t, 2, res.CellsChanged)
	assert.Equal(t, 2, res.SyntheticRows)

	out, err = run(t, dir, "entities")
	require.NoError(t, err)
	var summaries []services.EntitySummary
	require.NoError(t, json.Unmarshal([]byte(out), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "ulsd", summaries[0].Entity)
	assert.Equal(t, 4, summaries[0].Rows)
	assert.Equal(t, 2, summaries[0].Synthetic)

	_, err = run(t, dir, "export", "--format", "xlsx", "--out", "all.xlsx")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "exports", "all.xlsx"))

	out, err = run(t, dir, "export", "--format", "csv", "--out", "tables")
	require.NoError(t, err)
	assert.Contains(t, out, "exported ulsd")
	raw, err := os.ReadFile(filepath.Join(dir, "exports", "tables", "ulsd.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "2025-01-03,,,,,,100,true")

	_, err = run(t, dir, "spread", "difference", "--a", "ulsd", "--b", "ulsd",
		"--column", "Close", "--out", "self.csv")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "exports", "self.csv"))
}

func TestCLI_CalendarDeadline(t *testing.T) {
	out, err := run(t, t.TempDir(), "calendar", "deadline", "2025-01-21", "--lead", "3")
	require.NoError(t, err)

	var d services.Deadline
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, "2025-01-16", d.Deadline.String())
}

func TestCLI_ExportRejectsUnknownFormat(t *testing.T) {
	_, err := run(t, t.TempDir(), "export", "--format", "pdf")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCLI_UnknownEntity(t *testing.T) {
	_, err := run(t, t.TempDir(), "export", "--format", "xlsx", "nope")
	assert.ErrorIs(t, err, apperrors.ErrMissingEntity)
}
