package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipeledger/internal/config"
	"pipeledger/internal/infrastructure"
	"pipeledger/pkg/contracts/domain"
)

func newTestApp(t *testing.T, mutate func(*config.Config)) *Application {
	t.Helper()
	cfg := config.Default()
	cfg.Telemetry.MetricExporter = "none"
	if mutate != nil {
		mutate(cfg)
	}
	paths := config.PathsUnder(t.TempDir(), cfg.Paths)

	a, err := New(cfg, infrastructure.DiscardLogger(), Options{Paths: paths, InMemoryFreshness: true})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(context.Background()) })
	return a
}

func TestNew_CreatesDirectories(t *testing.T) {
	a := newTestApp(t, nil)
	for _, dir := range []string{a.Paths.LedgerDir, a.Paths.InboxDir, a.Paths.ExportDir} {
		assert.DirExists(t, dir)
	}
	assert.Empty(t, a.Holidays, "missing holidays file means no holidays")
}

func TestNew_LoadsHolidays(t *testing.T) {
	cfg := config.Default()
	cfg.Telemetry.MetricExporter = "none"
	cfg.Merge.HolidayCalendar = "colonial"
	paths := config.PathsUnder(t.TempDir(), cfg.Paths)
	require.NoError(t, os.MkdirAll(paths.DataDir, 0755))
	require.NoError(t, os.WriteFile(paths.HolidaysFile,
		[]byte("holidays: [2025-01-01]\ncalendars:\n  colonial: [2025-05-26]\n"), 0644))

	a, err := New(cfg, infrastructure.DiscardLogger(), Options{Paths: paths, InMemoryFreshness: true})
	require.NoError(t, err)
	defer a.Close(context.Background())

	assert.True(t, a.Holidays.IsHoliday(domain.MustParseDate("2025-01-01")))
	assert.True(t, a.Holidays.IsHoliday(domain.MustParseDate("2025-05-26")))
}

func TestNew_PersistentFreshness(t *testing.T) {
	cfg := config.Default()
	cfg.Telemetry.MetricExporter = "none"
	paths := config.PathsUnder(t.TempDir(), cfg.Paths)

	a, err := New(cfg, infrastructure.DiscardLogger(), Options{Paths: paths})
	require.NoError(t, err)
	assert.DirExists(t, paths.FreshnessDir)
	require.NoError(t, a.Close(context.Background()))
}

func TestApplication_CatchUpMergesInbox(t *testing.T) {
	a := newTestApp(t, nil)
	require.NoError(t, a.Ledgers.Init("ulsd", domain.InventorySchema()))

	bulletin := "entity,cycle,date,field,value\n" +
		"ulsd,,2025-01-02,Close,100\n" +
		"ulsd,,2025-01-06,Close,104\n"
	require.NoError(t, os.WriteFile(filepath.Join(a.Paths.InboxDir, "terminal_20250106T090000.csv"), []byte(bulletin), 0644))

	res, err := a.CatchUp(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Bulletins)

	l, err := a.Ledgers.Load("ulsd")
	require.NoError(t, err)
	// 2025-01-02 is a Thursday; Friday and Saturday are carried forward.
	assert.Equal(t, 4, l.Len())
	assert.Equal(t, 2, l.CountSynthetic())
}

func TestApplication_Router(t *testing.T) {
	a := newTestApp(t, nil)
	r, err := a.Router()
	require.NoError(t, err)
	assert.NotNil(t, r)
}
