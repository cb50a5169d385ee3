package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipeledger/internal/freshness"
	"pipeledger/internal/infrastructure"
	"pipeledger/internal/ledger"
	"pipeledger/internal/merger"
	"pipeledger/pkg/contracts/domain"
)

func TestRunner_CatchUp(t *testing.T) {
	ctx := context.Background()
	logger := infrastructure.DiscardLogger()
	inbox := t.TempDir()

	store := ledger.NewStore(t.TempDir(), logger)
	require.NoError(t, store.Init("route-1", domain.CycleSchema()))
	fresh := freshness.NewMemoryStore()
	m := merger.New(store, fresh, merger.WithLogger(logger))
	runner := NewRunner(NewDiscovery(inbox, fresh), NewReader(logger), m, logger)

	// newer bulletin arrives first on disk; catch-up still applies in publish order
	touch(t, inbox, "colonial_20250102T120000.csv", "entity,cycle,date,field,value\nroute-1,7,2025-01-02,7,1/10\n")
	touch(t, inbox, "colonial_20250102T080000.csv", "entity,cycle,date,field,value\nroute-1,7,2025-01-02,7,1/9\n")
	touch(t, inbox, "colonial_20250102T090000.csv", "entity,date\n")

	res, err := runner.CatchUp(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Bulletins)
	assert.Equal(t, 2, res.CellsChanged)

	l, err := store.Load("route-1")
	require.NoError(t, err)
	v, _ := l.Cell(domain.MustParseDate("2025-01-02"), "7")
	assert.Equal(t, "1/10", v)

	res, err = runner.CatchUp(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Bulletins, "second run finds nothing new")
}

func TestRunner_StopsOnMergeError(t *testing.T) {
	ctx := context.Background()
	logger := infrastructure.DiscardLogger()
	inbox := t.TempDir()

	store := ledger.NewStore(t.TempDir(), logger)
	fresh := freshness.NewMemoryStore()
	runner := NewRunner(NewDiscovery(inbox, fresh), NewReader(logger), merger.New(store, fresh, merger.WithLogger(logger)), logger)

	touch(t, inbox, "colonial_20250102T080000.csv", "entity,cycle,date,field,value\nunknown,1,2025-01-02,1,1/9\n")
	_, err := runner.CatchUp(ctx)
	require.Error(t, err)

	_, found, _ := fresh.Watermark(ctx, "colonial")
	assert.False(t, found)
}
