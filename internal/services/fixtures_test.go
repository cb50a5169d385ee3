package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pipeledger/internal/freshness"
	"pipeledger/internal/infrastructure"
	"pipeledger/internal/ledger"
	"pipeledger/pkg/contracts/domain"
)

type row struct {
	date      string
	values    map[string]string
	synthetic bool
}

func seed(t *testing.T, store *ledger.Store, entity string, schema domain.Schema, rows ...row) {
	t.Helper()
	require.NoError(t, store.Init(entity, schema))
	require.NoError(t, store.Update(entity, func(l *ledger.Ledger) error {
		for _, r := range rows {
			if _, err := l.Insert(domain.MustParseDate(r.date), r.values, r.synthetic); err != nil {
				return err
			}
		}
		return nil
	}))
}

func newFixture(t *testing.T) (*ledger.Store, *freshness.MemoryStore) {
	t.Helper()
	store := ledger.NewStore(t.TempDir(), infrastructure.DiscardLogger())

	seed(t, store, "ulsd", domain.InventorySchema(),
		row{date: "2024-01-04", values: map[string]string{"Close": "100"}},
		row{date: "2025-01-02", values: map[string]string{"Close": "1,200.50"}},
		row{date: "2025-01-03", values: map[string]string{"Close": "1,200.50"}, synthetic: true},
		row{date: "2025-01-09", values: map[string]string{"Close": "1,300"}},
	)
	seed(t, store, "rbob", domain.InventorySchema(),
		row{date: "2024-01-04", values: map[string]string{"Close": "90"}},
		row{date: "2025-01-02", values: map[string]string{"Close": "1,000"}},
		row{date: "2025-01-03", values: map[string]string{"Close": "1,010"}},
	)
	seed(t, store, "route-1", domain.CycleSchema(),
		row{date: "2025-01-02", values: map[string]string{"7": "1/9", "8": "1/14"}},
	)
	seed(t, store, "route-2", domain.CycleSchema(),
		row{date: "2025-01-02", values: map[string]string{"7": "1/15", "8": "1/13", "9": "1/20"}},
	)
	return store, freshness.NewMemoryStore()
}
