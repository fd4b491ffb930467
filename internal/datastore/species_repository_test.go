package datastore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildwatch/sightings/internal/errors"
	"github.com/wildwatch/sightings/internal/observability/metrics"
)

func TestSpeciesRepository_GetByID(t *testing.T) {
	t.Parallel()

	store, recorder := setupTestStore(t)
	created := insertSpecies(t, store, "mallard", "redhead")

	sp, err := store.Species().GetByID(t.Context(), created[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "redhead", sp.Name)

	_, err = store.Species().GetByID(t.Context(), 9999)
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 1, recorder.GetOperationCount(metrics.OpSpeciesGet, metrics.StatusSuccess))
	assert.Equal(t, 1, recorder.GetErrorCount(metrics.OpSpeciesGet, "not_found"))
}

func TestSpeciesRepository_GetByName(t *testing.T) {
	t.Parallel()

	store, _ := setupTestStore(t)
	insertSpecies(t, store, "mallard", "lesser scaup")

	tests := []struct {
		name    string
		lookup  string
		want    string
		wantErr error
	}{
		{name: "exact match", lookup: "lesser scaup", want: "lesser scaup"},
		{name: "case sensitive", lookup: "Mallard", wantErr: ErrNotFound},
		{name: "no partial match", lookup: "lesser", wantErr: ErrNotFound},
		{name: "empty name", lookup: "", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp, err := store.Species().GetByName(t.Context(), tt.lookup)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, sp)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, sp.Name)
		})
	}
}

func TestSpeciesRepository_UniqueName(t *testing.T) {
	t.Parallel()

	store, _ := setupTestStore(t)
	insertSpecies(t, store, "gadwall")

	err := store.DB.Exec("INSERT INTO species (name) VALUES (?)", "gadwall").Error
	assert.Error(t, err, "duplicate species names must be rejected")
}

func TestSpeciesRepository_List(t *testing.T) {
	t.Parallel()

	store, _ := setupTestStore(t)

	list, err := store.Species().List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, list)

	insertSpecies(t, store, "mallard", "redhead", "gadwall")

	list, err = store.Species().List(t.Context())
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID, "species must be ordered by id")
	}
	assert.Equal(t, "mallard", list[0].Name)
}

func TestSpeciesRepository_CanceledContext(t *testing.T) {
	t.Parallel()

	store, _ := setupTestStore(t)
	insertSpecies(t, store, "mallard")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := store.Species().List(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryDatabase))
}
