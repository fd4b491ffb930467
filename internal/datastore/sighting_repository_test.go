package datastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildwatch/sightings/internal/observability/metrics"
)

// These cover the relational half of Create. Location writes and the
// geography queries need PostGIS and live in the integration tests.

func TestSightingRepository_CreateWithoutLocation(t *testing.T) {
	t.Parallel()

	store, recorder := setupTestStore(t)
	sp := insertSpecies(t, store, "gadwall")[0]

	desc := "All your ducks are belong to us"
	ts := time.Date(2016, 10, 1, 1, 1, 0, 0, time.UTC)

	rec, err := store.Sightings().Create(t.Context(), &NewSighting{
		SpeciesID:   sp.ID,
		SpeciesName: sp.Name,
		Count:       3,
		Description: &desc,
		DateTime:    &ts,
	})
	require.NoError(t, err)

	assert.NotZero(t, rec.ID)
	assert.Equal(t, sp.ID, rec.SpeciesID)
	assert.Equal(t, "gadwall", rec.Species)
	assert.Equal(t, int64(3), rec.Count)
	require.NotNil(t, rec.Description)
	assert.Equal(t, desc, *rec.Description)
	assert.True(t, ts.Equal(rec.DateTime))
	assert.Nil(t, rec.Latitude)
	assert.Nil(t, rec.Longitude)

	n, err := store.Sightings().Count(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.Equal(t, 1, recorder.GetOperationCount(metrics.OpSightingCreate, metrics.StatusSuccess))
	assert.Len(t, recorder.GetDurations(metrics.OpSightingCreate), 1)
}

func TestSightingRepository_CreateRejectsNonPositiveCount(t *testing.T) {
	t.Parallel()

	store, recorder := setupTestStore(t)
	sp := insertSpecies(t, store, "redhead")[0]

	_, err := store.Sightings().Create(t.Context(), &NewSighting{SpeciesID: sp.ID, SpeciesName: sp.Name, Count: 0})
	require.Error(t, err)

	n, err := store.Sightings().Count(t.Context())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, recorder.GetOperationCount(metrics.OpSightingCreate, metrics.StatusError))
}

func TestSightingRepository_CreateNil(t *testing.T) {
	t.Parallel()

	store, _ := setupTestStore(t)
	_, err := store.Sightings().Create(t.Context(), nil)
	assert.Error(t, err)
}

func TestSightingRepository_WithinRadiusValidatesDistance(t *testing.T) {
	t.Parallel()

	store, recorder := setupTestStore(t)

	for _, km := range []float64{0, -5} {
		_, err := store.Sightings().WithinRadius(t.Context(), geoCenter, km)
		require.Error(t, err)
	}
	assert.Equal(t, 2, recorder.GetOperationCount(metrics.OpSightingRadius, metrics.StatusError))
}
