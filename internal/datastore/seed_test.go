package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildwatch/sightings/internal/geo"
)

var geoCenter = geo.Point{Latitude: 61.497405, Longitude: 23.763776}

func TestSeed_SpeciesIdempotent(t *testing.T) {
	t.Parallel()

	store, _ := setupTestStore(t)

	res, err := store.Seed(t.Context(), false)
	require.NoError(t, err)
	assert.Equal(t, len(SeedSpecies), res.Species)
	assert.Zero(t, res.Sightings)

	res, err = store.Seed(t.Context(), false)
	require.NoError(t, err)
	assert.Zero(t, res.Species, "existing species must not be inserted twice")

	list, err := store.Species().List(t.Context())
	require.NoError(t, err)
	require.Len(t, list, len(SeedSpecies))
	for i, sp := range list {
		assert.Equal(t, SeedSpecies[i], sp.Name)
	}
}

func TestSeed_SkipsSightingsWhenPresent(t *testing.T) {
	t.Parallel()

	store, _ := setupTestStore(t)
	sp := insertSpecies(t, store, "mallard")[0]
	_, err := store.Sightings().Create(t.Context(), &NewSighting{SpeciesID: sp.ID, SpeciesName: sp.Name, Count: 1})
	require.NoError(t, err)

	res, err := store.Seed(t.Context(), true)
	require.NoError(t, err)
	assert.Zero(t, res.Sightings)

	n, err := store.Sightings().Count(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSeedSightingsReferenceSeedSpecies(t *testing.T) {
	t.Parallel()

	known := make(map[string]bool, len(SeedSpecies))
	for _, name := range SeedSpecies {
		known[name] = true
	}

	located := 0
	for _, s := range seedSightings {
		assert.True(t, known[s.species], "unknown species %q", s.species)
		assert.GreaterOrEqual(t, s.count, int64(1))
		if s.location != nil {
			require.NoError(t, s.location.Validate())
			located++
		}
	}
	assert.Len(t, seedSightings, 8)
	assert.Equal(t, 4, located)
}
