package sighting

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wildwatch/sightings/internal/datastore"
	"github.com/wildwatch/sightings/internal/errors"
	"github.com/wildwatch/sightings/internal/geo"
	"github.com/wildwatch/sightings/internal/legacy"
	"github.com/wildwatch/sightings/internal/observability/metrics"
	"github.com/wildwatch/sightings/internal/species"
)

// mockResolver implements SpeciesResolver for testing.
type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(ctx context.Context, ref species.Reference) (*species.Species, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*species.Species), args.Error(1)
}

func (m *mockResolver) List(ctx context.Context) ([]species.Species, error) {
	args := m.Called(ctx)
	return args.Get(0).([]species.Species), args.Error(1)
}

// mockStore implements datastore.SightingRepository for testing.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, in *datastore.NewSighting) (*datastore.SightingRecord, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*datastore.SightingRecord), args.Error(1)
}

func (m *mockStore) List(ctx context.Context) ([]datastore.SightingRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]datastore.SightingRecord), args.Error(1)
}

func (m *mockStore) WithinRadius(ctx context.Context, center geo.Point, km float64) ([]datastore.SightingRecord, error) {
	args := m.Called(ctx, center, km)
	return args.Get(0).([]datastore.SightingRecord), args.Error(1)
}

func (m *mockStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// mockMirror implements Mirror for testing.
type mockMirror struct {
	mock.Mock
}

func (m *mockMirror) CreateSighting(ctx context.Context, rec *legacy.Record) (json.RawMessage, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func ptr[T any](v T) *T { return &v }

var (
	mallard = &species.Species{ID: 1, Name: "mallard"}
	gadwall = &species.Species{ID: 3, Name: "gadwall"}
	now     = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

type fixture struct {
	resolver *mockResolver
	store    *mockStore
	mirror   *mockMirror
	registry *prometheus.Registry
	service  *Service
}

func newFixture(t *testing.T, withMirror bool) *fixture {
	t.Helper()

	reg := prometheus.NewRegistry()
	sm, err := metrics.NewSightingMetrics(reg)
	require.NoError(t, err)

	f := &fixture{
		resolver: new(mockResolver),
		store:    new(mockStore),
		mirror:   new(mockMirror),
		registry: reg,
	}
	var mirror Mirror
	if withMirror {
		mirror = f.mirror
	}
	f.service = NewService(f.resolver, f.store, mirror, sm, nil)
	return f
}

func TestCreate_WithLocationAndMirror(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	f.resolver.On("Resolve", mock.Anything, species.Reference{Name: ptr("mallard")}).Return(mallard, nil)

	var stored *datastore.NewSighting
	f.store.On("Create", mock.Anything, mock.AnythingOfType("*datastore.NewSighting")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*datastore.NewSighting) }).
		Return(&datastore.SightingRecord{
			ID: 42, SpeciesID: 1, Species: "mallard", Count: 2, DateTime: now,
			Latitude: ptr(42.1337), Longitude: ptr(-3.141592),
		}, nil)
	f.mirror.On("CreateSighting", mock.Anything, mock.MatchedBy(func(rec *legacy.Record) bool {
		return rec.Species == "mallard" && rec.Count == 2
	})).Return(json.RawMessage(`{"id":"legacy-1"}`), nil)

	res, err := f.service.Create(t.Context(), &CreateInput{
		Species:   ptr("mallard"),
		Count:     2,
		Latitude:  ptr(json.Number("42.1337")),
		Longitude: ptr(json.Number("-3.141592")),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), res.ID)
	assert.Equal(t, "mallard", res.Species)
	assert.Equal(t, int64(2), res.Count)
	require.NotNil(t, res.Latitude)
	assert.InDelta(t, 42.1337, *res.Latitude, 1e-12)
	assert.InDelta(t, -3.141592, *res.Longitude, 1e-12)
	assert.Equal(t, MirrorOK, res.LegacyMirrorResult.Status)
	assert.JSONEq(t, `{"id":"legacy-1"}`, string(res.LegacyMirrorResult.Record))

	require.NotNil(t, stored)
	assert.Equal(t, int64(1), stored.SpeciesID)
	assert.Equal(t, &geo.Point{Latitude: 42.1337, Longitude: -3.141592}, stored.Location)

	require.NoError(t, testutil.GatherAndCompare(f.registry, strings.NewReader(`
# HELP sightings_created_total Total number of sightings persisted
# TYPE sightings_created_total counter
sightings_created_total 1
# HELP sightings_legacy_mirror_total Total number of legacy mirror attempts by outcome
# TYPE sightings_legacy_mirror_total counter
sightings_legacy_mirror_total{outcome="ok"} 1
`), "sightings_created_total", "sightings_legacy_mirror_total"))
	f.resolver.AssertExpectations(t)
	f.store.AssertExpectations(t)
	f.mirror.AssertExpectations(t)
}

func TestCreate_WithoutLocation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	f.resolver.On("Resolve", mock.Anything, species.Reference{ID: ptr(int64(3))}).Return(gadwall, nil)
	f.store.On("Create", mock.Anything, mock.MatchedBy(func(in *datastore.NewSighting) bool {
		return in.Location == nil && in.DateTime == nil && in.Count == 10
	})).Return(&datastore.SightingRecord{ID: 7, SpeciesID: 3, Species: "gadwall", Count: 10, DateTime: now}, nil)

	res, err := f.service.Create(t.Context(), &CreateInput{SpeciesID: ptr(int64(3)), Count: 10})
	require.NoError(t, err)

	assert.Nil(t, res.Latitude)
	assert.Nil(t, res.Longitude)
	assert.Equal(t, now, res.DateTime)
	assert.Equal(t, MirrorDisabled, res.LegacyMirrorResult.Status)

	body, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 7, "species": "gadwall", "speciesId": 3, "count": 10,
		"description": null, "dateTime": "2024-05-01T12:00:00Z",
		"latitude": null, "longitude": null,
		"legacyMirrorResult": {"status": "disabled"}
	}`, string(body))
}

func TestCreate_LoneCoordinateIsIgnored(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	f.resolver.On("Resolve", mock.Anything, mock.Anything).Return(mallard, nil)
	f.store.On("Create", mock.Anything, mock.MatchedBy(func(in *datastore.NewSighting) bool {
		return in.Location == nil
	})).Return(&datastore.SightingRecord{ID: 1, Species: "mallard", Count: 1, DateTime: now}, nil)

	_, err := f.service.Create(t.Context(), &CreateInput{Species: ptr("mallard"), Count: 1, Latitude: ptr(json.Number("500"))})
	require.NoError(t, err)
	f.store.AssertExpectations(t)
}

func TestCreate_MirrorFailureIsData(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	f.resolver.On("Resolve", mock.Anything, mock.Anything).Return(mallard, nil)
	f.store.On("Create", mock.Anything, mock.Anything).
		Return(&datastore.SightingRecord{ID: 5, SpeciesID: 1, Species: "mallard", Count: 1, DateTime: now}, nil)
	f.mirror.On("CreateSighting", mock.Anything, mock.Anything).Return(nil, &legacy.MirrorError{
		Op:         "create_sighting",
		StatusCode: http.StatusBadRequest,
		Body:       map[string]any{"error": "bad species"},
	})

	res, err := f.service.Create(t.Context(), &CreateInput{Species: ptr("mallard"), Count: 1})
	require.NoError(t, err, "mirror failures must not fail the creation")

	assert.Equal(t, int64(5), res.ID)
	mr := res.LegacyMirrorResult
	assert.Equal(t, MirrorError, mr.Status)
	assert.Nil(t, mr.Record)
	require.NotNil(t, mr.Error)
	assert.Equal(t, http.StatusBadRequest, mr.Error.StatusCode)
	assert.Equal(t, map[string]any{"error": "bad species"}, mr.Error.Data)
	assert.Contains(t, mr.Error.Message, "400")
}

func TestCreate_SpeciesNotFoundWritesNothing(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	notFound := errors.New(species.ErrSpeciesNotFound).Category(errors.CategoryNotFound).
		Context("lookup", species.LookupName).Context("value", "bogus species").Build()
	f.resolver.On("Resolve", mock.Anything, mock.Anything).Return(nil, notFound)

	_, err := f.service.Create(t.Context(), &CreateInput{Species: ptr("bogus species"), Count: 1})
	require.ErrorIs(t, err, species.ErrSpeciesNotFound)
	assert.Equal(t, `species "bogus species" not found`, species.NotFoundMessage(err))

	f.store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.mirror.AssertNotCalled(t, "CreateSighting", mock.Anything, mock.Anything)

	require.NoError(t, testutil.GatherAndCompare(f.registry, strings.NewReader(`
# HELP sightings_create_failures_total Total number of rejected or failed sighting creations
# TYPE sightings_create_failures_total counter
sightings_create_failures_total{reason="species_not_found"} 1
`), "sightings_create_failures_total"))
}

func TestCreate_InvalidCoordinatesWriteNothing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		lat     string
		lon     string
		wantErr error
	}{
		{"longitude 180", "10", "180", geo.ErrCoordinateOutOfRange},
		{"latitude beyond pole", "90.5", "0", geo.ErrCoordinateOutOfRange},
		{"not a number", "north", "0", geo.ErrInvalidCoordinateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, true)
			f.resolver.On("Resolve", mock.Anything, mock.Anything).Return(mallard, nil)

			_, err := f.service.Create(t.Context(), &CreateInput{
				Species:   ptr("mallard"),
				Count:     1,
				Latitude:  ptr(json.Number(tt.lat)),
				Longitude: ptr(json.Number(tt.lon)),
			})
			require.ErrorIs(t, err, tt.wantErr)
			f.store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreate_StoreFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		storeErr error
		check    func(t *testing.T, err error)
	}{
		{
			name:     "location write failed",
			storeErr: datastore.ErrLocationWriteFailed,
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, datastore.ErrLocationWriteFailed)
			},
		},
		{
			name:     "species removed after resolution",
			storeErr: errors.Join(datastore.ErrSpeciesReference, errors.NewStd("fk violation")),
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, species.ErrSpeciesNotFound)
				assert.Equal(t, "species with id 1 not found", species.NotFoundMessage(err))
			},
		},
		{
			name:     "unexpected database error",
			storeErr: errors.NewStd("connection reset"),
			check: func(t *testing.T, err error) {
				require.Error(t, err)
				assert.Equal(t, "connection reset", err.Error())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, true)
			f.resolver.On("Resolve", mock.Anything, mock.Anything).Return(mallard, nil)
			f.store.On("Create", mock.Anything, mock.Anything).Return(nil, tt.storeErr)

			res, err := f.service.Create(t.Context(), &CreateInput{Species: ptr("mallard"), Count: 1})
			assert.Nil(t, res)
			tt.check(t, err)
			f.mirror.AssertNotCalled(t, "CreateSighting", mock.Anything, mock.Anything)
		})
	}
}

func TestList_All(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	f.store.On("List", mock.Anything).Return([]datastore.SightingRecord{
		{ID: 1, Species: "mallard", Count: 2, DateTime: now},
		{ID: 2, Species: "gadwall", Count: 1, DateTime: now, Latitude: ptr(61.5), Longitude: ptr(23.7)},
	}, nil)

	// a partial proximity query falls back to the full list
	got, err := f.service.List(t.Context(), ListQuery{Latitude: ptr("61.5"), Longitude: ptr("23.7")})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "gadwall", got[1].Species)
	f.store.AssertNotCalled(t, "WithinRadius", mock.Anything, mock.Anything, mock.Anything)
}

func TestList_Radius(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	center := geo.Point{Latitude: 61.497405, Longitude: 23.763776}
	f.store.On("WithinRadius", mock.Anything, center, 100.0).Return([]datastore.SightingRecord{
		{ID: 9, Species: "mallard", Count: 1, DateTime: now, Latitude: ptr(61.478), Longitude: ptr(23.509)},
	}, nil)

	got, err := f.service.List(t.Context(), ListQuery{
		Latitude:  ptr("61.497405"),
		Longitude: ptr("23.763776"),
		Distance:  ptr("100"),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(9), got[0].ID)
}

func TestList_RadiusValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		q       ListQuery
		wantErr error
	}{
		{"zero distance", ListQuery{ptr("61"), ptr("23"), ptr("0")}, geo.ErrInvalidDistance},
		{"negative distance", ListQuery{ptr("61"), ptr("23"), ptr("-1")}, geo.ErrInvalidDistance},
		{"infinite distance", ListQuery{ptr("61"), ptr("23"), ptr("Inf")}, geo.ErrInvalidDistance},
		{"bad latitude", ListQuery{ptr("x"), ptr("23"), ptr("10")}, geo.ErrInvalidCoordinateFormat},
		{"longitude 180", ListQuery{ptr("0"), ptr("180"), ptr("10")}, geo.ErrCoordinateOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, false)
			_, err := f.service.List(t.Context(), tt.q)
			require.ErrorIs(t, err, tt.wantErr)
			f.store.AssertNotCalled(t, "WithinRadius", mock.Anything, mock.Anything, mock.Anything)
			f.store.AssertNotCalled(t, "List", mock.Anything)
		})
	}
}

func TestListSpecies(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	f.resolver.On("List", mock.Anything).Return([]species.Species{*mallard, *gadwall}, nil)

	got, err := f.service.ListSpecies(t.Context())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
