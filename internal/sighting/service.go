// Package sighting orchestrates sighting ingestion and retrieval: it checks
// the request, resolves the species, validates the location, persists the
// sighting and mirrors it to the legacy service.
package sighting

import (
	"context"
	"encoding/json"
	"time"

	"github.com/wildwatch/sightings/internal/datastore"
	"github.com/wildwatch/sightings/internal/errors"
	"github.com/wildwatch/sightings/internal/geo"
	"github.com/wildwatch/sightings/internal/legacy"
	"github.com/wildwatch/sightings/internal/logger"
	"github.com/wildwatch/sightings/internal/observability/metrics"
	"github.com/wildwatch/sightings/internal/species"
)

// SpeciesResolver resolves species references.
type SpeciesResolver interface {
	Resolve(ctx context.Context, ref species.Reference) (*species.Species, error)
	List(ctx context.Context) ([]species.Species, error)
}

// Mirror writes sightings to the legacy service.
type Mirror interface {
	CreateSighting(ctx context.Context, rec *legacy.Record) (json.RawMessage, error)
}

// Sighting is the client facing representation of a stored sighting.
// Absent values are serialized as null.
type Sighting struct {
	ID          int64     `json:"id"`
	Species     string    `json:"species"`
	SpeciesID   int64     `json:"speciesId"`
	Count       int64     `json:"count"`
	Description *string   `json:"description"`
	DateTime    time.Time `json:"dateTime"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
}

// Result is a created sighting with the legacy mirror outcome.
type Result struct {
	Sighting
	LegacyMirrorResult MirrorResult `json:"legacyMirrorResult"`
}

// ListQuery holds the optional proximity filter. The filter applies only
// when all three values are present.
type ListQuery struct {
	Latitude  *string
	Longitude *string
	Distance  *string
}

// Failure reasons reported to metrics.
const (
	reasonValidation      = "validation"
	reasonSpeciesNotFound = "species_not_found"
	reasonLocation        = "location_write"
	reasonDatabase        = "database"
)

// Service runs the ingestion and retrieval pipelines.
type Service struct {
	resolver SpeciesResolver
	store    datastore.SightingRepository
	mirror   Mirror
	metrics  *metrics.SightingMetrics
	logger   logger.Logger
}

// NewService creates a Service. A nil mirror disables legacy mirroring and
// nil metrics disables instrumentation.
func NewService(resolver SpeciesResolver, store datastore.SightingRepository, mirror Mirror, m *metrics.SightingMetrics, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}
	return &Service{
		resolver: resolver,
		store:    store,
		mirror:   mirror,
		metrics:  m,
		logger:   log.Module("sighting"),
	}
}

// Create resolves, validates and persists a sighting, then mirrors it.
// Once the sighting is stored Create succeeds; the mirror outcome is
// reported in the result and never returned as an error.
func (s *Service) Create(ctx context.Context, in *CreateInput) (*Result, error) {
	if in == nil {
		s.recordFailure(reasonValidation)
		return nil, fieldError("body", "required", "request body is required")
	}

	sp, err := s.resolver.Resolve(ctx, species.Reference{ID: in.SpeciesID, Name: in.Species})
	if err != nil {
		s.recordFailure(failureReason(err))
		return nil, err
	}

	var location *geo.Point
	if in.HasLocation() {
		p, err := geo.ValidateCoordinates(*in.Latitude, *in.Longitude)
		if err != nil {
			s.recordFailure(reasonValidation)
			return nil, err
		}
		location = &p
	}

	rec, err := s.store.Create(ctx, &datastore.NewSighting{
		SpeciesID:   sp.ID,
		SpeciesName: sp.Name,
		Count:       in.Count,
		Description: in.Description,
		DateTime:    in.DateTime,
		Location:    location,
	})
	if err != nil {
		if errors.Is(err, datastore.ErrSpeciesReference) {
			// species was removed after it resolved
			err = errors.New(species.ErrSpeciesNotFound).
				Component("sighting").
				Category(errors.CategoryNotFound).
				Context("lookup", species.LookupID).
				Context("value", sp.ID).
				Build()
		}
		s.recordFailure(failureReason(err))
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordCreated()
	}

	result := &Result{Sighting: fromRecord(rec)}
	result.LegacyMirrorResult = s.mirrorSighting(ctx, rec)

	s.logger.Info("sighting created",
		logger.Int64("sighting_id", rec.ID),
		logger.String("species", rec.Species),
		logger.Int64("count", rec.Count),
		logger.Bool("geolocated", location != nil),
		logger.String("legacy_mirror", string(result.LegacyMirrorResult.Status)))

	return result, nil
}

// mirrorSighting attempts the legacy write exactly once.
func (s *Service) mirrorSighting(ctx context.Context, rec *datastore.SightingRecord) MirrorResult {
	if s.mirror == nil {
		s.recordMirror(metrics.MirrorOutcomeDisabled, 0)
		return mirrorSkipped()
	}

	start := time.Now()
	raw, err := s.mirror.CreateSighting(ctx, &legacy.Record{
		Species:     rec.Species,
		Description: rec.Description,
		DateTime:    rec.DateTime,
		Count:       rec.Count,
	})
	elapsed := time.Since(start)

	if err != nil {
		s.recordMirror(metrics.MirrorOutcomeError, elapsed)
		s.logger.Warn("legacy mirror failed, sighting kept",
			logger.Int64("sighting_id", rec.ID),
			logger.Duration("elapsed", elapsed),
			logger.Error(err))
		return mirrorFailed(err)
	}

	s.recordMirror(metrics.MirrorOutcomeOK, elapsed)
	return mirrorSucceeded(raw)
}

// List returns all sightings, or those within the requested radius when the
// query carries latitude, longitude and distance.
func (s *Service) List(ctx context.Context, q ListQuery) ([]Sighting, error) {
	var (
		records []datastore.SightingRecord
		err     error
	)

	if q.Latitude != nil && q.Longitude != nil && q.Distance != nil {
		center, verr := geo.ValidateCoordinates(*q.Latitude, *q.Longitude)
		if verr != nil {
			return nil, verr
		}
		km, verr := geo.ValidateDistance(*q.Distance)
		if verr != nil {
			return nil, verr
		}
		s.recordQuery(metrics.LabelRadius)
		records, err = s.store.WithinRadius(ctx, center, km)
	} else {
		s.recordQuery(metrics.LabelAll)
		records, err = s.store.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := make([]Sighting, 0, len(records))
	for i := range records {
		out = append(out, fromRecord(&records[i]))
	}
	return out, nil
}

// ListSpecies returns the species catalog.
func (s *Service) ListSpecies(ctx context.Context) ([]species.Species, error) {
	return s.resolver.List(ctx)
}

func fromRecord(rec *datastore.SightingRecord) Sighting {
	return Sighting{
		ID:          rec.ID,
		Species:     rec.Species,
		SpeciesID:   rec.SpeciesID,
		Count:       rec.Count,
		Description: rec.Description,
		DateTime:    rec.DateTime,
		Latitude:    rec.Latitude,
		Longitude:   rec.Longitude,
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, species.ErrSpeciesNotFound):
		return reasonSpeciesNotFound
	case errors.Is(err, datastore.ErrLocationWriteFailed):
		return reasonLocation
	case errors.IsCategory(err, errors.CategoryValidation):
		return reasonValidation
	default:
		return reasonDatabase
	}
}

func (s *Service) recordFailure(reason string) {
	if s.metrics != nil {
		s.metrics.RecordCreateFailure(reason)
	}
}

func (s *Service) recordMirror(outcome string, elapsed time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordMirror(outcome, elapsed.Seconds())
	}
}

func (s *Service) recordQuery(kind string) {
	if s.metrics != nil {
		s.metrics.RecordQuery(kind)
	}
}
