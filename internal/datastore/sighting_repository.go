package datastore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/wildwatch/sightings/internal/datastore/entities"
	"github.com/wildwatch/sightings/internal/errors"
	"github.com/wildwatch/sightings/internal/geo"
	"github.com/wildwatch/sightings/internal/observability/metrics"
)

// pointExpr builds a geography point; PostGIS takes longitude first.
const pointExpr = "ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography"

// NewSighting is a sighting ready to persist. SpeciesID must already be resolved.
type NewSighting struct {
	SpeciesID   int64
	SpeciesName string
	Count       int64
	Description *string
	DateTime    *time.Time // nil lets the database default to now
	Location    *geo.Point
}

// SightingRecord is a persisted sighting with its species name and decoded location.
type SightingRecord struct {
	ID          int64
	SpeciesID   int64
	Species     string
	Count       int64
	Description *string
	DateTime    time.Time
	Latitude    *float64
	Longitude   *float64
}

// SightingRepository persists and queries sightings.
type SightingRepository interface {
	// Create inserts the sighting and, when a location is given, writes the
	// geography column in the same transaction. ErrLocationWriteFailed rolls
	// everything back. A rejected species_id yields ErrSpeciesReference.
	Create(ctx context.Context, in *NewSighting) (*SightingRecord, error)

	// List returns every sighting ordered by id.
	List(ctx context.Context) ([]SightingRecord, error)

	// WithinRadius returns sightings whose location lies within km kilometres
	// of center, measured on the WGS-84 ellipsoid. Sightings without location
	// never match. km must be finite and positive.
	WithinRadius(ctx context.Context, center geo.Point, km float64) ([]SightingRecord, error)

	// Count returns the number of stored sightings.
	Count(ctx context.Context) (int64, error)
}

type sightingRepository struct {
	db       *gorm.DB
	recorder metrics.Recorder
}

// NewSightingRepository creates a SightingRepository. recorder may be nil.
func NewSightingRepository(db *gorm.DB, recorder metrics.Recorder) SightingRepository {
	return &sightingRepository{db: db, recorder: recorder}
}

func (r *sightingRepository) Create(ctx context.Context, in *NewSighting) (rec *SightingRecord, err error) {
	defer func(start time.Time) { observe(r.recorder, metrics.OpSightingCreate, start, err) }(time.Now())

	if in == nil {
		return nil, fmt.Errorf("nil sighting")
	}

	row := entities.Sighting{
		SpeciesID:   in.SpeciesID,
		Count:       in.Count,
		Description: in.Description,
	}
	if in.DateTime != nil {
		row.DateTime = *in.DateTime
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		if in.Location == nil {
			return nil
		}

		res := tx.Exec(
			"UPDATE sightings SET location = "+pointExpr+" WHERE id = ?",
			in.Location.Longitude, in.Location.Latitude, row.ID,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrLocationWriteFailed
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrLocationWriteFailed) {
			return nil, errors.New(err).
				Component("datastore").
				Category(errors.CategoryDatabase).
				Context("operation", "create_sighting").
				Context("sighting_id", row.ID).
				Build()
		}
		if translated := translatePgError(err); translated != err {
			return nil, translated
		}
		return nil, dbError(err, "create_sighting", "species_id", in.SpeciesID)
	}

	rec = &SightingRecord{
		ID:          row.ID,
		SpeciesID:   row.SpeciesID,
		Species:     in.SpeciesName,
		Count:       row.Count,
		Description: row.Description,
		DateTime:    row.DateTime,
	}
	if in.Location != nil {
		lat, lon := in.Location.Latitude, in.Location.Longitude
		rec.Latitude, rec.Longitude = &lat, &lon
	}
	return rec, nil
}

// baseQuery joins species and decodes the geography column.
func (r *sightingRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("sightings AS s").
		Select(`s.id, s.species_id, sp.name AS species, s.count, s.description, s.date_time,
			ST_Y(s.location::geometry) AS latitude, ST_X(s.location::geometry) AS longitude`).
		Joins("JOIN species AS sp ON sp.id = s.species_id").
		Order("s.id")
}

func (r *sightingRepository) List(ctx context.Context) (list []SightingRecord, err error) {
	defer func(start time.Time) { observe(r.recorder, metrics.OpSightingList, start, err) }(time.Now())

	var rows []SightingRecord
	if err = r.baseQuery(ctx).Scan(&rows).Error; err != nil {
		return nil, dbError(err, "list_sightings")
	}
	r.recordResultSize(metrics.OpSightingList, len(rows))
	return rows, nil
}

func (r *sightingRepository) WithinRadius(ctx context.Context, center geo.Point, km float64) (list []SightingRecord, err error) {
	defer func(start time.Time) { observe(r.recorder, metrics.OpSightingRadius, start, err) }(time.Now())

	if km, err = geo.ValidateDistance(km); err != nil {
		return nil, err
	}

	var rows []SightingRecord
	err = r.baseQuery(ctx).
		Where("s.location IS NOT NULL").
		Where("ST_DWithin(s.location, "+pointExpr+", ?)", center.Longitude, center.Latitude, geo.KilometresToMetres(km)).
		Scan(&rows).Error
	if err != nil {
		return nil, dbError(err, "sightings_within_radius",
			"latitude", center.Latitude, "longitude", center.Longitude, "distance_km", km)
	}
	r.recordResultSize(metrics.OpSightingRadius, len(rows))
	return rows, nil
}

func (r *sightingRepository) recordResultSize(operation string, rows int) {
	if r.recorder != nil {
		r.recorder.RecordQueryResultSize(operation, rows)
	}
}

func (r *sightingRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&entities.Sighting{}).Count(&n).Error; err != nil {
		return 0, dbError(err, "count_sightings")
	}
	return n, nil
}
