package datastore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/wildwatch/sightings/internal/datastore/entities"
	"github.com/wildwatch/sightings/internal/errors"
	"github.com/wildwatch/sightings/internal/observability/metrics"
)

// SpeciesRepository provides read access to the species catalog.
type SpeciesRepository interface {
	// GetByID returns ErrNotFound if no species has the id.
	GetByID(ctx context.Context, id int64) (*entities.Species, error)

	// GetByName matches the name exactly. If legacy data holds duplicates the
	// lowest id wins. Returns ErrNotFound if nothing matches.
	GetByName(ctx context.Context, name string) (*entities.Species, error)

	// List returns the whole catalog ordered by id.
	List(ctx context.Context) ([]entities.Species, error)
}

type speciesRepository struct {
	db       *gorm.DB
	recorder metrics.Recorder
}

// NewSpeciesRepository creates a SpeciesRepository. recorder may be nil.
func NewSpeciesRepository(db *gorm.DB, recorder metrics.Recorder) SpeciesRepository {
	return &speciesRepository{db: db, recorder: recorder}
}

func (r *speciesRepository) GetByID(ctx context.Context, id int64) (sp *entities.Species, err error) {
	defer func(start time.Time) { observe(r.recorder, metrics.OpSpeciesGet, start, err) }(time.Now())

	var species entities.Species
	err = r.db.WithContext(ctx).First(&species, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, dbError(err, "get_species", "species_id", id)
	}
	return &species, nil
}

func (r *speciesRepository) GetByName(ctx context.Context, name string) (sp *entities.Species, err error) {
	defer func(start time.Time) { observe(r.recorder, metrics.OpSpeciesGet, start, err) }(time.Now())

	var species entities.Species
	err = r.db.WithContext(ctx).
		Where("name = ?", name).
		Order("id").
		First(&species).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, dbError(err, "get_species_by_name", "species", name)
	}
	return &species, nil
}

func (r *speciesRepository) List(ctx context.Context) (list []entities.Species, err error) {
	defer func(start time.Time) { observe(r.recorder, metrics.OpSpeciesList, start, err) }(time.Now())

	var species []entities.Species
	if err = r.db.WithContext(ctx).Order("id").Find(&species).Error; err != nil {
		return nil, dbError(err, "list_species")
	}
	return species, nil
}
