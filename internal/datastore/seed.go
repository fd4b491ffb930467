package datastore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wildwatch/sightings/internal/datastore/entities"
	"github.com/wildwatch/sightings/internal/geo"
	"github.com/wildwatch/sightings/internal/logger"
)

// SeedSpecies is the default species catalog.
var SeedSpecies = []string{"mallard", "redhead", "gadwall", "canvasback", "lesser scaup"}

type seedSighting struct {
	species     string
	description string
	dateTime    string
	count       int64
	location    *geo.Point
}

// The first four are placed in Nokia, Valkeakoski, Hämeenlinna and Helsinki.
var seedSightings = []seedSighting{
	{"gadwall", "All your ducks are belong to us", "2016-10-01T01:01:00Z", 1, &geo.Point{Latitude: 61.478, Longitude: 23.509}},
	{"lesser scaup", "This is awesome", "2016-12-13T12:05:00Z", 5, &geo.Point{Latitude: 61.265, Longitude: 24.031}},
	{"canvasback", "...", "2016-11-30T23:59:00Z", 2, &geo.Point{Latitude: 60.996, Longitude: 24.464}},
	{"mallard", "Getting tired", "2016-11-29T00:00:00Z", 18, &geo.Point{Latitude: 60.170, Longitude: 24.938}},
	{"redhead", "I think this one is called Alfred J.", "2016-11-29T10:00:01Z", 1, nil},
	{"redhead", "If it looks like a duck, swims like a duck, and quacks like a duck, then it probably is a duck.", "2016-12-01T13:59:00Z", 1, nil},
	{"mallard", "Too many ducks to be counted", "2016-12-12T12:12:12Z", 100, nil},
	{"canvasback", "KWAAK!!!1", "2016-12-11T01:01:00Z", 5, nil},
}

// SeedResult reports what Seed inserted.
type SeedResult struct {
	Species   int
	Sightings int
}

// Seed inserts the default species catalog and, when the sightings table is
// empty and withSightings is set, the demo sightings. Existing species are
// left untouched, so Seed can run repeatedly.
func (s *Store) Seed(ctx context.Context, withSightings bool) (*SeedResult, error) {
	if s == nil || s.DB == nil {
		return nil, ErrNotConnected
	}

	result := &SeedResult{}
	db := s.DB.WithContext(ctx)

	ids := make(map[string]int64, len(SeedSpecies))
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, name := range SeedSpecies {
			sp := entities.Species{Name: name}
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoNothing: true,
			}).Create(&sp)
			if res.Error != nil {
				return res.Error
			}
			result.Species += int(res.RowsAffected)

			if err := tx.Where("name = ?", name).Order("id").First(&sp).Error; err != nil {
				return err
			}
			ids[name] = sp.ID
		}
		return nil
	})
	if err != nil {
		return nil, dbError(err, "seed", "step", "species")
	}

	if !withSightings {
		return result, nil
	}

	existing, err := s.Sightings().Count(ctx)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		s.logger.Info("sightings table is not empty, skipping demo sightings",
			logger.Int64("existing", existing))
		return result, nil
	}

	repo := s.Sightings()
	for _, seed := range seedSightings {
		ts, err := time.Parse(time.RFC3339, seed.dateTime)
		if err != nil {
			return nil, dbError(err, "seed", "step", "sightings")
		}
		desc := seed.description
		if _, err := repo.Create(ctx, &NewSighting{
			SpeciesID:   ids[seed.species],
			SpeciesName: seed.species,
			Count:       seed.count,
			Description: &desc,
			DateTime:    &ts,
			Location:    seed.location,
		}); err != nil {
			return nil, err
		}
		result.Sightings++
	}

	s.logger.Info("seeded database",
		logger.Int("species", result.Species),
		logger.Int("sightings", result.Sightings))
	return result, nil
}
