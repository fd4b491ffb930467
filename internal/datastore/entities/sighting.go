package entities

import "time"

// Sighting is a single observation of one or more animals of one species.
// DateTime is filled by the database when left zero.
type Sighting struct {
	ID          int64     `gorm:"primaryKey"`
	SpeciesID   int64     `gorm:"not null;index"`
	DateTime    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
	Description *string   `gorm:"size:255"`
	Count       int64     `gorm:"not null;check:chk_sightings_count,count >= 1"`

	Species *Species `gorm:"foreignKey:SpeciesID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the table name for GORM.
func (Sighting) TableName() string {
	return "sightings"
}
