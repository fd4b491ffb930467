package entities

// Species is a catalog entry naming an observable animal type.
type Species struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;not null;uniqueIndex:idx_species_name" json:"name"`
}

// TableName returns the table name for GORM.
func (Species) TableName() string {
	return "species"
}
