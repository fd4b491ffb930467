// Package entities defines the GORM models for the sightings schema.
//
//   - Species: reference catalog, read-only for the ingestion pipeline
//   - Sighting: one observation of a species, optionally geolocated
//
// The sightings.location column is geography(POINT,4326). GORM has no type for
// it, so it is created by the migration and read and written with raw PostGIS
// expressions in the datastore package.
package entities
