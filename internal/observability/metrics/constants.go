// Package metrics provides constants used across metric definitions.
package metrics

import "time"

// Operation names passed to a Recorder by the datastore.
const (
	// OpSpeciesGet represents species lookups by id or name.
	OpSpeciesGet = "species_get"
	// OpSpeciesList represents species catalog listing.
	OpSpeciesList = "species_list"
	// OpSightingCreate represents the sighting insert transaction.
	OpSightingCreate = "sighting_create"
	// OpSightingList represents listing all sightings.
	OpSightingList = "sighting_list"
	// OpSightingRadius represents the proximity query.
	OpSightingRadius = "sighting_radius"
)

// Status label values.
const (
	// StatusSuccess marks a completed operation.
	StatusSuccess = "success"
	// StatusError marks a failed operation.
	StatusError = "error"
)

// Label value constants used for metric labels.
const (
	// LabelAll is the query kind label for unfiltered listing.
	LabelAll = "all"
	// LabelRadius is the query kind label for proximity queries.
	LabelRadius = "radius"
)

// Histogram bucket configuration constants.
const (
	// BucketStart1ms is the starting bucket for 1ms histograms (1ms to ~1s range).
	BucketStart1ms = 0.001
	// BucketStart10ms is the starting bucket for 10ms histograms (10ms to ~40s range).
	BucketStart10ms = 0.01

	// BucketFactor2 is the common exponential growth factor of 2 for histogram buckets.
	BucketFactor2 = 2

	// BucketCount12 defines 12 exponential buckets.
	BucketCount12 = 12
	// BucketCount15 defines 15 exponential buckets.
	BucketCount15 = 15
)

// Time and conversion constants.
const (
	// ShutdownTimeout is the timeout for graceful shutdown operations.
	ShutdownTimeout = 5 * time.Second
)
