// Package species resolves client supplied species references against the
// species catalog.
package species

import (
	"context"
	"fmt"
	"strings"

	"github.com/wildwatch/sightings/internal/datastore"
	"github.com/wildwatch/sightings/internal/datastore/entities"
	"github.com/wildwatch/sightings/internal/errors"
)

var (
	// ErrSpeciesNotFound is returned when a reference matches no species.
	// The error context carries "lookup" ("id" or "name") and the value.
	ErrSpeciesNotFound = errors.NewStd("species not found")

	// ErrMissingSpeciesReference is returned when neither id nor name is given.
	ErrMissingSpeciesReference = errors.NewStd("either speciesId or species must be provided")
)

// Lookup kinds reported in the error context.
const (
	LookupID   = "id"
	LookupName = "name"
)

// Species is a resolved catalog entry.
type Species = entities.Species

// Reference identifies a species by id or by name. ID takes precedence when
// both are set.
type Reference struct {
	ID   *int64
	Name *string
}

// Resolver maps references onto catalog entries.
type Resolver struct {
	repo datastore.SpeciesRepository
}

// NewResolver creates a Resolver reading from repo.
func NewResolver(repo datastore.SpeciesRepository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns the species a reference points at. Only exact name matches
// count; when legacy data holds duplicate names the lowest id wins.
func (r *Resolver) Resolve(ctx context.Context, ref Reference) (*Species, error) {
	switch {
	case ref.ID != nil:
		sp, err := r.repo.GetByID(ctx, *ref.ID)
		if err != nil {
			return nil, r.lookupError(err, LookupID, *ref.ID)
		}
		return sp, nil

	case ref.Name != nil && strings.TrimSpace(*ref.Name) != "":
		sp, err := r.repo.GetByName(ctx, *ref.Name)
		if err != nil {
			return nil, r.lookupError(err, LookupName, *ref.Name)
		}
		return sp, nil

	default:
		return nil, errors.New(ErrMissingSpeciesReference).
			Component("species").
			Category(errors.CategoryValidation).
			Build()
	}
}

// List returns the species catalog ordered by id.
func (r *Resolver) List(ctx context.Context) ([]Species, error) {
	return r.repo.List(ctx)
}

func (r *Resolver) lookupError(err error, lookup string, value any) error {
	if !errors.Is(err, datastore.ErrNotFound) {
		return err
	}
	return errors.New(ErrSpeciesNotFound).
		Component("species").
		Category(errors.CategoryNotFound).
		Context("lookup", lookup).
		Context("value", value).
		Build()
}

// NotFoundMessage renders the client facing message for a not-found error
// built by Resolve, e.g. `species "teal" not found`.
func NotFoundMessage(err error) string {
	var ee *errors.EnhancedError
	if !errors.As(err, &ee) {
		return ErrSpeciesNotFound.Error()
	}
	lookup, _ := ee.ContextValue("lookup")
	value, _ := ee.ContextValue("value")

	switch lookup {
	case LookupID:
		return fmt.Sprintf("species with id %v not found", value)
	case LookupName:
		return fmt.Sprintf("species %q not found", value)
	default:
		return ErrSpeciesNotFound.Error()
	}
}
