package errors

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFastPathNoHooks(t *testing.T) {
	ClearErrorHooks()

	ee := New(fmt.Errorf("test error")).Build()

	assert.Equal(t, "test error", ee.Error())
	assert.Equal(t, ComponentUnknown, ee.GetComponent())
	assert.Equal(t, CategoryGeneric, ee.Category)
}

func TestBuilderKeepsExplicitValues(t *testing.T) {
	ClearErrorHooks()

	base := NewStd("species lookup failed")
	ee := New(base).
		Component("species").
		Category(CategoryDatabase).
		Context("lookup", "name").
		Build()

	assert.Equal(t, "species", ee.GetComponent())
	assert.Equal(t, CategoryDatabase, ee.Category)
	v, ok := ee.ContextValue("lookup")
	require.True(t, ok)
	assert.Equal(t, "name", v)
	assert.ErrorIs(t, ee, base, "wrapped sentinel must stay reachable")
}

func TestDetectCategory(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"not found", NewStd("species not found"), CategoryNotFound},
		{"timeout", NewStd("context deadline exceeded"), CategoryTimeout},
		{"connection", NewStd("connection refused"), CategoryNetwork},
		{"invalid", NewStd("invalid latitude"), CategoryValidation},
		{"other", NewStd("boom"), CategoryGeneric},
		{"nested enhanced", New(NewStd("x")).Category(CategoryIntegration).Build(), CategoryIntegration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectCategory(tt.err))
		})
	}
}

func TestGetContextReturnsCopy(t *testing.T) {
	ee := New(NewStd("x")).Context("field", "count").Build()

	ctx := ee.GetContext()
	ctx["field"] = "mutated"

	v, _ := ee.ContextValue("field")
	assert.Equal(t, "count", v)
}

func TestIsCategory(t *testing.T) {
	ee := New(NewStd("gone")).Category(CategoryNotFound).Build()
	wrapped := fmt.Errorf("resolve: %w", ee)

	assert.True(t, IsCategory(wrapped, CategoryNotFound))
	assert.False(t, IsCategory(wrapped, CategoryDatabase))
	assert.False(t, IsCategory(NewStd("plain"), CategoryNotFound))
}

func TestErrorHooks(t *testing.T) {
	ClearErrorHooks()
	t.Cleanup(ClearErrorHooks)

	var calls atomic.Int32
	var lastCategory atomic.Value
	AddErrorHook(func(ee *EnhancedError) {
		calls.Add(1)
		lastCategory.Store(ee.Category)
	})

	_ = New(NewStd("bad count")).Category(CategoryValidation).Component("sighting").Build()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, CategoryValidation, lastCategory.Load())
}

func TestComponentDetectionWithHooks(t *testing.T) {
	ClearErrorHooks()
	t.Cleanup(ClearErrorHooks)
	AddErrorHook(func(*EnhancedError) {})

	ee := New(NewStd("x")).Build()
	// Called from the errors package itself, nothing in the registry matches
	assert.Equal(t, ComponentUnknown, ee.GetComponent())
}

func TestLookupComponent(t *testing.T) {
	assert.Equal(t, "datastore", lookupComponent("github.com/wildwatch/sightings/internal/datastore.(*sightingRepository).Create"))
	assert.Equal(t, ComponentUnknown, lookupComponent("main.main"))
}
