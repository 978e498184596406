package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themizzi/cartverify/internal/models"
)

func TestDefault_Lookup(t *testing.T) {
	c := Default()

	tests := []struct {
		name     string
		product  string
		category string
	}{
		{name: "laptop", product: "HP ZBook 17 G2 Mobile Workstation", category: "laptopsImg"},
		{name: "mouse upper case", product: "HP Z8000 BLUETOOTH MOUSE", category: "miceImg"},
		{name: "tablet with padding", product: "  HP Elite x2 1011 G1 Tablet ", category: "tabletsImg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Lookup(tt.product)
			require.NoError(t, err)
			assert.Equal(t, tt.category, got)
		})
	}
}

func TestLookup_Missing(t *testing.T) {
	_, err := Default().Lookup("Unknown Gadget")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCategoryNotFound))
	assert.Contains(t, err.Error(), "Unknown Gadget")
}

func TestResolve_PrefersExplicitCategory(t *testing.T) {
	c := Default()

	got, err := c.Resolve(models.ExpectedProduct{Name: "HP Z8000 Bluetooth Mouse", Category: "accessoriesImg"})
	require.NoError(t, err)
	assert.Equal(t, "accessoriesImg", got)

	got, err = c.Resolve(models.ExpectedProduct{Name: "HP Z8000 Bluetooth Mouse"})
	require.NoError(t, err)
	assert.Equal(t, "miceImg", got)
}

func TestNew_Validation(t *testing.T) {
	_, err := New([]Entry{{Name: "Mouse"}})
	assert.Error(t, err, "missing category must be rejected")

	_, err = New([]Entry{
		{Name: "Mouse", Category: "miceImg"},
		{Name: "MOUSE", Category: "laptopsImg"},
	})
	assert.Error(t, err, "conflicting categories must be rejected")

	c, err := New([]Entry{
		{Name: "Mouse", Category: "miceImg"},
		{Name: "mouse", Category: "miceImg"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestEntries_Sorted(t *testing.T) {
	entries := Default().Entries()

	require.Len(t, entries, 3)
	assert.Equal(t, "laptopsImg", entries[0].Category)
	assert.Equal(t, "miceImg", entries[1].Category)
	assert.Equal(t, "tabletsImg", entries[2].Category)
}

func TestNilCatalog(t *testing.T) {
	var c *Catalog

	_, err := c.Lookup("anything")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.Equal(t, 0, c.Len())
	assert.Nil(t, c.Entries())
}
