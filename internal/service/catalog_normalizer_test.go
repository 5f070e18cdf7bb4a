package service

import (
	"testing"

	"order-amendment-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPortionSuffix(t *testing.T) {
	base, label, ok := splitPortionSuffix("Paneer Tikka Masala (Half)")
	assert.True(t, ok)
	assert.Equal(t, "Paneer Tikka Masala", base)
	assert.Equal(t, "Half", label)

	base, label, ok = splitPortionSuffix("Masala Chai (small)")
	assert.True(t, ok)
	assert.Equal(t, "Masala Chai", base)
	assert.Equal(t, "Small", label)

	// Parenthesised text outside the vocabulary stays in the name.
	base, _, ok = splitPortionSuffix("Chicken 65 (Boneless)")
	assert.False(t, ok)
	assert.Equal(t, "Chicken 65 (Boneless)", base)

	base, _, ok = splitPortionSuffix("Butter Naan")
	assert.False(t, ok)
	assert.Equal(t, "Butter Naan", base)
}

func TestNormalizeCatalogGroupsPortions(t *testing.T) {
	rows := []models.CatalogRow{
		{ID: 1, Name: "Paneer Tikka Masala (Half)", Price: 210, InStock: true, Active: true},
		{ID: 2, Name: "Paneer Tikka Masala (Full)", Price: 380, InStock: true, Active: true},
		{ID: 3, Name: "Butter Naan", Price: 50, InStock: true, Active: true},
	}

	dishes := NormalizeCatalog(rows)
	require.Len(t, dishes, 2)

	assert.Equal(t, "Butter Naan", dishes[0].BaseName)
	require.Len(t, dishes[0].Portions, 1)
	assert.Equal(t, DefaultPortionLabel, dishes[0].Portions[0].Label)

	assert.Equal(t, "Paneer Tikka Masala", dishes[1].BaseName)
	require.Len(t, dishes[1].Portions, 2)
	assert.Equal(t, "Half", dishes[1].Portions[0].Label)
	assert.Equal(t, "Full", dishes[1].Portions[1].Label)
}

func TestNormalizeCatalogDuplicatePortionPrefersCheaper(t *testing.T) {
	rows := []models.CatalogRow{
		{ID: 1, Name: "Paneer Tikka Masala (Half)", Price: 210, InStock: true, Active: true},
		{ID: 2, Name: "Paneer Tikka Masala (Half)", Price: 200, InStock: true, Active: true},
	}

	dishes := NormalizeCatalog(rows)
	require.Len(t, dishes, 1)
	require.Len(t, dishes[0].Portions, 1)
	assert.Equal(t, int64(2), dishes[0].Portions[0].CatalogRowID)
	assert.Equal(t, int64(200), dishes[0].Portions[0].Price)
}

func TestNormalizeCatalogDuplicatePortionPrefersInStock(t *testing.T) {
	rows := []models.CatalogRow{
		{ID: 1, Name: "Masala Dosa (Large)", Price: 120, InStock: false, Active: true},
		{ID: 2, Name: "Masala Dosa (large)", Price: 150, InStock: true, Active: true},
	}

	dishes := NormalizeCatalog(rows)
	require.Len(t, dishes, 1)
	require.Len(t, dishes[0].Portions, 1)
	assert.Equal(t, int64(2), dishes[0].Portions[0].CatalogRowID)
	assert.True(t, dishes[0].Portions[0].InStock)
}

func TestNormalizeCatalogCaseInsensitiveGrouping(t *testing.T) {
	rows := []models.CatalogRow{
		{ID: 1, Name: "Veg Biryani (HALF)", Price: 90, InStock: true, Active: true},
		{ID: 2, Name: "Veg Biryani (Full)", Price: 160, InStock: true, Active: true},
	}

	dishes := NormalizeCatalog(rows)
	require.Len(t, dishes, 1)
	assert.Len(t, dishes[0].Portions, 2)
}

func TestNormalizeCatalogDropsInactiveRows(t *testing.T) {
	rows := []models.CatalogRow{
		{ID: 1, Name: "Filter Coffee", Price: 40, InStock: true, Active: true},
		{ID: 2, Name: "Cold Coffee", Price: 60, InStock: true, Active: false},
	}

	dishes := NormalizeCatalog(rows)
	require.Len(t, dishes, 1)
	assert.Equal(t, "Filter Coffee", dishes[0].BaseName)
}

func TestNormalizeCatalogSuffixlessRowUsesDefaultLabel(t *testing.T) {
	rows := []models.CatalogRow{
		{ID: 1, Name: "Masala Chai", Price: 15, InStock: true, Active: true},
		{ID: 2, Name: "Masala Chai (Regular)", Price: 20, InStock: true, Active: true},
	}

	// A bare row and an explicit (Regular) row collapse to one portion;
	// both available, so the cheaper bare row wins.
	dishes := NormalizeCatalog(rows)
	require.Len(t, dishes, 1)
	require.Len(t, dishes[0].Portions, 1)
	assert.Equal(t, int64(1), dishes[0].Portions[0].CatalogRowID)
}
