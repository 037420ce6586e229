package compose_test

import (
	"testing"

	"vehicle-catalog/feature/catalog/compose"
	"vehicle-catalog/feature/catalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vehicle(id, brand, category, fuel string, price *float64) models.Vehicle {
	return models.Vehicle{
		ID: id, Name: id,
		Brand: brand, Category: category, FuelType: fuel,
		BasePrice: price,
	}
}

func price(f float64) *float64 { return &f }

func groupBrands(groups []compose.BrandGroup) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Brand)
	}
	return out
}

func TestGroupByBrand_CanonicalOrder(t *testing.T) {
	vehicles := []models.Vehicle{
		vehicle("1", "Toyota", "", "", nil),
		vehicle("2", "Hyundai", "", "", nil),
		vehicle("3", "Kia", "", "", nil),
		vehicle("4", "Hyundai", "", "", nil),
	}

	groups := compose.GroupByBrand(vehicles, []string{"Hyundai", "Kia", "Toyota"})
	assert.Equal(t, []string{"Hyundai", "Kia", "Toyota"}, groupBrands(groups))
	assert.Len(t, groups[0].Vehicles, 2)
}

func TestGroupByBrand_UnrecognizedBrandsAppendFirstSeen(t *testing.T) {
	vehicles := []models.Vehicle{
		vehicle("1", "BYD", "", "", nil),
		vehicle("2", "Hyundai", "", "", nil),
		vehicle("3", "Tesla", "", "", nil),
		vehicle("4", "BYD", "", "", nil),
	}

	groups := compose.GroupByBrand(vehicles, []string{"Hyundai", "Kia"})
	assert.Equal(t, []string{"Hyundai", "BYD", "Tesla"}, groupBrands(groups))
}

func TestGroupByBrand_MissingBrandFallsBackNeverDrops(t *testing.T) {
	vehicles := []models.Vehicle{
		vehicle("1", "", "", "", nil),
		vehicle("2", "Hyundai", "", "", nil),
		vehicle("3", "", "", "", nil),
	}

	groups := compose.GroupByBrand(vehicles, []string{"Hyundai"})
	require.Equal(t, []string{"Hyundai", compose.UnknownBrand}, groupBrands(groups))

	total := 0
	for _, g := range groups {
		total += len(g.Vehicles)
	}
	assert.Equal(t, len(vehicles), total)
}

func TestGroupByBrand_EmptyCanonicalGroupsOmitted(t *testing.T) {
	vehicles := []models.Vehicle{vehicle("1", "Kia", "", "", nil)}

	groups := compose.GroupByBrand(vehicles, []string{"Hyundai", "Kia", "Toyota"})
	assert.Equal(t, []string{"Kia"}, groupBrands(groups))
}

func TestApply_CombinesFilters(t *testing.T) {
	vehicles := []models.Vehicle{
		vehicle("1", "Hyundai", "SUV", "Hybrid", price(30000)),
		vehicle("2", "Hyundai", "Sedan", "Petrol", price(22000)),
		vehicle("3", "Kia", "SUV", "Petrol", price(28000)),
		vehicle("4", "Kia", "SUV", "Electric", nil),
	}

	got := compose.Apply(vehicles, compose.Filters{
		Brands:     []string{"Hyundai", "Kia"},
		Categories: []string{"SUV"},
		MinPrice:   price(25000),
	})
	ids := make([]string, 0, len(got))
	for _, v := range got {
		ids = append(ids, v.ID)
	}
	// Vehicle 4 has no price; a price filter excludes unpriced vehicles.
	assert.Equal(t, []string{"1", "3"}, ids)
}

func TestFacetCounts_IgnoresSubjectOwnSelection(t *testing.T) {
	vehicles := []models.Vehicle{
		vehicle("1", "Hyundai", "SUV", "", nil),
		vehicle("2", "Kia", "SUV", "", nil),
		vehicle("3", "Kia", "Sedan", "", nil),
	}

	// With Hyundai selected, brand counts still show what selecting Kia
	// would yield; the category filter stays in force.
	counts := compose.FacetCounts(vehicles, compose.Filters{
		Brands:     []string{"Hyundai"},
		Categories: []string{"SUV"},
	}, compose.FacetBrand)

	assert.Equal(t, map[string]int{"Hyundai": 1, "Kia": 1}, counts)
}

func TestFacetCounts_OtherFiltersStillApply(t *testing.T) {
	vehicles := []models.Vehicle{
		vehicle("1", "Hyundai", "SUV", "Hybrid", nil),
		vehicle("2", "Hyundai", "Sedan", "Petrol", nil),
		vehicle("3", "Kia", "SUV", "Petrol", nil),
	}

	counts := compose.FacetCounts(vehicles, compose.Filters{
		Brands: []string{"Hyundai"},
	}, compose.FacetFuel)

	assert.Equal(t, map[string]int{"Hybrid": 1, "Petrol": 1}, counts)
}

func TestFacetCounts_MissingValueBucketsUnknown(t *testing.T) {
	vehicles := []models.Vehicle{
		vehicle("1", "Hyundai", "", "", nil),
		vehicle("2", "", "", "", nil),
	}

	counts := compose.FacetCounts(vehicles, compose.Filters{}, compose.FacetBrand)
	assert.Equal(t, map[string]int{"Hyundai": 1, compose.UnknownFacetValue: 1}, counts)
}

func TestFacetOptions_Deterministic(t *testing.T) {
	opts := compose.FacetOptions(map[string]int{"Petrol": 3, "Hybrid": 3, "Electric": 1})
	want := []compose.Option{
		{Label: "Hybrid", Value: "Hybrid", Count: 3},
		{Label: "Petrol", Value: "Petrol", Count: 3},
		{Label: "Electric", Value: "Electric", Count: 1},
	}
	assert.Equal(t, want, opts)
}

func TestPriceBounds(t *testing.T) {
	vehicles := []models.Vehicle{
		vehicle("1", "", "", "", price(30000)),
		vehicle("2", "", "", "", nil),
		vehicle("3", "", "", "", price(18000)),
	}

	r := compose.PriceBounds(vehicles)
	require.NotNil(t, r)
	assert.Equal(t, 18000.0, r.Min)
	assert.Equal(t, 30000.0, r.Max)

	assert.Nil(t, compose.PriceBounds(nil))
	assert.Nil(t, compose.PriceBounds([]models.Vehicle{vehicle("4", "", "", "", nil)}))
}
