package catalog

import (
	"testing"

	"vehicle-catalog/feature/catalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdaptCar_FlattensAssociations(t *testing.T) {
	raw := models.Car{
		ID:        "car-1",
		Name:      "Tucson",
		Year:      2024,
		BasePrice: "27500.00",
		Active:    true,
		Brand:     &models.Brand{ID: "b-1", Name: "Hyundai", LogoURL: "http://cdn/hyundai.svg"},
		Category:  &models.Category{ID: "cat-1", Name: "SUV"},
		FuelType:  &models.FuelType{ID: "f-1", Name: "Hybrid"},
	}

	v, err := AdaptCar(raw)
	require.NoError(t, err)
	assert.Equal(t, "car-1", v.ID)
	assert.Equal(t, "Tucson", v.Name)
	assert.Equal(t, "Hyundai", v.Brand)
	assert.Equal(t, "http://cdn/hyundai.svg", v.BrandLogo)
	assert.Equal(t, "SUV", v.Category)
	assert.Equal(t, "Hybrid", v.FuelType)
	require.NotNil(t, v.BasePrice)
	assert.Equal(t, 27500.0, *v.BasePrice)
}

func TestAdaptCar_MissingAssociationsStayEmpty(t *testing.T) {
	// A car whose brand/category/fuel rows are gone still adapts; the
	// composer buckets it under its fallback groups.
	v, err := AdaptCar(models.Car{ID: "car-2", Name: "Orphan"})
	require.NoError(t, err)
	assert.Empty(t, v.Brand)
	assert.Empty(t, v.Category)
	assert.Empty(t, v.FuelType)
	assert.Nil(t, v.BasePrice)
	assert.NotNil(t, v.Versions)
	assert.Empty(t, v.Versions)
}

func TestAdaptCar_PriceCoercion(t *testing.T) {
	tests := []struct {
		name  string
		price string
		want  *float64
	}{
		{"numeric", "19990.50", ptr(19990.50)},
		{"integer text", "21000", ptr(21000.0)},
		{"empty", "", nil},
		{"garbage", "call us", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := AdaptCar(models.Car{ID: "c", Name: "n", BasePrice: tt.price})
			require.NoError(t, err)
			if tt.want == nil {
				// Unparseable prices must surface as absent, never as zero.
				assert.Nil(t, v.BasePrice)
			} else {
				require.NotNil(t, v.BasePrice)
				assert.Equal(t, *tt.want, *v.BasePrice)
			}
		})
	}
}

func TestAdaptCar_VersionOrdering(t *testing.T) {
	raw := models.Car{
		ID:   "car-3",
		Name: "Creta",
		Versions: []models.Version{
			{ID: "v-3", Name: "Limited", DisplayOrder: 3},
			{ID: "v-1", Name: "Base", DisplayOrder: 1},
			{ID: "v-2a", Name: "Comfort", DisplayOrder: 2},
			{ID: "v-2b", Name: "Comfort Plus", DisplayOrder: 2},
		},
	}

	v, err := AdaptCar(raw)
	require.NoError(t, err)
	got := make([]string, 0, len(v.Versions))
	for _, ver := range v.Versions {
		got = append(got, ver.ID)
	}
	// Ties keep source order.
	assert.Equal(t, []string{"v-1", "v-2a", "v-2b", "v-3"}, got)
}

func TestAdaptCar_DefaultColorFirst(t *testing.T) {
	raw := models.Car{
		ID:   "car-4",
		Name: "Seltos",
		Versions: []models.Version{{
			ID:   "v-1",
			Name: "Base",
			Colors: []models.Color{
				{ID: "col-b", Name: "Blue"},
				{ID: "col-a", Name: "Amber", IsDefault: true},
				{ID: "col-c", Name: "Coal"},
			},
		}},
	}

	v, err := AdaptCar(raw)
	require.NoError(t, err)
	require.Len(t, v.Versions, 1)
	colors := v.Versions[0].Colors
	require.Len(t, colors, 3)
	assert.Equal(t, "col-a", colors[0].ID)
	assert.True(t, colors[0].Default)
	// Non-default colors keep their source order behind the default.
	assert.Equal(t, "col-b", colors[1].ID)
	assert.Equal(t, "col-c", colors[2].ID)
}

func TestAdaptCar_ImageOrdering(t *testing.T) {
	raw := models.Car{
		ID:   "car-5",
		Name: "Sportage",
		Versions: []models.Version{{
			ID:   "v-1",
			Name: "GT",
			Colors: []models.Color{{
				ID: "col-1",
				Images: []models.ColorImage{
					{ID: "img-2", URL: "http://cdn/2.jpg", DisplayOrder: 2},
					{ID: "img-1", URL: "http://cdn/1.jpg", DisplayOrder: 1},
				},
			}},
		}},
	}

	v, err := AdaptCar(raw)
	require.NoError(t, err)
	images := v.Versions[0].Colors[0].Images
	require.Len(t, images, 2)
	assert.Equal(t, "img-1", images[0].ID)
	assert.Equal(t, "img-2", images[1].ID)
}

func TestAdaptCar_MalformedRecords(t *testing.T) {
	tests := []struct {
		name string
		raw  models.Car
	}{
		{"missing car id", models.Car{Name: "NoID"}},
		{"missing car name", models.Car{ID: "car-6"}},
		{"version without id", models.Car{ID: "car-7", Name: "X", Versions: []models.Version{{Name: "Base"}}}},
		{"version without name", models.Car{ID: "car-8", Name: "X", Versions: []models.Version{{ID: "v-1"}}}},
		{"color without id", models.Car{ID: "car-9", Name: "X", Versions: []models.Version{
			{ID: "v-1", Name: "Base", Colors: []models.Color{{Name: "Red"}}},
		}}},
		{"image without id", models.Car{ID: "car-10", Name: "X", Versions: []models.Version{
			{ID: "v-1", Name: "Base", Colors: []models.Color{
				{ID: "col-1", Images: []models.ColorImage{{URL: "http://cdn/x.jpg"}}},
			}},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AdaptCar(tt.raw)
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestAdaptCar_DoesNotMutateInput(t *testing.T) {
	raw := models.Car{
		ID:   "car-11",
		Name: "Ioniq",
		Versions: []models.Version{
			{ID: "v-2", Name: "Long Range", DisplayOrder: 2},
			{ID: "v-1", Name: "Standard", DisplayOrder: 1},
		},
	}

	_, err := AdaptCar(raw)
	require.NoError(t, err)
	assert.Equal(t, "v-2", raw.Versions[0].ID)
	assert.Equal(t, "v-1", raw.Versions[1].ID)
}

func ptr(f float64) *float64 { return &f }
