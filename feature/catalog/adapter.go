package catalog

import (
	"fmt"
	"sort"

	"vehicle-catalog/core/utils"
	"vehicle-catalog/feature/catalog/models"
)

// AdaptCar converts one raw joined car row into a flattened Vehicle view
// model. Pure: no I/O, no mutation of the input, safe to call
// concurrently.
//
// Ordering rules:
//   - versions by display_order, stable on ties
//   - the default color first, remaining colors in source order
//   - images by display_order ascending, stable
//
// A missing identity or name fails with ErrMalformedRecord; no partial
// view model is returned.
func AdaptCar(raw models.Car) (models.Vehicle, error) {
	if raw.ID == "" {
		return models.Vehicle{}, fmt.Errorf("%w: car without id", ErrMalformedRecord)
	}
	if raw.Name == "" {
		return models.Vehicle{}, fmt.Errorf("%w: car %s without name", ErrMalformedRecord, raw.ID)
	}

	v := models.Vehicle{
		ID:        raw.ID,
		Name:      raw.Name,
		Year:      raw.Year,
		Active:    raw.Active,
		BasePrice: utils.ToFloatPtr(raw.BasePrice),
		Versions:  make([]models.VehicleVersion, 0, len(raw.Versions)),
		CreatedAt: raw.CreatedAt,
		UpdatedAt: raw.UpdatedAt,
	}
	if raw.Brand != nil {
		v.Brand = raw.Brand.Name
		v.BrandLogo = raw.Brand.LogoURL
	}
	if raw.Category != nil {
		v.Category = raw.Category.Name
	}
	if raw.FuelType != nil {
		v.FuelType = raw.FuelType.Name
	}

	versions := make([]models.Version, len(raw.Versions))
	copy(versions, raw.Versions)
	sort.SliceStable(versions, func(i, j int) bool {
		return versions[i].DisplayOrder < versions[j].DisplayOrder
	})

	for _, ver := range versions {
		adapted, err := adaptVersion(ver)
		if err != nil {
			return models.Vehicle{}, fmt.Errorf("car %s: %w", raw.ID, err)
		}
		v.Versions = append(v.Versions, adapted)
	}
	return v, nil
}

func adaptVersion(raw models.Version) (models.VehicleVersion, error) {
	if raw.ID == "" {
		return models.VehicleVersion{}, fmt.Errorf("%w: version without id", ErrMalformedRecord)
	}
	if raw.Name == "" {
		return models.VehicleVersion{}, fmt.Errorf("%w: version %s without name", ErrMalformedRecord, raw.ID)
	}

	ver := models.VehicleVersion{
		ID:           raw.ID,
		Name:         raw.Name,
		Price:        utils.ToFloatPtr(raw.Price),
		DisplayOrder: raw.DisplayOrder,
		Colors:       make([]models.VehicleColor, 0, len(raw.Colors)),
	}

	colors := make([]models.Color, len(raw.Colors))
	copy(colors, raw.Colors)
	// Default color first; stable, so everything else keeps source order.
	sort.SliceStable(colors, func(i, j int) bool {
		return colors[i].IsDefault && !colors[j].IsDefault
	})

	for _, c := range colors {
		adapted, err := adaptColor(c)
		if err != nil {
			return models.VehicleVersion{}, fmt.Errorf("version %s: %w", raw.ID, err)
		}
		ver.Colors = append(ver.Colors, adapted)
	}
	return ver, nil
}

func adaptColor(raw models.Color) (models.VehicleColor, error) {
	if raw.ID == "" {
		return models.VehicleColor{}, fmt.Errorf("%w: color without id", ErrMalformedRecord)
	}

	col := models.VehicleColor{
		ID:      raw.ID,
		Name:    raw.Name,
		Hex:     raw.Hex,
		Default: raw.IsDefault,
		Images:  make([]models.VehicleImage, 0, len(raw.Images)),
	}

	images := make([]models.ColorImage, len(raw.Images))
	copy(images, raw.Images)
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].DisplayOrder < images[j].DisplayOrder
	})

	for _, img := range images {
		if img.ID == "" {
			return models.VehicleColor{}, fmt.Errorf("%w: image without id on color %s", ErrMalformedRecord, raw.ID)
		}
		col.Images = append(col.Images, models.VehicleImage{
			ID:           img.ID,
			URL:          img.URL,
			DisplayOrder: img.DisplayOrder,
		})
	}
	return col, nil
}
