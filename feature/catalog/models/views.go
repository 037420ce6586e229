package models

import "time"

// Vehicle is the flattened storefront projection of a car joined with its
// brand, category, fuel type and version tree. Produced by the adapter,
// held in the live collection, treated as immutable by consumers.
type Vehicle struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Year      int      `json:"year,omitempty"`
	Brand     string   `json:"brand,omitempty"`
	BrandLogo string   `json:"brand_logo,omitempty"`
	Category  string   `json:"category,omitempty"`
	FuelType  string   `json:"fuel_type,omitempty"`
	Active    bool     `json:"active"`
	BasePrice *float64 `json:"base_price,omitempty"`

	// Versions are ordered by display_order (stable on ties).
	Versions []VehicleVersion `json:"versions"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VehicleVersion is one trim level.
type VehicleVersion struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Price        *float64 `json:"price,omitempty"`
	DisplayOrder int      `json:"display_order"`

	// Colors keep their source order except the default color, which is
	// always first.
	Colors []VehicleColor `json:"colors"`
}

// VehicleColor is one paint option of a version.
type VehicleColor struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Hex     string `json:"hex,omitempty"`
	Default bool   `json:"default"`

	// Images are ordered by display_order ascending.
	Images []VehicleImage `json:"images"`
}

// VehicleImage is one gallery image of a color.
type VehicleImage struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	DisplayOrder int    `json:"display_order"`
}
