package models

import "time"

// Watched tables, in parent-before-child order. Used for trigger
// installation and feed subscriptions.
var WatchedTables = []string{
	TableBrands,
	TableCategories,
	TableFuelTypes,
	TableCars,
	TableVersions,
	TableColors,
	TableColorImages,
	TableBanners,
	TableUsers,
}

// Table names of the catalog schema.
const (
	TableCars        = "cars"
	TableBrands      = "brands"
	TableCategories  = "categories"
	TableFuelTypes   = "fuel_types"
	TableVersions    = "versions"
	TableColors      = "colors"
	TableColorImages = "color_images"
	TableBanners     = "banners"
	TableUsers       = "users"
)

// Brand represents the 'brands' table.
type Brand struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name"`
	LogoURL      string    `gorm:"column:logo_url"`
	DisplayOrder int       `gorm:"column:display_order"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

// TableName overrides the table name for GORM.
func (Brand) TableName() string { return TableBrands }

// Category represents the 'categories' table (SUV, sedan, pickup...).
type Category struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Category) TableName() string { return TableCategories }

// FuelType represents the 'fuel_types' table.
type FuelType struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (FuelType) TableName() string { return TableFuelTypes }

// Car represents the 'cars' table plus its joined associations.
// Price columns are declared as strings: the store keeps them as numeric
// text (legacy import format) and the adapter coerces them.
type Car struct {
	ID         string `gorm:"column:id;primaryKey"`
	Name       string `gorm:"column:name"`
	Year       int    `gorm:"column:year"`
	BasePrice  string `gorm:"column:base_price"`
	Active     bool   `gorm:"column:active"`
	BrandID    string `gorm:"column:brand_id"`
	CategoryID string `gorm:"column:category_id"`
	FuelTypeID string `gorm:"column:fuel_type_id"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`

	Brand    *Brand    `gorm:"foreignKey:BrandID"`
	Category *Category `gorm:"foreignKey:CategoryID"`
	FuelType *FuelType `gorm:"foreignKey:FuelTypeID"`
	Versions []Version `gorm:"foreignKey:CarID"`
}

func (Car) TableName() string { return TableCars }

// Version represents the 'versions' table (trim levels of a car).
type Version struct {
	ID           string `gorm:"column:id;primaryKey"`
	CarID        string `gorm:"column:car_id"`
	Name         string `gorm:"column:name"`
	Price        string `gorm:"column:price"`
	DisplayOrder int    `gorm:"column:display_order"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`

	Colors []Color `gorm:"foreignKey:VersionID"`
}

func (Version) TableName() string { return TableVersions }

// Color represents the 'colors' table (paint options of a version).
type Color struct {
	ID        string `gorm:"column:id;primaryKey"`
	VersionID string `gorm:"column:version_id"`
	Name      string `gorm:"column:name"`
	Hex       string `gorm:"column:hex"`
	IsDefault bool   `gorm:"column:is_default"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`

	Images []ColorImage `gorm:"foreignKey:ColorID"`
}

func (Color) TableName() string { return TableColors }

// ColorImage represents the 'color_images' table (gallery shots of a
// color, ordered by display_order).
type ColorImage struct {
	ID           string `gorm:"column:id;primaryKey"`
	ColorID      string `gorm:"column:color_id"`
	URL          string `gorm:"column:url"`
	DisplayOrder int    `gorm:"column:display_order"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (ColorImage) TableName() string { return TableColorImages }

// Banner represents the 'banners' table (storefront hero images).
type Banner struct {
	ID           string `gorm:"column:id;primaryKey"`
	Title        string `gorm:"column:title"`
	ImageURL     string `gorm:"column:image_url"`
	LinkURL      string `gorm:"column:link_url"`
	DisplayOrder int    `gorm:"column:display_order"`
	Active       bool   `gorm:"column:active"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Banner) TableName() string { return TableBanners }

// User represents the 'users' table (back-office accounts).
type User struct {
	ID       string `gorm:"column:id;primaryKey"`
	Email    string `gorm:"column:email"`
	FullName string `gorm:"column:full_name"`
	Role     string `gorm:"column:role"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (User) TableName() string { return TableUsers }
