package catalog

import (
	"context"
	"errors"
	"fmt"

	"vehicle-catalog/feature/catalog/models"

	"gorm.io/gorm"
)

// sourceErr wraps a store failure so callers can match ErrSourceUnavailable.
func sourceErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrSourceUnavailable, err)
}

// carJoins attaches every association the adapter flattens. Nested
// collections come back pre-ordered; the adapter re-sorts anyway, so the
// ordering invariant never depends on the store.
func carJoins(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Brand").
		Preload("Category").
		Preload("FuelType").
		Preload("Versions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("display_order ASC")
		}).
		Preload("Versions.Colors").
		Preload("Versions.Colors.Images", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("display_order ASC")
		})
}

// LoadCars fetches the full current set of cars, fully joined.
func LoadCars(ctx context.Context, db *gorm.DB, activeOnly bool) ([]models.Car, error) {
	var cars []models.Car
	q := carJoins(db.WithContext(ctx))
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Find(&cars).Error; err != nil {
		return nil, sourceErr("load cars", err)
	}
	return cars, nil
}

// GetCar fetches a single fully joined car. Returns (nil, nil) when the
// record does not exist (vanished between event and fetch).
func GetCar(ctx context.Context, db *gorm.DB, id string) (*models.Car, error) {
	var car models.Car
	err := carJoins(db.WithContext(ctx)).Where("id = ?", id).First(&car).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, sourceErr("get car", err)
	}
	return &car, nil
}

// GetVersionCarID resolves a version's parent car identity. Returns ""
// when the version no longer exists.
func GetVersionCarID(ctx context.Context, db *gorm.DB, versionID string) (string, error) {
	var ver models.Version
	err := db.WithContext(ctx).Select("id", "car_id").Where("id = ?", versionID).First(&ver).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", sourceErr("get version", err)
	}
	return ver.CarID, nil
}

// GetColorCarID resolves a color's grandparent car identity via its
// version. Returns "" when the chain is broken (color or version gone).
func GetColorCarID(ctx context.Context, db *gorm.DB, colorID string) (string, error) {
	var color models.Color
	err := db.WithContext(ctx).Select("id", "version_id").Where("id = ?", colorID).First(&color).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", sourceErr("get color", err)
	}
	return GetVersionCarID(ctx, db, color.VersionID)
}

// LoadBrands fetches all brands.
func LoadBrands(ctx context.Context, db *gorm.DB) ([]models.Brand, error) {
	var brands []models.Brand
	if err := db.WithContext(ctx).Order("display_order ASC").Find(&brands).Error; err != nil {
		return nil, sourceErr("load brands", err)
	}
	return brands, nil
}

// GetBrand fetches a single brand; (nil, nil) on not-found.
func GetBrand(ctx context.Context, db *gorm.DB, id string) (*models.Brand, error) {
	var brand models.Brand
	err := db.WithContext(ctx).Where("id = ?", id).First(&brand).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, sourceErr("get brand", err)
	}
	return &brand, nil
}

// LoadCategories fetches all categories.
func LoadCategories(ctx context.Context, db *gorm.DB) ([]models.Category, error) {
	var cats []models.Category
	if err := db.WithContext(ctx).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, sourceErr("load categories", err)
	}
	return cats, nil
}

// GetCategory fetches a single category; (nil, nil) on not-found.
func GetCategory(ctx context.Context, db *gorm.DB, id string) (*models.Category, error) {
	var cat models.Category
	err := db.WithContext(ctx).Where("id = ?", id).First(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, sourceErr("get category", err)
	}
	return &cat, nil
}

// LoadFuelTypes fetches all fuel types.
func LoadFuelTypes(ctx context.Context, db *gorm.DB) ([]models.FuelType, error) {
	var fuels []models.FuelType
	if err := db.WithContext(ctx).Order("name ASC").Find(&fuels).Error; err != nil {
		return nil, sourceErr("load fuel types", err)
	}
	return fuels, nil
}

// GetFuelType fetches a single fuel type; (nil, nil) on not-found.
func GetFuelType(ctx context.Context, db *gorm.DB, id string) (*models.FuelType, error) {
	var fuel models.FuelType
	err := db.WithContext(ctx).Where("id = ?", id).First(&fuel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, sourceErr("get fuel type", err)
	}
	return &fuel, nil
}

// LoadBanners fetches all banners, optionally active only.
func LoadBanners(ctx context.Context, db *gorm.DB, activeOnly bool) ([]models.Banner, error) {
	var banners []models.Banner
	q := db.WithContext(ctx).Order("display_order ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Find(&banners).Error; err != nil {
		return nil, sourceErr("load banners", err)
	}
	return banners, nil
}

// GetBanner fetches a single banner; (nil, nil) on not-found.
func GetBanner(ctx context.Context, db *gorm.DB, id string) (*models.Banner, error) {
	var banner models.Banner
	err := db.WithContext(ctx).Where("id = ?", id).First(&banner).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, sourceErr("get banner", err)
	}
	return &banner, nil
}

// LoadUsers fetches all back-office users.
func LoadUsers(ctx context.Context, db *gorm.DB) ([]models.User, error) {
	var users []models.User
	if err := db.WithContext(ctx).Order("email ASC").Find(&users).Error; err != nil {
		return nil, sourceErr("load users", err)
	}
	return users, nil
}

// GetUser fetches a single user; (nil, nil) on not-found.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, sourceErr("get user", err)
	}
	return &user, nil
}
