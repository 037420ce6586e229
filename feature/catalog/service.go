package catalog

import (
	"context"
	"fmt"
	"io"
	"sync"

	"vehicle-catalog/core/livesync"
	"vehicle-catalog/feature/catalog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service is the single owner of the catalog's live collections. All
// mutations flow through it (snapshot refreshes and feed watchers);
// handlers and composers only ever read snapshots.
type Service struct {
	db     *gorm.DB
	feed   livesync.Feed
	logger *zap.Logger
	cfg    Config

	vehicles   *livesync.Collection[models.Vehicle]
	brands     *livesync.Collection[models.Brand]
	categories *livesync.Collection[models.Category]
	fuels      *livesync.Collection[models.FuelType]
	banners    *livesync.Collection[models.Banner]
	users      *livesync.Collection[models.User]

	refresher livesync.Refresher
	watchers  []io.Closer

	mu     sync.Mutex
	closed bool
}

// NewService creates a catalog service. feed may be nil, in which case
// the collections serve the startup snapshot until an explicit refresh.
func NewService(db *gorm.DB, feed livesync.Feed, logger *zap.Logger, cfg Config) *Service {
	return &Service{
		db:     db,
		feed:   feed,
		logger: logger,
		cfg:    cfg,
		vehicles: livesync.NewCollection(func(a, b models.Vehicle) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		}),
		brands: livesync.NewCollection(func(a, b models.Brand) bool {
			if a.DisplayOrder != b.DisplayOrder {
				return a.DisplayOrder < b.DisplayOrder
			}
			return a.Name < b.Name
		}),
		categories: livesync.NewCollection(func(a, b models.Category) bool {
			return a.Name < b.Name
		}),
		fuels: livesync.NewCollection(func(a, b models.FuelType) bool {
			return a.Name < b.Name
		}),
		banners: livesync.NewCollection(func(a, b models.Banner) bool {
			if a.DisplayOrder != b.DisplayOrder {
				return a.DisplayOrder < b.DisplayOrder
			}
			return a.ID < b.ID
		}),
		users: livesync.NewCollection(func(a, b models.User) bool {
			return a.Email < b.Email
		}),
	}
}

// Start loads the initial snapshots and, when a feed is configured,
// subscribes the change-feed watchers.
func (s *Service) Start(ctx context.Context) error {
	if err := s.RefreshAll(ctx); err != nil {
		return err
	}
	if s.feed == nil || !s.cfg.Watch {
		s.logger.Warn("Change feed disabled, catalog serves startup snapshot only")
		return nil
	}
	return s.watch(ctx)
}

// Close tears down every watcher. After Close returns no feed event, no
// in-flight re-fetch and no pending refresh mutates the collections.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	var first error
	for _, w := range s.watchers {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	s.watchers = nil
	return first
}

func (s *Service) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// RefreshAll reloads every collection from a full snapshot. A failed
// refresh leaves the affected resident collection intact.
func (s *Service) RefreshAll(ctx context.Context) error {
	refreshes := []func(context.Context) error{
		s.RefreshVehicles,
		s.RefreshBrands,
		s.RefreshCategories,
		s.RefreshFuelTypes,
		s.RefreshBanners,
		s.RefreshUsers,
	}
	for _, refresh := range refreshes {
		if err := refresh(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RefreshVehicles reloads the vehicle collection. Concurrent calls share
// one underlying fetch.
func (s *Service) RefreshVehicles(ctx context.Context) error {
	return s.refresher.Refresh(ctx, models.TableCars, func(ctx context.Context) error {
		// A refresh resolving after Close must not touch the discarded
		// collections.
		if s.isClosed() {
			return nil
		}
		s.vehicles.BeginLoad()
		cars, err := LoadCars(ctx, s.db, s.cfg.ActiveOnly)
		if err != nil {
			s.vehicles.AbortLoad()
			return err
		}
		elems := make([]livesync.Element[models.Vehicle], 0, len(cars))
		for _, car := range cars {
			view, err := AdaptCar(car)
			if err != nil {
				// A malformed row never enters the collection; the rest of
				// the snapshot stays usable.
				s.logger.Warn("Skipping malformed car record", zap.String("id", car.ID), zap.Error(err))
				continue
			}
			elems = append(elems, livesync.Element[models.Vehicle]{
				ID:      view.ID,
				Version: view.UpdatedAt.UnixNano(),
				Item:    view,
			})
		}
		s.vehicles.ReplaceAll(elems)
		return nil
	})
}

// RefreshBrands reloads the brand collection.
func (s *Service) RefreshBrands(ctx context.Context) error {
	return s.refresher.Refresh(ctx, models.TableBrands, func(ctx context.Context) error {
		if s.isClosed() {
			return nil
		}
		s.brands.BeginLoad()
		brands, err := LoadBrands(ctx, s.db)
		if err != nil {
			s.brands.AbortLoad()
			return err
		}
		elems := make([]livesync.Element[models.Brand], 0, len(brands))
		for _, b := range brands {
			elems = append(elems, livesync.Element[models.Brand]{ID: b.ID, Version: b.UpdatedAt.UnixNano(), Item: b})
		}
		s.brands.ReplaceAll(elems)
		return nil
	})
}

// RefreshCategories reloads the category collection.
func (s *Service) RefreshCategories(ctx context.Context) error {
	return s.refresher.Refresh(ctx, models.TableCategories, func(ctx context.Context) error {
		if s.isClosed() {
			return nil
		}
		s.categories.BeginLoad()
		cats, err := LoadCategories(ctx, s.db)
		if err != nil {
			s.categories.AbortLoad()
			return err
		}
		elems := make([]livesync.Element[models.Category], 0, len(cats))
		for _, c := range cats {
			elems = append(elems, livesync.Element[models.Category]{ID: c.ID, Version: c.UpdatedAt.UnixNano(), Item: c})
		}
		s.categories.ReplaceAll(elems)
		return nil
	})
}

// RefreshFuelTypes reloads the fuel-type collection.
func (s *Service) RefreshFuelTypes(ctx context.Context) error {
	return s.refresher.Refresh(ctx, models.TableFuelTypes, func(ctx context.Context) error {
		if s.isClosed() {
			return nil
		}
		s.fuels.BeginLoad()
		fuels, err := LoadFuelTypes(ctx, s.db)
		if err != nil {
			s.fuels.AbortLoad()
			return err
		}
		elems := make([]livesync.Element[models.FuelType], 0, len(fuels))
		for _, f := range fuels {
			elems = append(elems, livesync.Element[models.FuelType]{ID: f.ID, Version: f.UpdatedAt.UnixNano(), Item: f})
		}
		s.fuels.ReplaceAll(elems)
		return nil
	})
}

// RefreshBanners reloads the banner collection.
func (s *Service) RefreshBanners(ctx context.Context) error {
	return s.refresher.Refresh(ctx, models.TableBanners, func(ctx context.Context) error {
		if s.isClosed() {
			return nil
		}
		s.banners.BeginLoad()
		banners, err := LoadBanners(ctx, s.db, s.cfg.ActiveOnly)
		if err != nil {
			s.banners.AbortLoad()
			return err
		}
		elems := make([]livesync.Element[models.Banner], 0, len(banners))
		for _, b := range banners {
			elems = append(elems, livesync.Element[models.Banner]{ID: b.ID, Version: b.UpdatedAt.UnixNano(), Item: b})
		}
		s.banners.ReplaceAll(elems)
		return nil
	})
}

// RefreshUsers reloads the back-office user collection.
func (s *Service) RefreshUsers(ctx context.Context) error {
	return s.refresher.Refresh(ctx, models.TableUsers, func(ctx context.Context) error {
		if s.isClosed() {
			return nil
		}
		s.users.BeginLoad()
		users, err := LoadUsers(ctx, s.db)
		if err != nil {
			s.users.AbortLoad()
			return err
		}
		elems := make([]livesync.Element[models.User], 0, len(users))
		for _, u := range users {
			elems = append(elems, livesync.Element[models.User]{ID: u.ID, Version: u.UpdatedAt.UnixNano(), Item: u})
		}
		s.users.ReplaceAll(elems)
		return nil
	})
}

// watch subscribes every watched table. The vehicle collection gets one
// watcher per table of its join tree: version/color/image events carry
// only their own flat columns, so each is treated as a signal to
// re-derive the parent car.
func (s *Service) watch(ctx context.Context) error {
	type sub struct {
		name  string
		start func() (io.Closer, error)
	}
	subs := []sub{
		{models.TableCars, func() (io.Closer, error) {
			return livesync.Watch(ctx, s.feed, models.TableCars, "", s.vehicles, s.fetchVehicle, s.RefreshVehicles, s.logger)
		}},
		{models.TableVersions, func() (io.Closer, error) {
			return livesync.WatchChild(ctx, s.feed, models.TableVersions, "", "car_id", s.vehicles, s.fetchVehicle, s.RefreshVehicles, s.logger)
		}},
		{models.TableColors, func() (io.Closer, error) {
			return livesync.WatchChild(ctx, s.feed, models.TableColors, "", "version_id", s.vehicles, s.fetchVehicleByVersion, s.RefreshVehicles, s.logger)
		}},
		{models.TableColorImages, func() (io.Closer, error) {
			return livesync.WatchChild(ctx, s.feed, models.TableColorImages, "", "color_id", s.vehicles, s.fetchVehicleByColor, s.RefreshVehicles, s.logger)
		}},
		{models.TableBrands, func() (io.Closer, error) {
			return livesync.Watch(ctx, s.feed, models.TableBrands, "", s.brands, s.fetchBrand, s.RefreshBrands, s.logger)
		}},
		{models.TableCategories, func() (io.Closer, error) {
			return livesync.Watch(ctx, s.feed, models.TableCategories, "", s.categories, s.fetchCategory, s.RefreshCategories, s.logger)
		}},
		{models.TableFuelTypes, func() (io.Closer, error) {
			return livesync.Watch(ctx, s.feed, models.TableFuelTypes, "", s.fuels, s.fetchFuelType, s.RefreshFuelTypes, s.logger)
		}},
		{models.TableBanners, func() (io.Closer, error) {
			return livesync.Watch(ctx, s.feed, models.TableBanners, "", s.banners, s.fetchBanner, s.RefreshBanners, s.logger)
		}},
		{models.TableUsers, func() (io.Closer, error) {
			return livesync.Watch(ctx, s.feed, models.TableUsers, "", s.users, s.fetchUser, s.RefreshUsers, s.logger)
		}},
	}

	for _, sb := range subs {
		w, err := sb.start()
		if err != nil {
			_ = s.Close()
			return fmt.Errorf("failed to watch %s: %w", sb.name, err)
		}
		s.watchers = append(s.watchers, w)
	}
	s.logger.Info("Catalog watchers started", zap.Int("tables", len(subs)))
	return nil
}

// fetchVehicle re-derives one car through the loader+adapter path.
func (s *Service) fetchVehicle(ctx context.Context, id string) (*livesync.Element[models.Vehicle], error) {
	car, err := GetCar(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if car == nil {
		return nil, nil
	}
	view, err := AdaptCar(*car)
	if err != nil {
		return nil, err
	}
	if s.cfg.ActiveOnly && !view.Active {
		// Unpublishing hides the car from the storefront. The snapshot
		// load filters on active, so the live path must converge to the
		// same set.
		s.dropVehicle(view.ID)
		return nil, nil
	}
	return &livesync.Element[models.Vehicle]{
		ID:      view.ID,
		Version: view.UpdatedAt.UnixNano(),
		Item:    view,
	}, nil
}

// dropVehicle removes a vehicle unless the service is already torn down.
func (s *Service) dropVehicle(id string) {
	if s.isClosed() {
		return
	}
	s.vehicles.ApplyDelete(id)
}

// kickVehicleRefresh reloads the vehicle collection in the background.
// Lookup-table renames are denormalized into every vehicle view, so a
// brand/category/fuel change converges all views through one coalesced
// snapshot reload instead of waiting for per-car events.
func (s *Service) kickVehicleRefresh(reason string) {
	if s.isClosed() {
		return
	}
	go func() {
		if err := s.RefreshVehicles(context.Background()); err != nil {
			s.logger.Warn("Vehicle refresh failed", zap.String("after", reason), zap.Error(err))
		}
	}()
}

// fetchVehicleByVersion resolves a version identity to its parent car and
// re-derives that car. A broken chain (version already gone) is treated
// as "record vanished" and skipped.
func (s *Service) fetchVehicleByVersion(ctx context.Context, versionID string) (*livesync.Element[models.Vehicle], error) {
	carID, err := GetVersionCarID(ctx, s.db, versionID)
	if err != nil {
		return nil, err
	}
	if carID == "" {
		return nil, nil
	}
	return s.fetchVehicle(ctx, carID)
}

// fetchVehicleByColor resolves a color identity up the chain to its car.
func (s *Service) fetchVehicleByColor(ctx context.Context, colorID string) (*livesync.Element[models.Vehicle], error) {
	carID, err := GetColorCarID(ctx, s.db, colorID)
	if err != nil {
		return nil, err
	}
	if carID == "" {
		return nil, nil
	}
	return s.fetchVehicle(ctx, carID)
}

func (s *Service) fetchBrand(ctx context.Context, id string) (*livesync.Element[models.Brand], error) {
	brand, err := GetBrand(ctx, s.db, id)
	if err != nil || brand == nil {
		return nil, err
	}
	s.kickVehicleRefresh("brand change")
	return &livesync.Element[models.Brand]{ID: brand.ID, Version: brand.UpdatedAt.UnixNano(), Item: *brand}, nil
}

func (s *Service) fetchCategory(ctx context.Context, id string) (*livesync.Element[models.Category], error) {
	cat, err := GetCategory(ctx, s.db, id)
	if err != nil || cat == nil {
		return nil, err
	}
	s.kickVehicleRefresh("category change")
	return &livesync.Element[models.Category]{ID: cat.ID, Version: cat.UpdatedAt.UnixNano(), Item: *cat}, nil
}

func (s *Service) fetchFuelType(ctx context.Context, id string) (*livesync.Element[models.FuelType], error) {
	fuel, err := GetFuelType(ctx, s.db, id)
	if err != nil || fuel == nil {
		return nil, err
	}
	s.kickVehicleRefresh("fuel type change")
	return &livesync.Element[models.FuelType]{ID: fuel.ID, Version: fuel.UpdatedAt.UnixNano(), Item: *fuel}, nil
}

func (s *Service) fetchBanner(ctx context.Context, id string) (*livesync.Element[models.Banner], error) {
	banner, err := GetBanner(ctx, s.db, id)
	if err != nil || banner == nil {
		return nil, err
	}
	if s.cfg.ActiveOnly && !banner.Active {
		// Deactivation hides the banner from the storefront collection.
		s.dropBanner(banner.ID)
		return nil, nil
	}
	return &livesync.Element[models.Banner]{ID: banner.ID, Version: banner.UpdatedAt.UnixNano(), Item: *banner}, nil
}

// dropBanner removes a banner unless the service is already torn down.
func (s *Service) dropBanner(id string) {
	if s.isClosed() {
		return
	}
	s.banners.ApplyDelete(id)
}

func (s *Service) fetchUser(ctx context.Context, id string) (*livesync.Element[models.User], error) {
	user, err := GetUser(ctx, s.db, id)
	if err != nil || user == nil {
		return nil, err
	}
	return &livesync.Element[models.User]{ID: user.ID, Version: user.UpdatedAt.UnixNano(), Item: *user}, nil
}

// Vehicles returns the current ordered vehicle snapshot. Read-only.
func (s *Service) Vehicles() []models.Vehicle { return s.vehicles.Snapshot() }

// Vehicle returns one vehicle by identity.
func (s *Service) Vehicle(id string) (models.Vehicle, bool) { return s.vehicles.Get(id) }

// Brands returns the current ordered brand snapshot.
func (s *Service) Brands() []models.Brand { return s.brands.Snapshot() }

// Categories returns the current ordered category snapshot.
func (s *Service) Categories() []models.Category { return s.categories.Snapshot() }

// FuelTypes returns the current ordered fuel-type snapshot.
func (s *Service) FuelTypes() []models.FuelType { return s.fuels.Snapshot() }

// Banners returns the current ordered banner snapshot.
func (s *Service) Banners() []models.Banner { return s.banners.Snapshot() }

// Users returns the current back-office user snapshot.
func (s *Service) Users() []models.User { return s.users.Snapshot() }

// CanonicalBrands returns the dealer-curated brand order for grouping:
// the configured list when present, otherwise the brands collection's
// display order.
func (s *Service) CanonicalBrands() []string {
	if list := s.cfg.CanonicalBrandList(); len(list) > 0 {
		return list
	}
	brands := s.brands.Snapshot()
	names := make([]string, 0, len(brands))
	for _, b := range brands {
		names = append(names, b.Name)
	}
	return names
}

// States reports each collection's lifecycle state, for the health
// endpoint ("data may be out of date" indicator).
func (s *Service) States() map[string]string {
	return map[string]string{
		models.TableCars:       s.vehicles.State().String(),
		models.TableBrands:     s.brands.State().String(),
		models.TableCategories: s.categories.State().String(),
		models.TableFuelTypes:  s.fuels.State().String(),
		models.TableBanners:    s.banners.State().String(),
		models.TableUsers:      s.users.State().String(),
	}
}
