package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"vehicle-catalog/core/livesync"
	"vehicle-catalog/feature/catalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memFeed delivers events synchronously to table subscribers.
type memFeed struct {
	mu   sync.Mutex
	subs map[string][]livesync.EventFunc
}

func newMemFeed() *memFeed {
	return &memFeed{subs: make(map[string][]livesync.EventFunc)}
}

func (f *memFeed) Subscribe(_ context.Context, table, _ string, fn livesync.EventFunc) (livesync.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[table] = append(f.subs[table], fn)
	return memHandle{}, nil
}

func (f *memFeed) Emit(ev livesync.Event) {
	f.mu.Lock()
	fns := append([]livesync.EventFunc(nil), f.subs[ev.Table]...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

type memHandle struct{}

func (memHandle) Close() error { return nil }

func startService(t *testing.T, feed livesync.Feed, cfg Config) *Service {
	t.Helper()
	db := setupTestDB(t)
	seedCatalog(t, db)

	svc := NewService(db, feed, zap.NewNop(), cfg)
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestServiceStart_LoadsSnapshots(t *testing.T) {
	svc := startService(t, nil, Config{ActiveOnly: true})

	vehicles := svc.Vehicles()
	require.Len(t, vehicles, 1)
	assert.Equal(t, "car-1", vehicles[0].ID)
	assert.Equal(t, "Hyundai", vehicles[0].Brand)
	require.Len(t, vehicles[0].Versions, 2)

	assert.Len(t, svc.Brands(), 1)
	assert.Len(t, svc.Categories(), 1)
	assert.Len(t, svc.FuelTypes(), 1)

	for table, state := range svc.States() {
		assert.Equal(t, "ready", state, table)
	}
}

func TestServiceStart_SkipsMalformedRows(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	// A nameless car must not poison the snapshot.
	require.NoError(t, db.Create(&models.Car{ID: "car-bad", Active: true}).Error)

	svc := NewService(db, nil, zap.NewNop(), Config{ActiveOnly: true})
	require.NoError(t, svc.Start(context.Background()))
	defer svc.Close()

	vehicles := svc.Vehicles()
	require.Len(t, vehicles, 1)
	assert.Equal(t, "car-1", vehicles[0].ID)
}

func TestServiceRefresh_FailureKeepsResidentData(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)

	svc := NewService(db, nil, zap.NewNop(), Config{ActiveOnly: true})
	require.NoError(t, svc.Start(context.Background()))
	defer svc.Close()
	require.Len(t, svc.Vehicles(), 1)

	require.NoError(t, db.Migrator().DropTable(&models.Car{}))

	err := svc.RefreshVehicles(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	// The stale snapshot keeps serving.
	assert.Len(t, svc.Vehicles(), 1)
	assert.Equal(t, "ready", svc.States()[models.TableCars])
}

func TestServiceWatch_InsertAndDelete(t *testing.T) {
	feed := newMemFeed()
	svc := startService(t, feed, Config{ActiveOnly: true, Watch: true})
	db := svc.db

	require.NoError(t, db.Create(&models.Car{
		ID: "car-3", Name: "Creta", Active: true, BrandID: "b-1",
	}).Error)
	feed.Emit(livesync.Event{
		Op: livesync.OpInsert, Table: models.TableCars,
		Record: map[string]any{"id": "car-3"},
	})

	assert.Eventually(t, func() bool {
		_, ok := svc.Vehicle("car-3")
		return ok
	}, time.Second, 5*time.Millisecond)

	feed.Emit(livesync.Event{
		Op: livesync.OpDelete, Table: models.TableCars,
		Record: map[string]any{"id": "car-3"},
	})
	assert.Eventually(t, func() bool {
		_, ok := svc.Vehicle("car-3")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestServiceWatch_ChildEventRederivesParent(t *testing.T) {
	feed := newMemFeed()
	svc := startService(t, feed, Config{ActiveOnly: true, Watch: true})
	db := svc.db

	// Rename a trim level; the event carries only version columns.
	require.NoError(t, db.Model(&models.Version{}).
		Where("id = ?", "v-1").Update("name", "Base Renamed").Error)
	feed.Emit(livesync.Event{
		Op: livesync.OpUpdate, Table: models.TableVersions,
		Record: map[string]any{"id": "v-1", "car_id": "car-1"},
	})

	assert.Eventually(t, func() bool {
		v, ok := svc.Vehicle("car-1")
		return ok && len(v.Versions) > 0 && v.Versions[0].Name == "Base Renamed"
	}, time.Second, 5*time.Millisecond)
}

func TestServiceWatch_ColorEventResolvesChain(t *testing.T) {
	feed := newMemFeed()
	svc := startService(t, feed, Config{ActiveOnly: true, Watch: true})
	db := svc.db

	require.NoError(t, db.Create(&models.Color{
		ID: "col-2", VersionID: "v-2", Name: "Graphite",
	}).Error)
	feed.Emit(livesync.Event{
		Op: livesync.OpInsert, Table: models.TableColors,
		Record: map[string]any{"id": "col-2", "version_id": "v-2"},
	})

	assert.Eventually(t, func() bool {
		v, ok := svc.Vehicle("car-1")
		if !ok {
			return false
		}
		for _, ver := range v.Versions {
			for _, c := range ver.Colors {
				if c.ID == "col-2" {
					return true
				}
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}

func TestServiceWatch_DeactivationRemovesVehicle(t *testing.T) {
	feed := newMemFeed()
	svc := startService(t, feed, Config{ActiveOnly: true, Watch: true})
	db := svc.db

	_, ok := svc.Vehicle("car-1")
	require.True(t, ok)

	// Back-office unpublish arrives as a plain update; under active_only
	// the live view must converge to what a fresh snapshot would serve.
	require.NoError(t, db.Model(&models.Car{}).
		Where("id = ?", "car-1").Update("active", false).Error)
	feed.Emit(livesync.Event{
		Op: livesync.OpUpdate, Table: models.TableCars,
		Record: map[string]any{"id": "car-1"},
	})

	assert.Eventually(t, func() bool {
		_, ok := svc.Vehicle("car-1")
		return !ok
	}, time.Second, 5*time.Millisecond)

	// Republishing brings it back.
	require.NoError(t, db.Model(&models.Car{}).
		Where("id = ?", "car-1").Update("active", true).Error)
	feed.Emit(livesync.Event{
		Op: livesync.OpUpdate, Table: models.TableCars,
		Record: map[string]any{"id": "car-1"},
	})

	assert.Eventually(t, func() bool {
		_, ok := svc.Vehicle("car-1")
		return ok
	}, time.Second, 5*time.Millisecond)
}

func TestServiceClose_BlocksLateRefresh(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)

	svc := NewService(db, nil, zap.NewNop(), Config{ActiveOnly: true})
	require.NoError(t, svc.Start(context.Background()))
	require.Len(t, svc.Vehicles(), 1)
	require.NoError(t, svc.Close())

	// A refresh resolving after teardown must not touch the store or the
	// collections; with the table gone an unguarded reload would error.
	require.NoError(t, db.Migrator().DropTable(&models.Car{}))
	require.NoError(t, svc.RefreshVehicles(context.Background()))

	assert.Len(t, svc.Vehicles(), 1)
	assert.Equal(t, "ready", svc.States()[models.TableCars])
}

func TestServiceClose_BlocksLateBannerDrop(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	require.NoError(t, db.Create(&models.Banner{ID: "ban-1", Title: "Sale", Active: true}).Error)

	svc := NewService(db, nil, zap.NewNop(), Config{ActiveOnly: true})
	require.NoError(t, svc.Start(context.Background()))
	require.Len(t, svc.Banners(), 1)

	require.NoError(t, db.Model(&models.Banner{}).
		Where("id = ?", "ban-1").Update("active", false).Error)
	require.NoError(t, svc.Close())

	// A banner re-fetch resolving after Close must not mutate the
	// discarded collection.
	el, err := svc.fetchBanner(context.Background(), "ban-1")
	require.NoError(t, err)
	assert.Nil(t, el)
	assert.Len(t, svc.Banners(), 1)
}

func TestServiceWatch_BannerDeactivationRemoves(t *testing.T) {
	feed := newMemFeed()
	db := setupTestDB(t)
	seedCatalog(t, db)
	require.NoError(t, db.Create(&models.Banner{ID: "ban-1", Title: "Sale", Active: true}).Error)

	svc := NewService(db, feed, zap.NewNop(), Config{ActiveOnly: true, Watch: true})
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(func() { _ = svc.Close() })
	require.Len(t, svc.Banners(), 1)

	require.NoError(t, db.Model(&models.Banner{}).
		Where("id = ?", "ban-1").Update("active", false).Error)
	feed.Emit(livesync.Event{
		Op: livesync.OpUpdate, Table: models.TableBanners,
		Record: map[string]any{"id": "ban-1"},
	})

	assert.Eventually(t, func() bool {
		return len(svc.Banners()) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestServiceWatch_VanishedRecordSkipped(t *testing.T) {
	feed := newMemFeed()
	svc := startService(t, feed, Config{ActiveOnly: true, Watch: true})

	before := len(svc.Vehicles())
	feed.Emit(livesync.Event{
		Op: livesync.OpInsert, Table: models.TableCars,
		Record: map[string]any{"id": "ghost"},
	})

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, svc.Vehicles(), before)
}

func TestServiceCanonicalBrands(t *testing.T) {
	svc := startService(t, nil, Config{
		ActiveOnly:      true,
		CanonicalBrands: "Kia, Hyundai",
	})
	assert.Equal(t, []string{"Kia", "Hyundai"}, svc.CanonicalBrands())
}

func TestServiceCanonicalBrands_FallsBackToBrandOrder(t *testing.T) {
	svc := startService(t, nil, Config{ActiveOnly: true})
	assert.Equal(t, []string{"Hyundai"}, svc.CanonicalBrands())
}
