// Package catalog implements the vehicle catalog feature.
//
// It owns the live, in-memory view of the dealership's catalog: vehicles
// (with their versions, colors and images flattened into view models),
// brands, categories, fuel types, banners and back-office users. Each
// entity type is held in a livesync.Collection populated from a snapshot
// query and maintained by change-feed watchers.
//
// The package splits into:
//   - models:  GORM row types and the flattened view models
//   - adapter: pure joined-row -> view-model transform with the ordering rules
//   - db_load: snapshot and single-record fetches (GORM preload joins)
//   - service: collection ownership, watcher wiring, refresh
//   - compose: derived projections (brand groups, filter facets)
//   - handler: the storefront HTTP surface
package catalog
