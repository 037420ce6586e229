// Package compose derives read-only storefront projections from live
// collection snapshots. Every function is pure and stateless: projections
// are re-derivable at any time from current snapshots alone.
package compose

import (
	"sort"

	"vehicle-catalog/feature/catalog/models"
)

// UnknownBrand is the fallback group for vehicles without a brand name.
// Elements lacking a groupable field are bucketed here, never dropped:
// silent dropping is invisible data loss in a catalog UI.
const UnknownBrand = "Other"

// BrandGroup is one brand's subsequence of vehicles.
type BrandGroup struct {
	Brand    string           `json:"brand"`
	Vehicles []models.Vehicle `json:"vehicles"`
}

// GroupByBrand groups vehicles by brand name. Group order follows the
// canonical (dealer-curated) list for known brands; unrecognized brands
// are appended in first-seen order. Canonical brands without vehicles are
// omitted. The fallback group, if any, comes last.
func GroupByBrand(vehicles []models.Vehicle, canonical []string) []BrandGroup {
	byBrand := make(map[string][]models.Vehicle)
	var firstSeen []string
	known := make(map[string]bool, len(canonical))
	for _, name := range canonical {
		known[name] = true
	}

	hasUnknown := false
	for _, v := range vehicles {
		name := v.Brand
		if name == "" {
			name = UnknownBrand
			hasUnknown = true
		}
		if _, seen := byBrand[name]; !seen && !known[name] && name != UnknownBrand {
			firstSeen = append(firstSeen, name)
		}
		byBrand[name] = append(byBrand[name], v)
	}

	groups := make([]BrandGroup, 0, len(byBrand))
	for _, name := range canonical {
		if vs, ok := byBrand[name]; ok {
			groups = append(groups, BrandGroup{Brand: name, Vehicles: vs})
		}
	}
	for _, name := range firstSeen {
		groups = append(groups, BrandGroup{Brand: name, Vehicles: byBrand[name]})
	}
	if hasUnknown {
		groups = append(groups, BrandGroup{Brand: UnknownBrand, Vehicles: byBrand[UnknownBrand]})
	}
	return groups
}

// Facet is a filterable vehicle attribute.
type Facet string

const (
	FacetBrand    Facet = "brand"
	FacetCategory Facet = "category"
	FacetFuel     Facet = "fuel"
)

// UnknownFacetValue buckets vehicles missing the subject attribute.
const UnknownFacetValue = "unknown"

// Filters is the set of active storefront filters.
type Filters struct {
	Brands     []string
	Categories []string
	FuelTypes  []string
	MinPrice   *float64
	MaxPrice   *float64
}

// Option is one facet value with its result count, shaped for the
// storefront filter sidebar.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Apply returns the vehicles matching all active filters.
func Apply(vehicles []models.Vehicle, active Filters) []models.Vehicle {
	out := make([]models.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if matches(v, active, "") {
			out = append(out, v)
		}
	}
	return out
}

// FacetCounts computes, for every value of the subject facet, how many
// vehicles would be visible with that value selected. The counts honor
// all *other* active filters; the subject facet's own current selection
// is ignored, so the user sees what selecting another value of the same
// facet would yield.
func FacetCounts(vehicles []models.Vehicle, active Filters, subject Facet) map[string]int {
	counts := make(map[string]int)
	for _, v := range vehicles {
		if !matches(v, active, subject) {
			continue
		}
		value := facetValue(v, subject)
		if value == "" {
			value = UnknownFacetValue
		}
		counts[value]++
	}
	return counts
}

// FacetOptions converts a count map to a deterministic option list,
// sorted by descending count, ties by value.
func FacetOptions(counts map[string]int) []Option {
	opts := make([]Option, 0, len(counts))
	for value, count := range counts {
		opts = append(opts, Option{Label: value, Value: value, Count: count})
	}
	sort.Slice(opts, func(i, j int) bool {
		if opts[i].Count != opts[j].Count {
			return opts[i].Count > opts[j].Count
		}
		return opts[i].Value < opts[j].Value
	})
	return opts
}

// PriceRange is the min/max base price across a vehicle set.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PriceBounds returns the base-price range of the set, skipping vehicles
// without a price. Nil when no vehicle carries a price.
func PriceBounds(vehicles []models.Vehicle) *PriceRange {
	var r *PriceRange
	for _, v := range vehicles {
		if v.BasePrice == nil {
			continue
		}
		p := *v.BasePrice
		if r == nil {
			r = &PriceRange{Min: p, Max: p}
			continue
		}
		if p < r.Min {
			r.Min = p
		}
		if p > r.Max {
			r.Max = p
		}
	}
	return r
}

// matches reports whether v passes the active filters, ignoring the
// excluded facet's selection (empty excludes nothing).
func matches(v models.Vehicle, active Filters, exclude Facet) bool {
	if exclude != FacetBrand && !valueSelected(v.Brand, active.Brands) {
		return false
	}
	if exclude != FacetCategory && !valueSelected(v.Category, active.Categories) {
		return false
	}
	if exclude != FacetFuel && !valueSelected(v.FuelType, active.FuelTypes) {
		return false
	}
	if active.MinPrice != nil && (v.BasePrice == nil || *v.BasePrice < *active.MinPrice) {
		return false
	}
	if active.MaxPrice != nil && (v.BasePrice == nil || *v.BasePrice > *active.MaxPrice) {
		return false
	}
	return true
}

// valueSelected reports whether value passes a selection list; an empty
// list selects everything.
func valueSelected(value string, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, s := range selected {
		if s == value {
			return true
		}
	}
	return false
}

func facetValue(v models.Vehicle, f Facet) string {
	switch f {
	case FacetBrand:
		return v.Brand
	case FacetCategory:
		return v.Category
	case FacetFuel:
		return v.FuelType
	default:
		return ""
	}
}
