package catalog

import "strings"

// Config holds configuration for the catalog feature.
type Config struct {
	// CanonicalBrands is a comma-separated, dealer-curated brand order for
	// storefront grouping. Brands not listed are appended in first-seen
	// order. If empty, the brands table's display_order is used.
	CanonicalBrands string `mapstructure:"canonical_brands" default:""`
	// ActiveOnly restricts the storefront to active vehicles and banners.
	ActiveOnly bool `mapstructure:"active_only" default:"true"`
	// Watch enables the change-feed subscriptions. Without it the catalog
	// serves the startup snapshot until an explicit refresh.
	Watch bool `mapstructure:"watch" default:"true"`
}

// CanonicalBrandList parses CanonicalBrands into a trimmed slice.
func (c Config) CanonicalBrandList() []string {
	if strings.TrimSpace(c.CanonicalBrands) == "" {
		return nil
	}
	parts := strings.Split(c.CanonicalBrands, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			out = append(out, name)
		}
	}
	return out
}
