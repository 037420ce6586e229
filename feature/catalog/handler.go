package catalog

import (
	"strings"

	"vehicle-catalog/core/logger"
	"vehicle-catalog/core/utils"
	"vehicle-catalog/feature/catalog/compose"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the vehicle catalog. Every read is
// served from the in-memory collections; no request touches the store.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the public catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/catalog")
	group.Get("/vehicles", h.HandleListVehicles)
	group.Get("/vehicles/grouped", h.HandleGroupedVehicles)
	group.Get("/vehicles/:id", h.HandleGetVehicle)
	group.Get("/facets", h.HandleFacets)
	group.Get("/filters", h.HandleFilters)
	group.Get("/banners", h.HandleListBanners)
	group.Get("/status", h.HandleStatus)
}

// RegisterAdminRoutes registers the back-office catalog routes.
func (h *Handler) RegisterAdminRoutes(admin fiber.Router) {
	group := admin.Group("/catalog")
	group.Post("/refresh", h.HandleRefresh)
	group.Get("/users", h.HandleListUsers)
}

// parseFilters reads the shared filter query parameters. List parameters
// take comma-separated values.
func parseFilters(c *fiber.Ctx) compose.Filters {
	return compose.Filters{
		Brands:     splitCSV(c.Query("brand")),
		Categories: splitCSV(c.Query("category")),
		FuelTypes:  splitCSV(c.Query("fuel")),
		MinPrice:   utils.ToFloatPtr(c.Query("min_price")),
		MaxPrice:   utils.ToFloatPtr(c.Query("max_price")),
	}
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// HandleListVehicles returns the filtered vehicle list.
// @Summary List Vehicles
// @Description List catalog vehicles, optionally filtered by brand, category, fuel type and price range.
// @Tags catalog
// @Produce json
// @Param brand query string false "Comma-separated brand names"
// @Param category query string false "Comma-separated category names"
// @Param fuel query string false "Comma-separated fuel type names"
// @Param min_price query number false "Minimum base price"
// @Param max_price query number false "Maximum base price"
// @Success 200 {array} models.Vehicle "Vehicles"
// @Router /catalog/vehicles [get]
func (h *Handler) HandleListVehicles(c *fiber.Ctx) error {
	vehicles := compose.Apply(h.service.Vehicles(), parseFilters(c))
	return c.JSON(vehicles)
}

// HandleGetVehicle returns one vehicle by identity.
// @Summary Get Vehicle
// @Description Get a single catalog vehicle with its versions, colors and images.
// @Tags catalog
// @Produce json
// @Param id path string true "Vehicle ID"
// @Success 200 {object} models.Vehicle "Vehicle"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /catalog/vehicles/{id} [get]
func (h *Handler) HandleGetVehicle(c *fiber.Ctx) error {
	vehicle, ok := h.service.Vehicle(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "vehicle not found",
		})
	}
	return c.JSON(vehicle)
}

// HandleGroupedVehicles returns the filtered vehicle list grouped by
// brand in the dealer's canonical order.
// @Summary Grouped Vehicles
// @Description List catalog vehicles grouped by brand, in showroom order.
// @Tags catalog
// @Produce json
// @Param brand query string false "Comma-separated brand names"
// @Param category query string false "Comma-separated category names"
// @Param fuel query string false "Comma-separated fuel type names"
// @Param min_price query number false "Minimum base price"
// @Param max_price query number false "Maximum base price"
// @Success 200 {array} compose.BrandGroup "Brand groups"
// @Router /catalog/vehicles/grouped [get]
func (h *Handler) HandleGroupedVehicles(c *fiber.Ctx) error {
	vehicles := compose.Apply(h.service.Vehicles(), parseFilters(c))
	groups := compose.GroupByBrand(vehicles, h.service.CanonicalBrands())
	return c.JSON(groups)
}

// HandleFacets returns the counted options for one facet under the
// currently active filters.
// @Summary Facet Counts
// @Description Count, per value of the subject facet, how many vehicles each selection would yield.
// @Tags catalog
// @Produce json
// @Param subject query string true "Facet subject (brand, category or fuel)"
// @Param brand query string false "Comma-separated brand names"
// @Param category query string false "Comma-separated category names"
// @Param fuel query string false "Comma-separated fuel type names"
// @Param min_price query number false "Minimum base price"
// @Param max_price query number false "Maximum base price"
// @Success 200 {array} compose.Option "Facet options"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /catalog/facets [get]
func (h *Handler) HandleFacets(c *fiber.Ctx) error {
	subject := compose.Facet(c.Query("subject"))
	switch subject {
	case compose.FacetBrand, compose.FacetCategory, compose.FacetFuel:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "subject must be one of: brand, category, fuel",
		})
	}
	counts := compose.FacetCounts(h.service.Vehicles(), parseFilters(c), subject)
	return c.JSON(compose.FacetOptions(counts))
}

// HandleFilters returns the full filter sidebar in one response: every
// facet's options plus the price bounds, all under the active filters.
// @Summary Filter Sidebar
// @Description Get all facet options and the price range for the storefront filter sidebar.
// @Tags catalog
// @Produce json
// @Param brand query string false "Comma-separated brand names"
// @Param category query string false "Comma-separated category names"
// @Param fuel query string false "Comma-separated fuel type names"
// @Param min_price query number false "Minimum base price"
// @Param max_price query number false "Maximum base price"
// @Success 200 {object} map[string]interface{} "Filter sidebar"
// @Router /catalog/filters [get]
func (h *Handler) HandleFilters(c *fiber.Ctx) error {
	vehicles := h.service.Vehicles()
	active := parseFilters(c)
	return c.JSON(fiber.Map{
		"brands":     compose.FacetOptions(compose.FacetCounts(vehicles, active, compose.FacetBrand)),
		"categories": compose.FacetOptions(compose.FacetCounts(vehicles, active, compose.FacetCategory)),
		"fuel_types": compose.FacetOptions(compose.FacetCounts(vehicles, active, compose.FacetFuel)),
		"price":      compose.PriceBounds(compose.Apply(vehicles, active)),
	})
}

// HandleListBanners returns the active storefront banners.
// @Summary List Banners
// @Description List the storefront banners in display order.
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Banner "Banners"
// @Router /catalog/banners [get]
func (h *Handler) HandleListBanners(c *fiber.Ctx) error {
	return c.JSON(h.service.Banners())
}

// HandleStatus reports each collection's lifecycle state, so callers can
// show a "data may be out of date" indicator.
// @Summary Catalog Status
// @Description Report the lifecycle state of every live collection.
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string]string "Collection states"
// @Router /catalog/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.States())
}

// HandleRefresh forces a full snapshot reload of every collection.
// @Summary Refresh Catalog
// @Description Reload every catalog collection from a fresh store snapshot.
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]string "Refresh result"
// @Failure 502 {object} map[string]string "Store unavailable"
// @Security ApiKeyAuth
// @Router /admin/catalog/refresh [post]
func (h *Handler) HandleRefresh(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	if err := h.service.RefreshAll(c.Context()); err != nil {
		l.Error("Catalog refresh failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	l.Info("Catalog refreshed")
	return c.JSON(fiber.Map{"status": "refreshed"})
}

// HandleListUsers returns the back-office user list.
// @Summary List Users
// @Description List the back-office users.
// @Tags admin
// @Produce json
// @Success 200 {array} models.User "Users"
// @Security ApiKeyAuth
// @Router /admin/catalog/users [get]
func (h *Handler) HandleListUsers(c *fiber.Ctx) error {
	return c.JSON(h.service.Users())
}
