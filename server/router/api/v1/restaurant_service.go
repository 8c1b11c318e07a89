package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/feastline/feastline/store"
)

type restaurantResponse struct {
	ID           int32   `json:"id"`
	UID          string  `json:"uid"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Category     string  `json:"category,omitempty"`
	Address      string  `json:"address,omitempty"`
	Latitude     float64 `json:"latitude,omitempty"`
	Longitude    float64 `json:"longitude,omitempty"`
	OpeningHours string  `json:"openingHours,omitempty"`
	Rating       float64 `json:"rating,omitempty"`
}

// ListRestaurants returns active restaurants, optionally filtered by
// category or proximity (lat, lng, radius in meters).
func (s *APIV1Service) ListRestaurants(c echo.Context) error {
	normal := store.Normal
	find := &store.FindRestaurant{RowStatus: &normal}

	if category := c.QueryParam("category"); category != "" {
		find.Category = &category
	}
	if latRaw, lngRaw := c.QueryParam("lat"), c.QueryParam("lng"); latRaw != "" && lngRaw != "" {
		lat, latErr := strconv.ParseFloat(latRaw, 64)
		lng, lngErr := strconv.ParseFloat(lngRaw, 64)
		if latErr != nil || lngErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid coordinates.")
		}
		find.Near = &store.Coordinates{Latitude: lat, Longitude: lng}
		find.RadiusMeters = 5000
		if radiusRaw := c.QueryParam("radius"); radiusRaw != "" {
			radius, err := strconv.ParseFloat(radiusRaw, 64)
			if err != nil || radius <= 0 {
				return echo.NewHTTPError(http.StatusBadRequest, "Invalid radius.")
			}
			find.RadiusMeters = radius
		}
	}

	restaurants, err := s.Store.ListRestaurants(c.Request().Context(), find)
	if err != nil {
		slog.Error("failed to list restaurants", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load restaurants.")
	}

	response := make([]*restaurantResponse, 0, len(restaurants))
	for _, r := range restaurants {
		response = append(response, convertRestaurant(r))
	}
	return c.JSON(http.StatusOK, response)
}

// GetRestaurant returns one restaurant by id.
func (s *APIV1Service) GetRestaurant(c echo.Context) error {
	id, err := pathParamID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid restaurant id.")
	}

	restaurant, err := s.Store.GetRestaurant(c.Request().Context(), id)
	if err != nil {
		slog.Error("failed to get restaurant", "error", err, "id", id)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load restaurant.")
	}
	if restaurant == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Restaurant not found.")
	}
	return c.JSON(http.StatusOK, convertRestaurant(restaurant))
}

type menuItemResponse struct {
	ID           int32   `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category,omitempty"`
	Price        float64 `json:"price"`
	DisplayPrice string  `json:"displayPrice,omitempty"`
	ImageURL     string  `json:"imageUrl,omitempty"`
	Vegetarian   bool    `json:"vegetarian"`
	Customizable bool    `json:"customizable"`
	Available    bool    `json:"available"`
}

// GetRestaurantMenu returns the full menu for the browse UI, including
// the presentation fields the LLM never sees.
func (s *APIV1Service) GetRestaurantMenu(c echo.Context) error {
	id, err := pathParamID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid restaurant id.")
	}

	items, err := s.Store.ListMenuItems(c.Request().Context(), &store.FindMenuItem{RestaurantID: &id})
	if err != nil {
		slog.Error("failed to list menu items", "error", err, "restaurant_id", id)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load menu.")
	}

	response := make([]*menuItemResponse, 0, len(items))
	for _, item := range items {
		response = append(response, &menuItemResponse{
			ID:           item.ID,
			Name:         item.Name,
			Category:     item.Category,
			Price:        item.Price,
			DisplayPrice: item.DisplayPrice,
			ImageURL:     item.ImageURL,
			Vegetarian:   item.Vegetarian,
			Customizable: item.Customizable,
			Available:    item.Available,
		})
	}
	return c.JSON(http.StatusOK, response)
}

func convertRestaurant(r *store.Restaurant) *restaurantResponse {
	return &restaurantResponse{
		ID:           r.ID,
		UID:          r.UID,
		Name:         r.Name,
		Description:  r.Description,
		Category:     r.Category,
		Address:      r.Address,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		OpeningHours: r.OpeningHours,
		Rating:       r.Rating,
	}
}
