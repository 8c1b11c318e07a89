package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/feastline/feastline/store"
)

type orderItemPayload struct {
	MenuItemID int32   `json:"menuItemId"`
	Name       string  `json:"name"`
	Quantity   int32   `json:"quantity"`
	Price      float64 `json:"price"`
}

type createOrderRequest struct {
	UserID       int32              `json:"userId"`
	RestaurantID int32              `json:"restaurantId"`
	Items        []orderItemPayload `json:"items"`
}

type orderResponse struct {
	ID           int32              `json:"id"`
	UID          string             `json:"uid"`
	UserID       int32              `json:"userId"`
	RestaurantID int32              `json:"restaurantId"`
	Status       string             `json:"status"`
	Total        float64            `json:"total"`
	Items        []orderItemPayload `json:"items,omitempty"`
	CreatedTs    int64              `json:"createdTs"`
}

// CreateOrder persists a pending order with its items.
func (s *APIV1Service) CreateOrder(c echo.Context) error {
	request := &createOrderRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed request body.")
	}
	if request.UserID <= 0 || request.RestaurantID <= 0 || len(request.Items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "userId, restaurantId and items are required.")
	}

	var total float64
	items := make([]*store.OrderItem, 0, len(request.Items))
	for _, item := range request.Items {
		if item.Quantity <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Item quantity must be positive.")
		}
		total += item.Price * float64(item.Quantity)
		items = append(items, &store.OrderItem{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			Price:      item.Price,
		})
	}

	order, err := s.Store.CreateOrder(c.Request().Context(), &store.Order{
		UID:          uuid.NewString(),
		UserID:       request.UserID,
		RestaurantID: request.RestaurantID,
		Status:       store.OrderStatusPending,
		Total:        total,
		Items:        items,
		CreatedTs:    time.Now().Unix(),
	})
	if err != nil {
		slog.Error("failed to create order", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create order.")
	}
	return c.JSON(http.StatusOK, convertOrder(order))
}

// ListOrders returns a user's orders, newest first, with items.
func (s *APIV1Service) ListOrders(c echo.Context) error {
	userID, err := queryParamID(c, "userId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is required.")
	}

	orders, err := s.Store.ListOrders(c.Request().Context(), &store.FindOrder{
		UserID:    &userID,
		WithItems: true,
	})
	if err != nil {
		slog.Error("failed to list orders", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load orders.")
	}

	response := make([]*orderResponse, 0, len(orders))
	for _, order := range orders {
		response = append(response, convertOrder(order))
	}
	return c.JSON(http.StatusOK, response)
}

func convertOrder(order *store.Order) *orderResponse {
	items := make([]orderItemPayload, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemPayload{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			Price:      item.Price,
		})
	}
	return &orderResponse{
		ID:           order.ID,
		UID:          order.UID,
		UserID:       order.UserID,
		RestaurantID: order.RestaurantID,
		Status:       string(order.Status),
		Total:        order.Total,
		Items:        items,
		CreatedTs:    order.CreatedTs,
	}
}
