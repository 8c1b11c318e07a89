package store

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type Order struct {
	ID           int32
	UID          string
	UserID       int32
	RestaurantID int32
	Status       OrderStatus
	Total        float64
	CreatedTs    int64
	UpdatedTs    int64

	// Items are populated on list when requested.
	Items []*OrderItem
}

type OrderItem struct {
	ID         int32
	OrderID    int32
	MenuItemID int32
	Name       string
	Quantity   int32
	Price      float64
}

type FindOrder struct {
	ID           *int32
	UID          *string
	UserID       *int32
	RestaurantID *int32
	Status       *OrderStatus
	Limit        *int

	// WithItems loads order items alongside each order.
	WithItems bool
}

type UpdateOrder struct {
	ID        int32
	Status    *OrderStatus
	UpdatedTs *int64
}

type DeleteOrder struct {
	ID int32
}
