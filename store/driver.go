package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Restaurant model related methods.
	CreateRestaurant(ctx context.Context, create *Restaurant) (*Restaurant, error)
	ListRestaurants(ctx context.Context, find *FindRestaurant) ([]*Restaurant, error)
	UpdateRestaurant(ctx context.Context, update *UpdateRestaurant) (*Restaurant, error)
	DeleteRestaurant(ctx context.Context, delete *DeleteRestaurant) error

	// MenuItem model related methods.
	CreateMenuItem(ctx context.Context, create *MenuItem) (*MenuItem, error)
	ListMenuItems(ctx context.Context, find *FindMenuItem) ([]*MenuItem, error)
	UpdateMenuItem(ctx context.Context, update *UpdateMenuItem) (*MenuItem, error)
	DeleteMenuItem(ctx context.Context, delete *DeleteMenuItem) error

	// Order model related methods.
	CreateOrder(ctx context.Context, create *Order) (*Order, error)
	ListOrders(ctx context.Context, find *FindOrder) ([]*Order, error)
	UpdateOrder(ctx context.Context, update *UpdateOrder) (*Order, error)
	DeleteOrder(ctx context.Context, delete *DeleteOrder) error

	// ChatMessage model related methods.
	CreateChatMessage(ctx context.Context, create *ChatMessage) (*ChatMessage, error)
	ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error)
	DeleteChatMessage(ctx context.Context, delete *DeleteChatMessage) error
}
