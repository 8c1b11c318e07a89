package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/feastline/feastline/internal/profile"
	"github.com/feastline/feastline/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Cache settings
	cacheConfig cache.Config

	// Caches
	restaurantCache *cache.Cache // cache for restaurants by id
	menuCache       *cache.Cache // cache for menu item lists by restaurant id
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
		OnEviction:      nil,
	}

	store := &Store{
		driver:          driver,
		profile:         profile,
		cacheConfig:     cacheConfig,
		restaurantCache: cache.New(cacheConfig),
		menuCache:       cache.New(cacheConfig),
	}

	return store
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	// Stop all cache cleanup goroutines
	s.restaurantCache.Close()
	s.menuCache.Close()

	return s.driver.Close()
}

func restaurantCacheKey(id int32) string {
	return fmt.Sprintf("restaurant:%d", id)
}

func menuCacheKey(restaurantID int32) string {
	return fmt.Sprintf("menu:%d", restaurantID)
}

func (s *Store) CreateRestaurant(ctx context.Context, create *Restaurant) (*Restaurant, error) {
	restaurant, err := s.driver.CreateRestaurant(ctx, create)
	if err != nil {
		return nil, err
	}
	s.restaurantCache.Set(restaurantCacheKey(restaurant.ID), restaurant, 0)
	return restaurant, nil
}

func (s *Store) ListRestaurants(ctx context.Context, find *FindRestaurant) ([]*Restaurant, error) {
	list, err := s.driver.ListRestaurants(ctx, find)
	if err != nil {
		return nil, err
	}

	// Geo filtering happens here rather than in SQL so both drivers behave the same.
	if find.Near != nil && find.RadiusMeters > 0 {
		filtered := make([]*Restaurant, 0, len(list))
		for _, r := range list {
			if distanceMeters(find.Near.Latitude, find.Near.Longitude, r.Latitude, r.Longitude) <= find.RadiusMeters {
				filtered = append(filtered, r)
			}
		}
		list = filtered
	}

	return list, nil
}

// distanceMeters returns the haversine distance between two coordinates.
func distanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusMeters = 6371000

	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// GetRestaurant returns a single restaurant by id, using the store cache.
func (s *Store) GetRestaurant(ctx context.Context, id int32) (*Restaurant, error) {
	if v, ok := s.restaurantCache.Get(restaurantCacheKey(id)); ok {
		if restaurant, ok := v.(*Restaurant); ok {
			return restaurant, nil
		}
	}

	list, err := s.driver.ListRestaurants(ctx, &FindRestaurant{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	restaurant := list[0]
	s.restaurantCache.Set(restaurantCacheKey(id), restaurant, 0)
	return restaurant, nil
}

func (s *Store) UpdateRestaurant(ctx context.Context, update *UpdateRestaurant) (*Restaurant, error) {
	restaurant, err := s.driver.UpdateRestaurant(ctx, update)
	if err != nil {
		return nil, err
	}
	s.restaurantCache.Set(restaurantCacheKey(restaurant.ID), restaurant, 0)
	return restaurant, nil
}

func (s *Store) DeleteRestaurant(ctx context.Context, delete *DeleteRestaurant) error {
	if err := s.driver.DeleteRestaurant(ctx, delete); err != nil {
		return err
	}
	s.restaurantCache.Delete(restaurantCacheKey(delete.ID))
	s.menuCache.Delete(menuCacheKey(delete.ID))
	return nil
}

func (s *Store) CreateMenuItem(ctx context.Context, create *MenuItem) (*MenuItem, error) {
	item, err := s.driver.CreateMenuItem(ctx, create)
	if err != nil {
		return nil, err
	}
	s.menuCache.Delete(menuCacheKey(item.RestaurantID))
	return item, nil
}

func (s *Store) ListMenuItems(ctx context.Context, find *FindMenuItem) ([]*MenuItem, error) {
	// Only whole-restaurant listings are cached; filtered queries go to the driver.
	cacheable := find.RestaurantID != nil && find.ID == nil && find.Category == nil && find.Vegetarian == nil && find.Available == nil
	if cacheable {
		if v, ok := s.menuCache.Get(menuCacheKey(*find.RestaurantID)); ok {
			if items, ok := v.([]*MenuItem); ok {
				return items, nil
			}
		}
	}

	items, err := s.driver.ListMenuItems(ctx, find)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.menuCache.Set(menuCacheKey(*find.RestaurantID), items, 0)
	}
	return items, nil
}

func (s *Store) UpdateMenuItem(ctx context.Context, update *UpdateMenuItem) (*MenuItem, error) {
	item, err := s.driver.UpdateMenuItem(ctx, update)
	if err != nil {
		return nil, err
	}
	s.menuCache.Delete(menuCacheKey(item.RestaurantID))
	return item, nil
}

func (s *Store) DeleteMenuItem(ctx context.Context, delete *DeleteMenuItem) error {
	if err := s.driver.DeleteMenuItem(ctx, delete); err != nil {
		return err
	}
	if delete.RestaurantID != nil {
		s.menuCache.Delete(menuCacheKey(*delete.RestaurantID))
	}
	return nil
}

func (s *Store) CreateOrder(ctx context.Context, create *Order) (*Order, error) {
	return s.driver.CreateOrder(ctx, create)
}

func (s *Store) ListOrders(ctx context.Context, find *FindOrder) ([]*Order, error) {
	return s.driver.ListOrders(ctx, find)
}

func (s *Store) UpdateOrder(ctx context.Context, update *UpdateOrder) (*Order, error) {
	return s.driver.UpdateOrder(ctx, update)
}

func (s *Store) DeleteOrder(ctx context.Context, delete *DeleteOrder) error {
	return s.driver.DeleteOrder(ctx, delete)
}

func (s *Store) CreateChatMessage(ctx context.Context, create *ChatMessage) (*ChatMessage, error) {
	return s.driver.CreateChatMessage(ctx, create)
}

func (s *Store) ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error) {
	return s.driver.ListChatMessages(ctx, find)
}

func (s *Store) DeleteChatMessage(ctx context.Context, delete *DeleteChatMessage) error {
	return s.driver.DeleteChatMessage(ctx, delete)
}
