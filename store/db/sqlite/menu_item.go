package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/feastline/feastline/store"
)

func (d *DB) CreateMenuItem(ctx context.Context, create *store.MenuItem) (*store.MenuItem, error) {
	fields := []string{"restaurant_id", "name", "category", "price", "vegetarian", "customizable", "image_url", "display_price", "customization", "health_score", "sweetness_score", "caffeine_score", "available", "created_ts", "updated_ts"}
	args := []any{create.RestaurantID, create.Name, create.Category, create.Price, create.Vegetarian, create.Customizable, create.ImageURL, create.DisplayPrice, create.Customization, create.HealthScore, create.SweetnessScore, create.CaffeineScore, create.Available, create.CreatedTs, create.UpdatedTs}

	stmt := `INSERT INTO menu_item (` + strings.Join(fields, ", ") + `) VALUES (` + placeholders(len(args)) + `)`
	result, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create menu item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}
	create.ID = int32(id)

	return create, nil
}

func (d *DB) ListMenuItems(ctx context.Context, find *store.FindMenuItem) ([]*store.MenuItem, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.RestaurantID != nil {
		where, args = append(where, "restaurant_id = ?"), append(args, *find.RestaurantID)
	}
	if find.Category != nil {
		where, args = append(where, "category = ?"), append(args, *find.Category)
	}
	if find.Vegetarian != nil {
		where, args = append(where, "vegetarian = ?"), append(args, *find.Vegetarian)
	}
	if find.Available != nil {
		where, args = append(where, "available = ?"), append(args, *find.Available)
	}

	query := `SELECT id, restaurant_id, name, category, price, vegetarian, customizable, image_url, display_price, customization, health_score, sweetness_score, caffeine_score, available, created_ts, updated_ts
		FROM menu_item WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer rows.Close()

	list := make([]*store.MenuItem, 0)
	for rows.Next() {
		item := &store.MenuItem{}
		if err := rows.Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Category, &item.Price, &item.Vegetarian, &item.Customizable, &item.ImageURL, &item.DisplayPrice, &item.Customization, &item.HealthScore, &item.SweetnessScore, &item.CaffeineScore, &item.Available, &item.CreatedTs, &item.UpdatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		list = append(list, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate menu items: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateMenuItem(ctx context.Context, update *store.UpdateMenuItem) (*store.MenuItem, error) {
	set, args := []string{}, []any{}

	if update.Name != nil {
		set, args = append(set, "name = ?"), append(args, *update.Name)
	}
	if update.Category != nil {
		set, args = append(set, "category = ?"), append(args, *update.Category)
	}
	if update.Price != nil {
		set, args = append(set, "price = ?"), append(args, *update.Price)
	}
	if update.Available != nil {
		set, args = append(set, "available = ?"), append(args, *update.Available)
	}
	if update.UpdatedTs != nil {
		set, args = append(set, "updated_ts = ?"), append(args, *update.UpdatedTs)
	}

	if len(set) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	args = append(args, update.ID)
	stmt := `UPDATE menu_item SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}

	list, err := d.ListMenuItems(ctx, &store.FindMenuItem{ID: &update.ID})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("menu item not found")
	}

	return list[0], nil
}

func (d *DB) DeleteMenuItem(ctx context.Context, delete *store.DeleteMenuItem) error {
	where, args := []string{}, []any{}

	if delete.ID != nil {
		where, args = append(where, "id = ?"), append(args, *delete.ID)
	}
	if delete.RestaurantID != nil {
		where, args = append(where, "restaurant_id = ?"), append(args, *delete.RestaurantID)
	}
	if len(where) == 0 {
		return fmt.Errorf("no filter specified for delete")
	}

	stmt := `DELETE FROM menu_item WHERE ` + strings.Join(where, " AND ")
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	return nil
}
