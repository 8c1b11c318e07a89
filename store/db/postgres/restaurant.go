package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/feastline/feastline/store"
)

func (d *DB) CreateRestaurant(ctx context.Context, create *store.Restaurant) (*store.Restaurant, error) {
	fields := []string{"uid", "name", "description", "category", "address", "latitude", "longitude", "opening_hours", "rating", "row_status", "created_ts", "updated_ts"}
	args := []any{create.UID, create.Name, create.Description, create.Category, create.Address, create.Latitude, create.Longitude, create.OpeningHours, create.Rating, create.RowStatus.String(), create.CreatedTs, create.UpdatedTs}

	stmt := `INSERT INTO restaurant (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create restaurant: %w", err)
	}

	return create, nil
}

func (d *DB) ListRestaurants(ctx context.Context, find *store.FindRestaurant) ([]*store.Restaurant, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.UID != nil {
		where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *find.UID)
	}
	if find.Category != nil {
		where, args = append(where, "category = "+placeholder(len(args)+1)), append(args, *find.Category)
	}
	if find.RowStatus != nil {
		where, args = append(where, "row_status = "+placeholder(len(args)+1)), append(args, find.RowStatus.String())
	}

	query := `SELECT id, uid, name, description, category, address, latitude, longitude, opening_hours, rating, row_status, created_ts, updated_ts
		FROM restaurant WHERE ` + strings.Join(where, " AND ") + ` ORDER BY rating DESC, id ASC`
	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Restaurant, 0)
	for rows.Next() {
		r := &store.Restaurant{}
		if err := rows.Scan(&r.ID, &r.UID, &r.Name, &r.Description, &r.Category, &r.Address, &r.Latitude, &r.Longitude, &r.OpeningHours, &r.Rating, &r.RowStatus, &r.CreatedTs, &r.UpdatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan restaurant: %w", err)
		}
		list = append(list, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate restaurants: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateRestaurant(ctx context.Context, update *store.UpdateRestaurant) (*store.Restaurant, error) {
	set, args := []string{}, []any{}

	if update.Name != nil {
		set, args = append(set, "name = "+placeholder(len(args)+1)), append(args, *update.Name)
	}
	if update.Description != nil {
		set, args = append(set, "description = "+placeholder(len(args)+1)), append(args, *update.Description)
	}
	if update.Category != nil {
		set, args = append(set, "category = "+placeholder(len(args)+1)), append(args, *update.Category)
	}
	if update.Address != nil {
		set, args = append(set, "address = "+placeholder(len(args)+1)), append(args, *update.Address)
	}
	if update.OpeningHours != nil {
		set, args = append(set, "opening_hours = "+placeholder(len(args)+1)), append(args, *update.OpeningHours)
	}
	if update.Rating != nil {
		set, args = append(set, "rating = "+placeholder(len(args)+1)), append(args, *update.Rating)
	}
	if update.RowStatus != nil {
		set, args = append(set, "row_status = "+placeholder(len(args)+1)), append(args, update.RowStatus.String())
	}
	if update.UpdatedTs != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *update.UpdatedTs)
	}

	if len(set) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	args = append(args, update.ID)
	// RETURNING all fields to avoid N+1 query
	stmt := `UPDATE restaurant SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, uid, name, description, category, address, latitude, longitude, opening_hours, rating, row_status, created_ts, updated_ts`
	result := &store.Restaurant{}
	err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&result.ID, &result.UID, &result.Name, &result.Description, &result.Category, &result.Address, &result.Latitude, &result.Longitude, &result.OpeningHours, &result.Rating, &result.RowStatus, &result.CreatedTs, &result.UpdatedTs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("restaurant not found")
		}
		return nil, fmt.Errorf("failed to update restaurant: %w", err)
	}

	return result, nil
}

func (d *DB) DeleteRestaurant(ctx context.Context, delete *store.DeleteRestaurant) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM menu_item WHERE restaurant_id = `+placeholder(1), delete.ID); err != nil {
		return fmt.Errorf("failed to delete menu items: %w", err)
	}
	if _, err := d.db.ExecContext(ctx, `DELETE FROM restaurant WHERE id = `+placeholder(1), delete.ID); err != nil {
		return fmt.Errorf("failed to delete restaurant: %w", err)
	}
	return nil
}
