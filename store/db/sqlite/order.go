package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/feastline/feastline/store"
)

func (d *DB) CreateOrder(ctx context.Context, create *store.Order) (*store.Order, error) {
	fields := []string{"uid", "user_id", "restaurant_id", "status", "total", "created_ts", "updated_ts"}
	args := []any{create.UID, create.UserID, create.RestaurantID, string(create.Status), create.Total, create.CreatedTs, create.UpdatedTs}

	stmt := `INSERT INTO user_order (` + strings.Join(fields, ", ") + `) VALUES (` + placeholders(len(args)) + `)`
	result, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}
	create.ID = int32(id)

	for _, item := range create.Items {
		item.OrderID = create.ID
		itemStmt := `INSERT INTO order_item (order_id, menu_item_id, name, quantity, price) VALUES (` + placeholders(5) + `)`
		itemResult, err := d.db.ExecContext(ctx, itemStmt, item.OrderID, item.MenuItemID, item.Name, item.Quantity, item.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
		itemID, err := itemResult.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get last insert id: %w", err)
		}
		item.ID = int32(itemID)
	}

	return create, nil
}

func (d *DB) ListOrders(ctx context.Context, find *store.FindOrder) ([]*store.Order, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.UID != nil {
		where, args = append(where, "uid = ?"), append(args, *find.UID)
	}
	if find.UserID != nil {
		where, args = append(where, "user_id = ?"), append(args, *find.UserID)
	}
	if find.RestaurantID != nil {
		where, args = append(where, "restaurant_id = ?"), append(args, *find.RestaurantID)
	}
	if find.Status != nil {
		where, args = append(where, "status = ?"), append(args, string(*find.Status))
	}

	query := `SELECT id, uid, user_id, restaurant_id, status, total, created_ts, updated_ts
		FROM user_order WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC`
	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Order, 0)
	for rows.Next() {
		o := &store.Order{}
		if err := rows.Scan(&o.ID, &o.UID, &o.UserID, &o.RestaurantID, &o.Status, &o.Total, &o.CreatedTs, &o.UpdatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	if find.WithItems {
		for _, o := range list {
			items, err := d.listOrderItems(ctx, o.ID)
			if err != nil {
				return nil, err
			}
			o.Items = items
		}
	}

	return list, nil
}

func (d *DB) listOrderItems(ctx context.Context, orderID int32) ([]*store.OrderItem, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, order_id, menu_item_id, name, quantity, price FROM order_item WHERE order_id = ? ORDER BY id ASC`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	items := make([]*store.OrderItem, 0)
	for rows.Next() {
		item := &store.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Name, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order items: %w", err)
	}
	return items, nil
}

func (d *DB) UpdateOrder(ctx context.Context, update *store.UpdateOrder) (*store.Order, error) {
	set, args := []string{}, []any{}

	if update.Status != nil {
		set, args = append(set, "status = ?"), append(args, string(*update.Status))
	}
	if update.UpdatedTs != nil {
		set, args = append(set, "updated_ts = ?"), append(args, *update.UpdatedTs)
	}

	if len(set) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	args = append(args, update.ID)
	stmt := `UPDATE user_order SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	list, err := d.ListOrders(ctx, &store.FindOrder{ID: &update.ID})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("order not found")
	}

	return list[0], nil
}

func (d *DB) DeleteOrder(ctx context.Context, delete *store.DeleteOrder) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM order_item WHERE order_id = ?`, delete.ID); err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}
	if _, err := d.db.ExecContext(ctx, `DELETE FROM user_order WHERE id = ?`, delete.ID); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}
