package inventory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) Create(ctx context.Context, item *Item) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO inventory (drug_name, quantity, supplier, last_stocked)
		VALUES ($1, $2, $3, COALESCE($4, NOW()))
		RETURNING id, last_stocked`,
		item.DrugName, item.Quantity, item.Supplier, nullTime(item),
	).Scan(&item.ID, &item.LastStocked)
	if err != nil {
		return fmt.Errorf("inventory create: %w", err)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context) ([]*Item, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT id, drug_name, quantity, supplier, last_stocked FROM inventory ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("inventory list: %w", err)
	}
	defer rows.Close()

	items := []*Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.DrugName, &it.Quantity, &it.Supplier, &it.LastStocked); err != nil {
			return nil, fmt.Errorf("inventory list: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func nullTime(item *Item) interface{} {
	if item.LastStocked.IsZero() {
		return nil
	}
	return item.LastStocked
}
