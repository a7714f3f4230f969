package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
)

type pgTruncater struct {
	pool *pgxpool.Pool
}

func NewPGTruncater(pool *pgxpool.Pool) Truncater {
	return &pgTruncater{pool: pool}
}

func (t *pgTruncater) Truncate(ctx context.Context) error {
	var q db.Querier = t.pool
	if tx := db.TxFromContext(ctx); tx != nil {
		q = tx
	}
	_, err := q.Exec(ctx, `TRUNCATE prescriptions, assessments, patients, doctors, inventory RESTART IDENTITY`)
	if err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	return nil
}
