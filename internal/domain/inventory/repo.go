package inventory

import "context"

type Repository interface {
	Create(ctx context.Context, item *Item) error
	List(ctx context.Context) ([]*Item, error)
}
