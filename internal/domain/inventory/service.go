package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidItem = errors.New("invalid inventory item")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Stock records a new lot. Used by the seeder; no GraphQL mutation writes inventory.
func (s *Service) Stock(ctx context.Context, item *Item) error {
	item.DrugName = strings.TrimSpace(item.DrugName)
	if item.DrugName == "" {
		return fmt.Errorf("%w: drug_name is required", ErrInvalidItem)
	}
	if item.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidItem)
	}
	return s.repo.Create(ctx, item)
}

func (s *Service) List(ctx context.Context) ([]*Item, error) {
	return s.repo.List(ctx)
}
