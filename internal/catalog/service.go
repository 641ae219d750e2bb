package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/sync/semaphore"
)

var (
	ErrMissingID     = errors.New("product id is required")
	ErrNotFound      = errors.New("product not found")
	ErrDuplicateName = errors.New("product name already exists")
)

// Catalog runs every operation as a full load of the store followed, for
// mutations, by a full save. Mutations are serialized so concurrent requests
// in this process cannot lose each other's writes.
type Catalog struct {
	store  Store
	writer *semaphore.Weighted
}

func NewCatalog(store Store) *Catalog {
	return &Catalog{
		store:  store,
		writer: semaphore.NewWeighted(1),
	}
}

func (c *Catalog) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

func (c *Catalog) List(ctx context.Context) ([]Product, error) {
	return c.store.Load(ctx)
}

func (c *Catalog) Get(ctx context.Context, rawID string) (Product, error) {
	id, ok := parseID(rawID)
	if !ok {
		return Product{}, ErrNotFound
	}

	products, err := c.store.Load(ctx)
	if err != nil {
		return Product{}, err
	}
	if i := indexOf(products, id); i >= 0 {
		return products[i], nil
	}
	return Product{}, ErrNotFound
}

// Create assigns the next id and appends p. The caller's p.ID is ignored.
func (c *Catalog) Create(ctx context.Context, p Product) (Product, error) {
	err := c.mutate(ctx, func(products []Product) ([]Product, error) {
		p.ID = nextID(products)
		for _, existing := range products {
			if existing.ProductName == p.ProductName {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateName, p.ProductName)
			}
		}
		return append(products, p), nil
	})
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

// Update merges the present fields of patch onto the product with rawID.
// Name uniqueness is not re-checked.
func (c *Catalog) Update(ctx context.Context, rawID string, patch ProductPatch) (Product, error) {
	if rawID == "" {
		return Product{}, ErrMissingID
	}
	id, ok := parseID(rawID)
	if !ok {
		return Product{}, ErrNotFound
	}

	var updated Product
	err := c.mutate(ctx, func(products []Product) ([]Product, error) {
		i := indexOf(products, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		patch.apply(&products[i])
		updated = products[i]
		return products, nil
	})
	if err != nil {
		return Product{}, err
	}
	return updated, nil
}

func (c *Catalog) Delete(ctx context.Context, rawID string) error {
	if rawID == "" {
		return ErrMissingID
	}
	id, ok := parseID(rawID)
	if !ok {
		return ErrNotFound
	}

	return c.mutate(ctx, func(products []Product) ([]Product, error) {
		kept := make([]Product, 0, len(products))
		for _, p := range products {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		if len(kept) == len(products) {
			return nil, ErrNotFound
		}
		return kept, nil
	})
}

// mutate holds the writer slot across load, change and save. The store is
// only written when change succeeds.
func (c *Catalog) mutate(ctx context.Context, change func([]Product) ([]Product, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.writer.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.writer.Release(1)

	products, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	next, err := change(products)
	if err != nil {
		return err
	}
	return c.store.Save(ctx, next)
}

// nextID is one past the largest id present regardless of list order, or 1
// for an empty list.
func nextID(products []Product) int {
	maxID := 0
	for _, p := range products {
		maxID = max(maxID, p.ID)
	}
	return maxID + 1
}

func indexOf(products []Product, id int) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func parseID(raw string) (int, bool) {
	id, err := strconv.Atoi(raw)
	return id, err == nil
}
