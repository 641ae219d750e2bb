package catalog

import (
	"context"
	"errors"
)

var (
	ErrStoreUnavailable = errors.New("product store unavailable")
	ErrStoreCorrupt     = errors.New("product store corrupt")
)

type Product struct {
	ID          int     `json:"id"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Quantity    int     `json:"quantity"`
}

// ProductPatch carries the fields of an update. Nil fields are left as they are.
type ProductPatch struct {
	ProductName *string  `json:"productName"`
	Price       *float64 `json:"price"`
	Image       *string  `json:"image"`
	Quantity    *int     `json:"quantity"`
}

func (p ProductPatch) apply(dst *Product) {
	if p.ProductName != nil {
		dst.ProductName = *p.ProductName
	}
	if p.Price != nil {
		dst.Price = *p.Price
	}
	if p.Image != nil {
		dst.Image = *p.Image
	}
	if p.Quantity != nil {
		dst.Quantity = *p.Quantity
	}
}

// Store persists the whole product list as one ordered sequence. Load errors
// wrap ErrStoreUnavailable or ErrStoreCorrupt, Save errors wrap
// ErrStoreUnavailable.
type Store interface {
	Load(ctx context.Context) ([]Product, error)
	Save(ctx context.Context, products []Product) error
	Ping(ctx context.Context) error
}
