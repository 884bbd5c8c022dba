package domain

import "time"

// Product is the domain model for catalog items.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       float64
	Quantity    int
	Category    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Available reports whether the product has stock left.
func (p *Product) Available() bool {
	return p.Quantity > 0
}
