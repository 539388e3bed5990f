// Package stock is the exclusive owner of product stock quantities. Every
// debit and credit in the system goes through it, always floor-clamped at
// zero: a reservation larger than what is available lowers stock to zero
// instead of erroring, so callers that must not underflow check availability
// first.
package stock

import "example.com/ventasapp/services/pos/internal/store"

// Reserve debits unit-adjusted stock from a product. Units are already
// multiplied by quantity and sale-unit factor; non-deducting units must not
// reach the ledger at all.
func Reserve(s *store.State, productID string, units float64) {
	Adjust(s, productID, -units)
}

// Release returns previously reserved stock to a product.
func Release(s *store.State, productID string, units float64) {
	Adjust(s, productID, units)
}

// Adjust applies a signed stock delta, clamping the result at zero.
func Adjust(s *store.State, productID string, delta float64) {
	p := s.ProductByID(productID)
	if p == nil {
		return
	}
	p.Stock += delta
	if p.Stock < 0 {
		p.Stock = 0
	}
}

// Set overwrites a product's stock with an absolute value, floored at zero.
func Set(s *store.State, productID string, value float64) {
	p := s.ProductByID(productID)
	if p == nil {
		return
	}
	if value < 0 {
		value = 0
	}
	p.Stock = value
}

// Available reports a product's current stock, zero for unknown products.
func Available(s *store.State, productID string) float64 {
	p := s.ProductByID(productID)
	if p == nil {
		return 0
	}
	return p.Stock
}
