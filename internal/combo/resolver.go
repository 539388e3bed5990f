// Package combo resolves combo definitions against the catalog: how many
// units a combo can sell with current component stock, and the component
// stock deltas to apply when combo units are sold or returned.
package combo

import (
	"math"

	"example.com/ventasapp/services/pos/internal/models"
	"example.com/ventasapp/services/pos/internal/stock"
	"example.com/ventasapp/services/pos/internal/store"
)

// DeductionFactor is the stock units one component entry consumes per combo
// unit sold. Components pinned to a non-deducting sale unit (a glass) return
// zero and are exempt from stock accounting entirely.
func DeductionFactor(s *store.State, c models.ComboComponent) float64 {
	p := s.ProductByID(c.ProductID)
	if p == nil {
		return 1
	}
	if c.SaleUnitID == "" {
		return 1
	}
	u := p.SaleUnit(c.SaleUnitID)
	if u == nil || !u.Deducts() {
		return 0
	}
	if u.Factor > 0 {
		return u.Factor
	}
	return 1
}

// MaxSellable is how many units of the combo can currently be sold. A combo
// with a missing component, a non-positive component quantity, or a
// component without a station is entirely unsellable. Non-deducting
// components never constrain the result; a combo made only of those is not
// sellable through stock either, so the answer stays zero.
func MaxSellable(s *store.State, p *models.Product) int {
	if p == nil || !p.IsCombo || len(p.Components) == 0 {
		return 0
	}
	min := math.Inf(1)
	for _, c := range p.Components {
		comp := s.ProductByID(c.ProductID)
		if comp == nil || c.Quantity <= 0 || !comp.HasStation() {
			return 0
		}
		factor := DeductionFactor(s, c)
		if factor == 0 {
			continue
		}
		per := math.Floor(comp.Stock / (c.Quantity * factor))
		if per < min {
			min = per
		}
	}
	if math.IsInf(min, 1) {
		return 0
	}
	return int(min)
}

// ComponentsStationed reports whether every component of the combo resolves
// to a product with an assigned station.
func ComponentsStationed(s *store.State, p *models.Product) bool {
	if p == nil || !p.IsCombo {
		return false
	}
	for _, c := range p.Components {
		comp := s.ProductByID(c.ProductID)
		if comp == nil || !comp.HasStation() {
			return false
		}
	}
	return len(p.Components) > 0
}

// ApplyDelta commits the component stock movement for a signed number of
// combo units: positive consumes stock, negative restores it. Availability
// is resolved before any debit is applied, so the movement is all-or-nothing
// with respect to the session state.
func ApplyDelta(s *store.State, comboProduct *models.Product, quantityDelta float64) {
	if comboProduct == nil || !comboProduct.IsCombo || quantityDelta == 0 {
		return
	}
	totals := make(map[string]float64, len(comboProduct.Components))
	var order []string
	for _, c := range comboProduct.Components {
		factor := DeductionFactor(s, c)
		if factor == 0 {
			continue
		}
		qty := c.Quantity
		if qty == 0 {
			qty = 1
		}
		if _, seen := totals[c.ProductID]; !seen {
			order = append(order, c.ProductID)
		}
		totals[c.ProductID] += qty * quantityDelta * factor
	}
	for _, id := range order {
		stock.Adjust(s, id, -totals[id])
	}
}
