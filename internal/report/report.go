// Package report builds end-of-day summaries from the sales ledger.
package report

import (
	"sort"
	"time"

	"example.com/ventasapp/services/pos/internal/ledger"
	"example.com/ventasapp/services/pos/internal/models"
)

// ProductTally is one row of the top-products table.
type ProductTally struct {
	ProductID string  `json:"productoId"`
	Name      string  `json:"nombre"`
	Quantity  float64 `json:"cantidad"`
	Revenue   float64 `json:"ingresos"`
}

// Snapshot is a point-in-time summary of one sale day.
type Snapshot struct {
	Day             string                           `json:"fecha"`
	SaleCount       int                              `json:"cantidadVentas"`
	Total           float64                          `json:"total"`
	TotalsByPayment map[models.PaymentMethod]float64 `json:"totalesPorMetodo"`
	TopProducts     []ProductTally                   `json:"productosMasVendidos"`
	GeneratedAt     time.Time                        `json:"generadoEl"`
}

// topProductLimit caps the top-products table.
const topProductLimit = 10

// Build summarizes a set of sales for the given day label.
func Build(day string, sales []models.Sale) Snapshot {
	snap := Snapshot{
		Day:             day,
		SaleCount:       len(sales),
		Total:           ledger.Total(sales),
		TotalsByPayment: map[models.PaymentMethod]float64{},
		GeneratedAt:     time.Now(),
	}

	tallies := map[string]*ProductTally{}
	var order []string
	for _, sale := range sales {
		snap.TotalsByPayment[sale.PaymentMethod] += sale.Total
		for _, item := range sale.Items {
			t, ok := tallies[item.ProductID]
			if !ok {
				t = &ProductTally{ProductID: item.ProductID, Name: item.Name}
				tallies[item.ProductID] = t
				order = append(order, item.ProductID)
			}
			t.Quantity += item.Quantity
			t.Revenue += item.Subtotal
		}
	}

	for _, id := range order {
		snap.TopProducts = append(snap.TopProducts, *tallies[id])
	}
	sort.SliceStable(snap.TopProducts, func(i, j int) bool {
		return snap.TopProducts[i].Quantity > snap.TopProducts[j].Quantity
	})
	if len(snap.TopProducts) > topProductLimit {
		snap.TopProducts = snap.TopProducts[:topProductLimit]
	}
	return snap
}

// BuildToday summarizes the current calendar day from the ledger.
func BuildToday(l *ledger.Service) Snapshot {
	return Build(time.Now().Format(models.SaleDayLayout), l.TodaySales())
}
