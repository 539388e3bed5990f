package report

import (
	"testing"

	"example.com/ventasapp/services/pos/internal/models"

	"github.com/stretchr/testify/require"
)

func TestBuildSummarizesADay(t *testing.T) {
	sales := []models.Sale{
		{
			ID: "s1", Total: 1000, PaymentMethod: models.PaymentCash, SaleDay: "29/08/2026",
			Items: []models.OrderItem{
				{ProductID: "carne", Name: "Carne", Quantity: 2, Subtotal: 1000},
			},
		},
		{
			ID: "s2", Total: 500, PaymentMethod: models.PaymentTransfer, SaleDay: "29/08/2026",
			Items: []models.OrderItem{
				{ProductID: "carne", Name: "Carne", Quantity: 1, Subtotal: 500},
				{ProductID: "vino", Name: "Vino", Quantity: 4, Subtotal: 200},
			},
		},
		{
			ID: "s3", Total: 0, PaymentMethod: models.PaymentSponsored, SaleDay: "29/08/2026",
			Items: []models.OrderItem{
				{ProductID: "postre", Name: "Postre", Quantity: 1, Subtotal: 300},
			},
		},
	}

	snap := Build("29/08/2026", sales)

	require.Equal(t, "29/08/2026", snap.Day)
	require.Equal(t, 3, snap.SaleCount)
	require.Equal(t, 1500.0, snap.Total)
	require.Equal(t, 1000.0, snap.TotalsByPayment[models.PaymentCash])
	require.Equal(t, 500.0, snap.TotalsByPayment[models.PaymentTransfer])
	require.Equal(t, 0.0, snap.TotalsByPayment[models.PaymentSponsored])

	// Ranked by quantity sold.
	require.Len(t, snap.TopProducts, 3)
	require.Equal(t, "vino", snap.TopProducts[0].ProductID)
	require.Equal(t, 4.0, snap.TopProducts[0].Quantity)
	require.Equal(t, "carne", snap.TopProducts[1].ProductID)
	require.Equal(t, 3.0, snap.TopProducts[1].Quantity)
	require.Equal(t, 1500.0, snap.TopProducts[1].Revenue)
}

func TestBuildEmptyDay(t *testing.T) {
	snap := Build("30/08/2026", nil)

	require.Equal(t, 0, snap.SaleCount)
	require.Equal(t, 0.0, snap.Total)
	require.Empty(t, snap.TopProducts)
	require.Empty(t, snap.TotalsByPayment)
}
