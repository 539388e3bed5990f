package stock

import (
	"testing"

	"example.com/ventasapp/services/pos/internal/models"
	"example.com/ventasapp/services/pos/internal/store"

	"github.com/stretchr/testify/require"
)

func stateWith(stock float64) *store.State {
	return &store.State{
		Products: []models.Product{{ID: "p1", Name: "Empanada", Stock: stock}},
	}
}

func TestReserveAndRelease(t *testing.T) {
	st := stateWith(10)

	Reserve(st, "p1", 3)
	require.Equal(t, 7.0, Available(st, "p1"))

	Release(st, "p1", 3)
	require.Equal(t, 10.0, Available(st, "p1"))
}

func TestReserveClampsAtZero(t *testing.T) {
	st := stateWith(2)

	// Over-reserving floors at zero instead of going negative.
	Reserve(st, "p1", 5)
	require.Equal(t, 0.0, Available(st, "p1"))
}

func TestSetFloorsNegativeValues(t *testing.T) {
	st := stateWith(5)

	Set(st, "p1", -3)
	require.Equal(t, 0.0, Available(st, "p1"))

	Set(st, "p1", 4.5)
	require.Equal(t, 4.5, Available(st, "p1"))
}

func TestUnknownProductIsIgnored(t *testing.T) {
	st := stateWith(5)

	Reserve(st, "missing", 3)
	Release(st, "missing", 3)
	Set(st, "missing", 9)

	require.Equal(t, 0.0, Available(st, "missing"))
	require.Equal(t, 5.0, Available(st, "p1"))
}

func TestFractionalStock(t *testing.T) {
	st := stateWith(1)

	// Dozen-based units move stock in fractions.
	Reserve(st, "p1", 0.25)
	require.Equal(t, 0.75, Available(st, "p1"))
}
