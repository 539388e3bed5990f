package store

import (
	"testing"

	"example.com/ventasapp/services/pos/internal/models"

	"github.com/stretchr/testify/require"
)

func TestSequenceIsMonotonic(t *testing.T) {
	s := New()

	var first, second int
	_ = s.Update(func(st *State) error {
		first = st.NextSequence()
		second = st.NextSequence()
		return nil
	})

	require.Equal(t, 1, first)
	require.Equal(t, 2, second)
}

func TestRemoveOrderDoesNotReleaseSequence(t *testing.T) {
	s := New()

	_ = s.Update(func(st *State) error {
		for i := 0; i < 3; i++ {
			st.Orders = append(st.Orders, models.Order{ID: string(rune('a' + i)), Sequence: st.NextSequence()})
		}
		return nil
	})

	var next int
	_ = s.Update(func(st *State) error {
		require.True(t, st.RemoveOrder("b"))
		next = st.NextSequence()
		return nil
	})

	// Deleting order #2 must not reissue its number.
	require.Equal(t, 4, next)
}

func TestSeedReanchorsSequence(t *testing.T) {
	s := New()
	s.Seed(nil, nil, []models.Order{
		{ID: "a", Sequence: 3},
		{ID: "b", Sequence: 7},
	}, nil)

	var next int
	_ = s.Update(func(st *State) error {
		next = st.NextSequence()
		return nil
	})
	require.Equal(t, 8, next)
}

func TestObserveSequence(t *testing.T) {
	s := New()

	var next int
	_ = s.Update(func(st *State) error {
		st.ObserveSequence(5)
		st.ObserveSequence(2)
		next = st.NextSequence()
		return nil
	})
	require.Equal(t, 6, next)
}

func TestLookupsAliasState(t *testing.T) {
	s := New()
	s.Seed(
		[]models.Station{{ID: "st1", Name: "Parrilla"}},
		[]models.Product{{ID: "p1", Name: "Choripan", Stock: 4}},
		nil, nil,
	)

	_ = s.Update(func(st *State) error {
		st.ProductByID("p1").Stock = 2
		return nil
	})

	s.View(func(st *State) {
		require.Equal(t, 2.0, st.ProductByID("p1").Stock)
		require.NotNil(t, st.StationByID("st1"))
		require.Nil(t, st.StationByID("missing"))
		require.Nil(t, st.OrderByID("missing"))
	})
}
