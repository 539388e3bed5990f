package models

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestParseOrderState(t *testing.T) {
	for _, raw := range []string{"pendiente", "en_elaboracion", "listo", "entregado"} {
		state, err := ParseOrderState(raw)
		require.NoError(t, err)
		require.Equal(t, OrderState(raw), state)
	}

	_, err := ParseOrderState("cancelado")
	require.True(t, errors.Is(err, ErrInvalidState))
}

func TestStationTransitionsAreStrictlyForward(t *testing.T) {
	require.True(t, StatePending.CanAdvanceTo(StateInPreparation))
	require.True(t, StateInPreparation.CanAdvanceTo(StateReady))

	// Skipping a step or moving backwards is rejected.
	require.False(t, StatePending.CanAdvanceTo(StateReady))
	require.False(t, StateReady.CanAdvanceTo(StateInPreparation))
	require.False(t, StateInPreparation.CanAdvanceTo(StatePending))
	require.False(t, StateReady.CanAdvanceTo(StateDelivered))
	require.False(t, StatePending.CanAdvanceTo(StatePending))
}

func TestParsePaymentMethod(t *testing.T) {
	for _, raw := range []string{"efectivo", "transferencia", "hijo_comunidad"} {
		method, err := ParsePaymentMethod(raw)
		require.NoError(t, err)
		require.Equal(t, PaymentMethod(raw), method)
	}

	_, err := ParsePaymentMethod("tarjeta")
	require.True(t, errors.Is(err, ErrInvalidPaymentMethod))
}

func TestSponsoredPayment(t *testing.T) {
	require.True(t, PaymentSponsored.Sponsored())
	require.False(t, PaymentCash.Sponsored())
	require.False(t, PaymentTransfer.Sponsored())
}

func TestSaleUnitDeduction(t *testing.T) {
	deduct := true
	noDeduct := false

	require.True(t, SaleUnit{Factor: 12}.Deducts())
	require.True(t, SaleUnit{Factor: 12, AutoDeduct: &deduct}.Deducts())
	require.False(t, SaleUnit{Factor: 1, AutoDeduct: &noDeduct}.Deducts())

	require.Equal(t, 12.0, SaleUnit{Factor: 12}.DeductionFactor())
	require.Equal(t, 1.0, SaleUnit{}.DeductionFactor())
	require.Equal(t, 0.0, SaleUnit{Factor: 1, AutoDeduct: &noDeduct}.DeductionFactor())
}
