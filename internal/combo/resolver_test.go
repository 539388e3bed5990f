package combo

import (
	"testing"

	"example.com/ventasapp/services/pos/internal/models"
	"example.com/ventasapp/services/pos/internal/store"

	"github.com/stretchr/testify/require"
)

var (
	grillID = "puesto-parrilla"
	barID   = "puesto-barra"
)

func comboState() *store.State {
	noDeduct := false
	return &store.State{
		Products: []models.Product{
			{ID: "carne", Name: "Carne", Stock: 10, StationID: &grillID},
			{
				ID: "vino", Name: "Vino", Stock: 0, StationID: &barID,
				SaleUnits: []models.SaleUnit{
					{ID: "vaso", Name: "Vaso", Factor: 1, Price: 50, AutoDeduct: &noDeduct},
					{ID: "botella", Name: "Botella", Factor: 1, Price: 200},
				},
			},
			{
				ID: "combo-parrilla", Name: "Parrillada", IsCombo: true,
				Components: models.ComboComponentList{
					{ProductID: "carne", Quantity: 2},
					{ProductID: "vino", Quantity: 1, SaleUnitID: "vaso"},
				},
			},
		},
	}
}

func TestMaxSellableNonDeductingComponentDoesNotConstrain(t *testing.T) {
	st := comboState()
	combo := st.ProductByID("combo-parrilla")

	// Vino has zero stock but sells by the glass, so only carne constrains:
	// floor(10 / 2) = 5.
	require.Equal(t, 5, MaxSellable(st, combo))
}

func TestMaxSellableMissingComponentMakesComboUnsellable(t *testing.T) {
	st := comboState()
	combo := st.ProductByID("combo-parrilla")
	combo.Components = append(combo.Components, models.ComboComponent{ProductID: "ghost", Quantity: 1})

	require.Equal(t, 0, MaxSellable(st, combo))
}

func TestMaxSellableUnstationedComponentMakesComboUnsellable(t *testing.T) {
	st := comboState()
	st.ProductByID("carne").StationID = nil

	require.Equal(t, 0, MaxSellable(st, st.ProductByID("combo-parrilla")))
}

func TestMaxSellableNonPositiveQuantityMakesComboUnsellable(t *testing.T) {
	st := comboState()
	combo := st.ProductByID("combo-parrilla")
	combo.Components[0].Quantity = 0

	require.Equal(t, 0, MaxSellable(st, combo))
}

func TestMaxSellableNeedsAConstrainingComponent(t *testing.T) {
	st := comboState()
	combo := st.ProductByID("combo-parrilla")
	combo.Components = models.ComboComponentList{
		{ProductID: "vino", Quantity: 1, SaleUnitID: "vaso"},
	}

	// A combo made only of non-deducting components is never sellable.
	require.Equal(t, 0, MaxSellable(st, combo))
}

func TestMaxSellableOnPlainProductIsZero(t *testing.T) {
	st := comboState()
	require.Equal(t, 0, MaxSellable(st, st.ProductByID("carne")))
}

func TestApplyDeltaRoundTrip(t *testing.T) {
	st := comboState()
	combo := st.ProductByID("combo-parrilla")

	ApplyDelta(st, combo, 3)
	require.Equal(t, 4.0, st.ProductByID("carne").Stock)
	// Non-deducting component untouched.
	require.Equal(t, 0.0, st.ProductByID("vino").Stock)

	ApplyDelta(st, combo, -3)
	require.Equal(t, 10.0, st.ProductByID("carne").Stock)
	require.Equal(t, 0.0, st.ProductByID("vino").Stock)
}

func TestApplyDeltaHonorsUnitFactor(t *testing.T) {
	st := comboState()
	combo := st.ProductByID("combo-parrilla")
	combo.Components[1].SaleUnitID = "botella"

	ApplyDelta(st, combo, 1)
	require.Equal(t, 8.0, st.ProductByID("carne").Stock)
	// Deducting unit with factor 1 now consumes vino stock, clamped at zero.
	require.Equal(t, 0.0, st.ProductByID("vino").Stock)
}

func TestDeductionFactor(t *testing.T) {
	st := comboState()

	require.Equal(t, 1.0, DeductionFactor(st, models.ComboComponent{ProductID: "carne", Quantity: 2}))
	require.Equal(t, 0.0, DeductionFactor(st, models.ComboComponent{ProductID: "vino", Quantity: 1, SaleUnitID: "vaso"}))
	require.Equal(t, 1.0, DeductionFactor(st, models.ComboComponent{ProductID: "vino", Quantity: 1, SaleUnitID: "botella"}))
	// Unknown unit on a known product does not deduct.
	require.Equal(t, 0.0, DeductionFactor(st, models.ComboComponent{ProductID: "vino", Quantity: 1, SaleUnitID: "copa"}))
}

func TestComponentsStationed(t *testing.T) {
	st := comboState()
	combo := st.ProductByID("combo-parrilla")

	require.True(t, ComponentsStationed(st, combo))

	st.ProductByID("vino").StationID = nil
	require.False(t, ComponentsStationed(st, combo))
}
