package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComboComponentListCanonicalEncoding(t *testing.T) {
	data := []byte(`[
		{"productoId": "p1", "cantidad": 2},
		{"productoId": "p2", "cantidad": 1, "unidadVentaId": "vaso"}
	]`)

	var list ComboComponentList
	require.NoError(t, json.Unmarshal(data, &list))

	require.Len(t, list, 2)
	require.Equal(t, ComboComponent{ProductID: "p1", Quantity: 2}, list[0])
	require.Equal(t, ComboComponent{ProductID: "p2", Quantity: 1, SaleUnitID: "vaso"}, list[1])
}

func TestComboComponentListMissingQuantityDefaultsToOne(t *testing.T) {
	data := []byte(`[{"productoId": "p1"}]`)

	var list ComboComponentList
	require.NoError(t, json.Unmarshal(data, &list))

	require.Len(t, list, 1)
	require.Equal(t, 1.0, list[0].Quantity)
}

func TestComboComponentListLegacyEncoding(t *testing.T) {
	// Repeated IDs collapse into occurrence counts, first-seen order kept.
	data := []byte(`["p1", "p2", "p1", "p1"]`)

	var list ComboComponentList
	require.NoError(t, json.Unmarshal(data, &list))

	require.Len(t, list, 2)
	require.Equal(t, ComboComponent{ProductID: "p1", Quantity: 3}, list[0])
	require.Equal(t, ComboComponent{ProductID: "p2", Quantity: 1}, list[1])
}

func TestComboComponentListLegacyNumericIDs(t *testing.T) {
	data := []byte(`[1712345678901, 1712345678901, 1712345678902]`)

	var list ComboComponentList
	require.NoError(t, json.Unmarshal(data, &list))

	require.Len(t, list, 2)
	require.Equal(t, "1712345678901", list[0].ProductID)
	require.Equal(t, 2.0, list[0].Quantity)
	require.Equal(t, "1712345678902", list[1].ProductID)
}

func TestComboComponentListEmpty(t *testing.T) {
	var list ComboComponentList
	require.NoError(t, json.Unmarshal([]byte(`[]`), &list))
	require.Nil(t, list)
}
