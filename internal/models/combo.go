package models

import (
	"bytes"
	"encoding/json"
)

// ComboComponent is one product entry inside a combo definition, optionally
// pinned to one of the product's sale units.
type ComboComponent struct {
	ProductID  string  `json:"productoId"`
	Quantity   float64 `json:"cantidad"`
	SaleUnitID string  `json:"unidadVentaId,omitempty"`
}

// ComboComponentList normalizes the two encodings found in stored catalogs:
// the canonical list of {productoId, cantidad, unidadVentaId?} objects and
// the legacy flat list of repeated product IDs where the quantity is the
// occurrence count. Everything past this decoder sees only the canonical
// shape.
type ComboComponentList []ComboComponent

func (l *ComboComponentList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}

	out := make(ComboComponentList, 0, len(raw))
	if isObject(raw[0]) {
		for _, r := range raw {
			var c struct {
				ProductID  json.RawMessage `json:"productoId"`
				Quantity   float64         `json:"cantidad"`
				SaleUnitID json.RawMessage `json:"unidadVentaId"`
			}
			if err := json.Unmarshal(r, &c); err != nil {
				return err
			}
			id := scalarString(c.ProductID)
			if id == "" {
				continue
			}
			qty := c.Quantity
			if qty == 0 {
				qty = 1
			}
			out = append(out, ComboComponent{
				ProductID:  id,
				Quantity:   qty,
				SaleUnitID: scalarString(c.SaleUnitID),
			})
		}
		*l = out
		return nil
	}

	// Legacy encoding: repeated scalar IDs, quantity = occurrence count.
	counts := make(map[string]float64, len(raw))
	var order []string
	for _, r := range raw {
		id := scalarString(r)
		if id == "" {
			continue
		}
		if _, seen := counts[id]; !seen {
			order = append(order, id)
		}
		counts[id]++
	}
	for _, id := range order {
		out = append(out, ComboComponent{ProductID: id, Quantity: counts[id]})
	}
	*l = out
	return nil
}

// scalarString renders a JSON string or number as a stable ID string.
// Numeric IDs come from clients that stored millisecond timestamps unquoted.
func scalarString(raw json.RawMessage) string {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 || string(b) == "null" {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	}
	return ""
}

func isObject(raw json.RawMessage) bool {
	b := bytes.TrimSpace(raw)
	return len(b) > 0 && b[0] == '{'
}
