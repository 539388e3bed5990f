package models

import "time"

// Station is a preparation work-center (a "puesto") responsible for a subset
// of the catalog. A station cannot be deleted while a product references it.
type Station struct {
	ID        string    `json:"id"`
	Name      string    `json:"nombre"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"fechaCreacion"`
}

// SaleUnit is an alternate way of selling a product (e.g. glass vs. bottle)
// with its own price and stock-deduction factor. AutoDeduct nil means true:
// selling one unit consumes Factor units of the product's stock. A unit with
// AutoDeduct=false (a glass poured from an open bottle) sells without
// consuming stock and without a quantity ceiling.
type SaleUnit struct {
	ID         string  `json:"id"`
	Name       string  `json:"nombre"`
	Factor     float64 `json:"factor"`
	Price      float64 `json:"precio"`
	AutoDeduct *bool   `json:"descuentoAutomatico,omitempty"`
}

// Deducts reports whether selling this unit consumes stock.
func (u SaleUnit) Deducts() bool {
	return u.AutoDeduct == nil || *u.AutoDeduct
}

// DeductionFactor is the stock consumed per unit sold: Factor for deducting
// units, zero for non-deducting ones.
func (u SaleUnit) DeductionFactor() float64 {
	if !u.Deducts() {
		return 0
	}
	if u.Factor > 0 {
		return u.Factor
	}
	return 1
}

// Product is a catalog entry. Stock may be fractional (dozen-based units).
// A combo is a virtual product composed of quantities of other products at a
// bundled price; combos carry no station of their own.
type Product struct {
	ID          string             `json:"id"`
	Name        string             `json:"nombre"`
	Category    string             `json:"categoria"`
	Price       float64            `json:"precio"`
	Stock       float64            `json:"stock"`
	StationID   *string            `json:"puestoId"`
	Description string             `json:"descripcion"`
	Icon        string             `json:"icono"`
	ImageURL    string             `json:"imagenUrl,omitempty"`
	IsCombo     bool               `json:"esCombo"`
	Components  ComboComponentList `json:"productosCombo,omitempty"`
	ComboPrice  *float64           `json:"precioCombo,omitempty"`
	BaseUnit    string             `json:"unidadBase"`
	SaleUnits   []SaleUnit         `json:"unidadesVenta,omitempty"`
	CreatedAt   time.Time          `json:"fechaCreacion"`
}

// HasStation reports whether the product is assigned to a station.
func (p *Product) HasStation() bool {
	return p.StationID != nil && *p.StationID != ""
}

// SaleUnit looks up a sale unit by ID.
func (p *Product) SaleUnit(id string) *SaleUnit {
	for i := range p.SaleUnits {
		if p.SaleUnits[i].ID == id {
			return &p.SaleUnits[i]
		}
	}
	return nil
}

// EffectivePrice is the price a cart line pays for one combo unit.
func (p *Product) EffectivePrice() float64 {
	if p.IsCombo && p.ComboPrice != nil {
		return *p.ComboPrice
	}
	return p.Price
}

// OrderItem is one line of a persisted order, either a flat cart line with
// its resolved station or a per-station sub-item split out of a combo.
type OrderItem struct {
	ProductID   string  `json:"productoId"`
	Name        string  `json:"nombre"`
	UnitPrice   float64 `json:"precio,omitempty"`
	Quantity    float64 `json:"cantidad"`
	Subtotal    float64 `json:"subtotal"`
	StationID   string  `json:"puestoId,omitempty"`
	IsCombo     bool    `json:"esCombo,omitempty"`
	IsComboPart bool    `json:"esParteDeCombo,omitempty"`
	ComboName   string  `json:"nombreCombo,omitempty"`
	SaleUnitID  string  `json:"unidadVentaId,omitempty"`
}

// Order is a finalized cart routed through the station pipeline.
// State is derived from StateByStation by the aggregation rule in the order
// engine, except for the terminal entregado set by the delivery action.
type Order struct {
	ID             string                 `json:"id"`
	Sequence       int                    `json:"numero"`
	Customer       string                 `json:"cliente"`
	State          OrderState             `json:"estado"`
	Total          float64                `json:"total"`
	PaymentMethod  PaymentMethod          `json:"metodoPago"`
	ReceiptURL     string                 `json:"comprobanteUrl,omitempty"`
	Items          []OrderItem            `json:"items"`
	ItemsByStation map[string][]OrderItem `json:"itemsPorPuesto"`
	StateByStation map[string]OrderState  `json:"estadosPorPuesto"`
	CreatedAt      time.Time              `json:"fechaCreacion"`
	UpdatedAt      time.Time              `json:"fechaActualizacion"`
}

// SaleDayLayout formats the calendar-day stamp used to group sales by local
// day (dd/mm/yyyy, matching the historical records).
const SaleDayLayout = "02/01/2006"

// Sale is the append-only record written when an order is delivered.
// Recording a sale never touches stock: stock was committed when the cart
// reserved it.
type Sale struct {
	ID            string        `json:"id"`
	OrderID       string        `json:"pedidoId"`
	OrderSequence int           `json:"numeroPedido"`
	Customer      string        `json:"cliente"`
	Total         float64       `json:"total"`
	PaymentMethod PaymentMethod `json:"metodoPago"`
	ReceiptURL    string        `json:"comprobanteUrl,omitempty"`
	Items         []OrderItem   `json:"items"`
	CreatedAt     time.Time     `json:"fecha"`
	SaleDay       string        `json:"fechaVenta"`
}

// CartLine is one line of an in-progress cart. Reservations already happened
// when the line was added; Factor and AutoDeduct are frozen from the sale
// unit at add time so removal releases exactly what was reserved.
type CartLine struct {
	ProductID  string  `json:"productoId"`
	Name       string  `json:"nombre"`
	UnitPrice  float64 `json:"precio"`
	Quantity   float64 `json:"cantidad"`
	IsCombo    bool    `json:"esCombo"`
	SaleUnitID string  `json:"unidadVentaId,omitempty"`
	Factor     float64 `json:"factor"`
	AutoDeduct bool    `json:"descuentoAutomatico"`
}

// Subtotal is the line's contribution to the order total.
func (l CartLine) Subtotal() float64 {
	return l.UnitPrice * l.Quantity
}
