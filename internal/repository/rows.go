package repository

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"example.com/ventasapp/services/pos/internal/models"
)

// Row types mirror the historical table layout (Spanish column names, jsonb
// for nested item lists) so an existing database keeps working unchanged.

type stationRow struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:nombre;not null"`
	Avatar    string    `gorm:"column:avatar"`
	CreatedAt time.Time `gorm:"column:fecha_creacion"`
}

func (stationRow) TableName() string { return "puestos" }

type productRow struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:nombre;not null"`
	Category    string    `gorm:"column:categoria"`
	Price       float64   `gorm:"column:precio"`
	Stock       float64   `gorm:"column:stock"`
	StationID   *string   `gorm:"column:puesto_id"`
	Description string    `gorm:"column:descripcion"`
	Icon        string    `gorm:"column:icono"`
	ImageURL    string    `gorm:"column:imagen_url"`
	IsCombo     bool      `gorm:"column:es_combo"`
	Components  []byte    `gorm:"column:productos_combo;type:jsonb"`
	ComboPrice  *float64  `gorm:"column:precio_combo"`
	BaseUnit    string    `gorm:"column:unidad_base"`
	SaleUnits   []byte    `gorm:"column:unidades_venta;type:jsonb"`
	CreatedAt   time.Time `gorm:"column:fecha_creacion"`
}

func (productRow) TableName() string { return "productos" }

type orderRow struct {
	ID             string    `gorm:"column:id;primaryKey"`
	Sequence       int       `gorm:"column:numero"`
	Customer       string    `gorm:"column:cliente"`
	State          string    `gorm:"column:estado"`
	Total          float64   `gorm:"column:total"`
	PaymentMethod  string    `gorm:"column:metodo_pago"`
	ReceiptURL     string    `gorm:"column:comprobante_url"`
	Items          []byte    `gorm:"column:items;type:jsonb"`
	ItemsByStation []byte    `gorm:"column:items_por_puesto;type:jsonb"`
	StateByStation []byte    `gorm:"column:estados_por_puesto;type:jsonb"`
	CreatedAt      time.Time `gorm:"column:fecha_creacion"`
	UpdatedAt      time.Time `gorm:"column:fecha_actualizacion"`
}

func (orderRow) TableName() string { return "pedidos" }

type saleRow struct {
	ID            string    `gorm:"column:id;primaryKey"`
	OrderID       string    `gorm:"column:pedido_id"`
	OrderSequence int       `gorm:"column:numero_pedido"`
	Customer      string    `gorm:"column:cliente"`
	Total         float64   `gorm:"column:total"`
	PaymentMethod string    `gorm:"column:metodo_pago"`
	ReceiptURL    string    `gorm:"column:comprobante_url"`
	Items         []byte    `gorm:"column:items;type:jsonb"`
	CreatedAt     time.Time `gorm:"column:fecha"`
	SaleDay       string    `gorm:"column:fecha_venta"`
}

func (saleRow) TableName() string { return "ventas" }

func stationToRow(s models.Station) stationRow {
	return stationRow{ID: s.ID, Name: s.Name, Avatar: s.Avatar, CreatedAt: s.CreatedAt}
}

func stationFromRow(r stationRow) models.Station {
	return models.Station{ID: r.ID, Name: r.Name, Avatar: r.Avatar, CreatedAt: r.CreatedAt}
}

func productToRow(p models.Product) (productRow, error) {
	components, err := json.Marshal(p.Components)
	if err != nil {
		return productRow{}, errors.Wrap(err, "marshal combo components")
	}
	var units []byte
	if p.SaleUnits != nil {
		if units, err = json.Marshal(p.SaleUnits); err != nil {
			return productRow{}, errors.Wrap(err, "marshal sale units")
		}
	}
	return productRow{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		StationID:   p.StationID,
		Description: p.Description,
		Icon:        p.Icon,
		ImageURL:    p.ImageURL,
		IsCombo:     p.IsCombo,
		Components:  components,
		ComboPrice:  p.ComboPrice,
		BaseUnit:    p.BaseUnit,
		SaleUnits:   units,
		CreatedAt:   p.CreatedAt,
	}, nil
}

func productFromRow(r productRow) (models.Product, error) {
	p := models.Product{
		ID:          r.ID,
		Name:        r.Name,
		Category:    r.Category,
		Price:       r.Price,
		Stock:       r.Stock,
		StationID:   r.StationID,
		Description: r.Description,
		Icon:        r.Icon,
		ImageURL:    r.ImageURL,
		IsCombo:     r.IsCombo,
		ComboPrice:  r.ComboPrice,
		BaseUnit:    r.BaseUnit,
		CreatedAt:   r.CreatedAt,
	}
	if len(r.Components) > 0 {
		// The jsonb column may still hold the legacy flat-ID encoding;
		// ComboComponentList normalizes it on decode.
		if err := json.Unmarshal(r.Components, &p.Components); err != nil {
			return models.Product{}, errors.Wrapf(ErrBadEncoding, "product %s combo components: %v", r.ID, err)
		}
	}
	if len(r.SaleUnits) > 0 && string(r.SaleUnits) != "null" {
		if err := json.Unmarshal(r.SaleUnits, &p.SaleUnits); err != nil {
			return models.Product{}, errors.Wrapf(ErrBadEncoding, "product %s sale units: %v", r.ID, err)
		}
	}
	return p, nil
}

func orderToRow(o models.Order) (orderRow, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return orderRow{}, errors.Wrap(err, "marshal order items")
	}
	byStation, err := json.Marshal(o.ItemsByStation)
	if err != nil {
		return orderRow{}, errors.Wrap(err, "marshal items by station")
	}
	states, err := json.Marshal(o.StateByStation)
	if err != nil {
		return orderRow{}, errors.Wrap(err, "marshal states by station")
	}
	return orderRow{
		ID:             o.ID,
		Sequence:       o.Sequence,
		Customer:       o.Customer,
		State:          string(o.State),
		Total:          o.Total,
		PaymentMethod:  string(o.PaymentMethod),
		ReceiptURL:     o.ReceiptURL,
		Items:          items,
		ItemsByStation: byStation,
		StateByStation: states,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}, nil
}

func orderFromRow(r orderRow) (models.Order, error) {
	o := models.Order{
		ID:            r.ID,
		Sequence:      r.Sequence,
		Customer:      r.Customer,
		State:         models.OrderState(r.State),
		Total:         r.Total,
		PaymentMethod: models.PaymentMethod(r.PaymentMethod),
		ReceiptURL:    r.ReceiptURL,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if len(r.Items) > 0 {
		if err := json.Unmarshal(r.Items, &o.Items); err != nil {
			return models.Order{}, errors.Wrapf(ErrBadEncoding, "order %s items: %v", r.ID, err)
		}
	}
	if len(r.ItemsByStation) > 0 {
		if err := json.Unmarshal(r.ItemsByStation, &o.ItemsByStation); err != nil {
			return models.Order{}, errors.Wrapf(ErrBadEncoding, "order %s items by station: %v", r.ID, err)
		}
	}
	if len(r.StateByStation) > 0 {
		if err := json.Unmarshal(r.StateByStation, &o.StateByStation); err != nil {
			return models.Order{}, errors.Wrapf(ErrBadEncoding, "order %s states by station: %v", r.ID, err)
		}
	}
	if o.ItemsByStation == nil {
		o.ItemsByStation = map[string][]models.OrderItem{}
	}
	if o.StateByStation == nil {
		o.StateByStation = map[string]models.OrderState{}
	}
	return o, nil
}

func saleToRow(v models.Sale) (saleRow, error) {
	items, err := json.Marshal(v.Items)
	if err != nil {
		return saleRow{}, errors.Wrap(err, "marshal sale items")
	}
	return saleRow{
		ID:            v.ID,
		OrderID:       v.OrderID,
		OrderSequence: v.OrderSequence,
		Customer:      v.Customer,
		Total:         v.Total,
		PaymentMethod: string(v.PaymentMethod),
		ReceiptURL:    v.ReceiptURL,
		Items:         items,
		CreatedAt:     v.CreatedAt,
		SaleDay:       v.SaleDay,
	}, nil
}

func saleFromRow(r saleRow) (models.Sale, error) {
	v := models.Sale{
		ID:            r.ID,
		OrderID:       r.OrderID,
		OrderSequence: r.OrderSequence,
		Customer:      r.Customer,
		Total:         r.Total,
		PaymentMethod: models.PaymentMethod(r.PaymentMethod),
		ReceiptURL:    r.ReceiptURL,
		CreatedAt:     r.CreatedAt,
		SaleDay:       r.SaleDay,
	}
	if len(r.Items) > 0 {
		if err := json.Unmarshal(r.Items, &v.Items); err != nil {
			return models.Sale{}, errors.Wrapf(ErrBadEncoding, "sale %s items: %v", r.ID, err)
		}
	}
	return v, nil
}
