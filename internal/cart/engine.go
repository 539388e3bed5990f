// Package cart implements order assembly. Stock is reserved eagerly, at the
// moment a line enters the cart, so two cashiers cannot promise the same
// last unit. Removing a line (or abandoning the cart) returns exactly what
// was taken.
package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/ventasapp/services/pos/internal/combo"
	"example.com/ventasapp/services/pos/internal/models"
	"example.com/ventasapp/services/pos/internal/order"
	"example.com/ventasapp/services/pos/internal/repository"
	"example.com/ventasapp/services/pos/internal/stock"
	"example.com/ventasapp/services/pos/internal/store"
	"example.com/ventasapp/services/pos/internal/syncbus"
)

var (
	ErrCartNotFound      = errors.New("cart not found")
	ErrLineNotFound      = errors.New("cart line not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnitRequired      = errors.New("product requires a sale unit")
	ErrUnitNotFound      = errors.New("sale unit not found")
)

// Cart is one in-progress order.
type Cart struct {
	ID        string            `json:"id"`
	Lines     []models.CartLine `json:"lineas"`
	CreatedAt time.Time         `json:"fechaCreacion"`
}

// Total sums the cart's line subtotals.
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.Subtotal()
	}
	return total
}

// Engine owns the open carts. The carts map is only touched inside the
// store's Update/View closures, so cart edits and the stock moves they
// cause are one atomic step.
type Engine struct {
	store *store.Store
	repo  repository.Repository
	bus   syncbus.Publisher
	carts map[string]*Cart
}

func New(st *store.Store, repo repository.Repository, bus syncbus.Publisher) *Engine {
	return &Engine{
		store: st,
		repo:  repo,
		bus:   bus,
		carts: make(map[string]*Cart),
	}
}

// Create opens an empty cart.
func (e *Engine) Create() Cart {
	c := &Cart{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
	}
	e.store.View(func(*store.State) {
		e.carts[c.ID] = c
	})
	return *c
}

// Get returns a snapshot of a cart.
func (e *Engine) Get(cartID string) (Cart, error) {
	var (
		out   Cart
		found bool
	)
	e.store.View(func(*store.State) {
		if c, ok := e.carts[cartID]; ok {
			out = *c
			out.Lines = append([]models.CartLine(nil), c.Lines...)
			found = true
		}
	})
	if !found {
		return Cart{}, ErrCartNotFound
	}
	return out, nil
}

// AddItem puts one unit of a product in the cart, reserving stock. Products
// with several sale units need the unit spelled out; there is no guessing
// between a glass and a bottle.
func (e *Engine) AddItem(ctx context.Context, cartID, productID, saleUnitID string) (Cart, error) {
	var (
		out      Cart
		snapshot []models.Product
	)
	err := e.store.Update(func(st *store.State) error {
		c, ok := e.carts[cartID]
		if !ok {
			return ErrCartNotFound
		}
		p := st.ProductByID(productID)
		if p == nil {
			return ErrProductNotFound
		}

		if p.IsCombo {
			if err := e.addCombo(st, c, p); err != nil {
				return err
			}
		} else {
			if err := e.addPlain(st, c, p, saleUnitID); err != nil {
				return err
			}
		}

		out = *c
		out.Lines = append([]models.CartLine(nil), c.Lines...)
		snapshot = append([]models.Product(nil), st.Products...)
		return nil
	})
	if err != nil {
		return Cart{}, err
	}

	e.persistProducts(ctx, snapshot)
	return out, nil
}

func (e *Engine) addCombo(st *store.State, c *Cart, p *models.Product) error {
	if combo.MaxSellable(st, p) < 1 {
		return errors.Wrap(ErrInsufficientStock, p.Name)
	}
	combo.ApplyDelta(st, p, 1)

	for i := range c.Lines {
		if c.Lines[i].ProductID == p.ID {
			c.Lines[i].Quantity++
			return nil
		}
	}
	c.Lines = append(c.Lines, models.CartLine{
		ProductID:  p.ID,
		Name:       p.Name,
		UnitPrice:  p.EffectivePrice(),
		Quantity:   1,
		IsCombo:    true,
		Factor:     1,
		AutoDeduct: true,
	})
	return nil
}

func (e *Engine) addPlain(st *store.State, c *Cart, p *models.Product, saleUnitID string) error {
	price := p.Price
	factor := 1.0
	deducts := true
	unitName := ""

	var u *models.SaleUnit
	switch {
	case saleUnitID != "":
		if u = p.SaleUnit(saleUnitID); u == nil {
			return ErrUnitNotFound
		}
	case len(p.SaleUnits) > 1:
		// Several ways to sell this product; the caller has to pick one.
		return errors.Wrap(ErrUnitRequired, p.Name)
	case len(p.SaleUnits) == 1:
		u = &p.SaleUnits[0]
		saleUnitID = u.ID
	}
	if u != nil {
		price = u.Price
		factor = u.Factor
		if factor <= 0 {
			factor = 1
		}
		deducts = u.Deducts()
		unitName = u.Name
	}

	if deducts {
		if stock.Available(st, p.ID) < factor {
			return errors.Wrap(ErrInsufficientStock, p.Name)
		}
		stock.Reserve(st, p.ID, factor)
	}

	for i := range c.Lines {
		if c.Lines[i].ProductID == p.ID && c.Lines[i].SaleUnitID == saleUnitID {
			c.Lines[i].Quantity++
			return nil
		}
	}
	name := p.Name
	if unitName != "" {
		name = p.Name + " (" + unitName + ")"
	}
	c.Lines = append(c.Lines, models.CartLine{
		ProductID:  p.ID,
		Name:       name,
		UnitPrice:  price,
		Quantity:   1,
		SaleUnitID: saleUnitID,
		Factor:     factor,
		AutoDeduct: deducts,
	})
	return nil
}

// SetQuantity adjusts a line to an exact quantity. Zero or less removes the
// line. Increases are all-or-nothing: if stock cannot cover the whole step,
// the line keeps its old quantity.
func (e *Engine) SetQuantity(ctx context.Context, cartID, productID, saleUnitID string, quantity float64) (Cart, error) {
	var (
		out      Cart
		snapshot []models.Product
	)
	err := e.store.Update(func(st *store.State) error {
		c, ok := e.carts[cartID]
		if !ok {
			return ErrCartNotFound
		}
		idx := lineIndex(c, productID, saleUnitID)
		if idx < 0 {
			return ErrLineNotFound
		}
		line := &c.Lines[idx]

		if quantity <= 0 {
			releaseLine(st, *line, line.Quantity)
			c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
		} else {
			delta := quantity - line.Quantity
			if delta > 0 {
				if err := reserveDelta(st, *line, delta); err != nil {
					return err
				}
			} else if delta < 0 {
				releaseLine(st, *line, -delta)
			}
			line.Quantity = quantity
		}

		out = *c
		out.Lines = append([]models.CartLine(nil), c.Lines...)
		snapshot = append([]models.Product(nil), st.Products...)
		return nil
	})
	if err != nil {
		return Cart{}, err
	}

	e.persistProducts(ctx, snapshot)
	return out, nil
}

// RemoveLine drops a line and returns its reserved stock.
func (e *Engine) RemoveLine(ctx context.Context, cartID, productID, saleUnitID string) (Cart, error) {
	return e.SetQuantity(ctx, cartID, productID, saleUnitID, 0)
}

func lineIndex(c *Cart, productID, saleUnitID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID && c.Lines[i].SaleUnitID == saleUnitID {
			return i
		}
	}
	return -1
}

// reserveDelta takes stock for added quantity, refusing unless the whole
// delta fits.
func reserveDelta(st *store.State, line models.CartLine, delta float64) error {
	if line.IsCombo {
		p := st.ProductByID(line.ProductID)
		if p == nil {
			return ErrProductNotFound
		}
		if float64(combo.MaxSellable(st, p)) < delta {
			return errors.Wrap(ErrInsufficientStock, line.Name)
		}
		combo.ApplyDelta(st, p, delta)
		return nil
	}
	if !line.AutoDeduct {
		return nil
	}
	needed := delta * line.Factor
	if stock.Available(st, line.ProductID) < needed {
		return errors.Wrap(ErrInsufficientStock, line.Name)
	}
	stock.Reserve(st, line.ProductID, needed)
	return nil
}

// releaseLine gives back the stock a quantity of the line holds.
func releaseLine(st *store.State, line models.CartLine, quantity float64) {
	if line.IsCombo {
		if p := st.ProductByID(line.ProductID); p != nil {
			combo.ApplyDelta(st, p, -quantity)
		}
		return
	}
	if !line.AutoDeduct {
		return
	}
	stock.Release(st, line.ProductID, quantity*line.Factor)
}

// Checkout finalizes the cart into an order and closes the cart, both inside
// one store update: a concurrent cart edit lands either before the lines are
// read (and ships with the order) or after the cart is gone (and reserves
// nothing). Stock stays where the reservations put it; order assembly never
// deducts again.
func (e *Engine) Checkout(ctx context.Context, cartID, customer string, method models.PaymentMethod, receiptURL string) (models.Order, error) {
	var (
		created  models.Order
		snapshot []models.Order
	)
	err := e.store.Update(func(st *store.State) error {
		c, ok := e.carts[cartID]
		if !ok {
			return ErrCartNotFound
		}
		o, err := order.Assemble(st, c.Lines, customer, method, receiptURL)
		if err != nil {
			return err
		}
		delete(e.carts, cartID)
		created = o
		snapshot = append([]models.Order(nil), st.Orders...)
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	e.persistOrders(ctx, snapshot)
	e.publish(ctx, syncbus.EventOrderCreated, created)
	return created, nil
}

// Cancel abandons the cart, rolling back every reservation it made.
func (e *Engine) Cancel(ctx context.Context, cartID string) error {
	var snapshot []models.Product
	err := e.store.Update(func(st *store.State) error {
		c, ok := e.carts[cartID]
		if !ok {
			return ErrCartNotFound
		}
		for _, line := range c.Lines {
			releaseLine(st, line, line.Quantity)
		}
		delete(e.carts, cartID)
		snapshot = append([]models.Product(nil), st.Products...)
		return nil
	})
	if err != nil {
		return err
	}

	e.persistProducts(ctx, snapshot)
	return nil
}

func (e *Engine) persistProducts(ctx context.Context, products []models.Product) {
	if e.repo != nil {
		if err := e.repo.SaveProducts(ctx, products); err != nil {
			log.Warn().Err(err).Msg("Failed to persist products, in-memory state remains authoritative")
		}
	}
	e.publish(ctx, syncbus.EventProductsReplaced, products)
}

func (e *Engine) persistOrders(ctx context.Context, orders []models.Order) {
	if e.repo == nil {
		return
	}
	if err := e.repo.SaveOrders(ctx, orders); err != nil {
		log.Warn().Err(err).Msg("Failed to persist orders, in-memory state remains authoritative")
	}
}

func (e *Engine) publish(ctx context.Context, eventType string, payload interface{}) {
	if e.bus == nil {
		return
	}
	if err := e.bus.Publish(ctx, eventType, payload); err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("Failed to publish sync event")
	}
}
