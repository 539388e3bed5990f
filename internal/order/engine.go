// Package order implements the preparation pipeline: finalizing a cart into
// an order, routing its items to stations, and walking each station's slice
// of the order through the pendiente / en_elaboracion / listo states.
package order

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/ventasapp/services/pos/internal/models"
	"example.com/ventasapp/services/pos/internal/repository"
	"example.com/ventasapp/services/pos/internal/store"
	"example.com/ventasapp/services/pos/internal/syncbus"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrStationNotInOrder = errors.New("order has no items for station")
	ErrEmptyOrder        = errors.New("order has no lines")
	ErrEmptyCustomer     = errors.New("customer name must not be empty")
)

// Engine owns the order collection.
type Engine struct {
	store *store.Store
	repo  repository.Repository
	bus   syncbus.Publisher
}

func New(st *store.Store, repo repository.Repository, bus syncbus.Publisher) *Engine {
	return &Engine{store: st, repo: repo, bus: bus}
}

// Assemble builds an order from a priced set of cart lines and appends it to
// the state's collection. It runs against an already-locked state so callers
// holding the store lock for other bookkeeping (closing the cart that fed it)
// can finalize in the same step. Stock was already reserved while the cart
// was edited, so no deduction happens here. Combo lines are split per
// component for station routing, each sub-item priced at the component's own
// catalog price.
func Assemble(st *store.State, lines []models.CartLine, customer string, method models.PaymentMethod, receiptURL string) (models.Order, error) {
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return models.Order{}, ErrEmptyCustomer
	}
	if len(lines) == 0 {
		return models.Order{}, ErrEmptyOrder
	}

	now := time.Now()
	o := models.Order{
		ID:             uuid.New().String(),
		Sequence:       st.NextSequence(),
		Customer:       customer,
		State:          models.StatePending,
		PaymentMethod:  method,
		ReceiptURL:     receiptURL,
		Items:          make([]models.OrderItem, 0, len(lines)),
		ItemsByStation: map[string][]models.OrderItem{},
		StateByStation: map[string]models.OrderState{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	for _, line := range lines {
		item := models.OrderItem{
			ProductID:  line.ProductID,
			Name:       line.Name,
			UnitPrice:  line.UnitPrice,
			Quantity:   line.Quantity,
			Subtotal:   line.Subtotal(),
			IsCombo:    line.IsCombo,
			SaleUnitID: line.SaleUnitID,
		}
		p := st.ProductByID(line.ProductID)
		if !line.IsCombo && p != nil && p.HasStation() {
			item.StationID = *p.StationID
		}
		o.Items = append(o.Items, item)
		o.Total += item.Subtotal

		if line.IsCombo {
			routeCombo(st, &o, p, line)
		} else if item.StationID != "" {
			o.ItemsByStation[item.StationID] = append(o.ItemsByStation[item.StationID], item)
		}
	}

	// Sponsored orders are tracked at full detail but charged nothing.
	if method.Sponsored() {
		o.Total = 0
	}

	for id := range o.ItemsByStation {
		o.StateByStation[id] = models.StatePending
	}

	st.Orders = append(st.Orders, o)
	return o, nil
}

// Finalize turns a priced set of cart lines into an order.
func (e *Engine) Finalize(ctx context.Context, lines []models.CartLine, customer string, method models.PaymentMethod, receiptURL string) (models.Order, error) {
	var (
		created  models.Order
		snapshot []models.Order
	)
	err := e.store.Update(func(st *store.State) error {
		o, err := Assemble(st, lines, customer, method, receiptURL)
		if err != nil {
			return err
		}
		created = o
		snapshot = append([]models.Order(nil), st.Orders...)
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	e.persist(ctx, snapshot)
	e.publish(ctx, syncbus.EventOrderCreated, created)
	return created, nil
}

// routeCombo expands a combo into one sub-item per stationed component.
// Components without a station are skipped; nothing can prepare them.
func routeCombo(st *store.State, o *models.Order, comboProduct *models.Product, line models.CartLine) {
	if comboProduct == nil {
		return
	}
	for _, comp := range comboProduct.Components {
		cp := st.ProductByID(comp.ProductID)
		if cp == nil || !cp.HasStation() {
			continue
		}
		name := cp.Name
		if comp.SaleUnitID != "" {
			if u := cp.SaleUnit(comp.SaleUnitID); u != nil {
				name = fmt.Sprintf("%s (%s)", cp.Name, u.Name)
			}
		}
		qty := comp.Quantity * line.Quantity
		sub := models.OrderItem{
			ProductID:   cp.ID,
			Name:        name,
			UnitPrice:   cp.Price,
			Quantity:    qty,
			Subtotal:    cp.Price * qty,
			StationID:   *cp.StationID,
			IsComboPart: true,
			ComboName:   comboProduct.Name,
			SaleUnitID:  comp.SaleUnitID,
		}
		o.ItemsByStation[sub.StationID] = append(o.ItemsByStation[sub.StationID], sub)
	}
}

// AdvanceStation moves one station's slice of an order to the next state.
// Only the two forward steps are valid; anything else is rejected. The
// overall order state is recomputed from the per-station states.
func (e *Engine) AdvanceStation(ctx context.Context, orderID, stationID string, next models.OrderState, fromRemote bool) (models.Order, error) {
	var (
		updated  models.Order
		snapshot []models.Order
	)
	err := e.store.Update(func(st *store.State) error {
		o := st.OrderByID(orderID)
		if o == nil {
			return ErrOrderNotFound
		}
		current, ok := o.StateByStation[stationID]
		if !ok {
			return ErrStationNotInOrder
		}
		if !current.CanAdvanceTo(next) {
			return errors.Wrapf(models.ErrInvalidTransition, "%s -> %s", current, next)
		}
		o.StateByStation[stationID] = next
		o.State = aggregateState(o.StateByStation)
		o.UpdatedAt = time.Now()
		updated = *o
		snapshot = append([]models.Order(nil), st.Orders...)
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	e.persist(ctx, snapshot)
	if !fromRemote {
		e.publish(ctx, syncbus.EventOrderUpdated, updated)
	}
	return updated, nil
}

// aggregateState derives the order-level state from the station states:
// ready only when every station is ready, in preparation as soon as any
// station started, pending otherwise.
func aggregateState(byStation map[string]models.OrderState) models.OrderState {
	if len(byStation) == 0 {
		return models.StatePending
	}
	allReady := true
	anyStarted := false
	for _, s := range byStation {
		if s != models.StateReady {
			allReady = false
		}
		if s == models.StateInPreparation {
			anyStarted = true
		}
	}
	switch {
	case allReady:
		return models.StateReady
	case anyStarted:
		return models.StateInPreparation
	default:
		return models.StatePending
	}
}

// MarkDelivered closes an order unconditionally; handing the food over wins
// over whatever the kanban still says.
func (e *Engine) MarkDelivered(ctx context.Context, orderID string, fromRemote bool) (models.Order, error) {
	var (
		updated  models.Order
		snapshot []models.Order
	)
	err := e.store.Update(func(st *store.State) error {
		o := st.OrderByID(orderID)
		if o == nil {
			return ErrOrderNotFound
		}
		o.State = models.StateDelivered
		for id := range o.StateByStation {
			o.StateByStation[id] = models.StateReady
		}
		o.UpdatedAt = time.Now()
		updated = *o
		snapshot = append([]models.Order(nil), st.Orders...)
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	e.persist(ctx, snapshot)
	if !fromRemote {
		e.publish(ctx, syncbus.EventOrderUpdated, updated)
	}
	return updated, nil
}

// Delete removes an order. Its sequence number is never reissued.
func (e *Engine) Delete(ctx context.Context, orderID string) error {
	var snapshot []models.Order
	err := e.store.Update(func(st *store.State) error {
		if !st.RemoveOrder(orderID) {
			return ErrOrderNotFound
		}
		snapshot = append([]models.Order(nil), st.Orders...)
		return nil
	})
	if err != nil {
		return err
	}

	e.persist(ctx, snapshot)
	e.publish(ctx, syncbus.EventOrdersReplaced, snapshot)
	return nil
}

// Orders lists all orders in creation order.
func (e *Engine) Orders() []models.Order {
	var out []models.Order
	e.store.View(func(st *store.State) {
		out = append([]models.Order(nil), st.Orders...)
	})
	return out
}

// Order returns one order by ID.
func (e *Engine) Order(orderID string) (models.Order, error) {
	var (
		out   models.Order
		found bool
	)
	e.store.View(func(st *store.State) {
		if o := st.OrderByID(orderID); o != nil {
			out = *o
			found = true
		}
	})
	if !found {
		return models.Order{}, ErrOrderNotFound
	}
	return out, nil
}

// OrdersByState lists orders currently in the given overall state.
func (e *Engine) OrdersByState(state models.OrderState) []models.Order {
	var out []models.Order
	e.store.View(func(st *store.State) {
		for i := range st.Orders {
			if st.Orders[i].State == state {
				out = append(out, st.Orders[i])
			}
		}
	})
	return out
}

// OrdersForStation lists undelivered orders carrying items for the station,
// oldest first, so the station works its queue FIFO.
func (e *Engine) OrdersForStation(stationID string) []models.Order {
	var out []models.Order
	e.store.View(func(st *store.State) {
		for i := range st.Orders {
			o := &st.Orders[i]
			if o.State == models.StateDelivered {
				continue
			}
			if _, ok := o.ItemsByStation[stationID]; ok {
				out = append(out, *o)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}

// ItemsForStation returns the station's slice of one order.
func (e *Engine) ItemsForStation(orderID, stationID string) ([]models.OrderItem, error) {
	var (
		items []models.OrderItem
		found bool
	)
	e.store.View(func(st *store.State) {
		if o := st.OrderByID(orderID); o != nil {
			found = true
			items = append([]models.OrderItem(nil), o.ItemsByStation[stationID]...)
		}
	})
	if !found {
		return nil, ErrOrderNotFound
	}
	return items, nil
}

// StateForStation returns one station's state within an order, defaulting to
// pending for stations the order never reached.
func (e *Engine) StateForStation(orderID, stationID string) (models.OrderState, error) {
	var (
		state models.OrderState = models.StatePending
		found bool
	)
	e.store.View(func(st *store.State) {
		if o := st.OrderByID(orderID); o != nil {
			found = true
			if s, ok := o.StateByStation[stationID]; ok {
				state = s
			}
		}
	})
	if !found {
		return "", ErrOrderNotFound
	}
	return state, nil
}

// ApplyRemoteOrder upserts an order received from a sync event. Persisted
// locally, never re-published.
func (e *Engine) ApplyRemoteOrder(ctx context.Context, o models.Order) {
	var snapshot []models.Order
	_ = e.store.Update(func(st *store.State) error {
		if existing := st.OrderByID(o.ID); existing != nil {
			*existing = o
		} else {
			st.Orders = append(st.Orders, o)
			st.ObserveSequence(o.Sequence)
		}
		snapshot = append([]models.Order(nil), st.Orders...)
		return nil
	})
	e.persist(ctx, snapshot)
}

// ApplyRemoteOrders replaces the whole collection from a sync event.
func (e *Engine) ApplyRemoteOrders(ctx context.Context, orders []models.Order) {
	_ = e.store.Update(func(st *store.State) error {
		st.Orders = orders
		for _, o := range orders {
			st.ObserveSequence(o.Sequence)
		}
		return nil
	})
	e.persist(ctx, orders)
}

// Clear drops every order, keeping the sequence counter where it is.
func (e *Engine) Clear(ctx context.Context) {
	_ = e.store.Update(func(st *store.State) error {
		st.Orders = nil
		return nil
	})
	e.persist(ctx, nil)
	e.publish(ctx, syncbus.EventOrdersReplaced, []models.Order{})
}

func (e *Engine) persist(ctx context.Context, orders []models.Order) {
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
