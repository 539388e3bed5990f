package models

import "github.com/pkg/errors"

// OrderState is the preparation state of an order or of one station's share
// of an order. The values are the wire vocabulary used by every client.
type OrderState string

const (
	StatePending       OrderState = "pendiente"
	StateInPreparation OrderState = "en_elaboracion"
	StateReady         OrderState = "listo"
	StateDelivered     OrderState = "entregado"
)

// ErrInvalidState is returned when a state value is not part of the closed set.
var ErrInvalidState = errors.New("invalid order state")

// ErrInvalidTransition is returned when a station transition is not allowed
// by the forward transition table.
var ErrInvalidTransition = errors.New("invalid state transition")

// ParseOrderState validates a raw state value against the closed set.
func ParseOrderState(raw string) (OrderState, error) {
	switch s := OrderState(raw); s {
	case StatePending, StateInPreparation, StateReady, StateDelivered:
		return s, nil
	}
	return "", errors.Wrapf(ErrInvalidState, "%q", raw)
}

// stationTransitions is the forward transition table for per-station states.
// Stations move strictly pendiente -> en_elaboracion -> listo; skipping a
// step is rejected. entregado is never a station state, it is set on the
// whole order by the delivery action.
var stationTransitions = map[OrderState]OrderState{
	StatePending:       StateInPreparation,
	StateInPreparation: StateReady,
}

// CanAdvanceTo reports whether a station may move from s to next.
func (s OrderState) CanAdvanceTo(next OrderState) bool {
	return stationTransitions[s] == next
}

// PaymentMethod identifies how an order was paid.
type PaymentMethod string

const (
	PaymentCash      PaymentMethod = "efectivo"
	PaymentTransfer  PaymentMethod = "transferencia"
	PaymentSponsored PaymentMethod = "hijo_comunidad"
)

// ErrInvalidPaymentMethod is returned when a payment method is not part of
// the closed set.
var ErrInvalidPaymentMethod = errors.New("invalid payment method")

// ParsePaymentMethod validates a raw payment method value.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch m := PaymentMethod(raw); m {
	case PaymentCash, PaymentTransfer, PaymentSponsored:
		return m, nil
	}
	return "", errors.Wrapf(ErrInvalidPaymentMethod, "%q", raw)
}

// Sponsored reports whether the method forces the order total to zero.
func (m PaymentMethod) Sponsored() bool {
	return m == PaymentSponsored
}

// Base units a product can be stocked in.
const (
	UnitSingle = "unidad"
	UnitDozen  = "docena"
	UnitBottle = "botella"
)
