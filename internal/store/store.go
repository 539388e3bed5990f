// Package store owns the in-memory state of the running session: stations,
// products, orders and sales. It is the single source of truth; persistence
// and cross-view sync are best-effort collaborators layered on top. All
// commands, local or applied from a remote view, mutate state through
// Update, which runs one command to completion before the next.
package store

import (
	"sync"

	"example.com/ventasapp/services/pos/internal/models"
)

// State is the mutable session state. It is only ever touched inside a
// Store.Update or Store.View closure, so no field carries its own lock.
type State struct {
	Stations []models.Station
	Products []models.Product
	Orders   []models.Order
	Sales    []models.Sale

	// lastSeq backs order sequence numbers. It never decreases, so a
	// deleted order's number is not reused.
	lastSeq int
}

// StationByID returns the station or nil.
func (s *State) StationByID(id string) *models.Station {
	for i := range s.Stations {
		if s.Stations[i].ID == id {
			return &s.Stations[i]
		}
	}
	return nil
}

// ProductByID returns the product or nil. The pointer aliases the state
// slice, so mutations through it are mutations of the session state.
func (s *State) ProductByID(id string) *models.Product {
	for i := range s.Products {
		if s.Products[i].ID == id {
			return &s.Products[i]
		}
	}
	return nil
}

// OrderByID returns the order or nil.
func (s *State) OrderByID(id string) *models.Order {
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			return &s.Orders[i]
		}
	}
	return nil
}

// NextSequence hands out the next order sequence number.
func (s *State) NextSequence() int {
	s.lastSeq++
	return s.lastSeq
}

// ObserveSequence bumps the counter past a sequence number minted elsewhere,
// keeping it monotonic across views applying each other's orders.
func (s *State) ObserveSequence(seq int) {
	if seq > s.lastSeq {
		s.lastSeq = seq
	}
}

// RemoveOrder deletes an order without releasing its sequence number.
func (s *State) RemoveOrder(id string) bool {
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			s.Orders = append(s.Orders[:i], s.Orders[i+1:]...)
			return true
		}
	}
	return false
}

// Store serializes access to the session state. Engines run compound
// commands (check availability, reserve, append) inside a single Update so
// no partially applied mutation is ever observable.
type Store struct {
	mu    sync.Mutex
	state State
}

func New() *Store {
	return &Store{}
}

// Update runs fn with exclusive access to the state. An error from fn is
// returned as-is; the closure is expected to leave the state untouched on
// failure paths (resolve fully, then apply).
func (s *Store) Update(fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.state)
}

// View runs fn with the state locked for reading. Callers must copy
// anything they keep past the closure.
func (s *Store) View(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// Seed replaces the whole state from persisted records and re-anchors the
// sequence counter at the highest number seen, so restarts never reissue a
// sequence number.
func (s *Store) Seed(stations []models.Station, products []models.Product, orders []models.Order, sales []models.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Stations = stations
	s.state.Products = products
	s.state.Orders = orders
	s.state.Sales = sales
	s.state.lastSeq = 0
	for i := range orders {
		if orders[i].Sequence > s.state.lastSeq {
			s.state.lastSeq = orders[i].Sequence
		}
	}
}
