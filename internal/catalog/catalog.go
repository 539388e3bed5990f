// Package catalog manages the stations and products an operator can sell:
// admin CRUD, station assignment, manual stock edits, and the availability
// listings the sales views are built from.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/ventasapp/services/pos/internal/combo"
	"example.com/ventasapp/services/pos/internal/models"
	"example.com/ventasapp/services/pos/internal/repository"
	"example.com/ventasapp/services/pos/internal/stock"
	"example.com/ventasapp/services/pos/internal/store"
	"example.com/ventasapp/services/pos/internal/syncbus"
)

// Domain errors surfaced to the operator.
var (
	ErrStationNotFound    = errors.New("station not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrStationHasProducts = errors.New("station has products assigned")
	ErrEmptyName          = errors.New("name must not be empty")
)

const (
	defaultAvatar   = "👨‍🍳"
	defaultIcon     = "📦"
	defaultCategory = "Otros"
)

// Service is the catalog store.
type Service struct {
	store *store.Store
	repo  repository.Repository
	bus   syncbus.Publisher
}

func New(st *store.Store, repo repository.Repository, bus syncbus.Publisher) *Service {
	return &Service{store: st, repo: repo, bus: bus}
}

// Stations lists stations in creation order.
func (s *Service) Stations() []models.Station {
	var out []models.Station
	s.store.View(func(st *store.State) {
		out = append([]models.Station(nil), st.Stations...)
	})
	return out
}

// CreateStation registers a new work-center.
func (s *Service) CreateStation(ctx context.Context, name, avatar string) (models.Station, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Station{}, ErrEmptyName
	}
	if avatar == "" {
		avatar = defaultAvatar
	}

	station := models.Station{
		ID:        uuid.New().String(),
		Name:      name,
		Avatar:    avatar,
		CreatedAt: time.Now(),
	}
	var snapshot []models.Station
	_ = s.store.Update(func(st *store.State) error {
		st.Stations = append(st.Stations, station)
		snapshot = append([]models.Station(nil), st.Stations...)
		return nil
	})

	s.persistStations(ctx, snapshot)
	s.publish(ctx, syncbus.EventStationsReplaced, snapshot)
	return station, nil
}

// StationUpdate carries the fields an operator may change; nil leaves the
// field untouched.
type StationUpdate struct {
	Name   *string
	Avatar *string
}

// UpdateStation applies a partial update.
func (s *Service) UpdateStation(ctx context.Context, id string, upd StationUpdate) (models.Station, error) {
	var (
		updated  models.Station
		snapshot []models.Station
	)
	err := s.store.Update(func(st *store.State) error {
		station := st.StationByID(id)
		if station == nil {
			return ErrStationNotFound
		}
		if upd.Name != nil && strings.TrimSpace(*upd.Name) != "" {
			station.Name = strings.TrimSpace(*upd.Name)
		}
		if upd.Avatar != nil && *upd.Avatar != "" {
			station.Avatar = *upd.Avatar
		}
		updated = *station
		snapshot = append([]models.Station(nil), st.Stations...)
		return nil
	})
	if err != nil {
		return models.Station{}, err
	}

	s.persistStations(ctx, snapshot)
	s.publish(ctx, syncbus.EventStationsReplaced, snapshot)
	return updated, nil
}

// DeleteStation removes a station. It refuses while any product references
// the station; products must be reassigned first, there is no cascade.
func (s *Service) DeleteStation(ctx context.Context, id string) error {
	var snapshot []models.Station
	err := s.store.Update(func(st *store.State) error {
		if st.StationByID(id) == nil {
			return ErrStationNotFound
		}
		for i := range st.Products {
			if st.Products[i].StationID != nil && *st.Products[i].StationID == id {
				return ErrStationHasProducts
			}
		}
		for i := range st.Stations {
			if st.Stations[i].ID == id {
				st.Stations = append(st.Stations[:i], st.Stations[i+1:]...)
				break
			}
		}
		snapshot = append([]models.Station(nil), st.Stations...)
		return nil
	})
	if err != nil {
		return err
	}

	s.persistStations(ctx, snapshot)
	s.publish(ctx, syncbus.EventStationsReplaced, snapshot)
	return nil
}

// Products lists the full catalog in creation order.
func (s *Service) Products() []models.Product {
	var out []models.Product
	s.store.View(func(st *store.State) {
		out = append([]models.Product(nil), st.Products...)
	})
	return out
}

// Product returns one product.
func (s *Service) Product(id string) (models.Product, error) {
	var (
		out   models.Product
		found bool
	)
	s.store.View(func(st *store.State) {
		if p := st.ProductByID(id); p != nil {
			out = *p
			found = true
		}
	})
	if !found {
		return models.Product{}, ErrProductNotFound
	}
	return out, nil
}

// CreateProduct adds a product (or combo) to the catalog, filling the same
// defaults the historical clients relied on.
func (s *Service) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return models.Product{}, ErrEmptyName
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Category == "" {
		p.Category = defaultCategory
	}
	if p.Icon == "" {
		p.Icon = defaultIcon
	}
	if p.BaseUnit == "" {
		p.BaseUnit = models.UnitSingle
	}
	if p.Stock < 0 {
		p.Stock = 0
	}
	p.CreatedAt = time.Now()

	var snapshot []models.Product
	_ = s.store.Update(func(st *store.State) error {
		st.Products = append(st.Products, p)
		snapshot = append([]models.Product(nil), st.Products...)
		return nil
	})

	s.persistProducts(ctx, snapshot)
	s.publish(ctx, syncbus.EventProductsReplaced, snapshot)
	return p, nil
}

// ProductUpdate carries a partial product edit; nil fields are untouched.
// Stock passes through the stock ledger so the zero floor holds.
type ProductUpdate struct {
	Name        *string
	Category    *string
	Price       *float64
	Stock       *float64
	StationID   *string // empty string unassigns
	Description *string
	Icon        *string
	ImageURL    *string
	ComboPrice  *float64
	Components  models.ComboComponentList
	BaseUnit    *string
	SaleUnits   []models.SaleUnit
}

// UpdateProduct applies a partial update.
func (s *Service) UpdateProduct(ctx context.Context, id string, upd ProductUpdate) (models.Product, error) {
	var (
		updated  models.Product
		snapshot []models.Product
	)
	err := s.store.Update(func(st *store.State) error {
		p := st.ProductByID(id)
		if p == nil {
			return ErrProductNotFound
		}
		if upd.Name != nil && strings.TrimSpace(*upd.Name) != "" {
			p.Name = strings.TrimSpace(*upd.Name)
		}
		if upd.Category != nil {
			p.Category = *upd.Category
		}
		if upd.Price != nil {
			p.Price = *upd.Price
		}
		if upd.Stock != nil {
			stock.Set(st, id, *upd.Stock)
		}
		if upd.StationID != nil {
			if *upd.StationID == "" {
				p.StationID = nil
			} else {
				p.StationID = upd.StationID
			}
		}
		if upd.Description != nil {
			p.Description = *upd.Description
		}
		if upd.Icon != nil {
			p.Icon = *upd.Icon
		}
		if upd.ImageURL != nil {
			p.ImageURL = *upd.ImageURL
		}
		if upd.ComboPrice != nil {
			p.ComboPrice = upd.ComboPrice
		}
		if upd.Components != nil {
			p.Components = upd.Components
		}
		if upd.BaseUnit != nil {
			p.BaseUnit = *upd.BaseUnit
		}
		if upd.SaleUnits != nil {
			p.SaleUnits = upd.SaleUnits
		}
		updated = *p
		snapshot = append([]models.Product(nil), st.Products...)
		return nil
	})
	if err != nil {
		return models.Product{}, err
	}

	s.persistProducts(ctx, snapshot)
	s.publish(ctx, syncbus.EventProductsReplaced, snapshot)
	return updated, nil
}

// AdjustStock applies a signed manual stock delta, floored at zero.
func (s *Service) AdjustStock(ctx context.Context, id string, delta float64) (models.Product, error) {
	var (
		updated  models.Product
		snapshot []models.Product
	)
	err := s.store.Update(func(st *store.State) error {
		p := st.ProductByID(id)
		if p == nil {
			return ErrProductNotFound
		}
		stock.Adjust(st, id, delta)
		updated = *p
		snapshot = append([]models.Product(nil), st.Products...)
		return nil
	})
	if err != nil {
		return models.Product{}, err
	}

	s.persistProducts(ctx, snapshot)
	s.publish(ctx, syncbus.EventProductsReplaced, snapshot)
	return updated, nil
}

// DeleteProduct removes a product from the catalog.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	var snapshot []models.Product
	err := s.store.Update(func(st *store.State) error {
		for i := range st.Products {
			if st.Products[i].ID == id {
				st.Products = append(st.Products[:i], st.Products[i+1:]...)
				snapshot = append([]models.Product(nil), st.Products...)
				return nil
			}
		}
		return ErrProductNotFound
	})
	if err != nil {
		return err
	}

	s.persistProducts(ctx, snapshot)
	s.publish(ctx, syncbus.EventProductsReplaced, snapshot)
	return nil
}

// AvailableProducts lists what can be sold right now: stationed products
// with stock (or a non-deducting sale unit, which sells without stock), and
// combos whose components are all stationed with at least one unit sellable.
func (s *Service) AvailableProducts() []models.Product {
	var out []models.Product
	s.store.View(func(st *store.State) {
		for i := range st.Products {
			p := &st.Products[i]
			if p.IsCombo {
				if combo.ComponentsStationed(st, p) && combo.MaxSellable(st, p) >= 1 {
					out = append(out, *p)
				}
				continue
			}
			if !p.HasStation() {
				continue
			}
			sellsWithoutStock := false
			for _, u := range p.SaleUnits {
				if !u.Deducts() {
					sellsWithoutStock = true
					break
				}
			}
			if p.Stock > 0 || sellsWithoutStock {
				out = append(out, *p)
			}
		}
	})
	return out
}

// ProductsByStation lists the products assigned to one station.
func (s *Service) ProductsByStation(stationID string) []models.Product {
	var out []models.Product
	s.store.View(func(st *store.State) {
		for i := range st.Products {
			p := &st.Products[i]
			if p.StationID != nil && *p.StationID == stationID {
				out = append(out, *p)
			}
		}
	})
	return out
}

// ApplyRemoteStations replaces the station list from a sync event. The
// replacement is persisted locally but not re-published.
func (s *Service) ApplyRemoteStations(ctx context.Context, stations []models.Station) {
	_ = s.store.Update(func(st *store.State) error {
		st.Stations = stations
		return nil
	})
	s.persistStations(ctx, stations)
}

// ApplyRemoteProducts replaces the product list from a sync event.
func (s *Service) ApplyRemoteProducts(ctx context.Context, products []models.Product) {
	_ = s.store.Update(func(st *store.State) error {
		st.Products = products
		return nil
	})
	s.persistProducts(ctx, products)
}

// ClearCatalog wipes stations and products (full system reset path).
func (s *Service) ClearCatalog(ctx context.Context) {
	_ = s.store.Update(func(st *store.State) error {
		st.Stations = nil
		st.Products = nil
		return nil
	})
	s.persistStations(ctx, nil)
	s.persistProducts(ctx, nil)
	s.publish(ctx, syncbus.EventStationsReplaced, []models.Station{})
	s.publish(ctx, syncbus.EventProductsReplaced, []models.Product{})
}

func (s *Service) persistStations(ctx context.Context, stations []models.Station) {
	if s.repo == nil {
		return
	}
	if err := s.repo.SaveStations(ctx, stations); err != nil {
		log.Warn().Err(err).Msg("Failed to persist stations, in-memory state remains authoritative")
	}
}

func (s *Service) persistProducts(ctx context.Context, products []models.Product) {
	if s.repo == nil {
		return
	}
	if err := s.repo.SaveProducts(ctx, products); err != nil {
		log.Warn().Err(err).Msg("Failed to persist products, in-memory state remains authoritative")
	}
}

func (s *Service) publish(ctx context.Context, eventType string, payload interface{}) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, eventType, payload); err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("Failed to publish sync event")
	}
}
