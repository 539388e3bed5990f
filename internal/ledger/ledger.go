// Package ledger records completed sales. A sale is a financial record cut
// from a delivered order; it never moves stock, which was already consumed
// while the order was assembled.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/ventasapp/services/pos/internal/models"
	"example.com/ventasapp/services/pos/internal/order"
	"example.com/ventasapp/services/pos/internal/repository"
	"example.com/ventasapp/services/pos/internal/search"
	"example.com/ventasapp/services/pos/internal/store"
	"example.com/ventasapp/services/pos/internal/syncbus"
)

var ErrOrderNotFound = errors.New("order not found")

// Service owns the sales collection.
type Service struct {
	store  *store.Store
	repo   repository.Repository
	bus    syncbus.Publisher
	orders *order.Engine
	search *search.ElasticClient
}

func New(st *store.Store, repo repository.Repository, bus syncbus.Publisher, orders *order.Engine, es *search.ElasticClient) *Service {
	return &Service{store: st, repo: repo, bus: bus, orders: orders, search: es}
}

// RecordSale cuts a sale from an order and marks the order delivered.
// Recording the same order twice returns the first sale unchanged, so a
// double-tap at the counter cannot book revenue twice.
func (s *Service) RecordSale(ctx context.Context, orderID string, receiptURL string, fromRemote bool) (models.Sale, error) {
	var (
		sale     models.Sale
		existed  bool
		snapshot []models.Sale
	)
	err := s.store.Update(func(st *store.State) error {
		for i := range st.Sales {
			if st.Sales[i].OrderID == orderID {
				sale = st.Sales[i]
				existed = true
				return nil
			}
		}

		o := st.OrderByID(orderID)
		if o == nil {
			return ErrOrderNotFound
		}
		if receiptURL == "" {
			receiptURL = o.ReceiptURL
		}

		now := time.Now()
		sale = models.Sale{
			ID:            uuid.New().String(),
			OrderID:       o.ID,
			OrderSequence: o.Sequence,
			Customer:      o.Customer,
			Total:         o.Total,
			PaymentMethod: o.PaymentMethod,
			ReceiptURL:    receiptURL,
			Items:         append([]models.OrderItem(nil), o.Items...),
			CreatedAt:     now,
			SaleDay:       now.Format(models.SaleDayLayout),
		}
		st.Sales = append(st.Sales, sale)
		snapshot = append([]models.Sale(nil), st.Sales...)
		return nil
	})
	if err != nil {
		return models.Sale{}, err
	}
	if existed {
		return sale, nil
	}

	s.persist(ctx, snapshot)
	if !fromRemote {
		s.publish(ctx, syncbus.EventSaleRecorded, sale)
	}
	if s.search.Enabled() {
		if err := s.search.IndexSale(ctx, &sale); err != nil {
			log.Warn().Err(err).Str("sale_id", sale.ID).Msg("Failed to index sale")
		}
	}

	if _, err := s.orders.MarkDelivered(ctx, orderID, fromRemote); err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Msg("Sale recorded but order could not be marked delivered")
	}
	return sale, nil
}

// Sales lists every recorded sale, oldest first.
func (s *Service) Sales() []models.Sale {
	var out []models.Sale
	s.store.View(func(st *store.State) {
		out = append([]models.Sale(nil), st.Sales...)
	})
	return out
}

// TodaySales lists the sales cut on the current calendar day.
func (s *Service) TodaySales() []models.Sale {
	today := time.Now().Format(models.SaleDayLayout)
	var out []models.Sale
	s.store.View(func(st *store.State) {
		for i := range st.Sales {
			if st.Sales[i].SaleDay == today {
				out = append(out, st.Sales[i])
			}
		}
	})
	return out
}

// SalesByPayment filters sales by payment method.
func (s *Service) SalesByPayment(method models.PaymentMethod) []models.Sale {
	var out []models.Sale
	s.store.View(func(st *store.State) {
		for i := range st.Sales {
			if st.Sales[i].PaymentMethod == method {
				out = append(out, st.Sales[i])
			}
		}
	})
	return out
}

// Total sums sale totals.
func Total(sales []models.Sale) float64 {
	var total float64
	for _, sale := range sales {
		total += sale.Total
	}
	return total
}

// ApplyRemoteSale upserts a sale received from a sync event.
func (s *Service) ApplyRemoteSale(ctx context.Context, sale models.Sale) {
	var snapshot []models.Sale
	_ = s.store.Update(func(st *store.State) error {
		for i := range st.Sales {
			if st.Sales[i].ID == sale.ID {
				st.Sales[i] = sale
				snapshot = append([]models.Sale(nil), st.Sales...)
				return nil
			}
		}
		st.Sales = append(st.Sales, sale)
		snapshot = append([]models.Sale(nil), st.Sales...)
		return nil
	})
	s.persist(ctx, snapshot)
}

// ApplyRemoteSales replaces the whole collection from a sync event.
func (s *Service) ApplyRemoteSales(ctx context.Context, sales []models.Sale) {
	_ = s.store.Update(func(st *store.State) error {
		st.Sales = sales
		return nil
	})
	s.persist(ctx, sales)
}

// Clear drops every sale (system reset path).
func (s *Service) Clear(ctx context.Context) {
	_ = s.store.Update(func(st *store.State) error {
		st.Sales = nil
		return nil
	})
	s.persist(ctx, nil)
	s.publish(ctx, syncbus.EventSalesReplaced, []models.Sale{})
}

func (s *Service) persist(ctx context.Context, sales []models.Sale) {
	if s.repo == nil {
		return
	}
	if err := s.repo.SaveSales(ctx, sales); err != nil {
		log.Warn().Err(err).Msg("Failed to persist sales, in-memory state remains authoritative")
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
