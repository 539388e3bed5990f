// Package repository is the persistence collaborator: whole-collection loads
// at startup and whole-collection saves after successful mutations. Failures
// are reported to the caller and logged there; they never roll back the
// in-memory state, which stays authoritative for the running session.
package repository

import (
	"context"
	"reflect"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/ventasapp/services/pos/internal/models"
)

// Repository provides collection-level persistence for the four collections
// the store owns.
type Repository interface {
	LoadStations(ctx context.Context) ([]models.Station, error)
	SaveStations(ctx context.Context, stations []models.Station) error
	LoadProducts(ctx context.Context) ([]models.Product, error)
	SaveProducts(ctx context.Context, products []models.Product) error
	LoadOrders(ctx context.Context) ([]models.Order, error)
	SaveOrders(ctx context.Context, orders []models.Order) error
	LoadSales(ctx context.Context) ([]models.Sale, error)
	SaveSales(ctx context.Context, sales []models.Sale) error
}

// gormRepository is the postgres implementation.
type gormRepository struct {
	db *gorm.DB
}

// New creates a repository on the given database, migrating the historical
// table layout if needed.
func New(db *gorm.DB) (Repository, error) {
	if err := db.AutoMigrate(&stationRow{}, &productRow{}, &orderRow{}, &saleRow{}); err != nil {
		return nil, errors.Wrap(err, "failed to run migrations")
	}
	return &gormRepository{db: db}, nil
}

func (r *gormRepository) LoadStations(ctx context.Context) ([]models.Station, error) {
	var rows []stationRow
	if err := r.db.WithContext(ctx).Order("fecha_creacion").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(ErrLoadFailed, err.Error())
	}
	stations := make([]models.Station, 0, len(rows))
	for _, row := range rows {
		stations = append(stations, stationFromRow(row))
	}
	return stations, nil
}

func (r *gormRepository) SaveStations(ctx context.Context, stations []models.Station) error {
	rows := make([]stationRow, 0, len(stations))
	for _, s := range stations {
		rows = append(rows, stationToRow(s))
	}
	return r.replaceAll(ctx, &stationRow{}, rows)
}

func (r *gormRepository) LoadProducts(ctx context.Context) ([]models.Product, error) {
	var rows []productRow
	if err := r.db.WithContext(ctx).Order("fecha_creacion").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(ErrLoadFailed, err.Error())
	}
	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		p, err := productFromRow(row)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *gormRepository) SaveProducts(ctx context.Context, products []models.Product) error {
	rows := make([]productRow, 0, len(products))
	for _, p := range products {
		row, err := productToRow(p)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	return r.replaceAll(ctx, &productRow{}, rows)
}

func (r *gormRepository) LoadOrders(ctx context.Context) ([]models.Order, error) {
	var rows []orderRow
	if err := r.db.WithContext(ctx).Order("numero").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(ErrLoadFailed, err.Error())
	}
	orders := make([]models.Order, 0, len(rows))
	for _, row := range rows {
		o, err := orderFromRow(row)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *gormRepository) SaveOrders(ctx context.Context, orders []models.Order) error {
	rows := make([]orderRow, 0, len(orders))
	for _, o := range orders {
		row, err := orderToRow(o)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	return r.replaceAll(ctx, &orderRow{}, rows)
}

func (r *gormRepository) LoadSales(ctx context.Context) ([]models.Sale, error) {
	var rows []saleRow
	if err := r.db.WithContext(ctx).Order("fecha").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(ErrLoadFailed, err.Error())
	}
	sales := make([]models.Sale, 0, len(rows))
	for _, row := range rows {
		v, err := saleFromRow(row)
		if err != nil {
			return nil, err
		}
		sales = append(sales, v)
	}
	return sales, nil
}

func (r *gormRepository) SaveSales(ctx context.Context, sales []models.Sale) error {
	rows := make([]saleRow, 0, len(sales))
	for _, v := range sales {
		row, err := saleToRow(v)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	return r.replaceAll(ctx, &saleRow{}, rows)
}

// replaceAll swaps a whole table for the given rows in one transaction.
// Collections are small (one food stand's catalog and a day's orders), so a
// full rewrite is simpler and safer than diffing.
func (r *gormRepository) replaceAll(ctx context.Context, model interface{}, rows interface{}) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
		if reflect.ValueOf(rows).Len() == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 200).Error
	})
	if err != nil {
		return errors.Wrap(ErrSaveFailed, err.Error())
	}
	return nil
}
