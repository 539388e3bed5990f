package catalog

import (
	"context"
	"testing"

	"example.com/ventasapp/services/pos/internal/models"
	"example.com/ventasapp/services/pos/internal/store"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, *store.Store) {
	st := store.New()
	return New(st, nil, nil), st
}

func TestCreateStationDefaults(t *testing.T) {
	svc, _ := newTestService()

	station, err := svc.CreateStation(context.Background(), "  Parrilla  ", "")
	require.NoError(t, err)
	require.Equal(t, "Parrilla", station.Name)
	require.NotEmpty(t, station.ID)
	require.NotEmpty(t, station.Avatar)

	_, err = svc.CreateStation(context.Background(), "   ", "")
	require.True(t, errors.Is(err, ErrEmptyName))
}

func TestDeleteStationRefusedWhileReferenced(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	station, err := svc.CreateStation(ctx, "Parrilla", "")
	require.NoError(t, err)
	product, err := svc.CreateProduct(ctx, models.Product{Name: "Carne", Price: 500, StationID: &station.ID})
	require.NoError(t, err)

	err = svc.DeleteStation(ctx, station.ID)
	require.True(t, errors.Is(err, ErrStationHasProducts))

	// Unassigning the product unblocks the delete.
	empty := ""
	_, err = svc.UpdateProduct(ctx, product.ID, ProductUpdate{StationID: &empty})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteStation(ctx, station.ID))
	require.Empty(t, svc.Stations())
}

func TestCreateProductDefaults(t *testing.T) {
	svc, _ := newTestService()

	product, err := svc.CreateProduct(context.Background(), models.Product{Name: "Carne", Price: 500, Stock: -3})
	require.NoError(t, err)
	require.Equal(t, "Otros", product.Category)
	require.NotEmpty(t, product.Icon)
	require.Equal(t, models.UnitSingle, product.BaseUnit)
	// Negative stock is floored on entry.
	require.Equal(t, 0.0, product.Stock)
}

func TestAdjustStockClampsAtZero(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, models.Product{Name: "Carne", Price: 500, Stock: 5})
	require.NoError(t, err)

	product, err = svc.AdjustStock(ctx, product.ID, -8)
	require.NoError(t, err)
	require.Equal(t, 0.0, product.Stock)

	product, err = svc.AdjustStock(ctx, product.ID, 2.5)
	require.NoError(t, err)
	require.Equal(t, 2.5, product.Stock)

	_, err = svc.AdjustStock(ctx, "missing", 1)
	require.True(t, errors.Is(err, ErrProductNotFound))
}

func TestAvailableProducts(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	noDeduct := false

	station, err := svc.CreateStation(ctx, "Barra", "")
	require.NoError(t, err)

	// Stationed with stock: available.
	inStock, err := svc.CreateProduct(ctx, models.Product{Name: "Carne", Price: 500, Stock: 3, StationID: &station.ID})
	require.NoError(t, err)
	// Stationed without stock: not available.
	_, err = svc.CreateProduct(ctx, models.Product{Name: "Postre", Price: 300, Stock: 0, StationID: &station.ID})
	require.NoError(t, err)
	// No station: not available even with stock.
	_, err = svc.CreateProduct(ctx, models.Product{Name: "Hielo", Price: 50, Stock: 20})
	require.NoError(t, err)
	// Zero stock but sells by the glass: available.
	byGlass, err := svc.CreateProduct(ctx, models.Product{
		Name: "Vino", Price: 200, Stock: 0, StationID: &station.ID,
		SaleUnits: []models.SaleUnit{{ID: "vaso", Name: "Vaso", Factor: 1, Price: 50, AutoDeduct: &noDeduct}},
	})
	require.NoError(t, err)

	available := svc.AvailableProducts()
	require.Len(t, available, 2)
	require.Equal(t, inStock.ID, available[0].ID)
	require.Equal(t, byGlass.ID, available[1].ID)

	// Sanity: the catalog itself still lists everything.
	require.Len(t, svc.Products(), 4)
	st.View(func(s *store.State) {
		require.Len(t, s.Products, 4)
	})
}

func TestAvailableCombos(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	station, err := svc.CreateStation(ctx, "Parrilla", "")
	require.NoError(t, err)
	carne, err := svc.CreateProduct(ctx, models.Product{Name: "Carne", Price: 500, Stock: 4, StationID: &station.ID})
	require.NoError(t, err)

	combo, err := svc.CreateProduct(ctx, models.Product{
		Name: "Parrillada", IsCombo: true,
		Components: models.ComboComponentList{{ProductID: carne.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	available := svc.AvailableProducts()
	require.Len(t, available, 2)

	// Exhausting the component pulls the combo off the board.
	_, err = svc.AdjustStock(ctx, carne.ID, -3)
	require.NoError(t, err)
	available = svc.AvailableProducts()
	require.Len(t, available, 1)
	require.NotEqual(t, combo.ID, available[0].ID)
}

func TestProductsByStation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.CreateStation(ctx, "Parrilla", "")
	b, _ := svc.CreateStation(ctx, "Barra", "")
	_, err := svc.CreateProduct(ctx, models.Product{Name: "Carne", Price: 500, StationID: &a.ID})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, models.Product{Name: "Vino", Price: 200, StationID: &b.ID})
	require.NoError(t, err)

	require.Len(t, svc.ProductsByStation(a.ID), 1)
	require.Equal(t, "Carne", svc.ProductsByStation(a.ID)[0].Name)
	require.Len(t, svc.ProductsByStation(b.ID), 1)
	require.Empty(t, svc.ProductsByStation("missing"))
}

func TestApplyRemoteReplacesCollections(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateStation(ctx, "Vieja", "")
	require.NoError(t, err)

	svc.ApplyRemoteStations(ctx, []models.Station{{ID: "r1", Name: "Remota"}})
	stations := svc.Stations()
	require.Len(t, stations, 1)
	require.Equal(t, "Remota", stations[0].Name)

	svc.ApplyRemoteProducts(ctx, []models.Product{{ID: "p1", Name: "Remoto"}})
	require.Len(t, svc.Products(), 1)
}

func TestClearCatalog(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateStation(ctx, "Parrilla", "")
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, models.Product{Name: "Carne", Price: 500})
	require.NoError(t, err)

	svc.ClearCatalog(ctx)
	require.Empty(t, svc.Stations())
	require.Empty(t, svc.Products())
}
