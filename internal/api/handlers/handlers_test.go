package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"example.com/ventasapp/services/pos/internal/cart"
	"example.com/ventasapp/services/pos/internal/catalog"
	"example.com/ventasapp/services/pos/internal/ledger"
	"example.com/ventasapp/services/pos/internal/models"
	"example.com/ventasapp/services/pos/internal/order"
	"example.com/ventasapp/services/pos/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestRouter() (*gin.Engine, *catalog.Service) {
	gin.SetMode(gin.TestMode)
	st := store.New()
	cat := catalog.New(st, nil, nil)
	orders := order.New(st, nil, nil)
	carts := cart.New(st, nil, nil)
	sales := ledger.New(st, nil, nil, orders, nil)

	router := gin.New()
	NewStationsHandler(cat).RegisterRoutes(router)
	NewProductsHandler(cat).RegisterRoutes(router)
	NewCartsHandler(carts).RegisterRoutes(router)
	NewOrdersHandler(orders).RegisterRoutes(router)
	NewSalesHandler(sales, nil).RegisterRoutes(router)
	NewReportsHandler(sales).RegisterRoutes(router)
	NewAdminHandler(cat, orders, sales).RegisterRoutes(router)
	return router, cat
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestStationLifecycle(t *testing.T) {
	router, _ := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/puestos", gin.H{"nombre": "Parrilla"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var station models.Station
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &station))
	require.Equal(t, "Parrilla", station.Name)

	rec = doJSON(t, router, http.MethodGet, "/api/puestos", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/puestos/"+station.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/puestos/"+station.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteStationWithProductsConflicts(t *testing.T) {
	router, cat := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/puestos", gin.H{"nombre": "Parrilla"})
	var station models.Station
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &station))

	rec = doJSON(t, router, http.MethodPost, "/api/productos", gin.H{
		"nombre": "Carne", "precio": 500, "stock": 10, "puestoId": station.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/puestos/"+station.ID, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Len(t, cat.Stations(), 1)
}

func TestCartToSaleFlow(t *testing.T) {
	router, _ := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/puestos", gin.H{"nombre": "Parrilla"})
	var station models.Station
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &station))

	rec = doJSON(t, router, http.MethodPost, "/api/productos", gin.H{
		"nombre": "Carne", "precio": 500, "stock": 10, "puestoId": station.ID,
	})
	var product models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))

	rec = doJSON(t, router, http.MethodPost, "/api/carritos", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var c cart.Cart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))

	rec = doJSON(t, router, http.MethodPost, "/api/carritos/"+c.ID+"/items", gin.H{"productoId": product.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	// Empty customer is rejected before anything is finalized.
	rec = doJSON(t, router, http.MethodPost, "/api/carritos/"+c.ID+"/confirmar", gin.H{
		"cliente": "   ", "metodoPago": "efectivo",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/carritos/"+c.ID+"/confirmar", gin.H{
		"cliente": "Ana", "metodoPago": "efectivo",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var o models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	require.Equal(t, 1, o.Sequence)
	require.Equal(t, 500.0, o.Total)

	// Record the sale, twice: the second call returns the same sale.
	rec = doJSON(t, router, http.MethodPost, "/api/ventas", gin.H{"pedidoId": o.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	var sale models.Sale
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sale))

	rec = doJSON(t, router, http.MethodPost, "/api/ventas", gin.H{"pedidoId": o.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	var again models.Sale
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &again))
	require.Equal(t, sale.ID, again.ID)

	rec = doJSON(t, router, http.MethodGet, "/api/reportes/hoy", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestStationStateTransitionEndpoint(t *testing.T) {
	router, _ := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/puestos", gin.H{"nombre": "Parrilla"})
	var station models.Station
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &station))

	rec = doJSON(t, router, http.MethodPost, "/api/productos", gin.H{
		"nombre": "Carne", "precio": 500, "stock": 10, "puestoId": station.ID,
	})
	var product models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))

	rec = doJSON(t, router, http.MethodPost, "/api/carritos", nil)
	var c cart.Cart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	doJSON(t, router, http.MethodPost, "/api/carritos/"+c.ID+"/items", gin.H{"productoId": product.ID})

	rec = doJSON(t, router, http.MethodPost, "/api/carritos/"+c.ID+"/confirmar", gin.H{
		"cliente": "Ana", "metodoPago": "transferencia",
	})
	var o models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))

	// Skipping straight to listo conflicts.
	rec = doJSON(t, router, http.MethodPut, "/api/pedidos/"+o.ID+"/puestos/"+station.ID+"/estado", gin.H{"estado": "listo"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/api/pedidos/"+o.ID+"/puestos/"+station.ID+"/estado", gin.H{"estado": "en_elaboracion"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/api/pedidos/"+o.ID+"/puestos/"+station.ID+"/estado", gin.H{"estado": "listo"})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, models.StateReady, updated.State)
}
