package orders

import (
	"net/http"
	"testing"

	"sistemarest-backend/internal/database"
	"sistemarest-backend/internal/models"
	"sistemarest-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func updateApp() *fiber.App {
	app := newOrderApp()
	app.Put("/api/orders/:id", UpdateOrderHandler())
	app.Get("/api/orders", ListOrdersHandler())
	return app
}

func createTestOrder(t *testing.T, app *fiber.App, number string, productID, waiterID uint) models.Order {
	t.Helper()

	resp := testutil.DoJSON(t, app, http.MethodPost, "/api/orders", "", fiber.Map{
		"orderNumber":   number,
		"takenBy":       waiterID,
		"orderType":     "takeaway",
		"customerName":  "Eva",
		"customerPhone": "5533334444",
		"items": []fiber.Map{
			{"product": productID, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var order models.Order
	require.NoError(t, database.DB.Where("order_number = ?", number).First(&order).Error)
	return order
}

func TestUpdateOrder_ReplacingItemsRecalculatesTotal(t *testing.T) {
	testutil.SetupDB(t)
	app := updateApp()

	waiter := seedWaiter(t)
	cheap := seedDirectProduct(t, "Galleta", 10, 50)
	pricey := seedDirectProduct(t, "Pastel", 90, 50)

	order := createTestOrder(t, app, "UPD-001", cheap.ID, waiter.ID)
	require.Equal(t, 10.0, order.TotalAmount)

	resp := testutil.DoJSON(t, app, http.MethodPut, "/api/orders/"+itoa(order.ID), "", fiber.Map{
		"items": []fiber.Map{
			{"product": pricey.ID, "quantity": 2},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reloaded models.Order
	require.NoError(t, database.DB.Preload("Items").First(&reloaded, order.ID).Error)
	require.Equal(t, 180.0, reloaded.TotalAmount)
	require.Len(t, reloaded.Items, 1)
	require.Equal(t, pricey.ID, reloaded.Items[0].ProductID)
}

func TestUpdateOrder_ClosedOrderRejected(t *testing.T) {
	testutil.SetupDB(t)
	app := updateApp()

	waiter := seedWaiter(t)
	product := seedDirectProduct(t, "Tamal", 20, 50)

	order := createTestOrder(t, app, "UPD-002", product.ID, waiter.ID)
	require.NoError(t, database.DB.Model(&order).Update("status", models.OrderPaid).Error)

	resp := testutil.DoJSON(t, app, http.MethodPut, "/api/orders/"+itoa(order.ID), "", fiber.Map{
		"customerName": "Otro",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateOrder_MoveToOccupiedTableRejected(t *testing.T) {
	testutil.SetupDB(t)
	app := updateApp()

	waiter := seedWaiter(t)
	product := seedDirectProduct(t, "Empanada", 25, 50)
	origin := seedTable(t, "A1", models.TableAvailable)
	busy := seedTable(t, "A2", models.TableOccupied)

	resp := testutil.DoJSON(t, app, http.MethodPost, "/api/orders", "", fiber.Map{
		"orderNumber": "UPD-003",
		"takenBy":     waiter.ID,
		"table":       origin.ID,
		"orderType":   "dine-in",
		"items": []fiber.Map{
			{"product": product.ID, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var order models.Order
	require.NoError(t, database.DB.Where("order_number = ?", "UPD-003").First(&order).Error)

	resp = testutil.DoJSON(t, app, http.MethodPut, "/api/orders/"+itoa(order.ID), "", fiber.Map{
		"table": busy.ID,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// La mesa original sigue ocupada por la orden
	var reloaded models.Table
	require.NoError(t, database.DB.First(&reloaded, origin.ID).Error)
	require.Equal(t, models.TableOccupied, reloaded.Status)
}

func TestListOrders_FilterByStatus(t *testing.T) {
	testutil.SetupDB(t)
	app := updateApp()

	waiter := seedWaiter(t)
	product := seedDirectProduct(t, "Jugo", 18, 50)

	createTestOrder(t, app, "LST-001", product.ID, waiter.ID)
	order := createTestOrder(t, app, "LST-002", product.ID, waiter.ID)
	require.NoError(t, database.DB.Model(&order).Update("status", models.OrderPaid).Error)

	resp := testutil.DoJSON(t, app, http.MethodGet, "/api/orders?status=pending", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := testutil.DecodeBody(t, resp)
	require.Equal(t, float64(1), body["count"])

	resp = testutil.DoJSON(t, app, http.MethodGet, "/api/orders?status=rarisimo", "", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
