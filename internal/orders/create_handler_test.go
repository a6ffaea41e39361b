package orders

import (
	"net/http"
	"strconv"
	"testing"

	"sistemarest-backend/internal/database"
	"sistemarest-backend/internal/models"
	"sistemarest-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func newOrderApp() *fiber.App {
	app := testutil.NewApp()
	app.Post("/api/orders", CreateOrderHandler())
	app.Patch("/api/orders/:id/status", UpdateOrderStatusHandler())
	app.Post("/api/orders/:id/pay", MarkOrderPaidHandler())
	return app
}

func seedWaiter(t *testing.T) models.User {
	t.Helper()
	return testutil.CreateUser(t, "Laura", "laura@sistemarest.mx", models.RoleMesero)
}

func seedDirectProduct(t *testing.T, name string, price, stock float64) models.Product {
	t.Helper()
	p := models.Product{
		Name:        name,
		Price:       price,
		Category:    "bebidas",
		Stock:       stock,
		StockType:   models.StockTypeDirect,
		IsAvailable: true,
	}
	require.NoError(t, database.DB.Create(&p).Error)
	return p
}

func seedRecipeProduct(t *testing.T, name string, price float64, ingredients map[string]struct {
	Have   float64
	Needed float64
}) models.Product {
	t.Helper()

	recipe := models.Recipe{DishName: name + " (receta)", Category: models.RecipeCategoryFood}
	require.NoError(t, database.DB.Create(&recipe).Error)

	for itemName, amounts := range ingredients {
		item := models.InventoryItem{
			ItemName: itemName,
			Quantity: amounts.Have,
			MinStock: 1,
			Unit:     models.UnitKg,
		}
		require.NoError(t, database.DB.Create(&item).Error)
		ing := models.RecipeIngredient{
			RecipeID:        recipe.ID,
			InventoryItemID: item.ID,
			QuantityNeeded:  amounts.Needed,
			Unit:            models.UnitKg,
		}
		require.NoError(t, database.DB.Create(&ing).Error)
	}

	p := models.Product{
		Name:        name,
		Price:       price,
		Category:    "platos",
		StockType:   models.StockTypeRecipe,
		RecipeID:    &recipe.ID,
		IsAvailable: true,
	}
	require.NoError(t, database.DB.Create(&p).Error)
	return p
}

func seedTable(t *testing.T, number string, status models.TableStatus) models.Table {
	t.Helper()
	table := models.Table{TableNumber: number, Capacity: 4, Status: status}
	require.NoError(t, database.DB.Create(&table).Error)
	return table
}

func TestCreateOrder_DineInOccupiesTableAndDecrementsStock(t *testing.T) {
	testutil.SetupDB(t)
	app := newOrderApp()

	waiter := seedWaiter(t)
	product := seedDirectProduct(t, "Limonada", 35, 10)
	table := seedTable(t, "M1", models.TableAvailable)

	resp := testutil.DoJSON(t, app, http.MethodPost, "/api/orders", "", fiber.Map{
		"orderNumber": "ORD-001",
		"takenBy":     waiter.ID,
		"table":       table.ID,
		"orderType":   "dine-in",
		"items": []fiber.Map{
			{"product": product.ID, "quantity": 3},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := testutil.DecodeBody(t, resp)
	require.Equal(t, true, body["success"])

	var reloadedProduct models.Product
	require.NoError(t, database.DB.First(&reloadedProduct, product.ID).Error)
	require.Equal(t, 7.0, reloadedProduct.Stock)

	var reloadedTable models.Table
	require.NoError(t, database.DB.First(&reloadedTable, table.ID).Error)
	require.Equal(t, models.TableOccupied, reloadedTable.Status)
	require.NotNil(t, reloadedTable.CurrentOrderID)
}

func TestCreateOrder_InsufficientRecipeStockLeavesInventoryIntact(t *testing.T) {
	testutil.SetupDB(t)
	app := newOrderApp()

	waiter := seedWaiter(t)
	product := seedRecipeProduct(t, "Pozole", 120, map[string]struct {
		Have   float64
		Needed float64
	}{
		"Maíz":  {Have: 10, Needed: 0.5},
		"Carne": {Have: 0.2, Needed: 0.4}, // insuficiente
	})

	resp := testutil.DoJSON(t, app, http.MethodPost, "/api/orders", "", fiber.Map{
		"orderNumber":   "ORD-002",
		"takenBy":       waiter.ID,
		"orderType":     "takeaway",
		"customerName":  "Ana",
		"customerPhone": "5512345678",
		"items": []fiber.Map{
			{"product": product.ID, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// La transacción revierte también el descuento del primer ingrediente.
	var items []models.InventoryItem
	require.NoError(t, database.DB.Order("item_name").Find(&items).Error)
	require.Len(t, items, 2)
	for _, it := range items {
		switch it.ItemName {
		case "Maíz":
			require.Equal(t, 10.0, it.Quantity)
		case "Carne":
			require.Equal(t, 0.2, it.Quantity)
		}
	}

	var count int64
	database.DB.Model(&models.Order{}).Count(&count)
	require.Zero(t, count)
}

func TestCreateOrder_TotalMismatchRejected(t *testing.T) {
	testutil.SetupDB(t)
	app := newOrderApp()

	waiter := seedWaiter(t)
	product := seedDirectProduct(t, "Café", 25, 5)

	mismatched := 70.0 // el total real es 50
	resp := testutil.DoJSON(t, app, http.MethodPost, "/api/orders", "", fiber.Map{
		"orderNumber":   "ORD-003",
		"takenBy":       waiter.ID,
		"orderType":     "takeaway",
		"customerName":  "Luis",
		"customerPhone": "5587654321",
		"totalAmount":   mismatched,
		"items": []fiber.Map{
			{"product": product.ID, "quantity": 2},
		},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var reloaded models.Product
	require.NoError(t, database.DB.First(&reloaded, product.ID).Error)
	require.Equal(t, 5.0, reloaded.Stock)
}

func TestCreateOrder_DuplicateOrderNumberConflicts(t *testing.T) {
	testutil.SetupDB(t)
	app := newOrderApp()

	waiter := seedWaiter(t)
	product := seedDirectProduct(t, "Agua", 15, 20)

	payload := fiber.Map{
		"orderNumber":   "ORD-004",
		"takenBy":       waiter.ID,
		"orderType":     "takeaway",
		"customerName":  "Pía",
		"customerPhone": "5511112222",
		"items": []fiber.Map{
			{"product": product.ID, "quantity": 1},
		},
	}

	resp := testutil.DoJSON(t, app, http.MethodPost, "/api/orders", "", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = testutil.DoJSON(t, app, http.MethodPost, "/api/orders", "", payload)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCreateOrder_DineInRequiresTable(t *testing.T) {
	testutil.SetupDB(t)
	app := newOrderApp()

	waiter := seedWaiter(t)
	product := seedDirectProduct(t, "Torta", 60, 8)

	resp := testutil.DoJSON(t, app, http.MethodPost, "/api/orders", "", fiber.Map{
		"orderNumber": "ORD-005",
		"takenBy":     waiter.ID,
		"orderType":   "dine-in",
		"items": []fiber.Map{
			{"product": product.ID, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateOrder_OccupiedTableRejected(t *testing.T) {
	testutil.SetupDB(t)
	app := newOrderApp()

	waiter := seedWaiter(t)
	product := seedDirectProduct(t, "Tacos", 45, 30)
	table := seedTable(t, "M2", models.TableOccupied)

	resp := testutil.DoJSON(t, app, http.MethodPost, "/api/orders", "", fiber.Map{
		"orderNumber": "ORD-006",
		"takenBy":     waiter.ID,
		"table":       table.ID,
		"orderType":   "dine-in",
		"items": []fiber.Map{
			{"product": product.ID, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var reloaded models.Product
	require.NoError(t, database.DB.First(&reloaded, product.ID).Error)
	require.Equal(t, 30.0, reloaded.Stock)
}

func TestMarkOrderPaid_FreesTable(t *testing.T) {
	testutil.SetupDB(t)
	app := newOrderApp()

	waiter := seedWaiter(t)
	product := seedDirectProduct(t, "Sopa", 55, 10)
	table := seedTable(t, "M3", models.TableAvailable)

	resp := testutil.DoJSON(t, app, http.MethodPost, "/api/orders", "", fiber.Map{
		"orderNumber": "ORD-007",
		"takenBy":     waiter.ID,
		"table":       table.ID,
		"orderType":   "dine-in",
		"items": []fiber.Map{
			{"product": product.ID, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var order models.Order
	require.NoError(t, database.DB.Where("order_number = ?", "ORD-007").First(&order).Error)

	resp = testutil.DoJSON(t, app, http.MethodPost,
		"/api/orders/"+itoa(order.ID)+"/pay", "", fiber.Map{"paymentMethod": "cash"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reloadedOrder models.Order
	require.NoError(t, database.DB.First(&reloadedOrder, order.ID).Error)
	require.True(t, reloadedOrder.Paid)
	require.NotNil(t, reloadedOrder.PaidAt)
	require.Equal(t, models.OrderPaid, reloadedOrder.Status)

	var reloadedTable models.Table
	require.NoError(t, database.DB.First(&reloadedTable, table.ID).Error)
	require.Equal(t, models.TableAvailable, reloadedTable.Status)
	require.Nil(t, reloadedTable.CurrentOrderID)

	// Pagar dos veces no está permitido
	resp = testutil.DoJSON(t, app, http.MethodPost,
		"/api/orders/"+itoa(order.ID)+"/pay", "", fiber.Map{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCancelOrder_FreesTable(t *testing.T) {
	testutil.SetupDB(t)
	app := newOrderApp()

	waiter := seedWaiter(t)
	product := seedDirectProduct(t, "Ensalada", 70, 10)
	table := seedTable(t, "M4", models.TableAvailable)

	resp := testutil.DoJSON(t, app, http.MethodPost, "/api/orders", "", fiber.Map{
		"orderNumber": "ORD-008",
		"takenBy":     waiter.ID,
		"table":       table.ID,
		"orderType":   "dine-in",
		"items": []fiber.Map{
			{"product": product.ID, "quantity": 2},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var order models.Order
	require.NoError(t, database.DB.Where("order_number = ?", "ORD-008").First(&order).Error)

	resp = testutil.DoJSON(t, app, http.MethodPatch,
		"/api/orders/"+itoa(order.ID)+"/status", "", fiber.Map{"status": "cancelled"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reloadedTable models.Table
	require.NoError(t, database.DB.First(&reloadedTable, table.ID).Error)
	require.Equal(t, models.TableAvailable, reloadedTable.Status)
	require.Nil(t, reloadedTable.CurrentOrderID)
}
