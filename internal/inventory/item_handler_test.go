package inventory

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

func inventoryApp() *fiber.App {
	app := testutil.NewApp()
	app.Post("/api/inventory", CreateItemHandler())
	app.Get("/api/inventory", ListItemsHandler())
	app.Get("/api/inventory/low-stock", ListLowStockHandler())
	app.Get("/api/inventory/:id", GetItemHandler())
	app.Post("/api/inventory/:id/add-quantity", AddQuantityHandler())
	app.Post("/api/inventory/:id/remove-quantity", RemoveQuantityHandler())
	app.Delete("/api/inventory/:id", DeleteItemHandler())
	return app
}

func seedItem(t *testing.T, name string, quantity, minStock float64) models.InventoryItem {
	t.Helper()
	item := models.InventoryItem{
		ItemName: name,
		Quantity: quantity,
		MinStock: minStock,
		Unit:     models.UnitKg,
	}
	require.NoError(t, database.DB.Create(&item).Error)
	return item
}

func itemPath(id uint, suffix string) string {
	return "/api/inventory/" + strconv.FormatUint(uint64(id), 10) + suffix
}

func TestRemoveQuantity_NeverGoesNegative(t *testing.T) {
	testutil.SetupDB(t)
	app := inventoryApp()

	item := seedItem(t, "Harina", 5, 2)

	resp := testutil.DoJSON(t, app, http.MethodPost, itemPath(item.ID, "/remove-quantity"), "",
		fiber.Map{"amount": 8.0})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var reloaded models.InventoryItem
	require.NoError(t, database.DB.First(&reloaded, item.ID).Error)
	require.Equal(t, 5.0, reloaded.Quantity)

	resp = testutil.DoJSON(t, app, http.MethodPost, itemPath(item.ID, "/remove-quantity"), "",
		fiber.Map{"amount": 3.0})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, database.DB.First(&reloaded, item.ID).Error)
	require.Equal(t, 2.0, reloaded.Quantity)
}

func TestAddQuantity_RejectsNonPositive(t *testing.T) {
	testutil.SetupDB(t)
	app := inventoryApp()

	item := seedItem(t, "Azúcar", 1, 1)

	resp := testutil.DoJSON(t, app, http.MethodPost, itemPath(item.ID, "/add-quantity"), "",
		fiber.Map{"amount": -2.0})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = testutil.DoJSON(t, app, http.MethodPost, itemPath(item.ID, "/add-quantity"), "",
		fiber.Map{"amount": 4.0})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reloaded models.InventoryItem
	require.NoError(t, database.DB.First(&reloaded, item.ID).Error)
	require.Equal(t, 5.0, reloaded.Quantity)
}

func TestListLowStock(t *testing.T) {
	testutil.SetupDB(t)
	app := inventoryApp()

	seedItem(t, "Tomate", 1, 5)  // bajo
	seedItem(t, "Cebolla", 9, 3) // ok
	seedItem(t, "Limón", 4, 4)   // igual al mínimo: no es bajo

	resp := testutil.DoJSON(t, app, http.MethodGet, "/api/inventory/low-stock", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := testutil.DecodeBody(t, resp)
	items, ok := body["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	first := items[0].(map[string]any)
	require.Equal(t, "Tomate", first["itemName"])
}

func TestDeleteItem_BlockedWhileUsedByRecipe(t *testing.T) {
	testutil.SetupDB(t)
	app := inventoryApp()

	item := seedItem(t, "Queso", 3, 1)

	recipe := models.Recipe{DishName: "Quesadilla", Category: models.RecipeCategoryFood}
	require.NoError(t, database.DB.Create(&recipe).Error)
	ing := models.RecipeIngredient{
		RecipeID:        recipe.ID,
		InventoryItemID: item.ID,
		QuantityNeeded:  0.1,
		Unit:            models.UnitKg,
	}
	require.NoError(t, database.DB.Create(&ing).Error)

	resp := testutil.DoJSON(t, app, http.MethodDelete, itemPath(item.ID, ""), "", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	require.NoError(t, database.DB.Delete(&ing).Error)

	resp = testutil.DoJSON(t, app, http.MethodDelete, itemPath(item.ID, ""), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetItem_MalformedID(t *testing.T) {
	testutil.SetupDB(t)
	app := inventoryApp()

	resp := testutil.DoJSON(t, app, http.MethodGet, "/api/inventory/abc", "", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateItem_DuplicateName(t *testing.T) {
	testutil.SetupDB(t)
	app := inventoryApp()

	payload := fiber.Map{
		"itemName": "Arroz",
		"quantity": 10.0,
		"minStock": 2.0,
		"unit":     "kg",
	}
	resp := testutil.DoJSON(t, app, http.MethodPost, "/api/inventory", "", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = testutil.DoJSON(t, app, http.MethodPost, "/api/inventory", "", payload)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}
