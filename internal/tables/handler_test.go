package tables

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

func tablesApp() *fiber.App {
	app := testutil.NewApp()
	app.Post("/api/tables", CreateTableHandler())
	app.Get("/api/tables", ListTablesHandler())
	app.Get("/api/tables/:id", GetTableHandler())
	app.Put("/api/tables/:id", UpdateTableHandler())
	app.Patch("/api/tables/:id/status", UpdateTableStatusHandler())
	app.Delete("/api/tables/:id", DeleteTableHandler())
	return app
}

func tablePath(id uint, suffix string) string {
	return "/api/tables/" + strconv.FormatUint(uint64(id), 10) + suffix
}

func TestCreateTable_DuplicateNumber(t *testing.T) {
	testutil.SetupDB(t)
	app := tablesApp()

	payload := fiber.Map{"tableNumber": "M1", "capacity": 4}
	resp := testutil.DoJSON(t, app, http.MethodPost, "/api/tables", "", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = testutil.DoJSON(t, app, http.MethodPost, "/api/tables", "", payload)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUpdateTableStatus_BlockedWhileOrderActive(t *testing.T) {
	testutil.SetupDB(t)
	app := tablesApp()

	waiter := testutil.CreateUser(t, "Iván", "ivan@sistemarest.mx", models.RoleMesero)
	order := models.Order{
		OrderNumber: "T-001",
		TakenByID:   waiter.ID,
		Status:      models.OrderPending,
		OrderType:   models.OrderDineIn,
	}
	require.NoError(t, database.DB.Create(&order).Error)

	table := models.Table{
		TableNumber:    "M2",
		Capacity:       2,
		Status:         models.TableOccupied,
		CurrentOrderID: &order.ID,
	}
	require.NoError(t, database.DB.Create(&table).Error)

	resp := testutil.DoJSON(t, app, http.MethodPatch, tablePath(table.ID, "/status"), "",
		fiber.Map{"status": "available"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Eliminarla tampoco está permitido con la orden activa
	resp = testutil.DoJSON(t, app, http.MethodDelete, tablePath(table.ID, ""), "", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Al cerrar la orden la mesa vuelve a ser gestionable
	require.NoError(t, database.DB.Model(&models.Table{}).Where("id = ?", table.ID).
		Updates(map[string]any{"status": models.TableAvailable, "current_order_id": nil}).Error)

	resp = testutil.DoJSON(t, app, http.MethodPatch, tablePath(table.ID, "/status"), "",
		fiber.Map{"status": "cleaning"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUpdateTableStatus_InvalidValue(t *testing.T) {
	testutil.SetupDB(t)
	app := tablesApp()

	table := models.Table{TableNumber: "M3", Capacity: 4, Status: models.TableAvailable}
	require.NoError(t, database.DB.Create(&table).Error)

	resp := testutil.DoJSON(t, app, http.MethodPatch, tablePath(table.ID, "/status"), "",
		fiber.Map{"status": "sucia"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListTables_FilterByStatus(t *testing.T) {
	testutil.SetupDB(t)
	app := tablesApp()

	for i, status := range []models.TableStatus{models.TableAvailable, models.TableOccupied, models.TableAvailable} {
		table := models.Table{TableNumber: "F" + strconv.Itoa(i), Capacity: 4, Status: status}
		require.NoError(t, database.DB.Create(&table).Error)
	}

	resp := testutil.DoJSON(t, app, http.MethodGet, "/api/tables?status=available", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := testutil.DecodeBody(t, resp)
	require.Equal(t, float64(2), body["count"])
}
