package users

import (
	"net/http"
	"strconv"
	"testing"

	"sistemarest-backend/internal/auth"
	"sistemarest-backend/internal/database"
	"sistemarest-backend/internal/models"
	"sistemarest-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func usersApp() *fiber.App {
	app := testutil.NewApp()
	cfg := testutil.Config()

	protected := app.Group("", auth.JWTMiddleware(cfg), auth.RequireRole(models.RoleAdmin))
	protected.Post("/api/users", CreateUserHandler())
	protected.Get("/api/users", ListUsersHandler())
	protected.Put("/api/users/:id", UpdateUserHandler())
	protected.Delete("/api/users/:id", DeleteUserHandler())
	return app
}

func userPath(id uint) string {
	return "/api/users/" + strconv.FormatUint(uint64(id), 10)
}

func TestCreateUser_InvalidRoleRejected(t *testing.T) {
	testutil.SetupDB(t)
	testutil.SetupRedis(t)
	app := usersApp()

	admin := testutil.CreateUser(t, "Root", "root@sistemarest.mx", models.RoleAdmin)
	token := testutil.TokenFor(t, admin)

	resp := testutil.DoJSON(t, app, http.MethodPost, "/api/users", token, fiber.Map{
		"name":     "Pepe",
		"email":    "pepe@sistemarest.mx",
		"password": "secreto123",
		"role":     "gerente",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	testutil.SetupDB(t)
	testutil.SetupRedis(t)
	app := usersApp()

	admin := testutil.CreateUser(t, "Root", "root@sistemarest.mx", models.RoleAdmin)
	token := testutil.TokenFor(t, admin)

	payload := fiber.Map{
		"name":     "Pepe",
		"email":    "pepe@sistemarest.mx",
		"password": "secreto123",
		"role":     "mesero",
	}
	resp := testutil.DoJSON(t, app, http.MethodPost, "/api/users", token, payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = testutil.DoJSON(t, app, http.MethodPost, "/api/users", token, payload)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestDeleteUser_SelfDeleteRejected(t *testing.T) {
	testutil.SetupDB(t)
	testutil.SetupRedis(t)
	app := usersApp()

	admin := testutil.CreateUser(t, "Root", "root@sistemarest.mx", models.RoleAdmin)
	token := testutil.TokenFor(t, admin)

	resp := testutil.DoJSON(t, app, http.MethodDelete, userPath(admin.ID), token, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteUser_BlockedWithOpenOrders(t *testing.T) {
	testutil.SetupDB(t)
	testutil.SetupRedis(t)
	app := usersApp()

	admin := testutil.CreateUser(t, "Root", "root@sistemarest.mx", models.RoleAdmin)
	token := testutil.TokenFor(t, admin)

	waiter := testutil.CreateUser(t, "Lola", "lola@sistemarest.mx", models.RoleMesero)
	order := models.Order{
		OrderNumber: "U-001",
		TakenByID:   waiter.ID,
		Status:      models.OrderPending,
		OrderType:   models.OrderTakeaway,
	}
	require.NoError(t, database.DB.Create(&order).Error)

	resp := testutil.DoJSON(t, app, http.MethodDelete, userPath(waiter.ID), token, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Con la orden cerrada la baja procede
	require.NoError(t, database.DB.Model(&order).Update("status", models.OrderPaid).Error)

	resp = testutil.DoJSON(t, app, http.MethodDelete, userPath(waiter.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUpdateUser_DeactivationClosesSession(t *testing.T) {
	testutil.SetupDB(t)
	testutil.SetupRedis(t)
	app := usersApp()

	admin := testutil.CreateUser(t, "Root", "root@sistemarest.mx", models.RoleAdmin)
	adminToken := testutil.TokenFor(t, admin)

	waiter := testutil.CreateUser(t, "Mario", "mario@sistemarest.mx", models.RoleMesero)
	waiterToken := testutil.TokenFor(t, waiter)
	require.NoError(t, database.DB.Model(&waiter).Update("session_id", "activa").Error)

	resp := testutil.DoJSON(t, app, http.MethodPut, userPath(waiter.ID), adminToken,
		fiber.Map{"isActive": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// El token del usuario desactivado deja de servir (la sesión ya no existe)
	resp = testutil.DoJSON(t, app, http.MethodGet, "/api/users", waiterToken, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListUsers_FilterByRole(t *testing.T) {
	testutil.SetupDB(t)
	testutil.SetupRedis(t)
	app := usersApp()

	admin := testutil.CreateUser(t, "Root", "root@sistemarest.mx", models.RoleAdmin)
	token := testutil.TokenFor(t, admin)
	testutil.CreateUser(t, "Ana", "ana@sistemarest.mx", models.RoleMesero)
	testutil.CreateUser(t, "Beto", "beto@sistemarest.mx", models.RoleMesero)
	testutil.CreateUser(t, "Caro", "caro@sistemarest.mx", models.RoleCocinero)

	resp := testutil.DoJSON(t, app, http.MethodGet, "/api/users?role=mesero", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := testutil.DecodeBody(t, resp)
	require.Equal(t, float64(2), body["count"])
}
