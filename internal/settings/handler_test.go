package settings

import (
	"net/http"
	"testing"

	"sistemarest-backend/internal/auth"
	"sistemarest-backend/internal/models"
	"sistemarest-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func settingsApp() *fiber.App {
	app := testutil.NewApp()
	cfg := testutil.Config()

	protected := app.Group("", auth.JWTMiddleware(cfg))
	protected.Get("/api/settings", GetSettingsHandler())
	protected.Put("/api/settings", auth.RequireRole(models.RoleAdmin), UpdateSettingsHandler())
	protected.Get("/api/reports-demo", RequireModule(models.ModuleReports), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	})
	return app
}

func TestGetSettings_CreatesDefaultsOnFirstRead(t *testing.T) {
	testutil.SetupDB(t)
	testutil.SetupRedis(t)
	app := settingsApp()

	admin := testutil.CreateUser(t, "Root", "root@sistemarest.mx", models.RoleAdmin)
	token := testutil.TokenFor(t, admin)

	resp := testutil.DoJSON(t, app, http.MethodGet, "/api/settings", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := testutil.DecodeBody(t, resp)
	settings, ok := body["settings"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, true, settings["useInventoryModule"])
	require.Equal(t, true, settings["useRecipeModule"])

	access, ok := settings["moduleAccess"].(map[string]any)
	require.True(t, ok)
	require.Len(t, access, len(models.AllModules))
}

func TestUpdateSettings_RejectsUnknownModule(t *testing.T) {
	testutil.SetupDB(t)
	testutil.SetupRedis(t)
	app := settingsApp()

	admin := testutil.CreateUser(t, "Root", "root@sistemarest.mx", models.RoleAdmin)
	token := testutil.TokenFor(t, admin)

	resp := testutil.DoJSON(t, app, http.MethodPut, "/api/settings", token, fiber.Map{
		"moduleAccess": fiber.Map{"facturacion": []string{"admin"}},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = testutil.DoJSON(t, app, http.MethodPut, "/api/settings", token, fiber.Map{
		"moduleAccess": fiber.Map{"orders": []string{"admin", "gerente"}},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRequireModule_EnforcesAccessMap(t *testing.T) {
	testutil.SetupDB(t)
	testutil.SetupRedis(t)
	app := settingsApp()

	admin := testutil.CreateUser(t, "Root", "root@sistemarest.mx", models.RoleAdmin)
	adminToken := testutil.TokenFor(t, admin)

	waiter := testutil.CreateUser(t, "Rita", "rita@sistemarest.mx", models.RoleMesero)
	waiterToken := testutil.TokenFor(t, waiter)

	// Con el mapa por defecto, reports es de admin y supervisor
	resp := testutil.DoJSON(t, app, http.MethodGet, "/api/reports-demo", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = testutil.DoJSON(t, app, http.MethodGet, "/api/reports-demo", waiterToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// El comodín abre el módulo a todos los roles
	update := testutil.DoJSON(t, app, http.MethodPut, "/api/settings", adminToken, fiber.Map{
		"moduleAccess": fiber.Map{"reports": []string{"*"}},
	})
	require.Equal(t, http.StatusOK, update.StatusCode)

	resp = testutil.DoJSON(t, app, http.MethodGet, "/api/reports-demo", waiterToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUpdateSettings_NegativeTaxRateRejected(t *testing.T) {
	testutil.SetupDB(t)
	testutil.SetupRedis(t)
	app := settingsApp()

	admin := testutil.CreateUser(t, "Root", "root@sistemarest.mx", models.RoleAdmin)
	token := testutil.TokenFor(t, admin)

	resp := testutil.DoJSON(t, app, http.MethodPut, "/api/settings", token, fiber.Map{
		"taxRate": -0.16,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
