package main

import (
	"log"
	"strings"
	"time"

	"sistemarest-backend/internal/audit"
	"sistemarest-backend/internal/auth"
	"sistemarest-backend/internal/catalog"
	"sistemarest-backend/internal/config"
	"sistemarest-backend/internal/dashboard"
	"sistemarest-backend/internal/database"
	"sistemarest-backend/internal/inventory"
	"sistemarest-backend/internal/models"
	"sistemarest-backend/internal/orders"
	"sistemarest-backend/internal/reports"
	"sistemarest-backend/internal/settings"
	"sistemarest-backend/internal/tables"
	"sistemarest-backend/internal/users"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)
	database.InitRedis(cfg)

	// La configuración persistida debe ser válida antes de aceptar tráfico:
	// un moduleAccess corrupto dejaría módulos enteros inaccesibles.
	setting, err := settings.Get(database.DB)
	if err != nil {
		log.Fatal("[FATAL] No se pudo cargar la configuración inicial: ", err)
	}
	if err := setting.ModuleAccess.Validate(); err != nil {
		log.Fatal("[FATAL] moduleAccess persistido es inválido: ", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"success": false,
					"message": e.Message,
				})
			}
			log.Println("Error inesperado:", err)
			body := fiber.Map{
				"success": false,
				"message": "Error inesperado del servidor",
			}
			if cfg.Development {
				body["systemError"] = err.Error()
			}
			return c.Status(fiber.StatusInternalServerError).JSON(body)
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(corsOrigins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: true,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Auth pública; el login lleva rate limit contra fuerza bruta
	loginLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
	})
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", loginLimiter, auth.LoginHandler(cfg))
	api.Post("/auth/refresh", auth.RefreshHandler(cfg))

	// Todo lo demás requiere sesión
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())
	protected.Post("/auth/logout", auth.LogoutHandler())

	// Órdenes: cualquier rol de personal
	orderRoutes := protected.Group("/orders", settings.RequireModule(models.ModuleOrders))
	orderRoutes.Post("", orders.CreateOrderHandler())
	orderRoutes.Get("", orders.ListOrdersHandler())
	orderRoutes.Get("/today-summary", orders.TodaySummaryHandler())
	orderRoutes.Get("/:id", orders.GetOrderHandler())
	orderRoutes.Put("/:id", orders.UpdateOrderHandler())
	orderRoutes.Patch("/:id/status", orders.UpdateOrderStatusHandler())
	orderRoutes.Post("/:id/pay", orders.MarkOrderPaidHandler())
	orderRoutes.Delete("/:id", auth.RequireRole(models.RoleAdmin), orders.DeleteOrderHandler())

	// Mesas
	tableRoutes := protected.Group("/tables", settings.RequireModule(models.ModuleTables))
	tableRoutes.Get("", tables.ListTablesHandler())
	tableRoutes.Get("/:id", tables.GetTableHandler())
	tableRoutes.Patch("/:id/status", tables.UpdateTableStatusHandler())
	tableRoutes.Post("", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), tables.CreateTableHandler())
	tableRoutes.Put("/:id", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), tables.UpdateTableHandler())
	tableRoutes.Delete("/:id", auth.RequireRole(models.RoleAdmin), tables.DeleteTableHandler())

	// Productos
	productRoutes := protected.Group("/products", settings.RequireModule(models.ModuleProducts))
	productRoutes.Get("", catalog.ListProductsHandler())
	productRoutes.Get("/:id", catalog.GetProductHandler())
	productRoutes.Patch("/:id/availability", catalog.UpdateProductAvailabilityHandler())
	productRoutes.Post("", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), catalog.CreateProductHandler())
	productRoutes.Put("/:id", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), catalog.UpdateProductHandler())
	productRoutes.Delete("/:id", auth.RequireRole(models.RoleAdmin), catalog.DeleteProductHandler())

	// Recetas
	recipeRoutes := protected.Group("/recipes", settings.RequireModule(models.ModuleRecipes))
	recipeRoutes.Get("", catalog.ListRecipesHandler())
	recipeRoutes.Get("/:id", catalog.GetRecipeHandler())
	recipeRoutes.Post("", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), catalog.CreateRecipeHandler())
	recipeRoutes.Put("/:id", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), catalog.UpdateRecipeHandler())
	recipeRoutes.Delete("/:id", auth.RequireRole(models.RoleAdmin), catalog.DeleteRecipeHandler())

	// Inventario
	inventoryRoutes := protected.Group("/inventory", settings.RequireModule(models.ModuleInventory))
	inventoryRoutes.Get("", inventory.ListItemsHandler())
	inventoryRoutes.Get("/low-stock", inventory.ListLowStockHandler())
	inventoryRoutes.Get("/:id", inventory.GetItemHandler())
	inventoryRoutes.Post("", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), inventory.CreateItemHandler())
	inventoryRoutes.Put("/:id", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), inventory.UpdateItemHandler())
	inventoryRoutes.Post("/:id/add-quantity", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), inventory.AddQuantityHandler())
	inventoryRoutes.Post("/:id/remove-quantity", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), inventory.RemoveQuantityHandler())
	inventoryRoutes.Delete("/:id", auth.RequireRole(models.RoleAdmin), inventory.DeleteItemHandler())

	// Proveedores
	supplierRoutes := protected.Group("/suppliers", settings.RequireModule(models.ModuleSuppliers))
	supplierRoutes.Get("", inventory.ListSuppliersHandler())
	supplierRoutes.Get("/:id", inventory.GetSupplierHandler())
	supplierRoutes.Post("", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), inventory.CreateSupplierHandler())
	supplierRoutes.Put("/:id", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), inventory.UpdateSupplierHandler())
	supplierRoutes.Delete("/:id", auth.RequireRole(models.RoleAdmin), inventory.DeleteSupplierHandler())

	// Usuarios: solo admin
	userRoutes := protected.Group("/users", settings.RequireModule(models.ModuleUsers), auth.RequireRole(models.RoleAdmin))
	userRoutes.Post("", users.CreateUserHandler())
	userRoutes.Get("", users.ListUsersHandler())
	userRoutes.Get("/:id", users.GetUserHandler())
	userRoutes.Put("/:id", users.UpdateUserHandler())
	userRoutes.Delete("/:id", users.DeleteUserHandler())

	// Dashboard
	dashboardRoutes := protected.Group("/dashboard", settings.RequireModule(models.ModuleDashboard))
	dashboardRoutes.Get("/orders-today", dashboard.OrdersTodayHandler())
	dashboardRoutes.Get("/total-sales", dashboard.TotalSalesHandler())
	dashboardRoutes.Get("/tables-status", dashboard.TablesStatusHandler())
	dashboardRoutes.Get("/revenue-by-product", dashboard.RevenueByProductHandler())
	dashboardRoutes.Get("/sales-chart", dashboard.SalesChartHandler())

	// Reportes
	reportRoutes := protected.Group("/reports", settings.RequireModule(models.ModuleReports),
		auth.RequireRole(models.RoleAdmin, models.RoleSupervisor))
	reportRoutes.Get("/sales", reports.SalesReportHandler())
	reportRoutes.Get("/sales/export", reports.ExportSalesReportHandler())
	reportRoutes.Get("/inventory", reports.InventoryReportHandler())

	// Configuración
	settingRoutes := protected.Group("/settings", settings.RequireModule(models.ModuleSettings))
	settingRoutes.Get("", settings.GetSettingsHandler())
	settingRoutes.Put("", auth.RequireRole(models.RoleAdmin), settings.UpdateSettingsHandler())

	// Auditoría: solo admin
	protected.Get("/audit-logs", auth.RequireRole(models.RoleAdmin), audit.ListAuditLogsHandler())

	log.Println("Servidor escuchando en el puerto", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
