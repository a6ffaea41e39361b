package dashboard

import (
	"time"

	"sistemarest-backend/internal/database"
	"sistemarest-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// todayBounds devuelve [medianoche local de hoy, medianoche de mañana).
func todayBounds() (time.Time, time.Time) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

// GET /api/dashboard/orders-today
// Cuenta todas las órdenes creadas hoy, sin importar su estado.
func OrdersTodayHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start, end := todayBounds()

		var count int64
		err := database.DB.Model(&models.Order{}).
			Where("created_at >= ? AND created_at < ?", start, end).
			Count(&count).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo contar las órdenes de hoy.")
		}

		return c.JSON(fiber.Map{
			"success":     true,
			"ordersToday": count,
		})
	}
}

// GET /api/dashboard/total-sales
// Suma acumulada de todas las órdenes pagadas.
func TotalSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var total float64
		err := database.DB.Model(&models.Order{}).
			Where("paid = ?", true).
			Select("COALESCE(SUM(total_amount), 0)").
			Scan(&total).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo calcular las ventas totales.")
		}

		return c.JSON(fiber.Map{
			"success":    true,
			"totalSales": total,
		})
	}
}

// GET /api/dashboard/tables-status
func TablesStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var total, occupied int64
		if err := database.DB.Model(&models.Table{}).
			Where("status <> ?", models.TableInactive).
			Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo consultar las mesas.")
		}
		if err := database.DB.Model(&models.Table{}).
			Where("status = ?", models.TableOccupied).
			Count(&occupied).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo consultar las mesas.")
		}

		return c.JSON(fiber.Map{
			"success":  true,
			"occupied": occupied,
			"total":    total,
		})
	}
}

type ProductRevenue struct {
	ProductID   uint    `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int64   `json:"quantity"`
	Revenue     float64 `json:"revenue"`
}

// GET /api/dashboard/revenue-by-product
// Ingresos por producto sobre todas las órdenes pagadas, de mayor a menor.
func RevenueByProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []ProductRevenue
		err := database.DB.Model(&models.OrderItem{}).
			Select("order_items.product_id AS product_id, products.name AS product_name, "+
				"SUM(order_items.quantity) AS quantity, "+
				"SUM(order_items.quantity * order_items.price_at_order) AS revenue").
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Joins("JOIN products ON products.id = order_items.product_id").
			Where("orders.paid = ?", true).
			Group("order_items.product_id, products.name").
			Order("revenue DESC").
			Scan(&rows).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo calcular los ingresos por producto.")
		}

		if rows == nil {
			rows = []ProductRevenue{}
		}

		return c.JSON(fiber.Map{
			"success":  true,
			"products": rows,
		})
	}
}

type DailySales struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
	Count int64   `json:"count"`
}

// GET /api/dashboard/sales-chart
// Ventas pagadas de los últimos 7 días, un punto por día (días sin ventas en cero).
// La agrupación se hace en Go para no depender de funciones de fecha del motor.
func SalesChartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		windowStart := todayStart.AddDate(0, 0, -6)

		var orders []models.Order
		err := database.DB.
			Where("paid = ? AND paid_at >= ?", true, windowStart).
			Find(&orders).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar la gráfica de ventas.")
		}

		byDay := make(map[string]*DailySales, 7)
		days := make([]DailySales, 0, 7)
		for i := 0; i < 7; i++ {
			day := windowStart.AddDate(0, 0, i).Format("2006-01-02")
			days = append(days, DailySales{Date: day})
			byDay[day] = &days[i]
		}

		for _, o := range orders {
			if o.PaidAt == nil {
				continue
			}
			key := o.PaidAt.In(now.Location()).Format("2006-01-02")
			if entry, ok := byDay[key]; ok {
				entry.Total += o.TotalAmount
				entry.Count++
			}
		}

		return c.JSON(fiber.Map{
			"success": true,
			"days":    days,
		})
	}
}
