package reports

import (
	"fmt"
	"time"

	"sistemarest-backend/internal/database"
	"sistemarest-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

const dateLayout = "2006-01-02"

// parseRange lee ?from=YYYY-MM-DD&to=YYYY-MM-DD. Sin parámetros cubre los
// últimos 30 días. El límite superior es exclusivo (medianoche del día siguiente).
func parseRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -30)

	if v := c.Query("from"); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest,
				"Parámetro 'from' inválido, usa el formato YYYY-MM-DD.")
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest,
				"Parámetro 'to' inválido, usa el formato YYYY-MM-DD.")
		}
		to = t.AddDate(0, 0, 1)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest,
			"El rango de fechas es inválido: 'from' debe ser anterior a 'to'.")
	}
	return from, to, nil
}

func paidOrdersInRange(from, to time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := database.DB.
		Preload("Items.Product").
		Where("paid = ? AND paid_at >= ? AND paid_at < ?", true, from, to).
		Order("paid_at").
		Find(&orders).Error
	return orders, err
}

// GET /api/reports/sales?from=&to=
func SalesReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parseRange(c)
		if err != nil {
			return err
		}

		orders, err := paidOrdersInRange(from, to)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte de ventas.")
		}

		var total float64
		for _, o := range orders {
			total += o.TotalAmount
		}
		average := 0.0
		if len(orders) > 0 {
			average = total / float64(len(orders))
		}

		return c.JSON(fiber.Map{
			"success":       true,
			"from":          from.Format(dateLayout),
			"to":            to.AddDate(0, 0, -1).Format(dateLayout),
			"ordersCount":   len(orders),
			"totalSales":    total,
			"averageTicket": average,
		})
	}
}

type InventoryReportRow struct {
	ID       uint    `json:"id"`
	ItemName string  `json:"itemName"`
	Quantity float64 `json:"quantity"`
	MinStock float64 `json:"minStock"`
	Unit     string  `json:"unit"`
	Status   string  `json:"status"`
}

// GET /api/reports/inventory
func InventoryReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []models.InventoryItem
		if err := database.DB.Order("item_name").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte de inventario.")
		}

		rows := make([]InventoryReportRow, 0, len(items))
		lowCount := 0
		for _, it := range items {
			status := "ok"
			if it.LowStock() {
				status = "low"
				lowCount++
			}
			rows = append(rows, InventoryReportRow{
				ID:       it.ID,
				ItemName: it.ItemName,
				Quantity: it.Quantity,
				MinStock: it.MinStock,
				Unit:     string(it.Unit),
				Status:   status,
			})
		}

		return c.JSON(fiber.Map{
			"success":  true,
			"count":    len(rows),
			"lowStock": lowCount,
			"items":    rows,
		})
	}
}

// GET /api/reports/sales/export?from=&to=
// Descarga el reporte de ventas del rango como archivo XLSX: una fila por
// orden pagada y un resumen al final.
func ExportSalesReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parseRange(c)
		if err != nil {
			return err
		}

		orders, err := paidOrdersInRange(from, to)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte de ventas.")
		}

		f := excelize.NewFile()
		defer f.Close()

		const sheet = "Ventas"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"Orden", "Fecha de pago", "Tipo", "Método de pago", "Artículos", "Total"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		var total float64
		row := 2
		for _, o := range orders {
			itemCount := 0
			for _, it := range o.Items {
				itemCount += it.Quantity
			}
			paidAt := ""
			if o.PaidAt != nil {
				paidAt = o.PaidAt.Format("2006-01-02 15:04")
			}
			values := []any{o.OrderNumber, paidAt, string(o.OrderType), string(o.PaymentMethod), itemCount, o.TotalAmount}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(sheet, cell, v)
			}
			total += o.TotalAmount
			row++
		}

		row++
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Órdenes")
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), len(orders))
		row++
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Total")
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), total)

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo escribir el archivo de exportación.")
		}

		filename := fmt.Sprintf("ventas_%s_%s.xlsx",
			from.Format(dateLayout), to.AddDate(0, 0, -1).Format(dateLayout))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
		return c.Send(buf.Bytes())
	}
}
