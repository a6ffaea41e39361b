package orders

import (
	"fmt"
	"time"

	"sistemarest-backend/internal/database"
	"sistemarest-backend/internal/httperr"
	"sistemarest-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// PATCH /api/orders/:id/status
// Pasar a paid o cancelled libera la mesa asociada y limpia su referencia.
func UpdateOrderStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var body UpdateStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido.")
		}

		status := models.OrderStatus(body.Status)
		if !status.Valid() {
			return fiber.NewError(fiber.StatusBadRequest,
				"Estado inválido. Los estados permitidos son: pending, preparing, ready, served, paid, cancelled.")
		}

		var order models.Order
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&order, id).Error; err != nil {
				return httperr.FromDB(err, "Orden no encontrada.", "")
			}

			if status.Closed() && order.TableID != nil {
				if err := tx.Model(&models.Table{}).Where("id = ?", *order.TableID).
					Updates(map[string]any{
						"status":           models.TableAvailable,
						"current_order_id": nil,
					}).Error; err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "No se pudo liberar la mesa.")
				}
			}

			order.Status = status
			if status == models.OrderPaid && !order.Paid {
				now := time.Now()
				order.Paid = true
				order.PaidAt = &now
			}
			if err := tx.Save(&order).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el estado de la orden.")
			}
			return nil
		})
		if txErr != nil {
			return txErr
		}

		if err := preloadOrder(database.DB, &order); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cargar la orden.")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": fmt.Sprintf("Estado de la orden %s actualizado a '%s' exitosamente.", order.OrderNumber, status),
			"order":   orderResponse(order),
		})
	}
}

type PayOrderRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

// POST /api/orders/:id/pay
func MarkOrderPaidHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var body PayOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido.")
		}

		var order models.Order
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&order, id).Error; err != nil {
				return httperr.FromDB(err, "Orden no encontrada.", "")
			}
			if order.Paid {
				return fiber.NewError(fiber.StatusBadRequest, "La orden ya ha sido marcada como pagada.")
			}

			if body.PaymentMethod != "" {
				pm := models.PaymentMethod(body.PaymentMethod)
				if !pm.Valid() {
					return fiber.NewError(fiber.StatusBadRequest, "Método de pago inválido.")
				}
				order.PaymentMethod = pm
			}

			now := time.Now()
			order.Paid = true
			order.PaidAt = &now
			order.Status = models.OrderPaid

			if order.TableID != nil {
				if err := tx.Model(&models.Table{}).Where("id = ?", *order.TableID).
					Updates(map[string]any{
						"status":           models.TableAvailable,
						"current_order_id": nil,
					}).Error; err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "No se pudo liberar la mesa.")
				}
			}

			if err := tx.Save(&order).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo marcar la orden como pagada.")
			}
			return nil
		})
		if txErr != nil {
			return txErr
		}

		if err := preloadOrder(database.DB, &order); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cargar la orden.")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": fmt.Sprintf("Orden %s marcada como pagada exitosamente.", order.OrderNumber),
			"order":   orderResponse(order),
		})
	}
}

// GET /api/orders/today-summary
// Total y conteo de las órdenes de hoy (medianoche local), sin las canceladas.
func TodaySummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		endOfDay := startOfDay.Add(24 * time.Hour)

		var orders []models.Order
		if err := database.DB.
			Where("created_at >= ? AND created_at < ? AND status <> ?", startOfDay, endOfDay, models.OrderCancelled).
			Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo obtener el resumen diario.")
		}

		total := 0.0
		summaries := make([]fiber.Map, 0, len(orders))
		for _, o := range orders {
			total += o.TotalAmount
			summaries = append(summaries, fiber.Map{
				"id":          o.ID,
				"orderNumber": o.OrderNumber,
				"totalAmount": o.TotalAmount,
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"total":   total,
			"count":   len(orders),
			"orders":  summaries,
		})
	}
}
