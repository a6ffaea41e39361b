package orders

import (
	"fmt"

	"sistemarest-backend/internal/audit"
	"sistemarest-backend/internal/auth"
	"sistemarest-backend/internal/database"
	"sistemarest-backend/internal/httperr"
	"sistemarest-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type OrderItemResponse struct {
	ProductID    uint    `json:"productId"`
	ProductName  string  `json:"productName"`
	Quantity     int     `json:"quantity"`
	PriceAtOrder float64 `json:"priceAtOrder"`
	Notes        string  `json:"notes,omitempty"`
}

type OrderTableResponse struct {
	ID          uint   `json:"id"`
	TableNumber string `json:"tableNumber"`
	Status      string `json:"status"`
}

type OrderTakenByResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type OrderResponse struct {
	ID              uint                 `json:"id"`
	OrderNumber     string               `json:"orderNumber"`
	Status          string               `json:"status"`
	OrderType       string               `json:"orderType"`
	TakenBy         OrderTakenByResponse `json:"takenBy"`
	Table           *OrderTableResponse  `json:"table,omitempty"`
	Items           []OrderItemResponse  `json:"items"`
	CustomerName    string               `json:"customerName,omitempty"`
	CustomerPhone   string               `json:"customerPhone,omitempty"`
	CustomerAddress string               `json:"customerAddress,omitempty"`
	PaymentMethod   string               `json:"paymentMethod,omitempty"`
	TotalAmount     float64              `json:"totalAmount"`
	Paid            bool                 `json:"paid"`
	PaidAt          string               `json:"paidAt,omitempty"`
	CreatedAt       string               `json:"createdAt"`
}

func preloadOrder(db *gorm.DB, order *models.Order) error {
	return db.Preload("TakenBy").Preload("Table").Preload("Items.Product").
		First(order, order.ID).Error
}

func orderResponse(o models.Order) OrderResponse {
	res := OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Status:      string(o.Status),
		OrderType:   string(o.OrderType),
		TakenBy: OrderTakenByResponse{
			ID:   o.TakenBy.ID,
			Name: o.TakenBy.Name,
			Role: string(o.TakenBy.Role),
		},
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerAddress: o.CustomerAddress,
		PaymentMethod:   string(o.PaymentMethod),
		TotalAmount:     o.TotalAmount,
		Paid:            o.Paid,
		CreatedAt:       o.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if o.Table != nil {
		res.Table = &OrderTableResponse{
			ID:          o.Table.ID,
			TableNumber: o.Table.TableNumber,
			Status:      string(o.Table.Status),
		}
	}
	if o.PaidAt != nil {
		res.PaidAt = o.PaidAt.Format("2006-01-02 15:04:05")
	}
	res.Items = make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		res.Items = append(res.Items, OrderItemResponse{
			ProductID:    item.ProductID,
			ProductName:  item.Product.Name,
			Quantity:     item.Quantity,
			PriceAtOrder: item.PriceAtOrder,
			Notes:        item.Notes,
		})
	}
	return res
}

// GET /api/orders?status=pending&table=3&takenBy=2
func ListOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Preload("TakenBy").Preload("Table").Preload("Items.Product").
			Order("created_at DESC")

		if status := c.Query("status"); status != "" {
			if !models.OrderStatus(status).Valid() {
				return fiber.NewError(fiber.StatusBadRequest,
					"Estado inválido. Los estados permitidos son: pending, preparing, ready, served, paid, cancelled.")
			}
			q = q.Where("status = ?", status)
		}
		if table := c.QueryInt("table"); table > 0 {
			q = q.Where("table_id = ?", table)
		}
		if takenBy := c.QueryInt("takenBy"); takenBy > 0 {
			q = q.Where("taken_by_id = ?", takenBy)
		}

		var orders []models.Order
		if err := q.Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron obtener las órdenes.")
		}

		res := make([]OrderResponse, 0, len(orders))
		for _, o := range orders {
			res = append(res, orderResponse(o))
		}

		return c.JSON(fiber.Map{
			"success": true,
			"count":   len(res),
			"orders":  res,
		})
	}
}

// GET /api/orders/:id
func GetOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var order models.Order
		if err := database.DB.Preload("TakenBy").Preload("Table").Preload("Items.Product").
			First(&order, id).Error; err != nil {
			return httperr.FromDB(err, "Orden no encontrada.", "")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"order":   orderResponse(order),
		})
	}
}

type UpdateOrderRequest struct {
	OrderNumber     *string           `json:"orderNumber"`
	Items           []CreateOrderItem `json:"items"`
	Table           *uint             `json:"table"`
	CustomerName    *string           `json:"customerName"`
	CustomerPhone   *string           `json:"customerPhone"`
	CustomerAddress *string           `json:"customerAddress"`
	PaymentMethod   *string           `json:"paymentMethod"`
}

// PUT /api/orders/:id
// Actualiza los datos editables de una orden abierta. El reemplazo de ítems
// recalcula el total con los precios actuales; no toca inventario (el
// descuento ocurrió al crear la orden).
func UpdateOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var body UpdateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido.")
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			var order models.Order
			if err := tx.First(&order, id).Error; err != nil {
				return httperr.FromDB(err, "Orden no encontrada.", "")
			}
			if order.Status.Closed() {
				return fiber.NewError(fiber.StatusBadRequest, "No se puede modificar una orden pagada o cancelada.")
			}

			if body.OrderNumber != nil && *body.OrderNumber != order.OrderNumber {
				var count int64
				tx.Model(&models.Order{}).
					Where("order_number = ? AND id <> ?", *body.OrderNumber, order.ID).
					Count(&count)
				if count > 0 {
					return fiber.NewError(fiber.StatusConflict, "Ya existe otra orden con este número.")
				}
				order.OrderNumber = *body.OrderNumber
			}

			if body.Items != nil {
				if len(body.Items) == 0 {
					return fiber.NewError(fiber.StatusBadRequest, "La orden debe tener al menos un ítem.")
				}
				total := 0.0
				newItems := make([]models.OrderItem, 0, len(body.Items))
				for _, item := range body.Items {
					if item.Quantity < 1 {
						return fiber.NewError(fiber.StatusBadRequest, "La cantidad de cada ítem debe ser al menos 1.")
					}
					var product models.Product
					if err := tx.First(&product, item.Product).Error; err != nil {
						return fiber.NewError(fiber.StatusBadRequest,
							fmt.Sprintf("El producto con ID %d no existe.", item.Product))
					}
					newItems = append(newItems, models.OrderItem{
						OrderID:      order.ID,
						ProductID:    product.ID,
						Quantity:     item.Quantity,
						PriceAtOrder: product.Price,
						Notes:        item.Notes,
					})
					total += product.Price * float64(item.Quantity)
				}
				if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron actualizar los ítems.")
				}
				if err := tx.Create(&newItems).Error; err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron actualizar los ítems.")
				}
				order.TotalAmount = total
			}

			if body.Table != nil {
				if err := moveOrderToTable(tx, &order, *body.Table); err != nil {
					return err
				}
			}

			if body.CustomerName != nil && order.OrderType != models.OrderDineIn {
				order.CustomerName = *body.CustomerName
			}
			if body.CustomerPhone != nil && order.OrderType != models.OrderDineIn {
				order.CustomerPhone = *body.CustomerPhone
			}
			if body.CustomerAddress != nil && order.OrderType == models.OrderDelivery {
				order.CustomerAddress = *body.CustomerAddress
			}
			if body.PaymentMethod != nil {
				pm := models.PaymentMethod(*body.PaymentMethod)
				if !pm.Valid() {
					return fiber.NewError(fiber.StatusBadRequest, "Método de pago inválido.")
				}
				order.PaymentMethod = pm
			}

			if err := tx.Save(&order).Error; err != nil {
				return httperr.FromDB(err, "Orden no encontrada.", "El número de orden ya existe.")
			}
			return nil
		})
		if txErr != nil {
			return txErr
		}

		order := models.Order{ID: id}
		if err := preloadOrder(database.DB, &order); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cargar la orden actualizada.")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Orden actualizada exitosamente.",
			"order":   orderResponse(order),
		})
	}
}

// Cambia la mesa de una orden dine-in liberando la anterior. tableID == 0
// desvincula la orden de su mesa.
func moveOrderToTable(tx *gorm.DB, order *models.Order, tableID uint) error {
	freeOld := func() error {
		if order.TableID == nil {
			return nil
		}
		return tx.Model(&models.Table{}).Where("id = ?", *order.TableID).
			Updates(map[string]any{
				"status":           models.TableAvailable,
				"current_order_id": nil,
			}).Error
	}

	if tableID == 0 {
		if err := freeOld(); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo liberar la mesa anterior.")
		}
		order.TableID = nil
		return nil
	}

	if order.TableID != nil && *order.TableID == tableID {
		return nil
	}

	var newTable models.Table
	if err := tx.First(&newTable, tableID).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Nueva mesa seleccionada no encontrada.")
	}

	res := tx.Model(&models.Table{}).
		Where("id = ? AND status = ?", newTable.ID, models.TableAvailable).
		Updates(map[string]any{
			"status":           models.TableOccupied,
			"current_order_id": order.ID,
		})
	if res.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "No se pudo ocupar la nueva mesa.")
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("La mesa %s no está disponible (%s).", newTable.TableNumber, newTable.Status))
	}

	if err := freeOld(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "No se pudo liberar la mesa anterior.")
	}
	order.TableID = &newTable.ID
	return nil
}

// DELETE /api/orders/:id (solo admin)
func DeleteOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		userID, _ := auth.CurrentUserID(c)

		var deleted models.Order
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			var order models.Order
			if err := tx.First(&order, id).Error; err != nil {
				return httperr.FromDB(err, "Orden no encontrada.", "")
			}

			// Liberar la mesa si la orden estaba vinculada a una
			if order.TableID != nil {
				if err := tx.Model(&models.Table{}).Where("id = ?", *order.TableID).
					Updates(map[string]any{
						"status":           models.TableAvailable,
						"current_order_id": nil,
					}).Error; err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "No se pudo liberar la mesa.")
				}
			}

			if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar la orden.")
			}
			if err := tx.Delete(&order).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar la orden.")
			}

			deleted = order
			return nil
		})
		if txErr != nil {
			return txErr
		}

		audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			EntityType:  "order",
			EntityID:    deleted.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Orden %s eliminada", deleted.OrderNumber),
			Before:      deleted,
		})

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Orden eliminada exitosamente.",
		})
	}
}
