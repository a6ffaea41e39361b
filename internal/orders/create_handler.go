package orders

import (
	"fmt"

	"sistemarest-backend/internal/database"
	"sistemarest-backend/internal/httperr"
	"sistemarest-backend/internal/models"
	"sistemarest-backend/internal/settings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateOrderItem struct {
	Product  uint   `json:"product"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

type CreateOrderRequest struct {
	OrderNumber     string            `json:"orderNumber"`
	TakenBy         uint              `json:"takenBy"`
	Items           []CreateOrderItem `json:"items"`
	Table           *uint             `json:"table"`
	OrderType       string            `json:"orderType"`
	CustomerName    string            `json:"customerName"`
	CustomerPhone   string            `json:"customerPhone"`
	CustomerAddress string            `json:"customerAddress"`
	PaymentMethod   string            `json:"paymentMethod"`
	TotalAmount     *float64          `json:"totalAmount"`
}

// Tolerancia para comparar el total enviado por el cliente (flotantes)
var totalTolerance = decimal.NewFromFloat(0.01)

// POST /api/orders
//
// Toda la secuencia (verificaciones, descuento de inventario, ocupación de la
// mesa y creación de la orden) corre dentro de una transacción: si un ítem
// falla, ningún descuento anterior queda aplicado. Los descuentos de stock
// son condicionales (quantity >= requerido en el predicado del UPDATE), así
// que dos órdenes simultáneas no pueden pasar ambas la verificación.
func CreateOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido.")
		}

		if body.OrderNumber == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El número de orden es requerido.")
		}
		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "La orden debe tener al menos un ítem.")
		}
		for _, item := range body.Items {
			if item.Quantity < 1 {
				return fiber.NewError(fiber.StatusBadRequest, "La cantidad de cada ítem debe ser al menos 1.")
			}
		}

		orderType := models.OrderType(body.OrderType)
		if body.OrderType == "" {
			orderType = models.OrderDineIn
		}
		if !orderType.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Tipo de orden inválido. Valores permitidos: dine-in, takeaway, delivery.")
		}

		if orderType == models.OrderDineIn && body.Table == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Para pedidos \"dine-in\" se requiere una mesa.")
		}
		if orderType != models.OrderDineIn && (body.CustomerName == "" || body.CustomerPhone == "") {
			return fiber.NewError(fiber.StatusBadRequest, "Nombre y teléfono del cliente son requeridos para takeaway y delivery.")
		}
		if orderType == models.OrderDelivery && body.CustomerAddress == "" {
			return fiber.NewError(fiber.StatusBadRequest, "La dirección del cliente es requerida para delivery.")
		}

		var paymentMethod models.PaymentMethod
		if body.PaymentMethod != "" {
			paymentMethod = models.PaymentMethod(body.PaymentMethod)
			if !paymentMethod.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "Método de pago inválido.")
			}
		}

		var created models.Order

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			// 1. Número de orden único
			var count int64
			tx.Model(&models.Order{}).Where("order_number = ?", body.OrderNumber).Count(&count)
			if count > 0 {
				return fiber.NewError(fiber.StatusConflict, "El número de orden ya existe.")
			}

			// 2. El empleado que toma la orden debe ser staff activo
			var employee models.User
			if err := tx.First(&employee, body.TakenBy).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "El empleado que toma la orden es inválido o no tiene permisos.")
			}
			if !employee.IsActive || !employee.Role.IsStaff() {
				return fiber.NewError(fiber.StatusBadRequest, "El empleado que toma la orden es inválido o no tiene permisos.")
			}

			cfg, err := settings.Get(tx)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo obtener la configuración.")
			}
			deductRecipes := cfg.UseInventoryModule && cfg.UseRecipeModule

			// 3. Procesar ítems: verificar producto y descontar stock
			calculated := decimal.Zero
			orderItems := make([]models.OrderItem, 0, len(body.Items))

			for _, item := range body.Items {
				var product models.Product
				if err := tx.First(&product, item.Product).Error; err != nil {
					return fiber.NewError(fiber.StatusBadRequest,
						fmt.Sprintf("El producto con ID %d no existe.", item.Product))
				}
				if !product.IsAvailable {
					return fiber.NewError(fiber.StatusBadRequest,
						fmt.Sprintf("El producto '%s' no está disponible.", product.Name))
				}

				subtotal := decimal.NewFromFloat(product.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
				calculated = calculated.Add(subtotal)

				orderItems = append(orderItems, models.OrderItem{
					ProductID:    product.ID,
					Quantity:     item.Quantity,
					PriceAtOrder: product.Price,
					Notes:        item.Notes,
				})

				switch {
				case deductRecipes && product.StockType == models.StockTypeRecipe && product.RecipeID != nil:
					if err := deductRecipeStock(tx, &product, item.Quantity); err != nil {
						return err
					}
				case product.StockType == models.StockTypeDirect:
					if err := deductDirectStock(tx, &product, item.Quantity); err != nil {
						return err
					}
				}
			}

			// 4. El total del cliente debe coincidir con el calculado
			if body.TotalAmount != nil {
				clientTotal := decimal.NewFromFloat(*body.TotalAmount)
				if clientTotal.Sub(calculated).Abs().GreaterThan(totalTolerance) {
					return fiber.NewError(fiber.StatusBadRequest,
						fmt.Sprintf("El monto total proporcionado (%s) no coincide con el calculado (%s).",
							clientTotal.StringFixed(2), calculated.StringFixed(2)))
				}
			}
			totalAmount, _ := calculated.Float64()

			// 5. Ocupar la mesa (dine-in). El predicado status='available' evita
			// que dos órdenes ocupen la misma mesa a la vez.
			var tableID *uint
			if orderType == models.OrderDineIn {
				var table models.Table
				if err := tx.First(&table, *body.Table).Error; err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "Mesa no encontrada.")
				}
				res := tx.Model(&models.Table{}).
					Where("id = ? AND status = ?", table.ID, models.TableAvailable).
					Update("status", models.TableOccupied)
				if res.Error != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "No se pudo ocupar la mesa.")
				}
				if res.RowsAffected == 0 {
					return fiber.NewError(fiber.StatusBadRequest,
						fmt.Sprintf("La mesa %s no está disponible (estado: %s).", table.TableNumber, table.Status))
				}
				tableID = &table.ID
			}

			// 6. Crear la orden y enlazar la mesa
			order := models.Order{
				OrderNumber:   body.OrderNumber,
				TakenByID:     employee.ID,
				Status:        models.OrderPending,
				TableID:       tableID,
				OrderType:     orderType,
				PaymentMethod: paymentMethod,
				TotalAmount:   totalAmount,
				Items:         orderItems,
			}
			if orderType != models.OrderDineIn {
				order.CustomerName = body.CustomerName
				order.CustomerPhone = body.CustomerPhone
			}
			if orderType == models.OrderDelivery {
				order.CustomerAddress = body.CustomerAddress
			}

			if err := tx.Create(&order).Error; err != nil {
				return httperr.FromDB(err, "Orden no encontrada.", "El número de orden ya existe.")
			}

			if tableID != nil {
				if err := tx.Model(&models.Table{}).Where("id = ?", *tableID).
					Update("current_order_id", order.ID).Error; err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "No se pudo enlazar la mesa con la orden.")
				}
			}

			created = order
			return nil
		})
		if txErr != nil {
			return txErr
		}

		if err := preloadOrder(database.DB, &created); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cargar la orden creada.")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"message": "Orden creada exitosamente.",
			"order":   orderResponse(created),
		})
	}
}

// Descuenta del inventario los ingredientes de la receta del producto.
// El UPDATE solo aplica si quantity >= requerido; cero filas significa stock
// insuficiente y revienta la transacción completa.
func deductRecipeStock(tx *gorm.DB, product *models.Product, quantity int) error {
	var recipe models.Recipe
	if err := tx.Preload("Ingredients.InventoryItem").First(&recipe, *product.RecipeID).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("La receta asociada al producto '%s' no existe.", product.Name))
	}

	for _, ing := range recipe.Ingredients {
		required := ing.QuantityNeeded * float64(quantity)

		res := tx.Model(&models.InventoryItem{}).
			Where("id = ? AND quantity >= ?", ing.InventoryItemID, required).
			Update("quantity", gorm.Expr("quantity - ?", required))
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el inventario.")
		}
		if res.RowsAffected == 0 {
			item := ing.InventoryItem
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("No hay suficiente '%s' en inventario para '%s'. Stock actual: %g%s. Necesario: %g%s.",
					item.ItemName, product.Name, item.Quantity, item.Unit, required, ing.Unit))
		}
	}
	return nil
}

// Mismo patrón condicional para productos con stock directo.
func deductDirectStock(tx *gorm.DB, product *models.Product, quantity int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", product.ID, float64(quantity)).
		Update("stock", gorm.Expr("stock - ?", float64(quantity)))
	if res.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el stock del producto.")
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Stock insuficiente de '%s'. Disponible: %g, Solicitado: %d.",
				product.Name, product.Stock, quantity))
	}
	return nil
}
