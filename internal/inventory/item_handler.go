package inventory

import (
	"fmt"
	"strings"

	"sistemarest-backend/internal/database"
	"sistemarest-backend/internal/httperr"
	"sistemarest-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ItemResponse struct {
	ID       uint    `json:"id"`
	ItemName string  `json:"itemName"`
	Quantity float64 `json:"quantity"`
	MinStock float64 `json:"minStock"`
	Unit     string  `json:"unit"`
	Supplier *uint   `json:"supplier,omitempty"`
	LowStock bool    `json:"lowStock"`
}

func itemResponse(i models.InventoryItem) ItemResponse {
	return ItemResponse{
		ID:       i.ID,
		ItemName: i.ItemName,
		Quantity: i.Quantity,
		MinStock: i.MinStock,
		Unit:     string(i.Unit),
		Supplier: i.SupplierID,
		LowStock: i.LowStock(),
	}
}

type CreateItemRequest struct {
	ItemName string   `json:"itemName"`
	Quantity *float64 `json:"quantity"`
	MinStock *float64 `json:"minStock"`
	Unit     string   `json:"unit"`
	Supplier *uint    `json:"supplier"`
}

// POST /api/inventory
func CreateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido.")
		}

		body.ItemName = strings.TrimSpace(body.ItemName)
		if body.ItemName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre del ítem es requerido.")
		}
		if body.Quantity == nil || *body.Quantity < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "La cantidad es requerida y no puede ser negativa.")
		}
		if body.MinStock == nil || *body.MinStock < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "El stock mínimo es requerido y no puede ser negativo.")
		}

		unit := models.UnitUnidades
		if body.Unit != "" {
			unit = models.Unit(body.Unit)
			if !unit.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "Unidad inválida. Valores permitidos: kg, g, l, ml, unidades.")
			}
		}

		if body.Supplier != nil {
			var supplier models.Supplier
			if err := database.DB.First(&supplier, *body.Supplier).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "El proveedor indicado no existe.")
			}
		}

		item := models.InventoryItem{
			ItemName:   body.ItemName,
			Quantity:   *body.Quantity,
			MinStock:   *body.MinStock,
			Unit:       unit,
			SupplierID: body.Supplier,
		}

		if err := database.DB.Create(&item).Error; err != nil {
			return httperr.FromDB(err, "Ítem no encontrado.", "Ya existe un ítem de inventario con ese nombre.")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"item":    itemResponse(item),
		})
	}
}

// GET /api/inventory
func ListItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []models.InventoryItem
		if err := database.DB.Order("item_name").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo listar el inventario.")
		}

		res := make([]ItemResponse, 0, len(items))
		for _, i := range items {
			res = append(res, itemResponse(i))
		}

		return c.JSON(fiber.Map{
			"success": true,
			"count":   len(res),
			"items":   res,
		})
	}
}

// GET /api/inventory/low-stock
func ListLowStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []models.InventoryItem
		if err := database.DB.Where("quantity < min_stock").Order("item_name").
			Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo listar el inventario.")
		}

		res := make([]ItemResponse, 0, len(items))
		for _, i := range items {
			res = append(res, itemResponse(i))
		}

		return c.JSON(fiber.Map{
			"success": true,
			"count":   len(res),
			"items":   res,
		})
	}
}

// GET /api/inventory/:id
func GetItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var item models.InventoryItem
		if err := database.DB.First(&item, id).Error; err != nil {
			return httperr.FromDB(err, "Ítem de inventario no encontrado.", "")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"item":    itemResponse(item),
		})
	}
}

type UpdateItemRequest struct {
	ItemName *string  `json:"itemName"`
	Quantity *float64 `json:"quantity"`
	MinStock *float64 `json:"minStock"`
	Unit     *string  `json:"unit"`
	Supplier *uint    `json:"supplier"`
}

// PUT /api/inventory/:id
func UpdateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var body UpdateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido.")
		}

		var item models.InventoryItem
		if err := database.DB.First(&item, id).Error; err != nil {
			return httperr.FromDB(err, "Ítem de inventario no encontrado.", "")
		}

		if body.ItemName != nil {
			name := strings.TrimSpace(*body.ItemName)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "El nombre del ítem no puede estar vacío.")
			}
			item.ItemName = name
		}
		if body.Quantity != nil {
			if *body.Quantity < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "La cantidad no puede ser negativa.")
			}
			item.Quantity = *body.Quantity
		}
		if body.MinStock != nil {
			if *body.MinStock < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "El stock mínimo no puede ser negativo.")
			}
			item.MinStock = *body.MinStock
		}
		if body.Unit != nil {
			unit := models.Unit(*body.Unit)
			if !unit.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "Unidad inválida.")
			}
			item.Unit = unit
		}
		if body.Supplier != nil {
			if *body.Supplier == 0 {
				item.SupplierID = nil
			} else {
				var supplier models.Supplier
				if err := database.DB.First(&supplier, *body.Supplier).Error; err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "El proveedor indicado no existe.")
				}
				item.SupplierID = body.Supplier
			}
		}

		if err := database.DB.Save(&item).Error; err != nil {
			return httperr.FromDB(err, "Ítem de inventario no encontrado.", "Ya existe un ítem de inventario con ese nombre.")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Ítem actualizado exitosamente.",
			"item":    itemResponse(item),
		})
	}
}

// DELETE /api/inventory/:id
// Se rechaza mientras alguna receta use el ítem.
func DeleteItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var item models.InventoryItem
		if err := database.DB.First(&item, id).Error; err != nil {
			return httperr.FromDB(err, "Ítem de inventario no encontrado.", "")
		}

		var count int64
		database.DB.Model(&models.RecipeIngredient{}).Where("inventory_item_id = ?", item.ID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("El ítem es usado por %d receta(s); elimínalo de las recetas primero.", count))
		}

		if err := database.DB.Delete(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar el ítem.")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Ítem eliminado exitosamente.",
		})
	}
}

type QuantityRequest struct {
	Amount float64 `json:"amount"`
}

// POST /api/inventory/:id/add-quantity
func AddQuantityHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return adjustQuantity(c, +1)
	}
}

// POST /api/inventory/:id/remove-quantity
func RemoveQuantityHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return adjustQuantity(c, -1)
	}
}

// El retiro usa el mismo UPDATE condicional que el flujo de órdenes: la
// cantidad nunca queda negativa, ni con peticiones concurrentes.
func adjustQuantity(c *fiber.Ctx, sign float64) error {
	id, err := httperr.ParseID(c, "id")
	if err != nil {
		return err
	}

	var body QuantityRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido.")
	}
	if body.Amount <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "La cantidad debe ser mayor que cero.")
	}

	var item models.InventoryItem
	if err := database.DB.First(&item, id).Error; err != nil {
		return httperr.FromDB(err, "Ítem de inventario no encontrado.", "")
	}

	delta := sign * body.Amount
	q := database.DB.Model(&models.InventoryItem{}).Where("id = ?", item.ID)
	if sign < 0 {
		q = q.Where("quantity >= ?", body.Amount)
	}
	res := q.Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar la cantidad.")
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("No hay suficiente '%s' en inventario. Stock actual: %g%s.",
				item.ItemName, item.Quantity, item.Unit))
	}

	if err := database.DB.First(&item, item.ID).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cargar el ítem actualizado.")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"item":    itemResponse(item),
	})
}
