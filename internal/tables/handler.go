package tables

import (
	"fmt"
	"strings"

	"sistemarest-backend/internal/database"
	"sistemarest-backend/internal/httperr"
	"sistemarest-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type TableResponse struct {
	ID             uint   `json:"id"`
	TableNumber    string `json:"tableNumber"`
	Capacity       int    `json:"capacity"`
	Status         string `json:"status"`
	CurrentOrderID *uint  `json:"currentOrderId,omitempty"`
	Location       string `json:"location,omitempty"`
}

func tableResponse(t models.Table) TableResponse {
	return TableResponse{
		ID:             t.ID,
		TableNumber:    t.TableNumber,
		Capacity:       t.Capacity,
		Status:         string(t.Status),
		CurrentOrderID: t.CurrentOrderID,
		Location:       t.Location,
	}
}

type CreateTableRequest struct {
	TableNumber string `json:"tableNumber"`
	Capacity    int    `json:"capacity"`
	Status      string `json:"status"`
	Location    string `json:"location"`
}

// POST /api/tables
func CreateTableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTableRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido.")
		}

		body.TableNumber = strings.TrimSpace(body.TableNumber)
		if body.TableNumber == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El número de mesa es requerido.")
		}
		if body.Capacity < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "La capacidad mínima es 1.")
		}

		status := models.TableAvailable
		if body.Status != "" {
			status = models.TableStatus(body.Status)
			if !status.Valid() {
				return fiber.NewError(fiber.StatusBadRequest,
					"Estado inválido. Valores permitidos: available, occupied, reserved, cleaning, inactive.")
			}
		}

		table := models.Table{
			TableNumber: body.TableNumber,
			Capacity:    body.Capacity,
			Status:      status,
			Location:    strings.TrimSpace(body.Location),
		}

		if err := database.DB.Create(&table).Error; err != nil {
			return httperr.FromDB(err, "Mesa no encontrada.", "Ya existe una mesa con ese número.")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"table":   tableResponse(table),
		})
	}
}

// GET /api/tables?status=available
func ListTablesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Model(&models.Table{}).Order("table_number")

		if status := c.Query("status"); status != "" {
			if !models.TableStatus(status).Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "Estado de mesa inválido.")
			}
			q = q.Where("status = ?", status)
		}

		var tables []models.Table
		if err := q.Find(&tables).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar las mesas.")
		}

		res := make([]TableResponse, 0, len(tables))
		for _, t := range tables {
			res = append(res, tableResponse(t))
		}

		return c.JSON(fiber.Map{
			"success": true,
			"count":   len(res),
			"tables":  res,
		})
	}
}

// GET /api/tables/:id
func GetTableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var table models.Table
		if err := database.DB.First(&table, id).Error; err != nil {
			return httperr.FromDB(err, "Mesa no encontrada.", "")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"table":   tableResponse(table),
		})
	}
}

type UpdateTableRequest struct {
	TableNumber *string `json:"tableNumber"`
	Capacity    *int    `json:"capacity"`
	Location    *string `json:"location"`
}

// PUT /api/tables/:id
func UpdateTableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var body UpdateTableRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido.")
		}

		var table models.Table
		if err := database.DB.First(&table, id).Error; err != nil {
			return httperr.FromDB(err, "Mesa no encontrada.", "")
		}

		if body.TableNumber != nil {
			num := strings.TrimSpace(*body.TableNumber)
			if num == "" {
				return fiber.NewError(fiber.StatusBadRequest, "El número de mesa no puede estar vacío.")
			}
			table.TableNumber = num
		}
		if body.Capacity != nil {
			if *body.Capacity < 1 {
				return fiber.NewError(fiber.StatusBadRequest, "La capacidad mínima es 1.")
			}
			table.Capacity = *body.Capacity
		}
		if body.Location != nil {
			table.Location = strings.TrimSpace(*body.Location)
		}

		if err := database.DB.Save(&table).Error; err != nil {
			return httperr.FromDB(err, "Mesa no encontrada.", "Ya existe una mesa con ese número.")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Mesa actualizada exitosamente.",
			"table":   tableResponse(table),
		})
	}
}

type UpdateTableStatusRequest struct {
	Status string `json:"status"`
}

// PATCH /api/tables/:id/status
// Cambio manual del personal (reservar, limpiar, desactivar). La transición
// desde "occupied" se rechaza mientras la mesa tenga una orden vinculada: la
// libera la orden al pagarse o cancelarse.
func UpdateTableStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var body UpdateTableStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido.")
		}

		status := models.TableStatus(body.Status)
		if !status.Valid() {
			return fiber.NewError(fiber.StatusBadRequest,
				"Estado inválido. Valores permitidos: available, occupied, reserved, cleaning, inactive.")
		}

		var table models.Table
		if err := database.DB.First(&table, id).Error; err != nil {
			return httperr.FromDB(err, "Mesa no encontrada.", "")
		}

		if table.Status == models.TableOccupied && table.CurrentOrderID != nil && status != models.TableOccupied {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("La mesa %s tiene la orden %d activa; paga o cancela la orden primero.",
					table.TableNumber, *table.CurrentOrderID))
		}

		table.Status = status
		if err := database.DB.Save(&table).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el estado de la mesa.")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"table":   tableResponse(table),
		})
	}
}

// DELETE /api/tables/:id
func DeleteTableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var table models.Table
		if err := database.DB.First(&table, id).Error; err != nil {
			return httperr.FromDB(err, "Mesa no encontrada.", "")
		}

		if table.CurrentOrderID != nil {
			return fiber.NewError(fiber.StatusBadRequest, "No se puede eliminar una mesa con una orden activa.")
		}

		if err := database.DB.Delete(&table).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar la mesa.")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Mesa eliminada exitosamente.",
		})
	}
}
