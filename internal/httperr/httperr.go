// Mapea los errores de la capa de datos al esquema de códigos HTTP del API:
// clave duplicada -> 409, registro inexistente -> 404, id malformado -> 400.
package httperr

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func FromDB(err error, notFoundMsg, duplicateMsg string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.NewError(fiber.StatusNotFound, notFoundMsg)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fiber.NewError(fiber.StatusConflict, duplicateMsg)
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Error interno del servidor.")
}

// ParseID valida un parámetro de ruta numérico. Un id malformado responde 400,
// nunca 500.
func ParseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "ID inválido: "+raw)
	}
	return uint(id), nil
}
