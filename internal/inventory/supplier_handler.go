package inventory

import (
	"fmt"
	"strings"

	"sistemarest-backend/internal/database"
	"sistemarest-backend/internal/httperr"
	"sistemarest-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SupplierContact struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type SupplierAddress struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

type SupplierResponse struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	Contact       SupplierContact `json:"contact"`
	Address       SupplierAddress `json:"address"`
	PaymentTerms  string          `json:"paymentTerms,omitempty"`
	IsActive      bool            `json:"isActive"`
	SuppliedItems []uint          `json:"suppliedItems"`
}

func supplierResponse(s models.Supplier) SupplierResponse {
	res := SupplierResponse{
		ID:   s.ID,
		Name: s.Name,
		Contact: SupplierContact{
			Email: s.ContactEmail,
			Phone: s.ContactPhone,
		},
		Address: SupplierAddress{
			Street:  s.Street,
			City:    s.City,
			State:   s.State,
			ZipCode: s.ZipCode,
		},
		PaymentTerms: string(s.PaymentTerms),
		IsActive:     s.IsActive,
	}
	res.SuppliedItems = make([]uint, 0, len(s.SuppliedItems))
	for _, item := range s.SuppliedItems {
		res.SuppliedItems = append(res.SuppliedItems, item.ID)
	}
	return res
}

type SupplierRequest struct {
	Name         *string          `json:"name"`
	Contact      *SupplierContact `json:"contact"`
	Address      *SupplierAddress `json:"address"`
	PaymentTerms *string          `json:"paymentTerms"`
	IsActive     *bool            `json:"isActive"`
}

func applySupplierRequest(s *models.Supplier, body SupplierRequest) error {
	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre del proveedor es requerido.")
		}
		s.Name = name
	}
	if body.Contact != nil {
		email := strings.TrimSpace(body.Contact.Email)
		if email != "" && !strings.Contains(email, "@") {
			return fiber.NewError(fiber.StatusBadRequest, "Email de contacto inválido.")
		}
		s.ContactEmail = email
		s.ContactPhone = strings.TrimSpace(body.Contact.Phone)
	}
	if body.Address != nil {
		s.Street = body.Address.Street
		s.City = body.Address.City
		s.State = body.Address.State
		s.ZipCode = body.Address.ZipCode
	}
	if body.PaymentTerms != nil && *body.PaymentTerms != "" {
		terms := models.PaymentTerms(*body.PaymentTerms)
		if !terms.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Términos de pago inválidos. Valores permitidos: contado, 15 días, 30 días.")
		}
		s.PaymentTerms = terms
	}
	if body.IsActive != nil {
		s.IsActive = *body.IsActive
	}
	return nil
}

// POST /api/suppliers
func CreateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido.")
		}
		if body.Name == nil || strings.TrimSpace(*body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre del proveedor es requerido.")
		}

		supplier := models.Supplier{IsActive: true}
		if err := applySupplierRequest(&supplier, body); err != nil {
			return err
		}

		if err := database.DB.Create(&supplier).Error; err != nil {
			return httperr.FromDB(err, "Proveedor no encontrado.", "Ya existe un proveedor con ese nombre.")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":  true,
			"supplier": supplierResponse(supplier),
		})
	}
}

// GET /api/suppliers
func ListSuppliersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var suppliers []models.Supplier
		if err := database.DB.Preload("SuppliedItems").Order("name").
			Find(&suppliers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los proveedores.")
		}

		res := make([]SupplierResponse, 0, len(suppliers))
		for _, s := range suppliers {
			res = append(res, supplierResponse(s))
		}

		return c.JSON(fiber.Map{
			"success":   true,
			"count":     len(res),
			"suppliers": res,
		})
	}
}

// GET /api/suppliers/:id
func GetSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var supplier models.Supplier
		if err := database.DB.Preload("SuppliedItems").First(&supplier, id).Error; err != nil {
			return httperr.FromDB(err, "Proveedor no encontrado.", "")
		}

		return c.JSON(fiber.Map{
			"success":  true,
			"supplier": supplierResponse(supplier),
		})
	}
}

// PUT /api/suppliers/:id
func UpdateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var body SupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido.")
		}

		var supplier models.Supplier
		if err := database.DB.First(&supplier, id).Error; err != nil {
			return httperr.FromDB(err, "Proveedor no encontrado.", "")
		}

		if err := applySupplierRequest(&supplier, body); err != nil {
			return err
		}

		if err := database.DB.Save(&supplier).Error; err != nil {
			return httperr.FromDB(err, "Proveedor no encontrado.", "Ya existe un proveedor con ese nombre.")
		}

		return c.JSON(fiber.Map{
			"success":  true,
			"message":  "Proveedor actualizado exitosamente.",
			"supplier": supplierResponse(supplier),
		})
	}
}

// DELETE /api/suppliers/:id
// Se rechaza mientras el inventario tenga ítems del proveedor.
func DeleteSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var supplier models.Supplier
		if err := database.DB.First(&supplier, id).Error; err != nil {
			return httperr.FromDB(err, "Proveedor no encontrado.", "")
		}

		var count int64
		database.DB.Model(&models.InventoryItem{}).Where("supplier_id = ?", supplier.ID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("El proveedor surte %d ítem(s) de inventario; reasígnalos primero.", count))
		}

		if err := database.DB.Delete(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar el proveedor.")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Proveedor eliminado exitosamente.",
		})
	}
}
