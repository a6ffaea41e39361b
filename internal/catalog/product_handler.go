package catalog

import (
	"strings"

	"sistemarest-backend/internal/database"
	"sistemarest-backend/internal/httperr"
	"sistemarest-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ProductResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Stock       float64 `json:"stock"`
	StockType   string  `json:"stockType"`
	IsAvailable bool    `json:"isAvailable"`
	RecipeID    *uint   `json:"recipe,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

func productResponse(p models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
		StockType:   string(p.StockType),
		IsAvailable: p.IsAvailable,
		RecipeID:    p.RecipeID,
		CreatedAt:   p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

type CreateProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Category    string   `json:"category"`
	ImageURL    string   `json:"imageUrl"`
	Stock       float64  `json:"stock"`
	StockType   string   `json:"stockType"`
	IsAvailable *bool    `json:"isAvailable"`
	Recipe      *uint    `json:"recipe"`
}

// POST /api/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido.")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre del producto es requerido.")
		}
		if body.Price == nil || *body.Price < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "El precio del producto es requerido y no puede ser negativo.")
		}
		if strings.TrimSpace(body.Category) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "La categoría del producto es requerida.")
		}

		stockType := models.StockTypeNone
		if body.StockType != "" {
			stockType = models.StockType(body.StockType)
			if !stockType.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "Tipo de stock inválido. Valores permitidos: none, direct, recipe.")
			}
		}

		if body.Recipe != nil {
			var recipe models.Recipe
			if err := database.DB.First(&recipe, *body.Recipe).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "La receta indicada no existe.")
			}
		}

		product := models.Product{
			Name:        body.Name,
			Description: strings.TrimSpace(body.Description),
			Price:       *body.Price,
			Category:    strings.TrimSpace(body.Category),
			ImageURL:    body.ImageURL,
			Stock:       body.Stock,
			StockType:   stockType,
			IsAvailable: true,
			RecipeID:    body.Recipe,
		}
		if body.IsAvailable != nil {
			product.IsAvailable = *body.IsAvailable
		}

		if err := database.DB.Create(&product).Error; err != nil {
			return httperr.FromDB(err, "Producto no encontrado.", "Ya existe un producto con ese nombre.")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"product": productResponse(product),
		})
	}
}

// GET /api/products?category=bebidas&available=true
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Model(&models.Product{}).Order("name")

		if category := c.Query("category"); category != "" {
			q = q.Where("category = ?", category)
		}
		if available := c.Query("available"); available != "" {
			q = q.Where("is_available = ?", available == "true")
		}

		var products []models.Product
		if err := q.Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los productos.")
		}

		res := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			res = append(res, productResponse(p))
		}

		return c.JSON(fiber.Map{
			"success":  true,
			"count":    len(res),
			"products": res,
		})
	}
}

// GET /api/products/:id
func GetProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var product models.Product
		if err := database.DB.First(&product, id).Error; err != nil {
			return httperr.FromDB(err, "Producto no encontrado.", "")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"product": productResponse(product),
		})
	}
}

type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	ImageURL    *string  `json:"imageUrl"`
	Stock       *float64 `json:"stock"`
	StockType   *string  `json:"stockType"`
	IsAvailable *bool    `json:"isAvailable"`
	Recipe      *uint    `json:"recipe"`
}

// PUT /api/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido.")
		}

		var product models.Product
		if err := database.DB.First(&product, id).Error; err != nil {
			return httperr.FromDB(err, "Producto no encontrado.", "")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "El nombre del producto no puede estar vacío.")
			}
			product.Name = name
		}
		if body.Description != nil {
			product.Description = strings.TrimSpace(*body.Description)
		}
		if body.Price != nil {
			if *body.Price < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "El precio no puede ser negativo.")
			}
			product.Price = *body.Price
		}
		if body.Category != nil {
			product.Category = strings.TrimSpace(*body.Category)
		}
		if body.ImageURL != nil {
			product.ImageURL = *body.ImageURL
		}
		if body.Stock != nil {
			if *body.Stock < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "El stock no puede ser negativo.")
			}
			product.Stock = *body.Stock
		}
		if body.StockType != nil {
			st := models.StockType(*body.StockType)
			if !st.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "Tipo de stock inválido.")
			}
			product.StockType = st
		}
		if body.IsAvailable != nil {
			product.IsAvailable = *body.IsAvailable
		}
		if body.Recipe != nil {
			if *body.Recipe == 0 {
				product.RecipeID = nil
			} else {
				var recipe models.Recipe
				if err := database.DB.First(&recipe, *body.Recipe).Error; err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "La receta indicada no existe.")
				}
				product.RecipeID = body.Recipe
			}
		}

		if err := database.DB.Save(&product).Error; err != nil {
			return httperr.FromDB(err, "Producto no encontrado.", "Ya existe un producto con ese nombre.")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Producto actualizado exitosamente.",
			"product": productResponse(product),
		})
	}
}

type AvailabilityRequest struct {
	IsAvailable *bool `json:"isAvailable"`
}

// PATCH /api/products/:id/availability
func UpdateProductAvailabilityHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var body AvailabilityRequest
		if err := c.BodyParser(&body); err != nil || body.IsAvailable == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Se requiere el campo isAvailable.")
		}

		var product models.Product
		if err := database.DB.First(&product, id).Error; err != nil {
			return httperr.FromDB(err, "Producto no encontrado.", "")
		}

		product.IsAvailable = *body.IsAvailable
		if err := database.DB.Save(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar la disponibilidad.")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"product": productResponse(product),
		})
	}
}

// DELETE /api/products/:id
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var product models.Product
		if err := database.DB.First(&product, id).Error; err != nil {
			return httperr.FromDB(err, "Producto no encontrado.", "")
		}

		if err := database.DB.Delete(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar el producto.")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Producto eliminado exitosamente.",
		})
	}
}
