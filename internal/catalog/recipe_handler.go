package catalog

import (
	"fmt"
	"strings"

	"sistemarest-backend/internal/database"
	"sistemarest-backend/internal/httperr"
	"sistemarest-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RecipeIngredientInput struct {
	Item           uint    `json:"item"`
	QuantityNeeded float64 `json:"quantityNeeded"`
	Unit           string  `json:"unit"`
}

type CreateRecipeRequest struct {
	DishName       string                  `json:"dishName"`
	Description    string                  `json:"description"`
	Category       string                  `json:"category"`
	CostPerServing float64                 `json:"costPerServing"`
	Instructions   string                  `json:"instructions"`
	Ingredients    []RecipeIngredientInput `json:"ingredients"`
}

type RecipeIngredientResponse struct {
	Item           uint    `json:"item"`
	ItemName       string  `json:"itemName"`
	QuantityNeeded float64 `json:"quantityNeeded"`
	Unit           string  `json:"unit"`
}

type RecipeResponse struct {
	ID             uint                       `json:"id"`
	DishName       string                     `json:"dishName"`
	Description    string                     `json:"description,omitempty"`
	Category       string                     `json:"category"`
	CostPerServing float64                    `json:"costPerServing"`
	Instructions   string                     `json:"instructions,omitempty"`
	Ingredients    []RecipeIngredientResponse `json:"ingredients"`
	CreatedAt      string                     `json:"createdAt"`
}

func recipeResponse(r models.Recipe) RecipeResponse {
	res := RecipeResponse{
		ID:             r.ID,
		DishName:       r.DishName,
		Description:    r.Description,
		Category:       string(r.Category),
		CostPerServing: r.CostPerServing,
		Instructions:   r.Instructions,
		CreatedAt:      r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	res.Ingredients = make([]RecipeIngredientResponse, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		res.Ingredients = append(res.Ingredients, RecipeIngredientResponse{
			Item:           ing.InventoryItemID,
			ItemName:       ing.InventoryItem.ItemName,
			QuantityNeeded: ing.QuantityNeeded,
			Unit:           string(ing.Unit),
		})
	}
	return res
}

// Valida los ingredientes y los convierte a filas del modelo. Cada ingrediente
// debe apuntar a un ítem de inventario existente.
func buildIngredients(db *gorm.DB, inputs []RecipeIngredientInput) ([]models.RecipeIngredient, error) {
	rows := make([]models.RecipeIngredient, 0, len(inputs))
	for _, in := range inputs {
		if in.QuantityNeeded < 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, "La cantidad necesaria no puede ser negativa.")
		}
		unit := models.Unit(in.Unit)
		if !unit.Valid() {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Unidad inválida. Valores permitidos: kg, g, l, ml, unidades.")
		}
		var item models.InventoryItem
		if err := db.First(&item, in.Item).Error; err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("El ingrediente de inventario con ID %d no existe.", in.Item))
		}
		rows = append(rows, models.RecipeIngredient{
			InventoryItemID: item.ID,
			QuantityNeeded:  in.QuantityNeeded,
			Unit:            unit,
		})
	}
	return rows, nil
}

// POST /api/recipes
func CreateRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRecipeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido.")
		}

		body.DishName = strings.TrimSpace(body.DishName)
		if body.DishName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre del plato es requerido.")
		}
		category := models.RecipeCategory(body.Category)
		if !category.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "La categoría del plato es requerida.")
		}
		if body.CostPerServing < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "El costo por porción no puede ser negativo.")
		}

		ingredients, err := buildIngredients(database.DB, body.Ingredients)
		if err != nil {
			return err
		}

		recipe := models.Recipe{
			DishName:       body.DishName,
			Description:    strings.TrimSpace(body.Description),
			Category:       category,
			CostPerServing: body.CostPerServing,
			Instructions:   body.Instructions,
			Ingredients:    ingredients,
		}

		if err := database.DB.Create(&recipe).Error; err != nil {
			return httperr.FromDB(err, "Receta no encontrada.", "Ya existe una receta con ese nombre de plato.")
		}

		if err := database.DB.Preload("Ingredients.InventoryItem").First(&recipe, recipe.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cargar la receta creada.")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"recipe":  recipeResponse(recipe),
		})
	}
}

// GET /api/recipes
func ListRecipesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var recipes []models.Recipe
		if err := database.DB.Preload("Ingredients.InventoryItem").Order("dish_name").
			Find(&recipes).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar las recetas.")
		}

		res := make([]RecipeResponse, 0, len(recipes))
		for _, r := range recipes {
			res = append(res, recipeResponse(r))
		}

		return c.JSON(fiber.Map{
			"success": true,
			"count":   len(res),
			"recipes": res,
		})
	}
}

// GET /api/recipes/:id
func GetRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var recipe models.Recipe
		if err := database.DB.Preload("Ingredients.InventoryItem").First(&recipe, id).Error; err != nil {
			return httperr.FromDB(err, "Receta no encontrada.", "")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"recipe":  recipeResponse(recipe),
		})
	}
}

type UpdateRecipeRequest struct {
	DishName       *string                 `json:"dishName"`
	Description    *string                 `json:"description"`
	Category       *string                 `json:"category"`
	CostPerServing *float64                `json:"costPerServing"`
	Instructions   *string                 `json:"instructions"`
	Ingredients    []RecipeIngredientInput `json:"ingredients"`
}

// PUT /api/recipes/:id
// Los ingredientes se reemplazan en bloque cuando vienen en el cuerpo.
func UpdateRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var body UpdateRecipeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido.")
		}

		var recipe models.Recipe
		if err := database.DB.First(&recipe, id).Error; err != nil {
			return httperr.FromDB(err, "Receta no encontrada.", "")
		}

		if body.DishName != nil {
			name := strings.TrimSpace(*body.DishName)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "El nombre del plato no puede estar vacío.")
			}
			recipe.DishName = name
		}
		if body.Description != nil {
			recipe.Description = strings.TrimSpace(*body.Description)
		}
		if body.Category != nil {
			category := models.RecipeCategory(*body.Category)
			if !category.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "Categoría de plato inválida.")
			}
			recipe.Category = category
		}
		if body.CostPerServing != nil {
			if *body.CostPerServing < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "El costo por porción no puede ser negativo.")
			}
			recipe.CostPerServing = *body.CostPerServing
		}
		if body.Instructions != nil {
			recipe.Instructions = *body.Instructions
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if body.Ingredients != nil {
				ingredients, err := buildIngredients(tx, body.Ingredients)
				if err != nil {
					return err
				}
				if err := tx.Where("recipe_id = ?", recipe.ID).
					Delete(&models.RecipeIngredient{}).Error; err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron actualizar los ingredientes.")
				}
				for i := range ingredients {
					ingredients[i].RecipeID = recipe.ID
				}
				if len(ingredients) > 0 {
					if err := tx.Create(&ingredients).Error; err != nil {
						return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron actualizar los ingredientes.")
					}
				}
			}
			if err := tx.Save(&recipe).Error; err != nil {
				return httperr.FromDB(err, "Receta no encontrada.", "Ya existe una receta con ese nombre de plato.")
			}
			return nil
		})
		if txErr != nil {
			return txErr
		}

		if err := database.DB.Preload("Ingredients.InventoryItem").First(&recipe, recipe.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cargar la receta actualizada.")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Receta actualizada exitosamente.",
			"recipe":  recipeResponse(recipe),
		})
	}
}

// DELETE /api/recipes/:id
// Se rechaza mientras algún producto siga usando la receta.
func DeleteRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httperr.ParseID(c, "id")
		if err != nil {
			return err
		}

		var recipe models.Recipe
		if err := database.DB.First(&recipe, id).Error; err != nil {
			return httperr.FromDB(err, "Receta no encontrada.", "")
		}

		var count int64
		database.DB.Model(&models.Product{}).Where("recipe_id = ?", recipe.ID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("La receta está asociada a %d producto(s); desvincúlalos primero.", count))
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar la receta.")
			}
			if err := tx.Delete(&recipe).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar la receta.")
			}
			return nil
		})
		if txErr != nil {
			return txErr
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Receta eliminada exitosamente.",
		})
	}
}
