package settings

import (
	"sistemarest-backend/internal/audit"
	"sistemarest-backend/internal/auth"
	"sistemarest-backend/internal/database"
	"sistemarest-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Get devuelve el único registro de configuración, creándolo con valores por
// defecto en la primera lectura.
func Get(db *gorm.DB) (models.Setting, error) {
	var setting models.Setting
	err := db.First(&setting).Error
	if err == nil {
		if setting.ModuleAccess == nil {
			// Configuraciones viejas sin el campo: completar con los defaults
			setting.ModuleAccess = models.DefaultModuleAccess()
		}
		return setting, nil
	}
	if err != gorm.ErrRecordNotFound {
		return setting, err
	}

	setting = models.Setting{
		RestaurantName:     "Mi Restaurante",
		Currency:           "$",
		TaxRate:            0,
		UseInventoryModule: true,
		UseRecipeModule:    true,
		ModuleAccess:       models.DefaultModuleAccess(),
	}
	if err := db.Create(&setting).Error; err != nil {
		return setting, err
	}
	return setting, nil
}

// RequireModule corta la petición si el rol del usuario no tiene acceso al
// módulo según moduleAccess. Va después de JWTMiddleware.
func RequireModule(module models.Module) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, err := auth.CurrentUserRole(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Sesión inválida.")
		}

		setting, err := Get(database.DB)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Error al obtener la configuración.")
		}
		if !setting.IsModuleEnabled(module, role) {
			return fiber.NewError(fiber.StatusForbidden, "Tu rol no tiene acceso a este módulo.")
		}
		return c.Next()
	}
}

type SettingResponse struct {
	RestaurantName     string              `json:"restaurantName"`
	Currency           string              `json:"currency"`
	TaxRate            float64             `json:"taxRate"`
	UseInventoryModule bool                `json:"useInventoryModule"`
	UseRecipeModule    bool                `json:"useRecipeModule"`
	ModuleAccess       models.ModuleAccess `json:"moduleAccess"`
}

func settingResponse(s models.Setting) SettingResponse {
	return SettingResponse{
		RestaurantName:     s.RestaurantName,
		Currency:           s.Currency,
		TaxRate:            s.TaxRate,
		UseInventoryModule: s.UseInventoryModule,
		UseRecipeModule:    s.UseRecipeModule,
		ModuleAccess:       s.ModuleAccess,
	}
}

// GET /api/settings
func GetSettingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		setting, err := Get(database.DB)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Error al obtener la configuración.")
		}
		return c.JSON(fiber.Map{
			"success":  true,
			"settings": settingResponse(setting),
		})
	}
}

type UpdateSettingsRequest struct {
	RestaurantName     *string             `json:"restaurantName"`
	Currency           *string             `json:"currency"`
	TaxRate            *float64            `json:"taxRate"`
	UseInventoryModule *bool               `json:"useInventoryModule"`
	UseRecipeModule    *bool               `json:"useRecipeModule"`
	ModuleAccess       models.ModuleAccess `json:"moduleAccess"`
}

// PUT /api/settings (solo admin)
func UpdateSettingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateSettingsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido.")
		}

		setting, err := Get(database.DB)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Error al obtener la configuración.")
		}
		before := settingResponse(setting)

		if body.RestaurantName != nil {
			setting.RestaurantName = *body.RestaurantName
		}
		if body.Currency != nil {
			setting.Currency = *body.Currency
		}
		if body.TaxRate != nil {
			if *body.TaxRate < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "La tasa de impuestos no puede ser negativa.")
			}
			setting.TaxRate = *body.TaxRate
		}
		if body.UseInventoryModule != nil {
			setting.UseInventoryModule = *body.UseInventoryModule
		}
		if body.UseRecipeModule != nil {
			setting.UseRecipeModule = *body.UseRecipeModule
		}
		if body.ModuleAccess != nil {
			// El mapa de acceso solo acepta módulos y roles de las enumeraciones
			if err := body.ModuleAccess.Validate(); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			setting.ModuleAccess = body.ModuleAccess
		}

		if err := database.DB.Save(&setting).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar la configuración.")
		}

		userID, _ := auth.CurrentUserID(c)
		audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			EntityType:  "setting",
			EntityID:    setting.ID,
			Action:      models.AuditActionUpdate,
			Description: "Configuración global actualizada",
			Before:      before,
			After:       settingResponse(setting),
		})

		return c.JSON(fiber.Map{
			"success":  true,
			"message":  "Configuración actualizada exitosamente.",
			"settings": settingResponse(setting),
		})
	}
}
