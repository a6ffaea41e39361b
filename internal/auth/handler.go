package auth

import (
	"strings"
	"time"

	"sistemarest-backend/internal/config"
	"sistemarest-backend/internal/database"
	"sistemarest-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const refreshCookieName = "refresh_token"

type RegisterAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func setRefreshCookie(c *fiber.Ctx, cfg *config.Config, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/api/auth",
		HTTPOnly: true,
		SameSite: "Strict",
		Secure:   !cfg.Development,
		Expires:  time.Now().Add(time.Duration(cfg.RefreshTokenTTLDays) * 24 * time.Hour),
	})
}

func clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/api/auth",
		HTTPOnly: true,
		Expires:  time.Now().Add(-time.Hour),
	})
}

// POST /api/auth/register-admin
// Bootstrap del sistema: solo funciona mientras no exista un administrador.
func RegisterAdminHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido.")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Name == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nombre, email y contraseña son requeridos.")
		}

		var count int64
		database.DB.Model(&models.User{}).
			Where("role = ?", models.RoleAdmin).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "Ya existe un administrador registrado.")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo procesar la contraseña.")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
			IsActive:     true,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear el usuario.")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"user": fiber.Map{
				"id":    user.ID,
				"email": user.Email,
				"role":  user.Role,
			},
		})
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido.")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		var user models.User
		if err := database.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Email o contraseña incorrectos.")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Email o contraseña incorrectos.")
		}
		if !user.IsActive {
			return fiber.NewError(fiber.StatusForbidden, "El usuario está desactivado.")
		}

		refreshTTL := time.Duration(cfg.RefreshTokenTTLDays) * 24 * time.Hour
		sessionID, refreshToken, err := StartSession(c.Context(), user.ID, refreshTTL)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo iniciar la sesión.")
		}

		user.SessionID = sessionID
		database.DB.Model(&user).Update("session_id", sessionID)

		accessTTL := time.Duration(cfg.AccessTokenTTLMinutes) * time.Minute
		token, err := GenerateToken(cfg.JWTSecret, &user, sessionID, accessTTL)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el token.")
		}

		setRefreshCookie(c, cfg, refreshToken)

		return c.JSON(fiber.Map{
			"success": true,
			"token":   token,
			"user": fiber.Map{
				"id":    user.ID,
				"name":  user.Name,
				"email": user.Email,
				"role":  user.Role,
			},
		})
	}
}

// POST /api/auth/refresh
// Consume el refresh token de la cookie httpOnly y emite un par nuevo.
func RefreshHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		oldToken := c.Cookies(refreshCookieName)
		if oldToken == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "No hay refresh token.")
		}

		refreshTTL := time.Duration(cfg.RefreshTokenTTLDays) * 24 * time.Hour
		userID, sessionID, newToken, err := RotateRefreshToken(c.Context(), oldToken, refreshTTL)
		if err != nil {
			clearRefreshCookie(c)
			return fiber.NewError(fiber.StatusUnauthorized, "Refresh token inválido o expirado. Inicie sesión nuevamente.")
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil || !user.IsActive {
			clearRefreshCookie(c)
			return fiber.NewError(fiber.StatusUnauthorized, "Usuario no encontrado o desactivado.")
		}

		accessTTL := time.Duration(cfg.AccessTokenTTLMinutes) * time.Minute
		token, err := GenerateToken(cfg.JWTSecret, &user, sessionID, accessTTL)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el token.")
		}

		setRefreshCookie(c, cfg, newToken)

		return c.JSON(fiber.Map{
			"success": true,
			"token":   token,
		})
	}
}

// POST /api/auth/logout
func LogoutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUserID(c)
		if err != nil {
			return err
		}

		EndSession(c.Context(), userID, c.Cookies(refreshCookieName))
		database.DB.Model(&models.User{}).Where("id = ?", userID).Update("session_id", "")
		clearRefreshCookie(c)

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Sesión cerrada exitosamente.",
		})
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUserID(c)
		if err != nil {
			return err
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Usuario no encontrado en la base de datos.")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"user": fiber.Map{
				"id":    user.ID,
				"name":  user.Name,
				"email": user.Email,
				"role":  user.Role,
			},
		})
	}
}
