package auth

import (
	"fmt"
	"strings"

	"sistemarest-backend/internal/config"
	"sistemarest-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CtxUserIDKey    = "user_id"
	CtxUserRoleKey  = "user_role"
	CtxUserEmailKey = "user_email"
	CtxSessionIDKey = "session_id"
)

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Acceso denegado. Token no proporcionado.")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "El formato de Authorization debe ser 'Bearer <token>'.")
		}

		token, err := jwt.ParseWithClaims(parts[1], &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("método de firma inválido")
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Token inválido o expirado.")
		}

		claims, ok := token.Claims.(*JWTCustomClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "No se pudo decodificar el token.")
		}

		// Una sola sesión activa por usuario: un token de una sesión cerrada o
		// reemplazada deja de servir aunque no haya expirado.
		if !SessionActive(c.Context(), claims.UserID, claims.SessionID) {
			return fiber.NewError(fiber.StatusUnauthorized, "Sesión cerrada o reemplazada. Inicie sesión nuevamente.")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUserRoleKey, claims.Role)
		c.Locals(CtxUserEmailKey, claims.Email)
		c.Locals(CtxSessionIDKey, claims.SessionID)

		return c.Next()
	}
}

// RequireRole permite el paso solo a los roles indicados. La comparación no
// distingue mayúsculas; la política vive aquí y no en cada controlador.
func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roleVal := c.Locals(CtxUserRoleKey)
		role, ok := roleVal.(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "No se pudo obtener el rol del usuario.")
		}

		for _, r := range allowedRoles {
			if strings.EqualFold(string(r), string(role)) {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden,
			fmt.Sprintf("Acceso denegado. Tu rol ('%s') no tiene permiso para esta acción.", role))
	}
}

// CurrentUserID lee el id del usuario autenticado del contexto.
func CurrentUserID(c *fiber.Ctx) (uint, error) {
	id, ok := c.Locals(CtxUserIDKey).(uint)
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Usuario no autenticado.")
	}
	return id, nil
}

// CurrentUserRole lee el rol del usuario autenticado del contexto.
func CurrentUserRole(c *fiber.Ctx) (models.UserRole, error) {
	role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
	if !ok {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Usuario no autenticado.")
	}
	return role, nil
}
