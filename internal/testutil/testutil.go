// Package testutil arma el entorno que los handlers esperan: una base SQLite
// en memoria detrás de database.DB y un Redis embebido detrás de database.RDB.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sistemarest-backend/internal/auth"
	"sistemarest-backend/internal/config"
	"sistemarest-backend/internal/database"
	"sistemarest-backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const JWTSecret = "clave-de-prueba-suficientemente-larga-0123456789"

// Config devuelve una configuración mínima para pruebas.
func Config() *config.Config {
	return &config.Config{
		JWTSecret:             JWTSecret,
		AccessTokenTTLMinutes: 15,
		RefreshTokenTTLDays:   7,
	}
}

// SetupDB apunta database.DB a una SQLite en memoria ya migrada.
// Cada prueba recibe una base limpia.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("no se pudo abrir SQLite en memoria: %v", err)
	}

	// Una sola conexión: cada conexión nueva a :memory: sería otra base vacía.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("no se pudo obtener la conexión: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	database.Migrate(db)

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		database.DB = prev
	})
	return db
}

// SetupRedis apunta database.RDB a un miniredis embebido.
func SetupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	prev := database.RDB
	database.RDB = client
	t.Cleanup(func() {
		client.Close()
		database.RDB = prev
	})
	return mr
}

// NewApp crea una app Fiber con el mismo ErrorHandler del servidor, para que
// los fiber.NewError de los handlers lleguen como {success:false, message}.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"success": false,
					"message": e.Message,
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Error inesperado del servidor",
			})
		},
	})
}

// CreateUser inserta un usuario con contraseña "secreto123".
func CreateUser(t *testing.T, name, email string, role models.UserRole) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatalf("no se pudo crear el usuario de prueba: %v", err)
	}
	return user
}

// TokenFor abre una sesión en Redis y devuelve un access token válido.
func TokenFor(t *testing.T, user models.User) string {
	t.Helper()

	sessionID, _, err := auth.StartSession(context.Background(), user.ID, 24*time.Hour)
	if err != nil {
		t.Fatalf("no se pudo abrir la sesión: %v", err)
	}
	token, err := auth.GenerateToken(JWTSecret, &user, sessionID, 15*time.Minute)
	if err != nil {
		t.Fatalf("no se pudo firmar el token: %v", err)
	}
	return token
}

// DoJSON ejecuta una petición contra la app con cuerpo JSON opcional.
func DoJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("no se pudo serializar el cuerpo: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

// DecodeBody deserializa la respuesta JSON en un mapa genérico.
func DecodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("no se pudo decodificar la respuesta: %v", err)
	}
	return out
}
