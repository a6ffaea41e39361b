package auth

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"sistemarest-backend/internal/database"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Claves en Redis:
//   session:<userID>  -> id de la sesión activa (una por usuario)
//   refresh:<token>   -> "<userID>:<sessionID>" (un solo uso, rotado en cada refresh)

func sessionKey(userID uint) string {
	return fmt.Sprintf("session:%d", userID)
}

func refreshKey(token string) string {
	return "refresh:" + token
}

// StartSession crea la sesión del usuario y su refresh token inicial.
// Reemplaza cualquier sesión anterior: los tokens viejos dejan de valer.
func StartSession(ctx context.Context, userID uint, refreshTTL time.Duration) (sessionID, refreshToken string, err error) {
	sessionID = uuid.NewString()
	refreshToken = uuid.NewString()

	if err = database.RDB.Set(ctx, sessionKey(userID), sessionID, refreshTTL).Err(); err != nil {
		return "", "", err
	}
	value := fmt.Sprintf("%d:%s", userID, sessionID)
	if err = database.RDB.Set(ctx, refreshKey(refreshToken), value, refreshTTL).Err(); err != nil {
		return "", "", err
	}
	return sessionID, refreshToken, nil
}

// SessionActive verifica que la sesión del token siga siendo la vigente.
func SessionActive(ctx context.Context, userID uint, sessionID string) bool {
	current, err := database.RDB.Get(ctx, sessionKey(userID)).Result()
	if err != nil {
		return false
	}
	return current == sessionID
}

// RotateRefreshToken consume el refresh token (un solo uso) y emite uno nuevo
// para la misma sesión. Devuelve error si el token no existe o la sesión cambió.
func RotateRefreshToken(ctx context.Context, token string, refreshTTL time.Duration) (userID uint, sessionID, newToken string, err error) {
	value, err := database.RDB.Get(ctx, refreshKey(token)).Result()
	if err == redis.Nil {
		return 0, "", "", fmt.Errorf("refresh token desconocido")
	}
	if err != nil {
		return 0, "", "", err
	}
	database.RDB.Del(ctx, refreshKey(token))

	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, "", "", fmt.Errorf("refresh token corrupto")
	}
	id64, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return 0, "", "", fmt.Errorf("refresh token corrupto")
	}
	userID = uint(id64)
	sessionID = parts[1]

	if !SessionActive(ctx, userID, sessionID) {
		return 0, "", "", fmt.Errorf("la sesión ya no está activa")
	}

	newToken = uuid.NewString()
	if err = database.RDB.Set(ctx, refreshKey(newToken), value, refreshTTL).Err(); err != nil {
		return 0, "", "", err
	}
	return userID, sessionID, newToken, nil
}

// EndSession cierra la sesión del usuario e invalida el refresh token recibido.
func EndSession(ctx context.Context, userID uint, refreshToken string) {
	database.RDB.Del(ctx, sessionKey(userID))
	if refreshToken != "" {
		database.RDB.Del(ctx, refreshKey(refreshToken))
	}
}
