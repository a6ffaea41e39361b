package database

import (
	"context"
	"log"
	"time"

	"sistemarest-backend/internal/config"

	"github.com/go-redis/redis/v8"
)

// Cliente Redis compartido: sesiones y refresh tokens.
var RDB *redis.Client

func InitRedis(cfg *config.Config) {
	RDB = redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := RDB.Ping(ctx).Result(); err != nil {
		log.Fatalf("No se pudo conectar a Redis: %v", err)
	}
	log.Println("Conexión a Redis exitosa.")
}
