package database

import (
	"log"

	"sistemarest-backend/internal/config"
	"sistemarest-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	// TranslateError convierte los errores del driver en gorm.ErrDuplicatedKey /
	// gorm.ErrRecordNotFound, que los handlers mapean a 409/404.
	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("No se pudo conectar a la base de datos: %v", err)
	}

	Migrate(DB)

	log.Println("Conexión a la base de datos exitosa. Migración completada.")
}

func Migrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Supplier{},
		&models.InventoryItem{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Product{},
		&models.Table{},
		&models.Order{},
		&models.OrderItem{},
		&models.Setting{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("Error en AutoMigrate: %v", err)
	}
}
