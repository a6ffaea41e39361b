package models

import "time"

type StockType string

const (
	StockTypeNone   StockType = "none"   // sin control de stock (platos por receta van aparte)
	StockTypeDirect StockType = "direct" // stock directo en el producto (ej. bebidas embotelladas)
	StockTypeRecipe StockType = "recipe" // descuenta inventario vía receta
)

func (s StockType) Valid() bool {
	switch s {
	case StockTypeNone, StockTypeDirect, StockTypeRecipe:
		return true
	}
	return false
}

type Product struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"size:100;not null;uniqueIndex"`
	Description string    `gorm:"size:255"`
	Price       float64   `gorm:"not null"`
	Category    string    `gorm:"size:50;not null;index"`
	ImageURL    string    `gorm:"size:255"`
	Stock       float64   `gorm:"not null;default:0"`
	StockType   StockType `gorm:"size:10;not null;default:none"`
	IsAvailable bool      `gorm:"not null;default:true"`
	RecipeID    *uint
	Recipe      *Recipe
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
