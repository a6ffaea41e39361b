package models

import "time"

type Unit string

const (
	UnitKg       Unit = "kg"
	UnitG        Unit = "g"
	UnitL        Unit = "l"
	UnitMl       Unit = "ml"
	UnitUnidades Unit = "unidades"
)

func (u Unit) Valid() bool {
	switch u {
	case UnitKg, UnitG, UnitL, UnitMl, UnitUnidades:
		return true
	}
	return false
}

type RecipeCategory string

const (
	RecipeCategoryFood       RecipeCategory = "food"
	RecipeCategoryEntrada    RecipeCategory = "entrada"
	RecipeCategoryPostre     RecipeCategory = "postre"
	RecipeCategoryBebida     RecipeCategory = "bebida"
	RecipeCategoryGuarnicion RecipeCategory = "guarnición"
)

func (c RecipeCategory) Valid() bool {
	switch c {
	case RecipeCategoryFood, RecipeCategoryEntrada, RecipeCategoryPostre,
		RecipeCategoryBebida, RecipeCategoryGuarnicion:
		return true
	}
	return false
}

type Recipe struct {
	ID             uint               `gorm:"primaryKey"`
	DishName       string             `gorm:"size:100;not null;uniqueIndex"`
	Description    string             `gorm:"size:255"`
	Category       RecipeCategory     `gorm:"size:20;not null"`
	CostPerServing float64            `gorm:"not null;default:0"`
	Instructions   string             `gorm:"type:text"`
	Ingredients    []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Cantidad de un ítem de inventario necesaria para UNA porción
type RecipeIngredient struct {
	ID              uint `gorm:"primaryKey"`
	RecipeID        uint `gorm:"index;not null"`
	InventoryItemID uint `gorm:"index;not null"`
	InventoryItem   InventoryItem
	QuantityNeeded  float64 `gorm:"not null"`
	Unit            Unit    `gorm:"size:10;not null"`
}
