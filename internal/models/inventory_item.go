package models

import "time"

type InventoryItem struct {
	ID         uint    `gorm:"primaryKey"`
	ItemName   string  `gorm:"size:100;not null;uniqueIndex"`
	Quantity   float64 `gorm:"not null"`
	MinStock   float64 `gorm:"not null"`
	Unit       Unit    `gorm:"size:10;not null;default:unidades"`
	SupplierID *uint   `gorm:"index"`
	Supplier   *Supplier
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LowStock indica si el ítem está por debajo de su stock mínimo
func (i InventoryItem) LowStock() bool {
	return i.Quantity < i.MinStock
}
