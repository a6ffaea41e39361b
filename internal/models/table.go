package models

import "time"

type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
	TableCleaning  TableStatus = "cleaning"
	TableInactive  TableStatus = "inactive"
)

func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved, TableCleaning, TableInactive:
		return true
	}
	return false
}

type Table struct {
	ID             uint        `gorm:"primaryKey"`
	TableNumber    string      `gorm:"size:20;not null;uniqueIndex"`
	Capacity       int         `gorm:"not null"`
	Status         TableStatus `gorm:"size:15;not null;default:available"`
	CurrentOrderID *uint
	Location       string `gorm:"size:50"` // ej. "terraza", "salón principal"
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
