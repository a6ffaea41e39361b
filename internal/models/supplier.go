package models

import "time"

type PaymentTerms string

const (
	PaymentTermsContado PaymentTerms = "contado"
	PaymentTerms15Dias  PaymentTerms = "15 días"
	PaymentTerms30Dias  PaymentTerms = "30 días"
)

func (p PaymentTerms) Valid() bool {
	switch p {
	case PaymentTermsContado, PaymentTerms15Dias, PaymentTerms30Dias:
		return true
	}
	return false
}

type Supplier struct {
	ID           uint         `gorm:"primaryKey"`
	Name         string       `gorm:"size:100;not null;uniqueIndex"`
	ContactEmail string       `gorm:"size:100"`
	ContactPhone string       `gorm:"size:50"`
	Street       string       `gorm:"size:100"`
	City         string       `gorm:"size:50"`
	State        string       `gorm:"size:50"`
	ZipCode      string       `gorm:"size:20"`
	PaymentTerms PaymentTerms `gorm:"size:20"`
	IsActive     bool         `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Ítems de inventario que surte este proveedor
	SuppliedItems []InventoryItem `gorm:"foreignKey:SupplierID"`
}
