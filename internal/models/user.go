package models

import (
	"strings"
	"time"
)

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleSupervisor UserRole = "supervisor"
	RoleMesero     UserRole = "mesero"
	RoleCocinero   UserRole = "cocinero"
	RoleCajero     UserRole = "cajero"
	RoleCliente    UserRole = "cliente"
)

// Enumeración cerrada de roles del sistema
var AllRoles = []UserRole{
	RoleAdmin,
	RoleSupervisor,
	RoleMesero,
	RoleCocinero,
	RoleCajero,
	RoleCliente,
}

// Roles que pueden tomar órdenes
var StaffRoles = []UserRole{RoleAdmin, RoleSupervisor, RoleMesero}

// ParseRole resuelve un rol sin distinguir mayúsculas. Devuelve false si no
// pertenece a la enumeración.
func ParseRole(s string) (UserRole, bool) {
	r := UserRole(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllRoles {
		if r == known {
			return known, true
		}
	}
	return "", false
}

func (r UserRole) IsStaff() bool {
	for _, s := range StaffRoles {
		if r == s {
			return true
		}
	}
	return false
}

type User struct {
	ID           uint     `gorm:"primaryKey"`
	Name         string   `gorm:"size:100;not null"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	IsActive     bool     `gorm:"not null;default:true"`
	SessionID    string   `gorm:"size:64;index"` // sesión activa (una por usuario)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
