package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Module string

const (
	ModuleDashboard Module = "dashboard"
	ModuleOrders    Module = "orders"
	ModuleTables    Module = "tables"
	ModuleProducts  Module = "products"
	ModuleInventory Module = "inventory"
	ModuleRecipes   Module = "recipes"
	ModuleSuppliers Module = "suppliers"
	ModuleUsers     Module = "users"
	ModuleReports   Module = "reports"
	ModuleSettings  Module = "settings"
)

// Enumeración cerrada de módulos de la aplicación
var AllModules = []Module{
	ModuleDashboard,
	ModuleOrders,
	ModuleTables,
	ModuleProducts,
	ModuleInventory,
	ModuleRecipes,
	ModuleSuppliers,
	ModuleUsers,
	ModuleReports,
	ModuleSettings,
}

func (m Module) Valid() bool {
	for _, known := range AllModules {
		if m == known {
			return true
		}
	}
	return false
}

// ModuleAccess mapea cada módulo a los roles con acceso. "*" habilita todos.
// Se persiste como jsonb.
type ModuleAccess map[Module][]string

func (a ModuleAccess) Value() (driver.Value, error) {
	if a == nil {
		return "null", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *ModuleAccess) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	}
	return fmt.Errorf("tipo inesperado para ModuleAccess: %T", src)
}

// Validate rechaza módulos fuera de la enumeración y roles desconocidos.
// El comodín "*" es válido como rol.
func (a ModuleAccess) Validate() error {
	for module, roles := range a {
		if !module.Valid() {
			return fmt.Errorf("módulo desconocido: %q", module)
		}
		for _, role := range roles {
			if role == "*" {
				continue
			}
			if _, ok := ParseRole(role); !ok {
				return fmt.Errorf("rol desconocido %q en módulo %q", role, module)
			}
		}
	}
	return nil
}

func DefaultModuleAccess() ModuleAccess {
	return ModuleAccess{
		ModuleDashboard: {"admin", "supervisor", "mesero", "cocinero"},
		ModuleOrders:    {"admin", "supervisor", "mesero"},
		ModuleTables:    {"admin", "supervisor", "mesero"},
		ModuleProducts:  {"admin", "supervisor"},
		ModuleInventory: {"admin", "supervisor"},
		ModuleRecipes:   {"admin", "supervisor", "cocinero"},
		ModuleSuppliers: {"admin", "supervisor"},
		ModuleUsers:     {"admin"},
		ModuleReports:   {"admin", "supervisor"},
		ModuleSettings:  {"admin"},
	}
}

// Configuración global del sistema. Un solo registro, creado con valores por
// defecto en la primera lectura.
type Setting struct {
	ID                 uint         `gorm:"primaryKey"`
	RestaurantName     string       `gorm:"size:100;not null;default:Mi Restaurante"`
	Currency           string       `gorm:"size:5;not null;default:$"`
	TaxRate            float64      `gorm:"not null;default:0"`
	UseInventoryModule bool         `gorm:"not null;default:false"`
	UseRecipeModule    bool         `gorm:"not null;default:false"`
	ModuleAccess       ModuleAccess `gorm:"type:jsonb"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsModuleEnabled indica si el rol tiene acceso al módulo según moduleAccess.
func (s Setting) IsModuleEnabled(module Module, role UserRole) bool {
	roles, ok := s.ModuleAccess[module]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == "*" || strings.EqualFold(r, string(role)) {
			return true
		}
	}
	return false
}
