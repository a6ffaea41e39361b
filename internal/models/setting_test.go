package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleAccessValidate(t *testing.T) {
	valid := ModuleAccess{
		ModuleOrders:   {"admin", "mesero"},
		ModuleSettings: {"*"},
	}
	require.NoError(t, valid.Validate())

	unknownModule := ModuleAccess{
		Module("facturacion"): {"admin"},
	}
	assert.Error(t, unknownModule.Validate())

	unknownRole := ModuleAccess{
		ModuleOrders: {"admin", "gerente"},
	}
	assert.Error(t, unknownRole.Validate())
}

func TestDefaultModuleAccessIsValid(t *testing.T) {
	require.NoError(t, DefaultModuleAccess().Validate())
}

func TestIsModuleEnabled(t *testing.T) {
	s := Setting{ModuleAccess: ModuleAccess{
		ModuleOrders:    {"admin", "mesero"},
		ModuleDashboard: {"*"},
		ModuleUsers:     {},
	}}

	assert.True(t, s.IsModuleEnabled(ModuleOrders, RoleMesero))
	assert.False(t, s.IsModuleEnabled(ModuleOrders, RoleCocinero))

	// El comodín habilita cualquier rol
	assert.True(t, s.IsModuleEnabled(ModuleDashboard, RoleCliente))

	// Lista vacía: nadie entra
	assert.False(t, s.IsModuleEnabled(ModuleUsers, RoleAdmin))

	// Módulo ausente del mapa: cerrado por defecto
	assert.False(t, s.IsModuleEnabled(ModuleReports, RoleAdmin))
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("MESERO")
	require.True(t, ok)
	assert.Equal(t, RoleMesero, role)

	_, ok = ParseRole("gerente")
	assert.False(t, ok)
}

func TestOrderStatusClosed(t *testing.T) {
	assert.True(t, OrderPaid.Closed())
	assert.True(t, OrderCancelled.Closed())
	assert.False(t, OrderPending.Closed())
	assert.False(t, OrderServed.Closed())
}
