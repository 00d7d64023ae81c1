// Package authroles holds the role definitions used by the in-process
// development backend, mirroring the roles seeded on the real server.
package authroles

import (
	"slices"

	domainauth "github.com/Mendozape/PayComMobile/internal/domain/auth"
)

// Catalog maps a role name to the permissions it grants.
type Catalog map[string]domainauth.PermissionList

// Role names seeded on the backend.
const (
	RoleAdmin     = "Admin"
	RoleTreasurer = "Tesorero"
	RoleResident  = "Residente"
)

// Default returns the stock role catalog.
func Default() Catalog {
	return Catalog{
		RoleAdmin: {
			"Ver-usuarios", "Crear-usuarios", "Editar-usuarios", "Eliminar-usuarios",
			"Ver-roles", "Crear-roles", "Editar-roles", "Eliminar-roles",
			"Ver-calles", "Crear-calles", "Editar-calles",
			"Ver-predios", "Crear-predios", "Editar-predios", "Eliminar-predios",
			"Ver-cuotas", "Crear-cuotas", "Editar-cuotas", "Eliminar-cuotas",
			"Ver-gastos", "Crear-gastos", "Editar-gastos", "Eliminar-gastos",
			"Ver-catalogo-gastos", "Crear-catalogo-gastos", "Editar-catalogo-gastos", "Eliminar-catalogo-gastos",
			"Crear-pagos", "Ver-pagos", "Ver-reportes",
		},
		RoleTreasurer: {
			"Ver-predios", "Crear-pagos", "Ver-pagos", "Ver-cuotas", "Ver-gastos", "Crear-gastos", "Ver-reportes",
		},
		RoleResident: {"ver-estado-cuenta"},
	}
}

// Roles builds the Role values for names, in the given order. Unknown names
// produce a role without permissions.
func (c Catalog) Roles(names ...string) []domainauth.Role {
	out := make([]domainauth.Role, 0, len(names))
	for i, name := range names {
		out = append(out, domainauth.Role{
			ID:          domainauth.ID(i + 1),
			Name:        name,
			Permissions: slices.Clone(c[name]),
		})
	}
	return out
}

// Names returns the role names in lexical order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for n := range c {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
