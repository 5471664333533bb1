package rbac

// Role is the coarse identity classification stored on a profile row.
type Role string

const (
	RoleAdmin      Role = "admin"      // full access, bypasses permission checks
	RoleTechnician Role = "technician" // field staff: printers + maintenance
	RoleClient     Role = "client"     // storefront customer
)

// ParseRole maps a raw role string from the profiles table to a Role.
// Unknown strings report false so callers stay fail-closed.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleTechnician, RoleClient:
		return Role(s), true
	}
	return "", false
}

// Permission is an action:resource token (or action:own:resource for
// owner-scoped checks).
type Permission string

const (
	ReadPrinters   Permission = "read:printers"
	CreatePrinters Permission = "create:printers"
	UpdatePrinters Permission = "update:printers"
	DeletePrinters Permission = "delete:printers"

	// assignment/transfer are separate from update: moving a printer
	// between clients is a different operation than editing its catalog
	// fields.
	AssignPrinters   Permission = "assign:printers"
	TransferPrinters Permission = "transfer:printers"

	ReadMaintenance   Permission = "read:maintenance"
	CreateMaintenance Permission = "create:maintenance"
	UpdateMaintenance Permission = "update:maintenance"
	DeleteMaintenance Permission = "delete:maintenance"

	ReadClients   Permission = "read:clients"
	CreateClients Permission = "create:clients"
	UpdateClients Permission = "update:clients"
	DeleteClients Permission = "delete:clients"

	ReadRentals   Permission = "read:rentals"
	CreateRentals Permission = "create:rentals"
	UpdateRentals Permission = "update:rentals"
	DeleteRentals Permission = "delete:rentals"

	ReadToners   Permission = "read:toners"
	CreateToners Permission = "create:toners"
	UpdateToners Permission = "update:toners"
	DeleteToners Permission = "delete:toners"

	ReadWiki      Permission = "read:wiki"
	CreateWiki    Permission = "create:wiki"
	UpdateWiki    Permission = "update:wiki"
	UpdateOwnWiki Permission = "update:own:wiki"
	DeleteWiki    Permission = "delete:wiki"
	ApproveWiki   Permission = "approve:wiki"

	ReadUsers   Permission = "read:users"
	CreateUsers Permission = "create:users"
	UpdateUsers Permission = "update:users"
	DeleteUsers Permission = "delete:users"

	ReadSettings   Permission = "read:settings"
	UpdateSettings Permission = "update:settings"
)

// rolePermissions is the single source of truth for the authorization
// model. The admin entry lists the full closed set even though the
// Authorizer short-circuits admin checks, so PermissionsForRole stays
// truthful for introspection.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		ReadPrinters, CreatePrinters, UpdatePrinters, DeletePrinters,
		AssignPrinters, TransferPrinters,
		ReadMaintenance, CreateMaintenance, UpdateMaintenance, DeleteMaintenance,
		ReadClients, CreateClients, UpdateClients, DeleteClients,
		ReadRentals, CreateRentals, UpdateRentals, DeleteRentals,
		ReadToners, CreateToners, UpdateToners, DeleteToners,
		ReadWiki, CreateWiki, UpdateWiki, UpdateOwnWiki, DeleteWiki, ApproveWiki,
		ReadUsers, CreateUsers, UpdateUsers, DeleteUsers,
		ReadSettings, UpdateSettings,
	},
	RoleTechnician: {
		ReadPrinters, UpdatePrinters,
		ReadMaintenance, CreateMaintenance, UpdateMaintenance,
		ReadClients,
		ReadWiki, CreateWiki, UpdateOwnWiki,
	},
	RoleClient: {
		ReadPrinters,
		ReadWiki,
	},
}

// RoleHasPermission reports whether the role's static set contains the
// permission. Unknown roles and unknown permissions report false; the
// lookup never panics.
func RoleHasPermission(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// PermissionsForRole returns a copy of the role's permission set.
// Returns nil for unknown roles.
func PermissionsForRole(role Role) []Permission {
	perms := rolePermissions[role]
	if perms == nil {
		return nil
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}
