package identity

// Role is the closed set of user roles. Authorization is derived from the
// role's permission set, never from matching role names as strings.
type Role string

const (
	RolePlatformAdmin Role = "PLATFORM_ADMIN"
	RoleOrgAdmin      Role = "ORG_ADMIN"
	RoleBranchManager Role = "BRANCH_MANAGER"
	RoleStaff         Role = "STAFF"
)

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RolePlatformAdmin, RoleOrgAdmin, RoleBranchManager, RoleStaff:
		return true
	}
	return false
}

// Permission is the closed set of capabilities a role can grant
type Permission string

const (
	PermCatalogRead      Permission = "catalog:read"
	PermCatalogWrite     Permission = "catalog:write"
	PermPurchaseRead     Permission = "purchase:read"
	PermPurchaseWrite    Permission = "purchase:write"
	PermPurchaseReceive  Permission = "purchase:receive"
	PermOrderRead        Permission = "order:read"
	PermOrderWrite       Permission = "order:write"
	PermReturnRead       Permission = "return:read"
	PermReturnWrite      Permission = "return:write"
	PermReturnApprove    Permission = "return:approve"
	PermInventoryRead    Permission = "inventory:read"
	PermInventoryAdjust  Permission = "inventory:adjust"
	PermReportRead       Permission = "report:read"
	PermDocumentRead     Permission = "document:read"
	PermUserManage       Permission = "user:manage"
	PermOrgManage        Permission = "org:manage"
	PermBranchManage     Permission = "branch:manage"
)

var staffPermissions = permSet(
	PermCatalogRead,
	PermPurchaseRead,
	PermOrderRead, PermOrderWrite,
	PermReturnRead, PermReturnWrite,
	PermInventoryRead,
	PermDocumentRead,
)

var branchManagerPermissions = merge(staffPermissions, permSet(
	PermCatalogWrite,
	PermPurchaseWrite, PermPurchaseReceive,
	PermReturnApprove,
	PermInventoryAdjust,
	PermReportRead,
))

var orgAdminPermissions = merge(branchManagerPermissions, permSet(
	PermUserManage,
	PermBranchManage,
))

var platformAdminPermissions = merge(orgAdminPermissions, permSet(
	PermOrgManage,
))

var rolePermissions = map[Role]map[Permission]struct{}{
	RolePlatformAdmin: platformAdminPermissions,
	RoleOrgAdmin:      orgAdminPermissions,
	RoleBranchManager: branchManagerPermissions,
	RoleStaff:         staffPermissions,
}

// RoleHasPermission reports whether the role grants the permission
func RoleHasPermission(role Role, perm Permission) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = perms[perm]
	return ok
}

// PermissionsForRole returns the permissions granted by a role, sorted set semantics
func PermissionsForRole(role Role) []Permission {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]Permission, 0, len(perms))
	for p := range perms {
		out = append(out, p)
	}
	return out
}

func permSet(perms ...Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

func merge(sets ...map[Permission]struct{}) map[Permission]struct{} {
	out := make(map[Permission]struct{})
	for _, s := range sets {
		for p := range s {
			out[p] = struct{}{}
		}
	}
	return out
}
