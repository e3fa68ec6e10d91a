package auth

import "fmt"

type Role string

const (
	RoleUser      Role = "User"
	RoleDeveloper Role = "Developer"
	RoleDesigner  Role = "Designer"
	RoleManager   Role = "Manager"
	RoleAdmin     Role = "Admin"
)

type Permission string

const (
	PermReadProjects   Permission = "read_projects"
	PermCreateProjects Permission = "create_projects"
	PermUpdateProjects Permission = "update_projects"
	PermDeleteProjects Permission = "delete_projects"

	PermReadTasks   Permission = "read_tasks"
	PermCreateTasks Permission = "create_tasks"
	PermUpdateTasks Permission = "update_tasks"
	PermDeleteTasks Permission = "delete_tasks"

	PermReadUsers   Permission = "read_users"
	PermCreateUsers Permission = "create_users"
	PermUpdateUsers Permission = "update_users"
	PermDeleteUsers Permission = "delete_users"

	PermViewAnalytics  Permission = "view_analytics"
	PermExportData     Permission = "export_data"
	PermManageSettings Permission = "manage_settings"
	PermSystemAdmin    Permission = "system_admin"
)

// rolePermissions is fixed at startup; there are no dynamic grants.
// Admin is handled as a wildcard in HasPermission and deliberately has no
// entry here.
var rolePermissions = map[Role][]Permission{
	RoleUser: {
		PermReadProjects,
		PermCreateProjects,
		PermUpdateProjects,
		PermReadTasks,
		PermCreateTasks,
		PermUpdateTasks,
		PermViewAnalytics,
	},
	// Developer and Designer work inside projects others create.
	RoleDeveloper: {
		PermReadProjects,
		PermReadTasks,
		PermCreateTasks,
		PermUpdateTasks,
		PermViewAnalytics,
	},
	RoleDesigner: {
		PermReadProjects,
		PermReadTasks,
		PermCreateTasks,
		PermUpdateTasks,
		PermViewAnalytics,
	},
	RoleManager: {
		PermReadProjects,
		PermCreateProjects,
		PermUpdateProjects,
		PermDeleteProjects,
		PermReadTasks,
		PermCreateTasks,
		PermUpdateTasks,
		PermDeleteTasks,
		PermReadUsers,
		PermUpdateUsers,
		PermViewAnalytics,
		PermExportData,
	},
}

// Roles lists every assignable role.
var Roles = []Role{RoleUser, RoleDeveloper, RoleDesigner, RoleManager, RoleAdmin}

func init() {
	// Catch a role added to Roles without a permission set (or vice versa)
	// at process start instead of as a silent runtime deny.
	for role := range rolePermissions {
		if !ValidRole(string(role)) {
			panic(fmt.Sprintf("auth: permission set for unknown role %q", role))
		}
	}
	for _, role := range Roles {
		if role == RoleAdmin {
			continue
		}
		if _, ok := rolePermissions[role]; !ok {
			panic(fmt.Sprintf("auth: role %q has no permission set", role))
		}
	}
}

// ValidRole reports whether the string names an assignable role.
func ValidRole(role string) bool {
	for _, r := range Roles {
		if string(r) == role {
			return true
		}
	}
	return false
}

// RolePermissions returns the permission set for a role. The result is a
// copy; the table itself never changes after init.
func RolePermissions(role Role) []Permission {
	if role == RoleAdmin {
		return []Permission{
			PermReadProjects, PermCreateProjects, PermUpdateProjects, PermDeleteProjects,
			PermReadTasks, PermCreateTasks, PermUpdateTasks, PermDeleteTasks,
			PermReadUsers, PermCreateUsers, PermUpdateUsers, PermDeleteUsers,
			PermViewAnalytics, PermExportData, PermManageSettings, PermSystemAdmin,
		}
	}
	perms := rolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether the role grants the permission.
// Admin satisfies every permission.
func HasPermission(role Role, perm Permission) bool {
	if role == RoleAdmin {
		return true
	}
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// RequirePermission returns a PermissionError when the role lacks the
// permission, letting the caller decide how to surface the denial.
func RequirePermission(role Role, perm Permission) error {
	if !HasPermission(role, perm) {
		return &PermissionError{Role: role, Permission: perm}
	}
	return nil
}
