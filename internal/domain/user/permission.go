package user

type Permission string

const (
	// Self Management
	PermissionProfileView Permission = "profile.view_own"

	// Leave Management
	PermissionLeaveViewOwn     Permission = "leave.view_own"
	PermissionLeaveSubmit      Permission = "leave.submit"
	PermissionLeaveCancelOwn   Permission = "leave.cancel_own"
	PermissionLeaveApprove     Permission = "leave.approve"
	PermissionLeaveViewTeam    Permission = "leave.view_team"
	PermissionLeaveManageTypes Permission = "leave.manage_types"

	// User Management
	PermissionTeamView    Permission = "team.view"
	PermissionUserViewAll Permission = "user.view_all"
	PermissionUserManage  Permission = "user.manage"
)

// Scope describes against whom a permission may be exercised.
type Scope int

const (
	// ScopeSelf: the resource owner must be the caller.
	ScopeSelf Scope = iota
	// ScopeTeam: the resource owner must be a direct report of the caller;
	// hr is unrestricted.
	ScopeTeam
	// ScopeOrg: hr only.
	ScopeOrg
)

var permissionScopes = map[Permission]Scope{
	PermissionProfileView:      ScopeSelf,
	PermissionLeaveViewOwn:     ScopeSelf,
	PermissionLeaveSubmit:      ScopeSelf,
	PermissionLeaveCancelOwn:   ScopeSelf,
	PermissionLeaveApprove:     ScopeTeam,
	PermissionLeaveViewTeam:    ScopeTeam,
	PermissionTeamView:         ScopeTeam,
	PermissionLeaveManageTypes: ScopeOrg,
	PermissionUserViewAll:      ScopeOrg,
	PermissionUserManage:       ScopeOrg,
}

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleHR: {
		PermissionProfileView,
		PermissionLeaveViewOwn,
		PermissionLeaveSubmit,
		PermissionLeaveCancelOwn,
		PermissionLeaveApprove,
		PermissionLeaveViewTeam,
		PermissionLeaveManageTypes,
		PermissionTeamView,
		PermissionUserViewAll,
		PermissionUserManage,
	},
	RoleManager: {
		PermissionProfileView,
		PermissionLeaveViewOwn,
		PermissionLeaveSubmit,
		PermissionLeaveCancelOwn,
		PermissionLeaveApprove,
		PermissionLeaveViewTeam,
		PermissionTeamView,
	},
	RoleEmployee: {
		PermissionProfileView,
		PermissionLeaveViewOwn,
		PermissionLeaveSubmit,
		PermissionLeaveCancelOwn,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}

// Authorize is the single authorization decision point. It evaluates whether
// caller may exercise permission against a resource owned by ownerID whose
// direct manager is ownerManagerID (nil when the owner has none).
//
// An authorization failure is always ErrForbidden; authentication failures
// are handled earlier, at the token layer.
func Authorize(caller Actor, ownerID string, ownerManagerID *string, permission Permission) error {
	if !HasPermission(caller.Role, permission) {
		return ErrForbidden
	}

	// hr is unrestricted across all users for every permission it holds.
	if caller.Role == RoleHR {
		return nil
	}

	switch permissionScopes[permission] {
	case ScopeSelf:
		if caller.ID != ownerID {
			return ErrForbidden
		}
	case ScopeTeam:
		if ownerManagerID == nil || *ownerManagerID != caller.ID {
			return ErrForbidden
		}
	case ScopeOrg:
		return ErrForbidden
	}

	return nil
}
