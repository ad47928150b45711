package models

// Role is the forum role stored on every user row.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleAuthor    Role = "author"
)

// DefaultRole is assigned to users created through registration.
const DefaultRole = RoleAuthor

// AllRoles returns every role known to the forum.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleModerator, RoleAuthor}
}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Permission is the capability set derived from a role. It is never persisted.
type Permission struct {
	EditPost    bool
	DeletePost  bool
	EditTopic   bool
	DeleteTopic bool
	EditUser    bool
	DeleteUser  bool
}

var rolePermissions = map[Role]Permission{
	RoleAdmin: {
		EditPost: true, DeletePost: true,
		EditTopic: true, DeleteTopic: true,
		EditUser: true, DeleteUser: true,
	},
	RoleModerator: {
		EditPost: true, DeletePost: true,
		EditTopic: true, DeleteTopic: true,
	},
	RoleAuthor: {},
}

// PermissionForRole resolves the capability set for role.
// Unknown roles get the zero Permission (every capability false).
func PermissionForRole(role Role) Permission {
	return rolePermissions[role]
}
