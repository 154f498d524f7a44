package constants

// Application roles. Stored as a plain string column on users.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

var ValidRoles = map[string]struct{}{
	RoleMember: {},
	RoleAdmin:  {},
}
