package model

// Member is a registered club member as stored in the `members` table.
// Permissions are resolved through the member's role within their club.
//
// Fields:
//
//	ID     – opaque member identifier (the JWT subject).
//	ClubID – club the member belongs to; permissions are scoped to it.
//	RoleID – foreign key into the roles table.
type Member struct {
	ID     string // members.id
	ClubID string // members.club_id
	RoleID uint64 // members.role_id
}

// Role represents a row in the `roles` table.  A handful of role names are
// treated as administrators and bypass per-permission grants.
type Role struct {
	ID   uint64 // roles.id
	Name string // roles.name
}
