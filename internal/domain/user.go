package domain

// Role is a staff role carried in access tokens.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleViewer  Role = "viewer"
)

// Permission is an action gated by role.
type Permission string

const (
	PermViewAttendees   Permission = "view_attendees"
	PermEditAttendees   Permission = "edit_attendees"
	PermApproveStages   Permission = "approve_stages"
	PermSendEmails      Permission = "send_emails"
	PermManageSettings  Permission = "manage_settings"
	PermImport          Permission = "import"
	PermSyncCRM         Permission = "sync_crm"
	PermDeleteAttendees Permission = "delete_attendees"
)

var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermViewAttendees, PermEditAttendees, PermApproveStages, PermSendEmails,
		PermManageSettings, PermImport, PermSyncCRM, PermDeleteAttendees,
	},
	RoleManager: {
		PermViewAttendees, PermEditAttendees, PermApproveStages, PermSendEmails,
		PermManageSettings, PermImport, PermSyncCRM,
	},
	RoleViewer: {PermViewAttendees},
}

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Email  string
	Roles  []Role
}

// Can reports whether any of the principal's roles grants perm.
func (p *Principal) Can(perm Permission) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		for _, granted := range rolePermissions[r] {
			if granted == perm {
				return true
			}
		}
	}
	return false
}

// TokenVerifier verifies a bearer token and returns the authenticated principal.
type TokenVerifier interface {
	Verify(token string) (*Principal, error)
}
