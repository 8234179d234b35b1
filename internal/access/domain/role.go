package domain

import (
	"fmt"
	"strings"
)

// Role is the closed set of access levels an account can hold.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleScrumMaster Role = "scrum_master"
	RoleMember      Role = "member"
)

// Roles lists every role from most to least privileged.
var Roles = []Role{RoleAdmin, RoleScrumMaster, RoleMember}

// ParseRole accepts a role name in any case.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleScrumMaster, RoleMember:
		return true
	}
	return false
}

// Rank orders roles; higher is more privileged. Unknown roles rank 0.
func (r Role) Rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleScrumMaster:
		return 2
	case RoleMember:
		return 1
	}
	return 0
}

// CanIssueInvitations reports whether the role may invite new people at all.
func (r Role) CanIssueInvitations() bool {
	return r == RoleAdmin || r == RoleScrumMaster
}

// CanGrant reports whether an issuer holding r may invite someone into target.
// Nobody can hand out a role above their own.
func (r Role) CanGrant(target Role) bool {
	return r.CanIssueInvitations() && target.Valid() && target.Rank() <= r.Rank()
}

// CanManageAccounts is the role-change and account-admin permission.
func (r Role) CanManageAccounts() bool {
	return r == RoleAdmin
}

func (r Role) String() string { return string(r) }
