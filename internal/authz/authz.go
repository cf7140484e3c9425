// Package authz holds the job permission model. Everything here is pure: role
// resolution against storage lives in the services package.
package authz

import "slices"

// GlobalRole is an organisation wide role carried in the caller's verified token.
type GlobalRole string

const (
	GlobalNone  GlobalRole = ""
	GlobalAdmin GlobalRole = "Admin"
	GlobalPM    GlobalRole = "PM"
)

// Privileged reports whether the global role overrides every job scoped check.
func (g GlobalRole) Privileged() bool {
	return g == GlobalAdmin || g == GlobalPM
}

// AssignmentRole is the role a user holds on a single job.
type AssignmentRole string

const (
	RoleNone             AssignmentRole = ""
	RoleAdmin            AssignmentRole = "Admin"
	RolePM               AssignmentRole = "PM"
	RoleSeniorTechnician AssignmentRole = "SeniorTechnician"
	RoleTechnician       AssignmentRole = "Technician"
	RoleWarehouse        AssignmentRole = "Warehouse"
)

// AssignmentRoles lists the five assignable roles.
var AssignmentRoles = []AssignmentRole{
	RoleAdmin,
	RolePM,
	RoleSeniorTechnician,
	RoleTechnician,
	RoleWarehouse,
}

// Permission names a job scoped capability.
type Permission string

const (
	JobRead           Permission = "JobRead"
	JobWrite          Permission = "JobWrite"
	AssignmentsWrite  Permission = "AssignmentsWrite"
	NotesWrite        Permission = "NotesWrite"
	FilesReadShared   Permission = "FilesReadShared"
	FilesReadInternal Permission = "FilesReadInternal"
	FilesUpload       Permission = "FilesUpload"
	FilesDelete       Permission = "FilesDelete"
	PlugUpWrite       Permission = "PlugUpWrite"
	ActivityLogRead   Permission = "ActivityLogRead"
	AnyJobVisibility  Permission = "AnyJobVisibility"
)

// Permissions lists every permission.
var Permissions = []Permission{
	JobRead,
	JobWrite,
	AssignmentsWrite,
	NotesWrite,
	FilesReadShared,
	FilesReadInternal,
	FilesUpload,
	FilesDelete,
	PlugUpWrite,
	ActivityLogRead,
	AnyJobVisibility,
}

var (
	anyAssigned = AssignmentRoles
	managers    = []AssignmentRole{RoleAdmin, RolePM}
	leads       = []AssignmentRole{RoleAdmin, RolePM, RoleSeniorTechnician}
)

// assignmentGrants maps a permission to the assignment roles granting it.
// AnyJobVisibility is deliberately absent: only a global role grants it.
var assignmentGrants = map[Permission][]AssignmentRole{
	JobRead:           anyAssigned,
	JobWrite:          managers,
	AssignmentsWrite:  managers,
	NotesWrite:        leads,
	FilesReadShared:   anyAssigned,
	FilesReadInternal: leads,
	FilesUpload:       leads,
	FilesDelete:       managers,
	PlugUpWrite:       anyAssigned,
	ActivityLogRead:   leads,
}

// Can decides whether a caller with the given global and assignment roles
// holds perm. It never consults storage.
func Can(global GlobalRole, role AssignmentRole, perm Permission) bool {
	if global.Privileged() {
		return true
	}
	if role == RoleNone {
		return false
	}
	return slices.Contains(assignmentGrants[perm], role)
}

// ParseAssignmentRole narrows a stored role string. Unknown values resolve to
// RoleNone and ok=false.
func ParseAssignmentRole(s string) (AssignmentRole, bool) {
	role := AssignmentRole(s)
	if slices.Contains(AssignmentRoles, role) {
		return role, true
	}
	return RoleNone, false
}

// ParseGlobalRole narrows a claim value to Admin, PM or none.
func ParseGlobalRole(s string) GlobalRole {
	switch GlobalRole(s) {
	case GlobalAdmin:
		return GlobalAdmin
	case GlobalPM:
		return GlobalPM
	}
	return GlobalNone
}

// GlobalRoleFromClaims reads the "role" claim from an untyped claims map.
func GlobalRoleFromClaims(claims map[string]any) GlobalRole {
	if claims == nil {
		return GlobalNone
	}
	s, ok := claims["role"].(string)
	if !ok {
		return GlobalNone
	}
	return ParseGlobalRole(s)
}

// Identity is a verified caller.
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
	GlobalRole  GlobalRole
}
