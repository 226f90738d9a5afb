package models

// Role is the name of a police or civilian role carried in an actor's token
type Role string

// Roles known to the case workflow
const (
	RoleAdmin      Role = "Admin"
	RoleCadet      Role = "Cadet"
	RoleOfficer    Role = "Officer"
	RoleDetective  Role = "Detective"
	RoleSergeant   Role = "Sergeant"
	RoleCaptain    Role = "Captain"
	RoleChief      Role = "Chief"
	RoleSupervisor Role = "Supervisor"
	RoleJudge      Role = "Judge"
	RoleCitizen    Role = "Citizen"
)

// PoliceRoles are the ranks allowed to read investigation material
var PoliceRoles = []Role{
	RoleAdmin, RoleCadet, RoleOfficer, RoleDetective, RoleSergeant,
	RoleCaptain, RoleChief, RoleSupervisor, RoleJudge,
}

// Actor is the authenticated user performing a request
type Actor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Roles     []Role `json:"roles"`
	Superuser bool   `json:"superuser"`
}

// ParseRole normalizes a role name coming from a token. The legacy "Sergent"
// spelling maps to RoleSergeant.
func ParseRole(s string) Role {
	if s == "Sergent" {
		return RoleSergeant
	}
	return Role(s)
}
