package workflow

import "github.com/linesmerrill/police-case-api/models"

// HasRole reports whether actor holds any of roles. Superusers hold every role.
func HasRole(actor *models.Actor, roles ...models.Role) bool {
	if actor == nil {
		return false
	}
	if actor.Superuser {
		return true
	}
	for _, held := range actor.Roles {
		for _, want := range roles {
			if held == want {
				return true
			}
		}
	}
	return false
}

func requireRole(actor *models.Actor, roles ...models.Role) error {
	if !HasRole(actor, roles...) {
		return forbidden()
	}
	return nil
}

// role sets used by more than one transition
var (
	caseEditors = []models.Role{
		models.RoleOfficer, models.RoleDetective, models.RoleSergeant, models.RoleCaptain,
		models.RoleSupervisor, models.RoleChief, models.RoleAdmin,
	}
	crimeSceneReporters = []models.Role{models.RoleOfficer, models.RoleSupervisor, models.RoleChief, models.RoleAdmin}
	suspectEditors      = []models.Role{models.RoleDetective, models.RoleSupervisor, models.RoleChief, models.RoleAdmin}
	tipOfficers         = []models.Role{models.RoleOfficer, models.RoleSupervisor, models.RoleChief, models.RoleAdmin}
	tipDetectives       = []models.Role{models.RoleDetective, models.RoleSupervisor, models.RoleChief, models.RoleAdmin}
	paymentClerks       = []models.Role{models.RoleSergeant, models.RoleAdmin}
	boardEditors        = []models.Role{
		models.RoleDetective, models.RoleSergeant, models.RoleCaptain,
		models.RoleSupervisor, models.RoleChief, models.RoleAdmin,
	}
)
