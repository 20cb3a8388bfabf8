package constants

import "fmt"

const (
	RolePlanner = "planner"
	RoleTeam    = "team"
	RoleAdmin   = "admin"
)

const (
	ErrOnlyPlannersCanAccess = "only planners or admins may access %s"
	ErrOnlyTeamsCanAccess    = "only team accounts may access %s"
)

func RoleErrorPlanner(feature string) string {
	return fmt.Sprintf(ErrOnlyPlannersCanAccess, feature)
}

func RoleErrorTeam(feature string) string {
	return fmt.Sprintf(ErrOnlyTeamsCanAccess, feature)
}

var (
	AllRoles = []string{
		RolePlanner,
		RoleTeam,
		RoleAdmin,
	}

	PlannerAndAbove = []string{
		RolePlanner,
		RoleAdmin,
	}

	TeamOnly = []string{
		RoleTeam,
	}
)

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}
