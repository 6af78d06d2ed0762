// Package access holds the capability table: which role may perform which action.
package access

import (
	"errors"
	"fmt"
	"sort"

	"condocheck/internal/model"
)

// ErrForbidden is returned when a role lacks a capability.
var ErrForbidden = errors.New("forbidden")

// Action is something a user may be allowed to do.
type Action string

const (
	ViewDashboard     Action = "view_dashboard"
	ManageCondos      Action = "manage_condos"
	ManagePortfolio   Action = "manage_portfolio"
	ManageProcurement Action = "manage_procurement"
	ViewReports       Action = "view_reports"
	ListUsers         Action = "list_users"
	ManageUsers       Action = "manage_users"
	ViewTasks         Action = "view_tasks"
	ViewSchedule      Action = "view_schedule"
	UseMessages       Action = "use_messages"
	ManageMessages    Action = "manage_messages"
	ManageTasks       Action = "manage_tasks"
	ManageCategories  Action = "manage_categories"
	ReopenTask        Action = "reopen_task"
	ViewAllTasks      Action = "view_all_tasks"
	AddIncident       Action = "add_incident"
	ResolveIncident   Action = "resolve_incident"
	GenerateReport    Action = "generate_report"
)

type set map[Action]struct{}

func newSet(actions ...Action) set {
	s := make(set, len(actions))
	for _, a := range actions {
		s[a] = struct{}{}
	}
	return s
}

var staff = []Action{ViewDashboard, ViewReports, ViewTasks, ViewSchedule, UseMessages}

var management = []Action{
	ViewDashboard, ManageCondos, ManageProcurement, ViewReports, ListUsers, ManageUsers,
	ViewTasks, ViewSchedule, UseMessages, ManageMessages, ManageTasks, ManageCategories,
	ReopenTask, ViewAllTasks, AddIncident, ResolveIncident, GenerateReport,
}

var table = map[model.Role]set{
	model.RoleSindico:  newSet(append([]Action{ManagePortfolio}, management...)...),
	model.RoleGestor:   newSet(management...),
	model.RoleZelador:  newSet(append([]Action{ListUsers, ManageTasks, ManageCategories, AddIncident}, staff...)...),
	model.RoleLimpeza:  newSet(staff...),
	model.RolePorteiro: newSet(staff...),
}

// Can reports whether role may perform action. Unknown roles can do nothing.
func Can(role model.Role, action Action) bool {
	_, ok := table[role][action]
	return ok
}

// Require returns an error wrapping ErrForbidden when role may not perform action.
func Require(role model.Role, action Action) error {
	if Can(role, action) {
		return nil
	}
	return fmt.Errorf("%s cannot %s: %w", role.Label(), action, ErrForbidden)
}

// Authorize is Require for an actor. The system actor may do everything.
func Authorize(actor model.Actor, action Action) error {
	if actor.System {
		return nil
	}
	return Require(actor.Role, action)
}

// IsManagement reports whether role sees every task of a condominium.
func IsManagement(role model.Role) bool {
	return Can(role, ViewAllTasks)
}

// Actions lists the capabilities of role in a stable order.
func Actions(role model.Role) []Action {
	actions := make([]Action, 0, len(table[role]))
	for a := range table[role] {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}

// Roles lists every known role.
func Roles() []model.Role {
	return []model.Role{model.RoleSindico, model.RoleGestor, model.RoleZelador, model.RoleLimpeza, model.RolePorteiro}
}
