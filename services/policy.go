package services

import "taskhub/model"

type Action string

const (
	ActionCreate           Action = "create"
	ActionReadList         Action = "read-list"
	ActionUpdateStatus     Action = "update-status"
	ActionDelete           Action = "delete"
	ActionAddAttachment    Action = "add-attachment"
	ActionRemoveAttachment Action = "remove-attachment"
)

// Target is what an action is applied to. For ActionCreate only
// AssigneeRole is consulted; for every other action CreatedBy and
// AssignedTo are.
type Target struct {
	CreatedBy    string
	AssignedTo   string
	AssigneeRole string
}

func TaskTarget(task *model.Task) Target {
	return Target{CreatedBy: task.CreatedBy, AssignedTo: task.AssignedTo}
}

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// Authorize decides whether actor may perform action on target. It has no
// side effects and never fails; authentication is settled before it runs.
func Authorize(actor *model.User, action Action, target Target) Decision {
	switch action {
	case ActionCreate:
		return authorizeCreate(actor, target.AssigneeRole)
	case ActionReadList:
		if CanView(actor, target) {
			return allow()
		}
		return deny("Not authorized to view task")
	case ActionUpdateStatus, ActionDelete, ActionAddAttachment, ActionRemoveAttachment:
		if isParticipant(actor, target) || actor.Role == model.RoleManager {
			return allow()
		}
		return deny(denialReasons[action])
	}
	return deny("Unknown action")
}

var denialReasons = map[Action]string{
	ActionUpdateStatus:     "Not authorized",
	ActionDelete:           "Not authorized to delete task",
	ActionAddAttachment:    "Not authorized to perform action",
	ActionRemoveAttachment: "Not authorized to perform action",
}

// authorizeCreate with an empty assigneeRole only answers whether the actor
// may create tasks at all.
func authorizeCreate(actor *model.User, assigneeRole string) Decision {
	switch actor.Role {
	case model.RoleManager:
		return allow()
	case model.RoleStaff:
		if assigneeRole != "" && assigneeRole != model.RoleStudent {
			return deny("Staff can only assign tasks to students")
		}
		return allow()
	default:
		return deny("Students cannot create tasks")
	}
}

// CanView is the read-list scoping rule: managers see everything, staff see
// tasks they created or were assigned, students see tasks assigned to them.
func CanView(actor *model.User, target Target) bool {
	switch actor.Role {
	case model.RoleManager:
		return true
	case model.RoleStaff:
		return isParticipant(actor, target)
	case model.RoleStudent:
		return target.AssignedTo == actor.UserID
	}
	return false
}

func isParticipant(actor *model.User, target Target) bool {
	return target.AssignedTo == actor.UserID || target.CreatedBy == actor.UserID
}
