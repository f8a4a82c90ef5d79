// Package policy centralises every role-based authorization decision. The
// functions are pure predicates over already-loaded records; callers surface
// a denial as an access-denied failure distinguishable from not-found.
package policy

import "github.com/taskdesk/taskdesk-api/internal/models"

// CanViewAnyTasks reports whether the actor may list tasks at all. Every
// authenticated active user may; row-level filtering happens in VisibleTasks.
func CanViewAnyTasks(actor models.User) bool {
	return true
}

// CanViewTask decides single-task visibility. The task's AssignedTo relation
// must be loaded when AssignedToID is set, the manager rule depends on the
// assignee's role.
func CanViewTask(actor models.User, task models.Task) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return task.CreatedByID == actor.ID ||
			assignedTo(task, actor.ID) ||
			assigneeIsStaff(task)
	case models.RoleStaff:
		return task.CreatedByID == actor.ID || assignedTo(task, actor.ID)
	}
	return false
}

// CanCreateTask reports whether the actor may create tasks. All roles can;
// assignment constraints are enforced by the task lifecycle rules.
func CanCreateTask(actor models.User) bool {
	return true
}

// CanUpdateTask mirrors CanViewTask: whoever can see a task through the
// role rules can edit it.
func CanUpdateTask(actor models.User, task models.Task) bool {
	return CanViewTask(actor, task)
}

// CanDeleteTask allows admins unconditionally and otherwise only the creator.
func CanDeleteTask(actor models.User, task models.Task) bool {
	if actor.IsAdmin() {
		return true
	}
	return task.CreatedByID == actor.ID
}

// CanViewAnyUsers gates the user listing: admin and manager only.
func CanViewAnyUsers(actor models.User) bool {
	return actor.IsAdmin() || actor.IsManager()
}

// CanViewUser gates user detail: admin and manager only.
func CanViewUser(actor models.User, target models.User) bool {
	return actor.IsAdmin() || actor.IsManager()
}

// CanCreateUser is admin only.
func CanCreateUser(actor models.User) bool {
	return actor.IsAdmin()
}

// CanUpdateUser: admin always; manager for staff targets or themselves;
// staff only themselves.
func CanUpdateUser(actor models.User, target models.User) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return target.IsStaff() || target.ID == actor.ID
	case models.RoleStaff:
		return target.ID == actor.ID
	}
	return false
}

// CanDeleteUser is admin only. Self-deletion is forbidden for everyone and is
// checked by the user service after this rule passes.
func CanDeleteUser(actor models.User, target models.User) bool {
	return actor.IsAdmin()
}

// CanViewLogs gates the activity log listing: admin only.
func CanViewLogs(actor models.User) bool {
	return actor.IsAdmin()
}

func assignedTo(task models.Task, userID uint) bool {
	return task.AssignedToID != nil && *task.AssignedToID == userID
}

func assigneeIsStaff(task models.Task) bool {
	return task.AssignedTo != nil && task.AssignedTo.IsStaff()
}
