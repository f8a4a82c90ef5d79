package policy

import (
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk-api/internal/models"
)

// VisibleTasks returns a GORM scope restricting a task query to what the
// actor may see. Admins see everything; managers see tasks they created,
// tasks assigned to them and every task whose current assignee is staff;
// staff see only tasks they created or are assigned.
func VisibleTasks(actor models.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch actor.Role {
		case models.RoleAdmin:
			return db
		case models.RoleManager:
			staffIDs := db.Session(&gorm.Session{NewDB: true}).
				Model(&models.User{}).
				Select("id").
				Where("role = ?", models.RoleStaff)
			return db.Where(
				"created_by_id = ? OR assigned_to_id = ? OR assigned_to_id IN (?)",
				actor.ID, actor.ID, staffIDs,
			)
		case models.RoleStaff:
			return db.Where("created_by_id = ? OR assigned_to_id = ?", actor.ID, actor.ID)
		default:
			// Unknown roles see nothing.
			return db.Where("1 = 0")
		}
	}
}

// TaskVisible is the in-memory counterpart of VisibleTasks, used where the
// task (with its assignee loaded) is already in hand. It matches CanViewTask
// exactly; listing and single-record access agree on what an actor may see.
func TaskVisible(actor models.User, task models.Task) bool {
	return CanViewTask(actor, task)
}
