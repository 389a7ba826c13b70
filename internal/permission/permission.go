// Package permission is the single source of truth for role-based
// authorization. Every mutation path, client-side store and server-side
// service alike, consults these predicates instead of reimplementing them
// inline.
package permission

import "github.com/mtlprog/taskboard/internal/domain"

// A nil user holds no permissions.

// CanCreateTask reports whether the user may create tasks.
func CanCreateTask(user *domain.User) bool {
	return user != nil && user.Role == domain.RoleManager
}

// CanEditTask reports whether the user may edit the given task.
// Managers may edit any task; employees only tasks assigned to them.
func CanEditTask(user *domain.User, task *domain.Task) bool {
	if user == nil {
		return false
	}
	if user.Role == domain.RoleManager {
		return true
	}
	return task.IsAssignedTo(user.ID)
}

// CanDeleteTask reports whether the user may delete tasks.
func CanDeleteTask(user *domain.User) bool {
	return user != nil && user.Role == domain.RoleManager
}

// CanAssignTask reports whether the user may change task assignment.
func CanAssignTask(user *domain.User) bool {
	return user != nil && user.Role == domain.RoleManager
}

// CanViewAllTasks reports whether the user may view every employee's tasks.
func CanViewAllTasks(user *domain.User) bool {
	return user != nil && user.Role == domain.RoleManager
}

// CanResolveEscalation reports whether the user may resolve escalations.
func CanResolveEscalation(user *domain.User) bool {
	return user != nil && user.Role == domain.RoleManager
}
