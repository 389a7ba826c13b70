package permission_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mtlprog/taskboard/internal/domain"
	"github.com/mtlprog/taskboard/internal/permission"
)

var (
	manager  = &domain.User{ID: "m1", Role: domain.RoleManager}
	employee = &domain.User{ID: "e1", Role: domain.RoleEmployee}
	other    = &domain.User{ID: "e2", Role: domain.RoleEmployee}
)

func TestManagerOnlyPredicates(t *testing.T) {
	checks := map[string]func(*domain.User) bool{
		"CanCreateTask":        permission.CanCreateTask,
		"CanDeleteTask":        permission.CanDeleteTask,
		"CanAssignTask":        permission.CanAssignTask,
		"CanViewAllTasks":      permission.CanViewAllTasks,
		"CanResolveEscalation": permission.CanResolveEscalation,
	}

	for name, check := range checks {
		t.Run(name, func(t *testing.T) {
			assert.True(t, check(manager))
			assert.False(t, check(employee))
			assert.False(t, check(nil))
		})
	}
}

func TestCanEditTask(t *testing.T) {
	assigned := &domain.Task{ID: "t1", AssignedTo: &employee.ID}
	unassigned := &domain.Task{ID: "t2"}

	t.Run("manager edits any task", func(t *testing.T) {
		assert.True(t, permission.CanEditTask(manager, assigned))
		assert.True(t, permission.CanEditTask(manager, unassigned))
	})

	t.Run("employee edits only own task", func(t *testing.T) {
		assert.True(t, permission.CanEditTask(employee, assigned))
		assert.False(t, permission.CanEditTask(other, assigned))
		assert.False(t, permission.CanEditTask(employee, unassigned))
	})

	t.Run("nil actor edits nothing", func(t *testing.T) {
		assert.False(t, permission.CanEditTask(nil, assigned))
	})
}
