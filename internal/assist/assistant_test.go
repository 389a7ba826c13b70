package assist_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/taskboard/internal/assist"
	"github.com/mtlprog/taskboard/internal/domain"
)

// stubClient records the messages it receives and returns a canned reply.
type stubClient struct {
	reply    string
	err      error
	messages []assist.Message
}

func (c *stubClient) Complete(_ context.Context, messages []assist.Message) (string, error) {
	c.messages = messages
	return c.reply, c.err
}

var (
	manager  = domain.User{ID: "manager-1", FullName: "Maria Petrova", Role: domain.RoleManager}
	employee = domain.User{ID: "employee-1", FullName: "Ivan Sidorov", Role: domain.RoleEmployee}
)

func sampleTask() domain.Task {
	desc := "Gather numbers from finance"
	return domain.Task{
		ID:          "task-1",
		Title:       "Prepare report",
		Description: &desc,
		Status:      domain.TaskStatusInProgress,
		Priority:    domain.TaskPriorityHigh,
		AssignedTo:  &employee.ID,
		CreatedBy:   manager.ID,
		StartTime:   time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC),
	}
}

func TestAskMessageShape(t *testing.T) {
	client := &stubClient{reply: "Here is your schedule."}
	a := assist.New(client)

	reply, err := a.Ask(context.Background(), &employee,
		[]domain.Task{sampleTask()}, []domain.User{manager, employee}, nil,
		"What is on my plate today?")
	require.NoError(t, err)
	assert.Equal(t, "Here is your schedule.", reply)

	require.Len(t, client.messages, 3)
	assert.Equal(t, assist.RoleSystem, client.messages[0].Role)
	assert.Equal(t, assist.RoleSystem, client.messages[1].Role)
	assert.Equal(t, assist.RoleUser, client.messages[2].Role)
	assert.Equal(t, "What is on my plate today?", client.messages[2].Content)
}

func TestAskFallbackOnEmptyReply(t *testing.T) {
	a := assist.New(&stubClient{reply: ""})

	reply, err := a.Ask(context.Background(), &employee, nil, nil, nil, "hello")
	require.NoError(t, err)
	assert.Equal(t, assist.FallbackReply, reply)
}

func TestAskPropagatesClientError(t *testing.T) {
	a := assist.New(&stubClient{err: errors.New("upstream down")})

	_, err := a.Ask(context.Background(), &employee, nil, nil, nil, "hello")
	assert.ErrorContains(t, err, "upstream down")
}

func TestAskUnauthenticated(t *testing.T) {
	a := assist.New(&stubClient{})

	_, err := a.Ask(context.Background(), nil, nil, nil, nil, "hello")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestSystemPromptNamesCurrentUser(t *testing.T) {
	prompt := assist.SystemPrompt(&employee)
	assert.Contains(t, prompt, "Current user: Ivan Sidorov (employee)")
	assert.Contains(t, prompt, "NEVER invent or hallucinate users, tasks, or data")
}

func TestContextPromptRendersSnapshot(t *testing.T) {
	task := sampleTask()
	esc := domain.Escalation{
		ID:          "esc-1",
		TaskID:      task.ID,
		EscalatedBy: employee.ID,
		EscalatedTo: manager.ID,
		Message:     "Need the Q3 numbers",
		Status:      domain.EscalationStatusOpen,
		CreatedAt:   time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC),
	}

	prompt := assist.ContextPrompt([]domain.Task{task}, []domain.User{manager, employee}, []domain.Escalation{esc})

	assert.Contains(t, prompt, "- Maria Petrova (manager)")
	assert.Contains(t, prompt, "TASKS (1 total):")
	assert.Contains(t, prompt, `- "Prepare report" (in_progress, high priority)`)
	assert.Contains(t, prompt, "Assigned to: Ivan Sidorov")
	assert.Contains(t, prompt, "Created by: Maria Petrova")
	assert.Contains(t, prompt, "Time: Mar 10, 2026 9:00 AM - Mar 10, 2026 10:30 AM")
	assert.Contains(t, prompt, "Description: Gather numbers from finance")
	assert.Contains(t, prompt, "ESCALATIONS (1 total):")
	assert.Contains(t, prompt, "From: Ivan Sidorov -> To: Maria Petrova")
	assert.Contains(t, prompt, "Message: Need the Q3 numbers")
}

func TestContextPromptDegradesGracefully(t *testing.T) {
	t.Run("empty snapshot", func(t *testing.T) {
		prompt := assist.ContextPrompt(nil, nil, nil)
		assert.Contains(t, prompt, "No tasks")
		assert.Contains(t, prompt, "No escalations")
	})

	t.Run("unknown references", func(t *testing.T) {
		task := sampleTask()
		esc := domain.Escalation{
			ID:          "esc-1",
			TaskID:      "missing-task",
			EscalatedBy: "missing-user",
			EscalatedTo: "missing-user",
			Message:     "orphaned",
			Status:      domain.EscalationStatusOpen,
		}

		prompt := assist.ContextPrompt([]domain.Task{task}, nil, []domain.Escalation{esc})
		assert.Contains(t, prompt, "Assigned to: Unassigned")
		assert.Contains(t, prompt, "Created by: Unknown")
		assert.Contains(t, prompt, `- Task: "Unknown"`)
	})
}
