// Package assist builds the bounded textual snapshot of the schedule that is
// handed to the completion service, and wraps the completion call itself.
// The snapshot references only the data it is given; it performs no lookups
// of its own.
package assist

import (
	"fmt"
	"strings"

	"github.com/mtlprog/taskboard/internal/domain"
)

// timestampLayout is the human-readable format used in prompt text.
const timestampLayout = "Jan 2, 2006 3:04 PM"

// SystemPrompt returns the fixed instruction block enumerating what the
// assistant may and may not do. The assistant is strictly read-only.
func SystemPrompt(currentUser *domain.User) string {
	return fmt.Sprintf(`You are a helpful AI assistant for a task management system.

Current user: %s (%s)

Your role is to help users understand their tasks, schedules, and escalations.

CRITICAL RULES:
- ONLY use data provided in the context
- NEVER invent or hallucinate users, tasks, or data
- If you don't have information, say so clearly
- Keep responses concise and actionable
- Format responses in a clear, scannable way

You can:
- Summarize today's tasks
- List blocked or overdue tasks
- Explain escalations
- Provide task statistics
- Answer questions about the schedule

You CANNOT:
- Create or modify tasks
- Access data not provided in context
- Make assumptions about future tasks`, currentUser.FullName, currentUser.Role)
}

// ContextPrompt renders the data snapshot: every user, every task with
// resolved assignee and creator names, and every escalation with resolved
// names. Unknown references degrade to placeholder names instead of failing.
func ContextPrompt(tasks []domain.Task, users []domain.User, escalations []domain.Escalation) string {
	userNames := make(map[string]string, len(users))
	for _, u := range users {
		userNames[u.ID] = u.FullName
	}
	taskTitles := make(map[string]string, len(tasks))
	for _, t := range tasks {
		taskTitles[t.ID] = t.Title
	}

	var userLines []string
	for _, u := range users {
		userLines = append(userLines, fmt.Sprintf("- %s (%s)", u.FullName, u.Role))
	}

	var taskBlocks []string
	for _, t := range tasks {
		taskBlocks = append(taskBlocks, taskContext(&t, userNames))
	}

	var escalationBlocks []string
	for _, e := range escalations {
		escalationBlocks = append(escalationBlocks, escalationContext(&e, userNames, taskTitles))
	}

	tasksContext := strings.Join(taskBlocks, "\n\n")
	if tasksContext == "" {
		tasksContext = "No tasks"
	}
	escalationsContext := strings.Join(escalationBlocks, "\n\n")
	if escalationsContext == "" {
		escalationsContext = "No escalations"
	}

	return fmt.Sprintf(`CURRENT DATA CONTEXT:

USERS:
%s

TASKS (%d total):
%s

ESCALATIONS (%d total):
%s

Remember: Only reference this data. Do not invent additional information.`,
		strings.Join(userLines, "\n"),
		len(tasks), tasksContext,
		len(escalations), escalationsContext,
	)
}

func taskContext(task *domain.Task, userNames map[string]string) string {
	assignedTo := "Unassigned"
	if task.AssignedTo != nil {
		if name, ok := userNames[*task.AssignedTo]; ok {
			assignedTo = name
		}
	}
	createdBy := userNames[task.CreatedBy]
	if createdBy == "" {
		createdBy = "Unknown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "- %q (%s, %s priority)\n", task.Title, task.Status, task.Priority)
	fmt.Fprintf(&b, "  Assigned to: %s\n", assignedTo)
	fmt.Fprintf(&b, "  Created by: %s\n", createdBy)
	fmt.Fprintf(&b, "  Time: %s - %s", task.StartTime.Format(timestampLayout), task.EndTime.Format(timestampLayout))
	if task.Description != nil && *task.Description != "" {
		fmt.Fprintf(&b, "\n  Description: %s", *task.Description)
	}
	if task.Notes != nil && *task.Notes != "" {
		fmt.Fprintf(&b, "\n  Notes: %s", *task.Notes)
	}
	return b.String()
}

func escalationContext(esc *domain.Escalation, userNames, taskTitles map[string]string) string {
	escalatedBy := userNames[esc.EscalatedBy]
	if escalatedBy == "" {
		escalatedBy = "Unknown"
	}
	escalatedTo := userNames[esc.EscalatedTo]
	if escalatedTo == "" {
		escalatedTo = "Unknown"
	}
	taskTitle := taskTitles[esc.TaskID]
	if taskTitle == "" {
		taskTitle = "Unknown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "- Task: %q\n", taskTitle)
	fmt.Fprintf(&b, "  From: %s -> To: %s\n", escalatedBy, escalatedTo)
	fmt.Fprintf(&b, "  Status: %s\n", esc.Status)
	fmt.Fprintf(&b, "  Message: %s\n", esc.Message)
	fmt.Fprintf(&b, "  Created: %s", esc.CreatedAt.Format(timestampLayout))
	return b.String()
}
