package assist

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mtlprog/taskboard/internal/domain"
)

// FallbackReply is returned verbatim when the completion service yields no
// content.
const FallbackReply = "No response generated"

// Message is one role-tagged block handed to the completion service.
type Message struct {
	Role    string
	Content string
}

// Message roles understood by the completion service.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// CompletionClient is the narrow surface of the completion service.
type CompletionClient interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Assistant answers natural-language questions about the schedule using only
// the supplied snapshot data.
type Assistant struct {
	client CompletionClient
}

// New creates an Assistant over the given completion client.
func New(client CompletionClient) *Assistant {
	return &Assistant{client: client}
}

// Ask builds the [system, system, user] message list from the snapshot and
// the end-user question and returns the service's reply verbatim, or
// FallbackReply when the service returns no content.
func (a *Assistant) Ask(
	ctx context.Context,
	currentUser *domain.User,
	tasks []domain.Task,
	users []domain.User,
	escalations []domain.Escalation,
	question string,
) (string, error) {
	if currentUser == nil {
		return "", domain.ErrUnauthenticated
	}

	messages := []Message{
		{Role: RoleSystem, Content: SystemPrompt(currentUser)},
		{Role: RoleSystem, Content: ContextPrompt(tasks, users, escalations)},
		{Role: RoleUser, Content: question},
	}

	reply, err := a.client.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	if reply == "" {
		slog.Warn("completion service returned no content", "user_id", currentUser.ID)
		return FallbackReply, nil
	}
	return reply, nil
}
