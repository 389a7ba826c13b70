package store

import "github.com/mtlprog/taskboard/internal/domain"

// UserStore is the session-owned read-only user directory. It is filled on
// load and never mutated in between; there is no user-editing flow in this
// system.
type UserStore struct {
	users []domain.User
}

// NewUserStore creates an empty user store.
func NewUserStore() *UserStore {
	return &UserStore{}
}

// ReplaceAll overwrites the full collection.
func (s *UserStore) ReplaceAll(users []domain.User) {
	s.users = make([]domain.User, len(users))
	copy(s.users, users)
}

// All returns a copy of all users.
func (s *UserStore) All() []domain.User {
	out := make([]domain.User, len(s.users))
	copy(out, s.users)
	return out
}

// Get returns the user with the given ID.
func (s *UserStore) Get(id string) (*domain.User, error) {
	for i := range s.users {
		if s.users[i].ID == id {
			user := s.users[i]
			return &user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// GetByToken returns the user holding the given API token.
func (s *UserStore) GetByToken(token string) (*domain.User, error) {
	for i := range s.users {
		if s.users[i].APIToken != "" && s.users[i].APIToken == token {
			user := s.users[i]
			return &user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// ByRole returns the users with the given role.
func (s *UserStore) ByRole(role domain.Role) []domain.User {
	var out []domain.User
	for _, user := range s.users {
		if user.Role == role {
			out = append(out, user)
		}
	}
	return out
}
