package domain

import "time"

// Role represents the authorization role of a user.
type Role string

const (
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// IsValid checks if the role is one of the allowed values.
func (r Role) IsValid() bool {
	return r == RoleManager || r == RoleEmployee
}

// User represents a person with access to the schedule.
// Users are immutable after creation; role is the sole authorization axis.
type User struct {
	ID        string
	Email     string
	FullName  string
	Role      Role
	APIToken  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsManager reports whether the user holds the manager role.
func (u *User) IsManager() bool {
	return u.Role == RoleManager
}
