package service

import (
	"context"

	"github.com/mtlprog/taskboard/internal/domain"
	"github.com/mtlprog/taskboard/internal/permission"
	"github.com/mtlprog/taskboard/internal/repository"
)

// UserService serves the read-only user directory.
type UserService struct {
	userRepo *repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListUsers returns every user ordered by full name.
func (s *UserService) ListUsers(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.userRepo.List(ctx)
}

// GetUser returns a single user by ID.
func (s *UserService) GetUser(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.userRepo.GetByID(ctx, id)
}

// ListUsersByRole returns the users holding the given role.
func (s *UserService) ListUsersByRole(ctx context.Context, actor *domain.User, role domain.Role) ([]domain.User, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.userRepo.ListByRole(ctx, role)
}

// StatsService aggregates the analytics overview.
type StatsService struct {
	statsRepo *repository.StatsRepository
}

// NewStatsService creates a new StatsService.
func NewStatsService(statsRepo *repository.StatsRepository) *StatsService {
	return &StatsService{statsRepo: statsRepo}
}

// Overview returns per-employee schedule stats. Managers see every employee;
// an employee sees only their own row.
func (s *StatsService) Overview(ctx context.Context, actor *domain.User) ([]domain.EmployeeStats, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if permission.CanViewAllTasks(actor) {
		return s.statsRepo.EmployeeOverview(ctx, nil)
	}
	return s.statsRepo.EmployeeOverview(ctx, &actor.ID)
}
