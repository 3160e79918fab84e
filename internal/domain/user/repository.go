package user

import "context"

// UserRepository - interface for the users table
type UserRepository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
	// ListTeam returns the roster with summed remaining leave days for year.
	// A nil managerID returns every user (hr scope).
	ListTeam(ctx context.Context, managerID *string, year int) ([]TeamMember, error)
	Update(ctx context.Context, req UpdateUserRequest) error
}
