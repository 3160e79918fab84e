package user

import "context"

type Service interface {
	List(ctx context.Context, caller Actor) ([]UserResponse, error)
	Team(ctx context.Context, caller Actor) ([]TeamMemberResponse, error)
	Update(ctx context.Context, caller Actor, req UpdateUserRequest) error
	Profile(ctx context.Context, userID string) (UserResponse, error)
}
