package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hrleave/leave-backend-go/internal/domain/audit"
	"github.com/hrleave/leave-backend-go/internal/domain/user"
)

// managerChainLimit bounds the reporting-chain walk during cycle
// detection so a corrupted graph cannot loop forever.
const managerChainLimit = 64

type userServiceImpl struct {
	users  user.UserRepository
	audits audit.Recorder
}

func NewUserService(users user.UserRepository, audits audit.Recorder) user.Service {
	return &userServiceImpl{users: users, audits: audits}
}

// List implements user.Service. HR only.
func (s *userServiceImpl) List(ctx context.Context, caller user.Actor) ([]user.UserResponse, error) {
	if err := user.Authorize(caller, caller.ID, nil, user.PermissionUserViewAll); err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]user.UserResponse, len(users))
	for i, u := range users {
		responses[i] = user.ToResponse(u)
	}
	return responses, nil
}

// Team implements user.Service. Managers see their direct reports with
// current-year remaining totals; hr sees every active user.
func (s *userServiceImpl) Team(ctx context.Context, caller user.Actor) ([]user.TeamMemberResponse, error) {
	if !user.HasPermission(caller.Role, user.PermissionTeamView) {
		return nil, user.ErrForbidden
	}

	var managerID *string
	if caller.Role != user.RoleHR {
		managerID = &caller.ID
	}

	members, err := s.users.ListTeam(ctx, managerID, time.Now().Year())
	if err != nil {
		return nil, err
	}

	responses := make([]user.TeamMemberResponse, len(members))
	for i, m := range members {
		responses[i] = user.ToTeamMemberResponse(m)
	}
	return responses, nil
}

// Profile implements user.Service.
func (s *userServiceImpl) Profile(ctx context.Context, userID string) (user.UserResponse, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(u), nil
}

// Update implements user.Service. HR only. A manager change is rejected
// when it would make the reporting chain loop back to the updated user.
func (s *userServiceImpl) Update(ctx context.Context, caller user.Actor, req user.UpdateUserRequest) error {
	if err := user.Authorize(caller, req.ID, nil, user.PermissionUserManage); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	// A cleared manager (explicit null) needs no chain walk.
	if req.ManagerID.Set && req.ManagerID.Value != nil {
		if err := s.checkManagerChain(ctx, req.ID, *req.ManagerID.Value); err != nil {
			return err
		}
	}

	if err := s.users.Update(ctx, req); err != nil {
		return err
	}

	detail := "fields: " + strings.Join(changedFields(req), ", ")
	s.audits.Record(ctx, audit.Entry{
		ActorID:    caller.ID,
		Action:     audit.ActionUserUpdated,
		EntityType: "user",
		EntityID:   req.ID,
		Detail:     &detail,
	})

	return nil
}

func changedFields(req user.UpdateUserRequest) []string {
	fields := make([]string, 0, 6)
	if req.FirstName != nil {
		fields = append(fields, "first_name")
	}
	if req.LastName != nil {
		fields = append(fields, "last_name")
	}
	if req.Department.Set {
		fields = append(fields, "department")
	}
	if req.Role != nil {
		fields = append(fields, "role")
	}
	if req.ManagerID.Set {
		fields = append(fields, "manager_id")
	}
	if req.IsActive != nil {
		fields = append(fields, "is_active")
	}
	return fields
}

// checkManagerChain walks up from the proposed manager and fails if the
// chain reaches userID again.
func (s *userServiceImpl) checkManagerChain(ctx context.Context, userID, managerID string) error {
	if managerID == userID {
		return user.ErrManagerCycle
	}

	current := managerID
	for i := 0; i < managerChainLimit; i++ {
		m, err := s.users.GetByID(ctx, current)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) && current == managerID {
				return user.ErrManagerNotFound
			}
			return err
		}
		if m.ManagerID == nil {
			return nil
		}
		if *m.ManagerID == userID {
			return user.ErrManagerCycle
		}
		current = *m.ManagerID
	}

	return user.ErrManagerCycle
}
