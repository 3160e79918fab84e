package user

import (
	"encoding/json"
	"time"

	"github.com/hrleave/leave-backend-go/internal/pkg/validator"
)

// NullableString is a patch field over a nullable column. It separates an
// omitted field (Set false, leave the column alone) from an explicit JSON
// null (Set true, Value nil, clear the column). encoding/json invokes
// UnmarshalJSON for null values, so decoding marks the field as set either
// way.
type NullableString struct {
	Set   bool
	Value *string
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}

// SetString builds a NullableString holding a value; the zero value means
// "field omitted" and NullableString{Set: true} means "clear".
func SetString(s string) NullableString {
	return NullableString{Set: true, Value: &s}
}

// UpdateUserRequest is an explicit patch: only set fields are applied.
// department and manager_id accept an explicit null to clear the column.
type UpdateUserRequest struct {
	ID         string         `json:"-"`
	FirstName  *string        `json:"first_name,omitempty"`
	LastName   *string        `json:"last_name,omitempty"`
	Department NullableString `json:"department"`
	Role       *string        `json:"role,omitempty"`
	ManagerID  NullableString `json:"manager_id"`
	IsActive   *bool          `json:"is_active,omitempty"`
}

func (r *UpdateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.FirstName != nil && validator.IsEmpty(*r.FirstName) {
		errs = append(errs, validator.ValidationError{
			Field:   "first_name",
			Message: "first_name must not be empty",
		})
	}

	if r.LastName != nil && validator.IsEmpty(*r.LastName) {
		errs = append(errs, validator.ValidationError{
			Field:   "last_name",
			Message: "last_name must not be empty",
		})
	}

	if r.Role != nil && !validator.IsInSlice(*r.Role, ValidRoles()) {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of employee, manager, hr",
		})
	}

	if !r.HasChanges() {
		errs = append(errs, validator.ValidationError{
			Field:   "body",
			Message: "no fields to update",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// HasChanges reports whether the patch sets at least one field.
func (r *UpdateUserRequest) HasChanges() bool {
	return r.FirstName != nil || r.LastName != nil || r.Department.Set ||
		r.Role != nil || r.ManagerID.Set || r.IsActive != nil
}

// UserResponse is the API shape of a user.
type UserResponse struct {
	ID         string           `json:"id"`
	Email      string           `json:"email"`
	FirstName  string           `json:"first_name"`
	LastName   string           `json:"last_name"`
	Role       string           `json:"role"`
	Department *string          `json:"department,omitempty"`
	HireDate   time.Time        `json:"hire_date"`
	IsActive   bool             `json:"is_active"`
	Manager    *ManagerResponse `json:"manager,omitempty"`
}

type ManagerResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ToResponse maps a User (with its optional manager join) to the API shape.
func ToResponse(u User) UserResponse {
	resp := UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       string(u.Role),
		Department: u.Department,
		HireDate:   u.HireDate,
		IsActive:   u.IsActive,
	}
	if u.ManagerID != nil && u.ManagerName != nil {
		resp.Manager = &ManagerResponse{ID: *u.ManagerID, Name: *u.ManagerName}
	}
	return resp
}

// TeamMemberResponse is the roster row for team listings.
type TeamMemberResponse struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Role               string    `json:"role"`
	Department         *string   `json:"department,omitempty"`
	HireDate           time.Time `json:"hire_date"`
	TotalRemainingDays int       `json:"total_remaining_days"`
}

// ToTeamMemberResponse converts a TeamMember to its API shape.
func ToTeamMemberResponse(m TeamMember) TeamMemberResponse {
	return TeamMemberResponse{
		ID:                 m.ID,
		Email:              m.Email,
		FirstName:          m.FirstName,
		LastName:           m.LastName,
		Role:               string(m.Role),
		Department:         m.Department,
		HireDate:           m.HireDate,
		TotalRemainingDays: m.TotalRemainingDays,
	}
}
