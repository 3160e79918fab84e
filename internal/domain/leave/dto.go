package leave

import (
	"time"

	"github.com/hrleave/leave-backend-go/internal/pkg/validator"
)

type CreateLeaveTypeRequest struct {
	Name           string  `json:"name"`
	Description    *string `json:"description,omitempty"`
	MaxDaysPerYear int     `json:"max_days_per_year"`
}

func (r *CreateLeaveTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(r.Name) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 255 characters",
		})
	}
	if r.MaxDaysPerYear <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "max_days_per_year",
			Message: "max_days_per_year must be a positive integer",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateLeaveTypeRequest struct {
	ID             string  `json:"-"`
	Name           *string `json:"name,omitempty"`
	Description    *string `json:"description,omitempty"`
	MaxDaysPerYear *int    `json:"max_days_per_year,omitempty"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

func (r *UpdateLeaveTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not be empty",
			})
		}
		if len(*r.Name) > 255 {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not exceed 255 characters",
			})
		}
	}

	if r.MaxDaysPerYear != nil && *r.MaxDaysPerYear <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "max_days_per_year",
			Message: "max_days_per_year must be a positive integer",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// SubmitLeaveRequest carries a new leave submission. Dates arrive as
// "YYYY-MM-DD" strings and are parsed during validation.
type SubmitLeaveRequest struct {
	LeaveTypeID string `json:"leave_type_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Reason      string `json:"reason"`

	// Parsed by Validate
	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *SubmitLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type_id",
			Message: "leave_type_id is required",
		})
	}

	if validator.IsEmpty(r.StartDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date is required",
		})
	} else if start, ok := validator.IsValidDate(r.StartDate); ok {
		r.Start = start
	} else {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be a valid date (YYYY-MM-DD)",
		})
	}

	if validator.IsEmpty(r.EndDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date is required",
		})
	} else if end, ok := validator.IsValidDate(r.EndDate); ok {
		r.End = end
	} else {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be a valid date (YYYY-MM-DD)",
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RejectLeaveRequest struct {
	RequestID string `json:"-"`
	Reason    string `json:"reason"`
}

func (r *RejectLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "rejection reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// RequestFilter narrows listings of a user's own requests.
type RequestFilter struct {
	Status *string
	Year   *int
}

func (f *RequestFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !validator.IsInSlice(*f.Status, ValidStatuses()) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of pending, approved, rejected, cancelled",
		})
	}
	if f.Year != nil && (*f.Year < 1970 || *f.Year > 9999) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year is out of range",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ============= Response DTOs =============

type LeaveTypeResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    *string `json:"description,omitempty"`
	MaxDaysPerYear int     `json:"max_days_per_year"`
	IsActive       bool    `json:"is_active"`
}

type LeaveBalanceResponse struct {
	LeaveTypeID   string  `json:"leave_type_id"`
	LeaveTypeName string  `json:"leave_type_name"`
	Description   *string `json:"description,omitempty"`
	Year          int     `json:"year"`
	TotalDays     int     `json:"total_days"`
	UsedDays      int     `json:"used_days"`
	RemainingDays int     `json:"remaining_days"`
}

type LeaveRequestResponse struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	EmployeeName    *string    `json:"employee_name,omitempty"`
	Department      *string    `json:"department,omitempty"`
	LeaveTypeID     string     `json:"leave_type_id"`
	LeaveTypeName   *string    `json:"leave_type_name,omitempty"`
	StartDate       string     `json:"start_date"`
	EndDate         string     `json:"end_date"`
	DaysRequested   int        `json:"days_requested"`
	Reason          string     `json:"reason"`
	Status          string     `json:"status"`
	ApprovedBy      *string    `json:"approved_by,omitempty"`
	ApproverName    *string    `json:"approver_name,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ToRequestResponse maps an entity (with joins) to the API shape.
func ToRequestResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		EmployeeName:    r.EmployeeName,
		Department:      r.Department,
		LeaveTypeID:     r.LeaveTypeID,
		LeaveTypeName:   r.LeaveTypeName,
		StartDate:       r.StartDate.Format("2006-01-02"),
		EndDate:         r.EndDate.Format("2006-01-02"),
		DaysRequested:   r.DaysRequested,
		Reason:          r.Reason,
		Status:          string(r.Status),
		ApprovedBy:      r.ApprovedBy,
		ApproverName:    r.ApproverName,
		ApprovedAt:      r.ApprovedAt,
		RejectionReason: r.RejectionReason,
		CancelledAt:     r.CancelledAt,
		CreatedAt:       r.CreatedAt,
	}
}

func ToTypeResponse(t LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:             t.ID,
		Name:           t.Name,
		Description:    t.Description,
		MaxDaysPerYear: t.MaxDaysPerYear,
		IsActive:       t.IsActive,
	}
}

func ToBalanceResponse(b LeaveBalance) LeaveBalanceResponse {
	resp := LeaveBalanceResponse{
		LeaveTypeID:   b.LeaveTypeID,
		Description:   b.LeaveTypeDescription,
		Year:          b.Year,
		TotalDays:     b.TotalDays,
		UsedDays:      b.UsedDays,
		RemainingDays: b.RemainingDays,
	}
	if b.LeaveTypeName != nil {
		resp.LeaveTypeName = *b.LeaveTypeName
	}
	return resp
}
