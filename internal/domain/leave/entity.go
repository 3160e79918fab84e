package leave

import "time"

// LeaveType entity. Types are soft-disabled via IsActive, never deleted, so
// historical requests keep their reference.
type LeaveType struct {
	ID             string
	Name           string
	Description    *string
	MaxDaysPerYear int
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// LeaveBalance is the ledger row for one (user, leave type, year) key.
// Invariant: RemainingDays = TotalDays - UsedDays, UsedDays >= 0, and
// RemainingDays >= 0 after any approval.
type LeaveBalance struct {
	ID            string
	UserID        string
	LeaveTypeID   string
	Year          int
	TotalDays     int
	UsedDays      int
	RemainingDays int
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Join
	LeaveTypeName        *string
	LeaveTypeDescription *string
}

type LeaveRequestStatus string

const (
	StatusPending   LeaveRequestStatus = "pending"
	StatusApproved  LeaveRequestStatus = "approved"
	StatusRejected  LeaveRequestStatus = "rejected"
	StatusCancelled LeaveRequestStatus = "cancelled"
)

// ValidStatuses lists every status accepted as a list filter.
func ValidStatuses() []string {
	return []string{
		string(StatusPending),
		string(StatusApproved),
		string(StatusRejected),
		string(StatusCancelled),
	}
}

// LeaveRequest entity. User, type, dates, day count and reason are immutable
// after submission; only status and its resolution stamps change.
type LeaveRequest struct {
	ID            string
	UserID        string
	LeaveTypeID   string
	StartDate     time.Time
	EndDate       time.Time
	DaysRequested int
	Reason        string

	Status          LeaveRequestStatus
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectionReason *string
	CancelledAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Joins (for responses and authorization)
	LeaveTypeName  *string
	EmployeeName   *string
	Department     *string
	ApproverName   *string
	OwnerManagerID *string
}

// Terminal reports whether the request reached a final state. pending is the
// only non-terminal status.
func (r *LeaveRequest) Terminal() bool {
	return r.Status != StatusPending
}

// InclusiveDays returns the calendar day count between start and end, both
// bounds included. Weekends and holidays count; every calendar day does.
func InclusiveDays(start, end time.Time) int {
	start = atMidnight(start)
	end = atMidnight(end)
	return int(end.Sub(start).Hours()/24) + 1
}

// Overlaps reports whether [s1,e1] and [s2,e2] share at least one calendar
// day (inclusive bounds: s1 <= e2 && s2 <= e1).
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return !atMidnight(s1).After(atMidnight(e2)) && !atMidnight(s2).After(atMidnight(e1))
}

// Today returns the local server date at day granularity.
func Today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func atMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
