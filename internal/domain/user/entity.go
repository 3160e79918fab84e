package user

import "time"

type Role string

const (
	RoleEmployee Role = "employee" // Regular employee
	RoleManager  Role = "manager"  // Can approve leave for direct reports
	RoleHR       Role = "hr"       // Organization-wide administration
)

// ValidRoles lists every role accepted on registration or update.
func ValidRoles() []string {
	return []string{string(RoleEmployee), string(RoleManager), string(RoleHR)}
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	Department   *string
	ManagerID    *string
	HireDate     time.Time
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// DTO / Join
	ManagerName *string
}

// FullName returns the display name used in notifications.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsManager checks if user can approve requests for a team
func (u *User) IsManager() bool {
	return u.Role == RoleManager || u.Role == RoleHR
}

// IsHR checks if user can administer the organization
func (u *User) IsHR() bool {
	return u.Role == RoleHR
}

// Actor identifies the authenticated caller of a service operation,
// extracted from access-token claims.
type Actor struct {
	ID    string
	Email string
	Role  Role
}

// TeamMember is the roster row returned for team listings, including the
// summed remaining leave days for the current year.
type TeamMember struct {
	ID                 string
	Email              string
	FirstName          string
	LastName           string
	Role               Role
	Department         *string
	HireDate           time.Time
	TotalRemainingDays int
}
