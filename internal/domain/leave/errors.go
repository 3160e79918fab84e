package leave

import "errors"

var (
	ErrLeaveTypeNotFound       = errors.New("leave type not found")
	ErrLeaveTypeNameExists     = errors.New("leave type name already exists")
	ErrLeaveTypeInactive       = errors.New("leave type is inactive")
	ErrBalanceNotFound         = errors.New("leave balance not found")
	ErrInsufficientBalance     = errors.New("insufficient leave balance")
	ErrRequestNotFound         = errors.New("leave request not found")
	ErrRequestAlreadyProcessed = errors.New("leave request already processed")
	ErrOverlappingRequest      = errors.New("overlapping leave request exists")
	ErrStartDateInPast         = errors.New("start date cannot be in the past")
	ErrNotRequestOwner         = errors.New("leave request belongs to another user")
)
