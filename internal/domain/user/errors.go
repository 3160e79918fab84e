package user

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailExists     = errors.New("user already exists with this email")
	ErrManagerNotFound = errors.New("manager not found")
	ErrManagerCycle    = errors.New("manager assignment would introduce a cycle")
	ErrForbidden       = errors.New("insufficient permissions")
)
