package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hrleave/leave-backend-go/internal/domain/auth"
	"github.com/hrleave/leave-backend-go/internal/domain/leave"
	"github.com/hrleave/leave-backend-go/internal/domain/notification"
	"github.com/hrleave/leave-backend-go/internal/domain/user"
	"github.com/hrleave/leave-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid email or password")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")

	// Users
	case errors.Is(err, user.ErrForbidden):
		Forbidden(w, "You do not have permission to perform this action")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrManagerNotFound):
		BadRequest(w, "Manager not found", nil)
	case errors.Is(err, user.ErrManagerCycle):
		BadRequest(w, "Manager assignment would create a reporting cycle", nil)

	// Leave types and balances
	case errors.Is(err, leave.ErrLeaveTypeNotFound):
		NotFound(w, "Leave type not found")
	case errors.Is(err, leave.ErrLeaveTypeNameExists):
		Conflict(w, "Leave type name already exists")
	case errors.Is(err, leave.ErrLeaveTypeInactive):
		BadRequest(w, "Leave type is not active", nil)
	case errors.Is(err, leave.ErrBalanceNotFound):
		NotFound(w, "Leave balance not found")
	case errors.Is(err, leave.ErrInsufficientBalance):
		BadRequest(w, "Insufficient leave balance", nil)

	// Leave requests
	case errors.Is(err, leave.ErrRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrRequestAlreadyProcessed):
		Conflict(w, "Leave request already processed")
	case errors.Is(err, leave.ErrOverlappingRequest):
		Conflict(w, "Request overlaps an existing leave request")
	case errors.Is(err, leave.ErrStartDateInPast):
		BadRequest(w, "Start date must not be in the past", nil)
	case errors.Is(err, leave.ErrNotRequestOwner):
		Forbidden(w, "Only the request owner can cancel it")

	// Notifications
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")
	case errors.Is(err, notification.ErrQueueFull):
		ServiceUnavailable(w, "Notification queue is full")

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
