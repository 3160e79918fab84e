package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hrleave/leave-backend-go/internal/domain/leave"
	"github.com/hrleave/leave-backend-go/internal/handler/http/middleware"
	"github.com/hrleave/leave-backend-go/internal/handler/http/response"
)

type LeaveHandler interface {
	ListTypes(w http.ResponseWriter, r *http.Request)
	CreateType(w http.ResponseWriter, r *http.Request)
	UpdateType(w http.ResponseWriter, r *http.Request)
	MyBalance(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
	MyRequests(w http.ResponseWriter, r *http.Request)
	PendingApprovals(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.Service
}

func NewLeaveHandler(leaveService leave.Service) LeaveHandler {
	return &LeaveHandlerImpl{
		leaveService: leaveService,
	}
}

// ListTypes implements LeaveHandler.
func (l *LeaveHandlerImpl) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := l.leaveService.ListTypes(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := make([]leave.LeaveTypeResponse, 0, len(types))
	for _, t := range types {
		resp = append(resp, leave.ToTypeResponse(t))
	}
	response.Success(w, resp)
}

// CreateType implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateType(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var createReq leave.CreateLeaveTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		slog.Error("Create Leave Type decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	created, err := l.leaveService.CreateType(r.Context(), actor, createReq)
	if err != nil {
		slog.Error("Create Leave Type service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("Leave type created", "leave_type_id", created.ID, "created_by", actor.ID)
	response.Created(w, "Leave type created successfully", leave.ToTypeResponse(created))
}

// UpdateType implements LeaveHandler.
func (l *LeaveHandlerImpl) UpdateType(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var updateReq leave.UpdateLeaveTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		slog.Error("Update Leave Type decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	updateReq.ID = chi.URLParam(r, "id")

	if err := l.leaveService.UpdateType(r.Context(), actor, updateReq); err != nil {
		slog.Error("Update Leave Type service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("Leave type updated", "leave_type_id", updateReq.ID, "updated_by", actor.ID)
	response.SuccessWithMessage(w, "Leave type updated successfully", nil)
}

// MyBalance implements LeaveHandler. Defaults to the current year when no
// year query parameter is given.
func (l *LeaveHandlerImpl) MyBalance(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	year := time.Now().Year()
	if yearParam := r.URL.Query().Get("year"); yearParam != "" {
		parsed, err := strconv.Atoi(yearParam)
		if err != nil {
			response.BadRequest(w, "Invalid year parameter", nil)
			return
		}
		year = parsed
	}

	balances, err := l.leaveService.MyBalance(r.Context(), actor, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := make([]leave.LeaveBalanceResponse, 0, len(balances))
	for _, b := range balances {
		resp = append(resp, leave.ToBalanceResponse(b))
	}
	response.Success(w, resp)
}

// Submit implements LeaveHandler.
func (l *LeaveHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var submitReq leave.SubmitLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&submitReq); err != nil {
		slog.Error("Submit Leave Request decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	created, err := l.leaveService.Submit(r.Context(), actor, submitReq)
	if err != nil {
		slog.Error("Submit Leave Request service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("Leave request submitted", "request_id", created.ID, "user_id", actor.ID, "days", created.DaysRequested)
	response.Created(w, "Leave request submitted successfully", leave.ToRequestResponse(created))
}

// MyRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) MyRequests(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var filter leave.RequestFilter
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = &status
	}
	if yearParam := r.URL.Query().Get("year"); yearParam != "" {
		year, err := strconv.Atoi(yearParam)
		if err != nil {
			response.BadRequest(w, "Invalid year parameter", nil)
			return
		}
		filter.Year = &year
	}

	requests, err := l.leaveService.MyRequests(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, req := range requests {
		resp = append(resp, leave.ToRequestResponse(req))
	}
	response.Success(w, resp)
}

// PendingApprovals implements LeaveHandler.
func (l *LeaveHandlerImpl) PendingApprovals(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	requests, err := l.leaveService.PendingApprovals(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, req := range requests {
		resp = append(resp, leave.ToRequestResponse(req))
	}
	response.Success(w, resp)
}

// Approve implements LeaveHandler.
func (l *LeaveHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	requestID := chi.URLParam(r, "id")
	if err := l.leaveService.Approve(r.Context(), actor, requestID); err != nil {
		slog.Error("Approve Leave Request service error", "error", err, "request_id", requestID)
		response.HandleError(w, err)
		return
	}

	slog.Info("Leave request approved", "request_id", requestID, "approved_by", actor.ID)
	response.SuccessWithMessage(w, "Leave request approved successfully", nil)
}

// Reject implements LeaveHandler.
func (l *LeaveHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var rejectReq leave.RejectLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&rejectReq); err != nil {
		slog.Error("Reject Leave Request decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	rejectReq.RequestID = chi.URLParam(r, "id")

	if err := l.leaveService.Reject(r.Context(), actor, rejectReq); err != nil {
		slog.Error("Reject Leave Request service error", "error", err, "request_id", rejectReq.RequestID)
		response.HandleError(w, err)
		return
	}

	slog.Info("Leave request rejected", "request_id", rejectReq.RequestID, "rejected_by", actor.ID)
	response.SuccessWithMessage(w, "Leave request rejected successfully", nil)
}

// Cancel implements LeaveHandler.
func (l *LeaveHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	requestID := chi.URLParam(r, "id")
	if err := l.leaveService.Cancel(r.Context(), actor, requestID); err != nil {
		slog.Error("Cancel Leave Request service error", "error", err, "request_id", requestID)
		response.HandleError(w, err)
		return
	}

	slog.Info("Leave request cancelled", "request_id", requestID, "user_id", actor.ID)
	response.SuccessWithMessage(w, "Leave request cancelled successfully", nil)
}
