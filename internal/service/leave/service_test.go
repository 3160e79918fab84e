package leave

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrleave/leave-backend-go/internal/domain/audit"
	"github.com/hrleave/leave-backend-go/internal/domain/leave"
	"github.com/hrleave/leave-backend-go/internal/domain/notification"
	"github.com/hrleave/leave-backend-go/internal/domain/user"
	"github.com/hrleave/leave-backend-go/internal/pkg/validator"
)

// ---- fakes ----

type passthroughTxm struct{}

func (passthroughTxm) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeTypeRepo struct {
	types map[string]leave.LeaveType
}

func (f *fakeTypeRepo) Create(_ context.Context, lt leave.LeaveType) (leave.LeaveType, error) {
	for _, existing := range f.types {
		if existing.Name == lt.Name {
			return leave.LeaveType{}, leave.ErrLeaveTypeNameExists
		}
	}
	lt.ID = fmt.Sprintf("type-%d", len(f.types)+1)
	lt.IsActive = true
	f.types[lt.ID] = lt
	return lt, nil
}

func (f *fakeTypeRepo) GetByID(_ context.Context, id string) (leave.LeaveType, error) {
	lt, ok := f.types[id]
	if !ok {
		return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
	}
	return lt, nil
}

func (f *fakeTypeRepo) GetByName(_ context.Context, name string) (leave.LeaveType, error) {
	for _, lt := range f.types {
		if lt.Name == name {
			return lt, nil
		}
	}
	return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
}

func (f *fakeTypeRepo) List(_ context.Context) ([]leave.LeaveType, error) {
	out := make([]leave.LeaveType, 0, len(f.types))
	for _, lt := range f.types {
		out = append(out, lt)
	}
	return out, nil
}

func (f *fakeTypeRepo) ListActive(_ context.Context) ([]leave.LeaveType, error) {
	out := make([]leave.LeaveType, 0, len(f.types))
	for _, lt := range f.types {
		if lt.IsActive {
			out = append(out, lt)
		}
	}
	return out, nil
}

func (f *fakeTypeRepo) Update(_ context.Context, req leave.UpdateLeaveTypeRequest) error {
	lt, ok := f.types[req.ID]
	if !ok {
		return leave.ErrLeaveTypeNotFound
	}
	if req.Name != nil {
		lt.Name = *req.Name
	}
	if req.MaxDaysPerYear != nil {
		lt.MaxDaysPerYear = *req.MaxDaysPerYear
	}
	if req.IsActive != nil {
		lt.IsActive = *req.IsActive
	}
	f.types[req.ID] = lt
	return nil
}

type balanceKey struct {
	userID, typeID string
	year           int
}

type fakeBalanceRepo struct {
	balances map[balanceKey]*leave.LeaveBalance
}

func (f *fakeBalanceRepo) Initialize(_ context.Context, userID string, lt leave.LeaveType, year int) error {
	key := balanceKey{userID, lt.ID, year}
	if b, ok := f.balances[key]; ok {
		b.TotalDays = lt.MaxDaysPerYear
		b.RemainingDays = lt.MaxDaysPerYear - b.UsedDays
		return nil
	}
	f.balances[key] = &leave.LeaveBalance{
		ID:            fmt.Sprintf("bal-%d", len(f.balances)+1),
		UserID:        userID,
		LeaveTypeID:   lt.ID,
		Year:          year,
		TotalDays:     lt.MaxDaysPerYear,
		UsedDays:      0,
		RemainingDays: lt.MaxDaysPerYear,
	}
	return nil
}

func (f *fakeBalanceRepo) GetByUserTypeYear(_ context.Context, userID, typeID string, year int) (leave.LeaveBalance, error) {
	b, ok := f.balances[balanceKey{userID, typeID, year}]
	if !ok {
		return leave.LeaveBalance{}, leave.ErrBalanceNotFound
	}
	return *b, nil
}

func (f *fakeBalanceRepo) GetByUserYear(_ context.Context, userID string, year int) ([]leave.LeaveBalance, error) {
	out := make([]leave.LeaveBalance, 0)
	for key, b := range f.balances {
		if key.userID == userID && key.year == year {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBalanceRepo) Deduct(_ context.Context, userID, typeID string, year, days int) error {
	b, ok := f.balances[balanceKey{userID, typeID, year}]
	if !ok || b.RemainingDays < days {
		return leave.ErrInsufficientBalance
	}
	b.UsedDays += days
	b.RemainingDays -= days
	return nil
}

type fakeRequestRepo struct {
	requests map[string]*leave.LeaveRequest
	users    *fakeUserRepo
	seq      int
}

func (f *fakeRequestRepo) Create(_ context.Context, r leave.LeaveRequest) (leave.LeaveRequest, error) {
	f.seq++
	r.ID = fmt.Sprintf("req-%d", f.seq)
	r.Status = leave.StatusPending
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	// The real repository resolves this through a join on users.
	if u, ok := f.users.users[r.UserID]; ok {
		r.OwnerManagerID = u.ManagerID
	}
	stored := r
	f.requests[r.ID] = &stored
	return r, nil
}

func (f *fakeRequestRepo) GetByID(_ context.Context, id string) (leave.LeaveRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrRequestNotFound
	}
	return *r, nil
}

func (f *fakeRequestRepo) ListByUser(_ context.Context, userID string, filter leave.RequestFilter) ([]leave.LeaveRequest, error) {
	out := make([]leave.LeaveRequest, 0)
	for _, r := range f.requests {
		if r.UserID != userID {
			continue
		}
		if filter.Status != nil && string(r.Status) != *filter.Status {
			continue
		}
		if filter.Year != nil && r.StartDate.Year() != *filter.Year {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRequestRepo) ListPending(_ context.Context, managerID *string) ([]leave.LeaveRequest, error) {
	out := make([]leave.LeaveRequest, 0)
	for _, r := range f.requests {
		if r.Status != leave.StatusPending {
			continue
		}
		if managerID != nil && (r.OwnerManagerID == nil || *r.OwnerManagerID != *managerID) {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRequestRepo) HasOverlapping(_ context.Context, userID string, start, end time.Time) (bool, error) {
	for _, r := range f.requests {
		if r.UserID != userID {
			continue
		}
		if r.Status != leave.StatusPending && r.Status != leave.StatusApproved {
			continue
		}
		if leave.Overlaps(start, end, r.StartDate, r.EndDate) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRequestRepo) MarkApproved(_ context.Context, id, approverID string, at time.Time) (bool, error) {
	r, ok := f.requests[id]
	if !ok || r.Status != leave.StatusPending {
		return false, nil
	}
	r.Status = leave.StatusApproved
	r.ApprovedBy = &approverID
	r.ApprovedAt = &at
	return true, nil
}

func (f *fakeRequestRepo) MarkRejected(_ context.Context, id, approverID string, at time.Time, reason string) (bool, error) {
	r, ok := f.requests[id]
	if !ok || r.Status != leave.StatusPending {
		return false, nil
	}
	r.Status = leave.StatusRejected
	r.ApprovedBy = &approverID
	r.ApprovedAt = &at
	r.RejectionReason = &reason
	return true, nil
}

func (f *fakeRequestRepo) MarkCancelled(_ context.Context, id string, at time.Time) (bool, error) {
	r, ok := f.requests[id]
	if !ok || r.Status != leave.StatusPending {
		return false, nil
	}
	r.Status = leave.StatusCancelled
	r.CancelledAt = &at
	return true, nil
}

type fakeUserRepo struct {
	users map[string]user.User
}

func (f *fakeUserRepo) Create(_ context.Context, u user.User) (user.User, error) {
	u.ID = fmt.Sprintf("user-%d", len(f.users)+1)
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) List(_ context.Context) ([]user.User, error) {
	out := make([]user.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) ListTeam(_ context.Context, managerID *string, _ int) ([]user.TeamMember, error) {
	out := make([]user.TeamMember, 0)
	for _, u := range f.users {
		if !u.IsActive {
			continue
		}
		if managerID != nil && (u.ManagerID == nil || *u.ManagerID != *managerID) {
			continue
		}
		out = append(out, user.TeamMember{ID: u.ID, Email: u.Email})
	}
	return out, nil
}

func (f *fakeUserRepo) Update(_ context.Context, req user.UpdateUserRequest) error {
	u, ok := f.users[req.ID]
	if !ok {
		return user.ErrUserNotFound
	}
	if req.ManagerID.Set {
		u.ManagerID = req.ManagerID.Value
	}
	f.users[req.ID] = u
	return nil
}

type fakeNotifier struct {
	queued []notification.CreateNotificationRequest
}

func (f *fakeNotifier) Queue(_ context.Context, req notification.CreateNotificationRequest) error {
	f.queued = append(f.queued, req)
	return nil
}

type fakeRecorder struct {
	entries []audit.Entry
}

func (f *fakeRecorder) Record(_ context.Context, e audit.Entry) {
	f.entries = append(f.entries, e)
}

// ---- fixture ----

type fixture struct {
	svc      leave.Service
	types    *fakeTypeRepo
	balances *fakeBalanceRepo
	requests *fakeRequestRepo
	users    *fakeUserRepo
	notifier *fakeNotifier
	audits   *fakeRecorder

	annual leave.LeaveType

	employee user.Actor
	manager  user.Actor
	hr       user.Actor
	outsider user.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := &fakeUserRepo{users: map[string]user.User{}}
	f := &fixture{
		types:    &fakeTypeRepo{types: map[string]leave.LeaveType{}},
		balances: &fakeBalanceRepo{balances: map[balanceKey]*leave.LeaveBalance{}},
		requests: &fakeRequestRepo{requests: map[string]*leave.LeaveRequest{}, users: users},
		users:    users,
		notifier: &fakeNotifier{},
		audits:   &fakeRecorder{},
	}
	f.svc = NewLeaveService(passthroughTxm{}, f.types, f.balances, f.requests, f.users, f.notifier, f.audits)

	ctx := context.Background()
	annual, err := f.types.Create(ctx, leave.LeaveType{Name: "Annual Leave", MaxDaysPerYear: 25})
	require.NoError(t, err)
	f.annual = annual

	managerID := "mgr-1"
	f.users.users["mgr-1"] = user.User{ID: "mgr-1", Email: "manager@example.com", Role: user.RoleManager, IsActive: true, FirstName: "Mara", LastName: "Lin"}
	f.users.users["emp-1"] = user.User{ID: "emp-1", Email: "employee@example.com", Role: user.RoleEmployee, IsActive: true, FirstName: "Evan", LastName: "Ko", ManagerID: &managerID}
	f.users.users["hr-1"] = user.User{ID: "hr-1", Email: "hr@example.com", Role: user.RoleHR, IsActive: true, FirstName: "Hana", LastName: "Rue"}
	f.users.users["mgr-2"] = user.User{ID: "mgr-2", Email: "other@example.com", Role: user.RoleManager, IsActive: true, FirstName: "Omar", LastName: "Diaz"}

	f.employee = user.Actor{ID: "emp-1", Email: "employee@example.com", Role: user.RoleEmployee}
	f.manager = user.Actor{ID: "mgr-1", Email: "manager@example.com", Role: user.RoleManager}
	f.hr = user.Actor{ID: "hr-1", Email: "hr@example.com", Role: user.RoleHR}
	f.outsider = user.Actor{ID: "mgr-2", Email: "other@example.com", Role: user.RoleManager}

	require.NoError(t, f.balances.Initialize(ctx, "emp-1", annual, time.Now().Year()))

	return f
}

func (f *fixture) submitReq(startOffset, endOffset int) leave.SubmitLeaveRequest {
	start := leave.Today().AddDate(0, 0, startOffset)
	end := leave.Today().AddDate(0, 0, endOffset)
	return leave.SubmitLeaveRequest{
		LeaveTypeID: f.annual.ID,
		StartDate:   start.Format("2006-01-02"),
		EndDate:     end.Format("2006-01-02"),
		Reason:      "family trip",
	}
}

func (f *fixture) mustSubmit(t *testing.T, startOffset, endOffset int) leave.LeaveRequest {
	t.Helper()
	request, err := f.svc.Submit(context.Background(), f.employee, f.submitReq(startOffset, endOffset))
	require.NoError(t, err)
	return request
}

// ---- submit ----

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path counts inclusive days and notifies the manager", func(t *testing.T) {
		f := newFixture(t)

		request := f.mustSubmit(t, 30, 34)

		assert.Equal(t, leave.StatusPending, request.Status)
		assert.Equal(t, 5, request.DaysRequested)
		assert.Equal(t, "family trip", request.Reason)

		// Submission never touches the ledger.
		balance, err := f.balances.GetByUserTypeYear(ctx, "emp-1", f.annual.ID, time.Now().Year())
		require.NoError(t, err)
		assert.Equal(t, 25, balance.RemainingDays)
		assert.Equal(t, 0, balance.UsedDays)

		require.Len(t, f.notifier.queued, 1)
		n := f.notifier.queued[0]
		assert.Equal(t, "mgr-1", n.UserID)
		assert.Equal(t, notification.KindInfo, n.Kind)
		assert.Equal(t, "New Leave Request", n.Title)

		require.Len(t, f.audits.entries, 1)
		assert.Equal(t, audit.ActionLeaveSubmitted, f.audits.entries[0].Action)
		assert.Equal(t, "emp-1", f.audits.entries[0].ActorID)
		assert.Equal(t, request.ID, f.audits.entries[0].EntityID)
	})

	t.Run("single day request counts one day", func(t *testing.T) {
		f := newFixture(t)
		request := f.mustSubmit(t, 10, 10)
		assert.Equal(t, 1, request.DaysRequested)
	})

	t.Run("start date in the past", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Submit(ctx, f.employee, f.submitReq(-1, 3))
		assert.ErrorIs(t, err, leave.ErrStartDateInPast)
	})

	t.Run("end before start is a validation error", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Submit(ctx, f.employee, f.submitReq(10, 8))

		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "end_date", verrs[0].Field)
	})

	t.Run("past start wins over inverted dates", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Submit(ctx, f.employee, f.submitReq(-5, -8))
		assert.ErrorIs(t, err, leave.ErrStartDateInPast)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		f := newFixture(t)
		key := balanceKey{"emp-1", f.annual.ID, time.Now().Year()}
		f.balances.balances[key].UsedDays = 24
		f.balances.balances[key].RemainingDays = 1

		_, err := f.svc.Submit(ctx, f.employee, f.submitReq(10, 11))
		assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
		assert.Empty(t, f.notifier.queued)
	})

	t.Run("exact remaining balance is accepted", func(t *testing.T) {
		f := newFixture(t)
		key := balanceKey{"emp-1", f.annual.ID, time.Now().Year()}
		f.balances.balances[key].UsedDays = 23
		f.balances.balances[key].RemainingDays = 2

		request := f.mustSubmit(t, 10, 11)
		assert.Equal(t, 2, request.DaysRequested)
	})

	t.Run("overlapping pending request", func(t *testing.T) {
		f := newFixture(t)
		f.mustSubmit(t, 10, 14)

		_, err := f.svc.Submit(ctx, f.employee, f.submitReq(14, 16))
		assert.ErrorIs(t, err, leave.ErrOverlappingRequest)
	})

	t.Run("rejected request does not block the window", func(t *testing.T) {
		f := newFixture(t)
		first := f.mustSubmit(t, 10, 14)

		require.NoError(t, f.svc.Reject(ctx, f.manager, leave.RejectLeaveRequest{RequestID: first.ID, Reason: "coverage gap"}))

		_, err := f.svc.Submit(ctx, f.employee, f.submitReq(12, 13))
		assert.NoError(t, err)
	})

	t.Run("inactive leave type", func(t *testing.T) {
		f := newFixture(t)
		inactive := false
		require.NoError(t, f.types.Update(ctx, leave.UpdateLeaveTypeRequest{ID: f.annual.ID, IsActive: &inactive}))

		_, err := f.svc.Submit(ctx, f.employee, f.submitReq(10, 12))
		assert.ErrorIs(t, err, leave.ErrLeaveTypeInactive)
	})

	t.Run("past start wins over an inactive type", func(t *testing.T) {
		f := newFixture(t)
		inactive := false
		require.NoError(t, f.types.Update(ctx, leave.UpdateLeaveTypeRequest{ID: f.annual.ID, IsActive: &inactive}))

		_, err := f.svc.Submit(ctx, f.employee, f.submitReq(-3, -1))
		assert.ErrorIs(t, err, leave.ErrStartDateInPast)
	})

	t.Run("past start wins over an unknown type", func(t *testing.T) {
		f := newFixture(t)
		req := f.submitReq(-3, -1)
		req.LeaveTypeID = "type-missing"

		_, err := f.svc.Submit(ctx, f.employee, req)
		assert.ErrorIs(t, err, leave.ErrStartDateInPast)
	})

	t.Run("unknown leave type", func(t *testing.T) {
		f := newFixture(t)
		req := f.submitReq(10, 12)
		req.LeaveTypeID = "type-missing"

		_, err := f.svc.Submit(ctx, f.employee, req)
		assert.ErrorIs(t, err, leave.ErrLeaveTypeNotFound)
	})

	t.Run("no manager means no notification", func(t *testing.T) {
		f := newFixture(t)
		u := f.users.users["emp-1"]
		u.ManagerID = nil
		f.users.users["emp-1"] = u

		f.mustSubmit(t, 10, 12)
		assert.Empty(t, f.notifier.queued)
	})
}

// ---- approve ----

func TestApprove(t *testing.T) {
	ctx := context.Background()
	year := time.Now().Year()

	t.Run("manager approval deducts the ledger and notifies the requester", func(t *testing.T) {
		f := newFixture(t)
		request := f.mustSubmit(t, 10, 14)
		f.notifier.queued = nil

		require.NoError(t, f.svc.Approve(ctx, f.manager, request.ID))

		stored, err := f.requests.GetByID(ctx, request.ID)
		require.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, stored.Status)
		require.NotNil(t, stored.ApprovedBy)
		assert.Equal(t, "mgr-1", *stored.ApprovedBy)

		balance, err := f.balances.GetByUserTypeYear(ctx, "emp-1", f.annual.ID, year)
		require.NoError(t, err)
		assert.Equal(t, 5, balance.UsedDays)
		assert.Equal(t, 20, balance.RemainingDays)

		require.Len(t, f.notifier.queued, 1)
		assert.Equal(t, "emp-1", f.notifier.queued[0].UserID)
		assert.Equal(t, notification.KindSuccess, f.notifier.queued[0].Kind)

		// Submit recorded one entry; approval appends the second.
		require.Len(t, f.audits.entries, 2)
		assert.Equal(t, audit.ActionLeaveApproved, f.audits.entries[1].Action)
		assert.Equal(t, "mgr-1", f.audits.entries[1].ActorID)
	})

	t.Run("hr can approve anyone", func(t *testing.T) {
		f := newFixture(t)
		request := f.mustSubmit(t, 10, 11)

		require.NoError(t, f.svc.Approve(ctx, f.hr, request.ID))
	})

	t.Run("unrelated manager is forbidden", func(t *testing.T) {
		f := newFixture(t)
		request := f.mustSubmit(t, 10, 11)

		err := f.svc.Approve(ctx, f.outsider, request.ID)
		assert.ErrorIs(t, err, user.ErrForbidden)

		stored, _ := f.requests.GetByID(ctx, request.ID)
		assert.Equal(t, leave.StatusPending, stored.Status)
	})

	t.Run("employee cannot approve", func(t *testing.T) {
		f := newFixture(t)
		request := f.mustSubmit(t, 10, 11)

		err := f.svc.Approve(ctx, f.employee, request.ID)
		assert.ErrorIs(t, err, user.ErrForbidden)
	})

	t.Run("already processed request conflicts and leaves the ledger alone", func(t *testing.T) {
		f := newFixture(t)
		request := f.mustSubmit(t, 10, 14)
		require.NoError(t, f.svc.Approve(ctx, f.manager, request.ID))

		err := f.svc.Approve(ctx, f.manager, request.ID)
		assert.ErrorIs(t, err, leave.ErrRequestAlreadyProcessed)

		// One deduction only.
		balance, _ := f.balances.GetByUserTypeYear(ctx, "emp-1", f.annual.ID, year)
		assert.Equal(t, 5, balance.UsedDays)
	})

	t.Run("missing request", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.Approve(ctx, f.manager, "req-404")
		assert.ErrorIs(t, err, leave.ErrRequestNotFound)
	})

	t.Run("insufficient balance at approval time surfaces", func(t *testing.T) {
		f := newFixture(t)
		request := f.mustSubmit(t, 10, 14)

		// Balance drained between submit and approve.
		key := balanceKey{"emp-1", f.annual.ID, year}
		f.balances.balances[key].UsedDays = 23
		f.balances.balances[key].RemainingDays = 2

		err := f.svc.Approve(ctx, f.manager, request.ID)
		assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
	})
}

// ---- reject ----

func TestReject(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the reason verbatim and notifies with it", func(t *testing.T) {
		f := newFixture(t)
		request := f.mustSubmit(t, 10, 12)
		f.notifier.queued = nil

		reason := "  Team is at capacity that week.  "
		require.NoError(t, f.svc.Reject(ctx, f.manager, leave.RejectLeaveRequest{RequestID: request.ID, Reason: reason}))

		stored, err := f.requests.GetByID(ctx, request.ID)
		require.NoError(t, err)
		assert.Equal(t, leave.StatusRejected, stored.Status)
		require.NotNil(t, stored.RejectionReason)
		assert.Equal(t, reason, *stored.RejectionReason)

		// No ledger effect.
		balance, _ := f.balances.GetByUserTypeYear(ctx, "emp-1", f.annual.ID, time.Now().Year())
		assert.Equal(t, 0, balance.UsedDays)

		require.Len(t, f.notifier.queued, 1)
		assert.Equal(t, notification.KindError, f.notifier.queued[0].Kind)
		assert.Contains(t, f.notifier.queued[0].Message, reason)

		last := f.audits.entries[len(f.audits.entries)-1]
		assert.Equal(t, audit.ActionLeaveRejected, last.Action)
		require.NotNil(t, last.Detail)
		assert.Equal(t, reason, *last.Detail)
	})

	t.Run("empty reason is a validation error", func(t *testing.T) {
		f := newFixture(t)
		request := f.mustSubmit(t, 10, 12)

		err := f.svc.Reject(ctx, f.manager, leave.RejectLeaveRequest{RequestID: request.ID, Reason: "   "})

		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})

	t.Run("already processed conflicts", func(t *testing.T) {
		f := newFixture(t)
		request := f.mustSubmit(t, 10, 12)
		require.NoError(t, f.svc.Approve(ctx, f.manager, request.ID))

		err := f.svc.Reject(ctx, f.manager, leave.RejectLeaveRequest{RequestID: request.ID, Reason: "late"})
		assert.ErrorIs(t, err, leave.ErrRequestAlreadyProcessed)
	})

	t.Run("unrelated manager is forbidden", func(t *testing.T) {
		f := newFixture(t)
		request := f.mustSubmit(t, 10, 12)

		err := f.svc.Reject(ctx, f.outsider, leave.RejectLeaveRequest{RequestID: request.ID, Reason: "no"})
		assert.ErrorIs(t, err, user.ErrForbidden)
	})
}

// ---- cancel ----

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("owner cancels a pending request", func(t *testing.T) {
		f := newFixture(t)
		request := f.mustSubmit(t, 10, 12)

		require.NoError(t, f.svc.Cancel(ctx, f.employee, request.ID))

		stored, _ := f.requests.GetByID(ctx, request.ID)
		assert.Equal(t, leave.StatusCancelled, stored.Status)
		assert.NotNil(t, stored.CancelledAt)

		balance, _ := f.balances.GetByUserTypeYear(ctx, "emp-1", f.annual.ID, time.Now().Year())
		assert.Equal(t, 0, balance.UsedDays)

		last := f.audits.entries[len(f.audits.entries)-1]
		assert.Equal(t, audit.ActionLeaveCancelled, last.Action)
		assert.Equal(t, "emp-1", last.ActorID)
	})

	t.Run("non-owner cannot cancel, even hr", func(t *testing.T) {
		f := newFixture(t)
		request := f.mustSubmit(t, 10, 12)

		assert.ErrorIs(t, f.svc.Cancel(ctx, f.manager, request.ID), leave.ErrNotRequestOwner)
		assert.ErrorIs(t, f.svc.Cancel(ctx, f.hr, request.ID), leave.ErrNotRequestOwner)
	})

	t.Run("approved request cannot be cancelled", func(t *testing.T) {
		f := newFixture(t)
		request := f.mustSubmit(t, 10, 12)
		require.NoError(t, f.svc.Approve(ctx, f.manager, request.ID))

		err := f.svc.Cancel(ctx, f.employee, request.ID)
		assert.ErrorIs(t, err, leave.ErrRequestAlreadyProcessed)
	})
}

// ---- queries ----

func TestPendingApprovals(t *testing.T) {
	ctx := context.Background()

	t.Run("manager sees only direct reports", func(t *testing.T) {
		f := newFixture(t)
		f.mustSubmit(t, 10, 12)

		pending, err := f.svc.PendingApprovals(ctx, f.manager)
		require.NoError(t, err)
		require.Len(t, pending, 1)

		pending, err = f.svc.PendingApprovals(ctx, f.outsider)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("hr sees everything", func(t *testing.T) {
		f := newFixture(t)
		f.mustSubmit(t, 10, 12)

		pending, err := f.svc.PendingApprovals(ctx, f.hr)
		require.NoError(t, err)
		assert.Len(t, pending, 1)
	})

	t.Run("employee is forbidden", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.PendingApprovals(ctx, f.employee)
		assert.ErrorIs(t, err, user.ErrForbidden)
	})
}

func TestMyRequests(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t)
	first := f.mustSubmit(t, 10, 12)
	f.mustSubmit(t, 20, 22)
	require.NoError(t, f.svc.Approve(ctx, f.manager, first.ID))

	all, err := f.svc.MyRequests(ctx, f.employee, leave.RequestFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	approved := string(leave.StatusApproved)
	filtered, err := f.svc.MyRequests(ctx, f.employee, leave.RequestFilter{Status: &approved})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, first.ID, filtered[0].ID)

	bogus := "archived"
	_, err = f.svc.MyRequests(ctx, f.employee, leave.RequestFilter{Status: &bogus})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

// ---- types and balances ----

func TestLeaveTypes(t *testing.T) {
	ctx := context.Background()

	t.Run("hr creates and disables types", func(t *testing.T) {
		f := newFixture(t)

		sick, err := f.svc.CreateType(ctx, f.hr, leave.CreateLeaveTypeRequest{Name: "Sick Leave", MaxDaysPerYear: 10})
		require.NoError(t, err)
		assert.True(t, sick.IsActive)

		inactive := false
		require.NoError(t, f.svc.UpdateType(ctx, f.hr, leave.UpdateLeaveTypeRequest{ID: sick.ID, IsActive: &inactive}))

		stored, err := f.types.GetByID(ctx, sick.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsActive)
	})

	t.Run("manager and employee are forbidden", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.CreateType(ctx, f.manager, leave.CreateLeaveTypeRequest{Name: "Sick Leave", MaxDaysPerYear: 10})
		assert.ErrorIs(t, err, user.ErrForbidden)

		_, err = f.svc.CreateType(ctx, f.employee, leave.CreateLeaveTypeRequest{Name: "Sick Leave", MaxDaysPerYear: 10})
		assert.ErrorIs(t, err, user.ErrForbidden)
	})

	t.Run("duplicate name", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CreateType(ctx, f.hr, leave.CreateLeaveTypeRequest{Name: "Annual Leave", MaxDaysPerYear: 20})
		assert.ErrorIs(t, err, leave.ErrLeaveTypeNameExists)
	})
}

func TestInitializeBalances(t *testing.T) {
	ctx := context.Background()
	year := time.Now().Year()

	t.Run("creates one row per active type and is idempotent", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CreateType(ctx, f.hr, leave.CreateLeaveTypeRequest{Name: "Sick Leave", MaxDaysPerYear: 10})
		require.NoError(t, err)

		require.NoError(t, f.svc.InitializeBalances(ctx, "mgr-1", year))

		balances, err := f.balances.GetByUserYear(ctx, "mgr-1", year)
		require.NoError(t, err)
		assert.Len(t, balances, 2)

		// Re-running after usage re-caps totals but keeps used days.
		key := balanceKey{"mgr-1", f.annual.ID, year}
		f.balances.balances[key].UsedDays = 3
		f.balances.balances[key].RemainingDays = 22

		require.NoError(t, f.svc.InitializeBalances(ctx, "mgr-1", year))
		assert.Equal(t, 3, f.balances.balances[key].UsedDays)
		assert.Equal(t, 22, f.balances.balances[key].RemainingDays)
	})
}
