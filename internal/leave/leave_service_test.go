package leave_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-faculty-leave/internal/authz"
	authzerrors "go-faculty-leave/internal/authz/errors"
	"go-faculty-leave/internal/balance"
	balanceerrors "go-faculty-leave/internal/balance/errors"
	"go-faculty-leave/internal/domain"
	"go-faculty-leave/internal/employee"
	employeeerrors "go-faculty-leave/internal/employee/errors"
	"go-faculty-leave/internal/events"
	"go-faculty-leave/internal/leave"
	leaveerrors "go-faculty-leave/internal/leave/errors"
	"go-faculty-leave/internal/messaging/kafka"
	kafkaMock "go-faculty-leave/internal/messaging/kafka/mock"
	"go-faculty-leave/internal/shared/apperror"
	"go-faculty-leave/internal/shared/contextutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type fakeRepository struct {
	createFn           func(ctx context.Context, l *leave.LeaveRequest) error
	getFn              func(ctx context.Context, id string) (*leave.LeaveRequest, error)
	findByIDFn         func(ctx context.Context, id string) (*leave.LeaveRequest, error)
	findByRequesterFn  func(ctx context.Context, requesterID string) ([]leave.LeaveRequest, error)
	findPendingFn      func(ctx context.Context, department string) ([]leave.LeaveRequest, error)
	findDecidedFn      func(ctx context.Context, department string, limit int) ([]leave.LeaveRequest, error)
	transitionFn       func(ctx context.Context, id string, from, to domain.Status) (bool, error)
	createDecisionFn   func(ctx context.Context, d *leave.LeaveDecision) error
	findDecisionFn     func(ctx context.Context, leaveID string) (*leave.LeaveDecision, error)
	countByStatusFn    func(ctx context.Context, department string, status domain.Status) (int64, error)
	countDecidedSince  func(ctx context.Context, department string, outcome domain.Outcome, since time.Time) (int64, error)
	transitionCalls    int
	createDecisionCall int
}

func (f *fakeRepository) WithTx(*sql.Tx) leave.Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, l *leave.LeaveRequest) error {
	if f.createFn != nil {
		return f.createFn(ctx, l)
	}
	return nil
}

func (f *fakeRepository) Get(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) FindByID(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) FindByRequester(ctx context.Context, requesterID string) ([]leave.LeaveRequest, error) {
	if f.findByRequesterFn != nil {
		return f.findByRequesterFn(ctx, requesterID)
	}
	return nil, nil
}

func (f *fakeRepository) FindPendingByDepartment(ctx context.Context, department string) ([]leave.LeaveRequest, error) {
	if f.findPendingFn != nil {
		return f.findPendingFn(ctx, department)
	}
	return nil, nil
}

func (f *fakeRepository) FindDecidedByDepartment(ctx context.Context, department string, limit int) ([]leave.LeaveRequest, error) {
	if f.findDecidedFn != nil {
		return f.findDecidedFn(ctx, department, limit)
	}
	return nil, nil
}

func (f *fakeRepository) TransitionStatus(ctx context.Context, id string, from, to domain.Status) (bool, error) {
	f.transitionCalls++
	if f.transitionFn != nil {
		return f.transitionFn(ctx, id, from, to)
	}
	return true, nil
}

func (f *fakeRepository) CreateDecision(ctx context.Context, d *leave.LeaveDecision) error {
	f.createDecisionCall++
	if f.createDecisionFn != nil {
		return f.createDecisionFn(ctx, d)
	}
	return nil
}

func (f *fakeRepository) FindDecision(ctx context.Context, leaveID string) (*leave.LeaveDecision, error) {
	if f.findDecisionFn != nil {
		return f.findDecisionFn(ctx, leaveID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) CountByDepartmentStatus(ctx context.Context, department string, status domain.Status) (int64, error) {
	if f.countByStatusFn != nil {
		return f.countByStatusFn(ctx, department, status)
	}
	return 0, nil
}

func (f *fakeRepository) CountDecidedSince(ctx context.Context, department string, outcome domain.Outcome, since time.Time) (int64, error) {
	if f.countDecidedSince != nil {
		return f.countDecidedSince(ctx, department, outcome, since)
	}
	return 0, nil
}

type fakeLedger struct {
	checkFn     func(view domain.BalanceView, t domain.LeaveType, days int) balance.Availability
	deductFn    func(ctx context.Context, employeeID string, t domain.LeaveType, days int) error
	deductCalls int
}

func (f *fakeLedger) WithTx(*sql.Tx) balance.Ledger { return f }

func (f *fakeLedger) CheckAvailable(view domain.BalanceView, t domain.LeaveType, days int) balance.Availability {
	if f.checkFn != nil {
		return f.checkFn(view, t, days)
	}
	return balance.Availability{Sufficient: true}
}

func (f *fakeLedger) Deduct(ctx context.Context, employeeID string, t domain.LeaveType, days int) error {
	f.deductCalls++
	if f.deductFn != nil {
		return f.deductFn(ctx, employeeID, t, days)
	}
	return nil
}

func (f *fakeLedger) Reverse(context.Context, string, domain.LeaveType, int) error { return nil }

func (f *fakeLedger) Get(context.Context, string) (domain.BalanceView, error) {
	return domain.BalanceView{}, nil
}

type fakeDirectory struct {
	employees   map[string]employee.Employee
	faculty     map[string]int64
	invalidated []string
}

func newFakeDirectory(emps ...employee.Employee) *fakeDirectory {
	d := &fakeDirectory{employees: map[string]employee.Employee{}, faculty: map[string]int64{}}
	for _, e := range emps {
		d.employees[e.ID.String()] = e
	}
	return d
}

func (d *fakeDirectory) ResolveRequester(_ context.Context, id string) (employee.Employee, error) {
	e, ok := d.employees[id]
	if !ok {
		return employee.Employee{}, employeeerrors.ErrEmployeeNotFound
	}
	return e, nil
}

func (d *fakeDirectory) ResolveBalance(_ context.Context, emp employee.Employee) (domain.BalanceView, error) {
	return emp.Balance(), nil
}

func (d *fakeDirectory) CountFaculty(_ context.Context, department string) (int64, error) {
	return d.faculty[department], nil
}

func (d *fakeDirectory) InvalidateDepartmentFaculty(_ context.Context, department string) {
	d.invalidated = append(d.invalidated, department)
}

func strPtr(v string) *string { return &v }

func newFaculty(department string) employee.Employee {
	return employee.Employee{
		ID:           uuid.New(),
		Name:         "Faculty " + department,
		Role:         domain.RoleFaculty,
		Department:   department,
		CasualLeave:  12,
		MedicalLeave: 15,
		EarnedLeave:  30,
		IsActive:     true,
	}
}

func newHead(department string) employee.Employee {
	return employee.Employee{
		ID:         uuid.New(),
		Name:       "Head " + department,
		Role:       domain.RoleDepartmentHead,
		Department: department,
		HeadOf:     strPtr(department),
		IsActive:   true,
	}
}

func pendingLeave(requester employee.Employee, days int) *leave.LeaveRequest {
	return &leave.LeaveRequest{
		ID:          uuid.New(),
		RequesterID: requester.ID,
		LeaveType:   domain.LeaveTypeCasual,
		StartDate:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 3, 2+days-1, 0, 0, 0, 0, time.UTC),
		Reason:      "family function",
		Days:        days,
		Department:  requester.Department,
		Status:      domain.StatusPending,
		SubmittedAt: time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC),
	}
}

type serviceDeps struct {
	service   leave.Service
	repo      *fakeRepository
	ledger    *fakeLedger
	directory *fakeDirectory
	outbox    *kafkaMock.MockOutboxRepository
	sqlMock   sqlmock.Sqlmock
}

func setupServiceTest(t *testing.T, emps ...employee.Employee) *serviceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	enforcer, err := authz.NewEnforcer()
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	outbox := kafkaMock.NewMockOutboxRepository(ctrl)

	repo := &fakeRepository{}
	ledger := &fakeLedger{}
	directory := newFakeDirectory(emps...)

	svc := leave.NewServiceWithOutbox(db, repo, ledger, directory, authz.NewGuard(enforcer), outbox)

	return &serviceDeps{
		service:   svc,
		repo:      repo,
		ledger:    ledger,
		directory: directory,
		outbox:    outbox,
		sqlMock:   sqlMock,
	}
}

func validSubmit() leave.SubmitLeaveRequest {
	return leave.SubmitLeaveRequest{
		LeaveType: "CASUAL",
		FromDate:  "2026-03-02",
		ToDate:    "2026-03-04",
		Reason:    "family function",
	}
}

func TestService_Submit(t *testing.T) {
	t.Run("validation failures", func(t *testing.T) {
		requester := newFaculty("CSE")

		tests := []struct {
			name    string
			mutate  func(r *leave.SubmitLeaveRequest)
			wantErr error
		}{
			{"unknown leave type", func(r *leave.SubmitLeaveRequest) { r.LeaveType = "SABBATICAL" }, leaveerrors.ErrInvalidLeaveType},
			{"bad from date", func(r *leave.SubmitLeaveRequest) { r.FromDate = "02/03/2026" }, leaveerrors.ErrInvalidDateFormat},
			{"bad to date", func(r *leave.SubmitLeaveRequest) { r.ToDate = "2026-13-01" }, leaveerrors.ErrInvalidDateFormat},
			{"bad from time", func(r *leave.SubmitLeaveRequest) { r.FromTime = strPtr("25:00") }, leaveerrors.ErrInvalidTimeFormat},
			{"blank reason", func(r *leave.SubmitLeaveRequest) { r.Reason = "   " }, leaveerrors.ErrReasonRequired},
			{"range longer than a year", func(r *leave.SubmitLeaveRequest) {
				r.FromDate, r.ToDate = "2026-01-01", "2027-01-02"
			}, leaveerrors.ErrLeaveTooLong},
			{"multi-century range", func(r *leave.SubmitLeaveRequest) {
				r.FromDate, r.ToDate = "0001-01-01", "9999-12-31"
			}, leaveerrors.ErrLeaveTooLong},
			{"inverted multi-century range", func(r *leave.SubmitLeaveRequest) {
				r.FromDate, r.ToDate = "2026-01-01", "1700-01-01"
			}, leaveerrors.ErrLeaveTooLong},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				deps := setupServiceTest(t, requester)
				req := validSubmit()
				tt.mutate(&req)

				_, err := deps.service.Submit(context.Background(), requester.ID.String(), req)

				assert.ErrorIs(t, err, tt.wantErr)
				assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
			})
		}
	})

	t.Run("unknown requester", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Submit(context.Background(), uuid.NewString(), validSubmit())

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("insufficient balance persists nothing", func(t *testing.T) {
		requester := newFaculty("CSE")
		requester.CasualLeave = 2
		deps := setupServiceTest(t, requester)

		available := 2
		deps.ledger.checkFn = func(view domain.BalanceView, lt domain.LeaveType, days int) balance.Availability {
			assert.Equal(t, 2, view.Casual)
			assert.Equal(t, 3, days)
			return balance.Availability{Sufficient: false, Available: &available}
		}
		deps.repo.createFn = func(context.Context, *leave.LeaveRequest) error {
			t.Fatal("create must not be called")
			return nil
		}

		_, err := deps.service.Submit(context.Background(), requester.ID.String(), validSubmit())

		assert.ErrorIs(t, err, balanceerrors.ErrInsufficientBalance)
		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, map[string]any{"leave_type": "CASUAL", "available": 2, "requested": 3}, appErr.Details)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success queues submitted event", func(t *testing.T) {
		requester := newFaculty("CSE")
		deps := setupServiceTest(t, requester)
		ctx := contextutil.WithRequestID(context.Background(), "req-1")

		var created *leave.LeaveRequest
		deps.repo.createFn = func(_ context.Context, l *leave.LeaveRequest) error {
			created = l
			return nil
		}

		deps.sqlMock.ExpectBegin()
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ev kafka.OutboxEvent) error {
			assert.Equal(t, events.LeaveSubmittedTopic, ev.Topic)
			assert.Equal(t, events.LeaveSubmittedEventType, ev.EventType)
			assert.Equal(t, events.LeaveAggregateType, ev.AggregateType)
			assert.Equal(t, "req-1", ev.RequestID)

			var payload events.LeaveSubmittedEvent
			require.NoError(t, json.Unmarshal(ev.Payload, &payload))
			assert.Equal(t, ev.AggregateID, payload.LeaveID)
			assert.Equal(t, 3, payload.Days)
			assert.Equal(t, "CSE", payload.Department)
			return nil
		})
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Submit(ctx, requester.ID.String(), validSubmit())

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, 3, resp.Days)
		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, "pending", resp.HeadStatus)
		assert.Equal(t, "CSE", resp.Department)
		assert.Equal(t, "Casual Leave", resp.LeaveTypeLabel)
		assert.Equal(t, requester.Name, resp.RequesterName)
		assert.Equal(t, created.ID.String(), resp.ID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("inverted range is accepted", func(t *testing.T) {
		requester := newFaculty("CSE")
		deps := setupServiceTest(t, requester)

		deps.sqlMock.ExpectBegin()
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		deps.sqlMock.ExpectCommit()

		req := validSubmit()
		req.FromDate, req.ToDate = req.ToDate, req.FromDate
		resp, err := deps.service.Submit(context.Background(), requester.ID.String(), req)

		require.NoError(t, err)
		assert.Equal(t, 3, resp.Days)
	})

	t.Run("outbox failure rolls back", func(t *testing.T) {
		requester := newFaculty("CSE")
		deps := setupServiceTest(t, requester)

		deps.sqlMock.ExpectBegin()
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("insert failed"))
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Submit(context.Background(), requester.ID.String(), validSubmit())

		assert.EqualError(t, err, "insert failed")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestService_Decide(t *testing.T) {
	approve := leave.DecideLeaveRequest{Outcome: "approved", Remarks: strPtr("enjoy")}
	reject := leave.DecideLeaveRequest{Outcome: "rejected"}

	t.Run("invalid outcome", func(t *testing.T) {
		head := newHead("CSE")
		deps := setupServiceTest(t, head)

		_, err := deps.service.Decide(context.Background(), head.ID.String(), uuid.NewString(), leave.DecideLeaveRequest{Outcome: "maybe"})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidOutcome)
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		head := newHead("CSE")
		deps := setupServiceTest(t, head)

		_, err := deps.service.Decide(context.Background(), head.ID.String(), "not-a-uuid", approve)

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("missing request", func(t *testing.T) {
		head := newHead("CSE")
		deps := setupServiceTest(t, head)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Decide(context.Background(), head.ID.String(), uuid.NewString(), approve)

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("head of another department is forbidden", func(t *testing.T) {
		requester := newFaculty("CSE")
		head := newHead("ECE")
		deps := setupServiceTest(t, requester, head)
		l := pendingLeave(requester, 3)
		deps.repo.getFn = func(context.Context, string) (*leave.LeaveRequest, error) { return l, nil }

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Decide(context.Background(), head.ID.String(), l.ID.String(), approve)

		assert.ErrorIs(t, err, authzerrors.ErrOutsideDepartment)
		assert.Equal(t, 403, apperror.ToHTTP(err).Status)
		assert.Zero(t, deps.repo.transitionCalls)
		assert.Zero(t, deps.ledger.deductCalls)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("faculty cannot decide", func(t *testing.T) {
		requester := newFaculty("CSE")
		peer := newFaculty("CSE")
		deps := setupServiceTest(t, requester, peer)
		l := pendingLeave(requester, 3)
		deps.repo.getFn = func(context.Context, string) (*leave.LeaveRequest, error) { return l, nil }

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Decide(context.Background(), peer.ID.String(), l.ID.String(), approve)

		assert.ErrorIs(t, err, authzerrors.ErrNotDepartmentHead)
	})

	t.Run("approve deducts and records decision", func(t *testing.T) {
		requester := newFaculty("CSE")
		head := newHead("CSE")
		deps := setupServiceTest(t, requester, head)
		l := pendingLeave(requester, 3)
		deps.repo.getFn = func(context.Context, string) (*leave.LeaveRequest, error) { return l, nil }
		deps.repo.transitionFn = func(_ context.Context, id string, from, to domain.Status) (bool, error) {
			assert.Equal(t, l.ID.String(), id)
			assert.Equal(t, domain.StatusPending, from)
			assert.Equal(t, domain.StatusApproved, to)
			return true, nil
		}
		deps.ledger.deductFn = func(_ context.Context, employeeID string, lt domain.LeaveType, days int) error {
			assert.Equal(t, requester.ID.String(), employeeID)
			assert.Equal(t, domain.LeaveTypeCasual, lt)
			assert.Equal(t, 3, days)
			return nil
		}
		var recorded *leave.LeaveDecision
		deps.repo.createDecisionFn = func(_ context.Context, d *leave.LeaveDecision) error {
			recorded = d
			return nil
		}

		deps.sqlMock.ExpectBegin()
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ev kafka.OutboxEvent) error {
			assert.Equal(t, events.LeaveDecidedTopic, ev.Topic)
			var payload events.LeaveDecidedEvent
			require.NoError(t, json.Unmarshal(ev.Payload, &payload))
			assert.Equal(t, "approved", payload.Outcome)
			assert.Equal(t, head.ID.String(), payload.DecidedBy)
			return nil
		})
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Decide(context.Background(), head.ID.String(), l.ID.String(), approve)

		require.NoError(t, err)
		assert.Equal(t, 1, deps.ledger.deductCalls)
		require.NotNil(t, recorded)
		assert.Equal(t, domain.OutcomeApproved, recorded.Outcome)
		assert.Equal(t, head.ID, recorded.DecidedBy)
		assert.Equal(t, domain.ApprovalTierDepartmentHead, recorded.Tier)
		assert.Equal(t, "approved", resp.Status)
		assert.Equal(t, resp.Status, resp.HeadStatus)
		require.NotNil(t, resp.Decision)
		assert.Equal(t, "enjoy", *resp.Decision.Remarks)
		assert.Equal(t, []string{"CSE"}, deps.directory.invalidated)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("reject leaves balance untouched", func(t *testing.T) {
		requester := newFaculty("CSE")
		head := newHead("CSE")
		deps := setupServiceTest(t, requester, head)
		l := pendingLeave(requester, 3)
		deps.repo.getFn = func(context.Context, string) (*leave.LeaveRequest, error) { return l, nil }

		deps.sqlMock.ExpectBegin()
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Decide(context.Background(), head.ID.String(), l.ID.String(), reject)

		require.NoError(t, err)
		assert.Zero(t, deps.ledger.deductCalls)
		assert.Empty(t, deps.directory.invalidated)
		assert.Equal(t, "rejected", resp.Status)
		assert.Equal(t, "rejected", resp.HeadStatus)
	})

	t.Run("repeating the recorded outcome is a no-op", func(t *testing.T) {
		requester := newFaculty("CSE")
		head := newHead("CSE")
		deps := setupServiceTest(t, requester, head)
		l := pendingLeave(requester, 3)
		l.Status = domain.StatusApproved
		deps.repo.getFn = func(context.Context, string) (*leave.LeaveRequest, error) { return l, nil }
		deps.repo.findDecisionFn = func(context.Context, string) (*leave.LeaveDecision, error) {
			return &leave.LeaveDecision{LeaveRequestID: l.ID, Outcome: domain.OutcomeApproved, DecidedBy: head.ID, Tier: domain.ApprovalTierDepartmentHead}, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		resp, err := deps.service.Decide(context.Background(), head.ID.String(), l.ID.String(), approve)

		require.NoError(t, err)
		assert.Equal(t, "approved", resp.Status)
		assert.Equal(t, "approved", resp.HeadStatus)
		assert.Zero(t, deps.repo.transitionCalls)
		assert.Zero(t, deps.ledger.deductCalls)
		assert.Zero(t, deps.repo.createDecisionCall)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("changing a recorded outcome is rejected", func(t *testing.T) {
		requester := newFaculty("CSE")
		head := newHead("CSE")
		deps := setupServiceTest(t, requester, head)
		l := pendingLeave(requester, 3)
		l.Status = domain.StatusRejected
		deps.repo.getFn = func(context.Context, string) (*leave.LeaveRequest, error) { return l, nil }

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Decide(context.Background(), head.ID.String(), l.ID.String(), approve)

		assert.ErrorIs(t, err, leaveerrors.ErrAlreadyDecided)
		assert.Zero(t, deps.ledger.deductCalls)
	})

	t.Run("losing the status race is already decided", func(t *testing.T) {
		requester := newFaculty("CSE")
		head := newHead("CSE")
		deps := setupServiceTest(t, requester, head)
		l := pendingLeave(requester, 3)
		deps.repo.getFn = func(context.Context, string) (*leave.LeaveRequest, error) { return l, nil }
		deps.repo.transitionFn = func(context.Context, string, domain.Status, domain.Status) (bool, error) { return false, nil }

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Decide(context.Background(), head.ID.String(), l.ID.String(), approve)

		assert.ErrorIs(t, err, leaveerrors.ErrAlreadyDecided)
		assert.Zero(t, deps.ledger.deductCalls)
	})

	t.Run("insufficient balance at approval rolls back", func(t *testing.T) {
		requester := newFaculty("CSE")
		head := newHead("CSE")
		deps := setupServiceTest(t, requester, head)
		l := pendingLeave(requester, 6)
		deps.repo.getFn = func(context.Context, string) (*leave.LeaveRequest, error) { return l, nil }
		deps.ledger.deductFn = func(context.Context, string, domain.LeaveType, int) error {
			return balanceerrors.InsufficientBalance(domain.LeaveTypeCasual, 4, 6)
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Decide(context.Background(), head.ID.String(), l.ID.String(), approve)

		assert.ErrorIs(t, err, balanceerrors.ErrInsufficientBalance)
		assert.Zero(t, deps.repo.createDecisionCall)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("duplicate decision row maps to already decided", func(t *testing.T) {
		requester := newFaculty("CSE")
		head := newHead("CSE")
		deps := setupServiceTest(t, requester, head)
		l := pendingLeave(requester, 1)
		deps.repo.getFn = func(context.Context, string) (*leave.LeaveRequest, error) { return l, nil }
		deps.repo.createDecisionFn = func(context.Context, *leave.LeaveDecision) error {
			return errors.New("UNIQUE constraint failed: leave_decisions.leave_request_id")
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Decide(context.Background(), head.ID.String(), l.ID.String(), reject)

		assert.ErrorIs(t, err, leaveerrors.ErrAlreadyDecided)
	})
}

func TestService_GetByID(t *testing.T) {
	requester := newFaculty("CSE")
	peer := newFaculty("CSE")
	head := newHead("CSE")
	otherHead := newHead("ECE")
	l := pendingLeave(requester, 2)

	tests := []struct {
		name    string
		actor   employee.Employee
		id      string
		wantErr error
	}{
		{"requester", requester, l.ID.String(), nil},
		{"own department head", head, l.ID.String(), nil},
		{"peer faculty", peer, l.ID.String(), authzerrors.ErrNotRequester},
		{"other department head", otherHead, l.ID.String(), authzerrors.ErrNotRequester},
		{"missing", requester, uuid.NewString(), leaveerrors.ErrLeaveNotFound},
		{"malformed", requester, "123", leaveerrors.ErrLeaveNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := setupServiceTest(t, requester, peer, head, otherHead)
			deps.repo.findByIDFn = func(_ context.Context, id string) (*leave.LeaveRequest, error) {
				if id == l.ID.String() {
					return l, nil
				}
				return nil, gorm.ErrRecordNotFound
			}

			resp, err := deps.service.GetByID(context.Background(), tt.actor.ID.String(), tt.id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, l.ID.String(), resp.ID)
		})
	}
}

func TestService_ListDecisionHistory(t *testing.T) {
	head := newHead("CSE")

	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"default", 0, 50},
		{"negative", -3, 50},
		{"explicit", 10, 10},
		{"capped", 1000, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := setupServiceTest(t, head)
			deps.repo.findDecidedFn = func(_ context.Context, department string, limit int) ([]leave.LeaveRequest, error) {
				assert.Equal(t, "CSE", department)
				assert.Equal(t, tt.wantLimit, limit)
				return nil, nil
			}

			resp, err := deps.service.ListDecisionHistory(context.Background(), head.ID.String(), tt.limit)

			require.NoError(t, err)
			assert.Empty(t, resp)
		})
	}

	t.Run("faculty is forbidden", func(t *testing.T) {
		faculty := newFaculty("CSE")
		deps := setupServiceTest(t, faculty)

		_, err := deps.service.ListDecisionHistory(context.Background(), faculty.ID.String(), 0)

		assert.ErrorIs(t, err, authzerrors.ErrNotDepartmentHead)
	})
}

func TestService_ListPendingForDepartment(t *testing.T) {
	head := newHead("ECE")
	head.Department = "CSE"
	deps := setupServiceTest(t, head)

	requester := newFaculty("ECE")
	deps.repo.findPendingFn = func(_ context.Context, department string) ([]leave.LeaveRequest, error) {
		assert.Equal(t, "ECE", department)
		return []leave.LeaveRequest{*pendingLeave(requester, 1), *pendingLeave(requester, 2)}, nil
	}

	resp, err := deps.service.ListPendingForDepartment(context.Background(), head.ID.String())

	require.NoError(t, err)
	assert.Len(t, resp, 2)
}

func TestService_DepartmentSummary(t *testing.T) {
	head := newHead("CSE")
	deps := setupServiceTest(t, head)
	deps.directory.faculty["CSE"] = 7
	leave.SetClock(deps.service, func() time.Time {
		return time.Date(2026, 5, 4, 15, 30, 0, 0, time.UTC)
	})

	deps.repo.countByStatusFn = func(_ context.Context, _ string, status domain.Status) (int64, error) {
		switch status {
		case domain.StatusPending:
			return 3, nil
		case domain.StatusRejected:
			return 2, nil
		}
		return 0, nil
	}
	deps.repo.countDecidedSince = func(_ context.Context, department string, outcome domain.Outcome, since time.Time) (int64, error) {
		assert.Equal(t, "CSE", department)
		assert.Equal(t, domain.OutcomeApproved, outcome)
		assert.Equal(t, time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC), since)
		return 1, nil
	}

	resp, err := deps.service.DepartmentSummary(context.Background(), head.ID.String())

	require.NoError(t, err)
	assert.Equal(t, leave.DepartmentSummaryResponse{
		Department:    "CSE",
		PendingCount:  3,
		TotalFaculty:  7,
		ApprovedToday: 1,
		RejectedCount: 2,
	}, resp)
}
