package leave

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"go-faculty-leave/internal/authz"
	"go-faculty-leave/internal/balance"
	balanceerrors "go-faculty-leave/internal/balance/errors"
	"go-faculty-leave/internal/domain"
	"go-faculty-leave/internal/employee"
	"go-faculty-leave/internal/events"
	leaveerrors "go-faculty-leave/internal/leave/errors"
	"go-faculty-leave/internal/messaging/kafka"
	"go-faculty-leave/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	dateLayout = "2006-01-02"

	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

var timeOfDay = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Directory is the slice of the employee directory the workflow depends on.
type Directory interface {
	ResolveRequester(ctx context.Context, id string) (employee.Employee, error)
	ResolveBalance(ctx context.Context, emp employee.Employee) (domain.BalanceView, error)
	CountFaculty(ctx context.Context, department string) (int64, error)
	InvalidateDepartmentFaculty(ctx context.Context, department string)
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, requesterID string, req SubmitLeaveRequest) (LeaveResponse, error)
	Decide(ctx context.Context, actorID, id string, req DecideLeaveRequest) (LeaveResponse, error)
	ListOwn(ctx context.Context, requesterID string) ([]LeaveResponse, error)
	ListPendingForDepartment(ctx context.Context, actorID string) ([]LeaveResponse, error)
	ListDecisionHistory(ctx context.Context, actorID string, limit int) ([]LeaveResponse, error)
	GetByID(ctx context.Context, actorID, id string) (LeaveResponse, error)
	DepartmentSummary(ctx context.Context, actorID string) (DepartmentSummaryResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	ledger    balance.Ledger
	directory Directory
	guard     authz.Guard
	outbox    kafka.OutboxRepository
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	ledger balance.Ledger,
	directory Directory,
	guard authz.Guard,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, ledger, directory, guard, nil, logger...)
}

// NewServiceWithOutbox queues leave events in the same transaction as the
// state change they describe.
func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	ledger balance.Ledger,
	directory Directory,
	guard authz.Guard,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		ledger:    ledger,
		directory: directory,
		guard:     guard,
		outbox:    outbox,
		now:       time.Now,
		logger:    l,
	}
}

type submission struct {
	leaveType domain.LeaveType
	from      time.Time
	to        time.Time
	fromTime  *string
	toTime    *string
	reason    string
	alternate *string
	days      int
}

func validateSubmitRequest(req SubmitLeaveRequest) (submission, error) {
	leaveType, ok := domain.ParseLeaveType(req.LeaveType)
	if !ok {
		return submission{}, leaveerrors.ErrInvalidLeaveType
	}

	from, err := parseDate(req.FromDate)
	if err != nil {
		return submission{}, err
	}
	to, err := parseDate(req.ToDate)
	if err != nil {
		return submission{}, err
	}

	days := CalculateDays(from, to)
	if days > MaxLeaveDays {
		return submission{}, leaveerrors.ErrLeaveTooLong.WithDetails(map[string]int{
			"days": days,
			"max":  MaxLeaveDays,
		})
	}

	fromTime, err := parseTimeOfDay(req.FromTime)
	if err != nil {
		return submission{}, err
	}
	toTime, err := parseTimeOfDay(req.ToTime)
	if err != nil {
		return submission{}, err
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return submission{}, leaveerrors.ErrReasonRequired
	}

	return submission{
		leaveType: leaveType,
		from:      from,
		to:        to,
		fromTime:  fromTime,
		toTime:    toTime,
		reason:    reason,
		alternate: trimOptional(req.AlternateFaculty),
		days:      days,
	}, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func parseTimeOfDay(v *string) (*string, error) {
	trimmed := trimOptional(v)
	if trimmed == nil {
		return nil, nil
	}
	if !timeOfDay.MatchString(*trimmed) {
		return nil, leaveerrors.ErrInvalidTimeFormat
	}
	return trimmed, nil
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *service) Submit(ctx context.Context, requesterID string, req SubmitLeaveRequest) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("submit leave requested",
		zap.String("requester_id", requesterID),
		zap.String("leave_type", req.LeaveType),
		zap.String("from_date", req.FromDate),
		zap.String("to_date", req.ToDate),
	)

	sub, err := validateSubmitRequest(req)
	if err != nil {
		log.Warn("submit leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	requester, err := s.directory.ResolveRequester(ctx, requesterID)
	if err != nil {
		return LeaveResponse{}, err
	}
	view, err := s.directory.ResolveBalance(ctx, requester)
	if err != nil {
		return LeaveResponse{}, err
	}

	if sub.to.Before(sub.from) {
		log.Warn("submit leave inverted date range",
			zap.String("requester_id", requesterID),
			zap.String("from_date", req.FromDate),
			zap.String("to_date", req.ToDate),
		)
	}
	days := sub.days

	availability := s.ledger.CheckAvailable(view, sub.leaveType, days)
	if !availability.Sufficient {
		available := 0
		if availability.Available != nil {
			available = *availability.Available
		}
		log.Warn("submit leave insufficient balance",
			zap.String("requester_id", requesterID),
			zap.String("leave_type", string(sub.leaveType)),
			zap.Int("available", available),
			zap.Int("requested", days),
		)
		return LeaveResponse{}, balanceerrors.InsufficientBalance(sub.leaveType, available, days)
	}

	l := &LeaveRequest{
		ID:               uuid.New(),
		RequesterID:      requester.ID,
		LeaveType:        sub.leaveType,
		StartDate:        sub.from,
		EndDate:          sub.to,
		FromTime:         sub.fromTime,
		ToTime:           sub.toTime,
		Reason:           sub.reason,
		AlternateFaculty: sub.alternate,
		Days:             days,
		Department:       requester.Department,
		Status:           domain.StatusPending,
		SubmittedAt:      s.now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("submit leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, l); err != nil {
		log.Error("submit leave persist failed", zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if err := s.enqueue(ctx, tx, l.ID.String(), events.LeaveSubmittedEventType, events.LeaveSubmittedTopic, events.LeaveSubmittedEvent{
		EventType:   events.LeaveSubmittedEventType,
		RequestID:   contextutil.GetRequestID(ctx),
		LeaveID:     l.ID.String(),
		RequesterID: l.RequesterID.String(),
		Department:  l.Department,
		LeaveType:   string(l.LeaveType),
		Days:        l.Days,
		OccurredAt:  l.SubmittedAt,
	}); err != nil {
		log.Error("submit leave enqueue event failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("submit leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	log.Info("submit leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("requester_id", requesterID),
		zap.String("department", l.Department),
		zap.Int("days", days),
	)

	l.Requester = &requester
	return mapToResponse(*l), nil
}

func (s *service) Decide(ctx context.Context, actorID, id string, req DecideLeaveRequest) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("decide leave requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actorID),
		zap.String("outcome", req.Outcome),
	)

	outcome, ok := domain.ParseOutcome(req.Outcome)
	if !ok {
		log.Warn("decide leave invalid outcome", zap.String("outcome", req.Outcome))
		return LeaveResponse{}, leaveerrors.ErrInvalidOutcome
	}
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}

	head, err := s.directory.ResolveRequester(ctx, actorID)
	if err != nil {
		return LeaveResponse{}, err
	}
	actor := head.Actor()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("decide leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.Get(ctx, id)
	if err != nil {
		mapped := mapRepositoryError(err)
		if !errors.Is(mapped, leaveerrors.ErrLeaveNotFound) {
			log.Error("decide leave load failed", zap.String("leave_id", id), zap.Error(err))
		}
		return LeaveResponse{}, mapped
	}

	if err := s.guard.AuthorizeDecision(actor, l.Ref()); err != nil {
		return LeaveResponse{}, err
	}

	if l.Status.Terminal() {
		if l.Status != outcome.Status() {
			log.Warn("decide leave already decided",
				zap.String("leave_id", id),
				zap.String("status", string(l.Status)),
				zap.String("outcome", string(outcome)),
			)
			return LeaveResponse{}, leaveerrors.ErrAlreadyDecided
		}
		decision, err := qtx.FindDecision(ctx, id)
		if err != nil {
			log.Error("decide leave load decision failed", zap.String("leave_id", id), zap.Error(err))
			return LeaveResponse{}, err
		}
		l.Decision = decision
		log.Info("decide leave repeated outcome", zap.String("leave_id", id), zap.String("outcome", string(outcome)))
		return mapToResponse(*l), nil
	}

	moved, err := qtx.TransitionStatus(ctx, id, domain.StatusPending, outcome.Status())
	if err != nil {
		log.Error("decide leave status update failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if !moved {
		log.Warn("decide leave lost concurrent decision", zap.String("leave_id", id))
		return LeaveResponse{}, leaveerrors.ErrAlreadyDecided
	}

	if outcome == domain.OutcomeApproved {
		if err := s.ledger.WithTx(tx).Deduct(ctx, l.RequesterID.String(), l.LeaveType, l.Days); err != nil {
			log.Warn("decide leave deduct failed",
				zap.String("leave_id", id),
				zap.String("requester_id", l.RequesterID.String()),
				zap.Error(err),
			)
			return LeaveResponse{}, err
		}
	}

	decision := &LeaveDecision{
		ID:             uuid.New(),
		LeaveRequestID: l.ID,
		Tier:           domain.ApprovalTierDepartmentHead,
		Outcome:        outcome,
		DecidedBy:      head.ID,
		Remarks:        trimOptional(req.Remarks),
		DecidedAt:      s.now().UTC(),
	}
	if err := qtx.CreateDecision(ctx, decision); err != nil {
		mapped := mapRepositoryError(err)
		if errors.Is(mapped, leaveerrors.ErrAlreadyDecided) {
			log.Warn("decide leave duplicate decision", zap.String("leave_id", id))
		} else {
			log.Error("decide leave persist decision failed", zap.String("leave_id", id), zap.Error(err))
		}
		return LeaveResponse{}, mapped
	}

	if err := s.enqueue(ctx, tx, l.ID.String(), events.LeaveDecidedEventType, events.LeaveDecidedTopic, events.LeaveDecidedEvent{
		EventType:   events.LeaveDecidedEventType,
		RequestID:   contextutil.GetRequestID(ctx),
		LeaveID:     l.ID.String(),
		RequesterID: l.RequesterID.String(),
		Department:  l.Department,
		Outcome:     string(outcome),
		DecidedBy:   head.ID.String(),
		OccurredAt:  decision.DecidedAt,
	}); err != nil {
		log.Error("decide leave enqueue event failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("decide leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	log.Info("decide leave success",
		zap.String("leave_id", id),
		zap.String("actor_id", actorID),
		zap.String("outcome", string(outcome)),
	)
	if outcome == domain.OutcomeApproved {
		s.directory.InvalidateDepartmentFaculty(ctx, l.Department)
	}

	l.Status = outcome.Status()
	l.Decision = decision
	return mapToResponse(*l), nil
}

func (s *service) enqueue(ctx context.Context, tx *sql.Tx, leaveID, eventType, topic string, payload any) error {
	if s.outbox == nil {
		return nil
	}
	event, err := kafka.NewOutboxEvent(
		contextutil.GetRequestID(ctx),
		events.LeaveAggregateType,
		leaveID,
		eventType,
		topic,
		payload,
	)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, event)
}

func (s *service) ListOwn(ctx context.Context, requesterID string) ([]LeaveResponse, error) {
	requester, err := s.directory.ResolveRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	leaves, err := s.repo.FindByRequester(ctx, requester.ID.String())
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("list own leaves failed", zap.String("requester_id", requesterID), zap.Error(err))
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) headDepartment(ctx context.Context, actorID string) (string, error) {
	head, err := s.directory.ResolveRequester(ctx, actorID)
	if err != nil {
		return "", err
	}
	return s.guard.AuthorizeDepartment(head.Actor())
}

func (s *service) ListPendingForDepartment(ctx context.Context, actorID string) ([]LeaveResponse, error) {
	department, err := s.headDepartment(ctx, actorID)
	if err != nil {
		return nil, err
	}

	leaves, err := s.repo.FindPendingByDepartment(ctx, department)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("list pending leaves failed", zap.String("department", department), zap.Error(err))
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) ListDecisionHistory(ctx context.Context, actorID string, limit int) ([]LeaveResponse, error) {
	department, err := s.headDepartment(ctx, actorID)
	if err != nil {
		return nil, err
	}

	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}

	leaves, err := s.repo.FindDecidedByDepartment(ctx, department, limit)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("list decision history failed", zap.String("department", department), zap.Error(err))
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetByID(ctx context.Context, actorID, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}

	viewer, err := s.directory.ResolveRequester(ctx, actorID)
	if err != nil {
		return LeaveResponse{}, err
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if err := s.guard.AuthorizeView(viewer.Actor(), l.Ref()); err != nil {
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) DepartmentSummary(ctx context.Context, actorID string) (DepartmentSummaryResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	department, err := s.headDepartment(ctx, actorID)
	if err != nil {
		return DepartmentSummaryResponse{}, err
	}

	pending, err := s.repo.CountByDepartmentStatus(ctx, department, domain.StatusPending)
	if err != nil {
		log.Error("summary count pending failed", zap.String("department", department), zap.Error(err))
		return DepartmentSummaryResponse{}, err
	}
	rejected, err := s.repo.CountByDepartmentStatus(ctx, department, domain.StatusRejected)
	if err != nil {
		log.Error("summary count rejected failed", zap.String("department", department), zap.Error(err))
		return DepartmentSummaryResponse{}, err
	}

	now := s.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	approvedToday, err := s.repo.CountDecidedSince(ctx, department, domain.OutcomeApproved, midnight)
	if err != nil {
		log.Error("summary count approved today failed", zap.String("department", department), zap.Error(err))
		return DepartmentSummaryResponse{}, err
	}

	faculty, err := s.directory.CountFaculty(ctx, department)
	if err != nil {
		return DepartmentSummaryResponse{}, err
	}

	return DepartmentSummaryResponse{
		Department:    department,
		PendingCount:  pending,
		TotalFaculty:  faculty,
		ApprovedToday: approvedToday,
		RejectedCount: rejected,
	}, nil
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:               l.ID.String(),
		RequesterID:      l.RequesterID.String(),
		LeaveType:        string(l.LeaveType),
		LeaveTypeLabel:   l.LeaveType.Label(),
		FromDate:         l.StartDate.Format(dateLayout),
		ToDate:           l.EndDate.Format(dateLayout),
		FromTime:         l.FromTime,
		ToTime:           l.ToTime,
		Days:             l.Days,
		Reason:           l.Reason,
		AlternateFaculty: l.AlternateFaculty,
		Department:       l.Department,
		Status:           string(l.Status),
		HeadStatus:       string(l.HeadStatus()),
		SubmittedAt:      l.SubmittedAt.UTC().Format(time.RFC3339),
	}
	if l.Requester != nil {
		resp.RequesterName = l.Requester.Name
	}
	if l.Decision != nil {
		resp.Decision = &LeaveDecisionResponse{
			Tier:      l.Decision.Tier,
			Outcome:   string(l.Decision.Outcome),
			DecidedBy: l.Decision.DecidedBy.String(),
			Remarks:   l.Decision.Remarks,
			DecidedAt: l.Decision.DecidedAt.UTC().Format(time.RFC3339),
		}
	}
	return resp
}

func mapToListResponse(leaves []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, 0, len(leaves))
	for _, l := range leaves {
		resp = append(resp, mapToResponse(l))
	}
	return resp
}
