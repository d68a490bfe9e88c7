package employee

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-faculty-leave/internal/authz"
	"go-faculty-leave/internal/balance"
	"go-faculty-leave/internal/domain"
	employeeerrors "go-faculty-leave/internal/employee/errors"
	"go-faculty-leave/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const DepartmentFacultyKeyPrefix = "employees:department-faculty:"

const departmentFacultyTTL = 1 * time.Hour

func GetDepartmentFacultyKey(department string) string {
	return DepartmentFacultyKeyPrefix + department
}

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	ResolveRequester(ctx context.Context, id string) (Employee, error)
	ResolveBalance(ctx context.Context, emp Employee) (domain.BalanceView, error)
	GetProfile(ctx context.Context, id string) (EmployeeResponse, error)
	GetBalance(ctx context.Context, id string) (BalanceResponse, error)
	ListDepartmentFaculty(ctx context.Context, actorID string) ([]EmployeeResponse, error)
	CountFaculty(ctx context.Context, department string) (int64, error)
	InvalidateDepartmentFaculty(ctx context.Context, department string)
}

type service struct {
	repo   Repository
	ledger balance.Ledger
	guard  authz.Guard
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, ledger balance.Ledger, guard authz.Guard, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		repo:   repo,
		ledger: ledger,
		guard:  guard,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

// ResolveRequester returns the active employee with id. Absent, deactivated
// and malformed ids are all reported as not found.
func (s *service) ResolveRequester(ctx context.Context, id string) (Employee, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	if _, err := uuid.Parse(id); err != nil {
		log.Warn("resolve employee invalid id", zap.String("employee_id", id))
		return Employee{}, employeeerrors.ErrEmployeeNotFound
	}

	emp, err := s.repo.FindActiveByID(ctx, id)
	if err != nil {
		mapped := mapRepositoryError(err)
		if errors.Is(mapped, employeeerrors.ErrEmployeeNotFound) {
			log.Warn("resolve employee not found", zap.String("employee_id", id))
		} else {
			log.Error("resolve employee failed", zap.String("employee_id", id), zap.Error(err))
		}
		return Employee{}, mapped
	}
	if !emp.Role.Valid() {
		log.Warn("resolve employee unknown role", zap.String("employee_id", id), zap.String("role", string(emp.Role)))
		return Employee{}, employeeerrors.ErrUnknownRole
	}
	return *emp, nil
}

// ResolveBalance reads the balance fresh instead of trusting emp's copy.
func (s *service) ResolveBalance(ctx context.Context, emp Employee) (domain.BalanceView, error) {
	view, err := s.ledger.Get(ctx, emp.ID.String())
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("resolve balance failed",
			zap.String("employee_id", emp.ID.String()),
			zap.Error(err),
		)
		return domain.BalanceView{}, mapRepositoryError(err)
	}
	return view, nil
}

func (s *service) GetProfile(ctx context.Context, id string) (EmployeeResponse, error) {
	s.logger.Debug("get profile requested", zap.String("employee_id", id))
	emp, err := s.ResolveRequester(ctx, id)
	if err != nil {
		return EmployeeResponse{}, err
	}
	return mapToResponse(emp), nil
}

func (s *service) GetBalance(ctx context.Context, id string) (BalanceResponse, error) {
	s.logger.Debug("get balance requested", zap.String("employee_id", id))
	emp, err := s.ResolveRequester(ctx, id)
	if err != nil {
		return BalanceResponse{}, err
	}

	view, err := s.ResolveBalance(ctx, emp)
	if err != nil {
		return BalanceResponse{}, err
	}

	return BalanceResponse{
		EmployeeID: emp.ID.String(),
		Casual:     view.Casual,
		Medical:    view.Medical,
		Earned:     view.Earned,
	}, nil
}

func (s *service) ListDepartmentFaculty(ctx context.Context, actorID string) ([]EmployeeResponse, error) {
	actor, err := s.ResolveRequester(ctx, actorID)
	if err != nil {
		return nil, err
	}

	department, err := s.guard.AuthorizeDepartment(actor.Actor())
	if err != nil {
		return nil, err
	}

	cacheKey := GetDepartmentFacultyKey(department)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp []EmployeeResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// concurrent misses for one department share a single query
	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		emps, err := s.repo.FindFacultyByDepartment(ctx, department)
		if err != nil {
			s.logger.Error("list department faculty failed",
				zap.String("department", department),
				zap.Error(err),
			)
			return nil, mapRepositoryError(err)
		}

		resp := mapToListResponse(emps)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, jsonData, departmentFacultyTTL).Err(); err != nil {
					s.logger.Warn("cache department faculty failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}

		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]EmployeeResponse), nil
}

func (s *service) CountFaculty(ctx context.Context, department string) (int64, error) {
	if department == "" {
		return 0, employeeerrors.ErrInvalidDepartment
	}
	count, err := s.repo.CountFacultyByDepartment(ctx, department)
	if err != nil {
		s.logger.Error("count faculty failed", zap.String("department", department), zap.Error(err))
		return 0, mapRepositoryError(err)
	}
	return count, nil
}

// InvalidateDepartmentFaculty drops the cached faculty list so the next read
// shows balances changed by an approval.
func (s *service) InvalidateDepartmentFaculty(ctx context.Context, department string) {
	if s.rdb == nil || department == "" {
		return
	}
	key := GetDepartmentFacultyKey(department)
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		contextutil.GetLogger(ctx, s.logger).Warn("invalidate department faculty failed", zap.String("key", key), zap.Error(err))
	}
}

func mapToResponse(emp Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:          emp.ID.String(),
		StaffID:     emp.StaffID,
		Email:       emp.Email,
		Name:        emp.Name,
		Designation: emp.Designation,
		Role:        string(emp.Role),
		Department:  emp.Department,
		HeadOf:      emp.HeadOf,
		Balance: &LeaveBalance{
			Casual:  emp.CasualLeave,
			Medical: emp.MedicalLeave,
			Earned:  emp.EarnedLeave,
		},
	}
}

func mapToListResponse(emps []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(emps))
	for i, e := range emps {
		res[i] = mapToResponse(e)
	}
	return res
}
