package authz

import (
	authzerrors "go-faculty-leave/internal/authz/errors"
	"go-faculty-leave/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

type Guard interface {
	CanView(actor domain.Actor, req domain.RequestRef) bool
	CanDecide(actor domain.Actor, req domain.RequestRef) bool
	AuthorizeView(actor domain.Actor, req domain.RequestRef) error
	AuthorizeDecision(actor domain.Actor, req domain.RequestRef) error
	AuthorizeDepartment(actor domain.Actor) (string, error)
}

// subject and object are the attribute structs casbin reads through
// r.sub.* and r.obj.* in the matcher.
type subject struct {
	ID         string
	Role       string
	Department string
}

type object struct {
	ID         string
	Department string
}

type guard struct {
	enforcer *casbin.Enforcer
	logger   *zap.Logger
}

func NewGuard(enforcer *casbin.Enforcer, logger ...*zap.Logger) Guard {
	l := zap.L().Named("authz.guard")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("authz.guard")
	}
	return &guard{enforcer: enforcer, logger: l}
}

func (g *guard) enforce(actor domain.Actor, req domain.RequestRef, action string) bool {
	allowed, err := g.enforcer.Enforce(
		subject{ID: actor.ID, Role: string(actor.Role), Department: actor.Department},
		object{ID: req.ID, Department: req.Department},
		action,
	)
	if err != nil {
		g.logger.Error("enforce failed",
			zap.String("actor_id", actor.ID),
			zap.String("leave_id", req.ID),
			zap.String("action", action),
			zap.Error(err),
		)
		return false
	}
	return allowed
}

func (g *guard) CanDecide(actor domain.Actor, req domain.RequestRef) bool {
	return g.enforce(actor, req, ActionDecide)
}

// CanView allows the requester and any head allowed to decide the request.
func (g *guard) CanView(actor domain.Actor, req domain.RequestRef) bool {
	if actor.ID != "" && actor.ID == req.RequesterID {
		return true
	}
	return g.enforce(actor, req, ActionView)
}

func (g *guard) AuthorizeDecision(actor domain.Actor, req domain.RequestRef) error {
	if g.CanDecide(actor, req) {
		return nil
	}
	g.logger.Warn("decision denied",
		zap.String("actor_id", actor.ID),
		zap.String("role", string(actor.Role)),
		zap.String("actor_department", actor.Department),
		zap.String("leave_id", req.ID),
		zap.String("leave_department", req.Department),
	)
	if actor.Role != domain.RoleDepartmentHead {
		return authzerrors.ErrNotDepartmentHead
	}
	return authzerrors.ErrOutsideDepartment
}

func (g *guard) AuthorizeView(actor domain.Actor, req domain.RequestRef) error {
	if g.CanView(actor, req) {
		return nil
	}
	g.logger.Warn("view denied",
		zap.String("actor_id", actor.ID),
		zap.String("leave_id", req.ID),
	)
	return authzerrors.ErrNotRequester
}

// AuthorizeDepartment returns the department a head may list requests for.
func (g *guard) AuthorizeDepartment(actor domain.Actor) (string, error) {
	if actor.Role != domain.RoleDepartmentHead || actor.Department == "" {
		g.logger.Warn("department access denied",
			zap.String("actor_id", actor.ID),
			zap.String("role", string(actor.Role)),
		)
		return "", authzerrors.ErrNotDepartmentHead
	}
	return actor.Department, nil
}
