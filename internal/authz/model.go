package authz

import (
	"go-faculty-leave/internal/domain"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const (
	ActionDecide = "decide"
	ActionView   = "view"
)

// The matcher compares the actor's headed department with the department
// snapshotted on the request, so a head sees nothing outside their own.
const modelText = `[request_definition]
r = sub, obj, act

[policy_definition]
p = role, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub.Role == p.role && r.act == p.act && r.sub.Department != "" && r.sub.Department == r.obj.Department
`

// NewEnforcer builds the ABAC enforcer with the built-in department policies.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for _, policy := range [][]string{
		{string(domain.RoleDepartmentHead), ActionDecide},
		{string(domain.RoleDepartmentHead), ActionView},
	} {
		if _, err := e.AddPolicy(policy); err != nil {
			return nil, err
		}
	}

	return e, nil
}
