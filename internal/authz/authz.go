package authz

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

// Objects and actions used in the custody policy.
const (
	ObjectCustody = "custody"

	ActionRead     = "read"
	ActionCheckout = "checkout"
	ActionCheckin  = "checkin"
	ActionTransfer = "transfer"
	ActionRollback = "rollback"
	ActionExport   = "export"
)

const roleAnonymous = "anonymous"

// Authorizer answers role-based access questions from a casbin policy.
type Authorizer struct {
	enforcer *casbin.Enforcer
}

// NewAuthorizer loads the casbin model at modelPath and the policy at policyPath.
func NewAuthorizer(modelPath, policyPath string) (*Authorizer, error) {
	enforcer, err := casbin.NewEnforcer(modelPath)
	if err != nil {
		return nil, fmt.Errorf("authz: load model: %w", err)
	}
	enforcer.SetAdapter(fileadapter.NewAdapter(policyPath))
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("authz: load policy: %w", err)
	}
	return &Authorizer{enforcer: enforcer}, nil
}

// SubjectFromRole turns a user role into a policy subject such as "role:admin".
func SubjectFromRole(role string) string {
	role = strings.TrimSpace(strings.ToLower(role))
	if role == "" {
		role = roleAnonymous
	}
	return "role:" + role
}

// Authorize reports whether subject may perform action on object.
func (a *Authorizer) Authorize(subject, object, action string) (bool, error) {
	return a.enforcer.Enforce(subject, object, action)
}
