package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

// Deps holds what every domain service shares. Everything in it is read-only after startup.
type Deps struct {
	Policy    *access.Policy
	Validator *validator.Validator
	Clock     Clock
	Audit     *AuditService
	Logger    *logrus.Logger
}

// gateway is embedded by the domain services. It runs the authorize -> validate
// steps every mutating operation starts with.
type gateway struct {
	policy    *access.Policy
	validator *validator.Validator
	clock     Clock
	audit     *AuditService
	logger    *logrus.Logger
}

func newGateway(deps Deps) gateway {
	g := gateway{
		policy:    deps.Policy,
		validator: deps.Validator,
		clock:     deps.Clock,
		audit:     deps.Audit,
		logger:    deps.Logger,
	}
	if g.policy == nil {
		g.policy = access.DefaultPolicy()
	}
	if g.validator == nil {
		g.validator = validator.New()
	}
	if g.logger == nil {
		g.logger = logrus.StandardLogger()
	}
	return g
}

// authorize consults the policy and never touches storage
func (g gateway) authorize(identity access.Identity, resource access.Resource, action access.Action) (access.Decision, error) {
	decision := g.policy.Authorize(identity, resource, action)
	if !decision.Allowed {
		g.logger.WithFields(logrus.Fields{
			"subject_id": identity.SubjectID,
			"role":       identity.Role,
			"resource":   resource,
			"action":     action,
		}).Warn("Authorization denied")
		return decision, &AuthorizationError{Resource: resource, Action: action, Reason: decision.Reason}
	}
	return decision, nil
}

// authorizeMember additionally checks that a self-scoped grant covers memberID
func (g gateway) authorizeMember(identity access.Identity, resource access.Resource, action access.Action, memberID uuid.UUID) (access.Decision, error) {
	decision, err := g.authorize(identity, resource, action)
	if err != nil {
		return decision, err
	}
	if !decision.CoversMember(identity, memberID) {
		return decision, &AuthorizationError{Resource: resource, Action: action, Reason: "members may only access their own records"}
	}
	return decision, nil
}

// decode validates raw into dst
func (g gateway) decode(raw map[string]interface{}, dst interface{}) error {
	return g.validator.Decode(raw, dst)
}

func (g gateway) fail(op, resource, id string, err error) error {
	if passThrough(err) {
		return err
	}
	return storageFailure(g.logger, op, resource, id, err)
}

// record writes an audit entry when auditing is enabled
func (g gateway) record(ctx context.Context, event AuditEvent) {
	if g.audit != nil {
		g.audit.Record(ctx, event)
	}
}
