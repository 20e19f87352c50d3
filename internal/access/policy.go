package access

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is the role an identity acts under
type Role string

const (
	RoleAdministrator Role = "Administrator"
	RoleTrainer       Role = "Trainer"
	RoleReception     Role = "Reception"
	RoleMember        Role = "Member"
)

// Resource is a protected collection
type Resource string

const (
	ResourceMembers         Resource = "members"
	ResourcePayments        Resource = "payments"
	ResourceStaff           Resource = "staff"
	ResourceAttendance      Resource = "attendance"
	ResourceRoutines        Resource = "routines"
	ResourceAssignments     Resource = "routine_assignments"
	ResourceWorkoutSessions Resource = "workout_sessions"
	ResourceProgress        Resource = "physical_progress"
	ResourceStats           Resource = "stats"
)

// Action is an operation on a resource
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Scope limits which records of a resource a grant covers
type Scope string

const (
	// ScopeAll covers every record
	ScopeAll Scope = "all"
	// ScopeSelf covers only the member's own records
	ScopeSelf Scope = "self"
	// ScopeAssigned covers members with an active assignment created by the trainer
	ScopeAssigned Scope = "assigned"
)

// Identity is the authenticated caller of an operation
type Identity struct {
	SubjectID uuid.UUID
	Role      Role
	Email     string
	Name      string
	SessionID uuid.UUID
	// MemberID is set when the caller is a member acting on their own records
	MemberID *uuid.UUID
}

// IsMember reports whether the identity is a member rather than staff
func (i Identity) IsMember() bool {
	return i.Role == RoleMember
}

// Decision is the outcome of an authorization check
type Decision struct {
	Allowed bool
	Scope   Scope
	Reason  string
}

// Rules maps role -> resource -> action -> scope
type Rules map[Role]map[Resource]map[Action]Scope

// Policy answers (role, resource, action) questions from a fixed table.
// It is read-only after construction and safe for concurrent use.
type Policy struct {
	rules      Rules
	superRoles map[Role]bool
}

// NewPolicy copies rules into a policy. Roles in superRoles are granted every action with ScopeAll.
func NewPolicy(rules Rules, superRoles ...Role) *Policy {
	copied := make(Rules, len(rules))
	for role, resources := range rules {
		copied[role] = make(map[Resource]map[Action]Scope, len(resources))
		for resource, actions := range resources {
			copied[role][resource] = make(map[Action]Scope, len(actions))
			for action, scope := range actions {
				copied[role][resource][action] = scope
			}
		}
	}

	supers := make(map[Role]bool, len(superRoles))
	for _, role := range superRoles {
		supers[role] = true
	}

	return &Policy{rules: copied, superRoles: supers}
}

// DefaultPolicy returns the gym's role table
func DefaultPolicy() *Policy {
	return NewPolicy(Rules{
		RoleTrainer: {
			ResourceMembers:         {ActionRead: ScopeAll},
			ResourceRoutines:        {ActionRead: ScopeAll, ActionCreate: ScopeAll},
			ResourceAssignments:     {ActionRead: ScopeAll, ActionCreate: ScopeAll},
			ResourceAttendance:      {ActionRead: ScopeAssigned},
			ResourceWorkoutSessions: {ActionRead: ScopeAll},
			ResourceProgress:        {ActionRead: ScopeAll, ActionCreate: ScopeAll},
		},
		RoleReception: {
			ResourceMembers:    {ActionRead: ScopeAll, ActionCreate: ScopeAll},
			ResourcePayments:   {ActionRead: ScopeAll, ActionCreate: ScopeAll},
			ResourceAttendance: {ActionRead: ScopeAll, ActionCreate: ScopeAll},
			ResourceStats:      {ActionRead: ScopeAll},
		},
		RoleMember: {
			ResourceMembers:         {ActionRead: ScopeSelf, ActionUpdate: ScopeSelf},
			ResourceWorkoutSessions: {ActionRead: ScopeSelf, ActionCreate: ScopeSelf},
		},
	}, RoleAdministrator)
}

// Authorize decides whether identity may perform action on resource.
// It never touches storage; record-level scope checks are left to the caller.
func (p *Policy) Authorize(identity Identity, resource Resource, action Action) Decision {
	if identity.Role == "" {
		return Decision{Reason: "no role"}
	}

	if p.superRoles[identity.Role] {
		return Decision{Allowed: true, Scope: ScopeAll}
	}

	resources, ok := p.rules[identity.Role]
	if !ok {
		return Decision{Reason: fmt.Sprintf("unknown role %s", identity.Role)}
	}

	scope, ok := resources[resource][action]
	if !ok {
		return Decision{Reason: fmt.Sprintf("%s cannot %s %s", identity.Role, action, resource)}
	}

	if scope == ScopeSelf && identity.MemberID == nil {
		return Decision{Reason: "self scope requires a member identity"}
	}

	return Decision{Allowed: true, Scope: scope}
}

// Can is a shorthand for Authorize(...).Allowed
func (p *Policy) Can(identity Identity, resource Resource, action Action) bool {
	return p.Authorize(identity, resource, action).Allowed
}

// CoversMember reports whether a self-scoped decision covers memberID.
// Decisions with other scopes always cover it at this level.
func (d Decision) CoversMember(identity Identity, memberID uuid.UUID) bool {
	if !d.Allowed {
		return false
	}
	if d.Scope != ScopeSelf {
		return true
	}
	return identity.MemberID != nil && *identity.MemberID == memberID
}
