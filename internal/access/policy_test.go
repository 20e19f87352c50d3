package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func staff(role Role) Identity {
	return Identity{SubjectID: uuid.New(), Role: role}
}

func member() Identity {
	id := uuid.New()
	return Identity{SubjectID: id, Role: RoleMember, MemberID: &id}
}

var allResources = []Resource{
	ResourceMembers, ResourcePayments, ResourceStaff, ResourceAttendance, ResourceRoutines,
	ResourceAssignments, ResourceWorkoutSessions, ResourceProgress, ResourceStats,
}

var allActions = []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete}

func TestAdministratorCanDoEverything(t *testing.T) {
	policy := DefaultPolicy()
	admin := staff(RoleAdministrator)

	for _, resource := range allResources {
		for _, action := range allActions {
			d := policy.Authorize(admin, resource, action)
			assert.True(t, d.Allowed, "%s %s", action, resource)
			assert.Equal(t, ScopeAll, d.Scope)
		}
	}
}

func TestRoleTable(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		identity Identity
		resource Resource
		action   Action
		allowed  bool
		scope    Scope
	}{
		{staff(RoleTrainer), ResourcePayments, ActionCreate, false, ""},
		{staff(RoleTrainer), ResourcePayments, ActionRead, false, ""},
		{staff(RoleTrainer), ResourceStaff, ActionRead, false, ""},
		{staff(RoleTrainer), ResourceMembers, ActionRead, true, ScopeAll},
		{staff(RoleTrainer), ResourceMembers, ActionUpdate, false, ""},
		{staff(RoleTrainer), ResourceRoutines, ActionCreate, true, ScopeAll},
		{staff(RoleTrainer), ResourceAssignments, ActionCreate, true, ScopeAll},
		{staff(RoleTrainer), ResourceAttendance, ActionRead, true, ScopeAssigned},
		{staff(RoleTrainer), ResourceAttendance, ActionCreate, false, ""},
		{staff(RoleTrainer), ResourceProgress, ActionCreate, true, ScopeAll},
		{staff(RoleTrainer), ResourceStats, ActionRead, false, ""},
		{staff(RoleReception), ResourcePayments, ActionCreate, true, ScopeAll},
		{staff(RoleReception), ResourceMembers, ActionCreate, true, ScopeAll},
		{staff(RoleReception), ResourceMembers, ActionDelete, false, ""},
		{staff(RoleReception), ResourceRoutines, ActionRead, false, ""},
		{staff(RoleReception), ResourceStaff, ActionCreate, false, ""},
		{staff(RoleReception), ResourceAttendance, ActionCreate, true, ScopeAll},
		{staff(RoleReception), ResourceStats, ActionRead, true, ScopeAll},
		{member(), ResourceMembers, ActionRead, true, ScopeSelf},
		{member(), ResourceMembers, ActionUpdate, true, ScopeSelf},
		{member(), ResourceMembers, ActionDelete, false, ""},
		{member(), ResourcePayments, ActionRead, false, ""},
		{member(), ResourceWorkoutSessions, ActionCreate, true, ScopeSelf},
		{member(), ResourceStats, ActionRead, false, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.identity.Role)+"/"+string(tt.action)+"/"+string(tt.resource), func(t *testing.T) {
			d := policy.Authorize(tt.identity, tt.resource, tt.action)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.scope, d.Scope)
			if !tt.allowed {
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestUnknownAndMissingRoles(t *testing.T) {
	policy := DefaultPolicy()

	assert.False(t, policy.Can(Identity{}, ResourceMembers, ActionRead))
	assert.False(t, policy.Can(staff("Janitor"), ResourceMembers, ActionRead))
}

func TestSelfScopeRequiresMemberID(t *testing.T) {
	policy := DefaultPolicy()

	d := policy.Authorize(Identity{SubjectID: uuid.New(), Role: RoleMember}, ResourceMembers, ActionRead)
	assert.False(t, d.Allowed)
}

func TestDecision_CoversMember(t *testing.T) {
	policy := DefaultPolicy()
	self := member()
	other := uuid.New()

	d := policy.Authorize(self, ResourceMembers, ActionRead)
	assert.True(t, d.CoversMember(self, *self.MemberID))
	assert.False(t, d.CoversMember(self, other))

	reception := staff(RoleReception)
	d = policy.Authorize(reception, ResourceMembers, ActionRead)
	assert.True(t, d.CoversMember(reception, other))

	denied := policy.Authorize(reception, ResourceStaff, ActionRead)
	assert.False(t, denied.CoversMember(reception, other))
}

func TestNewPolicyCopiesRules(t *testing.T) {
	rules := Rules{RoleReception: {ResourceStats: {ActionRead: ScopeAll}}}
	policy := NewPolicy(rules)

	rules[RoleReception][ResourceStats][ActionDelete] = ScopeAll
	assert.False(t, policy.Can(staff(RoleReception), ResourceStats, ActionDelete))
	assert.True(t, policy.Can(staff(RoleReception), ResourceStats, ActionRead))
}
