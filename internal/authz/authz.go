// Package authz resolves whether a caller may perform an action, either
// by owning the resource or by holding a sufficient role in a group.
// Every mutation path goes through Authorize; handlers do not compare
// owner fields themselves.
package authz

import (
	"errors"
	"fmt"

	"finledger/internal/apperr"
	"finledger/internal/models"

	"gorm.io/gorm"
)

// Permission names an action on a resource kind.
type Permission string

const (
	PermExpenseCreate Permission = "expense:create"
	PermExpenseRead   Permission = "expense:read"
	PermExpenseUpdate Permission = "expense:update"
	PermExpenseDelete Permission = "expense:delete"

	PermBudgetCreate Permission = "budget:create"
	PermBudgetRead   Permission = "budget:read"
	PermBudgetUpdate Permission = "budget:update"
	PermBudgetDelete Permission = "budget:delete"

	PermGoalCreate Permission = "goal:create"
	PermGoalRead   Permission = "goal:read"
	PermGoalUpdate Permission = "goal:update"
	PermGoalDelete Permission = "goal:delete"

	// Occasions are personal resources and never carry a group scope, so
	// these never appear in the role table.
	PermOccasionRead   Permission = "occasion:read"
	PermOccasionUpdate Permission = "occasion:update"

	PermGroupRead          Permission = "group:read"
	PermGroupUpdate        Permission = "group:update"
	PermGroupDelete        Permission = "group:delete"
	PermGroupManageMembers Permission = "group:manage_members"
)

// rolePermissions is the fixed role -> permission-set table.
var rolePermissions = map[string]map[Permission]bool{
	models.RoleOwner: permSet(
		PermExpenseCreate, PermExpenseRead, PermExpenseUpdate, PermExpenseDelete,
		PermBudgetCreate, PermBudgetRead, PermBudgetUpdate, PermBudgetDelete,
		PermGoalCreate, PermGoalRead, PermGoalUpdate, PermGoalDelete,
		PermGroupRead, PermGroupUpdate, PermGroupDelete, PermGroupManageMembers,
	),
	models.RoleAdmin: permSet(
		PermExpenseCreate, PermExpenseRead, PermExpenseUpdate, PermExpenseDelete,
		PermBudgetCreate, PermBudgetRead, PermBudgetUpdate, PermBudgetDelete,
		PermGoalCreate, PermGoalRead, PermGoalUpdate, PermGoalDelete,
		PermGroupRead, PermGroupUpdate, PermGroupManageMembers,
	),
	models.RoleMember: permSet(
		PermExpenseCreate, PermExpenseRead, PermExpenseUpdate,
		PermBudgetRead, PermGoalRead, PermGroupRead,
	),
	models.RoleViewer: permSet(
		PermExpenseRead, PermBudgetRead, PermGoalRead, PermGroupRead,
	),
}

func permSet(perms ...Permission) map[Permission]bool {
	m := make(map[Permission]bool, len(perms))
	for _, p := range perms {
		m[p] = true
	}
	return m
}

// RoleAllows reports whether the given role's permission set contains perm.
// Unknown roles allow nothing.
func RoleAllows(role string, perm Permission) bool {
	return rolePermissions[role][perm]
}

// ResourceKind tags the kind of resource being authorized.
type ResourceKind string

const (
	ResourceExpense  ResourceKind = "expense"
	ResourceBudget   ResourceKind = "budget"
	ResourceGoal     ResourceKind = "goal"
	ResourceOccasion ResourceKind = "occasion"
	ResourceGroup    ResourceKind = "group"
)

// Resource describes the target of an authorization check. OwnerID is the
// resource's owner field (created_by_id for groups, user_id otherwise).
// GroupID is nonzero only for group-scoped actions.
type Resource struct {
	Kind    ResourceKind
	OwnerID uint
	GroupID uint
}

// Decision is an allow/deny outcome with the reason for the denial.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(format string, args ...any) Decision {
	return Decision{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// OwnerDecision is the pure ownership check: caller must equal the
// resource's owner field.
func OwnerDecision(callerID uint, res Resource) Decision {
	if callerID == res.OwnerID {
		return allow()
	}
	return deny("%s %s", res.Kind, "is owned by another user")
}

// Resolver answers authorization questions, loading group memberships
// from the store when needed.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Membership returns the caller's membership row in a group, or a
// NotFound application error when the caller is not a member.
func (r *Resolver) Membership(userID, groupID uint) (*models.GroupMember, error) {
	var m models.GroupMember
	err := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("group not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &m, nil
}

// HasPermission checks a caller against a group scope. With no group
// scope the check always grants (personal ownership is a separate
// Authorize path); with a group scope the caller must be a member
// whose role carries perm.
func (r *Resolver) HasPermission(userID uint, perm Permission, groupID uint) (bool, error) {
	if groupID == 0 {
		return true, nil
	}
	m, err := r.Membership(userID, groupID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	return RoleAllows(m.Role, perm), nil
}

// Authorize returns the allow/deny decision for a caller acting on a
// resource. Group-scoped resources go through the role table; everything
// else is an ownership equality check.
func (r *Resolver) Authorize(callerID uint, res Resource, perm Permission) (Decision, error) {
	if res.GroupID == 0 {
		return OwnerDecision(callerID, res), nil
	}
	m, err := r.Membership(callerID, res.GroupID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return deny("not a member of group %d", res.GroupID), nil
		}
		return Decision{}, err
	}
	if !RoleAllows(m.Role, perm) {
		return deny("role %q does not grant %s", m.Role, perm), nil
	}
	return allow(), nil
}
