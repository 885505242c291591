package security

import (
	"fmt"

	"github.com/yourorg/tenantcrm/internal/domain"
)

// Resource identifies the kind of record an operation targets
type Resource string

const (
	ResourceCustomer   Resource = "customer"
	ResourceActivity   Resource = "activity"
	ResourceMembership Resource = "membership"
)

// Action identifies what is being done to a resource
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// rolePermissions is the static policy table. Row filtering for sales and
// support (assigned customers only) is a repository concern, not encoded
// here: the policy answers whether the operation is permitted at all.
//
// Customer update deliberately shares create's permission set. The row-level
// scoping already keeps sales inside their own book of business, and there is
// no reason a role that cannot create a customer should be able to rewrite one.
var rolePermissions = map[domain.Role]map[Resource][]Action{
	domain.RoleAdmin: {
		ResourceCustomer:   {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		ResourceActivity:   {ActionRead, ActionCreate},
		ResourceMembership: {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
	},
	domain.RoleManager: {
		ResourceCustomer:   {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		ResourceActivity:   {ActionRead, ActionCreate},
		ResourceMembership: {ActionRead},
	},
	domain.RoleSales: {
		ResourceCustomer:   {ActionRead, ActionCreate, ActionUpdate},
		ResourceActivity:   {ActionRead, ActionCreate},
		ResourceMembership: {ActionRead},
	},
	domain.RoleSupport: {
		ResourceCustomer:   {ActionRead},
		ResourceActivity:   {ActionRead, ActionCreate},
		ResourceMembership: {ActionRead},
	},
}

// Allowed reports whether role may perform action on resource. It is a pure
// lookup; unknown roles, resources, and actions all deny.
func Allowed(role domain.Role, resource Resource, action Action) bool {
	actions, ok := rolePermissions[role][resource]
	if !ok {
		return false
	}
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

// Require returns domain.ErrForbidden when the policy denies the operation.
// It must only be called with a role taken from a verified Grant.
func Require(grant domain.Grant, resource Resource, action Action) error {
	if !Allowed(grant.Role, resource, action) {
		return fmt.Errorf("%w: %s role cannot %s %s", domain.ErrForbidden, grant.Role, action, resource)
	}
	return nil
}
