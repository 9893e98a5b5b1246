package domain

import (
	"fmt"
	"strings"
)

// Resource names a protected collection of the API.
type Resource string

// Known resources. The set is closed; anything else fails validation.
const (
	ResourceUsers    Resource = "users"
	ResourceRoles    Resource = "roles"
	ResourceServices Resource = "services"
)

// Action names an operation a role may perform on a Resource.
type Action string

// Known actions. Actions are compared literally: holding ActionAll does not
// imply ActionRead.
const (
	ActionNone   Action = "none"
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
	ActionAll    Action = "all"
	ActionAdmin  Action = "admin"
)

// Permission validation errors
var (
	ErrUnknownResource    = fmt.Errorf("%w: unknown resource", ErrValidation)
	ErrUnknownAction      = fmt.Errorf("%w: unknown action", ErrValidation)
	ErrEmptyActions       = fmt.Errorf("%w: permission must grant at least one action", ErrValidation)
	ErrDuplicateResource  = fmt.Errorf("%w: resource listed more than once", ErrValidation)
	ErrEmptyPermissionSet = fmt.Errorf("%w: role must declare at least one permission", ErrValidation)
)

// Valid reports whether r is one of the known resources.
func (r Resource) Valid() bool {
	switch r {
	case ResourceUsers, ResourceRoles, ResourceServices:
		return true
	}
	return false
}

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionNone, ActionCreate, ActionRead, ActionWrite, ActionDelete, ActionAll, ActionAdmin:
		return true
	}
	return false
}

// Permission grants a set of actions on a single resource.
type Permission struct {
	Resource Resource `json:"resource"`
	Actions  []Action `json:"actions"`
}

// NewPermission is a shorthand used by route declarations.
func NewPermission(resource Resource, actions ...Action) Permission {
	return Permission{Resource: resource, Actions: actions}
}

// Validate checks that the resource and every action are known.
func (p Permission) Validate() error {
	if !p.Resource.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownResource, p.Resource)
	}
	if len(p.Actions) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyActions, p.Resource)
	}
	for _, a := range p.Actions {
		if !a.Valid() {
			return fmt.Errorf("%w: %q on %s", ErrUnknownAction, a, p.Resource)
		}
	}
	return nil
}

// Grants reports whether p's action set is a superset of required.
// Order and duplicates are irrelevant.
func (p Permission) Grants(required []Action) bool {
	granted := make(map[Action]struct{}, len(p.Actions))
	for _, a := range p.Actions {
		granted[a] = struct{}{}
	}
	for _, a := range required {
		if _, ok := granted[a]; !ok {
			return false
		}
	}
	return true
}

// String renders the permission as "resource:[a,b]" for logs.
func (p Permission) String() string {
	actions := make([]string, len(p.Actions))
	for i, a := range p.Actions {
		actions[i] = string(a)
	}
	return fmt.Sprintf("%s:[%s]", p.Resource, strings.Join(actions, ","))
}

// PermissionSet is the ordered list of permissions held by a role.
type PermissionSet []Permission

// Lookup returns the first entry for resource. Later duplicates are ignored.
func (s PermissionSet) Lookup(resource Resource) (Permission, bool) {
	for _, p := range s {
		if p.Resource == resource {
			return p, true
		}
	}
	return Permission{}, false
}

// Covers reports whether the set satisfies every required permission: the
// resource must be present and its actions must include all required actions.
// An empty requirement list is always covered.
func (s PermissionSet) Covers(required []Permission) bool {
	_, ok := s.FirstUncovered(required)
	return !ok
}

// FirstUncovered returns the first required permission the set fails to
// satisfy, if any.
func (s PermissionSet) FirstUncovered(required []Permission) (Permission, bool) {
	for _, req := range required {
		held, ok := s.Lookup(req.Resource)
		if !ok || !held.Grants(req.Actions) {
			return req, true
		}
	}
	return Permission{}, false
}

// Validate checks every entry and rejects sets listing a resource twice.
func (s PermissionSet) Validate() error {
	if len(s) == 0 {
		return ErrEmptyPermissionSet
	}
	seen := make(map[Resource]struct{}, len(s))
	for _, p := range s {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, dup := seen[p.Resource]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateResource, p.Resource)
		}
		seen[p.Resource] = struct{}{}
	}
	return nil
}
