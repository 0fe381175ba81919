package access

import (
	"context"

	"github.com/google/uuid"

	"github.com/rakibul/healthdir-api/internal/model"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "deny_unauthenticated"
	default:
		return "deny_forbidden"
	}
}

// RoleChecker answers structural role membership; verification status is
// deliberately not part of the contract.
type RoleChecker interface {
	Has(ctx context.Context, userID uuid.UUID, role model.Role) bool
}

// Gate is the per-request access-control check. It holds no session state
// and must be re-evaluated on every protected request.
type Gate struct {
	roles RoleChecker
}

func NewGate(roles RoleChecker) *Gate {
	return &Gate{roles: roles}
}

// Authorize compares the principal against a route's required role. A nil
// principal is unauthenticated; an empty required role admits any
// authenticated principal. Otherwise the principal must structurally hold
// the role.
func (g *Gate) Authorize(ctx context.Context, principalID *uuid.UUID, required model.Role) Decision {
	if principalID == nil {
		return DenyUnauthenticated
	}
	if required == "" || required == model.RoleNone {
		return Allow
	}
	if g.roles.Has(ctx, *principalID, required) {
		return Allow
	}
	return DenyForbidden
}
