package security

import (
	"context"
	"errors"
	"slices"
)

const RoleSuperAdmin = "SUPER_ADMIN"

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("permission denied")
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID      int32
	TenantID    int32
	Role        string
	Permissions []string
}

func PrincipalFromClaims(c *StaffClaims) Principal {
	return Principal{
		UserID:      c.UserID,
		TenantID:    c.TenantID,
		Role:        c.Role,
		Permissions: c.Permissions,
	}
}

func (p Principal) IsSuperAdmin() bool {
	return p.Role == RoleSuperAdmin
}

// HasPermission reports whether p holds perm. Super admins hold every permission.
func (p Principal) HasPermission(perm string) bool {
	if perm == "" || p.IsSuperAdmin() {
		return true
	}
	return slices.Contains(p.Permissions, perm)
}

// ResolveTenant returns the tenant a request acts on. Only super admins may act on a tenant
// other than their own; requested is zero when no tenant was asked for.
func (p Principal) ResolveTenant(requested int32) (int32, error) {
	if requested == 0 || requested == p.TenantID {
		if p.TenantID == 0 {
			return 0, ErrForbidden
		}
		return p.TenantID, nil
	}
	if !p.IsSuperAdmin() {
		return 0, ErrForbidden
	}
	return requested, nil
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
