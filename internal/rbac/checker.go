package rbac

import (
	"context"
	"strings"
)

// Checker answers permission questions against a role table.
type Checker struct {
	table map[Role][]string
}

// NewChecker uses RolePermissions when table is nil.
func NewChecker(table map[Role][]string) *Checker {
	if table == nil {
		table = RolePermissions
	}
	return &Checker{table: table}
}

// Can reports whether role holds perm. A grant ending in "*" covers every
// permission with that prefix; an unknown role holds nothing.
func (c *Checker) Can(role Role, perm string) bool {
	for _, g := range c.table[role] {
		if grants(g, perm) {
			return true
		}
	}
	return false
}

func (c *Checker) CanAny(role Role, perms ...string) bool {
	for _, p := range perms {
		if c.Can(role, p) {
			return true
		}
	}
	return false
}

func grants(grant, perm string) bool {
	if prefix, ok := strings.CutSuffix(grant, "*"); ok {
		return strings.HasPrefix(perm, prefix)
	}
	return grant == perm
}

type roleKey struct{}

// WithRole stores the token's role claim.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, Role(role))
}

func RoleFromContext(ctx context.Context) Role {
	r, _ := ctx.Value(roleKey{}).(Role)
	return r
}
