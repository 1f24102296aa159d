package rbac

import (
	"net/http"
)

var policy = NewChecker(nil)

// guard lets the request through when allow holds for the caller's role
// and answers 403 otherwise.
func guard(allow func(r *http.Request, role Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allow(r, RoleFromContext(r.Context())) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func Require(perm string) func(http.Handler) http.Handler {
	return guard(func(_ *http.Request, role Role) bool { return policy.Can(role, perm) })
}

func RequireAny(perms ...string) func(http.Handler) http.Handler {
	return guard(func(_ *http.Request, role Role) bool { return policy.CanAny(role, perms...) })
}

// RequireOwnerOr admits the owner of the addressed record, or any role
// holding perm. A teacher reading a student's progress takes the second
// path.
func RequireOwnerOr(perm string, isOwner func(r *http.Request) bool) func(http.Handler) http.Handler {
	return guard(func(r *http.Request, role Role) bool { return isOwner(r) || policy.Can(role, perm) })
}
