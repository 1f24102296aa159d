package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckerCan(t *testing.T) {
	c := NewChecker(nil)
	cases := []struct {
		role Role
		perm string
		want bool
	}{
		{RoleStudent, PermProgressWrite, true},
		{RoleStudent, PermProgressViewAll, false},
		{RoleTeacher, PermProgressViewAll, true},
		{RoleTeacher, PermProgressWrite, false},
		{RoleAdmin, "anything:at-all", true},
		{"", PermLessonView, false},
		{"guest", PermLessonView, false},
	}
	for _, tc := range cases {
		if got := c.Can(tc.role, tc.perm); got != tc.want {
			t.Errorf("Can(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}

	ops := NewChecker(map[Role][]string{"ops": {"progress:*"}})
	if !ops.Can("ops", PermProgressViewAll) || ops.Can("ops", PermLessonView) {
		t.Fatal("prefix grant mismatch")
	}
	if !c.CanAny(RoleTeacher, PermProgressWrite, PermProgressViewAll) {
		t.Fatal("CanAny should accept one matching permission")
	}
}

func TestRoleRoundTripsThroughContext(t *testing.T) {
	ctx := WithRole(context.Background(), "teacher")
	if got := RoleFromContext(ctx); got != RoleTeacher {
		t.Fatalf("role = %q", got)
	}
	if got := RoleFromContext(context.Background()); got != "" {
		t.Fatalf("empty context role = %q", got)
	}
}

func TestRequireOwnerOr(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	for _, tc := range []struct {
		role  string
		owner bool
		want  int
	}{
		{"student", true, http.StatusNoContent},
		{"student", false, http.StatusForbidden},
		{"teacher", false, http.StatusNoContent},
		{"", false, http.StatusForbidden},
	} {
		h := RequireOwnerOr(PermProgressViewAll, func(*http.Request) bool { return tc.owner })(ok)
		req := httptest.NewRequest("GET", "/", nil)
		req = req.WithContext(WithRole(req.Context(), tc.role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("role=%q owner=%v: %d, want %d", tc.role, tc.owner, rec.Code, tc.want)
		}
	}
}
