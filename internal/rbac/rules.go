package rbac

// Role is the "role" claim of a caller's bearer token.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Permissions guarding lesson content and progress records.
const (
	PermLessonView      = "lesson:view"
	PermProgressViewOwn = "progress:view-own"
	PermProgressViewAll = "progress:view-all"
	PermProgressWrite   = "progress:write"
)

// RolePermissions is the default policy. Students work on their own
// records; teachers read everyone's but write none.
var RolePermissions = map[Role][]string{
	RoleStudent: {PermLessonView, PermProgressViewOwn, PermProgressWrite},
	RoleTeacher: {PermLessonView, PermProgressViewOwn, PermProgressViewAll},
	RoleAdmin:   {"*"},
}
