package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/class-record-api/internal/middleware"
	"github.com/noah-isme/class-record-api/internal/models"
)

// Handlers bundles every HTTP handler mounted under the API prefix.
type Handlers struct {
	Auth       *AuthHandler
	Subjects   *SubjectHandler
	Sections   *SectionHandler
	Teachers   *TeacherHandler
	Students   *StudentHandler
	Grades     *GradeHandler
	Attendance *AttendanceHandler
	Trash      *TrashHandler
	Dashboard  *DashboardHandler
	Export     *ExportHandler
}

// RouteGuards carries the collaborators the route middleware needs.
type RouteGuards struct {
	Tokens   middleware.TokenValidator
	Subjects middleware.SubjectAccessChecker
	Logger   *zap.Logger
}

// RegisterRoutes mounts the API on group. Subject-scoped routes carry the
// subject in the path; teachers only reach their assigned subjects.
func RegisterRoutes(group *gin.RouterGroup, h Handlers, guards RouteGuards) {
	group.POST("/auth/login", h.Auth.Login)

	authed := group.Group("")
	authed.Use(middleware.JWT(guards.Tokens), middleware.WithResponseMeta())
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	audit := func(action string) gin.HandlerFunc { return middleware.Audit(guards.Logger, action) }

	authed.GET("/auth/me", h.Auth.Me)
	authed.GET("/dashboard", h.Dashboard.System)

	authed.GET("/subjects", h.Subjects.List)
	authed.POST("/subjects", adminOnly, h.Subjects.Create)
	authed.DELETE("/subjects/:subject", adminOnly, audit("subject.delete"), h.Subjects.Delete)

	subject := authed.Group("/subjects/:subject")
	subject.Use(middleware.RequireSubjectAccess(guards.Subjects))
	subject.GET("/dashboard", h.Dashboard.Subject)
	subject.GET("/grades", h.Grades.List)
	subject.GET("/grades/:studentId", h.Grades.Get)
	subject.PUT("/grades/:studentId", h.Grades.Update)
	subject.PUT("/grades/:studentId/status", h.Grades.SetStatus)
	subject.POST("/enrollments", h.Grades.Enroll)
	subject.DELETE("/enrollments/:studentId", audit("enrollment.trash"), h.Grades.Unenroll)
	subject.GET("/attendance", h.Attendance.List)
	subject.PUT("/attendance", h.Attendance.Mark)
	subject.POST("/attendance/bulk", h.Attendance.BulkMark)
	subject.GET("/export/grades", h.Export.Grades)
	subject.GET("/export/attendance", h.Export.Attendance)

	authed.GET("/sections", h.Sections.List)
	authed.POST("/sections", adminOnly, h.Sections.Create)
	authed.DELETE("/sections/:section", adminOnly, audit("section.delete"), h.Sections.Delete)

	authed.GET("/students", h.Students.List)
	authed.POST("/students", h.Students.Create)
	authed.GET("/students/:id", h.Students.Get)
	authed.GET("/students/:id/subjects", h.Students.Subjects)

	authed.POST("/teachers", adminOnly, h.Teachers.Create)
	authed.POST("/teachers/:id/subjects", adminOnly, h.Teachers.AssignSubject)
	authed.DELETE("/teachers/:id/subjects/:subject", adminOnly, h.Teachers.RemoveSubject)

	authed.GET("/trash", h.Trash.List)
	authed.GET("/trash/:id", h.Trash.Get)
	authed.POST("/trash/:id/restore", audit("trash.restore"), h.Trash.Restore)
	authed.DELETE("/trash/:id", adminOnly, audit("trash.purge"), h.Trash.Purge)
	authed.DELETE("/trash", adminOnly, audit("trash.purge_all"), h.Trash.PurgeAll)
}
