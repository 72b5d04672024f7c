// Package httpapi exposes the attendance subsystem over HTTP.
package httpapi

import (
	"github.com/gin-gonic/gin"

	"companion/internal/attendance"
	"companion/internal/auth"
	"companion/internal/catalog"
	"companion/internal/config"
	"companion/internal/identity"
	"companion/internal/queue"
	"companion/internal/store"
)

// Server wires the attendance service and its collaborators into gin routes.
type Server struct {
	Cfg      config.App
	Att      *attendance.Service
	Catalog  *catalog.Catalog
	Accounts identity.Registrar
	Queue    queue.Queue
	Redis    *store.Redis
}

// Routes registers the /v1 API on the router.
func (s *Server) Routes(r *gin.Engine) {
	r.POST("/v1/auth/register", s.register)

	v1 := r.Group("/v1", auth.RequireAuth(s.Cfg.JWTSigningKey, s.Cfg.JWTIssuer))

	v1.GET("/sessions", s.listSessions)
	v1.GET("/sessions/:id/window", s.getWindow)

	organizer := v1.Group("", auth.RequireRole(identity.RoleOrganizer))
	organizer.POST("/sessions/:id/window", s.openWindow)
	organizer.GET("/sessions/:id/qr", s.sessionQR)
	organizer.POST("/sessions/:id/share", s.shareSession)

	student := v1.Group("", auth.RequireRole(identity.RoleStudent))
	student.POST("/attendance/scan", s.scan)
	student.GET("/attendance/me", s.myAttendance)

	staff := v1.Group("", auth.RequireRole(identity.RoleOrganizer, identity.RoleTeacher))
	staff.GET("/sessions/:id/stats", s.sessionStats)
	staff.GET("/shared", s.listShared)
	staff.GET("/shared/:id/records", s.sharedRecords)
	staff.GET("/shared/:id/export", s.exportShared)
}
