package handler

import "github.com/labstack/echo/v4"

type Routes struct {
	Notes       *DefaultNoteRoute
	Users       *DefaultUserRoute
	WebSocket   *DefaultWSRoute
	Maintenance *DefaultMaintenanceRoute
}

// Register mounts every route on e. Nil route groups are skipped.
func Register(e *echo.Echo, r *Routes) {
	if r.Notes != nil {
		e.GET("/api/notes", r.Notes.GetNotes)
		e.GET("/api/notes/:id", r.Notes.GetNote)
		e.POST("/api/notes", r.Notes.CreateNote)
		e.PATCH("/api/notes/:id", r.Notes.ReviseNote)
		e.GET("/api/notes/:id/versions", r.Notes.GetVersions)
		e.GET("/api/notes/:id/versions/:versionId", r.Notes.GetVersion)
		e.POST("/api/notes/:id/restore/:versionId", r.Notes.RestoreVersion)
		e.POST("/api/notes/:id/versions/export", r.Notes.ExportVersions)
	}

	if r.Users != nil {
		e.GET("/api/users", r.Users.GetUsers)
		e.GET("/api/users/:id", r.Users.GetUser)
		e.POST("/api/users", r.Users.CreateUser)
		e.DELETE("/api/users/:id", r.Users.DeleteUser)
	}

	if r.WebSocket != nil {
		e.POST("/ws/connect", r.WebSocket.HandleConnect)
		e.POST("/ws/disconnect", r.WebSocket.HandleDisconnect)
		e.POST("/ws/message", r.WebSocket.HandleMessage)
	}

	if r.Maintenance != nil {
		e.POST("/api/maintenance/repair", r.Maintenance.RepairNotes)
	}

	// Docker Compose healthcheck
	e.GET("/health", HealthCheck)
	e.GET("/", HealthCheck)
}
