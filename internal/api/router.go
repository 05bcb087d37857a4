package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/yahyalegrini24/AttendEase/docs"
	"github.com/yahyalegrini24/AttendEase/internal/attendance"
	"github.com/yahyalegrini24/AttendEase/internal/auth"
	"github.com/yahyalegrini24/AttendEase/internal/excel"
	"github.com/yahyalegrini24/AttendEase/internal/groups"
	"github.com/yahyalegrini24/AttendEase/internal/history"
	"github.com/yahyalegrini24/AttendEase/internal/identity"
	"github.com/yahyalegrini24/AttendEase/internal/report"
	"github.com/yahyalegrini24/AttendEase/internal/timetable"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps is everything the HTTP layer talks to.
type Deps struct {
	Logger    *zap.Logger
	DB        Pinger
	Auth      *auth.Service
	Contexts  *identity.Registry
	Manager   *attendance.Manager
	Runs      *attendance.Runs
	Timetable *timetable.Service
	History   *history.Service
	Reports   *report.Service
	Groups    *groups.Service
	Download  *excel.DownloadClient
	RosterDir string
}

// Server holds the handlers of the API.
type Server struct {
	Deps
}

// @title           AttendEase API
// @version         1.0
// @description     Attendance tracking back end for teachers.
// @host            localhost:8000
// @BasePath        /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func SetupRouter(d Deps) *gin.Engine {
	s := &Server{Deps: d}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), Logger(s.Logger))

	r.GET("/health", s.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	requireUser := auth.RequireUser(d.Auth, d.Contexts, s.Logger)
	r.GET("/download/:name", requireUser, s.DownloadRoster)

	authHandler := auth.NewHandler(d.Auth, d.Contexts, s.Logger)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/login", authHandler.Login)
		v1.POST("/auth/refresh", authHandler.Refresh)
		v1.GET("/auth/google/login", authHandler.GoogleLogin)
		v1.GET("/auth/google/callback", authHandler.GoogleCallback)
	}

	protected := v1.Group("")
	protected.Use(requireUser)
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/me", authHandler.Me)
		protected.PUT("/me", authHandler.UpdateMe)

		protected.GET("/slots", s.ListSlots)
		protected.GET("/timetable", s.GetTimetable)
		protected.PUT("/timetable", s.SaveTimetable)
		protected.GET("/classrooms", s.ListClassrooms)

		protected.POST("/slots/:id/sessions", s.StartSession)
		protected.GET("/sessions/:id/run", s.GetRun)
		protected.POST("/sessions/:id/mark", s.Mark)
		protected.POST("/sessions/:id/next", s.Next)
		protected.POST("/sessions/:id/previous", s.Previous)
		protected.POST("/sessions/:id/confirm", s.Confirm)
		protected.DELETE("/sessions/:id", s.Abort)
		protected.POST("/sessions/:id/abandon", s.Abandon)
		protected.POST("/sessions/:id/resume", s.Resume)
		protected.GET("/sessions/:id/absentees", s.Absentees)
		protected.POST("/sessions/:id/absentees/:matricule/justify", s.Justify)

		protected.GET("/history", s.SessionHistory)

		protected.GET("/exports", s.ListExports)
		protected.GET("/exports/:module/:group", s.Export)
		protected.GET("/exports/:module/:group/matrix", s.ExportMatrix)

		protected.GET("/semesters", s.ListSemesters)
		protected.GET("/groups", s.BrowseGroups)
		protected.PUT("/groups", s.SaveGroups)
	}

	return r
}

// Health godoc
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      500 {object} map[string]string
// @Router       /health [get]
func (s *Server) Health(c *gin.Context) {
	if err := s.DB.Ping(c.Request.Context()); err != nil {
		s.Logger.Error("db ping failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "db_ping_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
