package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yahyalegrini24/AttendEase/internal/attendance"
	"github.com/yahyalegrini24/AttendEase/internal/auth"
)

type MarkRequest struct {
	Present *bool `json:"present" binding:"required"`
}

// run returns the in-memory run of the path's session if it belongs to the
// caller. It writes the error response itself.
func (s *Server) run(c *gin.Context) (*attendance.Run, bool) {
	run, err := s.Runs.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err, "Failed to load attendance run")
		return nil, false
	}
	if run.TeacherID() != auth.CurrentUser(c).TeacherID {
		s.fail(c, attendance.ErrNotOwner, "")
		return nil, false
	}
	return run, true
}

// StartSession godoc
// @Summary      Start taking attendance for a slot
// @Description  Creates a dated session from the slot and loads the group roster.
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Slot id"
// @Success      201 {object} attendance.Snapshot
// @Failure      400 {object} map[string]string
// @Failure      403 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Failure      500 {object} map[string]string
// @Security     BearerAuth
// @Router       /slots/{id}/sessions [post]
func (s *Server) StartSession(c *gin.Context) {
	user := auth.CurrentUser(c)
	slot, err := s.Timetable.Slot(c.Request.Context(), user.TeacherID, c.Param("id"))
	if err != nil {
		s.fail(c, err, "Failed to load slot")
		return
	}
	run, err := s.Manager.Start(c.Request.Context(), *slot)
	if err != nil {
		s.fail(c, err, "Failed to start session")
		return
	}
	s.Runs.Put(run)
	c.JSON(http.StatusCreated, run.Snapshot())
}

// GetRun godoc
// @Summary      Current state of an attendance run
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session id"
// @Success      200 {object} attendance.Snapshot
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /sessions/{id}/run [get]
func (s *Server) GetRun(c *gin.Context) {
	run, ok := s.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, run.Snapshot())
}

// Mark godoc
// @Summary      Mark the current student
// @Description  Records presence for the student under the cursor and moves on.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id   path string      true "Session id"
// @Param        body body MarkRequest true "Presence"
// @Success      200 {object} attendance.Snapshot
// @Failure      400 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Failure      409 {object} map[string]string
// @Security     BearerAuth
// @Router       /sessions/{id}/mark [post]
func (s *Server) Mark(c *gin.Context) {
	var req MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}
	run, ok := s.run(c)
	if !ok {
		return
	}
	if err := run.Mark(c.Request.Context(), *req.Present); err != nil {
		s.fail(c, err, "Failed to save attendance mark")
		return
	}
	c.JSON(http.StatusOK, run.Snapshot())
}

// Next godoc
// @Summary      Move the cursor to the next student
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session id"
// @Success      200 {object} attendance.Snapshot
// @Security     BearerAuth
// @Router       /sessions/{id}/next [post]
func (s *Server) Next(c *gin.Context) {
	run, ok := s.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, run.Next())
}

// Previous godoc
// @Summary      Move the cursor to the previous student
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session id"
// @Success      200 {object} attendance.Snapshot
// @Security     BearerAuth
// @Router       /sessions/{id}/previous [post]
func (s *Server) Previous(c *gin.Context) {
	run, ok := s.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, run.Previous())
}

// Confirm godoc
// @Summary      Confirm the session
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session id"
// @Success      200 {object} attendance.Snapshot
// @Failure      409 {object} map[string]string
// @Security     BearerAuth
// @Router       /sessions/{id}/confirm [post]
func (s *Server) Confirm(c *gin.Context) {
	run, ok := s.run(c)
	if !ok {
		return
	}
	if err := run.Confirm(c.Request.Context()); err != nil {
		s.fail(c, err, "Failed to confirm session")
		return
	}
	s.Runs.Remove(run.SessionID())
	c.JSON(http.StatusOK, run.Snapshot())
}

// Abort godoc
// @Summary      Discard the session and its marks
// @Tags         sessions
// @Param        id path string true "Session id"
// @Success      204
// @Failure      409 {object} map[string]string
// @Security     BearerAuth
// @Router       /sessions/{id} [delete]
func (s *Server) Abort(c *gin.Context) {
	run, ok := s.run(c)
	if !ok {
		return
	}
	if err := run.Abort(c.Request.Context()); err != nil {
		s.fail(c, err, "Failed to delete session")
		return
	}
	s.Runs.Remove(run.SessionID())
	c.Status(http.StatusNoContent)
}

// Abandon godoc
// @Summary      Leave an unfinished session
// @Description  Best-effort cleanup sent when the attendance page is closed. Runs with every student marked are kept.
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session id"
// @Success      200 {object} map[string]bool
// @Security     BearerAuth
// @Router       /sessions/{id}/abandon [post]
func (s *Server) Abandon(c *gin.Context) {
	run, err := s.Runs.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"discarded": false})
		return
	}
	if run.TeacherID() != auth.CurrentUser(c).TeacherID {
		s.fail(c, attendance.ErrNotOwner, "")
		return
	}
	discarded, err := run.Abandon(c.Request.Context())
	if err != nil {
		s.fail(c, err, "Failed to discard session")
		return
	}
	if discarded {
		s.Runs.Remove(run.SessionID())
	}
	c.JSON(http.StatusOK, gin.H{"discarded": discarded})
}

// Resume godoc
// @Summary      Resume an unconfirmed session
// @Description  Rebuilds the run from stored marks; the cursor lands on the first unmarked student.
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session id"
// @Success      200 {object} attendance.Snapshot
// @Failure      403 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Failure      409 {object} map[string]string
// @Security     BearerAuth
// @Router       /sessions/{id}/resume [post]
func (s *Server) Resume(c *gin.Context) {
	user := auth.CurrentUser(c)
	if run, err := s.Runs.Get(c.Param("id")); err == nil && run.TeacherID() == user.TeacherID {
		c.JSON(http.StatusOK, run.Snapshot())
		return
	}
	run, err := s.Manager.Resume(c.Request.Context(), user.TeacherID, c.Param("id"))
	if err != nil {
		s.fail(c, err, "Failed to resume session")
		return
	}
	s.Runs.Put(run)
	c.JSON(http.StatusOK, run.Snapshot())
}

// Absentees godoc
// @Summary      Students marked absent in a session
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session id"
// @Success      200 {array} models.Attendance
// @Failure      403 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /sessions/{id}/absentees [get]
func (s *Server) Absentees(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := s.Manager.Session(ctx, auth.CurrentUser(c).TeacherID, c.Param("id")); err != nil {
		s.fail(c, err, "Failed to load session")
		return
	}
	marks, err := s.Manager.Absentees(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, err, "Failed to load absentees")
		return
	}
	c.JSON(http.StatusOK, marks)
}

// Justify godoc
// @Summary      Justify an absence
// @Tags         sessions
// @Param        id        path string true "Session id"
// @Param        matricule path string true "Student matricule"
// @Success      204
// @Failure      403 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /sessions/{id}/absentees/{matricule}/justify [post]
func (s *Server) Justify(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := s.Manager.Session(ctx, auth.CurrentUser(c).TeacherID, c.Param("id")); err != nil {
		s.fail(c, err, "Failed to load session")
		return
	}
	if err := s.Manager.Justify(ctx, c.Param("id"), c.Param("matricule")); err != nil {
		s.fail(c, err, "Failed to justify absence")
		return
	}
	c.Status(http.StatusNoContent)
}
