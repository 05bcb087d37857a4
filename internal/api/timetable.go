package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yahyalegrini24/AttendEase/internal/auth"
	"github.com/yahyalegrini24/AttendEase/internal/timetable"
)

type SaveTimetableRequest struct {
	Cells []timetable.CellInput `json:"cells" binding:"dive"`
}

// ListSlots godoc
// @Summary      Scheduled slots of a day
// @Description  Lists the teacher's slots on a day. "Today" or no day means the current weekday.
// @Tags         timetable
// @Produce      json
// @Param        day query string false "Today, Sunday ... Thursday"
// @Success      200 {array} models.SessionStructure
// @Failure      400 {object} map[string]string
// @Security     BearerAuth
// @Router       /slots [get]
func (s *Server) ListSlots(c *gin.Context) {
	slots, err := s.Timetable.Slots(c.Request.Context(), auth.CurrentUser(c).TeacherID, c.Query("day"))
	if err != nil {
		s.fail(c, err, "Failed to fetch slots")
		return
	}
	c.JSON(http.StatusOK, slots)
}

// GetTimetable godoc
// @Summary      Weekly timetable
// @Tags         timetable
// @Produce      json
// @Success      200 {object} timetable.Grid
// @Security     BearerAuth
// @Router       /timetable [get]
func (s *Server) GetTimetable(c *gin.Context) {
	grid, err := s.Timetable.Load(c.Request.Context(), auth.CurrentUser(c).TeacherID)
	if err != nil {
		s.fail(c, err, "Failed to fetch timetable")
		return
	}
	c.JSON(http.StatusOK, grid)
}

// SaveTimetable godoc
// @Summary      Replace the weekly timetable
// @Tags         timetable
// @Accept       json
// @Produce      json
// @Param        body body SaveTimetableRequest true "Timetable cells"
// @Success      200 {object} timetable.Grid
// @Failure      400 {object} map[string]string
// @Failure      409 {object} map[string]string
// @Security     BearerAuth
// @Router       /timetable [put]
func (s *Server) SaveTimetable(c *gin.Context) {
	var req SaveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}
	grid, err := s.Timetable.Save(c.Request.Context(), auth.CurrentUser(c).TeacherID, req.Cells)
	if err != nil {
		s.fail(c, err, "Failed to save timetable")
		return
	}
	c.JSON(http.StatusOK, grid)
}

// ListClassrooms godoc
// @Summary      Classrooms
// @Tags         timetable
// @Produce      json
// @Success      200 {array} models.Classroom
// @Security     BearerAuth
// @Router       /classrooms [get]
func (s *Server) ListClassrooms(c *gin.Context) {
	rooms, err := s.Timetable.Classrooms(c.Request.Context())
	if err != nil {
		s.fail(c, err, "Failed to fetch classrooms")
		return
	}
	c.JSON(http.StatusOK, rooms)
}
