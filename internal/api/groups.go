package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yahyalegrini24/AttendEase/internal/auth"
)

type SaveGroupsRequest struct {
	Semester string   `json:"semester" binding:"required"`
	GroupIDs []string `json:"groupIds" binding:"required,dive,required"`
}

// ListSemesters godoc
// @Summary      Semesters, most recent first
// @Tags         groups
// @Produce      json
// @Success      200 {array} models.Semester
// @Security     BearerAuth
// @Router       /semesters [get]
func (s *Server) ListSemesters(c *gin.Context) {
	sems, err := s.Groups.Semesters(c.Request.Context())
	if err != nil {
		s.fail(c, err, "Failed to fetch semesters")
		return
	}
	c.JSON(http.StatusOK, sems)
}

// BrowseGroups godoc
// @Summary      Groups of the teacher's branch
// @Description  Degree, year, section and file tree with the teacher's chosen groups flagged.
// @Tags         groups
// @Produce      json
// @Param        semester query string false "Semester id, latest when empty"
// @Success      200 {object} groups.Browser
// @Security     BearerAuth
// @Router       /groups [get]
func (s *Server) BrowseGroups(c *gin.Context) {
	user := auth.CurrentUser(c)
	b, err := s.Groups.Browse(c.Request.Context(), user.TeacherID, user.BranchID, c.Query("semester"))
	if err != nil {
		s.fail(c, err, "Failed to fetch groups")
		return
	}
	c.JSON(http.StatusOK, b)
}

// SaveGroups godoc
// @Summary      Replace the teacher's groups for a semester
// @Tags         groups
// @Accept       json
// @Param        body body SaveGroupsRequest true "Chosen groups"
// @Success      204
// @Failure      400 {object} map[string]string
// @Security     BearerAuth
// @Router       /groups [put]
func (s *Server) SaveGroups(c *gin.Context) {
	var req SaveGroupsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}
	user := auth.CurrentUser(c)
	if err := s.Groups.Save(c.Request.Context(), user.TeacherID, user.BranchID, req.Semester, req.GroupIDs); err != nil {
		s.fail(c, err, "Failed to save groups")
		return
	}
	c.Status(http.StatusNoContent)
}
