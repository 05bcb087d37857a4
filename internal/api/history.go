package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yahyalegrini24/AttendEase/internal/auth"
	"github.com/yahyalegrini24/AttendEase/internal/history"
)

// SessionHistory godoc
// @Summary      Past sessions by year, semester and module
// @Tags         history
// @Produce      json
// @Param        semester query string false "Semester id or All"
// @Success      200 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /history [get]
func (s *Server) SessionHistory(c *gin.Context) {
	semester := c.DefaultQuery("semester", history.AllSemesters)
	tree, err := s.History.Tree(c.Request.Context(), auth.CurrentUser(c).TeacherID, semester)
	if err != nil {
		s.fail(c, err, "Failed to fetch session history")
		return
	}
	c.JSON(http.StatusOK, tree)
}
