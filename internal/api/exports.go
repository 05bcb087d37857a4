package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yahyalegrini24/AttendEase/internal/auth"
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ListExports godoc
// @Summary      Exportable modules and groups
// @Description  Module and group pairs from the teacher's timetable, by year and semester.
// @Tags         exports
// @Produce      json
// @Param        semester query string false "Semester id or All"
// @Success      200 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /exports [get]
func (s *Server) ListExports(c *gin.Context) {
	tree, err := s.Reports.Browse(c.Request.Context(), auth.CurrentUser(c).TeacherID, c.Query("semester"))
	if err != nil {
		s.fail(c, err, "Failed to fetch exports")
		return
	}
	c.JSON(http.StatusOK, tree)
}

// Export godoc
// @Summary      Download the attendance workbook
// @Description  The group's roster workbook with one column per dated session and a Note column.
// @Tags         exports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        module path string true "Module id"
// @Param        group  path string true "Group id"
// @Success      200 {file} file
// @Failure      403 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /exports/{module}/{group} [get]
func (s *Server) Export(c *gin.Context) {
	src := s.Download.WithToken(auth.BearerToken(c))
	data, name, err := s.Reports.Export(c.Request.Context(),
		auth.CurrentUser(c).TeacherID, c.Param("module"), c.Param("group"), src)
	if err != nil {
		s.fail(c, err, "Failed to export attendance")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxMime, data)
}

// ExportMatrix godoc
// @Summary      Attendance matrix as JSON
// @Tags         exports
// @Produce      json
// @Param        module path string true "Module id"
// @Param        group  path string true "Group id"
// @Success      200 {object} report.Matrix
// @Failure      403 {object} map[string]string
// @Security     BearerAuth
// @Router       /exports/{module}/{group}/matrix [get]
func (s *Server) ExportMatrix(c *gin.Context) {
	m, err := s.Reports.Matrix(c.Request.Context(),
		auth.CurrentUser(c).TeacherID, c.Param("module"), c.Param("group"))
	if err != nil {
		s.fail(c, err, "Failed to build attendance matrix")
		return
	}
	c.JSON(http.StatusOK, m)
}
