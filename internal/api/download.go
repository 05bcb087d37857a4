package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errBadPath = errors.New("invalid roster path")

// rosterFile resolves name under groupPath inside root. Anything that would
// leave root is rejected.
func rosterFile(root, groupPath, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", errBadPath
	}
	dir := filepath.FromSlash(strings.Trim(strings.ReplaceAll(groupPath, `\`, "/"), "/"))
	rel := filepath.Join(dir, name)
	if !filepath.IsLocal(rel) {
		return "", errBadPath
	}
	return filepath.Join(root, rel), nil
}

// DownloadRoster godoc
// @Summary      Download a roster workbook
// @Tags         exports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        name      path  string true  "File name"
// @Param        groupPath query string false "Directory of the file"
// @Success      200 {file} file
// @Failure      400 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /download/{name} [get]
func (s *Server) DownloadRoster(c *gin.Context) {
	path, err := rosterFile(s.RosterDir, c.Query("groupPath"), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			s.Logger.Error("failed to stat roster", zap.String("path", path), zap.Error(err))
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	c.FileAttachment(path, c.Param("name"))
}
