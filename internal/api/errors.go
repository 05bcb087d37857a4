package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yahyalegrini24/AttendEase/internal/attendance"
	"github.com/yahyalegrini24/AttendEase/internal/groups"
	"github.com/yahyalegrini24/AttendEase/internal/report"
	"github.com/yahyalegrini24/AttendEase/internal/timetable"
)

var errStatus = []struct {
	err    error
	status int
}{
	{attendance.ErrNoGroup, http.StatusBadRequest},
	{attendance.ErrNoModule, http.StatusBadRequest},
	{timetable.ErrUnknownDay, http.StatusBadRequest},
	{timetable.ErrUnknownTime, http.StatusBadRequest},
	{groups.ErrNoSemester, http.StatusBadRequest},
	{groups.ErrUnknownGroup, http.StatusBadRequest},

	{attendance.ErrNotOwner, http.StatusForbidden},
	{timetable.ErrNotOwner, http.StatusForbidden},
	{report.ErrNotTeaching, http.StatusForbidden},

	{attendance.ErrRunNotFound, http.StatusNotFound},
	{attendance.ErrNoSession, http.StatusNotFound},
	{attendance.ErrNotAbsent, http.StatusNotFound},
	{timetable.ErrSlotNotFound, http.StatusNotFound},
	{report.ErrNoRosterFile, http.StatusNotFound},

	{attendance.ErrRunClosed, http.StatusConflict},
	{attendance.ErrNotAllMarked, http.StatusConflict},
	{attendance.ErrConfirmed, http.StatusConflict},
	{attendance.ErrNotConfirmed, http.StatusConflict},
	{attendance.ErrEmptyRoster, http.StatusConflict},
	{timetable.ErrSlotTaken, http.StatusConflict},
}

func statusOf(err error) int {
	for _, e := range errStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// fail writes err as a JSON error. Known errors are reported as they are;
// anything else is logged and hidden behind msg.
func (s *Server) fail(c *gin.Context, err error, msg string) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		s.Logger.Error(msg,
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err))
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
