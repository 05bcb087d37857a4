// Package history arranges a teacher's past sessions into a
// year / semester / module tree.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/yahyalegrini24/AttendEase/internal/models"
	"github.com/yahyalegrini24/AttendEase/internal/organize"
)

// AllSemesters disables the semester filter.
const AllSemesters = "All"

type Store interface {
	TeacherSessions(ctx context.Context, teacherID string) ([]models.Session, error)
}

// Entry is one session as listed in the history tree.
type Entry struct {
	SessionID     string    `json:"sessionId"`
	SessionNumber int       `json:"sessionNumber"`
	Date          time.Time `json:"date"`
	Confirm       bool      `json:"confirm"`
	GroupID       string    `json:"groupId"`
	GroupName     string    `json:"groupName,omitempty"`
	Classroom     string    `json:"classroom,omitempty"`
	Day           string    `json:"day,omitempty"`

	YearID        string `json:"-"`
	YearName      string `json:"-"`
	SemesterID    string `json:"-"`
	SemesterLabel string `json:"-"`
	ModuleID      string `json:"-"`
	ModuleName    string `json:"-"`
}

func flatten(s models.Session) Entry {
	e := Entry{
		SessionID:     s.SessionID,
		SessionNumber: s.SessionNumber,
		Date:          s.Date,
		Confirm:       s.Confirm,
		GroupID:       s.GroupID,
	}
	if g := s.Group; g != nil {
		e.GroupName = g.GroupName
		if g.Section != nil && g.Section.SchoolYear != nil {
			e.YearID = g.Section.SchoolYear.YearID
			e.YearName = g.Section.SchoolYear.YearName
		}
	}
	if m := s.Module; m != nil {
		e.ModuleID = m.ModuleID
		e.ModuleName = m.ModuleName
		if m.Semester != nil {
			e.SemesterID = m.Semester.SemesterID
			e.SemesterLabel = m.Semester.Label
		}
	}
	if c := s.Classroom; c != nil {
		e.Classroom = c.ClassNumber
	}
	if d := s.Day; d != nil {
		e.Day = d.DayName
	}
	return e
}

var levels = []organize.Level[Entry]{
	{Name: "year", Extract: func(e Entry) (string, string, bool) { return e.YearID, e.YearName, e.YearID != "" }},
	{Name: "semester", Extract: func(e Entry) (string, string, bool) { return e.SemesterID, e.SemesterLabel, e.SemesterID != "" }},
	{Name: "module", Extract: func(e Entry) (string, string, bool) { return e.ModuleID, e.ModuleName, e.ModuleID != "" }},
}

// SemesterFilter keeps entries of one semester. "" and "All" keep everything.
func SemesterFilter(semester string) func(Entry) bool {
	if semester == "" || semester == AllSemesters {
		return nil
	}
	return func(e Entry) bool { return e.SemesterID == semester }
}

// Organize builds the tree from already-loaded sessions.
func Organize(sessions []models.Session, semester string) *organize.Node[Entry] {
	entries := make([]Entry, 0, len(sessions))
	for _, s := range sessions {
		entries = append(entries, flatten(s))
	}
	return organize.Organize(organize.Filter(entries, SemesterFilter(semester)), levels...)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Tree loads the teacher's sessions, newest first, and organizes them.
func (s *Service) Tree(ctx context.Context, teacherID, semester string) (*organize.Node[Entry], error) {
	sessions, err := s.store.TeacherSessions(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	return Organize(sessions, semester), nil
}
