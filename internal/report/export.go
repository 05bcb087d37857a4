package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/yahyalegrini24/AttendEase/internal/excel"
	"github.com/yahyalegrini24/AttendEase/internal/history"
	"github.com/yahyalegrini24/AttendEase/internal/models"
	"github.com/yahyalegrini24/AttendEase/internal/organize"
)

var (
	ErrNotTeaching  = errors.New("report: teacher has no slot for this module and group")
	ErrNoRosterFile = errors.New("report: group has no roster workbook")
)

// RosterSource fetches a roster workbook by its stored path.
type RosterSource interface {
	Fetch(ctx context.Context, groupPath string) ([]byte, error)
}

// Entry is one exportable module and group pair.
type Entry struct {
	ModuleID   string `json:"moduleId"`
	ModuleName string `json:"moduleName"`
	GroupID    string `json:"groupId"`
	GroupName  string `json:"groupName"`
	FilePath   string `json:"filePath,omitempty"`
	Degree     string `json:"degreeName,omitempty"`
	Section    string `json:"sectionName,omitempty"`

	yearID, yearName        string
	semester, semesterLabel string
}

func flatten(s models.SessionStructure) Entry {
	e := Entry{ModuleID: s.ModuleID, GroupID: s.GroupID}
	if m := s.Module; m != nil {
		e.ModuleName = m.ModuleName
		if m.SemesterID != nil {
			e.semester = *m.SemesterID
		}
		if m.Semester != nil {
			e.semesterLabel = m.Semester.Label
		}
		if m.SchoolYear != nil {
			e.yearID, e.yearName = m.SchoolYear.YearID, m.SchoolYear.YearName
		}
	}
	if g := s.Group; g != nil {
		e.GroupName = g.GroupName
		e.FilePath = g.GroupPath
		if sec := g.Section; sec != nil {
			e.Section = sec.SectionName
			if sec.SchoolYear != nil && sec.SchoolYear.Degree != nil {
				e.Degree = sec.SchoolYear.Degree.DegreeName
			}
		}
	}
	return e
}

var levels = []organize.Level[Entry]{
	{Name: "year", Extract: func(e Entry) (string, string, bool) { return e.yearID, e.yearName, e.yearID != "" }},
	{Name: "semester", Extract: func(e Entry) (string, string, bool) {
		return e.semester, e.semesterLabel, e.semester != ""
	}},
}

type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Browse lists the module and group pairs the teacher can export, by year and
// semester. Several slots of the same pair show up once.
func (s *Service) Browse(ctx context.Context, teacherID, semester string) (*organize.Node[Entry], error) {
	slots, err := s.store.TeacherSlots(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}
	seen := make(map[[2]string]bool, len(slots))
	entries := make([]Entry, 0, len(slots))
	for _, sl := range slots {
		key := [2]string{sl.ModuleID, sl.GroupID}
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, flatten(sl))
	}

	var keep func(Entry) bool
	if semester != "" && semester != history.AllSemesters {
		keep = func(e Entry) bool { return e.semester == semester }
	}
	return organize.Organize(organize.Filter(entries, keep), levels...), nil
}

func (s *Service) teaches(ctx context.Context, teacherID, moduleID, groupID string) error {
	slots, err := s.store.TeacherSlots(ctx, teacherID)
	if err != nil {
		return fmt.Errorf("load slots: %w", err)
	}
	for _, sl := range slots {
		if sl.ModuleID == moduleID && sl.GroupID == groupID {
			return nil
		}
	}
	return ErrNotTeaching
}

// Matrix returns the presence matrix of a module and group the teacher
// teaches.
func (s *Service) Matrix(ctx context.Context, teacherID, moduleID, groupID string) (*Matrix, error) {
	if err := s.teaches(ctx, teacherID, moduleID, groupID); err != nil {
		return nil, err
	}
	return BuildMatrix(ctx, s.store, moduleID, groupID)
}

// Export fetches the group's roster workbook from src and merges the
// attendance matrix into it. It returns the workbook and a file name.
func (s *Service) Export(ctx context.Context, teacherID, moduleID, groupID string, src RosterSource) ([]byte, string, error) {
	m, err := s.Matrix(ctx, teacherID, moduleID, groupID)
	if err != nil {
		return nil, "", err
	}
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, "", fmt.Errorf("load group: %w", err)
	}
	if strings.TrimSpace(group.GroupPath) == "" {
		return nil, "", ErrNoRosterFile
	}

	workbook, err := src.Fetch(ctx, group.GroupPath)
	if err != nil {
		return nil, "", err
	}
	out, err := excel.MergeAttendance(bytes.NewReader(workbook), m.Sheet())
	if err != nil {
		return nil, "", fmt.Errorf("merge attendance: %w", err)
	}

	_, name := excel.SplitGroupPath(group.GroupPath)
	s.logger.Info("attendance exported",
		zap.String("module_id", moduleID),
		zap.String("group_id", groupID),
		zap.Int("sessions", len(m.Columns)),
		zap.Int("students", len(m.Students)))
	return out, "attendance_" + moduleID + "_" + name, nil
}
