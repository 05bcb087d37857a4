// Package groups lets a teacher browse the groups of their branch and choose
// which ones they teach in a semester.
package groups

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/yahyalegrini24/AttendEase/internal/models"
	"github.com/yahyalegrini24/AttendEase/internal/organize"
)

var (
	ErrNoSemester   = errors.New("groups: a semester is required")
	ErrUnknownGroup = errors.New("groups: group is not part of this branch")
)

type Store interface {
	Semesters(ctx context.Context) ([]models.Semester, error)
	BranchGroups(ctx context.Context, branchID string) ([]models.Group, error)
	TeacherGroups(ctx context.Context, teacherID, semesterID string) ([]models.TeacherGroup, error)
	ReplaceTeacherGroups(ctx context.Context, teacherID, semesterID string, groupIDs []string) error
}

// Entry is one selectable group.
type Entry struct {
	GroupID   string `json:"groupId"`
	GroupName string `json:"groupName"`
	Path      string `json:"path,omitempty"`
	Assigned  bool   `json:"isAssigned"`

	degreeID, degreeName   string
	yearID, yearName       string
	sectionID, sectionName string
}

func flatten(g models.Group, assigned map[string]bool) Entry {
	e := Entry{
		GroupID:   g.GroupID,
		GroupName: g.GroupName,
		Path:      g.GroupPath,
		Assigned:  assigned[g.GroupID],
	}
	if sec := g.Section; sec != nil {
		e.sectionID, e.sectionName = sec.SectionID, sec.SectionName
		if y := sec.SchoolYear; y != nil {
			e.yearID, e.yearName = y.YearID, y.YearName
			if d := y.Degree; d != nil {
				e.degreeID, e.degreeName = d.DegreeID, d.DegreeName
			}
		}
	}
	return e
}

// FileName is the last element of a roster path written with either slash.
func FileName(p string) string {
	return path.Base(strings.ReplaceAll(p, `\`, "/"))
}

var levels = []organize.Level[Entry]{
	{Name: "degree", Extract: func(e Entry) (string, string, bool) { return e.degreeID, e.degreeName, e.degreeID != "" }},
	{Name: "year", Extract: func(e Entry) (string, string, bool) { return e.yearID, e.yearName, e.yearID != "" }},
	{Name: "section", Extract: func(e Entry) (string, string, bool) { return e.sectionID, e.sectionName, e.sectionID != "" }},
	{Name: "file", Extract: func(e Entry) (string, string, bool) { return e.Path, FileName(e.Path), e.Path != "" }},
}

// Browser is what the group selection page shows.
type Browser struct {
	Semester  string                `json:"semester"`
	Semesters []models.Semester     `json:"semesters"`
	Tree      *organize.Node[Entry] `json:"tree"`
	Assigned  []string              `json:"assigned"`
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Semesters(ctx context.Context) ([]models.Semester, error) {
	sems, err := s.store.Semesters(ctx)
	if err != nil {
		return nil, fmt.Errorf("load semesters: %w", err)
	}
	return sems, nil
}

// Browse builds the degree / year / section / file tree of the branch's
// groups, flagging the ones the teacher has chosen for semester. An empty
// semester selects the most recent one.
func (s *Service) Browse(ctx context.Context, teacherID, branchID, semester string) (*Browser, error) {
	sems, err := s.Semesters(ctx)
	if err != nil {
		return nil, err
	}
	if semester == "" && len(sems) > 0 {
		semester = sems[0].SemesterID
	}

	all, err := s.store.BranchGroups(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("load branch groups: %w", err)
	}

	assigned := make(map[string]bool)
	var ids []string
	if semester != "" {
		mine, err := s.store.TeacherGroups(ctx, teacherID, semester)
		if err != nil {
			return nil, fmt.Errorf("load teacher groups: %w", err)
		}
		for _, tg := range mine {
			if !assigned[tg.GroupID] {
				assigned[tg.GroupID] = true
				ids = append(ids, tg.GroupID)
			}
		}
	}

	entries := make([]Entry, 0, len(all))
	for _, g := range all {
		entries = append(entries, flatten(g, assigned))
	}
	if ids == nil {
		ids = []string{}
	}
	return &Browser{
		Semester:  semester,
		Semesters: sems,
		Tree:      organize.Organize(entries, levels...),
		Assigned:  ids,
	}, nil
}

// Save replaces the teacher's chosen groups for semester.
func (s *Service) Save(ctx context.Context, teacherID, branchID, semester string, groupIDs []string) error {
	if semester == "" {
		return ErrNoSemester
	}
	all, err := s.store.BranchGroups(ctx, branchID)
	if err != nil {
		return fmt.Errorf("load branch groups: %w", err)
	}
	known := make(map[string]bool, len(all))
	for _, g := range all {
		known[g.GroupID] = true
	}

	seen := make(map[string]bool, len(groupIDs))
	unique := make([]string, 0, len(groupIDs))
	for _, id := range groupIDs {
		if !known[id] {
			return fmt.Errorf("%w: %s", ErrUnknownGroup, id)
		}
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	if err := s.store.ReplaceTeacherGroups(ctx, teacherID, semester, unique); err != nil {
		return fmt.Errorf("save teacher groups: %w", err)
	}
	return nil
}
