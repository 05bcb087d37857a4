package groups

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/yahyalegrini24/AttendEase/internal/models"
	"github.com/yahyalegrini24/AttendEase/internal/organize"
)

type mockStore struct {
	semesters []models.Semester
	groups    []models.Group
	assigned  map[string][]string // semester -> group ids

	saved struct {
		teacher, semester string
		ids               []string
	}
}

func (m *mockStore) Semesters(context.Context) ([]models.Semester, error) { return m.semesters, nil }

func (m *mockStore) BranchGroups(context.Context, string) ([]models.Group, error) {
	return m.groups, nil
}

func (m *mockStore) TeacherGroups(_ context.Context, teacherID, semesterID string) ([]models.TeacherGroup, error) {
	var out []models.TeacherGroup
	for _, id := range m.assigned[semesterID] {
		out = append(out, models.TeacherGroup{TeacherID: teacherID, GroupID: id, SemesterID: semesterID})
	}
	return out, nil
}

func (m *mockStore) ReplaceTeacherGroups(_ context.Context, teacherID, semesterID string, ids []string) error {
	m.saved.teacher, m.saved.semester, m.saved.ids = teacherID, semesterID, ids
	return nil
}

func group(id, path string) models.Group {
	deg := &models.Degree{DegreeID: "L", DegreeName: "Licence"}
	year := &models.SchoolYear{YearID: "L2", YearName: "2nd year", Degree: deg}
	return models.Group{
		GroupID:   id,
		GroupName: "Group " + id,
		GroupPath: path,
		Section:   &models.Section{SectionID: "A", SectionName: "Section A", SchoolYear: year},
	}
}

func newStore() *mockStore {
	return &mockStore{
		semesters: []models.Semester{{SemesterID: "S2", Label: "Semester 2"}, {SemesterID: "S1", Label: "Semester 1"}},
		groups: []models.Group{
			group("G1", `L2\A\td.xlsx`),
			group("G2", "L2/A/td.xlsx"),
			group("G3", "L2/A/tp.xlsx"),
			{GroupID: "G4", GroupName: "Orphan"},
		},
		assigned: map[string][]string{"S1": {"G2"}, "S2": {"G3"}},
	}
}

func TestBrowseDefaultsToLatestSemester(t *testing.T) {
	b, err := NewService(newStore()).Browse(context.Background(), "T1", "B1", "")
	if err != nil {
		t.Fatal(err)
	}
	if b.Semester != "S2" {
		t.Errorf("semester = %q, want S2", b.Semester)
	}
	if !reflect.DeepEqual(b.Assigned, []string{"G3"}) {
		t.Errorf("assigned = %v", b.Assigned)
	}

	files := b.Tree.AtLevel("file")
	if len(files) != 4 {
		t.Fatalf("file nodes = %d, want 4", len(files))
	}
	if files[0].Key.Label != "td.xlsx" {
		t.Errorf("file label = %q", files[0].Key.Label)
	}

	tp := b.Tree.Path("L", "L2", "A", "L2/A/tp.xlsx")
	if tp == nil || !tp.Leaves[0].Assigned {
		t.Errorf("G3 should be flagged assigned: %+v", tp)
	}
	orphan := b.Tree.Path(organize.UnknownID, organize.UnknownID, organize.UnknownID, organize.UnknownID)
	if orphan == nil || orphan.Leaves[0].GroupID != "G4" {
		t.Error("group without hierarchy should sit under unknown nodes")
	}
}

func TestBrowseOtherSemester(t *testing.T) {
	b, err := NewService(newStore()).Browse(context.Background(), "T1", "B1", "S1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(b.Assigned, []string{"G2"}) {
		t.Errorf("assigned = %v", b.Assigned)
	}
}

func TestSave(t *testing.T) {
	store := newStore()
	svc := NewService(store)
	ctx := context.Background()

	if err := svc.Save(ctx, "T1", "B1", "", []string{"G1"}); !errors.Is(err, ErrNoSemester) {
		t.Errorf("err = %v, want ErrNoSemester", err)
	}
	if err := svc.Save(ctx, "T1", "B1", "S1", []string{"G9"}); !errors.Is(err, ErrUnknownGroup) {
		t.Errorf("err = %v, want ErrUnknownGroup", err)
	}
	if err := svc.Save(ctx, "T1", "B1", "S1", []string{"G1", "G3", "G1"}); err != nil {
		t.Fatal(err)
	}
	if store.saved.semester != "S1" || !reflect.DeepEqual(store.saved.ids, []string{"G1", "G3"}) {
		t.Errorf("saved = %+v", store.saved)
	}
}

func TestFileName(t *testing.T) {
	for in, want := range map[string]string{
		`a\b\c.xlsx`: "c.xlsx",
		"a/b/c.xlsx": "c.xlsx",
		"c.xlsx":     "c.xlsx",
	} {
		if got := FileName(in); got != want {
			t.Errorf("FileName(%q) = %q", in, got)
		}
	}
}
