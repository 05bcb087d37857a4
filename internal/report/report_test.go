package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/yahyalegrini24/AttendEase/internal/excel"
	"github.com/yahyalegrini24/AttendEase/internal/models"
)

type mockStore struct {
	slots    []models.SessionStructure
	sessions []models.Session
	marks    map[string][]models.Attendance
	roster   []models.StudentGroup
	group    *models.Group
	marksErr error
}

func (m *mockStore) TeacherSlots(context.Context, string) ([]models.SessionStructure, error) {
	return m.slots, nil
}

func (m *mockStore) DatedSessions(context.Context, string, string) ([]models.Session, error) {
	return m.sessions, nil
}

func (m *mockStore) Marks(_ context.Context, sessionID string) ([]models.Attendance, error) {
	return m.marks[sessionID], m.marksErr
}

func (m *mockStore) Roster(context.Context, string) ([]models.StudentGroup, error) {
	return m.roster, nil
}

func (m *mockStore) GetGroup(context.Context, string) (*models.Group, error) {
	return m.group, nil
}

type fakeSource struct {
	data []byte
	path string
}

func (f *fakeSource) Fetch(_ context.Context, groupPath string) ([]byte, error) {
	f.path = groupPath
	return f.data, nil
}

func day(d int) time.Time { return time.Date(2024, 2, d, 8, 0, 0, 0, time.UTC) }

func newStore() *mockStore {
	return &mockStore{
		slots: []models.SessionStructure{{ID: "slot1", ModuleID: "M1", GroupID: "G1", TeacherID: "T1"}},
		sessions: []models.Session{
			{SessionID: "s1", SessionNumber: 1, Date: day(1)},
			{SessionID: "s2", SessionNumber: 2, Date: day(8)},
		},
		marks: map[string][]models.Attendance{
			"s1": {{SessionID: "s1", Matricule: "X", Presence: models.Present}, {SessionID: "s1", Matricule: "Y", Presence: models.Absent}},
			"s2": {{SessionID: "s2", Matricule: "X", Presence: models.Justified}, {SessionID: "s2", Matricule: "Z", Presence: models.Present}},
		},
		roster: []models.StudentGroup{{Matricule: "X", GroupID: "G1"}, {Matricule: "Y", GroupID: "G1"}},
		group:  &models.Group{GroupID: "G1", GroupName: "TD1", GroupPath: `L2\TD\g1.xlsx`},
	}
}

func TestBuildMatrix(t *testing.T) {
	m, err := BuildMatrix(context.Background(), newStore(), "M1", "G1")
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Note("X"); got != 1.5 {
		t.Errorf("Note(X) = %v, want 1.5", got)
	}
	if got := m.Note("Y"); got != 0 {
		t.Errorf("Note(Y) = %v, want 0", got)
	}
	if len(m.Students) != 3 || m.Students[2] != "Z" {
		t.Errorf("students = %v", m.Students)
	}
	if m.Values["Z"][0] != models.Absent || m.Values["Z"][1] != models.Present {
		t.Errorf("Z = %v", m.Values["Z"])
	}
	if h := m.Columns[1].Header(); h != "S2 08/02/2024" {
		t.Errorf("header = %q", h)
	}

	sheet := m.Sheet()
	if sheet.Totals["X"] != 1.5 || len(sheet.Values["Y"]) != 2 {
		t.Errorf("sheet = %+v", sheet)
	}
}

func TestBuildMatrixMarksError(t *testing.T) {
	store := newStore()
	store.marksErr = errors.New("boom")
	if _, err := BuildMatrix(context.Background(), store, "M1", "G1"); err == nil {
		t.Fatal("expected error")
	}
}

func TestExportRequiresSlot(t *testing.T) {
	svc := NewService(newStore(), zap.NewNop())
	_, _, err := svc.Export(context.Background(), "T1", "M9", "G1", &fakeSource{})
	if !errors.Is(err, ErrNotTeaching) {
		t.Fatalf("err = %v, want ErrNotTeaching", err)
	}
}

func TestExportWithoutRosterFile(t *testing.T) {
	store := newStore()
	store.group.GroupPath = ""
	_, _, err := NewService(store, zap.NewNop()).Export(context.Background(), "T1", "M1", "G1", &fakeSource{})
	if !errors.Is(err, ErrNoRosterFile) {
		t.Fatalf("err = %v, want ErrNoRosterFile", err)
	}
}

func TestExport(t *testing.T) {
	f := excelize.NewFile()
	for i, row := range [][]interface{}{
		{excel.MatriculeHeader, "Nom"},
		{"X", "Benali"},
		{"Y", "Kaci"},
	} {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	src := &fakeSource{data: buf.Bytes()}
	out, name, err := NewService(newStore(), zap.NewNop()).Export(context.Background(), "T1", "M1", "G1", src)
	if err != nil {
		t.Fatal(err)
	}
	if src.path != `L2\TD\g1.xlsx` {
		t.Errorf("fetched %q", src.path)
	}
	if name != "attendance_M1_g1.xlsx" {
		t.Errorf("name = %q", name)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	defer wb.Close()
	for axis, want := range map[string]string{"C1": "S1 01/02/2024", "E1": excel.NoteHeader, "E2": "1.5", "E3": "0"} {
		if got, _ := wb.GetCellValue("Sheet1", axis); got != want {
			t.Errorf("%s = %q, want %q", axis, got, want)
		}
	}
}

func TestBrowseDedupesAndFilters(t *testing.T) {
	s1, s2 := "S1", "S2"
	year := &models.SchoolYear{YearID: "Y1", YearName: "L2"}
	store := &mockStore{slots: []models.SessionStructure{
		{ID: "a", ModuleID: "M1", GroupID: "G1", Module: &models.Module{ModuleName: "Algo", SemesterID: &s1, SchoolYear: year}},
		{ID: "b", ModuleID: "M1", GroupID: "G1", Module: &models.Module{ModuleName: "Algo", SemesterID: &s1, SchoolYear: year}},
		{ID: "c", ModuleID: "M2", GroupID: "G1", Module: &models.Module{ModuleName: "BD", SemesterID: &s2, SchoolYear: year}},
	}}
	svc := NewService(store, zap.NewNop())

	root, err := svc.Browse(context.Background(), "T1", "")
	if err != nil {
		t.Fatal(err)
	}
	if got := root.LeafCount(); got != 2 {
		t.Errorf("leaf count = %d, want 2", got)
	}

	root, err = svc.Browse(context.Background(), "T1", "S2")
	if err != nil {
		t.Fatal(err)
	}
	if root.LeafCount() != 1 || root.Children[0].Children[0].Leaves[0].ModuleID != "M2" {
		t.Errorf("filtered tree = %+v", root)
	}
}
