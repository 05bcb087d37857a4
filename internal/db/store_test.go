package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yahyalegrini24/AttendEase/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatal(err)
	}
	// Every new connection to :memory: is an empty database.
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(gdb); err != nil {
		t.Fatal(err)
	}
	s := New(gdb)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createSession(t *testing.T, s *Store, id, moduleID, groupID string, number int, date time.Time) {
	t.Helper()
	err := s.CreateSession(context.Background(), &models.Session{
		SessionID:     id,
		SessionNumber: number,
		Date:          date,
		ModuleID:      moduleID,
		GroupID:       groupID,
		TeacherID:     "T1",
	})
	if err != nil {
		t.Fatal(err)
	}
}

func mark(t *testing.T, s *Store, sessionID, matricule string, p models.Presence) {
	t.Helper()
	err := s.UpsertMark(context.Background(), &models.Attendance{SessionID: sessionID, Matricule: matricule, Presence: p})
	if err != nil {
		t.Fatal(err)
	}
}

func TestLatestSessionNumber(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.LatestSessionNumber(ctx, "M1", "G1")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("empty store = %d, want 0", n)
	}

	day := time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)
	createSession(t, s, "A001", "M1", "G1", 1, day)
	createSession(t, s, "A002", "M1", "G1", 2, day.AddDate(0, 0, 7))
	createSession(t, s, "B001", "M1", "G2", 5, day)

	if n, _ = s.LatestSessionNumber(ctx, "M1", "G1"); n != 2 {
		t.Errorf("M1/G1 = %d, want 2", n)
	}
	if n, _ = s.LatestSessionNumber(ctx, "M1", "G2"); n != 5 {
		t.Errorf("M1/G2 = %d, want 5", n)
	}
	if n, _ = s.LatestSessionNumber(ctx, "M2", "G1"); n != 0 {
		t.Errorf("M2/G1 = %d, want 0", n)
	}
}

func TestUpsertMarkKeepsOneRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createSession(t, s, "A001", "M1", "G1", 1, time.Now())

	mark(t, s, "A001", "S1", models.Absent)
	mark(t, s, "A001", "S1", models.Present)
	mark(t, s, "A001", "S2", models.Absent)

	n, err := s.CountMarks(ctx, "A001")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("marks = %d, want 2", n)
	}
	marks, err := s.Marks(ctx, "A001")
	if err != nil {
		t.Fatal(err)
	}
	if marks[0].Matricule != "S1" || marks[0].Presence != models.Present {
		t.Errorf("re-marked row = %+v, want S1 present", marks[0])
	}
}

func TestJustifyMark(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createSession(t, s, "A001", "M1", "G1", 1, time.Now())
	mark(t, s, "A001", "S1", models.Absent)
	mark(t, s, "A001", "S2", models.Present)

	if err := s.JustifyMark(ctx, "A001", "S2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("justify present mark err = %v, want ErrNotFound", err)
	}
	if err := s.JustifyMark(ctx, "A001", "S9"); !IsNotFound(err) {
		t.Errorf("justify unknown student err = %v", err)
	}
	if err := s.JustifyMark(ctx, "A001", "S1"); err != nil {
		t.Fatal(err)
	}
	if err := s.JustifyMark(ctx, "A001", "S1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second justify err = %v, want ErrNotFound", err)
	}

	absent, err := s.Absentees(ctx, "A001")
	if err != nil {
		t.Fatal(err)
	}
	if len(absent) != 0 {
		t.Errorf("absentees = %+v", absent)
	}
	marks, _ := s.Marks(ctx, "A001")
	if marks[0].Presence != models.Justified || marks[1].Presence != models.Present {
		t.Errorf("marks = %+v", marks)
	}
}

func TestDeleteMarksThenSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createSession(t, s, "A001", "M1", "G1", 1, time.Now())
	createSession(t, s, "A002", "M1", "G1", 2, time.Now())
	mark(t, s, "A001", "S1", models.Present)
	mark(t, s, "A002", "S1", models.Absent)

	if err := s.DeleteMarks(ctx, "A002"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteSession(ctx, "A002"); err != nil {
		t.Fatal(err)
	}

	if n, _ := s.CountMarks(ctx, "A002"); n != 0 {
		t.Errorf("marks left = %d", n)
	}
	if _, err := s.GetSession(ctx, "A002"); !IsNotFound(err) {
		t.Errorf("GetSession err = %v, want not found", err)
	}
	if n, _ := s.CountMarks(ctx, "A001"); n != 1 {
		t.Errorf("other session lost its marks: %d", n)
	}
	if n, _ := s.LatestSessionNumber(ctx, "M1", "G1"); n != 1 {
		t.Errorf("latest number = %d, want 1", n)
	}
}

func TestConfirmSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createSession(t, s, "A001", "M1", "G1", 1, time.Now())

	if err := s.ConfirmSession(ctx, "A001"); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetSession(ctx, "A001")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Confirm {
		t.Error("session not confirmed")
	}
	if err := s.ConfirmSession(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("confirm missing err = %v", err)
	}
}

func TestDatedSessionsOrder(t *testing.T) {
	s := newTestStore(t)
	day := time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)
	createSession(t, s, "A002", "M1", "G1", 2, day.AddDate(0, 0, 7))
	createSession(t, s, "A001", "M1", "G1", 1, day)
	createSession(t, s, "B001", "M1", "G2", 1, day)

	got, err := s.DatedSessions(context.Background(), "M1", "G1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].SessionID != "A001" || got[1].SessionID != "A002" {
		t.Errorf("sessions = %+v", got)
	}
}

func TestReplaceTeacherSlots(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	err := s.ReplaceTeacherSlots(ctx, "T1", []models.SessionStructure{
		{ID: "AAAAAAAAAAAA", ModuleID: "M1", GroupID: "G1", TeacherID: "T1", DayID: 1},
		{ID: "BBBBBBBBBBBB", ModuleID: "M2", GroupID: "G1", TeacherID: "T1", DayID: 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	err = s.ReplaceTeacherSlots(ctx, "T2", []models.SessionStructure{
		{ID: "CCCCCCCCCCCC", ModuleID: "M3", GroupID: "G2", TeacherID: "T2", DayID: 1},
	})
	if err != nil {
		t.Fatal(err)
	}

	err = s.ReplaceTeacherSlots(ctx, "T1", []models.SessionStructure{
		{ID: "BBBBBBBBBBBB", ModuleID: "M2", GroupID: "G1", TeacherID: "T1", DayID: 3},
	})
	if err != nil {
		t.Fatal(err)
	}

	mine, err := s.TeacherSlots(ctx, "T1")
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].ID != "BBBBBBBBBBBB" || mine[0].DayID != 3 {
		t.Errorf("T1 slots = %+v", mine)
	}
	if _, err := s.Slot(ctx, "AAAAAAAAAAAA"); !IsNotFound(err) {
		t.Errorf("dropped slot err = %v", err)
	}
	if sl, err := s.Slot(ctx, "CCCCCCCCCCCC"); err != nil || sl.TeacherID != "T2" {
		t.Errorf("other teacher's slot = %+v, %v", sl, err)
	}
}

func TestReplaceTeacherSlotsRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	keep := []models.SessionStructure{{ID: "AAAAAAAAAAAA", ModuleID: "M1", GroupID: "G1", TeacherID: "T1", DayID: 1}}
	if err := s.ReplaceTeacherSlots(ctx, "T1", keep); err != nil {
		t.Fatal(err)
	}

	dup := []models.SessionStructure{
		{ID: "DDDDDDDDDDDD", ModuleID: "M1", GroupID: "G1", TeacherID: "T1", DayID: 1},
		{ID: "DDDDDDDDDDDD", ModuleID: "M2", GroupID: "G1", TeacherID: "T1", DayID: 2},
	}
	if err := s.ReplaceTeacherSlots(ctx, "T1", dup); err == nil {
		t.Fatal("duplicate slot ids should fail")
	}
	mine, _ := s.TeacherSlots(ctx, "T1")
	if len(mine) != 1 || mine[0].ID != "AAAAAAAAAAAA" {
		t.Errorf("timetable after failed save = %+v", mine)
	}
}

func TestReplaceTeacherGroups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.ReplaceTeacherGroups(ctx, "T1", "S1", []string{"G1", "G2"}); err != nil {
		t.Fatal(err)
	}
	if err := s.ReplaceTeacherGroups(ctx, "T1", "S2", []string{"G3"}); err != nil {
		t.Fatal(err)
	}
	if err := s.ReplaceTeacherGroups(ctx, "T1", "S1", []string{"G4"}); err != nil {
		t.Fatal(err)
	}

	s1, err := s.TeacherGroups(ctx, "T1", "S1")
	if err != nil {
		t.Fatal(err)
	}
	if len(s1) != 1 || s1[0].GroupID != "G4" {
		t.Errorf("S1 groups = %+v", s1)
	}
	all, _ := s.TeacherGroups(ctx, "T1", "")
	if len(all) != 2 {
		t.Errorf("all groups = %+v", all)
	}
}

func TestRosterKeepsInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	added, err := s.UpsertRoster(ctx, "G1", []models.Student{
		{Matricule: "S2", LastName: "Kaci"},
		{Matricule: "S1", LastName: "Benali"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}
	added, err = s.UpsertRoster(ctx, "G1", []models.Student{
		{Matricule: "S1", FirstName: "Amel", LastName: "Benali"},
		{Matricule: "S3", LastName: "Zerrouki"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if added != 1 {
		t.Errorf("second sync added = %d, want 1", added)
	}

	roster, err := s.Roster(ctx, "G1")
	if err != nil {
		t.Fatal(err)
	}
	var order []string
	for _, e := range roster {
		order = append(order, e.Matricule)
	}
	if len(order) != 3 || order[0] != "S2" || order[1] != "S1" || order[2] != "S3" {
		t.Fatalf("roster order = %v", order)
	}
	if roster[1].Name() != "Amel Benali" {
		t.Errorf("refreshed name = %q", roster[1].Name())
	}
}

func TestUpdateTeacherName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.db.Create(&models.Teacher{TeacherID: "T1", Name: "Amina", Email: "amina@univ.dz"}).Error; err != nil {
		t.Fatal(err)
	}

	if err := s.UpdateTeacherName(ctx, "T1", "Amina Benali"); err != nil {
		t.Fatal(err)
	}
	got, err := s.TeacherByEmail(ctx, "amina@univ.dz")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Amina Benali" {
		t.Errorf("name = %q", got.Name)
	}
	if err := s.UpdateTeacherName(ctx, "T9", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown teacher err = %v", err)
	}
}
