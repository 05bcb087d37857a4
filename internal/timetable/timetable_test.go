package timetable

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/yahyalegrini24/AttendEase/internal/db"
	"github.com/yahyalegrini24/AttendEase/internal/models"
)

type mockStore struct {
	slots []models.SessionStructure
	rooms []models.Classroom
	fail  error
}

func (m *mockStore) TeacherSlots(_ context.Context, teacherID string) ([]models.SessionStructure, error) {
	var out []models.SessionStructure
	for _, s := range m.slots {
		if s.TeacherID == teacherID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockStore) Slot(_ context.Context, id string) (*models.SessionStructure, error) {
	for _, s := range m.slots {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockStore) ReplaceTeacherSlots(_ context.Context, teacherID string, slots []models.SessionStructure) error {
	if m.fail != nil {
		return m.fail
	}
	kept := m.slots[:0]
	for _, s := range m.slots {
		if s.TeacherID != teacherID {
			kept = append(kept, s)
		}
	}
	m.slots = append(kept, slots...)
	return nil
}

func (m *mockStore) Classrooms(context.Context) ([]models.Classroom, error) { return m.rooms, nil }

func TestSaveAndLoad(t *testing.T) {
	store := &mockStore{slots: []models.SessionStructure{
		{ID: "OLDOLDOLDOLD", TeacherID: "T1", DayID: 1},
		{ID: "OTHERTEACHER", TeacherID: "T2", DayID: 2},
	}}
	svc := NewService(store)

	grid, err := svc.Save(context.Background(), "T1", []CellInput{
		{Day: "Monday", Time: "09:30-11:00", ModuleID: "M1", GroupID: "G1"},
		{SlotID: "KEEPKEEPKEEP", Day: "Thursday", Time: "15:30-17:00", ModuleID: "M2", GroupID: "G2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(grid.Cells) != 2 {
		t.Fatalf("cells = %+v", grid.Cells)
	}

	fresh := grid.Cells[0]
	if !regexp.MustCompile(`^[A-Z]{12}$`).MatchString(fresh.SlotID) {
		t.Errorf("new slot id = %q", fresh.SlotID)
	}
	if fresh.Day != "Monday" || fresh.Time != "09:30-11:00" {
		t.Errorf("cell = %+v", fresh)
	}
	if grid.Cells[1].SlotID != "KEEPKEEPKEEP" {
		t.Errorf("existing id not kept: %q", grid.Cells[1].SlotID)
	}
	if _, err := store.Slot(context.Background(), "OLDOLDOLDOLD"); err == nil {
		t.Error("old slot should be replaced")
	}
	if _, err := store.Slot(context.Background(), "OTHERTEACHER"); err != nil {
		t.Error("another teacher's slot was touched")
	}
}

func TestSaveRejects(t *testing.T) {
	svc := NewService(&mockStore{})
	ctx := context.Background()
	cases := []struct {
		name  string
		cells []CellInput
		want  error
	}{
		{"day", []CellInput{{Day: "Friday", Time: TimeSlots[0]}}, ErrUnknownDay},
		{"time", []CellInput{{Day: "Sunday", Time: "07:00-08:00"}}, ErrUnknownTime},
		{"clash", []CellInput{{Day: "Sunday", Time: TimeSlots[0]}, {Day: "Sunday", Time: TimeSlots[0]}}, ErrSlotTaken},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := svc.Save(ctx, "T1", c.cells); !errors.Is(err, c.want) {
				t.Errorf("err = %v, want %v", err, c.want)
			}
		})
	}
}

func TestSaveRejectsAnotherTeachersSlotID(t *testing.T) {
	store := &mockStore{slots: []models.SessionStructure{
		{ID: "MINEMINEMINE", TeacherID: "T1", DayID: 1},
		{ID: "OTHERTEACHER", TeacherID: "T2", DayID: 2},
	}}
	svc := NewService(store)

	_, err := svc.Save(context.Background(), "T1", []CellInput{
		{SlotID: "OTHERTEACHER", Day: "Monday", Time: TimeSlots[0], ModuleID: "M1", GroupID: "G1"},
	})
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("err = %v, want ErrNotOwner", err)
	}
	if len(store.slots) != 2 {
		t.Errorf("timetable changed on a rejected save: %+v", store.slots)
	}
	if sl, _ := store.Slot(context.Background(), "OTHERTEACHER"); sl == nil || sl.TeacherID != "T2" {
		t.Errorf("other teacher's slot = %+v", sl)
	}

	if _, err := svc.Save(context.Background(), "T1", []CellInput{
		{SlotID: "MINEMINEMINE", Day: "Monday", Time: TimeSlots[0], ModuleID: "M1", GroupID: "G1"},
	}); err != nil {
		t.Errorf("reusing own slot id: %v", err)
	}
}

func TestSlotsDayFilter(t *testing.T) {
	store := &mockStore{slots: []models.SessionStructure{
		{ID: "A", TeacherID: "T1", DayID: 1},
		{ID: "B", TeacherID: "T1", DayID: 2, Day: &models.Day{DayID: 2, DayName: "Monday"}},
		{ID: "C", TeacherID: "T1", DayID: 2},
	}}
	svc := NewService(store)
	// 2024-03-11 is a Monday.
	svc.now = func() time.Time { return time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	today, err := svc.Slots(ctx, "T1", Today)
	if err != nil {
		t.Fatal(err)
	}
	if len(today) != 2 {
		t.Errorf("today = %d slots, want 2", len(today))
	}
	sunday, _ := svc.Slots(ctx, "T1", "Sunday")
	if len(sunday) != 1 || sunday[0].ID != "A" {
		t.Errorf("sunday = %+v", sunday)
	}
	friday, err := svc.Slots(ctx, "T1", "Friday")
	if err != nil || len(friday) != 0 {
		t.Errorf("friday = %v, %v", friday, err)
	}
	if _, err := svc.Slots(ctx, "T1", "Someday"); !errors.Is(err, ErrUnknownDay) {
		t.Errorf("err = %v", err)
	}
}

func TestSlotOwnership(t *testing.T) {
	store := &mockStore{slots: []models.SessionStructure{{ID: "A", TeacherID: "T1"}}}
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.Slot(ctx, "T1", "A"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Slot(ctx, "T2", "A"); !errors.Is(err, ErrNotOwner) {
		t.Errorf("err = %v, want ErrNotOwner", err)
	}
	if _, err := svc.Slot(ctx, "T1", "Z"); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("err = %v, want ErrSlotNotFound", err)
	}
}

func TestDayMapping(t *testing.T) {
	if DayID("Sunday") != 1 || DayID("Thursday") != 5 || DayID("Friday") != 0 {
		t.Error("DayID mapping is off")
	}
	if DayName(2) != "Monday" || DayName(0) != "" || DayName(6) != "" {
		t.Error("DayName mapping is off")
	}
}
