// Package timetable manages a teacher's weekly grid of teaching slots.
package timetable

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/yahyalegrini24/AttendEase/internal/db"
	"github.com/yahyalegrini24/AttendEase/internal/models"
)

// Days are the teaching days. A day's dayId is its index plus one.
var Days = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday"}

// TimeSlots are the fixed periods of a teaching day.
var TimeSlots = []string{
	"08:00-09:30",
	"09:30-11:00",
	"11:00-12:30",
	"12:30-14:00",
	"14:00-15:30",
	"15:30-17:00",
}

// Today selects the current weekday in the slot filter.
const Today = "Today"

var (
	ErrUnknownDay   = errors.New("timetable: unknown day")
	ErrUnknownTime  = errors.New("timetable: unknown time slot")
	ErrSlotTaken    = errors.New("timetable: two sessions in the same time slot")
	ErrSlotNotFound = errors.New("timetable: slot not found")
	ErrNotOwner     = errors.New("timetable: slot belongs to another teacher")
)

type Store interface {
	TeacherSlots(ctx context.Context, teacherID string) ([]models.SessionStructure, error)
	Slot(ctx context.Context, slotID string) (*models.SessionStructure, error)
	ReplaceTeacherSlots(ctx context.Context, teacherID string, slots []models.SessionStructure) error
	Classrooms(ctx context.Context) ([]models.Classroom, error)
}

// DayID maps a day name to its dayId, or 0.
func DayID(name string) int {
	return slices.Index(Days, name) + 1
}

// DayName maps a dayId back to its name, or "".
func DayName(id int) string {
	if id < 1 || id > len(Days) {
		return ""
	}
	return Days[id-1]
}

const idLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewSlotID returns a random id of 12 capital letters.
func NewSlotID() string {
	var b strings.Builder
	b.Grow(12)
	for i := 0; i < 12; i++ {
		b.WriteByte(idLetters[rand.IntN(len(idLetters))])
	}
	return b.String()
}

// Cell is one filled slot of the grid.
type Cell struct {
	SlotID     string  `json:"sessionStructureId"`
	Day        string  `json:"day"`
	Time       string  `json:"time"`
	ModuleID   string  `json:"moduleId"`
	ModuleName string  `json:"name"`
	GroupID    string  `json:"groupId"`
	GroupName  string  `json:"group"`
	TypeID     *string `json:"typeId"`
	TypeName   string  `json:"type"`
	Year       string  `json:"year"`
	Degree     string  `json:"degree"`
	ClassID    *string `json:"classroomId"`
	Room       string  `json:"roomNumber"`
	Location   string  `json:"location"`
}

func cellOf(s models.SessionStructure) Cell {
	c := Cell{
		SlotID:   s.ID,
		Day:      DayName(s.DayID),
		ModuleID: s.ModuleID,
		GroupID:  s.GroupID,
		TypeID:   s.TypeID,
		ClassID:  s.ClassID,
	}
	if s.Day != nil && c.Day == "" {
		c.Day = s.Day.DayName
	}
	if s.SlotIndex >= 0 && s.SlotIndex < len(TimeSlots) {
		c.Time = TimeSlots[s.SlotIndex]
	}
	if s.Module != nil {
		c.ModuleName = s.Module.ModuleName
	}
	if g := s.Group; g != nil {
		c.GroupName = g.GroupName
		if g.Section != nil && g.Section.SchoolYear != nil {
			c.Year = g.Section.SchoolYear.YearName
			if g.Section.SchoolYear.Degree != nil {
				c.Degree = g.Section.SchoolYear.Degree.DegreeName
			}
		}
	}
	if s.GroupType != nil {
		c.TypeName = s.GroupType.TypeName
	}
	if s.Classroom != nil {
		c.Room = s.Classroom.ClassNumber
		c.Location = s.Classroom.Location
	}
	return c
}

// Grid is a teacher's whole week.
type Grid struct {
	Days      []string `json:"days"`
	TimeSlots []string `json:"timeSlots"`
	Cells     []Cell   `json:"cells"`
}

// CellInput is one slot of a timetable being saved. An empty SlotID gets a
// fresh id.
type CellInput struct {
	SlotID   string  `json:"sessionStructureId"`
	Day      string  `json:"day" binding:"required,schoolday"`
	Time     string  `json:"time" binding:"required,timeslot"`
	ModuleID string  `json:"moduleId" binding:"required"`
	GroupID  string  `json:"groupId" binding:"required"`
	TypeID   *string `json:"typeId"`
	ClassID  *string `json:"classroomId"`
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Load returns the teacher's grid.
func (s *Service) Load(ctx context.Context, teacherID string) (*Grid, error) {
	slots, err := s.store.TeacherSlots(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("load timetable: %w", err)
	}
	g := &Grid{Days: Days, TimeSlots: TimeSlots, Cells: make([]Cell, 0, len(slots))}
	for _, sl := range slots {
		g.Cells = append(g.Cells, cellOf(sl))
	}
	return g, nil
}

// Save replaces the teacher's whole timetable with cells.
func (s *Service) Save(ctx context.Context, teacherID string, cells []CellInput) (*Grid, error) {
	taken := make(map[[2]int]bool, len(cells))
	ids := make(map[string]bool, len(cells))
	slots := make([]models.SessionStructure, 0, len(cells))
	for _, c := range cells {
		day := DayID(c.Day)
		if day == 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDay, c.Day)
		}
		idx := slices.Index(TimeSlots, c.Time)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTime, c.Time)
		}
		key := [2]int{day, idx}
		if taken[key] {
			return nil, fmt.Errorf("%w: %s %s", ErrSlotTaken, c.Day, c.Time)
		}
		taken[key] = true

		id := c.SlotID
		if id != "" {
			if err := s.checkSlotID(ctx, teacherID, id); err != nil {
				return nil, err
			}
		}
		for id == "" || ids[id] {
			id = NewSlotID()
		}
		ids[id] = true

		slots = append(slots, models.SessionStructure{
			ID:        id,
			ModuleID:  c.ModuleID,
			GroupID:   c.GroupID,
			TeacherID: teacherID,
			DayID:     day,
			SlotIndex: idx,
			TypeID:    c.TypeID,
			ClassID:   c.ClassID,
		})
	}

	if err := s.store.ReplaceTeacherSlots(ctx, teacherID, slots); err != nil {
		return nil, fmt.Errorf("save timetable: %w", err)
	}
	return s.Load(ctx, teacherID)
}

// checkSlotID lets a client reuse the id of one of its own slots or pick an
// unused one.
func (s *Service) checkSlotID(ctx context.Context, teacherID, id string) error {
	sl, err := s.store.Slot(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("load slot: %w", err)
	}
	if sl.TeacherID != teacherID {
		return fmt.Errorf("%w: %s", ErrNotOwner, id)
	}
	return nil
}

// Slots lists the teacher's slots on day. Today and "" mean the current
// weekday.
func (s *Service) Slots(ctx context.Context, teacherID, day string) ([]models.SessionStructure, error) {
	if day == "" || day == Today {
		day = s.now().Weekday().String()
	} else if DayID(day) == 0 && !isWeekday(day) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDay, day)
	}

	slots, err := s.store.TeacherSlots(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}
	out := make([]models.SessionStructure, 0, len(slots))
	for _, sl := range slots {
		name := DayName(sl.DayID)
		if sl.Day != nil && sl.Day.DayName != "" {
			name = sl.Day.DayName
		}
		if name == day {
			out = append(out, sl)
		}
	}
	return out, nil
}

func isWeekday(day string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == day {
			return true
		}
	}
	return false
}

// Slot loads one of the teacher's slots.
func (s *Service) Slot(ctx context.Context, teacherID, slotID string) (*models.SessionStructure, error) {
	sl, err := s.store.Slot(ctx, slotID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("load slot: %w", err)
	}
	if sl.TeacherID != teacherID {
		return nil, ErrNotOwner
	}
	return sl, nil
}

func (s *Service) Classrooms(ctx context.Context) ([]models.Classroom, error) {
	rooms, err := s.store.Classrooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("load classrooms: %w", err)
	}
	return rooms, nil
}
