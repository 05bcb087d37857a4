package api

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/yahyalegrini24/AttendEase/internal/db"
	"github.com/yahyalegrini24/AttendEase/internal/models"
)

// memStore backs every service in the API tests.
type memStore struct {
	mu       sync.Mutex
	teachers map[string]*models.Teacher
	slots    map[string]models.SessionStructure
	sessions map[string]*models.Session
	marks    map[string]map[string]models.Presence
	rosters  map[string][]models.StudentGroup
	groups   map[string]*models.Group
	pingErr  error
}

func newMemStore() *memStore {
	return &memStore{
		teachers: map[string]*models.Teacher{},
		slots:    map[string]models.SessionStructure{},
		sessions: map[string]*models.Session{},
		marks:    map[string]map[string]models.Presence{},
		rosters:  map[string][]models.StudentGroup{},
		groups:   map[string]*models.Group{},
	}
}

func (m *memStore) session(id string) (models.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return models.Session{}, false
	}
	return *s, true
}

func (m *memStore) sessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *memStore) setPingErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingErr = err
}

func (m *memStore) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pingErr
}

func (m *memStore) TeacherByEmail(_ context.Context, email string) (*models.Teacher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.teachers[email]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, db.ErrNotFound
}

func (m *memStore) UpdateTeacherName(_ context.Context, teacherID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.teachers {
		if t.TeacherID == teacherID {
			t.Name = name
			return nil
		}
	}
	return db.ErrNotFound
}

func (m *memStore) LatestSessionNumber(_ context.Context, moduleID, groupID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	latest := 0
	for _, s := range m.sessions {
		if s.ModuleID == moduleID && s.GroupID == groupID && s.SessionNumber > latest {
			latest = s.SessionNumber
		}
	}
	return latest, nil
}

func (m *memStore) CreateSession(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.SessionID]; ok {
		return errors.New("duplicate key")
	}
	cp := *s
	m.sessions[s.SessionID] = &cp
	return nil
}

func (m *memStore) GetSession(_ context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) ConfirmSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return db.ErrNotFound
	}
	s.Confirm = true
	return nil
}

func (m *memStore) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memStore) TeacherSessions(_ context.Context, teacherID string) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Session
	for _, s := range m.sessions {
		if s.TeacherID == teacherID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memStore) DatedSessions(_ context.Context, moduleID, groupID string) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Session
	for _, s := range m.sessions {
		if s.ModuleID == moduleID && s.GroupID == groupID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *memStore) Roster(_ context.Context, groupID string) ([]models.StudentGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.StudentGroup(nil), m.rosters[groupID]...), nil
}

func (m *memStore) UpsertMark(_ context.Context, mk *models.Attendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.marks[mk.SessionID] == nil {
		m.marks[mk.SessionID] = map[string]models.Presence{}
	}
	m.marks[mk.SessionID][mk.Matricule] = mk.Presence
	return nil
}

func (m *memStore) CountMarks(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.marks[id])), nil
}

func (m *memStore) Marks(_ context.Context, id string) ([]models.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Attendance
	for mat, p := range m.marks[id] {
		out = append(out, models.Attendance{SessionID: id, Matricule: mat, Presence: p})
	}
	return out, nil
}

func (m *memStore) DeleteMarks(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.marks, id)
	return nil
}

func (m *memStore) Absentees(_ context.Context, id string) ([]models.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Attendance
	for mat, p := range m.marks[id] {
		if p == models.Absent {
			out = append(out, models.Attendance{SessionID: id, Matricule: mat, Presence: p})
		}
	}
	return out, nil
}

func (m *memStore) JustifyMark(_ context.Context, id, matricule string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.marks[id][matricule]; !ok || p != models.Absent {
		return db.ErrNotFound
	}
	m.marks[id][matricule] = models.Justified
	return nil
}

func (m *memStore) TeacherSlots(_ context.Context, teacherID string) ([]models.SessionStructure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SessionStructure
	for _, s := range m.slots {
		if s.TeacherID == teacherID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) Slot(_ context.Context, id string) (*models.SessionStructure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &s, nil
}

func (m *memStore) ReplaceTeacherSlots(_ context.Context, teacherID string, slots []models.SessionStructure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.slots {
		if s.TeacherID == teacherID {
			delete(m.slots, id)
		}
	}
	for _, s := range slots {
		m.slots[s.ID] = s
	}
	return nil
}

func (m *memStore) Classrooms(context.Context) ([]models.Classroom, error) {
	return []models.Classroom{{ClassID: "C1", ClassNumber: "101"}}, nil
}

func (m *memStore) GetGroup(_ context.Context, id string) (*models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *memStore) Semesters(context.Context) ([]models.Semester, error) {
	return []models.Semester{{SemesterID: "S2", Label: "Semester 2"}, {SemesterID: "S1", Label: "Semester 1"}}, nil
}

func (m *memStore) BranchGroups(context.Context, string) ([]models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Group
	for _, g := range m.groups {
		out = append(out, *g)
	}
	return out, nil
}

func (m *memStore) TeacherGroups(context.Context, string, string) ([]models.TeacherGroup, error) {
	return nil, nil
}

func (m *memStore) ReplaceTeacherGroups(context.Context, string, string, []string) error {
	return nil
}
