package attendance

import (
	"context"
	"errors"
	"sync"

	"github.com/yahyalegrini24/AttendEase/internal/db"
	"github.com/yahyalegrini24/AttendEase/internal/models"
)

// mockStore keeps sessions and marks in memory. Fail hooks let a test make a
// single call return an error.
type mockStore struct {
	mu sync.Mutex

	sessions map[string]*models.Session
	rosters  map[string][]models.StudentGroup
	marks    map[string]map[string]models.Presence
	order    map[string][]string

	failCreate  error
	failRoster  error
	failUpsert  error
	failCount   error
	failDelete  error
	deleteCalls []string
}

func newMockStore() *mockStore {
	return &mockStore{
		sessions: make(map[string]*models.Session),
		rosters:  make(map[string][]models.StudentGroup),
		marks:    make(map[string]map[string]models.Presence),
		order:    make(map[string][]string),
	}
}

func (m *mockStore) withRoster(groupID string, matricules ...string) *mockStore {
	var roster []models.StudentGroup
	for i, mat := range matricules {
		roster = append(roster, models.StudentGroup{
			ID:        uint(i + 1),
			Matricule: mat,
			GroupID:   groupID,
			Student:   &models.Student{Matricule: mat, FirstName: "Student", LastName: mat},
		})
	}
	m.rosters[groupID] = roster
	return m
}

func (m *mockStore) LatestSessionNumber(_ context.Context, moduleID, groupID string) (int, error) {
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

func (m *mockStore) CreateSession(_ context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	if _, dup := m.sessions[session.SessionID]; dup {
		return errors.New("duplicate key")
	}
	cp := *session
	m.sessions[session.SessionID] = &cp
	return nil
}

func (m *mockStore) GetSession(_ context.Context, sessionID string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockStore) ConfirmSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return db.ErrNotFound
	}
	s.Confirm = true
	return nil
}

func (m *mockStore) DeleteSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls = append(m.deleteCalls, "session:"+sessionID)
	if m.failDelete != nil {
		return m.failDelete
	}
	if len(m.marks[sessionID]) > 0 {
		return errors.New("foreign key violation: attendance rows reference session")
	}
	delete(m.sessions, sessionID)
	return nil
}

func (m *mockStore) Roster(_ context.Context, groupID string) ([]models.StudentGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRoster != nil {
		return nil, m.failRoster
	}
	return append([]models.StudentGroup(nil), m.rosters[groupID]...), nil
}

func (m *mockStore) UpsertMark(_ context.Context, mark *models.Attendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpsert != nil {
		return m.failUpsert
	}
	if _, ok := m.sessions[mark.SessionID]; !ok {
		return db.ErrNotFound
	}
	if m.marks[mark.SessionID] == nil {
		m.marks[mark.SessionID] = make(map[string]models.Presence)
	}
	if _, seen := m.marks[mark.SessionID][mark.Matricule]; !seen {
		m.order[mark.SessionID] = append(m.order[mark.SessionID], mark.Matricule)
	}
	m.marks[mark.SessionID][mark.Matricule] = mark.Presence
	return nil
}

func (m *mockStore) CountMarks(_ context.Context, sessionID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCount != nil {
		return 0, m.failCount
	}
	return int64(len(m.marks[sessionID])), nil
}

func (m *mockStore) Marks(_ context.Context, sessionID string) ([]models.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Attendance
	for _, mat := range m.order[sessionID] {
		p, ok := m.marks[sessionID][mat]
		if !ok {
			continue
		}
		out = append(out, models.Attendance{SessionID: sessionID, Matricule: mat, Presence: p})
	}
	return out, nil
}

func (m *mockStore) DeleteMarks(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls = append(m.deleteCalls, "marks:"+sessionID)
	delete(m.marks, sessionID)
	delete(m.order, sessionID)
	return nil
}

func (m *mockStore) Absentees(ctx context.Context, sessionID string) ([]models.Attendance, error) {
	marks, err := m.Marks(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	var out []models.Attendance
	for _, mk := range marks {
		if mk.Presence == models.Absent {
			out = append(out, mk)
		}
	}
	return out, nil
}

func (m *mockStore) JustifyMark(_ context.Context, sessionID, matricule string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.marks[sessionID][matricule]
	if !ok || p != models.Absent {
		return db.ErrNotFound
	}
	m.marks[sessionID][matricule] = models.Justified
	return nil
}

func (m *mockStore) presence(sessionID string) []models.Presence {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Presence
	for _, mat := range m.order[sessionID] {
		out = append(out, m.marks[sessionID][mat])
	}
	return out
}
