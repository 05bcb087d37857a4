// Package attendance runs the attendance-taking workflow for one dated
// session: create the session from a timetable slot, walk the group roster
// collecting presence marks, then confirm or discard the session.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/yahyalegrini24/AttendEase/internal/db"
	"github.com/yahyalegrini24/AttendEase/internal/models"
)

var (
	ErrNoGroup      = errors.New("attendance: slot has no group")
	ErrNoModule     = errors.New("attendance: slot has no module")
	ErrRunNotFound  = errors.New("attendance: no attendance run for this session")
	ErrRunClosed    = errors.New("attendance: run is already confirmed or deleted")
	ErrNotAllMarked = errors.New("attendance: not every student has been marked")
	ErrEmptyRoster  = errors.New("attendance: group roster is empty")
	ErrConfirmed    = errors.New("attendance: session is already confirmed")
	ErrNotAbsent    = errors.New("attendance: student has no unjustified absence in this session")
	ErrNoSession    = errors.New("attendance: session not found")
	ErrNotOwner     = errors.New("attendance: session belongs to another teacher")
	ErrNotConfirmed = errors.New("attendance: session is not confirmed yet")
)

// Store is the subset of the remote store the workflow needs.
type Store interface {
	LatestSessionNumber(ctx context.Context, moduleID, groupID string) (int, error)
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	ConfirmSession(ctx context.Context, sessionID string) error
	DeleteSession(ctx context.Context, sessionID string) error

	Roster(ctx context.Context, groupID string) ([]models.StudentGroup, error)

	UpsertMark(ctx context.Context, mark *models.Attendance) error
	CountMarks(ctx context.Context, sessionID string) (int64, error)
	Marks(ctx context.Context, sessionID string) ([]models.Attendance, error)
	DeleteMarks(ctx context.Context, sessionID string) error
	Absentees(ctx context.Context, sessionID string) ([]models.Attendance, error)
	JustifyMark(ctx context.Context, sessionID, matricule string) error
}

// Manager creates and resumes attendance runs and handles justification.
type Manager struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
	suffix func() int
}

type Option func(*Manager)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithSuffix overrides the random 0..999 suffix appended to session ids.
func WithSuffix(suffix func() int) Option {
	return func(m *Manager) { m.suffix = suffix }
}

func NewManager(store Store, logger *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		logger: logger,
		now:    time.Now,
		suffix: func() int { return rand.IntN(1000) },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NextSessionNumber is one more than the highest number already used for the
// module and group, starting at 1.
func (m *Manager) NextSessionNumber(ctx context.Context, moduleID, groupID string) (int, error) {
	latest, err := m.store.LatestSessionNumber(ctx, moduleID, groupID)
	if err != nil {
		return 0, fmt.Errorf("read latest session number: %w", err)
	}
	return latest + 1, nil
}

// SessionID builds a session id from the slot id and three random digits.
// Collisions are possible and left to the store's primary key to reject.
func (m *Manager) SessionID(slotID string) string {
	return fmt.Sprintf("%s%03d", slotID, m.suffix()%1000)
}

// Start creates a session for slot dated now and loads the group roster.
// If the session cannot be inserted nothing is kept. If the roster cannot be
// loaded the new session is deleted again.
func (m *Manager) Start(ctx context.Context, slot models.SessionStructure) (*Run, error) {
	if slot.GroupID == "" {
		return nil, ErrNoGroup
	}
	if slot.ModuleID == "" {
		return nil, ErrNoModule
	}

	number, err := m.NextSessionNumber(ctx, slot.ModuleID, slot.GroupID)
	if err != nil {
		return nil, err
	}

	session := models.Session{
		SessionID:     m.SessionID(slot.ID),
		SessionNumber: number,
		Date:          m.now(),
		ModuleID:      slot.ModuleID,
		GroupID:       slot.GroupID,
		TeacherID:     slot.TeacherID,
		ClassID:       slot.ClassID,
		DayID:         slot.DayID,
	}
	if err := m.store.CreateSession(ctx, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	roster, err := m.store.Roster(ctx, slot.GroupID)
	if err != nil {
		if derr := m.store.DeleteSession(ctx, session.SessionID); derr != nil {
			m.logger.Error("failed to discard session after roster error",
				zap.String("session_id", session.SessionID), zap.Error(derr))
		}
		return nil, fmt.Errorf("load roster: %w", err)
	}

	m.logger.Info("attendance session started",
		zap.String("session_id", session.SessionID),
		zap.Int("session_number", number),
		zap.String("group_id", slot.GroupID),
		zap.Int("roster_size", len(roster)),
	)

	return newRun(m, session, roster, nil), nil
}

// Resume rebuilds a run for an unconfirmed session from the store, keeping
// the marks already recorded. The cursor lands on the first unmarked student.
func (m *Manager) Resume(ctx context.Context, teacherID, sessionID string) (*Run, error) {
	session, err := m.Session(ctx, teacherID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Confirm {
		return nil, ErrConfirmed
	}

	roster, err := m.store.Roster(ctx, session.GroupID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	marks, err := m.store.Marks(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load marks: %w", err)
	}

	run := newRun(m, *session, roster, marks)
	if err := run.Refresh(ctx); err != nil {
		return nil, err
	}
	return run, nil
}

// Session loads a stored session of the teacher.
func (m *Manager) Session(ctx context.Context, teacherID, sessionID string) (*models.Session, error) {
	session, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session.TeacherID != teacherID {
		return nil, ErrNotOwner
	}
	return session, nil
}

// Absentees lists the students still marked absent in a session.
func (m *Manager) Absentees(ctx context.Context, sessionID string) ([]models.Attendance, error) {
	marks, err := m.store.Absentees(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load absentees: %w", err)
	}
	return marks, nil
}

// Justify turns an absence into a justified absence. There is no way back.
// The session must be confirmed.
func (m *Manager) Justify(ctx context.Context, sessionID, matricule string) error {
	session, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		if db.IsNotFound(err) {
			return ErrNoSession
		}
		return fmt.Errorf("load session: %w", err)
	}
	if !session.Confirm {
		return ErrNotConfirmed
	}
	if err := m.store.JustifyMark(ctx, sessionID, matricule); err != nil {
		if db.IsNotFound(err) {
			return ErrNotAbsent
		}
		return fmt.Errorf("justify absence: %w", err)
	}
	m.logger.Info("absence justified",
		zap.String("session_id", sessionID), zap.String("matricule", matricule))
	return nil
}
