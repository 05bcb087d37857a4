package attendance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yahyalegrini24/AttendEase/internal/models"
)

// State is where a run stands in the attendance workflow.
type State int

const (
	SlotSelected State = iota
	SessionCreated
	Marking
	AllMarked
	Confirmed
	Deleted
)

func (s State) String() string {
	switch s {
	case SlotSelected:
		return "slot_selected"
	case SessionCreated:
		return "session_created"
	case Marking:
		return "marking"
	case AllMarked:
		return "all_marked"
	case Confirmed:
		return "confirmed"
	case Deleted:
		return "deleted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == Confirmed || s == Deleted
}

// Run is one attendance pass over a group roster. Its methods are safe for
// concurrent use; they are serialized so a mark resolves before the next
// operation starts.
type Run struct {
	mu sync.Mutex

	store  Store
	logger *zap.Logger
	now    func() time.Time

	session models.Session
	roster  []models.StudentGroup
	marks   map[string]models.Presence
	cursor  int
	state   State
	touched time.Time
}

func newRun(m *Manager, session models.Session, roster []models.StudentGroup, marks []models.Attendance) *Run {
	r := &Run{
		store:   m.store,
		logger:  m.logger,
		now:     m.now,
		session: session,
		roster:  roster,
		marks:   make(map[string]models.Presence, len(roster)),
		state:   SessionCreated,
	}
	for _, mk := range marks {
		r.marks[mk.Matricule] = mk.Presence
	}
	if len(r.marks) > 0 {
		r.state = Marking
		r.cursor = r.firstUnmarked()
	}
	r.touched = r.now()
	return r
}

func (r *Run) firstUnmarked() int {
	for i, e := range r.roster {
		if _, ok := r.marks[e.Matricule]; !ok {
			return i
		}
	}
	if len(r.roster) == 0 {
		return 0
	}
	return len(r.roster) - 1
}

func (r *Run) touch() { r.touched = r.now() }

func (r *Run) SessionID() string { return r.session.SessionID }

func (r *Run) TeacherID() string { return r.session.TeacherID }

func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// AllMarked reports whether every roster entry has a mark in the store as of
// the last completion check.
func (r *Run) AllMarked() bool {
	return r.State() == AllMarked
}

// LastTouched is when the run last saw any operation.
func (r *Run) LastTouched() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.touched
}

// Mark records presence for the student under the cursor, then advances the
// cursor unless it is already on the last student. On failure nothing moves.
func (r *Run) Mark(ctx context.Context, present bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()

	if r.state.Terminal() {
		return ErrRunClosed
	}
	if len(r.roster) == 0 {
		return ErrEmptyRoster
	}

	entry := r.roster[r.cursor]
	presence := models.Absent
	if present {
		presence = models.Present
	}

	err := r.store.UpsertMark(ctx, &models.Attendance{
		SessionID: r.session.SessionID,
		Matricule: entry.Matricule,
		Presence:  presence,
	})
	if err != nil {
		r.logger.Error("failed to save attendance mark",
			zap.String("session_id", r.session.SessionID),
			zap.String("matricule", entry.Matricule),
			zap.Error(err))
		return fmt.Errorf("save attendance: %w", err)
	}

	r.marks[entry.Matricule] = presence
	if r.cursor < len(r.roster)-1 {
		r.cursor++
	}
	if r.state != AllMarked {
		r.state = Marking
	}

	if err := r.checkCompletion(ctx); err != nil {
		// The mark itself is stored; the next mark or Refresh checks again.
		r.logger.Warn("completion check failed",
			zap.String("session_id", r.session.SessionID), zap.Error(err))
	}
	return nil
}

// Refresh re-runs the completion check against the store.
func (r *Run) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()
	if r.state.Terminal() {
		return nil
	}
	return r.checkCompletion(ctx)
}

func (r *Run) checkCompletion(ctx context.Context) error {
	if len(r.roster) == 0 {
		return nil
	}
	n, err := r.store.CountMarks(ctx, r.session.SessionID)
	if err != nil {
		return fmt.Errorf("count marks: %w", err)
	}
	if n == int64(len(r.roster)) {
		r.state = AllMarked
	}
	return nil
}

// Next moves the cursor forward without writing anything.
func (r *Run) Next() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seek(r.cursor + 1)
}

// Previous moves the cursor back without writing anything.
func (r *Run) Previous() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seek(r.cursor - 1)
}

// Seek places the cursor at i, clamped to the roster bounds.
func (r *Run) Seek(i int) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seek(i)
}

func (r *Run) seek(i int) Snapshot {
	r.touch()
	switch {
	case len(r.roster) == 0 || i < 0:
		i = 0
	case i > len(r.roster)-1:
		i = len(r.roster) - 1
	}
	r.cursor = i
	return r.snapshot()
}

// Confirm finalizes the session. Every student must be marked.
func (r *Run) Confirm(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()

	if r.state.Terminal() {
		return ErrRunClosed
	}
	if r.state != AllMarked {
		return ErrNotAllMarked
	}
	if err := r.store.ConfirmSession(ctx, r.session.SessionID); err != nil {
		return fmt.Errorf("confirm session: %w", err)
	}
	r.session.Confirm = true
	r.state = Confirmed
	r.logger.Info("attendance session confirmed",
		zap.String("session_id", r.session.SessionID), zap.Int("marks", len(r.marks)))
	return nil
}

// Abort discards the session: marks first, then the session row.
func (r *Run) Abort(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()
	return r.abort(ctx)
}

func (r *Run) abort(ctx context.Context) error {
	if r.state.Terminal() {
		return ErrRunClosed
	}
	if err := r.store.DeleteMarks(ctx, r.session.SessionID); err != nil {
		return fmt.Errorf("delete attendance marks: %w", err)
	}
	if err := r.store.DeleteSession(ctx, r.session.SessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	r.marks = make(map[string]models.Presence)
	r.state = Deleted
	r.logger.Info("attendance session discarded", zap.String("session_id", r.session.SessionID))
	return nil
}

// Abandon is the best-effort path used when the teacher leaves without
// finishing. A run that has every mark is kept so it can still be confirmed.
// It reports whether the session was discarded.
func (r *Run) Abandon(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == AllMarked || r.state.Terminal() {
		return false, nil
	}
	if err := r.abort(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Entry is one roster line as seen by the teacher.
type Entry struct {
	Matricule string `json:"matricule"`
	Name      string `json:"name"`
	Status    string `json:"status,omitempty"`
}

// Snapshot is a read-only view of a run.
type Snapshot struct {
	SessionID     string    `json:"sessionId"`
	SessionNumber int       `json:"sessionNumber"`
	Date          time.Time `json:"date"`
	State         string    `json:"state"`
	Cursor        int       `json:"cursor"`
	Total         int       `json:"total"`
	Marked        int       `json:"marked"`
	AllMarked     bool      `json:"allMarked"`
	Current       *Entry    `json:"current,omitempty"`
	Entries       []Entry   `json:"entries"`
}

func (r *Run) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

func (r *Run) snapshot() Snapshot {
	s := Snapshot{
		SessionID:     r.session.SessionID,
		SessionNumber: r.session.SessionNumber,
		Date:          r.session.Date,
		State:         r.state.String(),
		Cursor:        r.cursor,
		Total:         len(r.roster),
		AllMarked:     r.state == AllMarked,
		Entries:       make([]Entry, 0, len(r.roster)),
	}
	for _, e := range r.roster {
		entry := Entry{Matricule: e.Matricule, Name: e.Name()}
		if p, ok := r.marks[e.Matricule]; ok {
			entry.Status = p.String()
			s.Marked++
		}
		s.Entries = append(s.Entries, entry)
	}
	if r.cursor < len(s.Entries) {
		cur := s.Entries[r.cursor]
		s.Current = &cur
	}
	return s
}
