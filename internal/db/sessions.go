package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yahyalegrini24/AttendEase/internal/models"
)

// ErrNotFound is returned by updates that matched no row.
var ErrNotFound = errors.New("db: no matching row")

func orderBy(column string, desc bool) clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}
}

// LatestSessionNumber returns the highest sessionNumber recorded for the
// module and group, or 0 when there is none.
func (s *Store) LatestSessionNumber(ctx context.Context, moduleID, groupID string) (int, error) {
	var latest int
	err := s.db.WithContext(ctx).
		Model(&models.Session{}).
		Where(map[string]any{"moduleId": moduleID, "groupId": groupID}).
		Select(`COALESCE(MAX("sessionNumber"), 0)`).
		Scan(&latest).Error
	return latest, err
}

func (s *Store) CreateSession(ctx context.Context, session *models.Session) error {
	return s.db.WithContext(ctx).Create(session).Error
}

func (s *Store) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).
		Preload("Module").
		Preload("Group").
		Where(map[string]any{"sessionId": sessionID}).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Store) ConfirmSession(ctx context.Context, sessionID string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Session{}).
		Where(map[string]any{"sessionId": sessionID}).
		Update("confirm", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).
		Where(map[string]any{"sessionId": sessionID}).
		Delete(&models.Session{}).Error
}

// TeacherSessions lists a teacher's sessions, newest first, with everything
// the history tree needs already joined.
func (s *Store) TeacherSessions(ctx context.Context, teacherID string) ([]models.Session, error) {
	var sessions []models.Session
	err := s.db.WithContext(ctx).
		Preload("Module.Semester").
		Preload("Group.Section.SchoolYear.Degree").
		Preload("Classroom").
		Preload("Day").
		Where(map[string]any{"teacherId": teacherID}).
		Order(orderBy("date", true)).
		Find(&sessions).Error
	return sessions, err
}

// DatedSessions lists the sessions of a module and group by date ascending.
func (s *Store) DatedSessions(ctx context.Context, moduleID, groupID string) ([]models.Session, error) {
	var sessions []models.Session
	err := s.db.WithContext(ctx).
		Where(map[string]any{"moduleId": moduleID, "groupId": groupID}).
		Where(clause.Neq{Column: clause.Column{Name: "date"}, Value: nil}).
		Order(orderBy("date", false)).
		Order(orderBy("sessionNumber", false)).
		Find(&sessions).Error
	return sessions, err
}

// UpsertMark writes a presence mark. A second mark for the same student and
// session overwrites the first.
func (s *Store) UpsertMark(ctx context.Context, mark *models.Attendance) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sessionId"}, {Name: "matricule"}},
			DoUpdates: clause.AssignmentColumns([]string{"presence"}),
		}).
		Create(mark).Error
}

func (s *Store) CountMarks(ctx context.Context, sessionID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.Attendance{}).
		Where(map[string]any{"sessionId": sessionID}).
		Count(&n).Error
	return n, err
}

func (s *Store) Marks(ctx context.Context, sessionID string) ([]models.Attendance, error) {
	var marks []models.Attendance
	err := s.db.WithContext(ctx).
		Where(map[string]any{"sessionId": sessionID}).
		Order("id").
		Find(&marks).Error
	return marks, err
}

func (s *Store) DeleteMarks(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).
		Where(map[string]any{"sessionId": sessionID}).
		Delete(&models.Attendance{}).Error
}

// Absentees lists the marks of a session still at presence 0, with the
// student joined.
func (s *Store) Absentees(ctx context.Context, sessionID string) ([]models.Attendance, error) {
	var marks []models.Attendance
	err := s.db.WithContext(ctx).
		Preload("Student").
		Where(map[string]any{"sessionId": sessionID, "presence": models.Absent}).
		Order("id").
		Find(&marks).Error
	return marks, err
}

// JustifyMark moves an absent mark to justified. It returns ErrNotFound when
// the student has no absent mark in the session.
func (s *Store) JustifyMark(ctx context.Context, sessionID, matricule string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Attendance{}).
		Where(map[string]any{"sessionId": sessionID, "matricule": matricule, "presence": models.Absent}).
		Update("presence", models.Justified)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrNotFound)
}
