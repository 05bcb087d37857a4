// Package report builds attendance exports: the per-student, per-session
// presence matrix of a module and group, and the browser listing what a
// teacher can export.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/yahyalegrini24/AttendEase/internal/excel"
	"github.com/yahyalegrini24/AttendEase/internal/models"
)

type Store interface {
	TeacherSlots(ctx context.Context, teacherID string) ([]models.SessionStructure, error)
	DatedSessions(ctx context.Context, moduleID, groupID string) ([]models.Session, error)
	Marks(ctx context.Context, sessionID string) ([]models.Attendance, error)
	Roster(ctx context.Context, groupID string) ([]models.StudentGroup, error)
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
}

// Column is one session of the matrix.
type Column struct {
	SessionID string    `json:"sessionId"`
	Number    int       `json:"sessionNumber"`
	Date      time.Time `json:"date"`
}

// Header is the spreadsheet header of the column, e.g. "S3 14/02/2024".
func (c Column) Header() string {
	return fmt.Sprintf("S%d %s", c.Number, c.Date.Format("02/01/2006"))
}

// Matrix holds presence per student and session. A student without a mark in
// a session counts as absent.
type Matrix struct {
	Columns  []Column                     `json:"columns"`
	Students []string                     `json:"students"`
	Values   map[string][]models.Presence `json:"values"`
}

// Note is the sum of the student's presence values.
func (m *Matrix) Note(matricule string) float64 {
	total := 0.0
	for _, p := range m.Values[matricule] {
		total += float64(p)
	}
	return total
}

// Sheet converts the matrix for merging into a roster workbook.
func (m *Matrix) Sheet() excel.AttendanceSheet {
	s := excel.AttendanceSheet{
		Headers: make([]string, len(m.Columns)),
		Values:  make(map[string][]float64, len(m.Students)),
		Totals:  make(map[string]float64, len(m.Students)),
	}
	for i, c := range m.Columns {
		s.Headers[i] = c.Header()
	}
	for _, mat := range m.Students {
		row := make([]float64, len(m.Columns))
		for i, p := range m.Values[mat] {
			row[i] = float64(p)
		}
		s.Values[mat] = row
		s.Totals[mat] = m.Note(mat)
	}
	return s
}

func (m *Matrix) addStudent(matricule string) {
	if _, ok := m.Values[matricule]; ok {
		return
	}
	m.Students = append(m.Students, matricule)
	m.Values[matricule] = make([]models.Presence, len(m.Columns))
}

// BuildMatrix reads every dated session of the module and group, oldest
// first, and the marks of each. Students come in roster order, followed by
// anyone who has marks but has since left the roster.
func BuildMatrix(ctx context.Context, store Store, moduleID, groupID string) (*Matrix, error) {
	sessions, err := store.DatedSessions(ctx, moduleID, groupID)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	roster, err := store.Roster(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	m := &Matrix{
		Columns: make([]Column, 0, len(sessions)),
		Values:  make(map[string][]models.Presence, len(roster)),
	}
	for _, s := range sessions {
		m.Columns = append(m.Columns, Column{SessionID: s.SessionID, Number: s.SessionNumber, Date: s.Date})
	}
	for _, e := range roster {
		m.addStudent(e.Matricule)
	}

	for i, s := range sessions {
		marks, err := store.Marks(ctx, s.SessionID)
		if err != nil {
			return nil, fmt.Errorf("load marks of session %s: %w", s.SessionID, err)
		}
		for _, mk := range marks {
			m.addStudent(mk.Matricule)
			m.Values[mk.Matricule][i] = mk.Presence
		}
	}
	return m, nil
}
