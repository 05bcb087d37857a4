package db

import (
	"context"

	"github.com/yahyalegrini24/AttendEase/internal/models"
)

func (s *Store) TeacherByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	var t models.Teacher
	if err := s.db.WithContext(ctx).Where(map[string]any{"email": email}).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) TeacherByID(ctx context.Context, id string) (*models.Teacher, error) {
	var t models.Teacher
	if err := s.db.WithContext(ctx).Where(map[string]any{"teacherId": id}).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) UpdateTeacherName(ctx context.Context, teacherID, name string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Teacher{}).
		Where(map[string]any{"teacherId": teacherID}).
		Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
