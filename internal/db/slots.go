package db

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yahyalegrini24/AttendEase/internal/models"
)

func preloadSlot(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Day").
		Preload("Module.Semester").
		Preload("Module.SchoolYear").
		Preload("Group.GroupType").
		Preload("Group.Section.SchoolYear.Degree").
		Preload("GroupType").
		Preload("Classroom")
}

// TeacherSlots returns the timetable slots of a teacher ordered by day.
func (s *Store) TeacherSlots(ctx context.Context, teacherID string) ([]models.SessionStructure, error) {
	var slots []models.SessionStructure
	err := preloadSlot(s.db.WithContext(ctx)).
		Where(map[string]any{"teacherId": teacherID}).
		Order(orderBy("dayId", false)).
		Order(orderBy("slotIndex", false)).
		Find(&slots).Error
	return slots, err
}

func (s *Store) Slot(ctx context.Context, slotID string) (*models.SessionStructure, error) {
	var slot models.SessionStructure
	err := preloadSlot(s.db.WithContext(ctx)).
		Where(map[string]any{"Session_structure_id": slotID}).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// ReplaceTeacherSlots swaps a teacher's whole timetable in one transaction,
// so readers never observe an empty timetable mid-save.
func (s *Store) ReplaceTeacherSlots(ctx context.Context, teacherID string, slots []models.SessionStructure) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(map[string]any{"teacherId": teacherID}).Delete(&models.SessionStructure{}).Error; err != nil {
			return err
		}
		if len(slots) == 0 {
			return nil
		}
		return tx.Omit(clause.Associations).Create(&slots).Error
	})
}

func (s *Store) Classrooms(ctx context.Context) ([]models.Classroom, error) {
	var rooms []models.Classroom
	err := s.db.WithContext(ctx).
		Order(orderBy("Location", false)).
		Order(orderBy("ClassNumber", false)).
		Find(&rooms).Error
	return rooms, err
}
