package db

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yahyalegrini24/AttendEase/internal/models"
)

// Semesters lists semesters, most recent first.
func (s *Store) Semesters(ctx context.Context) ([]models.Semester, error) {
	var semesters []models.Semester
	err := s.db.WithContext(ctx).Order(orderBy("StartDate", true)).Find(&semesters).Error
	return semesters, err
}

// TeacherGroups lists a teacher's group assignments. An empty semesterID
// means every semester.
func (s *Store) TeacherGroups(ctx context.Context, teacherID, semesterID string) ([]models.TeacherGroup, error) {
	var assigned []models.TeacherGroup
	tx := s.db.WithContext(ctx).
		Preload("Group.Section.SchoolYear.Degree").
		Preload("Semester").
		Where(map[string]any{"teacherId": teacherID})
	if semesterID != "" {
		tx = tx.Where(map[string]any{"semestreId": semesterID})
	}
	err := tx.Order("id").Find(&assigned).Error
	return assigned, err
}

// BranchGroups lists every group whose school year belongs to the branch.
func (s *Store) BranchGroups(ctx context.Context, branchID string) ([]models.Group, error) {
	var groups []models.Group
	err := s.db.WithContext(ctx).
		Preload("Section.SchoolYear.Degree").
		Joins(`LEFT JOIN "Section" ON "Section"."sectionId" = "Group"."sectionId"`).
		Joins(`LEFT JOIN "SchoolYear" ON "SchoolYear"."yearId" = "Section"."yearId"`).
		Where(`"SchoolYear"."branchId" = ?`, branchID).
		Order(`"Group"."groupId"`).
		Find(&groups).Error
	return groups, err
}

// AllGroups lists every group that has a roster workbook.
func (s *Store) AllGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := s.db.WithContext(ctx).
		Where(clause.Neq{Column: clause.Column{Name: "group_path"}, Value: ""}).
		Order(orderBy("groupId", false)).
		Find(&groups).Error
	return groups, err
}

func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	var g models.Group
	if err := s.db.WithContext(ctx).Where(map[string]any{"groupId": groupID}).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// ReplaceTeacherGroups swaps the teacher's assignments for one semester in a
// single transaction.
func (s *Store) ReplaceTeacherGroups(ctx context.Context, teacherID, semesterID string, groupIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where(map[string]any{"teacherId": teacherID, "semestreId": semesterID}).
			Delete(&models.TeacherGroup{}).Error
		if err != nil {
			return err
		}
		if len(groupIDs) == 0 {
			return nil
		}
		rows := make([]models.TeacherGroup, 0, len(groupIDs))
		for _, id := range groupIDs {
			rows = append(rows, models.TeacherGroup{TeacherID: teacherID, GroupID: id, SemesterID: semesterID})
		}
		return tx.Create(&rows).Error
	})
}
