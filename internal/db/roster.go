package db

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yahyalegrini24/AttendEase/internal/models"
)

// Roster returns the students of a group in insertion order.
func (s *Store) Roster(ctx context.Context, groupID string) ([]models.StudentGroup, error) {
	var roster []models.StudentGroup
	err := s.db.WithContext(ctx).
		Preload("Student").
		Where(map[string]any{"groupId": groupID}).
		Order("id").
		Find(&roster).Error
	return roster, err
}

// UpsertRoster makes sure every student exists and belongs to the group.
// Names are refreshed; existing memberships are left alone so roster order is
// stable. It returns how many memberships were added.
func (s *Store) UpsertRoster(ctx context.Context, groupID string, students []models.Student) (int, error) {
	added := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range students {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "matricule"}},
				DoUpdates: clause.AssignmentColumns([]string{"firstName", "lastName"}),
			}).Create(&students[i]).Error
			if err != nil {
				return err
			}

			res := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.StudentGroup{Matricule: students[i].Matricule, GroupID: groupID})
			if res.Error != nil {
				return res.Error
			}
			added += int(res.RowsAffected)
		}
		return nil
	})
	return added, err
}
