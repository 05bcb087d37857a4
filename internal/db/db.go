package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yahyalegrini24/AttendEase/internal/models"
)

// Store is the gorm-backed implementation of every store interface the
// services consume. Each call is a single query unless documented otherwise.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// InitDB opens the connection and migrates the schema.
func InitDB(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.Info("database connected and migrated")
	return db, nil
}

// Migrate creates or updates all tables. Parents come before children so the
// foreign keys resolve.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Degree{},
		&models.SchoolYear{},
		&models.Section{},
		&models.GroupType{},
		&models.Group{},
		&models.Semester{},
		&models.Module{},
		&models.Day{},
		&models.Classroom{},
		&models.Teacher{},
		&models.Student{},
		&models.StudentGroup{},
		&models.TeacherGroup{},
		&models.SessionStructure{},
		&models.Session{},
		&models.Attendance{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
