// Package roster loads group rosters from their workbooks into the database.
package roster

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/yahyalegrini24/AttendEase/internal/excel"
	"github.com/yahyalegrini24/AttendEase/internal/models"
)

type Store interface {
	AllGroups(ctx context.Context) ([]models.Group, error)
	UpsertRoster(ctx context.Context, groupID string, students []models.Student) (int, error)
}

// Result sums up one sync run.
type Result struct {
	Groups  int
	Skipped int
	Failed  int
	Added   int
}

type Syncer struct {
	store  Store
	dir    string
	logger *zap.Logger
}

// NewSyncer reads workbooks relative to dir.
func NewSyncer(store Store, dir string, logger *zap.Logger) *Syncer {
	return &Syncer{store: store, dir: dir, logger: logger}
}

// Path resolves a stored group path inside the roster directory.
func (s *Syncer) Path(groupPath string) string {
	dir, name := excel.SplitGroupPath(groupPath)
	return filepath.Join(s.dir, filepath.FromSlash(dir), name)
}

// SyncGroup upserts the students of one group's workbook.
func (s *Syncer) SyncGroup(ctx context.Context, g models.Group) (int, error) {
	r, err := excel.ReadRosterFile(s.Path(g.GroupPath))
	if err != nil {
		return 0, err
	}
	students := make([]models.Student, 0, len(r.Rows))
	for _, row := range r.Rows {
		students = append(students, models.Student{
			Matricule: row.Matricule,
			LastName:  row.LastName,
			FirstName: row.FirstName,
		})
	}
	added, err := s.store.UpsertRoster(ctx, g.GroupID, students)
	if err != nil {
		return 0, fmt.Errorf("save roster of group %s: %w", g.GroupID, err)
	}
	return added, nil
}

// Sync walks every group with a roster workbook. A broken workbook is logged
// and skipped; only a failure to list groups aborts the run.
func (s *Syncer) Sync(ctx context.Context) (Result, error) {
	var res Result
	groups, err := s.store.AllGroups(ctx)
	if err != nil {
		return res, fmt.Errorf("list groups: %w", err)
	}

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if strings.TrimSpace(g.GroupPath) == "" {
			res.Skipped++
			continue
		}
		res.Groups++
		added, err := s.SyncGroup(ctx, g)
		if err != nil {
			res.Failed++
			s.logger.Warn("roster sync failed",
				zap.String("group_id", g.GroupID),
				zap.String("group_path", g.GroupPath),
				zap.Error(err))
			continue
		}
		res.Added += added
	}

	s.logger.Info("roster sync finished",
		zap.Int("groups", res.Groups),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
		zap.Int("added", res.Added))
	return res, nil
}
