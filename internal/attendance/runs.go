package attendance

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Runs holds the live runs of the process, keyed by session id.
type Runs struct {
	mu     sync.Mutex
	runs   map[string]*Run
	logger *zap.Logger
}

func NewRuns(logger *zap.Logger) *Runs {
	return &Runs{runs: make(map[string]*Run), logger: logger}
}

func (rs *Runs) Put(run *Run) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.runs[run.SessionID()] = run
}

func (rs *Runs) Get(sessionID string) (*Run, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	run, ok := rs.runs[sessionID]
	if !ok {
		return nil, ErrRunNotFound
	}
	return run, nil
}

func (rs *Runs) Remove(sessionID string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	delete(rs.runs, sessionID)
}

func (rs *Runs) Len() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.runs)
}

func (rs *Runs) snapshot() []*Run {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	out := make([]*Run, 0, len(rs.runs))
	for _, r := range rs.runs {
		out = append(out, r)
	}
	return out
}

// ReapIdle abandons runs untouched for longer than maxIdle and forgets them.
// Idle time is measured on the clock of the run's manager.
// Runs with every student marked are only forgotten; their session stays and
// can be resumed and confirmed later. It returns how many sessions were
// discarded.
func (rs *Runs) ReapIdle(ctx context.Context, maxIdle time.Duration) int {
	discarded := 0
	for _, run := range rs.snapshot() {
		if run.LastTouched().After(run.now().Add(-maxIdle)) {
			continue
		}
		ok, err := run.Abandon(ctx)
		if err != nil {
			rs.logger.Warn("failed to abandon idle attendance run",
				zap.String("session_id", run.SessionID()), zap.Error(err))
			continue
		}
		if ok {
			discarded++
		}
		rs.Remove(run.SessionID())
	}
	return discarded
}

// AbandonAll is the shutdown counterpart of ReapIdle.
func (rs *Runs) AbandonAll(ctx context.Context) int {
	return rs.ReapIdle(ctx, -time.Hour)
}
