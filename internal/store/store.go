package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/goodnews-cli/internal/story"
)

// ErrRunNotFound is returned when a run ID has no history.
var ErrRunNotFound = errors.New("run not found")

// Run is one completed analysis as recorded in history.
type Run struct {
	ID          string
	CreatedAt   time.Time
	Indicators  int
	Skipped     int
	Trends      int
	Milestones  int
	CurrentYear int
}

// NewRun stamps a fresh run ID and creation time.
func NewRun() Run {
	return Run{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
}

// Tally fills the story counts from stories.
func (r *Run) Tally(stories []story.Story) {
	r.Trends, r.Milestones = 0, 0
	for _, s := range stories {
		switch s.Type {
		case story.KindTrend:
			r.Trends++
		case story.KindMilestone:
			r.Milestones++
		}
	}
}

// Store persists run history. Nothing in detection reads it back.
type Store interface {
	SaveRun(ctx context.Context, run Run, stories []story.Story) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	RunStories(ctx context.Context, runID string) ([]story.Story, error)
	Close() error
}

type NopStore struct{}

func (s *NopStore) SaveRun(ctx context.Context, run Run, stories []story.Story) error {
	_ = ctx
	_ = run
	_ = stories
	return nil
}

func (s *NopStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	_ = limit
	return nil, nil
}

func (s *NopStore) RunStories(ctx context.Context, runID string) ([]story.Story, error) {
	_ = ctx
	return nil, ErrRunNotFound
}

func (s *NopStore) Close() error {
	return nil
}
