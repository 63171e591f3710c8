// Package store persists extraction runs and their raw LLM responses.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/skiplogic/internal/config"
)

// ErrNotFound is returned when a run id does not exist.
var ErrNotFound = eris.New("store: run not found")

// RunStatus is the lifecycle state of an extraction run.
type RunStatus string

// Run statuses.
const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Valid reports whether s is a known status.
func (s RunStatus) Valid() bool {
	switch s {
	case RunStatusQueued, RunStatusRunning, RunStatusSucceeded, RunStatusFailed:
		return true
	}
	return false
}

// Run is one document's pass through scan, block building and extraction.
type Run struct {
	ID         string    `json:"id"`
	Document   string    `json:"document"`
	Status     RunStatus `json:"status"`
	Candidates int       `json:"candidates"`
	Blocks     int       `json:"blocks"`
	Groups     int       `json:"groups"`
	Raw        string    `json:"raw,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RunStats are the counts recorded when a run succeeds.
type RunStats struct {
	Candidates int `json:"candidates"`
	Blocks     int `json:"blocks"`
	Groups     int `json:"groups"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status   RunStatus `json:"status,omitempty"`
	Document string    `json:"document,omitempty"`
	Limit    int       `json:"limit,omitempty"`
	Offset   int       `json:"offset,omitempty"`
}

func (f RunFilter) limit() int {
	if f.Limit <= 0 {
		return 100
	}
	return f.Limit
}

// Store defines the persistence interface for extraction runs.
type Store interface {
	CreateRun(ctx context.Context, document string) (*Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status RunStatus) error
	SaveRawResponse(ctx context.Context, runID, raw string) error
	CompleteRun(ctx context.Context, runID string, stats RunStats) error
	FailRun(ctx context.Context, runID, msg string) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)

	Migrate(ctx context.Context) error
	Close() error
}

// New opens the configured backend and applies migrations.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "sqlite", "":
		s, err = NewSQLite(cfg.DatabaseURL)
	case "postgres":
		s, err = NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close() //nolint:errcheck
		return nil, err
	}
	return s, nil
}
