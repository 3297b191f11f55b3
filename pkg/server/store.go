package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mikeboe/rag-research-agent/pkg/database"
	"github.com/mikeboe/rag-research-agent/pkg/research"
)

const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("research run not found")

type Run struct {
	ID            uuid.UUID       `json:"id"`
	Topic         string          `json:"topic"`
	MaxLoops      int             `json:"max_loops"`
	RevealSources bool            `json:"reveal_sources"`
	Status        string          `json:"status"`
	LoopCount     int             `json:"loop_count"`
	State         json.RawMessage `json:"state,omitempty"`
	Artifact      *string         `json:"artifact,omitempty"`
	Error         *string         `json:"error,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type LogEntry struct {
	ID        int             `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Level     string          `json:"level"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata"`
}

// RunStore persists research runs and their log entries.
type RunStore interface {
	CreateRun(ctx context.Context, topic string, maxLoops int, revealSources bool) (*Run, error)
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	SaveState(ctx context.Context, id uuid.UUID, state research.State) error
	CompleteRun(ctx context.Context, id uuid.UUID, artifact string) error
	FailRun(ctx context.Context, id uuid.UUID, reason string) error
	AppendLog(ctx context.Context, id uuid.UUID, entry LogEntry) error
	ListLogs(ctx context.Context, id uuid.UUID) ([]LogEntry, error)
}

// PostgresRunStore keeps runs in the research_runs and research_logs tables.
type PostgresRunStore struct {
	DB *database.PostgresDB
}

func NewPostgresRunStore(db *database.PostgresDB) *PostgresRunStore {
	return &PostgresRunStore{DB: db}
}

const runColumns = `id, topic, max_loops, reveal_sources, status, loop_count, state, artifact, error, created_at, updated_at`

func scanRun(row pgx.Row, run *Run) error {
	return row.Scan(&run.ID, &run.Topic, &run.MaxLoops, &run.RevealSources, &run.Status,
		&run.LoopCount, &run.State, &run.Artifact, &run.Error, &run.CreatedAt, &run.UpdatedAt)
}

func (s *PostgresRunStore) CreateRun(ctx context.Context, topic string, maxLoops int, revealSources bool) (*Run, error) {
	query := `
		INSERT INTO research_runs (id, topic, max_loops, reveal_sources, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + runColumns

	run := &Run{}
	if err := scanRun(s.DB.Pool.QueryRow(ctx, query, uuid.New(), topic, maxLoops, revealSources, StatusPending), run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

func (s *PostgresRunStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	query := `SELECT ` + runColumns + ` FROM research_runs WHERE id = $1`

	run := &Run{}
	if err := scanRun(s.DB.Pool.QueryRow(ctx, query, id), run); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

func (s *PostgresRunStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM research_runs ORDER BY created_at DESC LIMIT $1`

	rows, err := s.DB.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		if err := scanRun(rows, &run); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *PostgresRunStore) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	return s.exec(ctx, "UPDATE research_runs SET status = $2, updated_at = NOW() WHERE id = $1", id, status)
}

func (s *PostgresRunStore) SaveState(ctx context.Context, id uuid.UUID, state research.State) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	return s.exec(ctx, "UPDATE research_runs SET state = $2, loop_count = $3, updated_at = NOW() WHERE id = $1",
		id, stateJSON, state.LoopCount)
}

func (s *PostgresRunStore) CompleteRun(ctx context.Context, id uuid.UUID, artifact string) error {
	return s.exec(ctx, "UPDATE research_runs SET status = $2, artifact = $3, updated_at = NOW() WHERE id = $1",
		id, StatusCompleted, artifact)
}

func (s *PostgresRunStore) FailRun(ctx context.Context, id uuid.UUID, reason string) error {
	return s.exec(ctx, "UPDATE research_runs SET status = $2, error = $3, updated_at = NOW() WHERE id = $1",
		id, StatusFailed, reason)
}

func (s *PostgresRunStore) AppendLog(ctx context.Context, id uuid.UUID, entry LogEntry) error {
	query := `
		INSERT INTO research_logs (run_id, timestamp, level, message, metadata)
		VALUES ($1, $2, $3, $4, $5)
	`
	return s.exec(ctx, query, id, entry.Timestamp, entry.Level, entry.Message, []byte(entry.Metadata))
}

func (s *PostgresRunStore) ListLogs(ctx context.Context, id uuid.UUID) ([]LogEntry, error) {
	query := `
		SELECT id, timestamp, level, message, metadata
		FROM research_logs
		WHERE run_id = $1
		ORDER BY id ASC
	`
	rows, err := s.DB.Pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs: %w", err)
	}
	defer rows.Close()

	logs := []LogEntry{}
	for rows.Next() {
		var l LogEntry
		if err := rows.Scan(&l.ID, &l.Timestamp, &l.Level, &l.Message, &l.Metadata); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (s *PostgresRunStore) exec(ctx context.Context, query string, args ...any) error {
	tag, err := s.DB.Pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}
