package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mikeboe/rag-research-agent/pkg/research"
)

// memStore is an in-memory RunStore for tests.
type memStore struct {
	mu     sync.Mutex
	runs   map[uuid.UUID]*Run
	order  []uuid.UUID
	logs   map[uuid.UUID][]LogEntry
	states map[uuid.UUID][]research.State
}

func newMemStore() *memStore {
	return &memStore{
		runs:   make(map[uuid.UUID]*Run),
		logs:   make(map[uuid.UUID][]LogEntry),
		states: make(map[uuid.UUID][]research.State),
	}
}

func (m *memStore) CreateRun(_ context.Context, topic string, maxLoops int, revealSources bool) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	run := &Run{
		ID:            uuid.New(),
		Topic:         topic,
		MaxLoops:      maxLoops,
		RevealSources: revealSources,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.runs[run.ID] = run
	m.order = append(m.order, run.ID)
	c := *run
	return &c, nil
}

func (m *memStore) GetRun(_ context.Context, id uuid.UUID) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	c := *run
	return &c, nil
}

func (m *memStore) ListRuns(_ context.Context, limit int) ([]Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var runs []Run
	for i := len(m.order) - 1; i >= 0 && len(runs) < limit; i-- {
		runs = append(runs, *m.runs[m.order[i]])
	}
	return runs, nil
}

func (m *memStore) update(id uuid.UUID, fn func(*Run)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return ErrRunNotFound
	}
	fn(run)
	run.UpdatedAt = time.Now()
	return nil
}

func (m *memStore) SetStatus(_ context.Context, id uuid.UUID, status string) error {
	return m.update(id, func(r *Run) { r.Status = status })
}

func (m *memStore) SaveState(_ context.Context, id uuid.UUID, state research.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.states[id] = append(m.states[id], state)
	m.mu.Unlock()
	return m.update(id, func(r *Run) {
		r.State = raw
		r.LoopCount = state.LoopCount
	})
}

func (m *memStore) CompleteRun(_ context.Context, id uuid.UUID, artifact string) error {
	return m.update(id, func(r *Run) {
		r.Status = StatusCompleted
		r.Artifact = &artifact
	})
}

func (m *memStore) FailRun(_ context.Context, id uuid.UUID, reason string) error {
	return m.update(id, func(r *Run) {
		r.Status = StatusFailed
		r.Error = &reason
	})
}

func (m *memStore) AppendLog(_ context.Context, id uuid.UUID, entry LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = len(m.logs[id]) + 1
	m.logs[id] = append(m.logs[id], entry)
	return nil
}

func (m *memStore) ListLogs(_ context.Context, id uuid.UUID) ([]LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LogEntry(nil), m.logs[id]...), nil
}
