package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func TestDBLogHandler(t *testing.T) {
	store := newMemStore()
	run, _ := store.CreateRun(context.Background(), "topic", 1, false)

	var echo bytes.Buffer
	logger := slog.New(NewDBLogHandler(store, run.ID, slog.NewTextHandler(&echo, nil))).
		With("run_id", run.ID.String())

	logger.WithGroup("step").Info("Generated query", "query", "q", "error", errors.New("boom"))

	logs, _ := store.ListLogs(context.Background(), run.ID)
	if len(logs) != 1 {
		t.Fatalf("logs = %d, want 1", len(logs))
	}
	if logs[0].Level != "INFO" || logs[0].Message != "Generated query" {
		t.Errorf("entry = %+v", logs[0])
	}

	var meta map[string]any
	if err := json.Unmarshal(logs[0].Metadata, &meta); err != nil {
		t.Fatalf("metadata: %v", err)
	}
	want := map[string]any{
		"run_id":     run.ID.String(),
		"step.query": "q",
		"step.error": "boom",
	}
	if diff := cmp.Diff(want, meta); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}

	if !strings.Contains(echo.String(), "Generated query") {
		t.Errorf("record not forwarded: %q", echo.String())
	}
}

func TestDBLogHandlerWithoutNext(t *testing.T) {
	store := newMemStore()
	id := uuid.New()
	logger := slog.New(NewDBLogHandler(store, id, nil))
	logger.Debug("debug is stored too")

	logs, _ := store.ListLogs(context.Background(), id)
	if len(logs) != 1 || logs[0].Level != "DEBUG" {
		t.Errorf("logs = %+v", logs)
	}
}

func TestDBLogHandlerFollowsNextLevel(t *testing.T) {
	store := newMemStore()
	id := uuid.New()

	var echo bytes.Buffer
	next := slog.NewTextHandler(&echo, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(NewDBLogHandler(store, id, next))

	logger.Debug("Retrieval results", "size", 10)
	logger.Info("Follow-up query", "query", "q")

	logs, _ := store.ListLogs(context.Background(), id)
	if len(logs) != 1 || logs[0].Message != "Follow-up query" {
		t.Errorf("logs = %+v, want only the info record", logs)
	}
	if strings.Contains(echo.String(), "Retrieval results") {
		t.Errorf("debug record forwarded: %q", echo.String())
	}
}
