package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	gormrepo "nearbyradar/internal/adapter/repo/gorm"
	"nearbyradar/internal/adapter/repo/memory"
	sqliterepo "nearbyradar/internal/adapter/repo/sqlite"
	"nearbyradar/internal/config"
)

func TestEnvOr(t *testing.T) {
	t.Setenv("RADAR_TEST_KEY", "  ")
	if got := envOr("RADAR_TEST_KEY", "fallback"); got != "fallback" {
		t.Fatalf("envOr()=%q want fallback", got)
	}
	t.Setenv("RADAR_TEST_KEY", "set")
	if got := envOr("RADAR_TEST_KEY", "fallback"); got != "set" {
		t.Fatalf("envOr()=%q want set", got)
	}
}

func TestIssueOperatorToken_RequiresSecret(t *testing.T) {
	if _, err := issueOperatorToken("", time.Hour, time.Now()); err == nil {
		t.Fatalf("expected error without a secret")
	}
	token, err := issueOperatorToken("s3cret", time.Hour, time.Now())
	if err != nil || token == "" {
		t.Fatalf("expected token, got %q %v", token, err)
	}
}

func TestBuildDeps_DefaultsToScenarioStore(t *testing.T) {
	store, err := memory.LoadScenarioFile(filepath.Join("..", "..", "scenarios", "demo.yaml"))
	if err != nil {
		t.Fatalf("load demo scenario: %v", err)
	}
	deps, closers, err := buildDeps(context.Background(), config.Config{}, store)
	if err != nil {
		t.Fatalf("buildDeps error: %v", err)
	}
	if len(closers) != 0 {
		t.Fatalf("expected nothing to close, got %d", len(closers))
	}
	if _, ok := deps.Mutes.(memory.MuteRepo); !ok {
		t.Fatalf("expected in-memory mutes, got %T", deps.Mutes)
	}
	if _, ok := deps.Tx.(gormrepo.TxManager); ok {
		t.Fatalf("expected in-memory tx manager")
	}
	if deps.Notifier == nil {
		t.Fatalf("expected a notifier")
	}
}

func TestBuildDeps_SQLiteAndNotifyLog(t *testing.T) {
	store, err := memory.LoadScenarioFile(filepath.Join("..", "..", "scenarios", "demo.yaml"))
	if err != nil {
		t.Fatalf("load demo scenario: %v", err)
	}
	dir := t.TempDir()
	cfg := config.Config{
		DB:     config.DBConfig{SQLitePath: filepath.Join(dir, "sightings.db")},
		Notify: config.NotifyConfig{LogDir: filepath.Join(dir, "chat")},
	}
	deps, closers, err := buildDeps(context.Background(), cfg, store)
	if err != nil {
		t.Fatalf("buildDeps error: %v", err)
	}
	defer func() {
		for _, c := range closers {
			_ = c()
		}
	}()
	if _, ok := deps.Sightings.(*sqliterepo.SightingRepo); !ok {
		t.Fatalf("expected sqlite sightings, got %T", deps.Sightings)
	}
	if len(closers) != 2 {
		t.Fatalf("expected sqlite and log closers, got %d", len(closers))
	}
}
