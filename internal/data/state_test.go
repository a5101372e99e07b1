package data

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lifestream-app/lifestream/internal/biz/repo"
)

func exerciseStateRepo(t *testing.T, r repo.StateRepo) {
	t.Helper()
	ctx := context.Background()

	got, err := r.Load(ctx, "lifestream/userData")
	if err != nil {
		t.Fatalf("Load of missing key failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing key, got %q", got)
	}

	if err := r.Save(ctx, "lifestream/userData", []byte(`{"version":"2.0.0"}`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := r.Save(ctx, "lifestream/userData", []byte(`{"version":"2.0.1"}`)); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}

	got, err = r.Load(ctx, "lifestream/userData")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !bytes.Equal(got, []byte(`{"version":"2.0.1"}`)) {
		t.Errorf("Expected latest value, got %q", got)
	}

	if err := r.Save(ctx, "other", []byte("x")); err != nil {
		t.Fatalf("Save of second key failed: %v", err)
	}
	got, _ = r.Load(ctx, "lifestream/userData")
	if !bytes.Equal(got, []byte(`{"version":"2.0.1"}`)) {
		t.Errorf("Keys should be independent, got %q", got)
	}
}

func TestSQLiteStateRepo(t *testing.T) {
	r, err := NewSQLiteStateRepo(filepath.Join(t.TempDir(), "nested", "state.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStateRepo failed: %v", err)
	}
	defer r.Close()

	exerciseStateRepo(t, r)
}

func TestSQLiteStateRepo_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	r, err := NewSQLiteStateRepo(path)
	if err != nil {
		t.Fatalf("NewSQLiteStateRepo failed: %v", err)
	}
	if err := r.Save(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	r.Close()

	reopened, err := NewSQLiteStateRepo(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load(context.Background(), "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Expected persisted value, got %q err %v", got, err)
	}
}

func TestFileStateRepo(t *testing.T) {
	dir := t.TempDir()
	r, err := NewFileStateRepo(dir)
	if err != nil {
		t.Fatalf("NewFileStateRepo failed: %v", err)
	}
	defer r.Close()

	exerciseStateRepo(t, r)

	if _, err := os.Stat(filepath.Join(dir, "lifestream_userData.json")); err != nil {
		t.Errorf("Expected sanitized file name on disk: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			t.Errorf("Unexpected leftover file %s", e.Name())
		}
	}
}

func TestFileStateRepo_CancelledContext(t *testing.T) {
	r, err := NewFileStateRepo(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStateRepo failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.Save(ctx, "k", []byte("v")); err == nil {
		t.Error("Expected error on cancelled context")
	}
}

func TestNewStateRepo_UnknownBackend(t *testing.T) {
	if _, err := NewStateRepo(context.Background(), StoreOptions{Backend: "mongo"}); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestNewRepositories_Optional(t *testing.T) {
	repos, err := NewRepositories(context.Background(), StoreOptions{Backend: BackendFile, Path: t.TempDir()}, nil, nil)
	if err != nil {
		t.Fatalf("NewRepositories failed: %v", err)
	}
	defer repos.Close()

	if repos.Generator != nil {
		t.Error("Expected nil generator without a client")
	}
	if repos.Message != nil {
		t.Error("Expected nil message repo without Feishu")
	}
}

func TestRedisStateRepo(t *testing.T) {
	addr := os.Getenv("LIFESTREAM_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LIFESTREAM_TEST_REDIS_ADDR not set")
	}
	r, err := NewRedisStateRepo(context.Background(), addr, "", 15)
	if err != nil {
		t.Fatalf("NewRedisStateRepo failed: %v", err)
	}
	defer r.Close()

	exerciseStateRepo(t, r)
}
