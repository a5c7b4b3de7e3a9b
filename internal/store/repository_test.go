package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/3menions-ctrl/genesis-director-sub010/internal/db"
)

func setupTestDB(t *testing.T) (*db.DB, Repository) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	database, err := db.New(dbPath, nil)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return database, NewRepository(database.Conn())
}

func newProject(id, name string) *Project {
	now := time.Now().UTC().Truncate(time.Second)
	return &Project{
		ID:        id,
		Name:      name,
		Document:  []byte(`{"version":1,"tracks":[]}`),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRepository_CreateAndGetProject(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	p := newProject("p1", "Launch teaser")
	if err := repo.CreateProject(ctx, p); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	got, err := repo.GetProject(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetProject() returned nil")
	}
	if got.Name != "Launch teaser" {
		t.Errorf("Name = %q, want Launch teaser", got.Name)
	}
	if string(got.Document) != string(p.Document) {
		t.Errorf("Document = %s, want %s", got.Document, p.Document)
	}
	if !got.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, p.CreatedAt)
	}
}

func TestRepository_GetMissingProject(t *testing.T) {
	_, repo := setupTestDB(t)

	got, err := repo.GetProject(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetProject() = %+v, want nil", got)
	}
}

func TestRepository_UpdateProjectDocument(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	if err := repo.CreateProject(ctx, newProject("p1", "Demo")); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	doc := []byte(`{"version":1,"tracks":[{"id":"t1","elements":[]}]}`)
	if err := repo.UpdateProjectDocument(ctx, "p1", doc, 4, 18.5); err != nil {
		t.Fatalf("UpdateProjectDocument() error = %v", err)
	}

	got, _ := repo.GetProject(ctx, "p1")
	if string(got.Document) != string(doc) {
		t.Errorf("Document = %s", got.Document)
	}
	if got.ClipCount != 4 || got.DurationS != 18.5 {
		t.Errorf("ClipCount = %d, DurationS = %v", got.ClipCount, got.DurationS)
	}

	err := repo.UpdateProjectDocument(ctx, "missing", doc, 0, 0)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateProjectDocument(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRepository_RenameAndDelete(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	if err := repo.CreateProject(ctx, newProject("p1", "Old")); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	if err := repo.RenameProject(ctx, "p1", "New"); err != nil {
		t.Fatalf("RenameProject() error = %v", err)
	}
	got, _ := repo.GetProject(ctx, "p1")
	if got.Name != "New" {
		t.Errorf("Name = %q, want New", got.Name)
	}
	if err := repo.RenameProject(ctx, "ghost", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RenameProject(ghost) error = %v, want ErrNotFound", err)
	}

	if err := repo.DeleteProject(ctx, "p1"); err != nil {
		t.Fatalf("DeleteProject() error = %v", err)
	}
	got, _ = repo.GetProject(ctx, "p1")
	if got != nil {
		t.Error("project still present after delete")
	}
}

func TestRepository_ListProjects(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	older := newProject("a", "Older")
	older.UpdatedAt = older.UpdatedAt.Add(-time.Hour)
	for _, p := range []*Project{older, newProject("b", "Newer")} {
		if err := repo.CreateProject(ctx, p); err != nil {
			t.Fatalf("CreateProject() error = %v", err)
		}
	}

	projects, err := repo.ListProjects(ctx, 0)
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("ListProjects() returned %d projects, want 2", len(projects))
	}
	if projects[0].ID != "b" {
		t.Errorf("first project = %s, want most recently updated b", projects[0].ID)
	}
	if projects[0].Document != nil {
		t.Error("ListProjects() should not load documents")
	}

	limited, _ := repo.ListProjects(ctx, 1)
	if len(limited) != 1 {
		t.Errorf("ListProjects(1) returned %d", len(limited))
	}
}

func TestRepository_Config(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	v, err := repo.GetConfig(ctx, "auth_token")
	if err != nil || v != "" {
		t.Fatalf("GetConfig(unset) = %q, %v", v, err)
	}
	if err := repo.SetConfig(ctx, "auth_token", "one"); err != nil {
		t.Fatalf("SetConfig() error = %v", err)
	}
	if err := repo.SetConfig(ctx, "auth_token", "two"); err != nil {
		t.Fatalf("SetConfig() overwrite error = %v", err)
	}
	v, _ = repo.GetConfig(ctx, "auth_token")
	if v != "two" {
		t.Errorf("GetConfig() = %q, want two", v)
	}
}
