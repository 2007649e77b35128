package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestServiceMergesRepoAndInitialIDs(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.Upsert(User{ID: 1, Username: "siti", FirstName: "Siti"}); err != nil {
		t.Fatalf("seed repo: %v", err)
	}

	svc, err := NewWithRepo(repo, []int64{1, 2})
	if err != nil {
		t.Fatalf("NewWithRepo: %v", err)
	}

	if !svc.IsAllowed(1) || !svc.IsAllowed(2) {
		t.Fatal("merged IDs not allowed")
	}
	if svc.IsAllowed(3) {
		t.Fatal("unknown ID allowed")
	}

	list := svc.List()
	if len(list) != 2 || list[0].ID != 1 || list[1].ID != 2 {
		t.Fatalf("list = %+v", list)
	}
	// Repo profile data wins over the bare env ID.
	if list[0].Username != "siti" {
		t.Fatalf("profile lost in merge: %+v", list[0])
	}
}

func TestServiceUpsertAndRemovePersist(t *testing.T) {
	repo := newTestRepo(t)
	svc, err := NewWithRepo(repo, nil)
	if err != nil {
		t.Fatalf("NewWithRepo: %v", err)
	}

	if err := svc.Upsert(User{ID: 5, Username: "andi"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := svc.Remove(5); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if svc.IsAllowed(5) {
		t.Fatal("removed user still allowed")
	}

	persisted, err := repo.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(persisted) != 0 {
		t.Fatalf("repo not updated: %+v", persisted)
	}
}

func TestFileRepositoryRoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	users := []User{
		{ID: 1, Username: "siti", FirstName: "Siti", LastName: "Aminah"},
		{ID: 2, Username: "andi"},
	}
	for _, u := range users {
		if err := repo.Upsert(u); err != nil {
			t.Fatalf("Upsert(%d): %v", u.ID, err)
		}
	}

	// Upsert with an existing ID replaces, not duplicates.
	if err := repo.Upsert(User{ID: 2, Username: "andi2"}); err != nil {
		t.Fatalf("Upsert replace: %v", err)
	}

	got, err := repo.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d users", len(got))
	}
	if got[1].Username != "andi2" {
		t.Fatalf("replace lost: %+v", got[1])
	}

	if err := repo.Remove(1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	got, _ = repo.LoadAll()
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("after remove: %+v", got)
	}
}

func TestFileRepositoryToleratesMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowlist.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	repo, err := NewFileRepository(path)
	if err != nil {
		t.Fatalf("NewFileRepository: %v", err)
	}
	users, err := repo.LoadAll()
	if err != nil || len(users) != 0 {
		t.Fatalf("got (%+v, %v), want fresh start", users, err)
	}
}

func newTestRepo(t *testing.T) *FileRepository {
	t.Helper()
	repo, err := NewFileRepository(filepath.Join(t.TempDir(), "users.json"))
	if err != nil {
		t.Fatalf("NewFileRepository: %v", err)
	}
	return repo
}
