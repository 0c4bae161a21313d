package cli

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"quiz-event/internal/config"
	"quiz-event/internal/models"
	"quiz-event/internal/repository"
	"quiz-event/internal/repository/memory"
)

func memoryOpener(store *memory.Store) storeOpener {
	return func(ctx context.Context, cfg config.Config) (repository.Store, func(), error) {
		return store, func() {}, nil
	}
}

func runCreateAdmin(t *testing.T, store *memory.Store, args ...string) error {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "missing.yaml")
	cmd := newCreateAdminCmd(&configPath, memoryOpener(store))
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.ExecuteContext(context.Background())
}

func TestCreateAdminCommand(t *testing.T) {
	store := memory.NewStore()

	if err := runCreateAdmin(t, store, "--username", "minerva", "--password", "transfig"); err != nil {
		t.Fatalf("create-admin: %v", err)
	}

	user, err := store.Users().FindByUsername(context.Background(), "minerva")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if user.Role != models.RoleAdmin {
		t.Fatalf("expected admin role, got %s", user.Role)
	}
	if user.Password == "transfig" {
		t.Fatalf("password stored in clear text")
	}

	if err := runCreateAdmin(t, store, "--username", "minerva", "--password", "another1"); err == nil {
		t.Fatalf("expected duplicate username to fail")
	}
}

func TestCreateAdminCommandRequiresFlags(t *testing.T) {
	store := memory.NewStore()

	if err := runCreateAdmin(t, store, "--username", "albus"); err == nil {
		t.Fatalf("expected missing password to fail")
	}
	if err := runCreateAdmin(t, store, "--username", "al", "--password", "secret123"); err == nil {
		t.Fatalf("expected short username to fail")
	}
	if _, err := store.Users().FindByUsername(context.Background(), "albus"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected no user to be created, got %v", err)
	}
}
