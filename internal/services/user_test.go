package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/formaplus/elearning-backend/internal/platform/apierr"
	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/repos"
	"github.com/formaplus/elearning-backend/internal/types"
)

func newUserService(t *testing.T) UserService {
	t.Helper()
	gdb := openTestDB(t)
	return NewUserService(gdb, logger.NewNop(), repos.NewUserRepo(gdb, logger.NewNop()), newEventService(gdb))
}

func TestUserCreateRequiresAdmin(t *testing.T) {
	us := newUserService(t)
	_, err := us.Create(context.Background(), types.RoleLearner, uuid.New(), UserInput{
		Name: "Bob", Email: "bob@example.com", Password: "pw",
	})
	if !apierr.IsStatus(err, http.StatusForbidden) {
		t.Fatalf("err = %v, want 403", err)
	}
}

func TestUserCreateAndList(t *testing.T) {
	us := newUserService(t)
	ctx := context.Background()
	adminID := uuid.New()

	created, err := us.Create(ctx, types.RoleAdmin, adminID, UserInput{
		Name: "Bob", Email: "Bob@Example.com", Password: "pw", Role: "admin",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Email != "bob@example.com" {
		t.Fatalf("email = %q, want normalized", created.Email)
	}
	if created.Role != types.RoleAdmin {
		t.Fatalf("role = %q, want admin", created.Role)
	}

	users, err := us.List(ctx, types.RoleAdmin)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("roster has %d users, want 1", len(users))
	}

	if _, err := us.List(ctx, types.RoleLearner); !apierr.IsStatus(err, http.StatusForbidden) {
		t.Fatalf("learner list err = %v, want 403", err)
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	us := newUserService(t)
	ctx := context.Background()
	adminID := uuid.New()

	in := UserInput{Name: "Bob", Email: "bob@example.com", Password: "pw"}
	if _, err := us.Create(ctx, types.RoleAdmin, adminID, in); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := us.Create(ctx, types.RoleAdmin, adminID, in)
	if code := apierr.CodeOf(err); code != "duplicate_email" {
		t.Fatalf("code = %q, want duplicate_email", code)
	}
}

func TestUserCreateInvalidRole(t *testing.T) {
	us := newUserService(t)
	_, err := us.Create(context.Background(), types.RoleAdmin, uuid.New(), UserInput{
		Name: "Bob", Email: "bob@example.com", Password: "pw", Role: "superuser",
	})
	if code := apierr.CodeOf(err); code != "invalid_role" {
		t.Fatalf("code = %q, want invalid_role", code)
	}
}

func TestUserUpdateChangesRole(t *testing.T) {
	us := newUserService(t)
	ctx := context.Background()
	adminID := uuid.New()

	created, err := us.Create(ctx, types.RoleAdmin, adminID, UserInput{
		Name: "Bob", Email: "bob@example.com", Password: "pw",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	updated, err := us.Update(ctx, types.RoleAdmin, adminID, created.ID, UserInput{Role: "admin"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Role != types.RoleAdmin {
		t.Fatalf("role = %q, want admin after explicit change", updated.Role)
	}
	if updated.Name != "Bob" || updated.Email != "bob@example.com" {
		t.Fatal("blank fields must keep their previous values")
	}
}

func TestUserDelete(t *testing.T) {
	us := newUserService(t)
	ctx := context.Background()
	adminID := uuid.New()

	created, err := us.Create(ctx, types.RoleAdmin, adminID, UserInput{
		Name: "Bob", Email: "bob@example.com", Password: "pw",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := us.Delete(ctx, types.RoleAdmin, adminID, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := us.GetByID(ctx, created.ID); !apierr.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("err = %v, want 404 after delete", err)
	}

	if err := us.Delete(ctx, types.RoleAdmin, adminID, uuid.New()); !apierr.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("deleting unknown user err = %v, want 404", err)
	}
}
