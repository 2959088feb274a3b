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

func newSelectionService(t *testing.T) (SelectionService, *types.Formation) {
	t.Helper()
	gdb := openTestDB(t)
	f := seedFormation(t, gdb, "Python pour débutants", "desc", "Développement Web", types.MediaVideo, "https://example.com/py")
	svc := NewSelectionService(
		gdb,
		logger.NewNop(),
		repos.NewFormationRepo(gdb, logger.NewNop()),
		repos.NewUserFormationRepo(gdb, logger.NewNop()),
		newEventService(gdb),
	)
	return svc, f
}

func TestSelectIsIdempotent(t *testing.T) {
	svc, f := newSelectionService(t)
	ctx := context.Background()
	learnerID := uuid.New()

	created, got, err := svc.Select(ctx, types.RoleLearner, learnerID, f.ID)
	if err != nil {
		t.Fatalf("first select: %v", err)
	}
	if !created {
		t.Fatal("first select should report created=true")
	}
	if got.ID != f.ID {
		t.Fatal("wrong formation returned")
	}

	created, _, err = svc.Select(ctx, types.RoleLearner, learnerID, f.ID)
	if err != nil {
		t.Fatalf("second select: %v", err)
	}
	if created {
		t.Fatal("second select should report created=false")
	}

	selections, err := svc.ListSelections(ctx, learnerID)
	if err != nil {
		t.Fatalf("list selections: %v", err)
	}
	if len(selections) != 1 {
		t.Fatalf("ledger has %d rows, want exactly 1", len(selections))
	}
}

func TestSelectRequiresLearnerRole(t *testing.T) {
	svc, f := newSelectionService(t)
	_, _, err := svc.Select(context.Background(), types.RoleAdmin, uuid.New(), f.ID)
	if !apierr.IsStatus(err, http.StatusForbidden) {
		t.Fatalf("err = %v, want 403", err)
	}
}

func TestSelectUnknownFormation(t *testing.T) {
	svc, _ := newSelectionService(t)
	_, _, err := svc.Select(context.Background(), types.RoleLearner, uuid.New(), uuid.New())
	if !apierr.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("err = %v, want 404", err)
	}
}

func TestListSelectedIDs(t *testing.T) {
	svc, f := newSelectionService(t)
	ctx := context.Background()
	learnerID := uuid.New()

	if _, _, err := svc.Select(ctx, types.RoleLearner, learnerID, f.ID); err != nil {
		t.Fatalf("select: %v", err)
	}
	ids, err := svc.ListSelectedIDs(ctx, learnerID)
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != f.ID {
		t.Fatalf("ids = %v, want [%s]", ids, f.ID)
	}

	// Another learner's ledger stays empty.
	ids, err = svc.ListSelectedIDs(ctx, uuid.New())
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("foreign ledger has %d rows, want 0", len(ids))
	}
}
