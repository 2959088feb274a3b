package services

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/formaplus/elearning-backend/internal/platform/apierr"
	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/platform/storage"
	"github.com/formaplus/elearning-backend/internal/repos"
	"github.com/formaplus/elearning-backend/internal/types"
)

func newCatalogService(t *testing.T) (CatalogService, *gorm.DB) {
	t.Helper()
	gdb := openTestDB(t)
	store, err := storage.NewLocalStore(logger.NewNop(), t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("local store: %v", err)
	}
	svc := NewCatalogService(
		gdb,
		logger.NewNop(),
		repos.NewFormationRepo(gdb, logger.NewNop()),
		NewMediaService(logger.NewNop(), &fakeProber{secs: 300}),
		store,
		newEventService(gdb),
		nil,
		[]string{"Développement Web", "Marketing Digital"},
	)
	return svc, gdb
}

func validInput() FormationInput {
	return FormationInput{
		Title:       "Python pour débutants",
		Description: "Apprendre Python",
		Domain:      "Développement Web",
		Type:        "video",
		Link:        "https://www.youtube.com/watch?v=py101",
	}
}

func TestCreateRequiresAdmin(t *testing.T) {
	svc, gdb := newCatalogService(t)
	_, err := svc.Create(context.Background(), types.RoleLearner, uuid.New(), validInput())
	if !apierr.IsStatus(err, http.StatusForbidden) {
		t.Fatalf("err = %v, want 403", err)
	}

	// The gate fires before validation and before any write.
	var count int64
	if err := gdb.Model(&types.Formation{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("catalog has %d rows after refused create, want 0", count)
	}
}

func TestCreateRejectsDuplicateTitle(t *testing.T) {
	svc, gdb := newCatalogService(t)
	ctx := context.Background()
	adminID := uuid.New()

	if _, err := svc.Create(ctx, types.RoleAdmin, adminID, validInput()); err != nil {
		t.Fatalf("first create: %v", err)
	}

	in := validInput()
	in.Description = "une autre description"
	_, err := svc.Create(ctx, types.RoleAdmin, adminID, in)
	if !apierr.IsStatus(err, http.StatusUnprocessableEntity) {
		t.Fatalf("err = %v, want 422", err)
	}
	if code := apierr.CodeOf(err); code != "duplicate_title" {
		t.Fatalf("code = %q, want duplicate_title", code)
	}

	var count int64
	if err := gdb.Model(&types.Formation{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("catalog has %d rows, duplicate must not be written", count)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()
	adminID := uuid.New()

	cases := []struct {
		name     string
		mutate   func(*FormationInput)
		wantCode string
	}{
		{"missing title", func(in *FormationInput) { in.Title = "" }, "missing_fields"},
		{"missing link", func(in *FormationInput) { in.Link = "" }, "missing_fields"},
		{"bad type", func(in *FormationInput) { in.Type = "podcast" }, "invalid_type"},
		{"unlisted domain", func(in *FormationInput) { in.Domain = "Astrologie" }, "unknown_domain"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := svc.Create(ctx, types.RoleAdmin, adminID, in)
			if !apierr.IsStatus(err, http.StatusUnprocessableEntity) {
				t.Fatalf("err = %v, want 422", err)
			}
			if code := apierr.CodeOf(err); code != tc.wantCode {
				t.Fatalf("code = %q, want %q", code, tc.wantCode)
			}
		})
	}
}

func TestCreatePersonalTagsOwner(t *testing.T) {
	svc, _ := newCatalogService(t)
	learnerID := uuid.New()

	f, err := svc.CreatePersonal(context.Background(), types.RoleLearner, learnerID, validInput())
	if err != nil {
		t.Fatalf("create personal: %v", err)
	}
	if f.OwnerID == nil || *f.OwnerID != learnerID {
		t.Fatalf("OwnerID = %v, want %s", f.OwnerID, learnerID)
	}

	// Admins use the admin path, not this one.
	_, err = svc.CreatePersonal(context.Background(), types.RoleAdmin, uuid.New(), validInput())
	if !apierr.IsStatus(err, http.StatusForbidden) {
		t.Fatalf("err = %v, want 403", err)
	}
}

func TestCreateWithUploadDerivesMetadata(t *testing.T) {
	svc, _ := newCatalogService(t)

	path := filepath.Join(t.TempDir(), "cours video.mp4")
	if err := os.WriteFile(path, []byte("not a real video"), 0o644); err != nil {
		t.Fatalf("write upload: %v", err)
	}
	in := validInput()
	in.Link = ""
	in.UploadPath = path
	in.UploadName = "cours video.mp4"

	f, err := svc.Create(context.Background(), types.RoleAdmin, uuid.New(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if f.DurationMinutes == nil || *f.DurationMinutes != 5 {
		t.Fatalf("DurationMinutes = %v, want 5 from the probe", f.DurationMinutes)
	}
	if f.BucketKey != "cours_video.mp4" {
		t.Fatalf("BucketKey = %q, want sanitized name", f.BucketKey)
	}
	if f.Link != "/uploads/cours_video.mp4" {
		t.Fatalf("Link = %q, want public URL of the stored object", f.Link)
	}
}

func TestUpdateKeepsBlankFields(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()
	adminID := uuid.New()

	created, err := svc.Create(ctx, types.RoleAdmin, adminID, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, types.RoleAdmin, adminID, created.ID, FormationInput{
		Description: "nouvelle description",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != "nouvelle description" {
		t.Fatalf("Description = %q, not updated", updated.Description)
	}
	if updated.Title != created.Title || updated.Domain != created.Domain {
		t.Fatal("blank form fields must keep their previous values")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _ := newCatalogService(t)
	_, err := svc.GetByID(context.Background(), uuid.New())
	if !apierr.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("err = %v, want 404", err)
	}
}

func TestDeleteRemovesRowAndStoredObject(t *testing.T) {
	svc, gdb := newCatalogService(t)
	ctx := context.Background()
	adminID := uuid.New()

	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("pdf"), 0o644); err != nil {
		t.Fatalf("write upload: %v", err)
	}
	in := validInput()
	in.Type = "pdf"
	in.Link = ""
	in.UploadPath = path
	in.UploadName = "doc.pdf"

	created, err := svc.Create(ctx, types.RoleAdmin, adminID, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, types.RoleAdmin, adminID, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, created.ID); !apierr.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("row still resolves after delete: %v", err)
	}

	var count int64
	if err := gdb.Unscoped().Model(&types.Formation{}).Where("id = ?", created.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("soft-deleted row count = %d, want 1", count)
	}
}

func TestListByDomain(t *testing.T) {
	svc, gdb := newCatalogService(t)
	web := seedFormation(t, gdb, "Go", "services", "Développement Web", types.MediaVideo, "https://example.com/go")
	seedFormation(t, gdb, "SEO", "référencement", "Marketing Digital", types.MediaVideo, "https://example.com/seo")

	rows, err := svc.ListByDomain(context.Background(), "Développement Web")
	if err != nil {
		t.Fatalf("list by domain: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != web.ID {
		t.Fatalf("got %d rows, want only the web entry", len(rows))
	}

	domains, err := svc.DistinctDomains(context.Background())
	if err != nil {
		t.Fatalf("distinct domains: %v", err)
	}
	if len(domains) != 2 {
		t.Fatalf("domains = %v, want 2 distinct values", domains)
	}
}

func TestEnrichDurations(t *testing.T) {
	svc, _ := newCatalogService(t)
	mins := 7
	rows := []*types.Formation{
		{ID: uuid.New(), Type: types.MediaVideo, DurationMinutes: &mins},
		{ID: uuid.New(), Type: types.MediaVideo, Link: "https://example.com/notyt"},
		{ID: uuid.New(), Type: types.MediaDocument},
	}
	svc.EnrichDurations(context.Background(), rows)

	if rows[0].DurationDisplay != "7m 0s" {
		t.Fatalf("derived duration display = %q, want %q", rows[0].DurationDisplay, "7m 0s")
	}
	if rows[1].DurationDisplay != DurationUnknown {
		t.Fatalf("unprobed video display = %q, want %q", rows[1].DurationDisplay, DurationUnknown)
	}
	if rows[2].DurationDisplay != "" {
		t.Fatalf("document got a duration display: %q", rows[2].DurationDisplay)
	}
}

func TestDownload(t *testing.T) {
	svc, gdb := newCatalogService(t)
	ctx := context.Background()

	// External link: no reader, the handler redirects.
	external := seedFormation(t, gdb, "Lien externe", "desc", "Développement Web", types.MediaVideo, "https://example.com/ext")
	f, rc, err := svc.Download(ctx, external.ID)
	if err != nil {
		t.Fatalf("download external: %v", err)
	}
	if rc != nil {
		rc.Close()
		t.Fatal("external link must not open a reader")
	}
	if f.Link != external.Link {
		t.Fatalf("Link = %q, want %q", f.Link, external.Link)
	}

	// Stored object: reader streams the bytes back.
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("contenu"), 0o644); err != nil {
		t.Fatalf("write upload: %v", err)
	}
	in := validInput()
	in.Title = "Document stocké"
	in.Type = "pdf"
	in.Link = ""
	in.UploadPath = path
	in.UploadName = "doc.pdf"
	created, err := svc.Create(ctx, types.RoleAdmin, uuid.New(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, rc, err = svc.Download(ctx, created.ID)
	if err != nil {
		t.Fatalf("download stored: %v", err)
	}
	if rc == nil {
		t.Fatal("stored object must open a reader")
	}
	rc.Close()
}
