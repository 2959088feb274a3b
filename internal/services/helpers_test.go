package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/formaplus/elearning-backend/internal/db"
	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/repos"
	"github.com/formaplus/elearning-backend/internal/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func seedFormation(t *testing.T, gdb *gorm.DB, title, description, domain string, kind types.MediaKind, link string) *types.Formation {
	t.Helper()
	repo := repos.NewFormationRepo(gdb, logger.NewNop())
	f, err := repo.Create(context.Background(), nil, &types.Formation{
		Title:       title,
		Description: description,
		Domain:      domain,
		Type:        kind,
		Link:        link,
	})
	if err != nil {
		t.Fatalf("seed formation %q: %v", title, err)
	}
	return f
}

func newEventService(gdb *gorm.DB) EventService {
	return NewEventService(gdb, logger.NewNop(), repos.NewUserEventRepo(gdb, logger.NewNop()))
}

func containsID(rows []*types.Formation, id uuid.UUID) bool {
	for _, f := range rows {
		if f.ID == id {
			return true
		}
	}
	return false
}
