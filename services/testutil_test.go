package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"toolboard/models"
	"toolboard/realtime"
)

// setupTestDB opens a fresh shared in-memory SQLite database per test and
// migrates the full schema. TranslateError maps SQLite unique violations
// onto gorm.ErrDuplicatedKey the same way the Postgres driver does.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.AutomationLink{},
		&models.Category{},
		&models.User{},
		&models.ClickAnalytic{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func newTestLinkService(t *testing.T) (*LinkService, *gorm.DB) {
	db := setupTestDB(t)
	return NewLinkService(db, realtime.NewMemoryBus()), db
}

func mustCreateLink(t *testing.T, s *LinkService, title, category string) *models.AutomationLink {
	t.Helper()
	link, err := s.Create(context.Background(), LinkInput{
		Title:    title,
		URL:      "https://example.com/" + title,
		Category: category,
	})
	if err != nil {
		t.Fatalf("create link %q: %v", title, err)
	}
	return link
}
