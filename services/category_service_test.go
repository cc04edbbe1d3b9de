package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"toolboard/models"
	"toolboard/realtime"
)

func newTestCategoryService(t *testing.T) (*CategoryService, *gorm.DB) {
	db := setupTestDB(t)
	return NewCategoryService(db, realtime.NewMemoryBus()), db
}

func TestCategoryCreateAndList(t *testing.T) {
	s, _ := newTestCategoryService(t)
	ctx := context.Background()

	for _, name := range []string{"Productivity", "Automation", "Monitoring"} {
		if _, err := s.Create(ctx, name); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	cats, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cats) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(cats))
	}
	// name ascending
	if cats[0].Name != "Automation" || cats[1].Name != "Monitoring" || cats[2].Name != "Productivity" {
		t.Fatalf("wrong order: %s, %s, %s", cats[0].Name, cats[1].Name, cats[2].Name)
	}
}

func TestCategoryCreateDuplicateName(t *testing.T) {
	s, _ := newTestCategoryService(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, "Automation"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create(ctx, "Automation"); !IsValidation(err) {
		t.Fatalf("expected validation error for duplicate, got %v", err)
	}
	if _, err := s.Create(ctx, "  "); !IsValidation(err) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
}

func TestCategoryRenameDoesNotCascade(t *testing.T) {
	s, db := newTestCategoryService(t)
	links := NewLinkService(db, realtime.NewMemoryBus())
	ctx := context.Background()

	cat, err := s.Create(ctx, "Automation")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	link := mustCreateLink(t, links, "zapier", "Automation")

	renamed, err := s.Update(ctx, cat.ID, "Workflow")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Name != "Workflow" {
		t.Fatalf("rename not applied: %q", renamed.Name)
	}

	got, err := links.Get(ctx, link.ID)
	if err != nil {
		t.Fatalf("get link: %v", err)
	}
	if got.Category != "Automation" {
		t.Fatalf("link category changed on rename: %q", got.Category)
	}
}

func TestCategoryDeleteInUse(t *testing.T) {
	s, db := newTestCategoryService(t)
	links := NewLinkService(db, realtime.NewMemoryBus())
	ctx := context.Background()

	cat, err := s.Create(ctx, "Automation")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	link := mustCreateLink(t, links, "zapier", "Automation")

	if err := s.Delete(ctx, cat.ID); !IsConflict(err) {
		t.Fatalf("expected conflict while in use, got %v", err)
	}

	// The refused delete must not have touched the row.
	var count int64
	if err := db.Model(&models.Category{}).Where("id = ?", cat.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatal("category mutated by refused delete")
	}

	if err := links.Delete(ctx, link.ID); err != nil {
		t.Fatalf("delete link: %v", err)
	}
	if err := s.Delete(ctx, cat.ID); err != nil {
		t.Fatalf("delete after last link removed: %v", err)
	}
	if err := s.Delete(ctx, cat.ID); !IsNotFound(err) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
}
