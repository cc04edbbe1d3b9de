package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"toolboard/models"
	"toolboard/realtime"
	"toolboard/utils"
)

func newTestUserService(t *testing.T) (*UserService, *gorm.DB) {
	db := setupTestDB(t)
	return NewUserService(db, realtime.NewMemoryBus()), db
}

func TestUserCreateDefaultsAndValidation(t *testing.T) {
	s, _ := newTestUserService(t)
	ctx := context.Background()

	user, err := s.Create(ctx, UserInput{Name: "Ada", Email: "Ada@Example.COM"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.Role != models.RoleViewer {
		t.Fatalf("default role: %q", user.Role)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.PasswordHash != "" {
		t.Fatal("unexpected password hash")
	}

	if _, err := s.Create(ctx, UserInput{Name: "Bob", Email: "ada@example.com"}); !IsValidation(err) {
		t.Fatalf("expected validation error for duplicate email, got %v", err)
	}
	if _, err := s.Create(ctx, UserInput{Name: "Bob", Email: "bob@example.com", Role: "Owner"}); !IsValidation(err) {
		t.Fatalf("expected validation error for unknown role, got %v", err)
	}
	if _, err := s.Create(ctx, UserInput{Email: "no-name@example.com"}); !IsValidation(err) {
		t.Fatalf("expected validation error for missing name, got %v", err)
	}
}

func TestUserPasswordRoundTrip(t *testing.T) {
	s, _ := newTestUserService(t)
	ctx := context.Background()

	user, err := s.Create(ctx, UserInput{
		Name: "Ada", Email: "ada@example.com", Role: models.RoleAdministrator, Password: "s3cret!",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !utils.CheckPassword(user.PasswordHash, "s3cret!") {
		t.Fatal("stored hash does not verify")
	}
	if utils.CheckPassword(user.PasswordHash, "wrong") {
		t.Fatal("wrong password verified")
	}
}

func TestUserUpdateAndDelete(t *testing.T) {
	s, _ := newTestUserService(t)
	ctx := context.Background()

	user, err := s.Create(ctx, UserInput{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	role := models.RoleUser
	updated, err := s.Update(ctx, user.ID, UserUpdate{Role: &role})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Role != models.RoleUser {
		t.Fatalf("role not updated: %q", updated.Role)
	}
	if updated.Name != "Ada" {
		t.Fatal("untouched field changed")
	}

	bad := "Owner"
	if _, err := s.Update(ctx, user.ID, UserUpdate{Role: &bad}); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if err := s.Delete(ctx, user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, user.ID); !IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestUserTouchLastActive(t *testing.T) {
	s, _ := newTestUserService(t)
	ctx := context.Background()

	user, err := s.Create(ctx, UserInput{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.LastActive != nil {
		t.Fatal("last_active set before any activity")
	}

	touched, err := s.TouchLastActive(ctx, user.ID)
	if err != nil {
		t.Fatalf("touch: %v", err)
	}
	if touched.LastActive == nil {
		t.Fatal("last_active not stamped")
	}

	if _, err := s.TouchLastActive(ctx, "00000000-0000-0000-0000-000000000000"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	s, db := newTestUserService(t)
	ctx := context.Background()

	// Blank credentials disable seeding.
	if err := s.EnsureAdmin(ctx, "", ""); err != nil {
		t.Fatalf("ensure admin (disabled): %v", err)
	}
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Fatal("seeded without credentials")
	}

	if err := s.EnsureAdmin(ctx, "admin@example.com", "changeme"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	admin, err := s.GetByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}
	if admin.Role != models.RoleAdministrator {
		t.Fatalf("seeded role: %q", admin.Role)
	}

	// A non-empty table suppresses further seeding.
	if err := s.EnsureAdmin(ctx, "other@example.com", "changeme"); err != nil {
		t.Fatalf("ensure admin (repeat): %v", err)
	}
	if _, err := s.GetByEmail(ctx, "other@example.com"); !IsNotFound(err) {
		t.Fatalf("second admin seeded: %v", err)
	}
}
