package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"toolboard/models"
	"toolboard/realtime"
	"toolboard/utils"
)

// UserService manages admin panel members.
type UserService struct {
	db  *gorm.DB
	bus realtime.Bus
}

func NewUserService(db *gorm.DB, bus realtime.Bus) *UserService {
	return &UserService{db: db, bus: bus}
}

// UserInput carries the fields of a new user. Password is optional; a user
// without one cannot log in but still appears in the directory.
type UserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// UserUpdate carries a partial update; nil fields are left untouched.
type UserUpdate struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

// List returns all users, newest first.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, backendErr("list users", err)
	}
	return users, nil
}

// Get returns exactly one user by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "user", ID: id}
	}
	if err != nil {
		return nil, backendErr("get user", err)
	}
	return &user, nil
}

// GetByEmail returns the user with the given email, for login.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "user", ID: email}
	}
	if err != nil {
		return nil, backendErr("get user by email", err)
	}
	return &user, nil
}

// Create inserts a new user and returns the persisted row.
func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	name := utils.Sanitize(strings.TrimSpace(in.Name))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" {
		return nil, &ValidationError{Msg: "name is required"}
	}
	if email == "" {
		return nil, &ValidationError{Msg: "email is required"}
	}
	role := in.Role
	if role == "" {
		role = models.RoleViewer
	}
	if !models.ValidRole(role) {
		return nil, &ValidationError{Msg: "invalid role"}
	}

	user := models.User{Name: name, Email: email, Role: role}
	if in.Password != "" {
		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			return nil, backendErr("hash password", err)
		}
		user.PasswordHash = hash
	}

	err := s.db.WithContext(ctx).Create(&user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, &ValidationError{Msg: "email already registered"}
	}
	if err != nil {
		return nil, backendErr("create user", err)
	}

	publishEvent(ctx, s.bus, realtime.Inserted(realtime.TableUsers, user))
	return &user, nil
}

// Update merges the non-nil fields into the existing row and returns the
// updated row.
func (s *UserService) Update(ctx context.Context, id string, upd UserUpdate) (*models.User, error) {
	before, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if upd.Name != nil {
		name := utils.Sanitize(strings.TrimSpace(*upd.Name))
		if name == "" {
			return nil, &ValidationError{Msg: "name cannot be empty"}
		}
		updates["name"] = name
	}
	if upd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*upd.Email))
		if email == "" {
			return nil, &ValidationError{Msg: "email cannot be empty"}
		}
		updates["email"] = email
	}
	if upd.Role != nil {
		if !models.ValidRole(*upd.Role) {
			return nil, &ValidationError{Msg: "invalid role"}
		}
		updates["role"] = *upd.Role
	}
	if upd.Password != nil && *upd.Password != "" {
		hash, err := utils.HashPassword(*upd.Password)
		if err != nil {
			return nil, backendErr("hash password", err)
		}
		updates["password_hash"] = hash
	}

	err = s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, &ValidationError{Msg: "email already registered"}
	}
	if err != nil {
		return nil, backendErr("update user", err)
	}

	after, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.bus, realtime.Updated(realtime.TableUsers, before, after))
	return after, nil
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return backendErr("delete user", res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "user", ID: id}
	}

	publishEvent(ctx, s.bus, realtime.Deleted(realtime.TableUsers, user))
	return nil
}

// TouchLastActive stamps the user's last_active to now. Called on login and
// on authenticated activity; feeds the active-user dashboard count.
func (s *UserService) TouchLastActive(ctx context.Context, id string) (*models.User, error) {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"last_active": now, "updated_at": now})
	if res.Error != nil {
		return nil, backendErr("touch last active", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &NotFoundError{Entity: "user", ID: id}
	}

	after, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.bus, realtime.Updated(realtime.TableUsers, nil, after))
	return after, nil
}

// EnsureAdmin seeds the initial administrator account when the users table
// is empty. A blank email or password disables seeding.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return backendErr("count users", err)
	}
	if count > 0 {
		return nil
	}
	_, err := s.Create(ctx, UserInput{
		Name:     "Administrator",
		Email:    email,
		Role:     models.RoleAdministrator,
		Password: password,
	})
	return err
}
