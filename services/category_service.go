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

// CategoryService manages link categories. Links reference categories by
// name, so deletion is guarded by a value lookup against current links.
type CategoryService struct {
	db  *gorm.DB
	bus realtime.Bus
}

func NewCategoryService(db *gorm.DB, bus realtime.Bus) *CategoryService {
	return &CategoryService{db: db, bus: bus}
}

// List returns all categories, name ascending.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, backendErr("list categories", err)
	}
	return cats, nil
}

// Get returns exactly one category by id.
func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	var cat models.Category
	err := s.db.WithContext(ctx).First(&cat, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "category", ID: id}
	}
	if err != nil {
		return nil, backendErr("get category", err)
	}
	return &cat, nil
}

// Create inserts a new category and returns the persisted row.
func (s *CategoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	name = utils.Sanitize(strings.TrimSpace(name))
	if name == "" {
		return nil, &ValidationError{Msg: "name is required"}
	}

	cat := models.Category{Name: name}
	err := s.db.WithContext(ctx).Create(&cat).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, &ValidationError{Msg: "category name already exists"}
	}
	if err != nil {
		return nil, backendErr("create category", err)
	}

	publishEvent(ctx, s.bus, realtime.Inserted(realtime.TableCategories, cat))
	return &cat, nil
}

// Update renames a category. Existing links keep the old name; renames do
// not cascade.
func (s *CategoryService) Update(ctx context.Context, id, name string) (*models.Category, error) {
	before, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	name = utils.Sanitize(strings.TrimSpace(name))
	if name == "" {
		return nil, &ValidationError{Msg: "name cannot be empty"}
	}

	err = s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "updated_at": time.Now()}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, &ValidationError{Msg: "category name already exists"}
	}
	if err != nil {
		return nil, backendErr("update category", err)
	}

	after, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.bus, realtime.Updated(realtime.TableCategories, before, after))
	return after, nil
}

// Delete removes a category, refusing with a ConflictError while any link
// still references its name. The guard runs before any backend delete call.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	cat, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	var inUse int64
	if err := s.db.WithContext(ctx).Model(&models.AutomationLink{}).
		Where("category = ?", cat.Name).Count(&inUse).Error; err != nil {
		return backendErr("category in-use check", err)
	}
	if inUse > 0 {
		return &ConflictError{Msg: "cannot delete category that is in use by automation links"}
	}

	res := s.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if res.Error != nil {
		return backendErr("delete category", res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "category", ID: id}
	}

	publishEvent(ctx, s.bus, realtime.Deleted(realtime.TableCategories, cat))
	return nil
}
