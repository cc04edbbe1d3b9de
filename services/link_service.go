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

// LinkService manages automation link rows and the click counters attached
// to them. Every committed mutation is published on the change bus.
type LinkService struct {
	db  *gorm.DB
	bus realtime.Bus
}

func NewLinkService(db *gorm.DB, bus realtime.Bus) *LinkService {
	return &LinkService{db: db, bus: bus}
}

// LinkInput carries the fields of a new link.
type LinkInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Category    string `json:"category"`
}

// LinkUpdate carries a partial update; nil fields are left untouched.
type LinkUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
	Category    *string `json:"category"`
}

// List returns all links, newest first.
func (s *LinkService) List(ctx context.Context) ([]models.AutomationLink, error) {
	var links []models.AutomationLink
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&links).Error; err != nil {
		return nil, backendErr("list links", err)
	}
	return links, nil
}

// Get returns exactly one link by id.
func (s *LinkService) Get(ctx context.Context, id string) (*models.AutomationLink, error) {
	var link models.AutomationLink
	err := s.db.WithContext(ctx).First(&link, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "link", ID: id}
	}
	if err != nil {
		return nil, backendErr("get link", err)
	}
	return &link, nil
}

// Create inserts a new link with server-stamped timestamps and returns the
// persisted row including the generated id.
func (s *LinkService) Create(ctx context.Context, in LinkInput) (*models.AutomationLink, error) {
	title := utils.Sanitize(strings.TrimSpace(in.Title))
	url := strings.TrimSpace(in.URL)
	category := utils.Sanitize(strings.TrimSpace(in.Category))
	if title == "" {
		return nil, &ValidationError{Msg: "title is required"}
	}
	if url == "" {
		return nil, &ValidationError{Msg: "url is required"}
	}
	if category == "" {
		return nil, &ValidationError{Msg: "category is required"}
	}

	link := models.AutomationLink{
		Title:       title,
		Description: utils.Sanitize(in.Description),
		URL:         url,
		Category:    category,
	}
	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		return nil, backendErr("create link", err)
	}

	publishEvent(ctx, s.bus, realtime.Inserted(realtime.TableLinks, link))
	return &link, nil
}

// Update merges the non-nil fields into the existing row, stamps
// updated_at, and returns the updated row.
func (s *LinkService) Update(ctx context.Context, id string, upd LinkUpdate) (*models.AutomationLink, error) {
	before, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if upd.Title != nil {
		title := utils.Sanitize(strings.TrimSpace(*upd.Title))
		if title == "" {
			return nil, &ValidationError{Msg: "title cannot be empty"}
		}
		updates["title"] = title
	}
	if upd.Description != nil {
		updates["description"] = utils.Sanitize(*upd.Description)
	}
	if upd.URL != nil {
		url := strings.TrimSpace(*upd.URL)
		if url == "" {
			return nil, &ValidationError{Msg: "url cannot be empty"}
		}
		updates["url"] = url
	}
	if upd.Category != nil {
		category := utils.Sanitize(strings.TrimSpace(*upd.Category))
		if category == "" {
			return nil, &ValidationError{Msg: "category cannot be empty"}
		}
		updates["category"] = category
	}

	if err := s.db.WithContext(ctx).Model(&models.AutomationLink{}).
		Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, backendErr("update link", err)
	}

	after, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.bus, realtime.Updated(realtime.TableLinks, before, after))
	return after, nil
}

// Delete removes a link. Its click analytics rows are deleted first,
// best-effort: a failure there is logged and swallowed so it can never
// block the link deletion itself.
func (s *LinkService) Delete(ctx context.Context, id string) error {
	link, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).
		Where("link_id = ?", id).Delete(&models.ClickAnalytic{}).Error; err != nil {
		utils.Sugar.Warnf("cascade delete of click analytics failed link=%s: %v", id, err)
	}

	res := s.db.WithContext(ctx).Delete(&models.AutomationLink{}, "id = ?", id)
	if res.Error != nil {
		return backendErr("delete link", res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "link", ID: id}
	}

	publishEvent(ctx, s.bus, realtime.Deleted(realtime.TableLinks, link))
	return nil
}

// RecordClick increments a link's counters and records an audit row.
//
// The counter write is a single atomic increment rather than the
// read-modify-write of a naive client, so two concurrent clicks can never
// lose an update. The uniqueness probe and the increment still race each
// other across callers; a session double-counted by that window stays a
// repeat visitor for every later click.
func (s *LinkService) RecordClick(ctx context.Context, id, sessionID, userAgent string) (*models.AutomationLink, error) {
	before, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// A session that has never clicked this link counts as a new unique
	// visitor. A failed probe counts as one too rather than dropping the
	// click.
	isUnique := false
	if sessionID != "" {
		var ids []string
		err := s.db.WithContext(ctx).Model(&models.ClickAnalytic{}).
			Where("link_id = ? AND session_id = ?", id, sessionID).
			Limit(1).Pluck("id", &ids).Error
		if err != nil {
			utils.Sugar.Warnf("unique visitor probe failed link=%s: %v", id, err)
			isUnique = true
		} else {
			isUnique = len(ids) == 0
		}
	}

	visitorInc := 0
	if isUnique {
		visitorInc = 1
	}
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.AutomationLink{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"clicks":          gorm.Expr("clicks + 1"),
			"unique_visitors": gorm.Expr("unique_visitors + ?", visitorInc),
			"last_clicked":    now,
			"updated_at":      now,
		})
	if res.Error != nil {
		return nil, backendErr("record click", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &NotFoundError{Entity: "link", ID: id}
	}

	after, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// The audit row is best-effort: the counters are already durable, so a
	// lost analytics row must not fail the click.
	audit := models.ClickAnalytic{LinkID: id, ClickedAt: now}
	if sessionID != "" {
		audit.SessionID = &sessionID
	}
	if userAgent != "" {
		audit.UserAgent = &userAgent
	}
	if err := s.db.WithContext(ctx).Create(&audit).Error; err != nil {
		utils.Sugar.Warnf("click analytics insert failed link=%s: %v", id, err)
	} else {
		publishEvent(ctx, s.bus, realtime.Inserted(realtime.TableClickAnalytics, audit))
	}

	publishEvent(ctx, s.bus, realtime.Updated(realtime.TableLinks, before, after))
	return after, nil
}
