package services

import (
	"context"
	"testing"
	"time"

	"toolboard/models"
)

func TestLinkCreateValidation(t *testing.T) {
	s, _ := newTestLinkService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   LinkInput
	}{
		{"missing title", LinkInput{URL: "https://example.com", Category: "Tools"}},
		{"missing url", LinkInput{Title: "Example", Category: "Tools"}},
		{"missing category", LinkInput{Title: "Example", URL: "https://example.com"}},
		{"whitespace title", LinkInput{Title: "   ", URL: "https://example.com", Category: "Tools"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Create(ctx, tc.in); !IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestLinkCreateSanitizesMarkup(t *testing.T) {
	s, _ := newTestLinkService(t)

	link, err := s.Create(context.Background(), LinkInput{
		Title:       "<script>alert(1)</script>Zapier",
		Description: "<b>workflow</b> automation",
		URL:         "https://zapier.com",
		Category:    "Automation",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if link.Title != "Zapier" {
		t.Fatalf("title not sanitized: %q", link.Title)
	}
	if link.Description != "workflow automation" {
		t.Fatalf("description not sanitized: %q", link.Description)
	}
}

func TestLinkGetNotFound(t *testing.T) {
	s, _ := newTestLinkService(t)

	_, err := s.Get(context.Background(), "00000000-0000-0000-0000-000000000000")
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLinkListNewestFirst(t *testing.T) {
	s, db := newTestLinkService(t)
	base := time.Now().Add(-time.Hour)

	for i, title := range []string{"oldest", "middle", "newest"} {
		link := models.AutomationLink{
			Title:     title,
			URL:       "https://example.com/" + title,
			Category:  "Tools",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&link).Error; err != nil {
			t.Fatalf("seed %s: %v", title, err)
		}
	}

	links, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(links) != 3 {
		t.Fatalf("expected 3 links, got %d", len(links))
	}
	if links[0].Title != "newest" || links[2].Title != "oldest" {
		t.Fatalf("wrong order: %s .. %s", links[0].Title, links[2].Title)
	}
}

func TestLinkUpdatePartial(t *testing.T) {
	s, _ := newTestLinkService(t)
	link := mustCreateLink(t, s, "n8n", "Automation")

	title := "n8n.io"
	updated, err := s.Update(context.Background(), link.ID, LinkUpdate{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "n8n.io" {
		t.Fatalf("title not updated: %q", updated.Title)
	}
	if updated.URL != link.URL || updated.Category != link.Category {
		t.Fatal("untouched fields changed")
	}
	if !updated.UpdatedAt.After(link.UpdatedAt) && !updated.UpdatedAt.Equal(link.UpdatedAt) {
		t.Fatal("updated_at went backwards")
	}

	empty := ""
	if _, err := s.Update(context.Background(), link.ID, LinkUpdate{URL: &empty}); !IsValidation(err) {
		t.Fatalf("expected validation error for empty url, got %v", err)
	}
}

func TestLinkRecordClickSameSession(t *testing.T) {
	s, _ := newTestLinkService(t)
	link := mustCreateLink(t, s, "make", "Automation")
	ctx := context.Background()

	first, err := s.RecordClick(ctx, link.ID, "session_a", "test-agent")
	if err != nil {
		t.Fatalf("first click: %v", err)
	}
	if first.Clicks != 1 || first.UniqueVisitors != 1 {
		t.Fatalf("after first click: clicks=%d visitors=%d", first.Clicks, first.UniqueVisitors)
	}
	if first.LastClicked == nil {
		t.Fatal("last_clicked not stamped")
	}

	second, err := s.RecordClick(ctx, link.ID, "session_a", "test-agent")
	if err != nil {
		t.Fatalf("second click: %v", err)
	}
	if second.Clicks != 2 || second.UniqueVisitors != 1 {
		t.Fatalf("repeat session double-counted: clicks=%d visitors=%d", second.Clicks, second.UniqueVisitors)
	}
}

func TestLinkRecordClickDistinctSessions(t *testing.T) {
	s, _ := newTestLinkService(t)
	link := mustCreateLink(t, s, "zapier", "Automation")
	ctx := context.Background()

	if _, err := s.RecordClick(ctx, link.ID, "session_a", ""); err != nil {
		t.Fatalf("click a: %v", err)
	}
	after, err := s.RecordClick(ctx, link.ID, "session_b", "")
	if err != nil {
		t.Fatalf("click b: %v", err)
	}
	if after.Clicks != 2 || after.UniqueVisitors != 2 {
		t.Fatalf("distinct sessions: clicks=%d visitors=%d", after.Clicks, after.UniqueVisitors)
	}
	if after.UniqueVisitors > after.Clicks {
		t.Fatal("unique visitors exceeds clicks")
	}
}

func TestLinkRecordClickWithoutSession(t *testing.T) {
	s, _ := newTestLinkService(t)
	link := mustCreateLink(t, s, "ifttt", "Automation")

	after, err := s.RecordClick(context.Background(), link.ID, "", "")
	if err != nil {
		t.Fatalf("click: %v", err)
	}
	if after.Clicks != 1 || after.UniqueVisitors != 0 {
		t.Fatalf("anonymous click: clicks=%d visitors=%d", after.Clicks, after.UniqueVisitors)
	}
}

func TestLinkRecordClickMissingLink(t *testing.T) {
	s, _ := newTestLinkService(t)

	_, err := s.RecordClick(context.Background(), "00000000-0000-0000-0000-000000000000", "session_a", "")
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLinkDeleteCascadesAnalytics(t *testing.T) {
	s, db := newTestLinkService(t)
	link := mustCreateLink(t, s, "workato", "Automation")
	ctx := context.Background()

	if _, err := s.RecordClick(ctx, link.ID, "session_a", ""); err != nil {
		t.Fatalf("click: %v", err)
	}
	if _, err := s.RecordClick(ctx, link.ID, "session_b", ""); err != nil {
		t.Fatalf("click: %v", err)
	}

	if err := s.Delete(ctx, link.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var remaining int64
	if err := db.Model(&models.ClickAnalytic{}).Where("link_id = ?", link.ID).
		Count(&remaining).Error; err != nil {
		t.Fatalf("count analytics: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("%d analytics rows survived the delete", remaining)
	}

	if err := s.Delete(ctx, link.ID); !IsNotFound(err) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
}
