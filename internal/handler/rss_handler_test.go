package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/jobboard/internal/model"
	"github.com/hitoshi/jobboard/internal/security"
)

type mockLatestLister struct {
	list     []*model.Announcement
	err      error
	gotLimit int
}

func (m *mockLatestLister) Latest(_ context.Context, limit int) ([]*model.Announcement, error) {
	m.gotLimit = limit
	return m.list, m.err
}

func TestRSSHandler_Feed(t *testing.T) {
	published := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	lister := &mockLatestLister{list: []*model.Announcement{
		{
			ID:          "7f0c3e4a-0000-4000-8000-000000000002",
			Title:       "Backend Engineer",
			Company:     "Acme",
			Description: "<p>Go e <b>PostgreSQL</b></p>",
			Location:    "Milano",
			PublishedAt: published,
			CreatedBy:   testCompany.ID,
			Owner:       &model.UserSummary{ID: testCompany.ID, Name: "Acme"},
		},
		{
			ID:          "7f0c3e4a-0000-4000-8000-000000000001",
			Title:       "Frontend Engineer",
			Company:     "Acme",
			Description: "React",
			PublishedAt: published.Add(-time.Hour),
		},
	}}

	h := NewRSSHandler(lister, testFrontendURL+"/", security.NewContentSanitizer())
	w := httptest.NewRecorder()
	h.Feed(w, httptest.NewRequest(http.MethodGet, "/postAnnunci/feed.xml", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Errorf("Content-Type = %q", ct)
	}
	if lister.gotLimit != rssItemLimit {
		t.Errorf("limit = %d, want %d", lister.gotLimit, rssItemLimit)
	}

	feed, err := gofeed.NewParser().ParseString(w.Body.String())
	if err != nil {
		t.Fatalf("generated feed is not parseable: %v", err)
	}
	if feed.FeedType != "rss" {
		t.Errorf("FeedType = %q, want rss", feed.FeedType)
	}
	if len(feed.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(feed.Items))
	}

	first := feed.Items[0]
	if first.Title != "Backend Engineer - Acme" {
		t.Errorf("title = %q", first.Title)
	}
	if want := testFrontendURL + "/annunci/7f0c3e4a-0000-4000-8000-000000000002"; first.Link != want {
		t.Errorf("link = %q, want %q", first.Link, want)
	}
	if first.Description != "Milano - Go e PostgreSQL" {
		t.Errorf("description = %q", first.Description)
	}
	if first.PublishedParsed == nil || !first.PublishedParsed.Equal(published) {
		t.Errorf("published = %v, want %v", first.PublishedParsed, published)
	}

	// 勤務地がない場合は本文のみ
	if feed.Items[1].Description != "React" {
		t.Errorf("description = %q", feed.Items[1].Description)
	}
}

func TestRSSHandler_EmptyFeed(t *testing.T) {
	h := NewRSSHandler(&mockLatestLister{}, testFrontendURL, security.NewContentSanitizer())
	w := httptest.NewRecorder()
	h.Feed(w, httptest.NewRequest(http.MethodGet, "/postAnnunci/feed.xml", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	feed, err := gofeed.NewParser().ParseString(w.Body.String())
	if err != nil {
		t.Fatal(err)
	}
	if len(feed.Items) != 0 {
		t.Errorf("items = %d, want 0", len(feed.Items))
	}
}

func TestRSSHandler_StoreError(t *testing.T) {
	h := NewRSSHandler(&mockLatestLister{err: errors.New("db down")}, testFrontendURL, nil)
	w := httptest.NewRecorder()
	h.Feed(w, httptest.NewRequest(http.MethodGet, "/postAnnunci/feed.xml", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
