package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/hitoshi/jobboard/internal/middleware"
	"github.com/hitoshi/jobboard/internal/model"
	"github.com/hitoshi/jobboard/internal/security"
)

// rssItemLimit はRSSに含める求人の最大件数。
const rssItemLimit = 50

// LatestAnnouncementsLister はRSS配信用に最新の求人を返す。
type LatestAnnouncementsLister interface {
	Latest(ctx context.Context, limit int) ([]*model.Announcement, error)
}

// RSSHandler は最新求人のRSS 2.0フィードを配信する。
type RSSHandler struct {
	service     LatestAnnouncementsLister
	frontendURL string
	sanitizer   security.ContentSanitizerService
}

// NewRSSHandler はRSSHandlerを生成する。
// 各アイテムのリンクはfrontendURL/annunci/{id}となる。
func NewRSSHandler(service LatestAnnouncementsLister, frontendURL string, sanitizer security.ContentSanitizerService) *RSSHandler {
	return &RSSHandler{
		service:     service,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		sanitizer:   sanitizer,
	}
}

// Feed はRSSを返す。
// GET /postAnnunci/feed.xml
func (h *RSSHandler) Feed(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Latest(r.Context(), rssItemLimit)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	feed := &feeds.Feed{
		Title:       "Bacheca annunci di lavoro",
		Link:        &feeds.Link{Href: h.frontendURL + "/"},
		Description: "Ultimi annunci di lavoro pubblicati",
		Created:     time.Now(),
	}
	if len(list) > 0 {
		feed.Updated = list[0].PublishedAt
	}

	for _, a := range list {
		link := h.frontendURL + "/annunci/" + a.ID
		item := &feeds.Item{
			Id:          link,
			Title:       a.Title + " - " + a.Company,
			Link:        &feeds.Link{Href: link},
			Description: h.summary(a),
			Created:     a.PublishedAt,
		}
		if a.Owner != nil && a.Owner.Name != "" {
			item.Author = &feeds.Author{Name: a.Owner.Name}
		}
		feed.Items = append(feed.Items, item)
	}

	rss, err := feed.ToRss()
	if err != nil {
		slog.Error("failed to render rss feed", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(rss))
}

// summary はアイテムの説明文（勤務地とタグを除去した本文）を生成する。
func (h *RSSHandler) summary(a *model.Announcement) string {
	description := a.Description
	if h.sanitizer != nil {
		description = h.sanitizer.StripTags(description)
	}
	if a.Location == "" {
		return description
	}
	return a.Location + " - " + description
}
