// Package ownership はリソースの作成者のみが操作できるという規則を判定する。
// ロールによる制御では表現できない、リソース単位の認可を扱う。
package ownership

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hitoshi/jobboard/internal/model"
)

// AnnouncementFinder は求人の取得に必要なインターフェース。
// repository.AnnouncementRepositoryの部分集合として定義する。
type AnnouncementFinder interface {
	FindByID(ctx context.Context, id string) (*model.Announcement, error)
}

// Checker は所有者判定を行う。
type Checker struct {
	announcements AnnouncementFinder
}

// NewChecker はCheckerを生成する。
func NewChecker(announcements AnnouncementFinder) *Checker {
	return &Checker{announcements: announcements}
}

// NormalizeID はID比較用の正規形を返す。
// UUIDとして解釈できる場合は正準形（小文字・ハイフン区切り）、
// それ以外は前後空白を除去して小文字化した文字列を返す。
func NormalizeID(id string) string {
	trimmed := strings.TrimSpace(id)
	if u, err := uuid.Parse(trimmed); err == nil {
		return u.String()
	}
	return strings.ToLower(trimmed)
}

// SameID は2つのIDが正規化後に一致するかを返す。空のIDはどれとも一致しない。
func SameID(a, b string) bool {
	na, nb := NormalizeID(a), NormalizeID(b)
	return na != "" && na == nb
}

// ParseResourceID はパスパラメータ等から受け取ったリソースIDを正準形のUUIDに変換する。
// UUIDとして解釈できない場合はokがfalseとなる。
func ParseResourceID(id string) (string, bool) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// IsOwner はprincipalが求人の作成者かを返す。
func IsOwner(announcement *model.Announcement, principal *model.User) bool {
	if announcement == nil || principal == nil {
		return false
	}
	return SameID(announcement.CreatedBy, principal.ID)
}

// FindAnnouncement は求人を取得する。
// 存在しない、またはIDの形式が不正な場合はANNOUNCEMENT_NOT_FOUNDを返す。
func (c *Checker) FindAnnouncement(ctx context.Context, announcementID string) (*model.Announcement, error) {
	id, ok := ParseResourceID(announcementID)
	if !ok {
		return nil, model.NewAnnouncementNotFoundError(announcementID)
	}

	announcement, err := c.announcements.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find announcement: %w", err)
	}
	if announcement == nil {
		return nil, model.NewAnnouncementNotFoundError(announcementID)
	}
	return announcement, nil
}

// AnnouncementOwnedBy は求人を取得し、principalが作成者であることを確認する。
// 存在しない場合は404、作成者でない場合は403のAPIErrorを返す。
func (c *Checker) AnnouncementOwnedBy(ctx context.Context, announcementID string, principal *model.User) (*model.Announcement, error) {
	announcement, err := c.FindAnnouncement(ctx, announcementID)
	if err != nil {
		return nil, err
	}
	if !IsOwner(announcement, principal) {
		return nil, model.NewNotResourceOwnerError()
	}
	return announcement, nil
}
