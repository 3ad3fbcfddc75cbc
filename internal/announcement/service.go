// Package announcement は求人掲載のドメインロジックを提供する。
package announcement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/jobboard/internal/metrics"
	"github.com/hitoshi/jobboard/internal/model"
	"github.com/hitoshi/jobboard/internal/ownership"
	"github.com/hitoshi/jobboard/internal/repository"
	"github.com/hitoshi/jobboard/internal/security"
	"github.com/hitoshi/jobboard/internal/validation"
)

// CreateInput は求人掲載の入力。
type CreateInput struct {
	Title       string `json:"titolo" validate:"required,max=255"`
	Company     string `json:"azienda" validate:"required,max=255"`
	Description string `json:"descrizione" validate:"required,max=20000"`
	Location    string `json:"località" validate:"required,max=255"`
}

// Service は求人掲載のサービス層。
type Service struct {
	repo      repository.AnnouncementRepository
	checker   *ownership.Checker
	sanitizer security.ContentSanitizerService
	metrics   metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	repo repository.AnnouncementRepository,
	checker *ownership.Checker,
	sanitizer security.ContentSanitizerService,
	mc metrics.MetricsCollector,
) *Service {
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &Service{
		repo:      repo,
		checker:   checker,
		sanitizer: sanitizer,
		metrics:   mc,
	}
}

// Create は企業ユーザーの求人を掲載する。作成者は以後変更されない。
// 入力はサニタイズ後に検証するため、タグのみの入力は未入力として扱われる。
func (s *Service) Create(ctx context.Context, owner *model.User, in CreateInput) (*model.Announcement, error) {
	in = CreateInput{
		Title:       s.sanitizer.StripTags(in.Title),
		Company:     s.sanitizer.StripTags(in.Company),
		Description: s.sanitizer.Sanitize(in.Description),
		Location:    s.sanitizer.StripTags(in.Location),
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	announcement := &model.Announcement{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Company:     in.Company,
		Description: in.Description,
		Location:    in.Location,
		PublishedAt: time.Now(),
		CreatedBy:   owner.ID,
	}
	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, fmt.Errorf("求人の作成に失敗しました: %w", err)
	}

	announcement.Owner = &model.UserSummary{ID: owner.ID, Name: owner.Name, Email: owner.Email}

	slog.Info("announcement created",
		slog.String("announcement_id", announcement.ID),
		slog.String("user_id", owner.ID),
	)
	s.metrics.RecordAnnouncementCreated()
	return announcement, nil
}

// List は求人を新しい順に返す。1件もない場合はNO_ANNOUNCEMENTSを返す。
func (s *Service) List(ctx context.Context) ([]*model.Announcement, error) {
	announcements, err := s.repo.List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("求人一覧の取得に失敗しました: %w", err)
	}
	if len(announcements) == 0 {
		return nil, model.NewNoAnnouncementsError()
	}
	return announcements, nil
}

// Latest はフィード配信用に最新の求人を最大limit件返す。0件の場合も空スライスを返す。
func (s *Service) Latest(ctx context.Context, limit int) ([]*model.Announcement, error) {
	announcements, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("最新求人の取得に失敗しました: %w", err)
	}
	return announcements, nil
}

// ListMine は呼び出し元が掲載した求人を新しい順に返す。1件もない場合はNO_ANNOUNCEMENTSを返す。
func (s *Service) ListMine(ctx context.Context, owner *model.User) ([]*model.Announcement, error) {
	announcements, err := s.repo.ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("掲載求人一覧の取得に失敗しました: %w", err)
	}
	if len(announcements) == 0 {
		return nil, model.NewNoAnnouncementsError()
	}
	return announcements, nil
}

// Get は求人を1件取得する。
func (s *Service) Get(ctx context.Context, id string) (*model.Announcement, error) {
	return s.checker.FindAnnouncement(ctx, id)
}

// Delete は求人を削除する。作成者以外は403、存在しない場合は404を返す。
// 関連する応募も合わせて削除される。
func (s *Service) Delete(ctx context.Context, principal *model.User, id string) error {
	announcement, err := s.checker.AnnouncementOwnedBy(ctx, id, principal)
	if err != nil {
		return err
	}

	deleted, err := s.repo.DeleteByID(ctx, announcement.ID)
	if err != nil {
		return fmt.Errorf("求人の削除に失敗しました: %w", err)
	}
	if !deleted {
		// 所有者確認から削除までの間に別のリクエストで削除された
		return model.NewAnnouncementNotFoundError(id)
	}

	slog.Info("announcement deleted",
		slog.String("announcement_id", announcement.ID),
		slog.String("user_id", principal.ID),
	)
	return nil
}
