// Package application は求人への応募に関するドメインロジックを提供する。
package application

import (
	"context"
	"errors"
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

// 応募結果（メトリクスのラベル）
const (
	resultCreated   = "created"
	resultDuplicate = "duplicate"
)

// SubmitInput は応募の入力。
type SubmitInput struct {
	AnnouncementID string `json:"postAnnunci" validate:"required"`
	Message        string `json:"descrizioneCandidato" validate:"required,max=5000"`
}

// AnnouncementApplications は求人とその応募一覧。
type AnnouncementApplications struct {
	Announcement *model.Announcement
	Applications []*model.Application
}

// Service は応募のサービス層。
type Service struct {
	repo      repository.ApplicationRepository
	checker   *ownership.Checker
	sanitizer security.ContentSanitizerService
	metrics   metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	repo repository.ApplicationRepository,
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

// Submit は求職者の応募を作成する。
// 求人が存在しない場合は404、同じ求人に応募済みの場合は409を返す。
// 事前チェックをすり抜けた同時応募はストアの一意制約で同じ409になる。
func (s *Service) Submit(ctx context.Context, applicant *model.User, in SubmitInput) (*model.Application, error) {
	in.Message = s.sanitizer.Sanitize(in.Message)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	announcement, err := s.checker.FindAnnouncement(ctx, in.AnnouncementID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByAnnouncementAndApplicant(ctx, announcement.ID, applicant.ID)
	if err != nil {
		return nil, fmt.Errorf("応募履歴の確認に失敗しました: %w", err)
	}
	if existing != nil {
		s.metrics.RecordApplication(resultDuplicate)
		return nil, model.NewDuplicateApplicationError()
	}

	application := &model.Application{
		ID:             uuid.New().String(),
		AnnouncementID: announcement.ID,
		ApplicantID:    applicant.ID,
		ApplicantEmail: applicant.Email,
		Message:        in.Message,
		SubmittedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, application); err != nil {
		if errors.Is(err, repository.ErrDuplicateApplication) {
			s.metrics.RecordApplication(resultDuplicate)
			return nil, model.NewDuplicateApplicationError()
		}
		return nil, fmt.Errorf("応募の作成に失敗しました: %w", err)
	}

	application.Announcement = announcement
	application.Applicant = &model.UserSummary{ID: applicant.ID, Name: applicant.Name, Email: applicant.Email}

	slog.Info("application submitted",
		slog.String("application_id", application.ID),
		slog.String("announcement_id", announcement.ID),
		slog.String("user_id", applicant.ID),
	)
	s.metrics.RecordApplication(resultCreated)
	return application, nil
}

// ListMine は呼び出し元の応募を新しい順に返す。
// クエリ自体が呼び出し元に限定されるため所有者確認は行わない。
func (s *Service) ListMine(ctx context.Context, applicant *model.User) ([]*model.Application, error) {
	applications, err := s.repo.ListByApplicant(ctx, applicant.ID)
	if err != nil {
		return nil, fmt.Errorf("応募一覧の取得に失敗しました: %w", err)
	}
	return applications, nil
}

// ListForAnnouncement は求人への応募一覧を返す。求人の作成者のみ閲覧できる。
func (s *Service) ListForAnnouncement(ctx context.Context, principal *model.User, announcementID string) (*AnnouncementApplications, error) {
	announcement, err := s.checker.AnnouncementOwnedBy(ctx, announcementID, principal)
	if err != nil {
		return nil, err
	}

	applications, err := s.repo.ListByAnnouncement(ctx, announcement.ID)
	if err != nil {
		return nil, fmt.Errorf("求人への応募一覧の取得に失敗しました: %w", err)
	}
	return &AnnouncementApplications{
		Announcement: announcement,
		Applications: applications,
	}, nil
}
