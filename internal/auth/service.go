// Package auth はローカル認証・外部IdP認証フロー、セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/jobboard/internal/metrics"
	"github.com/hitoshi/jobboard/internal/model"
	"github.com/hitoshi/jobboard/internal/repository"
	"github.com/hitoshi/jobboard/internal/security"
	"github.com/hitoshi/jobboard/internal/validation"
)

// 認証方式（メトリクスのラベル）
const (
	methodLocal  = "local"
	methodGoogle = "google"
)

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報を表す。
type OAuthUserInfo struct {
	ProviderUserID string
	Email          string
	Name           string
	Provider       string // "google" 等
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge       time.Duration // セッション有効期間
	PendingSignupMaxAge time.Duration // ロール選択待ち登録情報の有効期間

	// DefaultExternalRole が設定されている場合、外部IdPの初回ログインで
	// ロール選択を挟まずにこのロールでユーザーを作成する。
	DefaultExternalRole model.Role
}

// RegisterInput はローカル登録の入力。
type RegisterInput struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"password"`
	DisplayName string `json:"displayName" validate:"required,max=255"`
	Role        string `json:"userType" validate:"role"`
}

// LoginInput はローカルログインの入力。
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// completeSignupInput はロール選択の入力。
type completeSignupInput struct {
	Role string `json:"userType" validate:"role"`
}

// CallbackResult は外部IdPコールバックの処理結果。
// SessionとPendingのどちらか一方のみが設定される。
type CallbackResult struct {
	// Session はログインが完了した場合のセッション。
	Session *model.Session
	// Pending はロール選択が必要な場合の登録待ち情報。
	Pending *model.PendingSignup
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth       OAuthProvider
	userRepo    repository.UserRepository
	identRepo   repository.IdentityRepository
	sessionRepo repository.SessionRepository
	pendingRepo repository.PendingSignupRepository
	hasher      security.PasswordHasher
	metrics     metrics.MetricsCollector
	config      ServiceConfig
}

// NewService はServiceを生成する。mcがnilの場合はメトリクスを記録しない。
func NewService(
	oauth OAuthProvider,
	userRepo repository.UserRepository,
	identRepo repository.IdentityRepository,
	sessionRepo repository.SessionRepository,
	pendingRepo repository.PendingSignupRepository,
	hasher security.PasswordHasher,
	mc metrics.MetricsCollector,
	config ServiceConfig,
) *Service {
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &Service{
		oauth:       oauth,
		userRepo:    userRepo,
		identRepo:   identRepo,
		sessionRepo: sessionRepo,
		pendingRepo: pendingRepo,
		hasher:      hasher,
		metrics:     mc,
		config:      config,
	}
}

// Register はローカルアカウントを登録し、セッションを発行する。
// パスワードは永続化の前に必ずハッシュ化する。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, *model.Session, error) {
	// 形式チェックは正規化後のメールアドレスに対して行う
	in.Email = model.NormalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, nil, err
	}

	existing, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if existing != nil {
		return nil, nil, model.NewEmailAlreadyRegisteredError()
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		Name:         in.DisplayName,
		PasswordHash: digest,
		Role:         model.Role(in.Role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// 事前チェックとINSERTの間に同じメールアドレスで登録された場合
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, nil, model.NewEmailAlreadyRegisteredError()
		}
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
		slog.String("provider", methodLocal),
	)
	s.metrics.RecordRegistration(string(user.Role))

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// Login はメールアドレスとパスワードで認証し、セッションを発行する。
func (s *Service) Login(ctx context.Context, in LoginInput) (*model.User, *model.Session, error) {
	user, err := s.authenticateLocal(ctx, in)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			s.metrics.RecordAuthAttempt(methodLocal, apiErr.Code)
		} else {
			s.metrics.RecordAuthAttempt(methodLocal, "error")
		}
		return nil, nil, err
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.metrics.RecordAuthAttempt(methodLocal, "success")
	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("provider", methodLocal),
	)
	return user, session, nil
}

// authenticateLocal はローカル認証の各失敗ケースを区別して返す。
func (s *Service) authenticateLocal(ctx context.Context, in LoginInput) (*model.User, error) {
	in.Email = model.NormalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		return nil, model.NewUnknownAccountError()
	}
	if !user.HasPassword() {
		return nil, model.NewExternalAccountOnlyError()
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.NewBadCredentialsError()
	}
	return user, nil
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleCallback はOAuthコールバックを処理する。
// 登録済みのidentityであればセッションを発行し、プロフィールは上書きしない。
// 未登録の場合、DefaultExternalRoleが設定されていればそのロールでユーザーを作成し、
// 設定されていなければロール選択待ちの登録情報を返す。
func (s *Service) HandleCallback(ctx context.Context, code string) (*CallbackResult, error) {
	result, err := s.handleCallback(ctx, code)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			s.metrics.RecordAuthAttempt(methodGoogle, apiErr.Code)
		} else {
			s.metrics.RecordAuthAttempt(methodGoogle, "error")
		}
		return nil, err
	}

	if result.Session != nil {
		s.metrics.RecordAuthAttempt(methodGoogle, "success")
	} else {
		s.metrics.RecordAuthAttempt(methodGoogle, "pending_signup")
	}
	return result, nil
}

func (s *Service) handleCallback(ctx context.Context, code string) (*CallbackResult, error) {
	// 1. 認可コードをトークンに交換し、ユーザー情報を取得
	userInfo, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	// 2. identitiesテーブルで既存ユーザーを検索
	identity, err := s.identRepo.FindByProviderAndProviderUserID(ctx, userInfo.Provider, userInfo.ProviderUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}

	if identity != nil {
		// 3a. 既存ユーザー: identityからユーザーIDを取得
		slog.Info("existing user logged in",
			slog.String("user_id", identity.UserID),
			slog.String("provider", userInfo.Provider),
		)
		session, err := s.createSession(ctx, identity.UserID)
		if err != nil {
			return nil, err
		}
		return &CallbackResult{Session: session}, nil
	}

	// 3b. 新規: 他のアカウントが同じメールアドレスを使用していないか確認
	email := model.NormalizeEmail(userInfo.Email)
	if email == "" {
		return nil, fmt.Errorf("identity provider returned no email for %s", userInfo.Provider)
	}
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if existing != nil {
		return nil, model.NewEmailAlreadyRegisteredError()
	}

	// 4a. 既定ロールが設定されていれば即座にユーザーを作成
	if s.config.DefaultExternalRole.Valid() {
		userID, err := s.createExternalUser(ctx, userInfo.Provider, userInfo.ProviderUserID, email, userInfo.Name, s.config.DefaultExternalRole)
		if err != nil {
			return nil, err
		}
		session, err := s.createSession(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &CallbackResult{Session: session}, nil
	}

	// 4b. ロール選択待ちとして一時保存
	pendingID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pending signup ID: %w", err)
	}
	now := time.Now()
	pending := &model.PendingSignup{
		ID:             pendingID,
		Provider:       userInfo.Provider,
		ProviderUserID: userInfo.ProviderUserID,
		Email:          email,
		Name:           userInfo.Name,
		ExpiresAt:      now.Add(s.config.PendingSignupMaxAge),
		CreatedAt:      now,
	}
	if err := s.pendingRepo.Create(ctx, pending); err != nil {
		return nil, fmt.Errorf("failed to save pending signup: %w", err)
	}

	slog.Info("pending signup created",
		slog.String("provider", userInfo.Provider),
	)
	return &CallbackResult{Pending: pending}, nil
}

// CompleteSignup はロール選択待ちの登録情報と選択されたロールからユーザーを作成し、セッションを発行する。
func (s *Service) CompleteSignup(ctx context.Context, pendingID, role string) (*model.User, *model.Session, error) {
	if err := validation.Struct(completeSignupInput{Role: role}); err != nil {
		return nil, nil, err
	}
	if pendingID == "" {
		return nil, nil, model.NewPendingSignupNotFoundError()
	}

	pending, err := s.pendingRepo.FindByID(ctx, pendingID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find pending signup: %w", err)
	}
	if pending == nil {
		return nil, nil, model.NewPendingSignupNotFoundError()
	}

	userID, err := s.createExternalUser(ctx, pending.Provider, pending.ProviderUserID, pending.Email, pending.Name, model.Role(role))
	if err != nil {
		return nil, nil, err
	}

	if err := s.pendingRepo.DeleteByID(ctx, pending.ID); err != nil {
		// 期限切れ後にクリーンアップジョブで削除されるため処理は継続する
		slog.Error("failed to delete pending signup",
			slog.String("error", err.Error()),
		)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, nil, model.NewUserNotFoundError()
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	s.metrics.RecordAuthAttempt(methodGoogle, "success")
	return user, session, nil
}

// createExternalUser は外部IdPのidentityを持つユーザーを作成し、そのユーザーIDを返す。
// 同一identityの初回ログインが並行した場合、一意制約で敗れた側は既存のidentityを再取得して使用する。
func (s *Service) createExternalUser(ctx context.Context, provider, providerUserID, email, name string, role model.Role) (string, error) {
	now := time.Now()
	newUser := &model.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	newIdentity := &model.Identity{
		ID:             uuid.New().String(),
		UserID:         newUser.ID,
		Provider:       provider,
		ProviderUserID: providerUserID,
		CreatedAt:      now,
	}

	err := s.userRepo.CreateWithIdentity(ctx, newUser, newIdentity)
	switch {
	case err == nil:
		slog.Info("new user created",
			slog.String("user_id", newUser.ID),
			slog.String("role", string(role)),
			slog.String("provider", provider),
		)
		s.metrics.RecordRegistration(string(role))
		return newUser.ID, nil

	case errors.Is(err, repository.ErrDuplicateIdentity):
		identity, findErr := s.identRepo.FindByProviderAndProviderUserID(ctx, provider, providerUserID)
		if findErr != nil {
			return "", fmt.Errorf("failed to re-read identity: %w", findErr)
		}
		if identity == nil {
			return "", fmt.Errorf("identity vanished after unique violation: %w", err)
		}
		slog.Info("concurrent first login resolved to existing user",
			slog.String("user_id", identity.UserID),
			slog.String("provider", provider),
		)
		return identity.UserID, nil

	case errors.Is(err, repository.ErrDuplicateEmail):
		return "", model.NewEmailAlreadyRegisteredError()

	default:
		return "", fmt.Errorf("failed to create user and identity: %w", err)
	}
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out")
	return nil
}

// ResolveSession はセッションIDからプリンシパルを解決する。
// セッションが存在しない・期限切れ・ユーザーが削除済みの場合は (nil, nil) を返す。
func (s *Service) ResolveSession(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil || !session.ExpiresAt.After(time.Now()) {
		return nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: now.Add(s.config.SessionMaxAge),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
