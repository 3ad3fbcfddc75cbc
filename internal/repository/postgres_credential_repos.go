package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/jobboard/internal/model"
)

// このファイルはログイン状態を保持する3種類の行（identity・セッション・登録待ち）を扱う。
// いずれも主キーでの1件取得と削除しか行わず、期限切れの行は読み出し時点で存在しないものとして扱う。

// queryOne は1行を読み出してscanに渡す。該当行がなければfalseを返す。
func queryOne(ctx context.Context, db *sql.DB, scan func(rowScanner) error, query string, args ...any) (bool, error) {
	err := scan(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// --- identities ---

// PostgresIdentityRepo は外部IdPアカウントとユーザーの紐付けを読み出す。
// 作成はユーザーと同一トランザクションで行うため PostgresUserRepo.CreateWithIdentity が担う。
type PostgresIdentityRepo struct {
	db *sql.DB
}

// NewPostgresIdentityRepo はPostgresIdentityRepoを生成する。
func NewPostgresIdentityRepo(db *sql.DB) *PostgresIdentityRepo {
	return &PostgresIdentityRepo{db: db}
}

func (r *PostgresIdentityRepo) FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error) {
	var i model.Identity
	found, err := queryOne(ctx, r.db, func(row rowScanner) error {
		return row.Scan(&i.ID, &i.UserID, &i.Provider, &i.ProviderUserID, &i.CreatedAt)
	}, `SELECT id, user_id, provider, provider_user_id, created_at
	      FROM identities
	     WHERE provider = $1 AND provider_user_id = $2`, provider, providerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s identity: %w", provider, err)
	}
	if !found {
		return nil, nil
	}
	return &i, nil
}

// --- sessions ---

// PostgresSessionRepo はログインセッションを保存する。
type PostgresSessionRepo struct {
	db *sql.DB
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

func (r *PostgresSessionRepo) Create(ctx context.Context, s *model.Session) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`,
		s.ID, s.UserID, s.ExpiresAt, s.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create session for user %s: %w", s.UserID, err)
	}
	return nil
}

// FindByID は有効期限内のセッションだけを返す。
func (r *PostgresSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	found, err := queryOne(ctx, r.db, func(row rowScanner) error {
		return row.Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	}, `SELECT id, user_id, expires_at, created_at
	      FROM sessions
	     WHERE id = $1 AND expires_at > now()`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &s, nil
}

// DeleteByID はセッションを削除する。存在しなくてもエラーにしない。
func (r *PostgresSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// --- pending signups ---

// PostgresPendingSignupRepo はロール選択待ちの外部IdP初回ログインを保存する。
type PostgresPendingSignupRepo struct {
	db *sql.DB
}

// NewPostgresPendingSignupRepo はPostgresPendingSignupRepoを生成する。
func NewPostgresPendingSignupRepo(db *sql.DB) *PostgresPendingSignupRepo {
	return &PostgresPendingSignupRepo{db: db}
}

func (r *PostgresPendingSignupRepo) Create(ctx context.Context, p *model.PendingSignup) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO pending_signups (id, provider, provider_user_id, email, name, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Provider, p.ProviderUserID, p.Email, p.Name, p.ExpiresAt, p.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create pending signup: %w", err)
	}
	return nil
}

// FindByID は有効期限内の登録待ち情報だけを返す。
func (r *PostgresPendingSignupRepo) FindByID(ctx context.Context, id string) (*model.PendingSignup, error) {
	var p model.PendingSignup
	found, err := queryOne(ctx, r.db, func(row rowScanner) error {
		return row.Scan(&p.ID, &p.Provider, &p.ProviderUserID, &p.Email, &p.Name, &p.ExpiresAt, &p.CreatedAt)
	}, `SELECT id, provider, provider_user_id, email, name, expires_at, created_at
	      FROM pending_signups
	     WHERE id = $1 AND expires_at > now()`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending signup: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &p, nil
}

// DeleteByID は登録待ち情報を削除する。存在しなくてもエラーにしない。
func (r *PostgresPendingSignupRepo) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_signups WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete pending signup: %w", err)
	}
	return nil
}

var (
	_ IdentityRepository      = (*PostgresIdentityRepo)(nil)
	_ SessionRepository       = (*PostgresSessionRepo)(nil)
	_ PendingSignupRepository = (*PostgresPendingSignupRepo)(nil)
)
