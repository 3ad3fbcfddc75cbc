package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/jobboard/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// execer は *sql.DB と *sql.Tx の共通部分。
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// 外部IdPのみのユーザーはpassword_hashがNULLなので空文字で読む
const selectUser = `SELECT id, email, name, COALESCE(password_hash, ''), role, created_at, updated_at FROM users`

func (r *PostgresUserRepo) findOne(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User
	found, err := queryOne(ctx, r.db, func(row rowScanner) error {
		return row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	}, selectUser+" WHERE "+where, arg)
	if err != nil || !found {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, err := r.findOne(ctx, "id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user %s: %w", id, err)
	}
	return u, nil
}

// FindByEmail は大文字小文字を区別せずに検索する。lower(email) の一意インデックスを使う。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := r.findOne(ctx, "lower(email) = $1", model.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return u, nil
}

func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	return insertUser(ctx, r.db, user)
}

// CreateWithIdentity はGoogleアカウントでの初回登録を1トランザクションで行う。
// どちらかが一意制約に違反した場合は何も作成しない。
func (r *PostgresUserRepo) CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin signup transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertUser(ctx, tx, user); err != nil {
		return err
	}
	if err := insertIdentity(ctx, tx, identity); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit signup transaction: %w", err)
	}
	return nil
}

func insertUser(ctx context.Context, ex execer, u *model.User) error {
	var hash sql.NullString
	if u.PasswordHash != "" {
		hash = sql.NullString{String: u.PasswordHash, Valid: true}
	}
	_, err := ex.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.Name, hash, u.Role, u.CreatedAt, u.UpdatedAt,
	)
	return wrapInsertError("user", err)
}

func insertIdentity(ctx context.Context, ex execer, i *model.Identity) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO identities (id, user_id, provider, provider_user_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		i.ID, i.UserID, i.Provider, i.ProviderUserID, i.CreatedAt,
	)
	return wrapInsertError("identity", err)
}

// wrapInsertError は一意制約違反をセンチネルエラーに変換し、それ以外は文脈を付けて返す。
func wrapInsertError(what string, err error) error {
	if err == nil {
		return nil
	}
	if dup := translateUniqueViolation(err); dup != err {
		return dup
	}
	return fmt.Errorf("failed to insert %s: %w", what, err)
}

var _ UserRepository = (*PostgresUserRepo)(nil)
