package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/jobboard/internal/model"
)

// PostgresAnnouncementRepo はPostgreSQLを使用した求人リポジトリ。
type PostgresAnnouncementRepo struct {
	db *sql.DB
}

// NewPostgresAnnouncementRepo はPostgresAnnouncementRepoを生成する。
func NewPostgresAnnouncementRepo(db *sql.DB) *PostgresAnnouncementRepo {
	return &PostgresAnnouncementRepo{db: db}
}

// 掲載者情報をJOINする共通SELECT
const selectAnnouncementWithOwner = `
	SELECT a.id, a.title, a.company, a.description, a.location, a.published_at, a.created_by,
	       u.id, u.name, u.email
	FROM announcements a
	JOIN users u ON u.id = a.created_by`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnnouncement(row rowScanner) (*model.Announcement, error) {
	a := &model.Announcement{Owner: &model.UserSummary{}}
	err := row.Scan(
		&a.ID, &a.Title, &a.Company, &a.Description, &a.Location, &a.PublishedAt, &a.CreatedBy,
		&a.Owner.ID, &a.Owner.Name, &a.Owner.Email,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create は求人を作成する。
func (r *PostgresAnnouncementRepo) Create(ctx context.Context, announcement *model.Announcement) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO announcements (id, title, company, description, location, published_at, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		announcement.ID, announcement.Title, announcement.Company, announcement.Description,
		announcement.Location, announcement.PublishedAt, announcement.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create announcement: %w", err)
	}
	return nil
}

// FindByID は指定IDの求人を取得する。見つからない場合はnilを返す。
func (r *PostgresAnnouncementRepo) FindByID(ctx context.Context, id string) (*model.Announcement, error) {
	a, err := scanAnnouncement(r.db.QueryRowContext(ctx, selectAnnouncementWithOwner+` WHERE a.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find announcement: %w", err)
	}
	return a, nil
}

// List は求人を掲載日時の新しい順に返す。limitが0以下の場合は全件を返す。
func (r *PostgresAnnouncementRepo) List(ctx context.Context, limit int) ([]*model.Announcement, error) {
	query := selectAnnouncementWithOwner + ` ORDER BY a.published_at DESC, a.id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	defer rows.Close()

	return collectAnnouncements(rows)
}

// ListByOwner は指定ユーザーが掲載した求人を掲載日時の新しい順に返す。
func (r *PostgresAnnouncementRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Announcement, error) {
	rows, err := r.db.QueryContext(ctx,
		selectAnnouncementWithOwner+` WHERE a.created_by = $1 ORDER BY a.published_at DESC, a.id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements by owner: %w", err)
	}
	defer rows.Close()

	return collectAnnouncements(rows)
}

func collectAnnouncements(rows *sql.Rows) ([]*model.Announcement, error) {
	var result []*model.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate announcements: %w", err)
	}
	return result, nil
}

// DeleteByID は指定IDの求人を削除する。関連する応募はCASCADE削除される。
func (r *PostgresAnnouncementRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete announcement: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ AnnouncementRepository = (*PostgresAnnouncementRepo)(nil)
