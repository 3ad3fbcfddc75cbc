package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/jobboard/internal/model"
)

// PostgresApplicationRepo はPostgreSQLを使用した応募リポジトリ。
type PostgresApplicationRepo struct {
	db *sql.DB
}

// NewPostgresApplicationRepo はPostgresApplicationRepoを生成する。
func NewPostgresApplicationRepo(db *sql.DB) *PostgresApplicationRepo {
	return &PostgresApplicationRepo{db: db}
}

// Create は応募を作成する。
// (announcement_id, applicant_id) の一意制約違反はErrDuplicateApplicationとなる。
func (r *PostgresApplicationRepo) Create(ctx context.Context, application *model.Application) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO applications (id, announcement_id, applicant_id, applicant_email, message, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		application.ID, application.AnnouncementID, application.ApplicantID,
		application.ApplicantEmail, application.Message, application.SubmittedAt,
	)
	return wrapInsertError("application", err)
}

// FindByAnnouncementAndApplicant は求人IDと求職者IDで応募を検索する。見つからない場合はnilを返す。
func (r *PostgresApplicationRepo) FindByAnnouncementAndApplicant(ctx context.Context, announcementID, applicantID string) (*model.Application, error) {
	app := &model.Application{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, announcement_id, applicant_id, applicant_email, message, submitted_at
		 FROM applications
		 WHERE announcement_id = $1 AND applicant_id = $2`,
		announcementID, applicantID,
	).Scan(&app.ID, &app.AnnouncementID, &app.ApplicantID, &app.ApplicantEmail, &app.Message, &app.SubmittedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	return app, nil
}

// ListByApplicant は求職者の応募を応募日時の新しい順に、求人情報付きで返す。
func (r *PostgresApplicationRepo) ListByApplicant(ctx context.Context, applicantID string) ([]*model.Application, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ap.id, ap.announcement_id, ap.applicant_id, ap.applicant_email, ap.message, ap.submitted_at,
		        an.id, an.title, an.company, an.description, an.location, an.published_at, an.created_by
		 FROM applications ap
		 JOIN announcements an ON an.id = ap.announcement_id
		 WHERE ap.applicant_id = $1
		 ORDER BY ap.submitted_at DESC, ap.id`,
		applicantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications by applicant: %w", err)
	}
	defer rows.Close()

	var result []*model.Application
	for rows.Next() {
		app := &model.Application{Announcement: &model.Announcement{}}
		an := app.Announcement
		if err := rows.Scan(
			&app.ID, &app.AnnouncementID, &app.ApplicantID, &app.ApplicantEmail, &app.Message, &app.SubmittedAt,
			&an.ID, &an.Title, &an.Company, &an.Description, &an.Location, &an.PublishedAt, &an.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		result = append(result, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}
	return result, nil
}

// ListByAnnouncement は求人に対する応募を応募日時の新しい順に、求職者情報付きで返す。
func (r *PostgresApplicationRepo) ListByAnnouncement(ctx context.Context, announcementID string) ([]*model.Application, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ap.id, ap.announcement_id, ap.applicant_id, ap.applicant_email, ap.message, ap.submitted_at,
		        u.id, u.name, u.email
		 FROM applications ap
		 JOIN users u ON u.id = ap.applicant_id
		 WHERE ap.announcement_id = $1
		 ORDER BY ap.submitted_at DESC, ap.id`,
		announcementID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications by announcement: %w", err)
	}
	defer rows.Close()

	var result []*model.Application
	for rows.Next() {
		app := &model.Application{Applicant: &model.UserSummary{}}
		if err := rows.Scan(
			&app.ID, &app.AnnouncementID, &app.ApplicantID, &app.ApplicantEmail, &app.Message, &app.SubmittedAt,
			&app.Applicant.ID, &app.Applicant.Name, &app.Applicant.Email,
		); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		result = append(result, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}
	return result, nil
}

// compile-time interface check
var _ ApplicationRepository = (*PostgresApplicationRepo)(nil)
