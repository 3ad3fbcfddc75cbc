package repository

import (
	"errors"

	"github.com/lib/pq"
)

// 一意制約違反を表すエラー。サービス層はerrors.Isで判定してドメインエラーへ変換する。
var (
	ErrDuplicateEmail       = errors.New("repository: email already registered")
	ErrDuplicateIdentity    = errors.New("repository: identity already linked")
	ErrDuplicateApplication = errors.New("repository: application already exists")
)

// PostgreSQLの一意制約違反エラーコード
const uniqueViolation = "23505"

// 制約名（マイグレーション定義と一致させること）
const (
	constraintUsersEmail         = "idx_users_email_lower"
	constraintIdentitiesProvider = "uq_identities_provider_user"
	constraintApplicationsUnique = "uq_applications_announcement_applicant"
)

// translateUniqueViolation は一意制約違反を制約名に応じたセンチネルエラーに変換する。
// 一意制約違反でない場合や未知の制約の場合はerrをそのまま返す。
func translateUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}

	switch pqErr.Constraint {
	case constraintUsersEmail:
		return ErrDuplicateEmail
	case constraintIdentitiesProvider:
		return ErrDuplicateIdentity
	case constraintApplicationsUnique:
		return ErrDuplicateApplication
	default:
		return err
	}
}
