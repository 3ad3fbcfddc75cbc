// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/jobboard/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレス（大文字小文字を区別しない）でユーザーを取得する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はローカル登録ユーザーを作成する。
	// メールアドレスが重複する場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	// identityが既に存在する場合はErrDuplicateIdentity、
	// メールアドレスが重複する場合はErrDuplicateEmailを返す。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
}

// PendingSignupRepository はロール選択待ち登録情報の永続化インターフェース。
type PendingSignupRepository interface {
	// Create は登録待ち情報を作成する。
	Create(ctx context.Context, pending *model.PendingSignup) error
	// FindByID は指定IDの登録待ち情報を取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.PendingSignup, error)
	// DeleteByID は指定IDの登録待ち情報を削除する。
	DeleteByID(ctx context.Context, id string) error
}

// AnnouncementRepository は求人データの永続化インターフェース。
// 読み出し系はすべて掲載者情報（Owner）をJOINして返す。
type AnnouncementRepository interface {
	// Create は求人を作成する。
	Create(ctx context.Context, announcement *model.Announcement) error

	// FindByID は指定IDの求人を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Announcement, error)

	// List は求人を掲載日時の新しい順に返す。limitが0以下の場合は全件を返す。
	List(ctx context.Context, limit int) ([]*model.Announcement, error)

	// ListByOwner は指定ユーザーが掲載した求人を掲載日時の新しい順に返す。
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Announcement, error)

	// DeleteByID は指定IDの求人を削除する。関連する応募はCASCADE削除される。
	// 削除対象がない場合はfalseを返す。
	DeleteByID(ctx context.Context, id string) (bool, error)
}

// ApplicationRepository は応募データの永続化インターフェース。
type ApplicationRepository interface {
	// Create は応募を作成する。
	// 同一求人・同一求職者の応募が既に存在する場合はErrDuplicateApplicationを返す。
	Create(ctx context.Context, application *model.Application) error

	// FindByAnnouncementAndApplicant は求人IDと求職者IDで応募を検索する。
	// 見つからない場合はnilを返す。
	FindByAnnouncementAndApplicant(ctx context.Context, announcementID, applicantID string) (*model.Application, error)

	// ListByApplicant は求職者の応募を応募日時の新しい順に、求人情報付きで返す。
	ListByApplicant(ctx context.Context, applicantID string) ([]*model.Application, error)

	// ListByAnnouncement は求人に対する応募を応募日時の新しい順に、求職者情報付きで返す。
	ListByAnnouncement(ctx context.Context, announcementID string) ([]*model.Application, error)
}
