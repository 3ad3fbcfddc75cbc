// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"
)

// Role はユーザーの種別を表す。applicantとcompanyは互いに排他的。
type Role string

const (
	// RoleApplicant は求人に応募する求職者。
	RoleApplicant Role = "applicant"
	// RoleCompany は求人を掲載する企業。
	RoleCompany Role = "company"
)

// Valid はロールが定義済みの値かどうかを返す。
func (r Role) Valid() bool {
	return r == RoleApplicant || r == RoleCompany
}

// User はサービス利用ユーザー（プリンシパル）を表す。
// ローカル登録ユーザーはPasswordHashを持ち、外部IdPのみのユーザーは空文字となる。
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword はローカルパスワードが設定されているかを返す。
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// UserSummary はレスポンスに埋め込むユーザーの公開情報。
type UserSummary struct {
	ID    string
	Name  string
	Email string
}

// Identity は外部IdPとの紐付け情報を表す。
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}

// Session はユーザーのログインセッションを表す。
// 作成時から固定の有効期限を持ち、アクセスによる延長は行わない。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// PendingSignup はロール未選択の外部IdP初回ログインを一時的に保持する。
type PendingSignup struct {
	ID             string
	Provider       string
	ProviderUserID string
	Email          string
	Name           string
	ExpiresAt      time.Time
	CreatedAt      time.Time
}

// NormalizeEmail はメールアドレスを比較・保存用に正規化する（前後空白除去・小文字化）。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
