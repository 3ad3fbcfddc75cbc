// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string            // エラーコード
	Message  string            // エラーメッセージ
	Category string            // カテゴリ: auth, validation, announcement, application, system
	Action   string            // ユーザー向け対処方法
	Fields   map[string]string // バリデーションエラー時のフィールド別詳細
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	// validation (400)
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"

	// authentication (401)
	ErrCodeUnauthenticated     = "UNAUTHENTICATED"
	ErrCodeUnknownAccount      = "UNKNOWN_ACCOUNT"
	ErrCodeExternalAccountOnly = "EXTERNAL_ACCOUNT_ONLY"
	ErrCodeBadCredentials      = "BAD_CREDENTIALS"
	ErrCodePendingSignupGone   = "PENDING_SIGNUP_NOT_FOUND"

	// authorization (403)
	ErrCodeRoleUnspecified  = "ROLE_UNSPECIFIED"
	ErrCodeInsufficientRole = "INSUFFICIENT_ROLE"
	ErrCodeNotResourceOwner = "NOT_RESOURCE_OWNER"
	ErrCodeCSRFInvalid      = "CSRF_TOKEN_INVALID"

	// not found (404)
	ErrCodeAnnouncementNotFound = "ANNOUNCEMENT_NOT_FOUND"
	ErrCodeNoAnnouncements      = "NO_ANNOUNCEMENTS"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"

	// conflict (409)
	ErrCodeEmailAlreadyRegistered = "EMAIL_ALREADY_REGISTERED"
	ErrCodeDuplicateApplication   = "DUPLICATE_APPLICATION"

	// rate limit (429)
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"

	// system (500)
	ErrCodeInternal = "INTERNAL_ERROR"
)

// NewValidationError はフィールド単位の詳細を持つバリデーションエラーを生成する。
func NewValidationError(fields map[string]string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  "入力内容に誤りがあります。",
		Category: "validation",
		Action:   "各項目の内容を確認してください。",
		Fields:   fields,
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewUnauthenticatedError は未認証エラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewUnknownAccountError は未登録メールアドレスでのログインエラーを生成する。
func NewUnknownAccountError() *APIError {
	return &APIError{
		Code:     ErrCodeUnknownAccount,
		Message:  "このメールアドレスは登録されていません。",
		Category: "auth",
		Action:   "メールアドレスを確認するか、新規登録してください。",
	}
}

// NewExternalAccountOnlyError は外部IdPで登録されたアカウントへのパスワードログインエラーを生成する。
func NewExternalAccountOnlyError() *APIError {
	return &APIError{
		Code:     ErrCodeExternalAccountOnly,
		Message:  "このアカウントはGoogleログインで登録されています。",
		Category: "auth",
		Action:   "Googleでログインしてください。",
	}
}

// NewBadCredentialsError はパスワード不一致エラーを生成する。
func NewBadCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeBadCredentials,
		Message:  "パスワードが正しくありません。",
		Category: "auth",
		Action:   "パスワードを確認して再度お試しください。",
	}
}

// NewPendingSignupNotFoundError はロール選択待ちの登録情報が見つからない場合のエラーを生成する。
func NewPendingSignupNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodePendingSignupGone,
		Message:  "登録手続きの有効期限が切れています。",
		Category: "auth",
		Action:   "もう一度Googleでログインしてください。",
	}
}

// NewRoleUnspecifiedError はユーザー種別が設定されていない場合のエラーを生成する。
func NewRoleUnspecifiedError() *APIError {
	return &APIError{
		Code:     ErrCodeRoleUnspecified,
		Message:  "ユーザー種別が設定されていません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewInsufficientRoleError は操作に必要なユーザー種別を持たない場合のエラーを生成する。
func NewInsufficientRoleError() *APIError {
	return &APIError{
		Code:     ErrCodeInsufficientRole,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "操作に対応したアカウントでログインしてください。",
	}
}

// NewNotResourceOwnerError はリソースの作成者以外が操作しようとした場合のエラーを生成する。
func NewNotResourceOwnerError() *APIError {
	return &APIError{
		Code:     ErrCodeNotResourceOwner,
		Message:  "この求人を操作する権限がありません。",
		Category: "announcement",
		Action:   "自分が掲載した求人のみ操作できます。",
	}
}

// NewAnnouncementNotFoundError は求人未検出エラーを生成する。
func NewAnnouncementNotFoundError(announcementID string) *APIError {
	return &APIError{
		Code:     ErrCodeAnnouncementNotFound,
		Message:  fmt.Sprintf("指定された求人が見つかりません: %s", announcementID),
		Category: "announcement",
		Action:   "求人IDを確認してください。",
	}
}

// NewNoAnnouncementsError は一覧対象の求人が1件もない場合のエラーを生成する。
func NewNoAnnouncementsError() *APIError {
	return &APIError{
		Code:     ErrCodeNoAnnouncements,
		Message:  "求人が見つかりません。",
		Category: "announcement",
		Action:   "しばらくしてから再度ご確認ください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewEmailAlreadyRegisteredError はメールアドレス重複エラーを生成する。
func NewEmailAlreadyRegisteredError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailAlreadyRegistered,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "auth",
		Action:   "ログインするか、別のメールアドレスで登録してください。",
	}
}

// NewDuplicateApplicationError は同一求人への重複応募エラーを生成する。
func NewDuplicateApplicationError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateApplication,
		Message:  "この求人には既に応募しています。",
		Category: "application",
		Action:   "応募状況は応募一覧から確認してください。",
	}
}

// NewCSRFInvalidError はCSRFトークン検証失敗エラーを生成する。
func NewCSRFInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeCSRFInvalid,
		Message:  "CSRFトークンの検証に失敗しました。",
		Category: "auth",
		Action:   "ページを再読み込みしてから再度お試しください。",
	}
}

// NewRateLimitExceededError はレート制限超過エラーを生成する。
func NewRateLimitExceededError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimitExceeded,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
