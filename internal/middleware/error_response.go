package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/jobboard/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// 原因カテゴリと対処方法を含む。
type ErrorResponseBody struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Category string            `json:"category"`
	Action   string            `json:"action"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// StatusForAPIError はエラーコードに対応するHTTPステータスコードを返す。
// 未知のコードは500として扱う。
func StatusForAPIError(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidationFailed, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeUnauthenticated,
		model.ErrCodeUnknownAccount,
		model.ErrCodeExternalAccountOnly,
		model.ErrCodeBadCredentials,
		model.ErrCodePendingSignupGone:
		return http.StatusUnauthorized
	case model.ErrCodeRoleUnspecified,
		model.ErrCodeInsufficientRole,
		model.ErrCodeNotResourceOwner,
		model.ErrCodeCSRFInvalid:
		return http.StatusForbidden
	case model.ErrCodeAnnouncementNotFound, model.ErrCodeNoAnnouncements, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeEmailAlreadyRegistered, model.ErrCodeDuplicateApplication:
		return http.StatusConflict
	case model.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
		Fields:   apiErr.Fields,
	})
}

// WriteAPIError はエラーコードから決まるステータスでAPIエラーを書き込む。
func WriteAPIError(w http.ResponseWriter, apiErr *model.APIError) {
	WriteErrorResponse(w, StatusForAPIError(apiErr), apiErr)
}

// WriteError は任意のエラーをレスポンスに変換する。
// APIErrorはそのまま返し、それ以外は内部エラーとしてログに記録して500を返す。
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		WriteAPIError(w, apiErr)
		return
	}

	slog.Error("internal error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	WriteInternalServerError(w)
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
}
