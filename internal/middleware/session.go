// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/jobboard/internal/model"
	"github.com/hitoshi/jobboard/internal/session"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// principalContextKey はリクエストコンテキストに認証済みユーザーを格納するためのキー。
var principalContextKey = contextKey("principal")

// SessionResolver はセッションIDからプリンシパルを解決するインターフェース。
// 見つからない・期限切れの場合は (nil, nil) を返す。
type SessionResolver interface {
	ResolveSession(ctx context.Context, sessionID string) (*model.User, error)
}

// NewSessionMiddleware は署名付きCookieからセッションを読み取り、
// 有効性を検証するミドルウェアを返す。
// 認証済みユーザーをリクエストコンテキストに注入する。
// 未認証リクエストには401、ストア障害には500を返す。
func NewSessionMiddleware(resolver SessionResolver, cookies *session.Cookies) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. CookieからセッションIDを取得（署名不正は未設定と同じ扱い）
			sessionID, ok := cookies.ReadSession(r)
			if !ok {
				WriteAPIError(w, model.NewUnauthenticatedError())
				return
			}

			// 2. セッションの有効性を検証
			user, err := resolver.ResolveSession(r.Context(), sessionID)
			if err != nil {
				slog.Error("failed to resolve session",
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}
			if user == nil {
				WriteAPIError(w, model.NewUnauthenticatedError())
				return
			}

			// 3. 認証済みユーザーをコンテキストに注入
			annotatePrincipal(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), user)))
		})
	}
}

// PrincipalFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func PrincipalFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(principalContextKey).(*model.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (string, error) {
	user, ok := PrincipalFromContext(ctx)
	if !ok || user.ID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return user.ID, nil
}

// ContextWithPrincipal はコンテキストに認証済みユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithPrincipal(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, principalContextKey, user)
}
