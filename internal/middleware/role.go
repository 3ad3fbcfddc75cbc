package middleware

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/jobboard/internal/model"
)

// RequireRole は指定されたロールのいずれかを持つユーザーのみを通すミドルウェアを返す。
// セッションミドルウェアの後に配置する。
// プリンシパルがない、またはロールが空の場合は403 ROLE_UNSPECIFIED、
// ロールが許可集合に含まれない場合は403 INSUFFICIENT_ROLEを返す。
func RequireRole(roles ...model.Role) func(next http.Handler) http.Handler {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := PrincipalFromContext(r.Context())
			if !ok || user.Role == "" {
				WriteAPIError(w, model.NewRoleUnspecifiedError())
				return
			}

			if _, ok := allowed[user.Role]; !ok {
				slog.Warn("role not permitted",
					slog.String("user_id", user.ID),
					slog.String("role", string(user.Role)),
					slog.String("path", r.URL.Path),
				)
				WriteAPIError(w, model.NewInsufficientRoleError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
