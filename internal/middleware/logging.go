package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/jobboard/internal/model"
)

// accessRecord は1リクエスト分のアクセスログ項目。
// セッションミドルウェアは内側で動くため、ポインタをコンテキストに載せて書き戻してもらう。
type accessRecord struct {
	userID string
	role   model.Role
}

var accessRecordKey = contextKey("access_record")

// annotatePrincipal は解決済みのユーザーをアクセスログに記録する。
// ロギングミドルウェアの外で呼ばれた場合は何もしない。
func annotatePrincipal(ctx context.Context, user *model.User) {
	if rec, ok := ctx.Value(accessRecordKey).(*accessRecord); ok && user != nil {
		rec.userID = user.ID
		rec.role = user.Role
	}
}

// NewLoggingMiddleware はリクエストごとに "http_request" のJSONログを1行出力するミドルウェアを返す。
// 5xxはERROR、4xxはWARN、それ以外はINFOで出力する。
// chiのRequestIDミドルウェアの内側に置くとrequest_idも記録する。
func NewLoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			rec := &accessRecord{}

			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), accessRecordKey, rec)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
				slog.String("remote_ip", clientIP(r)),
			}
			if id := chimw.GetReqID(r.Context()); id != "" {
				attrs = append(attrs, slog.String("request_id", id))
			}
			if rec.userID == "" {
				if u, ok := PrincipalFromContext(r.Context()); ok {
					rec.userID, rec.role = u.ID, u.Role
				}
			}
			if rec.userID != "" {
				attrs = append(attrs, slog.String("user_id", rec.userID), slog.String("role", string(rec.role)))
			}

			logger.LogAttrs(r.Context(), levelForStatus(status), "http_request", attrs...)
		})
	}
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
