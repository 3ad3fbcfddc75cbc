package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/jobboard/internal/model"
)

const (
	// csrfCookieName はダブルサブミット用トークンのCookie名。JavaScriptから読むためHttpOnlyにしない。
	csrfCookieName = "csrf_token"
	csrfHeaderName = "X-CSRF-Token"

	defaultCSRFCookieMaxAge = 86400
	csrfTokenBytes          = 32
)

// CSRFConfig はCSRFミドルウェアの設定。
type CSRFConfig struct {
	// Enabled がfalseの場合はトークン検証を行わない（Cookieの発行は継続する）。
	Enabled      bool
	CookieSecure bool
	CookieDomain string
	// CookieMaxAge は秒数。0なら24時間。
	CookieMaxAge int
}

func (c CSRFConfig) cookieMaxAge() int {
	if c.CookieMaxAge > 0 {
		return c.CookieMaxAge
	}
	return defaultCSRFCookieMaxAge
}

// NewCSRFMiddleware はダブルサブミットCookie方式のCSRF対策ミドルウェアを返す。
// GET・HEAD・OPTIONSは検証せず、トークンCookieがなければ発行する。
// それ以外のメソッドはCookieとX-CSRF-Tokenヘッダーの一致を要求し、不一致は403 CSRF_TOKEN_INVALID。
func NewCSRFMiddleware(config CSRFConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				if _, err := r.Cookie(csrfCookieName); err != nil {
					if _, err := issueCSRFToken(w, config); err != nil {
						slog.Error("failed to generate CSRF token", slog.String("error", err.Error()))
					}
				}
				next.ServeHTTP(w, r)
				return
			}

			if config.Enabled {
				if reason := checkCSRFToken(r); reason != "" {
					slog.Warn("CSRF validation failed",
						slog.String("reason", reason),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)
					WriteAPIError(w, model.NewCSRFInvalidError())
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// checkCSRFToken は検証に失敗した理由を返す。成功時は空文字。
func checkCSRFToken(r *http.Request) string {
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil || cookie.Value == "" {
		return "missing cookie token"
	}
	header := r.Header.Get(csrfHeaderName)
	if header == "" {
		return "missing header token"
	}
	if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) != 1 {
		return "token mismatch"
	}
	return ""
}

// NewCSRFTokenHandler は GET /csrf-token のハンドラーを返す。
// 既存のトークンCookieがあればその値を、なければ新しく発行した値を {"token": ...} で返す。
func NewCSRFTokenHandler(config CSRFConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if cookie, err := r.Cookie(csrfCookieName); err == nil && cookie.Value != "" {
			token = cookie.Value
		} else {
			token, err = issueCSRFToken(w, config)
			if err != nil {
				slog.Error("failed to generate CSRF token", slog.String("error", err.Error()))
				WriteInternalServerError(w)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"token": token}); err != nil {
			slog.Error("failed to encode CSRF token response", slog.String("error", err.Error()))
		}
	})
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

// issueCSRFToken は新しいトークンを生成してCookieに設定する。
func issueCSRFToken(w http.ResponseWriter, config CSRFConfig) (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		Domain:   config.CookieDomain,
		MaxAge:   config.cookieMaxAge(),
		Secure:   config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}
