package middleware

import (
	"fmt"
	"net/http"
	"strings"
)

// apiContentSecurityPolicy はJSONとRSSだけを返すAPI向けのCSP。
// ブラウザがレスポンスを文書として描画してもスクリプトやフレーム埋め込みは一切許可しない。
const apiContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'"

// SecurityHeadersConfig はセキュリティヘッダーの設定。
type SecurityHeadersConfig struct {
	// HSTSMaxAge が正のとき Strict-Transport-Security を付与する（HTTPS運用時のみ）。
	HSTSMaxAge int
	// NoStorePrefixes に前方一致するパスはキャッシュを禁止する。
	// セッションCookieやユーザー情報を返す認証系エンドポイントを想定している。
	NoStorePrefixes []string
}

// DefaultSecurityHeadersConfig は認証系パスをキャッシュ禁止にした既定設定を返す。
// secureがtrueならHSTSを1年で有効にする。
func DefaultSecurityHeadersConfig(secure bool) SecurityHeadersConfig {
	cfg := SecurityHeadersConfig{NoStorePrefixes: []string{"/auth/", "/csrf-token", "/candidature"}}
	if secure {
		cfg.HSTSMaxAge = 365 * 24 * 60 * 60
	}
	return cfg
}

// NewSecurityHeadersMiddleware はセキュリティ関連のHTTPレスポンスヘッダーを付与するミドルウェアを返す。
func NewSecurityHeadersMiddleware(cfg SecurityHeadersConfig) func(next http.Handler) http.Handler {
	var hsts string
	if cfg.HSTSMaxAge > 0 {
		hsts = fmt.Sprintf("max-age=%d; includeSubDomains", cfg.HSTSMaxAge)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", apiContentSecurityPolicy)
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Cross-Origin-Resource-Policy", "same-site")
			if hsts != "" {
				h.Set("Strict-Transport-Security", hsts)
			}
			if hasAnyPrefix(r.URL.Path, cfg.NoStorePrefixes) {
				h.Set("Cache-Control", "no-store")
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
