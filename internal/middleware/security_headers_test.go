package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSecurityHeadersMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		secure    bool
		path      string
		wantHSTS  string
		wantCache string
	}{
		{name: "HTTP 公開一覧", path: "/postAnnunci"},
		{name: "HTTP 認証系はno-store", path: "/auth/me", wantCache: "no-store"},
		{name: "HTTPS HSTSあり", secure: true, path: "/postAnnunci", wantHSTS: "max-age=31536000; includeSubDomains"},
		{name: "HTTPS 応募はno-store", secure: true, path: "/candidature/mie-candidature", wantHSTS: "max-age=31536000; includeSubDomains", wantCache: "no-store"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewSecurityHeadersMiddleware(DefaultSecurityHeadersConfig(tt.secure))(okHandler())
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			h := w.Header()
			fixed := map[string]string{
				"X-Content-Type-Options":  "nosniff",
				"X-Frame-Options":         "DENY",
				"Content-Security-Policy": apiContentSecurityPolicy,
				"Referrer-Policy":         "no-referrer",
			}
			for k, want := range fixed {
				if got := h.Get(k); got != want {
					t.Errorf("%s = %q, want %q", k, got, want)
				}
			}
			if got := h.Get("Strict-Transport-Security"); got != tt.wantHSTS {
				t.Errorf("Strict-Transport-Security = %q, want %q", got, tt.wantHSTS)
			}
			if got := h.Get("Cache-Control"); got != tt.wantCache {
				t.Errorf("Cache-Control = %q, want %q", got, tt.wantCache)
			}
		})
	}
}
