// Package session はセッションCookieの署名・検証と発行を提供する。
//
// Cookie値は "<セッションID>.<HMAC-SHA256(secret, セッションID)>" の形式で、
// 署名が一致しないCookieはCookieが存在しない場合と同様に扱う。
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
)

const (
	// CookieName はセッションCookieの名前。
	CookieName = "session_id"
	// PendingSignupCookieName はロール選択待ちの登録情報を指すCookieの名前。
	PendingSignupCookieName = "pending_signup"
)

// Signer はHMAC-SHA256で値に署名する。
type Signer struct {
	key []byte
}

// NewSigner はSignerを生成する。
func NewSigner(secret string) *Signer {
	return &Signer{key: []byte(secret)}
}

// Sign は値に署名を付与した文字列を返す。
func (s *Signer) Sign(value string) string {
	return value + "." + s.mac(value)
}

// Verify は署名付き文字列を検証し、元の値を返す。
// 形式不正・署名不一致の場合はokがfalseとなる。
func (s *Signer) Verify(signed string) (value string, ok bool) {
	i := strings.LastIndexByte(signed, '.')
	if i <= 0 || i == len(signed)-1 {
		return "", false
	}
	value, sig := signed[:i], signed[i+1:]
	if !hmac.Equal([]byte(sig), []byte(s.mac(value))) {
		return "", false
	}
	return value, true
}

func (s *Signer) mac(value string) string {
	h := hmac.New(sha256.New, s.key)
	h.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// CookieConfig はCookie属性の設定。
type CookieConfig struct {
	Domain              string
	Secure              bool
	SessionMaxAge       int // セッションCookieの有効期間（秒）
	PendingSignupMaxAge int // 登録待ちCookieの有効期間（秒）
}

// Cookies は署名付きCookieの読み書きを行う。
type Cookies struct {
	signer *Signer
	config CookieConfig
}

// NewCookies はCookiesを生成する。
func NewCookies(signer *Signer, config CookieConfig) *Cookies {
	return &Cookies{signer: signer, config: config}
}

// SetSession はセッションCookieを設定する。
func (c *Cookies) SetSession(w http.ResponseWriter, sessionID string) {
	c.set(w, CookieName, c.signer.Sign(sessionID), c.config.SessionMaxAge)
}

// ReadSession は署名を検証してセッションIDを返す。
func (c *Cookies) ReadSession(r *http.Request) (string, bool) {
	return c.read(r, CookieName)
}

// ClearSession はセッションCookieを削除する。
func (c *Cookies) ClearSession(w http.ResponseWriter) {
	c.set(w, CookieName, "", -1)
}

// SetPendingSignup は登録待ちCookieを設定する。
func (c *Cookies) SetPendingSignup(w http.ResponseWriter, pendingID string) {
	c.set(w, PendingSignupCookieName, c.signer.Sign(pendingID), c.config.PendingSignupMaxAge)
}

// ReadPendingSignup は署名を検証して登録待ちIDを返す。
func (c *Cookies) ReadPendingSignup(r *http.Request) (string, bool) {
	return c.read(r, PendingSignupCookieName)
}

// ClearPendingSignup は登録待ちCookieを削除する。
func (c *Cookies) ClearPendingSignup(w http.ResponseWriter) {
	c.set(w, PendingSignupCookieName, "", -1)
}

func (c *Cookies) read(r *http.Request, name string) (string, bool) {
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return c.signer.Verify(cookie.Value)
}

func (c *Cookies) set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.config.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
