package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	providerGoogle           = "google"
	defaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

	maxUserInfoBytes = 1 << 20
)

// Googleのユーザー情報が求人サイトのアカウントとして使えない場合のエラー。
var (
	ErrMissingSubject  = errors.New("google: user info has no subject")
	ErrMissingEmail    = errors.New("google: user info has no email")
	ErrUnverifiedEmail = errors.New("google: email is not verified")
)

// GoogleOAuthConfig はGoogle OAuthプロバイダーの設定。
// AuthURL・TokenURL・UserInfoURL は空ならGoogleの本番エンドポイントを使う。
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// HTTPClient はトークン交換とユーザー情報取得に使う。nilならhttp.DefaultClient。
	HTTPClient *http.Client

	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

// GoogleOAuthProvider はGoogleアカウントでのログインを提供する。
type GoogleOAuthProvider struct {
	cfg         oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

func NewGoogleOAuthProvider(c GoogleOAuthConfig) *GoogleOAuthProvider {
	ep := endpoints.Google
	if c.AuthURL != "" {
		ep.AuthURL = c.AuthURL
	}
	if c.TokenURL != "" {
		ep.TokenURL = c.TokenURL
	}
	userInfoURL := c.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = defaultGoogleUserInfoURL
	}

	return &GoogleOAuthProvider{
		cfg: oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Endpoint:     ep,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: userInfoURL,
		httpClient:  c.HTTPClient,
	}
}

// GetLoginURL は同意画面のURLを返す。複数アカウントを持つ人事担当者向けに毎回アカウント選択を出す。
func (p *GoogleOAuthProvider) GetLoginURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// ExchangeCode は認可コードをトークンに交換し、ログインに使うGoogleアカウント情報を返す。
// メールアドレスは小文字に正規化する。表示名がなければメールアドレスのローカル部を使う。
func (p *GoogleOAuthProvider) ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error) {
	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}

	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange google authorization code: %w", err)
	}

	claims, err := p.userInfo(ctx, token)
	if err != nil {
		return nil, err
	}
	return claims.toUserInfo()
}

// googleClaims はuserinfoエンドポイントのレスポンスのうち使用する項目。
type googleClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
	Name          string `json:"name"`
}

func (c googleClaims) toUserInfo() (*OAuthUserInfo, error) {
	if c.Sub == "" {
		return nil, ErrMissingSubject
	}
	email := strings.ToLower(strings.TrimSpace(c.Email))
	if email == "" {
		return nil, ErrMissingEmail
	}
	// 未確認のアドレスで既存アカウントとの照合や登録を行わない
	if c.EmailVerified != nil && !*c.EmailVerified {
		return nil, ErrUnverifiedEmail
	}

	name := strings.TrimSpace(c.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	return &OAuthUserInfo{
		ProviderUserID: c.Sub,
		Email:          email,
		Name:           name,
		Provider:       providerGoogle,
	}, nil
}

func (p *GoogleOAuthProvider) userInfo(ctx context.Context, token *oauth2.Token) (googleClaims, error) {
	var claims googleClaims

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return claims, fmt.Errorf("failed to build google user info request: %w", err)
	}
	resp, err := p.cfg.Client(ctx, token).Do(req)
	if err != nil {
		return claims, fmt.Errorf("google user info request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxUserInfoBytes))
		return claims, fmt.Errorf("google user info returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUserInfoBytes)).Decode(&claims); err != nil {
		return claims, fmt.Errorf("failed to decode google user info: %w", err)
	}
	return claims, nil
}

var _ OAuthProvider = (*GoogleOAuthProvider)(nil)
