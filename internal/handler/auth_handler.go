package handler

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/jobboard/internal/auth"
	"github.com/hitoshi/jobboard/internal/middleware"
	"github.com/hitoshi/jobboard/internal/model"
	"github.com/hitoshi/jobboard/internal/session"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 600 // 10分
)

// フロントエンドのリダイレクト先
const (
	frontendOAuthCallbackPath = "/oauth-callback"
	frontendSelectRolePath    = "/select-role"
	frontendLoginFailedPath   = "/login?error=oauth_failed"
	frontendAccountExistsPath = "/login?error=account_exists"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, in auth.RegisterInput) (*model.User, *model.Session, error)
	Login(ctx context.Context, in auth.LoginInput) (*model.User, *model.Session, error)
	GetLoginURL(state string) string
	HandleCallback(ctx context.Context, code string) (*auth.CallbackResult, error)
	CompleteSignup(ctx context.Context, pendingID, role string) (*model.User, *model.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	FrontendURL  string
	CookieSecure bool
}

// AuthHandler はローカル認証とGoogle OAuth認証のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	cookies *session.Cookies
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, cookies *session.Cookies, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		cookies: cookies,
		config:  config,
	}
}

// Register はローカルアカウントを登録し、そのままログイン状態にする。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	user, sess, err := h.service.Register(r.Context(), in)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	h.cookies.SetSession(w, sess.ID)
	writeJSON(w, http.StatusCreated, userEnvelope{
		Message: "登録が完了しました。",
		User:    toUserResponse(user),
	})
}

// Login はメールアドレスとパスワードでログインする。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	user, sess, err := h.service.Login(r.Context(), in)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	h.cookies.SetSession(w, sess.ID)
	writeJSON(w, http.StatusOK, userEnvelope{
		Message: "ログインしました。",
		User:    toUserResponse(user),
	})
}

// GoogleLogin はGoogle OAuthフローを開始する。
// GET /auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	// stateをCookieに保存（CSRF対策）
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   oauthStateMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.service.GetLoginURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback はOAuthコールバックを処理し、結果に応じてフロントエンドへリダイレクトする。
// GET /auth/google/callback?code=xxx&state=yyy
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	// 1. stateの検証（CSRF対策）
	state := query.Get("state")
	stateCookie, err := r.Cookie(oauthStateCookie)
	h.clearStateCookie(w)
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(stateCookie.Value), []byte(state)) != 1 {
		slog.Warn("oauth state mismatch")
		h.redirectToFrontend(w, r, frontendLoginFailedPath)
		return
	}

	// 2. 同意拒否などIdP側のエラー
	if idpErr := query.Get("error"); idpErr != "" {
		slog.Warn("oauth provider returned error", slog.String("error", idpErr))
		h.redirectToFrontend(w, r, frontendLoginFailedPath)
		return
	}

	code := query.Get("code")
	if code == "" {
		slog.Warn("oauth callback without authorization code")
		h.redirectToFrontend(w, r, frontendLoginFailedPath)
		return
	}

	// 3. 認証処理
	result, err := h.service.HandleCallback(r.Context(), code)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeEmailAlreadyRegistered {
			h.redirectToFrontend(w, r, frontendAccountExistsPath)
			return
		}
		slog.Error("oauth callback failed", slog.String("error", err.Error()))
		h.redirectToFrontend(w, r, frontendLoginFailedPath)
		return
	}

	// 4a. 初回ログインでロール選択が必要
	if result.Pending != nil {
		h.cookies.SetPendingSignup(w, result.Pending.ID)
		h.redirectToFrontend(w, r, frontendSelectRolePath)
		return
	}

	// 4b. ログイン完了
	h.cookies.SetSession(w, result.Session.ID)
	h.redirectToFrontend(w, r, frontendOAuthCallbackPath)
}

// completeSignupRequest はロール選択リクエストのボディ。
type completeSignupRequest struct {
	UserType string `json:"userType"`
}

// CompleteSignup は外部IdP初回ログインのロール選択を完了する。
// POST /auth/google/complete
func (h *AuthHandler) CompleteSignup(w http.ResponseWriter, r *http.Request) {
	pendingID, ok := h.cookies.ReadPendingSignup(r)
	if !ok {
		middleware.WriteAPIError(w, model.NewPendingSignupNotFoundError())
		return
	}

	var req completeSignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	user, sess, err := h.service.CompleteSignup(r.Context(), pendingID, req.UserType)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodePendingSignupGone {
			h.cookies.ClearPendingSignup(w)
		}
		middleware.WriteError(w, r, err)
		return
	}

	h.cookies.ClearPendingSignup(w)
	h.cookies.SetSession(w, sess.ID)
	writeJSON(w, http.StatusCreated, userEnvelope{
		Message: "登録が完了しました。",
		User:    toUserResponse(user),
	})
}

// Me は現在のログインユーザー情報を返す。セッションミドルウェアの内側で使用する。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		middleware.WriteAPIError(w, model.NewUnauthenticatedError())
		return
	}
	writeJSON(w, http.StatusOK, userEnvelope{User: toUserResponse(user)})
}

// Logout はセッションを破棄する。
// セッション削除に失敗してもCookieはクリアする。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID, ok := h.cookies.ReadSession(r); ok {
		if err := h.service.Logout(r.Context(), sessionID); err != nil {
			slog.Error("failed to logout", slog.String("error", err.Error()))
		}
	}

	h.cookies.ClearSession(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "ログアウトしました。"})
}

func (h *AuthHandler) clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) redirectToFrontend(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, h.config.FrontendURL+path, http.StatusTemporaryRedirect)
}

// generateState はCSRF対策用のランダムなstate値を生成する。
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
