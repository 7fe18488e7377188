// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/roomfinder/internal/auth"
	"github.com/hitoshi/roomfinder/internal/model"
)

const oauthStateCookie = "oauth_state"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	GetLoginURL(state string) string
	HandleCallback(ctx context.Context, code string) (*auth.SessionResult, error)
	CompleteRegistration(ctx context.Context, preRegToken, name, registrationNumber string) (string, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	FrontendURL        string // コールバック後のリダイレクト先
	CookieSecure       bool
	AllowedEmailSuffix string // ドメイン拒否時のメッセージ用
}

// AuthHandler はOAuth認証と登録完了のHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	config   AuthHandlerConfig
	validate *validator.Validate
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	config.FrontendURL = strings.TrimRight(config.FrontendURL, "/")
	return &AuthHandler{
		service:  service,
		config:   config,
		validate: newValidator(),
	}
}

// registerRequest は登録完了リクエストのボディ。
type registerRequest struct {
	Name               string `json:"name" validate:"required,max=100"`
	RegistrationNumber string `json:"registrationNumber" validate:"required,regno"`
}

// registerResponse は登録完了レスポンス。
type registerResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Login はGoogle OAuthフローを開始する。
// GET /auth/google/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
		handleServiceError(w, err)
		return
	}

	// stateをCookieに保存（CSRF対策）
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   600, // 10分
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.service.GetLoginURL(state), http.StatusTemporaryRedirect)
}

// Callback はOAuthコールバックを処理する。
// GET /auth/google/callback?code=xxx&state=yyy
//
// 成功時は新規ユーザーなら登録画面、既存ユーザーならホームへトークン付きでリダイレクトする。
// 失敗時はトークンを発行せず、未認証のランディングページへリダイレクトする。
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	// 1. stateの検証（CSRF対策）
	state := query.Get("state")
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || stateCookie.Value != state {
		slog.Warn("oauth state mismatch", slog.String("query_state", state))
		h.redirectToLanding(w, r, model.ErrCodeInvalidRequest)
		return
	}
	h.clearStateCookie(w)

	// 2. IdP側での拒否
	if providerErr := query.Get("error"); providerErr != "" {
		slog.Info("oauth consent denied", slog.String("provider_error", providerErr))
		h.redirectToLanding(w, r, model.ErrCodeUnauthorized)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.redirectToLanding(w, r, model.ErrCodeInvalidRequest)
		return
	}

	// 3. 認証とトークン発行
	result, err := h.service.HandleCallback(r.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrPolicyRejection):
			h.redirectToLanding(w, r, model.ErrCodeEmailDomainNotAllowed)
		case errors.Is(err, auth.ErrStoreUnavailable):
			slog.Error("oauth callback failed", slog.String("error", err.Error()))
			h.redirectToLanding(w, r, model.ErrCodeServiceUnavailable)
		default:
			slog.Error("oauth callback failed", slog.String("error", err.Error()))
			h.redirectToLanding(w, r, model.ErrCodeUnauthorized)
		}
		return
	}

	// 4. フロントエンドにリダイレクト
	target := h.config.FrontendURL + "/?"
	if result.IsNewUser {
		target = h.config.FrontendURL + "/register?"
	}
	http.Redirect(w, r, target+url.Values{"token": {result.Token}}.Encode(), http.StatusTemporaryRedirect)
}

// Register は登録前トークンの持ち主のユーザーレコードを作成し、完全なトークンを返す。
// POST /api/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req registerRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	fullToken, err := h.service.CompleteRegistration(r.Context(), token, req.Name, req.RegistrationNumber)
	if err != nil {
		if errors.Is(err, auth.ErrPolicyRejection) {
			writeAPIErrorResponse(w, http.StatusForbidden, model.NewEmailDomainNotAllowedError(h.config.AllowedEmailSuffix))
			return
		}
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, registerResponse{
		Message: "Profile updated successfully",
		Token:   fullToken,
	})
}

// redirectToLanding は未認証のランディングページへエラーコード付きでリダイレクトする。
func (h *AuthHandler) redirectToLanding(w http.ResponseWriter, r *http.Request, code string) {
	target := h.config.FrontendURL + "/?" + url.Values{"error": {code}}.Encode()
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// generateState はCSRF対策用のランダムなstate値を生成する。
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
