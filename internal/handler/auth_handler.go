package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nooronx/cms/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Login は資格情報を検証し、セッションCookieを返す。
	Login(ctx context.Context, username, password string) (*http.Cookie, error)
	// Logout はセッションCookieを失効させるCookieを返す。
	Logout(ctx context.Context) *http.Cookie
	// CurrentSession はリクエストのセッションを検証して返す。
	CurrentSession(r *http.Request) (*model.Session, error)
}

// AuthHandler は管理者ログイン関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// successResponse はログイン・ログアウト成功時のレスポンス。
type successResponse struct {
	Success bool `json:"success"`
}

// messageResponse はログインAPIのエラーレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// sessionResponse はセッション確認のレスポンス。
type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	User          string `json:"user,omitempty"`
}

// Login は資格情報を検証し、セッションCookieを発行する。
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		// 不正なボディはログイン処理の失敗として扱う
		slog.WarnContext(r.Context(), "failed to decode login body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Server error"})
		return
	}

	cookie, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeUnauthorized {
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: apiErr.Message})
			return
		}
		slog.ErrorContext(r.Context(), "login failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Server error"})
		return
	}

	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Logout はセッションCookieを削除する。
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.service.Logout(r.Context()))
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Session は現在のセッション状態を返す。
// GET /api/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.CurrentSession(r)
	if err != nil || session == nil {
		writeJSON(w, http.StatusUnauthorized, sessionResponse{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: true, User: session.Admin})
}
