package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nooronx/cms/internal/model"
)

const (
	// CookieName はセッションCookieの名前。
	CookieName = "nooronx_auth"

	// tokenIssuer はセッショントークンのiss。
	tokenIssuer = "nooronx"
)

// ErrInvalidSession はセッショントークンが不正・期限切れの場合のエラー。
var ErrInvalidSession = errors.New("invalid session")

// SessionConfig はセッションCookieの設定。
type SessionConfig struct {
	Secret       string
	MaxAge       time.Duration // 既定は24時間
	CookieSecure bool
	Now          func() time.Time
}

// SessionManager は署名付きセッショントークンの発行・検証と、
// セッションCookieの生成を行う。サーバー側にセッション状態は保持しない。
type SessionManager struct {
	secret       []byte
	maxAge       time.Duration
	cookieSecure bool
	now          func() time.Time
}

// NewSessionManager はSessionManagerを生成する。
// 署名鍵が空の場合はエラーを返す。
func NewSessionManager(cfg SessionConfig) (*SessionManager, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &SessionManager{
		secret:       []byte(cfg.Secret),
		maxAge:       cfg.MaxAge,
		cookieSecure: cfg.CookieSecure,
		now:          cfg.Now,
	}, nil
}

// Sign は管理者IDと発行時刻を含むHS256トークンを生成する。
func (m *SessionManager) Sign(admin string) (string, error) {
	if admin == "" {
		return "", fmt.Errorf("admin identity is required")
	}

	now := m.now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   admin,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Validate はトークンの署名・アルゴリズム・有効期限を検証し、セッションを返す。
// 不正な入力に対してはpanicせずErrInvalidSessionを返す。
func (m *SessionManager) Validate(token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.Subject == "" || claims.IssuedAt == nil {
		return nil, ErrInvalidSession
	}

	return &model.Session{
		Admin:     claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Issue は管理者用のセッションCookieを生成する。
// HttpOnly、Path=/、MaxAgeはセッション有効期間。
func (m *SessionManager) Issue(admin string) (*http.Cookie, error) {
	token, err := m.Sign(admin)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.maxAge / time.Second),
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Clear はセッションCookieを即時失効させるCookieを生成する。
func (m *SessionManager) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionFromRequest はリクエストのセッションCookieを検証してセッションを返す。
func (m *SessionManager) SessionFromRequest(r *http.Request) (*model.Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, ErrInvalidSession
	}
	return m.Validate(cookie.Value)
}

// IsAuthenticated はリクエストが有効なセッションCookieを持つかを返す。
func (m *SessionManager) IsAuthenticated(r *http.Request) bool {
	_, err := m.SessionFromRequest(r)
	return err == nil
}

// RequireAuth は保護されたAPIハンドラー用の判定。IsAuthenticatedと同じ結果を返す。
func (m *SessionManager) RequireAuth(r *http.Request) bool {
	return m.IsAuthenticated(r)
}

// HasSessionCookie はセッションCookieが存在するかだけを返す。署名は検証しない。
// ページ単位の入口チェック用で、認可の判断はAPI側のRequireAuthで行う。
func HasSessionCookie(r *http.Request) bool {
	cookie, err := r.Cookie(CookieName)
	return err == nil && cookie.Value != ""
}
