// Package auth は管理者ログイン、署名付きセッションCookie、認証判定を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nooronx/cms/internal/model"
)

// LoginRecorder はログイン試行結果の記録先。metrics.Collectorが実装する。
type LoginRecorder interface {
	RecordLoginAttempt(success bool)
}

// Service は管理者認証に関するビジネスロジックを提供する。
type Service struct {
	verifier *CredentialVerifier
	sessions *SessionManager
	recorder LoginRecorder
}

// NewService はServiceを生成する。recorderはnilでもよい。
func NewService(verifier *CredentialVerifier, sessions *SessionManager, recorder LoginRecorder) *Service {
	return &Service{
		verifier: verifier,
		sessions: sessions,
		recorder: recorder,
	}
}

// Login は資格情報を検証し、成功した場合はセッションCookieを返す。
// 資格情報が不正な場合は*model.APIError（Invalid credentials）を返す。
func (s *Service) Login(ctx context.Context, username, password string) (*http.Cookie, error) {
	if !s.verifier.Verify(username, password) {
		s.record(false)
		slog.WarnContext(ctx, "admin login rejected")
		return nil, model.NewInvalidCredentialsError()
	}

	cookie, err := s.sessions.Issue(username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	s.record(true)
	slog.InfoContext(ctx, "admin logged in", slog.String("admin", username))
	return cookie, nil
}

// Logout はセッションCookieを失効させるCookieを返す。
// セッションはサーバー側に保存していないため、破棄はCookieの削除のみで完了する。
func (s *Service) Logout(ctx context.Context) *http.Cookie {
	slog.InfoContext(ctx, "admin logged out")
	return s.sessions.Clear()
}

// CurrentSession はリクエストのセッションを検証して返す。
func (s *Service) CurrentSession(r *http.Request) (*model.Session, error) {
	return s.sessions.SessionFromRequest(r)
}

func (s *Service) record(success bool) {
	if s.recorder != nil {
		s.recorder.RecordLoginAttempt(success)
	}
}
