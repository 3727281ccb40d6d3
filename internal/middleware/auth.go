package middleware

import (
	"log/slog"
	"net/http"

	"github.com/nooronx/cms/internal/model"
)

// SessionValidator はセッションCookieを完全に検証するインターフェース。
// auth.SessionManagerが実装する。
type SessionValidator interface {
	// SessionFromRequest は署名・アルゴリズム・有効期限を検証し、セッションを返す。
	SessionFromRequest(r *http.Request) (*model.Session, error)
}

// NewRequireAuthMiddleware はAPI用の認証ミドルウェアを返す。
// セッショントークンを完全に検証し、管理者IDをリクエストコンテキストに注入する。
// 検証に失敗したリクエストには401を返す。
func NewRequireAuthMiddleware(validator SessionValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := validator.SessionFromRequest(r)
			if err != nil || session == nil {
				if err != nil {
					slog.DebugContext(r.Context(), "session rejected",
						slog.String("path", r.URL.Path),
						slog.String("error", err.Error()),
					)
				}
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			ctx := ContextWithAdmin(r.Context(), session.Admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
