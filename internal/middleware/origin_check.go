package middleware

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/nooronx/cms/internal/model"
)

// NewOriginCheckMiddleware はクロスサイトからの状態変更リクエストを拒否するミドルウェアを返す。
//
// 安全なメソッド（GET, HEAD, OPTIONS）は検証をスキップする。
// 状態変更メソッドは、Originヘッダーが存在する場合に限り、
// 許可オリジンまたはリクエスト先ホストと同一オリジンであることを要求する。
// Originを送らないクライアント（curl、サーバー間通信）は通過させる。
func NewOriginCheckMiddleware(allowedOrigin string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			if origin == "" || origin == allowedOrigin || sameHost(origin, r.Host) {
				next.ServeHTTP(w, r)
				return
			}

			slog.WarnContext(r.Context(), "cross-origin write rejected",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("origin", origin),
			)
			WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenOriginError())
		})
	}
}

// isSafeMethod はHTTPメソッドが安全（読み取り専用）かどうかを判定する。
func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// sameHost はOriginのホスト部がリクエスト先ホストと一致するかどうかを返す。
func sameHost(origin, host string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Host == host
}
