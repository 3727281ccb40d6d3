package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/nooronx/cms/internal/auth"
)

// NewPageGate は保護ページ用のエッジゲートを返す。
//
// prefix配下のパスに対して、セッションCookieの存在のみを確認する。
// トークンの検証は行わない。Cookieが無い場合はloginPathへ302でリダイレクトし、
// 元のパスをnextクエリに付与する。prefix以外のパスはそのまま通す。
func NewPageGate(prefix, loginPath string) func(next http.Handler) http.Handler {
	prefix = strings.TrimRight(prefix, "/")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !underPrefix(r.URL.Path, prefix) || auth.HasSessionCookie(r) {
				next.ServeHTTP(w, r)
				return
			}

			target := loginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusFound)
		})
	}
}

// underPrefix はpathがprefix自身またはその配下かどうかを返す。
// "/administrator" のような前方一致だけのパスは対象外とする。
func underPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
