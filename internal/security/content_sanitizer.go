// Package security は記事コンテンツのサニタイズを提供する。
//
// 管理画面から投稿される本文HTMLは公開ページにそのまま埋め込まれるため、
// 保存前にbluemondayの許可リストポリシーで安全なタグと属性のみを残す。
// ペルシア語本文のためにdir属性（rtl/ltr/auto）を許可する。
package security

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService は記事テキストのサニタイズ機能のインターフェース。
type ContentSanitizerService interface {
	// SanitizeHTML は本文HTMLをサニタイズして安全なHTMLを返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeHTML(rawHTML string) string
	// SanitizeText はタグをすべて除去したプレーンテキストを返す。
	SanitizeText(raw string) string
}

// dirPattern はdir属性として許可する値。
var dirPattern = regexp.MustCompile(`^(rtl|ltr|auto)$`)

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーは生成後に変更しないため、並行利用できる。
type contentSanitizer struct {
	html *bluemonday.Policy
	text *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// 本文ポリシーの内容:
//   - 許可タグ: h2, h3, h4, p, br, a, ul, ol, li, blockquote, pre, code, strong, em, img, figure, figcaption
//   - script, iframe, style および全てのon*イベント属性は除去
//   - p, h2-h4, li, blockquote, figure のdir属性（rtl/ltr/auto）
//   - imgのsrc属性とaのhref属性: httpsスキームのみ
//   - aタグ: target="_blank" と rel="noopener noreferrer" を自動付与
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"h2", "h3", "h4",
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
		"figure", "figcaption",
	)

	p.AllowAttrs("dir").Matching(dirPattern).OnElements(
		"p", "h2", "h3", "h4", "li", "blockquote", "figure",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return u.Host != ""
	})

	return &contentSanitizer{
		html: p,
		text: bluemonday.StrictPolicy(),
	}
}

// SanitizeHTML は本文HTMLをサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) SanitizeHTML(rawHTML string) string {
	return strings.TrimSpace(s.html.Sanitize(rawHTML))
}

// SanitizeText はタグをすべて除去したプレーンテキストを返す。
func (s *contentSanitizer) SanitizeText(raw string) string {
	return strings.TrimSpace(s.text.Sanitize(raw))
}

// IsAllowedImageURL は記事のカバー画像URLとして許可されるかを返す。
// 空文字、サイト内の絶対パス、httpsの完全URLのみ許可する。
func IsAllowedImageURL(raw string) bool {
	if raw == "" {
		return true
	}
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return !strings.ContainsAny(raw, "\"'<> ")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "https" && u.Host != ""
}
