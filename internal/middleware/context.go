// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	// adminContextKey はリクエストコンテキストに管理者IDを格納するためのキー。
	adminContextKey = contextKey("admin")
	// requestInfoContextKey はロギングミドルウェアが内側のミドルウェアから情報を受け取るためのキー。
	requestInfoContextKey = contextKey("request_info")
)

// requestInfo はロギングミドルウェアが生成し、内側のミドルウェアが書き込むリクエスト単位の情報。
// 1リクエストは1ゴルーチンで処理されるためロックは不要。
type requestInfo struct {
	admin string
}

// AdminFromContext はリクエストコンテキストから管理者IDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func AdminFromContext(ctx context.Context) (string, error) {
	admin, ok := ctx.Value(adminContextKey).(string)
	if !ok || admin == "" {
		return "", fmt.Errorf("admin not found in context")
	}
	return admin, nil
}

// ContextWithAdmin はコンテキストに管理者IDを注入する。
// ロギングミドルウェアの内側で呼ばれた場合はリクエストログにも管理者IDを残す。
func ContextWithAdmin(ctx context.Context, admin string) context.Context {
	if info, ok := ctx.Value(requestInfoContextKey).(*requestInfo); ok {
		info.admin = admin
	}
	return context.WithValue(ctx, adminContextKey, admin)
}
