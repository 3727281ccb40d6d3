package model

import "time"

// Session は管理者のログインセッションを表す。
// 署名済みトークンから復元され、サーバー側には保存しない。
type Session struct {
	Admin     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
