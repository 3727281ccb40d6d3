package handler

import (
	"html/template"
	"log/slog"
	"net/http"
)

// pageTemplate は管理画面とログイン画面のプレースホルダー。
// 画面の描画はフロントエンドが担当し、ここではルートの存在とゲートの動作のみを提供する。
var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body data-page="{{.Page}}"{{if .Next}} data-next="{{.Next}}"{{end}}></body>
</html>
`))

type pageData struct {
	Title string
	Page  string
	Next  string
}

// AdminPage は管理画面のプレースホルダーを返す。
// GET /admin/*（エッジゲートの内側）
func AdminPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, pageData{Title: "Nooronx Admin", Page: "admin"})
}

// LoginPage はログイン画面のプレースホルダーを返す。
// GET /login?next=
func LoginPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, pageData{Title: "Nooronx Login", Page: "login", Next: r.URL.Query().Get("next")})
}

func renderPage(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTemplate.Execute(w, data); err != nil {
		slog.Error("failed to render page", slog.String("error", err.Error()))
	}
}
