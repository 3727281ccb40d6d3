// Package model はドメインモデルを定義する。
package model

import "time"

// Collection はコンテンツの種別（保存先コレクション）を表す。
type Collection string

const (
	// CollectionNews はニュース記事のコレクション。
	CollectionNews Collection = "news"
	// CollectionEducation は教育記事のコレクション。
	CollectionEducation Collection = "education"
)

// Collections は有効なコレクションの一覧を返す。
func Collections() []Collection {
	return []Collection{CollectionNews, CollectionEducation}
}

// Valid はコレクションが既知の値かどうかを返す。
func (c Collection) Valid() bool {
	switch c {
	case CollectionNews, CollectionEducation:
		return true
	default:
		return false
	}
}

// Content はニュース・教育記事を表す。
// テキストは英語（EN）とペルシア語（FA）の2言語で保持する。
// Viewsは記事の生存期間を通じて減少しない。
type Content struct {
	ID         string     `json:"id"`
	Collection Collection `json:"collection"`
	TitleEN    string     `json:"title_en"`
	TitleFA    string     `json:"title_fa"`
	SummaryEN  string     `json:"summary_en"` // サニタイズ済み
	SummaryFA  string     `json:"summary_fa"` // サニタイズ済み
	BodyEN     string     `json:"body_en"`    // サニタイズ済みHTML
	BodyFA     string     `json:"body_fa"`    // サニタイズ済みHTML
	ImageURL   string     `json:"image_url"`
	Category   string     `json:"category"`
	Published  bool       `json:"published"`
	Views      int        `json:"views"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Clone はContentのコピーを返す。
func (c *Content) Clone() *Content {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// ContentInput は記事の作成・更新リクエストの入力値。
// Views、ID、タイムスタンプは入力から受け付けない。
type ContentInput struct {
	TitleEN   string `json:"title_en"`
	TitleFA   string `json:"title_fa"`
	SummaryEN string `json:"summary_en"`
	SummaryFA string `json:"summary_fa"`
	BodyEN    string `json:"body_en"`
	BodyFA    string `json:"body_fa"`
	ImageURL  string `json:"image_url"`
	Category  string `json:"category"`
	Published bool   `json:"published"`
}
