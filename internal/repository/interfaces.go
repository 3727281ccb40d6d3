// Package repository はコンテンツ永続化のインターフェースと実装を提供する。
//
// プライマリストア（PostgreSQL）とフォールバックストア（インメモリ）の2種類があり、
// どちらも同じContentRepositoryを満たす。閲覧数の加算方法だけが異なる:
// プライマリは単一文のアトミック加算、フォールバックは読み取り後の上書き保存。
package repository

import (
	"context"

	"github.com/nooronx/cms/internal/model"
)

// ListOptions は記事一覧取得の条件。
type ListOptions struct {
	Limit         int
	Offset        int
	PublishedOnly bool
}

// ContentRepository は記事データの永続化インターフェース。
type ContentRepository interface {
	// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, collection model.Collection, id string) (*model.Content, error)

	// List は記事一覧をcreated_at降順で返す。
	List(ctx context.Context, collection model.Collection, opts ListOptions) ([]*model.Content, error)

	// Create は記事を作成する。同一IDが存在する場合はエラーを返す。
	Create(ctx context.Context, content *model.Content) error

	// Update は記事を更新する。Viewsは変更しない。
	// 存在しない場合はmodel.ErrContentNotFoundを返す。
	Update(ctx context.Context, content *model.Content) error
}

// PrimaryContentRepository はアトミックな閲覧数加算をサポートするストア。
type PrimaryContentRepository interface {
	ContentRepository

	// IncrementViews は閲覧数を1つ加算し、加算後の記事を返す。
	// 単一文で実行するため同時呼び出しでも加算は失われない。
	// 見つからない場合はnilを返す。
	IncrementViews(ctx context.Context, collection model.Collection, id string) (*model.Content, error)
}

// FallbackContentRepository はレコード単位の上書きのみをサポートするストア。
type FallbackContentRepository interface {
	ContentRepository

	// Save は記事を丸ごと上書き保存する。存在しない場合は作成する。
	Save(ctx context.Context, content *model.Content) error
}
