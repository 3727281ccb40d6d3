package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nooronx/cms/internal/model"
)

// MemoryContentRepo はプライマリストアに到達できない場合に使用するインメモリの記事リポジトリ。
// 格納・取得のたびにコピーを作るため、呼び出し元と内部状態は共有されない。
//
// アトミックな加算は提供しない。閲覧数の更新はFindByIDとSaveの2ステップで行われるため、
// 同時に更新された場合は後勝ちになる。
type MemoryContentRepo struct {
	mu    sync.RWMutex
	items map[model.Collection]map[string]*model.Content
}

// NewMemoryContentRepo は空のMemoryContentRepoを生成する。
func NewMemoryContentRepo() *MemoryContentRepo {
	r := &MemoryContentRepo{}
	r.Reset()
	return r
}

// Reset は全コレクションを空にする。主にテストで使用する。
func (r *MemoryContentRepo) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = make(map[model.Collection]map[string]*model.Content)
	for _, c := range model.Collections() {
		r.items[c] = make(map[string]*model.Content)
	}
}

// Seed は記事をまとめて格納する。同一IDの記事は上書きされる。
func (r *MemoryContentRepo) Seed(contents []*model.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range contents {
		bucket, ok := r.items[c.Collection]
		if !ok {
			return fmt.Errorf("unknown collection: %q", c.Collection)
		}
		if c.ID == "" {
			return fmt.Errorf("seed %s item without id", c.Collection)
		}
		bucket[c.ID] = c.Clone()
	}
	return nil
}

// Len は指定コレクションの件数を返す。
func (r *MemoryContentRepo) Len(collection model.Collection) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items[collection])
}

// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
func (r *MemoryContentRepo) FindByID(_ context.Context, collection model.Collection, id string) (*model.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket, ok := r.items[collection]
	if !ok {
		return nil, fmt.Errorf("unknown collection: %q", collection)
	}
	return bucket[id].Clone(), nil
}

// List は記事一覧をcreated_at降順で返す。
func (r *MemoryContentRepo) List(_ context.Context, collection model.Collection, opts ListOptions) ([]*model.Content, error) {
	r.mu.RLock()
	bucket, ok := r.items[collection]
	if !ok {
		r.mu.RUnlock()
		return nil, fmt.Errorf("unknown collection: %q", collection)
	}
	all := make([]*model.Content, 0, len(bucket))
	for _, c := range bucket {
		if opts.PublishedOnly && !c.Published {
			continue
		}
		all = append(all, c.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []*model.Content{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// Create は記事を作成する。同一IDが存在する場合はエラーを返す。
func (r *MemoryContentRepo) Create(_ context.Context, content *model.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, ok := r.items[content.Collection]
	if !ok {
		return fmt.Errorf("unknown collection: %q", content.Collection)
	}
	if _, exists := bucket[content.ID]; exists {
		return fmt.Errorf("%s item already exists: %s", content.Collection, content.ID)
	}

	now := time.Now()
	if content.CreatedAt.IsZero() {
		content.CreatedAt = now
	}
	if content.UpdatedAt.IsZero() {
		content.UpdatedAt = now
	}
	bucket[content.ID] = content.Clone()
	return nil
}

// Update は記事を更新する。views、created_atは既存の値を維持する。
func (r *MemoryContentRepo) Update(_ context.Context, content *model.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, ok := r.items[content.Collection]
	if !ok {
		return fmt.Errorf("unknown collection: %q", content.Collection)
	}
	stored, exists := bucket[content.ID]
	if !exists {
		return model.ErrContentNotFound
	}

	content.Views = stored.Views
	content.CreatedAt = stored.CreatedAt
	content.UpdatedAt = time.Now()
	bucket[content.ID] = content.Clone()
	return nil
}

// Save は記事を丸ごと上書き保存する。
func (r *MemoryContentRepo) Save(_ context.Context, content *model.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, ok := r.items[content.Collection]
	if !ok {
		return fmt.Errorf("unknown collection: %q", content.Collection)
	}
	bucket[content.ID] = content.Clone()
	return nil
}

// compile-time interface check
var _ FallbackContentRepository = (*MemoryContentRepo)(nil)
