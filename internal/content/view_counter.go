// Package content はニュース・教育記事のドメインロジックを提供する。
//
// 読み取りと閲覧数の加算は、まずプライマリストアを試し、失敗または未検出の場合に
// フォールバックストアへ切り替える2段構えで行う。
package content

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nooronx/cms/internal/model"
	"github.com/nooronx/cms/internal/repository"
)

// StoreKind は応答したストアの種別。呼び出しごとに決まり、永続化はしない。
type StoreKind string

const (
	// StorePrimary はプライマリストア（PostgreSQL）。
	StorePrimary StoreKind = "primary"
	// StoreFallback はフォールバックストア（インメモリ）。
	StoreFallback StoreKind = "fallback"
)

// IncrementResult は閲覧数加算の結果。
type IncrementResult struct {
	Views int
	Store StoreKind
}

// StoreRecorder はストアの利用状況の記録先。metrics.Collectorが実装する。
type StoreRecorder interface {
	RecordViewIncrement(collection string, store string)
	RecordPrimaryFailure(collection string)
}

// attempt は1つのストアに対する試行結果。
// item == nil かつ err == nil は「記事が存在しない」を表す。
type attempt struct {
	item *model.Content
	err  error
}

// ViewCounter は記事の閲覧数を加算する。
//
// プライマリストアでは単一文のアトミック加算を行う。
// フォールバックストアでは読み取り後に上書き保存するため、同時加算は後勝ちになる。
type ViewCounter struct {
	primary  repository.PrimaryContentRepository
	fallback repository.FallbackContentRepository
	recorder StoreRecorder
}

// NewViewCounter はViewCounterを生成する。
// primaryがnilの場合はフォールバックストアのみを使用する。recorderはnilでもよい。
func NewViewCounter(
	primary repository.PrimaryContentRepository,
	fallback repository.FallbackContentRepository,
	recorder StoreRecorder,
) *ViewCounter {
	return &ViewCounter{
		primary:  primary,
		fallback: fallback,
		recorder: recorder,
	}
}

// Increment は指定記事の閲覧数を1加算し、加算後の値と応答したストアを返す。
// どちらのストアにも存在しない場合はmodel.ErrContentNotFoundを返す。
func (v *ViewCounter) Increment(ctx context.Context, collection model.Collection, id string) (*IncrementResult, error) {
	if !collection.Valid() {
		return nil, model.NewInvalidInputError(fmt.Sprintf("unknown collection: %s", collection))
	}
	if id == "" {
		return nil, model.NewInvalidInputError("id is required")
	}

	if v.primary != nil {
		a := v.tryPrimary(ctx, collection, id)
		if a.err == nil && a.item != nil {
			v.recordIncrement(collection, StorePrimary)
			return &IncrementResult{Views: a.item.Views, Store: StorePrimary}, nil
		}
		if a.err != nil {
			slog.WarnContext(ctx, "primary store unavailable, falling back",
				slog.String("collection", string(collection)),
				slog.String("id", id),
				slog.String("error", a.err.Error()),
			)
			if v.recorder != nil {
				v.recorder.RecordPrimaryFailure(string(collection))
			}
		}
	}

	a := v.tryFallback(ctx, collection, id)
	if a.err != nil {
		return nil, a.err
	}
	if a.item == nil {
		return nil, fmt.Errorf("%s %s: %w", collection, id, model.ErrContentNotFound)
	}

	v.recordIncrement(collection, StoreFallback)
	return &IncrementResult{Views: a.item.Views, Store: StoreFallback}, nil
}

// tryPrimary はプライマリストアでアトミックに加算する。
func (v *ViewCounter) tryPrimary(ctx context.Context, collection model.Collection, id string) attempt {
	item, err := v.primary.IncrementViews(ctx, collection, id)
	if err != nil {
		return attempt{err: err}
	}
	return attempt{item: item}
}

// tryFallback はフォールバックストアから読み取り、加算して上書き保存する。
func (v *ViewCounter) tryFallback(ctx context.Context, collection model.Collection, id string) attempt {
	item, err := v.fallback.FindByID(ctx, collection, id)
	if err != nil {
		return attempt{err: fmt.Errorf("failed to read fallback %s: %w", collection, err)}
	}
	if item == nil {
		return attempt{}
	}

	item.Views++
	if err := v.fallback.Save(ctx, item); err != nil {
		return attempt{err: fmt.Errorf("failed to save fallback %s: %w", collection, err)}
	}
	return attempt{item: item}
}

func (v *ViewCounter) recordIncrement(collection model.Collection, store StoreKind) {
	if v.recorder != nil {
		v.recorder.RecordViewIncrement(string(collection), string(store))
	}
}
