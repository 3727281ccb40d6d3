package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/nooronx/cms/internal/model"
	"github.com/nooronx/cms/internal/repository"
	"github.com/nooronx/cms/internal/security"
)

const (
	// maxTitleLength はタイトルの最大文字数（rune数）。
	maxTitleLength = 300
	// maxSummaryLength は概要の最大文字数（rune数）。
	maxSummaryLength = 2000
	// maxCategoryLength はカテゴリの最大文字数（rune数）。
	maxCategoryLength = 100
	// MaxListLimit は一覧取得で指定できる最大件数。
	MaxListLimit = 100
)

// PrimaryFailureRecorder はプライマリストアの失敗の記録先。
type PrimaryFailureRecorder interface {
	RecordPrimaryFailure(collection string)
}

// Service は記事の一覧・取得・作成・更新を提供する。
type Service struct {
	primary   repository.PrimaryContentRepository
	fallback  repository.FallbackContentRepository
	sanitizer security.ContentSanitizerService
	recorder  PrimaryFailureRecorder
	newID     func() string
}

// NewService はServiceを生成する。
// primaryがnilの場合は読み書きともフォールバックストアのみを使用する。recorderはnilでもよい。
func NewService(
	primary repository.PrimaryContentRepository,
	fallback repository.FallbackContentRepository,
	sanitizer security.ContentSanitizerService,
	recorder PrimaryFailureRecorder,
) *Service {
	return &Service{
		primary:   primary,
		fallback:  fallback,
		sanitizer: sanitizer,
		recorder:  recorder,
		newID:     uuid.NewString,
	}
}

// List は記事一覧を返す。プライマリストアが失敗した場合はフォールバックストアから返す。
func (s *Service) List(ctx context.Context, collection model.Collection, opts repository.ListOptions) ([]*model.Content, error) {
	if !collection.Valid() {
		return nil, model.NewInvalidInputError(fmt.Sprintf("unknown collection: %s", collection))
	}
	if opts.Limit < 0 || opts.Limit > MaxListLimit {
		return nil, model.NewInvalidInputError(fmt.Sprintf("limit must be between 1 and %d", MaxListLimit))
	}
	if opts.Offset < 0 {
		return nil, model.NewInvalidInputError("offset must not be negative")
	}

	if s.primary != nil {
		items, err := s.primary.List(ctx, collection, opts)
		if err == nil {
			return nonNil(items), nil
		}
		s.warnPrimary(ctx, collection, "", err)
	}

	items, err := s.fallback.List(ctx, collection, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list fallback %s: %w", collection, err)
	}
	return nonNil(items), nil
}

// Get は指定記事を返す。プライマリストアで失敗または未検出の場合はフォールバックストアを参照する。
// どちらにも存在しない場合はmodel.ErrContentNotFoundを返す。
func (s *Service) Get(ctx context.Context, collection model.Collection, id string) (*model.Content, error) {
	if !collection.Valid() {
		return nil, model.NewInvalidInputError(fmt.Sprintf("unknown collection: %s", collection))
	}

	if s.primary != nil {
		item, err := s.primary.FindByID(ctx, collection, id)
		if err != nil {
			s.warnPrimary(ctx, collection, id, err)
		} else if item != nil {
			return item, nil
		}
	}

	item, err := s.fallback.FindByID(ctx, collection, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read fallback %s: %w", collection, err)
	}
	if item == nil {
		return nil, fmt.Errorf("%s %s: %w", collection, id, model.ErrContentNotFound)
	}
	return item, nil
}

// Create は記事を作成する。IDはUUID v4で採番し、閲覧数は0から始める。
// 書き込み先はプライマリストア、未設定の場合はフォールバックストア。
func (s *Service) Create(ctx context.Context, collection model.Collection, in model.ContentInput) (*model.Content, error) {
	if !collection.Valid() {
		return nil, model.NewInvalidInputError(fmt.Sprintf("unknown collection: %s", collection))
	}
	c, err := s.build(in)
	if err != nil {
		return nil, err
	}
	c.ID = s.newID()
	c.Collection = collection
	c.Views = 0

	if err := s.writer().Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", collection, err)
	}

	slog.InfoContext(ctx, "content created",
		slog.String("collection", string(collection)),
		slog.String("id", c.ID),
	)
	return c, nil
}

// Update は記事の本文系フィールドを更新する。閲覧数と作成日時は維持する。
// 存在しない場合はmodel.ErrContentNotFoundを返す。
func (s *Service) Update(ctx context.Context, collection model.Collection, id string, in model.ContentInput) (*model.Content, error) {
	if !collection.Valid() {
		return nil, model.NewInvalidInputError(fmt.Sprintf("unknown collection: %s", collection))
	}
	c, err := s.build(in)
	if err != nil {
		return nil, err
	}
	c.ID = id
	c.Collection = collection

	if err := s.writer().Update(ctx, c); err != nil {
		if errors.Is(err, model.ErrContentNotFound) {
			return nil, fmt.Errorf("%s %s: %w", collection, id, model.ErrContentNotFound)
		}
		return nil, fmt.Errorf("failed to update %s: %w", collection, err)
	}

	slog.InfoContext(ctx, "content updated",
		slog.String("collection", string(collection)),
		slog.String("id", id),
	)
	return c, nil
}

// writer は書き込み先のストアを返す。
func (s *Service) writer() repository.ContentRepository {
	if s.primary != nil {
		return s.primary
	}
	return s.fallback
}

// build は入力値を検証・サニタイズして記事を組み立てる。
func (s *Service) build(in model.ContentInput) (*model.Content, error) {
	c := &model.Content{
		TitleEN:   s.sanitizer.SanitizeText(in.TitleEN),
		TitleFA:   s.sanitizer.SanitizeText(in.TitleFA),
		SummaryEN: s.sanitizer.SanitizeText(in.SummaryEN),
		SummaryFA: s.sanitizer.SanitizeText(in.SummaryFA),
		BodyEN:    s.sanitizer.SanitizeHTML(in.BodyEN),
		BodyFA:    s.sanitizer.SanitizeHTML(in.BodyFA),
		ImageURL:  strings.TrimSpace(in.ImageURL),
		Category:  s.sanitizer.SanitizeText(in.Category),
		Published: in.Published,
	}

	if c.TitleEN == "" && c.TitleFA == "" {
		return nil, model.NewInvalidInputError("title_en or title_fa is required")
	}
	if utf8.RuneCountInString(c.TitleEN) > maxTitleLength || utf8.RuneCountInString(c.TitleFA) > maxTitleLength {
		return nil, model.NewInvalidInputError(fmt.Sprintf("title must be at most %d characters", maxTitleLength))
	}
	if utf8.RuneCountInString(c.SummaryEN) > maxSummaryLength || utf8.RuneCountInString(c.SummaryFA) > maxSummaryLength {
		return nil, model.NewInvalidInputError(fmt.Sprintf("summary must be at most %d characters", maxSummaryLength))
	}
	if utf8.RuneCountInString(c.Category) > maxCategoryLength {
		return nil, model.NewInvalidInputError(fmt.Sprintf("category must be at most %d characters", maxCategoryLength))
	}
	if !security.IsAllowedImageURL(c.ImageURL) {
		return nil, model.NewInvalidInputError("image_url must be an https URL or a site path")
	}
	return c, nil
}

func (s *Service) warnPrimary(ctx context.Context, collection model.Collection, id string, err error) {
	slog.WarnContext(ctx, "primary store unavailable, falling back",
		slog.String("collection", string(collection)),
		slog.String("id", id),
		slog.String("error", err.Error()),
	)
	if s.recorder != nil {
		s.recorder.RecordPrimaryFailure(string(collection))
	}
}

func nonNil(items []*model.Content) []*model.Content {
	if items == nil {
		return []*model.Content{}
	}
	return items
}
