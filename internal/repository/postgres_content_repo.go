package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nooronx/cms/internal/model"
)

// contentColumns はSELECT/RETURNINGで使用するカラム一覧。scanContentの順序と一致させること。
const contentColumns = `id, title_en, title_fa, summary_en, summary_fa, body_en, body_fa,
	image_url, category, published, views, created_at, updated_at`

// defaultListLimit はLimit未指定時の一覧取得件数。
const defaultListLimit = 50

// PostgresContentRepo はPostgreSQLを使用した記事リポジトリ。
// コレクションごとに同名のテーブル（news, education）を使用する。
type PostgresContentRepo struct {
	db *sql.DB
}

// NewPostgresContentRepo はPostgresContentRepoを生成する。
func NewPostgresContentRepo(db *sql.DB) *PostgresContentRepo {
	return &PostgresContentRepo{db: db}
}

// tableFor はコレクションに対応するテーブル名を返す。
// テーブル名はクエリに埋め込むため、既知のコレクション以外はエラーにする。
func tableFor(collection model.Collection) (string, error) {
	switch collection {
	case model.CollectionNews:
		return "news", nil
	case model.CollectionEducation:
		return "education", nil
	default:
		return "", fmt.Errorf("unknown collection: %q", collection)
	}
}

// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
func (r *PostgresContentRepo) FindByID(ctx context.Context, collection model.Collection, id string) (*model.Content, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM `+table+` WHERE id = $1`,
		id,
	)
	content, err := scanContent(row, collection)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", collection, err)
	}
	return content, nil
}

// List は記事一覧をcreated_at降順で返す。
func (r *PostgresContentRepo) List(ctx context.Context, collection model.Collection, opts ListOptions) ([]*model.Content, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + contentColumns + ` FROM ` + table)
	if opts.PublishedOnly {
		sb.WriteString(` WHERE published = TRUE`)
	}
	sb.WriteString(` ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`)

	rows, err := r.db.QueryContext(ctx, sb.String(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	var result []*model.Content
	for rows.Next() {
		content, err := scanContent(rows, collection)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", collection, err)
		}
		result = append(result, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", collection, err)
	}
	return result, nil
}

// Create は記事を作成する。
func (r *PostgresContentRepo) Create(ctx context.Context, content *model.Content) error {
	table, err := tableFor(content.Collection)
	if err != nil {
		return err
	}

	now := time.Now()
	if content.CreatedAt.IsZero() {
		content.CreatedAt = now
	}
	if content.UpdatedAt.IsZero() {
		content.UpdatedAt = now
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO `+table+` (id, title_en, title_fa, summary_en, summary_fa, body_en, body_fa,
			image_url, category, published, views, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		content.ID, content.TitleEN, content.TitleFA, content.SummaryEN, content.SummaryFA,
		content.BodyEN, content.BodyFA, content.ImageURL, content.Category, content.Published,
		content.Views, content.CreatedAt, content.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", content.Collection, err)
	}
	return nil
}

// Update は記事の本文系フィールドを更新する。views、created_atは変更しない。
func (r *PostgresContentRepo) Update(ctx context.Context, content *model.Content) error {
	table, err := tableFor(content.Collection)
	if err != nil {
		return err
	}

	content.UpdatedAt = time.Now()

	row := r.db.QueryRowContext(ctx,
		`UPDATE `+table+` SET
			title_en = $2, title_fa = $3, summary_en = $4, summary_fa = $5,
			body_en = $6, body_fa = $7, image_url = $8, category = $9,
			published = $10, updated_at = $11
		 WHERE id = $1
		 RETURNING views, created_at`,
		content.ID, content.TitleEN, content.TitleFA, content.SummaryEN, content.SummaryFA,
		content.BodyEN, content.BodyFA, content.ImageURL, content.Category,
		content.Published, content.UpdatedAt,
	)
	if err := row.Scan(&content.Views, &content.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrContentNotFound
		}
		return fmt.Errorf("failed to update %s: %w", content.Collection, err)
	}
	return nil
}

// IncrementViews は閲覧数を単一のUPDATE文で1加算し、加算後の記事を返す。
// 見つからない場合はnilを返す。
func (r *PostgresContentRepo) IncrementViews(ctx context.Context, collection model.Collection, id string) (*model.Content, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx,
		`UPDATE `+table+` SET views = views + 1 WHERE id = $1 RETURNING `+contentColumns,
		id,
	)
	content, err := scanContent(row, collection)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment %s views: %w", collection, err)
	}
	return content, nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanContent はcontentColumnsの順序で1行を読み取る。
func scanContent(s rowScanner, collection model.Collection) (*model.Content, error) {
	c := &model.Content{Collection: collection}
	err := s.Scan(
		&c.ID, &c.TitleEN, &c.TitleFA, &c.SummaryEN, &c.SummaryFA, &c.BodyEN, &c.BodyFA,
		&c.ImageURL, &c.Category, &c.Published, &c.Views, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// compile-time interface check
var _ PrimaryContentRepository = (*PostgresContentRepo)(nil)
