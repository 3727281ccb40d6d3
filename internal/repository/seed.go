package repository

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nooronx/cms/internal/model"
)

// seedFile はフォールバック用シードJSONの形式。
//
//	{"news": [{...}], "education": [{...}]}
type seedFile struct {
	News      []*model.Content `json:"news"`
	Education []*model.Content `json:"education"`
}

// LoadSeedFile はシードJSONを読み込み、コレクションを設定した記事一覧を返す。
// 閲覧数が負の記事はエラーとする。
func LoadSeedFile(path string) ([]*model.Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var sf seedFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	var contents []*model.Content
	add := func(collection model.Collection, items []*model.Content) error {
		for i, c := range items {
			if c == nil || c.ID == "" {
				return fmt.Errorf("%s[%d]: id is required", collection, i)
			}
			if c.Views < 0 {
				return fmt.Errorf("%s[%d]: views must not be negative", collection, i)
			}
			c.Collection = collection
			contents = append(contents, c)
		}
		return nil
	}
	if err := add(model.CollectionNews, sf.News); err != nil {
		return nil, err
	}
	if err := add(model.CollectionEducation, sf.Education); err != nil {
		return nil, err
	}
	return contents, nil
}
