package model

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// 批量导入可映射的字段名
const (
	FieldCatalogID       = "catalog_id"
	FieldIsMovie         = "is_movie"
	FieldTitle           = "title"
	FieldOverview        = "overview"
	FieldPosterPath      = "poster_path"
	FieldBackdropPath    = "backdrop_path"
	FieldReleaseDate     = "release_date"
	FieldGenreIDs        = "genre_ids"
	FieldCategory        = "category"
	FieldPersonalRating  = "personal_rating"
	FieldCommunityRating = "community_rating"
	FieldStartDate       = "start_date"
	FieldFinishDate      = "finish_date"
	FieldSeason          = "season"
	FieldEpisode         = "episode"
	FieldWatchDate       = "watch_date"
	FieldReview          = "review"
)

var importFields = map[string]bool{
	FieldCatalogID:       true,
	FieldIsMovie:         true,
	FieldTitle:           true,
	FieldOverview:        true,
	FieldPosterPath:      true,
	FieldBackdropPath:    true,
	FieldReleaseDate:     true,
	FieldGenreIDs:        true,
	FieldCategory:        true,
	FieldPersonalRating:  true,
	FieldCommunityRating: true,
	FieldStartDate:       true,
	FieldFinishDate:      true,
	FieldSeason:          true,
	FieldEpisode:         true,
	FieldWatchDate:       true,
	FieldReview:          true,
}

// ImportMapping 批量导入的列映射，由调用方声明，不做自动探测。
// 只在一次导入会话内有效，不落库。
type ImportMapping struct {
	Delimiter      string         `json:"delimiter" validate:"required,len=1"`
	Columns        map[string]int `json:"columns" validate:"required,min=1"` // 字段名 -> 列下标（0 起）
	DefaultIsMovie *bool          `json:"default_is_movie"`
}

var validate = validator.New()

// Validate 校验映射本身是否可用
func (m *ImportMapping) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("%w: 列映射不完整: %v", ErrValidation, err)
	}
	for field, col := range m.Columns {
		if !importFields[field] {
			return fmt.Errorf("%w: 未知的映射字段: %s", ErrValidation, field)
		}
		if col < 0 {
			return fmt.Errorf("%w: 字段 %s 的列下标不能为负", ErrValidation, field)
		}
	}
	return nil
}

// Column 返回字段映射到的列下标，未映射返回 -1
func (m *ImportMapping) Column(field string) int {
	if col, ok := m.Columns[field]; ok {
		return col
	}
	return -1
}
