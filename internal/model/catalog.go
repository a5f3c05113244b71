package model

import (
	"time"
)

// 目录条目类型
const (
	ItemTypeMovie = "movie"
	ItemTypeShow  = "show"
)

// CatalogDetail 目录服务元数据的本地缓存行
// 以 (catalog_id, item_type) 唯一，最新一次抓取覆盖旧值，
// 没有过期时间，只在用户显式清空缓存时删除
type CatalogDetail struct {
	ID              int     `json:"id" gorm:"primaryKey"`
	CatalogID       int     `json:"catalog_id" gorm:"uniqueIndex:idx_catalog_key;not null"`
	ItemType        string  `json:"item_type" gorm:"uniqueIndex:idx_catalog_key"`
	Name            string  `json:"name"`
	Overview        string  `json:"overview"`
	PosterPath      string  `json:"poster_path"`
	BackdropPath    string  `json:"backdrop_path"`
	VoteAverage     float64 `json:"vote_average"`
	ReleaseDate     string  `json:"release_date"`
	GenreIDs        string  `json:"genre_ids"` // 逗号分隔的类型 ID 列表
	SeasonsEpisodes string  `json:"seasons_episodes"`

	UpdatedAt time.Time `json:"updated_at"`
}
