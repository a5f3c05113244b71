package model

import (
	"time"
)

// 观看状态分类
const (
	CategoryPlanToWatch = "plan_to_watch"
	CategoryWatching    = "watching"
	CategoryWatched     = "watched"
	CategoryOnHold      = "on_hold"
	CategoryDropped     = "dropped"
)

// Categories 全部合法的观看状态
var Categories = []string{
	CategoryPlanToWatch,
	CategoryWatching,
	CategoryWatched,
	CategoryOnHold,
	CategoryDropped,
}

// IsValidCategory 检查观看状态是否合法
func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// LibraryEntry 本地片库条目
// 以 (catalog_id, is_movie) 唯一，电影和剧集可以共用同一个目录 ID
type LibraryEntry struct {
	ID              int      `json:"id" gorm:"primaryKey"`
	CatalogID       int      `json:"catalog_id" gorm:"uniqueIndex:idx_library_key;not null"`
	IsMovie         bool     `json:"is_movie" gorm:"uniqueIndex:idx_library_key"`
	Title           string   `json:"title"`
	Overview        string   `json:"overview"`
	PosterPath      string   `json:"poster_path"`
	BackdropPath    string   `json:"backdrop_path"`
	ReleaseDate     string   `json:"release_date"` // YYYY-MM-DD，可为空
	GenreIDs        string   `json:"genre_ids"`    // 逗号分隔的类型 ID 列表
	Category        string   `json:"category" gorm:"index"`
	PersonalRating  *float64 `json:"personal_rating"`
	CommunityRating float64  `json:"community_rating"`
	StartDate       string   `json:"start_date"`  // 个人开始观看日期，可为空
	FinishDate      string   `json:"finish_date"` // 个人看完日期，可为空

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EpisodeEntry 已观看的单集记录
// 以 (catalog_id, season, episode) 唯一，父条目删除时级联删除
type EpisodeEntry struct {
	ID        int      `json:"id" gorm:"primaryKey"`
	CatalogID int      `json:"catalog_id" gorm:"uniqueIndex:idx_episode_key;not null"`
	Season    int      `json:"season" gorm:"uniqueIndex:idx_episode_key"`
	Episode   int      `json:"episode" gorm:"uniqueIndex:idx_episode_key"`
	WatchDate string   `json:"watch_date"` // YYYY-MM-DD，可为空
	Rating    *float64 `json:"rating"`
	Review    string   `json:"review"`
}
