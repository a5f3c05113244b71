package model

import (
	"time"
)

// 同步供应商
const (
	ProviderLocal = "local"
	ProviderTrakt = "trakt"
	ProviderTMDB  = "tmdb"
)

// 远端快照集合名（每个集合对应一个本地分区）
const (
	CollectionWatchlist  = "watchlist"
	CollectionHistory    = "history"
	CollectionRatings    = "ratings"
	CollectionCollection = "collection"
	CollectionFavorites  = "favorites"
	CollectionLists      = "lists"
	CollectionListItems  = "list_items"
	CollectionCalendar   = "calendar"
)

// Collections 全部合法的集合名
var Collections = []string{
	CollectionWatchlist,
	CollectionHistory,
	CollectionRatings,
	CollectionCollection,
	CollectionFavorites,
	CollectionLists,
	CollectionListItems,
	CollectionCalendar,
}

// IsValidCollection 检查集合名是否合法
func IsValidCollection(collection string) bool {
	for _, c := range Collections {
		if c == collection {
			return true
		}
	}
	return false
}

// 远端条目的媒体类型
const (
	MediaTypeMovie   = "movie"
	MediaTypeShow    = "show"
	MediaTypeSeason  = "season"
	MediaTypeEpisode = "episode"
)

// RemoteSnapshotEntry 追踪服务集合条目的本地快照行
// 整个分区 (provider, collection) 每次刷新整体替换，不做增量合并
type RemoteSnapshotEntry struct {
	ID         int    `json:"id" gorm:"primaryKey"`
	Provider   string `json:"provider" gorm:"index:idx_snapshot_part"`
	Collection string `json:"collection" gorm:"index:idx_snapshot_part"`
	MediaType  string `json:"media_type"`

	// RemoteID 是追踪服务自己的 ID，CatalogID 是目录服务的 ID，
	// 两套 ID 空间互不通用，连接键必须区分
	RemoteID      int64 `json:"remote_id"`
	CatalogID     int   `json:"catalog_id"`
	ShowCatalogID int   `json:"show_catalog_id"` // 季/集行所属剧集的目录 ID

	Season  int `json:"season"`
	Episode int `json:"episode"`

	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	ReleaseDate  string  `json:"release_date"`
	Rating       float64 `json:"rating"`
	ListedAt     string  `json:"listed_at"` // 远端记录时间（watched_at / listed_at / rated_at）

	CreatedAt time.Time `json:"created_at"`
}

// JoinCatalogID 返回用于目录缓存富化的连接键。
// 季/集行没有独立的目录元数据行，必须用所属剧集的目录 ID 连接；
// 电影/剧集行用自己的目录 ID。
func (e *RemoteSnapshotEntry) JoinCatalogID() int {
	if e.MediaType == MediaTypeSeason || e.MediaType == MediaTypeEpisode {
		return e.ShowCatalogID
	}
	return e.CatalogID
}

// JoinItemType 返回连接目录缓存时使用的条目类型
func (e *RemoteSnapshotEntry) JoinItemType() string {
	if e.MediaType == MediaTypeMovie {
		return ItemTypeMovie
	}
	return ItemTypeShow
}
