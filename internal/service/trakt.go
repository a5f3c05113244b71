package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/user/watchbase/internal/config"
	"github.com/user/watchbase/internal/model"
	"github.com/user/watchbase/internal/utils"
)

// 追踪服务 A 的客户端（sync 风格接口，自己的 ID 空间）
// 历史读写走 /sync/history，集合分页靠 X-Pagination-Page-Count 响应头
type TraktService struct {
	config *config.Config
	client *utils.HTTPClient
}

func NewTraktService(cfg *config.Config) *TraktService {
	return &TraktService{
		config: cfg,
		client: utils.NewHTTPClient(30 * time.Second),
	}
}

const traktPageLimit = 100

// TraktIDs 追踪服务的多套外部 ID
type TraktIDs struct {
	Trakt int64  `json:"trakt,omitempty"`
	Slug  string `json:"slug,omitempty"`
	TMDB  int    `json:"tmdb,omitempty"`
	IMDB  string `json:"imdb,omitempty"`
}

// TraktMedia 电影/剧集的公共字段
type TraktMedia struct {
	Title string   `json:"title"`
	Year  int      `json:"year"`
	IDs   TraktIDs `json:"ids"`
}

// TraktSeasonRef 集合条目里的季引用
type TraktSeasonRef struct {
	Number int      `json:"number"`
	IDs    TraktIDs `json:"ids"`
}

// TraktEpisodeRef 集合条目里的集引用
type TraktEpisodeRef struct {
	Season int      `json:"season"`
	Number int      `json:"number"`
	Title  string   `json:"title"`
	IDs    TraktIDs `json:"ids"`
}

// TraktList 用户片单
type TraktList struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ItemCount   int      `json:"item_count"`
	IDs         TraktIDs `json:"ids"`
}

// TraktItem 集合条目的通用结构，不同集合填不同的字段子集
type TraktItem struct {
	Type       string           `json:"type"`
	WatchedAt  string           `json:"watched_at"`
	ListedAt   string           `json:"listed_at"`
	RatedAt    string           `json:"rated_at"`
	FirstAired string           `json:"first_aired"`
	Rating     float64          `json:"rating"`
	Movie      *TraktMedia      `json:"movie"`
	Show       *TraktMedia      `json:"show"`
	Season     *TraktSeasonRef  `json:"season"`
	Episode    *TraktEpisodeRef `json:"episode"`
	List       *TraktList       `json:"list"`
}

func (s *TraktService) headers() map[string]string {
	h := utils.BearerHeaders(s.config.TraktToken)
	h["trakt-api-version"] = "2"
	h["trakt-api-key"] = s.config.TraktClientID
	return h
}

// FetchCollection 拉取一个集合的全部分页
// 任何一页失败整体报错，调用方不拿半份数据
func (s *TraktService) FetchCollection(ctx context.Context, collection string) ([]TraktItem, error) {
	switch collection {
	case model.CollectionWatchlist:
		return s.fetchPaged(ctx, "/sync/watchlist")
	case model.CollectionHistory:
		return s.fetchPaged(ctx, "/sync/history")
	case model.CollectionRatings:
		return s.fetchPaged(ctx, "/sync/ratings")
	case model.CollectionCollection:
		return s.fetchPaged(ctx, "/sync/collection/movies")
	case model.CollectionFavorites:
		return s.fetchPaged(ctx, "/sync/favorites")
	case model.CollectionLists:
		return s.fetchLists(ctx)
	case model.CollectionListItems:
		return s.fetchAllListItems(ctx)
	case model.CollectionCalendar:
		return s.fetchCalendar(ctx)
	default:
		return nil, fmt.Errorf("%w: 未知的集合: %s", model.ErrValidation, collection)
	}
}

// fetchPaged 按页拉取直到响应头声明的总页数
func (s *TraktService) fetchPaged(ctx context.Context, path string) ([]TraktItem, error) {
	var all []TraktItem
	page := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		reqURL := fmt.Sprintf("%s%s?page=%d&limit=%d", s.config.TraktBaseURL, path, page, traktPageLimit)
		var items []TraktItem
		header, err := s.client.GetJSON(ctx, reqURL, s.headers(), &items)
		if err != nil {
			return nil, fmt.Errorf("拉取 %s 第 %d 页失败: %w", path, page, err)
		}
		all = append(all, items...)

		pageCount, _ := strconv.Atoi(header.Get("X-Pagination-Page-Count"))
		if pageCount <= page || len(items) == 0 {
			return all, nil
		}
		page++
	}
}

func (s *TraktService) fetchLists(ctx context.Context) ([]TraktItem, error) {
	reqURL := s.config.TraktBaseURL + "/users/me/lists"
	var lists []TraktList
	if _, err := s.client.GetJSON(ctx, reqURL, s.headers(), &lists); err != nil {
		return nil, fmt.Errorf("拉取片单失败: %w", err)
	}
	items := make([]TraktItem, 0, len(lists))
	for i := range lists {
		items = append(items, TraktItem{Type: "list", List: &lists[i]})
	}
	return items, nil
}

// fetchAllListItems 逐个片单拉取其中的条目
func (s *TraktService) fetchAllListItems(ctx context.Context) ([]TraktItem, error) {
	lists, err := s.fetchLists(ctx)
	if err != nil {
		return nil, err
	}
	var all []TraktItem
	for _, l := range lists {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		items, err := s.fetchPaged(ctx, fmt.Sprintf("/users/me/lists/%d/items", l.List.IDs.Trakt))
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return all, nil
}

// fetchCalendar 未来 30 天的播出日历（不分页）
func (s *TraktService) fetchCalendar(ctx context.Context) ([]TraktItem, error) {
	start := time.Now().Format("2006-01-02")
	reqURL := fmt.Sprintf("%s/calendars/my/shows/%s/30", s.config.TraktBaseURL, start)
	var items []TraktItem
	if _, err := s.client.GetJSON(ctx, reqURL, s.headers(), &items); err != nil {
		return nil, fmt.Errorf("拉取播出日历失败: %w", err)
	}
	for i := range items {
		if items[i].Type == "" {
			items[i].Type = "episode"
		}
	}
	return items, nil
}

// /sync/history 请求体，按对方的 ID 空间组织
type traktSyncEpisode struct {
	Number    int    `json:"number"`
	WatchedAt string `json:"watched_at,omitempty"`
}

type traktSyncSeason struct {
	Number   int                `json:"number"`
	Episodes []traktSyncEpisode `json:"episodes,omitempty"`
}

type traktSyncMovie struct {
	IDs       TraktIDs `json:"ids"`
	WatchedAt string   `json:"watched_at,omitempty"`
}

type traktSyncShow struct {
	IDs     TraktIDs          `json:"ids"`
	Seasons []traktSyncSeason `json:"seasons,omitempty"`
}

type traktSyncBody struct {
	Movies []traktSyncMovie `json:"movies,omitempty"`
	Shows  []traktSyncShow  `json:"shows,omitempty"`
}

func (s *TraktService) postSync(ctx context.Context, path string, body *traktSyncBody) error {
	reqURL := s.config.TraktBaseURL + path
	if _, err := s.client.PostJSON(ctx, reqURL, s.headers(), body, nil); err != nil {
		return fmt.Errorf("写入远端历史失败: %w", err)
	}
	return nil
}

// AddMovieToHistory 把一部电影加入远端观看历史
func (s *TraktService) AddMovieToHistory(ctx context.Context, catalogID int, watchedAt string) error {
	return s.postSync(ctx, "/sync/history", &traktSyncBody{
		Movies: []traktSyncMovie{{IDs: TraktIDs{TMDB: catalogID}, WatchedAt: watchedAt}},
	})
}

// RemoveMovieFromHistory 把一部电影移出远端观看历史
func (s *TraktService) RemoveMovieFromHistory(ctx context.Context, catalogID int) error {
	return s.postSync(ctx, "/sync/history/remove", &traktSyncBody{
		Movies: []traktSyncMovie{{IDs: TraktIDs{TMDB: catalogID}}},
	})
}

// AddEpisodesToHistory 把某剧某季的若干集加入远端观看历史
func (s *TraktService) AddEpisodesToHistory(ctx context.Context, showCatalogID, season int, episodes []int, watchedAt string) error {
	eps := make([]traktSyncEpisode, 0, len(episodes))
	for _, e := range episodes {
		eps = append(eps, traktSyncEpisode{Number: e, WatchedAt: watchedAt})
	}
	return s.postSync(ctx, "/sync/history", &traktSyncBody{
		Shows: []traktSyncShow{{
			IDs:     TraktIDs{TMDB: showCatalogID},
			Seasons: []traktSyncSeason{{Number: season, Episodes: eps}},
		}},
	})
}

// RemoveEpisodesFromHistory 把若干集移出远端观看历史
func (s *TraktService) RemoveEpisodesFromHistory(ctx context.Context, showCatalogID, season int, episodes []int) error {
	eps := make([]traktSyncEpisode, 0, len(episodes))
	for _, e := range episodes {
		eps = append(eps, traktSyncEpisode{Number: e})
	}
	return s.postSync(ctx, "/sync/history/remove", &traktSyncBody{
		Shows: []traktSyncShow{{
			IDs:     TraktIDs{TMDB: showCatalogID},
			Seasons: []traktSyncSeason{{Number: season, Episodes: eps}},
		}},
	})
}
