package service

import (
	"context"
	"fmt"
	"time"

	"github.com/user/watchbase/internal/config"
	"github.com/user/watchbase/internal/model"
	"github.com/user/watchbase/internal/utils"
)

// 追踪服务 B 的客户端（目录服务账号）
// 按媒体类型的 REST 资源，直接用目录 ID 做键，分页信息在响应体里
type TMDBAccountService struct {
	config *config.Config
	client *utils.HTTPClient
}

func NewTMDBAccountService(cfg *config.Config) *TMDBAccountService {
	return &TMDBAccountService{
		config: cfg,
		client: utils.NewHTTPClient(30 * time.Second),
	}
}

type tmdbAccountItem struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"` // 电视剧
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"` // 电视剧
	Rating       float64 `json:"rating"`         // 仅 rated 集合
}

type tmdbAccountPage struct {
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
	Results    []tmdbAccountItem `json:"results"`
}

// AccountItem 归一化后的账号集合条目
type AccountItem struct {
	CatalogID    int
	MediaType    string
	Title        string
	Overview     string
	PosterPath   string
	BackdropPath string
	VoteAverage  float64
	ReleaseDate  string
	Rating       float64
}

// FetchCollection 拉取一个账号集合（电影和剧集两个资源各自分页，合并返回）
// 这家服务只有 watchlist / favorites / ratings 三个集合
func (s *TMDBAccountService) FetchCollection(ctx context.Context, collection string) ([]AccountItem, error) {
	var resource string
	switch collection {
	case model.CollectionWatchlist:
		resource = "watchlist"
	case model.CollectionFavorites:
		resource = "favorite"
	case model.CollectionRatings:
		resource = "rated"
	default:
		return nil, fmt.Errorf("%w: 该服务不支持集合 %s", model.ErrValidation, collection)
	}

	movies, err := s.fetchPaged(ctx, resource, "movies", model.MediaTypeMovie)
	if err != nil {
		return nil, err
	}
	shows, err := s.fetchPaged(ctx, resource, "tv", model.MediaTypeShow)
	if err != nil {
		return nil, err
	}
	return append(movies, shows...), nil
}

func (s *TMDBAccountService) fetchPaged(ctx context.Context, resource, mediaPath, mediaType string) ([]AccountItem, error) {
	var all []AccountItem
	page := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		reqURL := fmt.Sprintf("%s/account/%s/%s/%s?page=%d&session_id=%s",
			s.config.TMDBBaseURL, s.config.TMDBAccountID, resource, mediaPath, page, s.config.TMDBSessionID)
		var resp tmdbAccountPage
		if _, err := s.client.GetJSON(ctx, reqURL, utils.BearerHeaders(s.config.TMDBToken), &resp); err != nil {
			return nil, fmt.Errorf("拉取账号集合 %s/%s 第 %d 页失败: %w", resource, mediaPath, page, err)
		}

		for _, item := range resp.Results {
			title := item.Title
			if title == "" {
				title = item.Name
			}
			releaseDate := item.ReleaseDate
			if releaseDate == "" {
				releaseDate = item.FirstAirDate
			}
			all = append(all, AccountItem{
				CatalogID:    item.ID,
				MediaType:    mediaType,
				Title:        title,
				Overview:     item.Overview,
				PosterPath:   item.PosterPath,
				BackdropPath: item.BackdropPath,
				VoteAverage:  item.VoteAverage,
				ReleaseDate:  releaseDate,
				Rating:       item.Rating,
			})
		}

		if resp.TotalPages <= page || len(resp.Results) == 0 {
			return all, nil
		}
		page++
	}
}

type tmdbAccountMutation struct {
	MediaType string `json:"media_type"`
	MediaID   int    `json:"media_id"`
	Watchlist *bool  `json:"watchlist,omitempty"`
	Favorite  *bool  `json:"favorite,omitempty"`
}

// SetWatchlist 往账号的想看列表里增删一个条目
func (s *TMDBAccountService) SetWatchlist(ctx context.Context, catalogID int, isMovie, add bool) error {
	mediaType := "tv"
	if isMovie {
		mediaType = "movie"
	}
	reqURL := fmt.Sprintf("%s/account/%s/watchlist?session_id=%s",
		s.config.TMDBBaseURL, s.config.TMDBAccountID, s.config.TMDBSessionID)
	body := tmdbAccountMutation{MediaType: mediaType, MediaID: catalogID, Watchlist: &add}
	if _, err := s.client.PostJSON(ctx, reqURL, utils.BearerHeaders(s.config.TMDBToken), body, nil); err != nil {
		return fmt.Errorf("更新远端想看列表失败: %w", err)
	}
	return nil
}

// SetFavorite 往账号的收藏列表里增删一个条目
func (s *TMDBAccountService) SetFavorite(ctx context.Context, catalogID int, isMovie, add bool) error {
	mediaType := "tv"
	if isMovie {
		mediaType = "movie"
	}
	reqURL := fmt.Sprintf("%s/account/%s/favorite?session_id=%s",
		s.config.TMDBBaseURL, s.config.TMDBAccountID, s.config.TMDBSessionID)
	body := tmdbAccountMutation{MediaType: mediaType, MediaID: catalogID, Favorite: &add}
	if _, err := s.client.PostJSON(ctx, reqURL, utils.BearerHeaders(s.config.TMDBToken), body, nil); err != nil {
		return fmt.Errorf("更新远端收藏失败: %w", err)
	}
	return nil
}
