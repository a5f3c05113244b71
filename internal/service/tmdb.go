package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/user/watchbase/internal/config"
	"github.com/user/watchbase/internal/model"
	"github.com/user/watchbase/internal/repository"
	"github.com/user/watchbase/internal/utils"
	"golang.org/x/sync/singleflight"
)

// TMDBService 目录服务客户端
// 抓到的详情写穿到目录缓存表，缓存只增不删（个人片库的档案性质）
type TMDBService struct {
	cacheRepo   *repository.CatalogCacheRepository
	config      *config.Config
	client      *utils.HTTPClient
	group       singleflight.Group
	searchCache *utils.SearchCache[[]SearchResult]
}

func NewTMDBService(repo *repository.CatalogCacheRepository, cfg *config.Config) *TMDBService {
	return &TMDBService{
		cacheRepo:   repo,
		config:      cfg,
		client:      utils.NewHTTPClient(30 * time.Second),
		searchCache: utils.NewSearchCache[[]SearchResult](1000, time.Hour),
	}
}

type tmdbGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type tmdbSeason struct {
	SeasonNumber int `json:"season_number"`
	EpisodeCount int `json:"episode_count"`
}

type tmdbDetailResponse struct {
	ID           int          `json:"id"`
	Title        string       `json:"title"`
	Name         string       `json:"name"` // 电视剧
	Overview     string       `json:"overview"`
	PosterPath   string       `json:"poster_path"`
	BackdropPath string       `json:"backdrop_path"`
	VoteAverage  float64      `json:"vote_average"`
	ReleaseDate  string       `json:"release_date"`
	FirstAirDate string       `json:"first_air_date"` // 电视剧
	Genres       []tmdbGenre  `json:"genres"`
	Seasons      []tmdbSeason `json:"seasons"`
}

// FetchDetail 抓取单个条目详情并写入目录缓存
// 同一条目的并发抓取用 singleflight 合并，短期内的重复抓取走内存备忘
func (s *TMDBService) FetchDetail(ctx context.Context, catalogID int, itemType string) (*model.CatalogDetail, error) {
	key := fmt.Sprintf("tmdb:detail:%s:%d", itemType, catalogID)
	if cached, ok := utils.CacheGet(key); ok {
		return cached.(*model.CatalogDetail), nil
	}

	val, err, _ := s.group.Do(key, func() (interface{}, error) {
		detail, err := s.fetchDetailInternal(ctx, catalogID, itemType)
		if err != nil {
			return nil, err
		}
		utils.CacheSet(key, detail, 5*time.Minute)
		return detail, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*model.CatalogDetail), nil
}

func (s *TMDBService) fetchDetailInternal(ctx context.Context, catalogID int, itemType string) (*model.CatalogDetail, error) {
	mediaPath := "movie"
	if itemType == model.ItemTypeShow {
		mediaPath = "tv"
	}
	reqURL := fmt.Sprintf("%s/%s/%d", s.config.TMDBBaseURL, mediaPath, catalogID)

	var resp tmdbDetailResponse
	if _, err := s.client.GetJSON(ctx, reqURL, utils.BearerHeaders(s.config.TMDBToken), &resp); err != nil {
		return nil, fmt.Errorf("抓取目录详情失败 (ID: %d): %w", catalogID, err)
	}

	detail := s.toDetail(&resp, itemType)
	if err := s.cacheRepo.Upsert(detail); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"catalog_id": catalogID, "item_type": itemType}).
		Debug("[目录] 已刷新详情缓存")
	return detail, nil
}

// toDetail 把目录服务的响应归一化为缓存行
func (s *TMDBService) toDetail(resp *tmdbDetailResponse, itemType string) *model.CatalogDetail {
	name := resp.Title
	if name == "" {
		name = resp.Name
	}
	releaseDate := resp.ReleaseDate
	if releaseDate == "" {
		releaseDate = resp.FirstAirDate
	}

	genreIDs := make([]int, 0, len(resp.Genres))
	for _, g := range resp.Genres {
		genreIDs = append(genreIDs, g.ID)
	}

	// 剧集的季集结构编码为季集字符串（集数按 1..episode_count 展开）
	seasonsEpisodes := ""
	if itemType == model.ItemTypeShow && len(resp.Seasons) > 0 {
		seasons := make(map[int][]int, len(resp.Seasons))
		for _, season := range resp.Seasons {
			episodes := make([]int, 0, season.EpisodeCount)
			for e := 1; e <= season.EpisodeCount; e++ {
				episodes = append(episodes, e)
			}
			seasons[season.SeasonNumber] = episodes
		}
		seasonsEpisodes = utils.EncodeSeasonEpisodes(seasons)
	}

	return &model.CatalogDetail{
		CatalogID:       resp.ID,
		ItemType:        itemType,
		Name:            name,
		Overview:        resp.Overview,
		PosterPath:      resp.PosterPath,
		BackdropPath:    resp.BackdropPath,
		VoteAverage:     resp.VoteAverage,
		ReleaseDate:     releaseDate,
		GenreIDs:        utils.JoinIntList(genreIDs),
		SeasonsEpisodes: seasonsEpisodes,
	}
}

// GetDetail 读缓存，未命中时抓取（read-through）
func (s *TMDBService) GetDetail(ctx context.Context, catalogID int, itemType string) (*model.CatalogDetail, error) {
	detail, err := s.cacheRepo.Get(catalogID, itemType)
	if err != nil {
		return nil, err
	}
	if detail != nil {
		return detail, nil
	}
	return s.FetchDetail(ctx, catalogID, itemType)
}

// SearchResult 目录搜索结果条目
type SearchResult struct {
	CatalogID   int     `json:"catalog_id"`
	ItemType    string  `json:"item_type"`
	Name        string  `json:"name"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date"`
}

type tmdbSearchResponse struct {
	Page       int                  `json:"page"`
	TotalPages int                  `json:"total_pages"`
	Results    []tmdbDetailResponse `json:"results"`
}

// Search 目录搜索，结果缓存在 LRU 里一小时
func (s *TMDBService) Search(ctx context.Context, itemType, query string, page int) ([]SearchResult, error) {
	if page <= 0 {
		page = 1
	}
	cacheKey := fmt.Sprintf("%s:%d:%s", itemType, page, query)
	if results, ok := s.searchCache.Get(cacheKey); ok {
		return results, nil
	}

	mediaPath := "movie"
	if itemType == model.ItemTypeShow {
		mediaPath = "tv"
	}
	reqURL := fmt.Sprintf("%s/search/%s?query=%s&page=%d",
		s.config.TMDBBaseURL, mediaPath, url.QueryEscape(query), page)

	var resp tmdbSearchResponse
	if _, err := s.client.GetJSON(ctx, reqURL, utils.BearerHeaders(s.config.TMDBToken), &resp); err != nil {
		return nil, fmt.Errorf("目录搜索失败: %w", err)
	}

	results := make([]SearchResult, 0, len(resp.Results))
	for _, item := range resp.Results {
		name := item.Title
		if name == "" {
			name = item.Name
		}
		releaseDate := item.ReleaseDate
		if releaseDate == "" {
			releaseDate = item.FirstAirDate
		}
		results = append(results, SearchResult{
			CatalogID:   item.ID,
			ItemType:    itemType,
			Name:        name,
			Overview:    item.Overview,
			PosterPath:  item.PosterPath,
			VoteAverage: item.VoteAverage,
			ReleaseDate: releaseDate,
		})
	}

	s.searchCache.Set(cacheKey, results)
	return results, nil
}
