package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/user/watchbase/internal/model"
	"github.com/user/watchbase/internal/repository"
)

// SnapshotImportService 远端快照导入
// 把追踪服务的一个集合整页拉回来，归一化后整体替换本地分区；
// 中途任何抓取/解析失败都不落盘，上一次的好数据保持原样
type SnapshotImportService struct {
	trakt     *TraktService
	tmdbAcct  *TMDBAccountService
	snapRepo  *repository.SnapshotRepository
	cacheRepo *repository.CatalogCacheRepository
}

func NewSnapshotImportService(
	trakt *TraktService,
	tmdbAcct *TMDBAccountService,
	snapRepo *repository.SnapshotRepository,
	cacheRepo *repository.CatalogCacheRepository,
) *SnapshotImportService {
	return &SnapshotImportService{
		trakt:     trakt,
		tmdbAcct:  tmdbAcct,
		snapRepo:  snapRepo,
		cacheRepo: cacheRepo,
	}
}

// ImportCollection 同步一个集合，返回写入的行数
func (s *SnapshotImportService) ImportCollection(ctx context.Context, provider, collection string) (int, error) {
	if !model.IsValidCollection(collection) {
		return 0, fmt.Errorf("%w: 未知的集合: %s", model.ErrValidation, collection)
	}

	var rows []model.RemoteSnapshotEntry
	switch provider {
	case model.ProviderTrakt:
		items, err := s.trakt.FetchCollection(ctx, collection)
		if err != nil {
			return 0, fmt.Errorf("同步集合 %s 失败: %w", collection, err)
		}
		for i := range items {
			rows = append(rows, s.normalizeTraktItem(&items[i]))
		}
	case model.ProviderTMDB:
		items, err := s.tmdbAcct.FetchCollection(ctx, collection)
		if err != nil {
			return 0, fmt.Errorf("同步集合 %s 失败: %w", collection, err)
		}
		for _, item := range items {
			rows = append(rows, model.RemoteSnapshotEntry{
				MediaType:    item.MediaType,
				CatalogID:    item.CatalogID,
				Title:        item.Title,
				Overview:     item.Overview,
				PosterPath:   item.PosterPath,
				BackdropPath: item.BackdropPath,
				VoteAverage:  item.VoteAverage,
				ReleaseDate:  item.ReleaseDate,
				Rating:       item.Rating,
			})
		}
	default:
		return 0, fmt.Errorf("%w: 未知的同步供应商: %s", model.ErrValidation, provider)
	}

	for i := range rows {
		s.enrich(&rows[i])
	}

	if err := s.snapRepo.ReplaceCollection(provider, collection, rows); err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"provider":   provider,
		"collection": collection,
		"count":      len(rows),
	}).Info("[快照] 集合同步完成")
	return len(rows), nil
}

// normalizeTraktItem 把追踪服务的条目归一化为快照行
// 类型按载荷形状判定；季/集行的目录连接键是所属剧集的 ID，不是自己的
func (s *SnapshotImportService) normalizeTraktItem(item *TraktItem) model.RemoteSnapshotEntry {
	entry := model.RemoteSnapshotEntry{
		MediaType: classifyTraktItem(item),
		Rating:    item.Rating,
		ListedAt:  firstNonEmpty(item.WatchedAt, item.ListedAt, item.RatedAt, item.FirstAired),
	}

	switch entry.MediaType {
	case model.MediaTypeMovie:
		entry.RemoteID = item.Movie.IDs.Trakt
		entry.CatalogID = item.Movie.IDs.TMDB
		entry.Title = item.Movie.Title
	case model.MediaTypeShow:
		entry.RemoteID = item.Show.IDs.Trakt
		entry.CatalogID = item.Show.IDs.TMDB
		entry.Title = item.Show.Title
	case model.MediaTypeSeason:
		entry.RemoteID = item.Season.IDs.Trakt
		entry.Season = item.Season.Number
		if item.Show != nil {
			entry.ShowCatalogID = item.Show.IDs.TMDB
			entry.Title = item.Show.Title
		}
	case model.MediaTypeEpisode:
		entry.RemoteID = item.Episode.IDs.Trakt
		entry.CatalogID = item.Episode.IDs.TMDB
		entry.Season = item.Episode.Season
		entry.Episode = item.Episode.Number
		entry.Title = item.Episode.Title
		if item.Show != nil {
			entry.ShowCatalogID = item.Show.IDs.TMDB
			if entry.Title == "" {
				entry.Title = item.Show.Title
			}
		}
	default:
		// 片单等没有媒体载荷的行只保留名字和远端 ID
		if item.List != nil {
			entry.RemoteID = item.List.IDs.Trakt
			entry.Title = item.List.Name
			entry.Overview = item.List.Description
		}
	}
	return entry
}

// classifyTraktItem 按载荷形状判定条目类型
func classifyTraktItem(item *TraktItem) string {
	switch item.Type {
	case model.MediaTypeMovie, model.MediaTypeShow, model.MediaTypeSeason, model.MediaTypeEpisode:
		return item.Type
	}
	switch {
	case item.Episode != nil:
		return model.MediaTypeEpisode
	case item.Season != nil:
		return model.MediaTypeSeason
	case item.Movie != nil:
		return model.MediaTypeMovie
	case item.Show != nil:
		return model.MediaTypeShow
	}
	return ""
}

// enrich 用目录缓存补全展示字段
// 缓存没有对应行时留空，绝不为此阻塞导入
func (s *SnapshotImportService) enrich(entry *model.RemoteSnapshotEntry) {
	joinID := entry.JoinCatalogID()
	if joinID == 0 {
		return
	}
	detail, err := s.cacheRepo.Get(joinID, entry.JoinItemType())
	if err != nil || detail == nil {
		return
	}
	if entry.Title == "" {
		entry.Title = detail.Name
	}
	if entry.Overview == "" {
		entry.Overview = detail.Overview
	}
	if entry.PosterPath == "" {
		entry.PosterPath = detail.PosterPath
	}
	if entry.BackdropPath == "" {
		entry.BackdropPath = detail.BackdropPath
	}
	if entry.VoteAverage == 0 {
		entry.VoteAverage = detail.VoteAverage
	}
	if entry.ReleaseDate == "" {
		entry.ReleaseDate = detail.ReleaseDate
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
