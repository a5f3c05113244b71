package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/user/watchbase/internal/config"
	"github.com/user/watchbase/internal/model"
	"github.com/user/watchbase/internal/repository"
)

// ReconcileService 观看状态对账
// 单个单元（一部电影、一集、一季）的已看切换：
// 配置了远端供应商时先写远端，远端成功才改本地，失败则本地保持原样，
// 两边不会静默分叉；local 模式直接改本地
type ReconcileService struct {
	libRepo  *repository.LibraryRepository
	epRepo   *repository.EpisodeRepository
	snapRepo *repository.SnapshotRepository
	trakt    *TraktService
	tmdbAcct *TMDBAccountService
	config   *config.Config
}

func NewReconcileService(
	repos *repository.Repositories,
	trakt *TraktService,
	tmdbAcct *TMDBAccountService,
	cfg *config.Config,
) *ReconcileService {
	return &ReconcileService{
		libRepo:  repos.Library,
		epRepo:   repos.Episode,
		snapRepo: repos.Snapshot,
		trakt:    trakt,
		tmdbAcct: tmdbAcct,
		config:   cfg,
	}
}

// remoteActive 历史读写只有供应商 A 支持
// 供应商 B（目录服务账号）没有观看历史接口，它的模式下已看切换只改本地
func (s *ReconcileService) remoteActive() bool {
	return s.config.SyncProvider == model.ProviderTrakt && s.config.TraktToken != ""
}

// tmdbActive 想看/收藏列表的远端镜像只有供应商 B 支持
func (s *ReconcileService) tmdbActive() bool {
	return s.config.SyncProvider == model.ProviderTMDB && s.config.TMDBToken != ""
}

// ToggleMovie 切换一部电影的已看状态
// 片库里没有这部电影时直接报错，远端一个字节都不发，两边不会静默分叉
func (s *ReconcileService) ToggleMovie(ctx context.Context, catalogID int, watched bool) error {
	entry, err := s.libRepo.Get(catalogID, true)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("%w: 片库中没有该电影 (ID: %d)", model.ErrNotFound, catalogID)
	}

	now := time.Now()

	if s.remoteActive() {
		var err error
		if watched {
			err = s.trakt.AddMovieToHistory(ctx, catalogID, now.UTC().Format(time.RFC3339))
		} else {
			err = s.trakt.RemoveMovieFromHistory(ctx, catalogID)
		}
		if err != nil {
			// 远端失败时不碰本地，调用方提示用户重试
			return fmt.Errorf("远端同步失败: %w", err)
		}
	}

	category := model.CategoryPlanToWatch
	if watched {
		category = model.CategoryWatched
	}
	if err := s.libRepo.SetCategory(catalogID, true, category); err != nil {
		return err
	}

	if s.remoteActive() {
		if err := s.refreshMovieSnapshot(catalogID, watched, now); err != nil {
			return err
		}
	}

	log.WithFields(log.Fields{"catalog_id": catalogID, "watched": watched}).
		Info("[对账] 电影状态已切换")
	return nil
}

// ToggleEpisodes 切换某剧某季若干集的已看状态（一次远端调用）
func (s *ReconcileService) ToggleEpisodes(ctx context.Context, showCatalogID, season int, episodes []int, watched bool) error {
	if len(episodes) == 0 {
		return nil
	}
	now := time.Now()

	if s.remoteActive() {
		var err error
		if watched {
			err = s.trakt.AddEpisodesToHistory(ctx, showCatalogID, season, episodes, now.UTC().Format(time.RFC3339))
		} else {
			err = s.trakt.RemoveEpisodesFromHistory(ctx, showCatalogID, season, episodes)
		}
		if err != nil {
			return fmt.Errorf("远端同步失败: %w", err)
		}
	}

	if watched {
		if err := s.epRepo.AddEpisodes(showCatalogID, season, episodes, now.Format("2006-01-02")); err != nil {
			return err
		}
	} else {
		if err := s.epRepo.RemoveEpisodes(showCatalogID, season, episodes); err != nil {
			return err
		}
	}

	if s.remoteActive() {
		if err := s.refreshEpisodeSnapshot(showCatalogID, season, episodes, watched, now); err != nil {
			return err
		}
	}
	return nil
}

// ToggleSeason 整季切换
// 逐集独立提交：中途失败会留下混合状态，这是已知的取舍（便宜的进度可见性），
// 返回值里带上已完成的集数，调用方据此提示部分成功
func (s *ReconcileService) ToggleSeason(ctx context.Context, showCatalogID, season int, episodes []int, watched bool) (int, error) {
	done := 0
	for _, episode := range episodes {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if err := s.ToggleEpisodes(ctx, showCatalogID, season, []int{episode}, watched); err != nil {
			return done, fmt.Errorf("第 %d 集切换失败: %w", episode, err)
		}
		done++
	}
	log.WithFields(log.Fields{
		"catalog_id": showCatalogID,
		"season":     season,
		"episodes":   done,
		"watched":    watched,
	}).Info("[对账] 整季状态已切换")
	return done, nil
}

// ChangeCategory 修改条目的观看状态
// tmdb 模式下"想看"状态镜像到远端想看列表：进入想看就远端加入，
// 离开想看就远端移除；远端失败时本地保持原样
func (s *ReconcileService) ChangeCategory(ctx context.Context, catalogID int, isMovie bool, category string) error {
	entry, err := s.libRepo.Get(catalogID, isMovie)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("%w: 片库中没有该条目 (ID: %d)", model.ErrNotFound, catalogID)
	}

	wasPlanned := entry.Category == model.CategoryPlanToWatch
	planned := category == model.CategoryPlanToWatch
	mirror := s.tmdbActive() && planned != wasPlanned

	if mirror {
		if err := s.tmdbAcct.SetWatchlist(ctx, catalogID, isMovie, planned); err != nil {
			return fmt.Errorf("远端同步失败: %w", err)
		}
	}

	if err := s.libRepo.SetCategory(catalogID, isMovie, category); err != nil {
		return err
	}

	if mirror {
		if err := s.refreshListSnapshot(model.CollectionWatchlist, catalogID, isMovie, planned); err != nil {
			return err
		}
	}

	log.WithFields(log.Fields{"catalog_id": catalogID, "category": category}).
		Info("[对账] 观看状态已修改")
	return nil
}

// ToggleFavorite 切换收藏（收藏列表只有供应商 B 有）
func (s *ReconcileService) ToggleFavorite(ctx context.Context, catalogID int, isMovie, favorite bool) error {
	if !s.tmdbActive() {
		return fmt.Errorf("%w: 当前同步供应商不支持收藏", model.ErrValidation)
	}
	if err := s.tmdbAcct.SetFavorite(ctx, catalogID, isMovie, favorite); err != nil {
		return fmt.Errorf("远端同步失败: %w", err)
	}
	return s.refreshListSnapshot(model.CollectionFavorites, catalogID, isMovie, favorite)
}

// ItemStatus 单个单元的本地/远端已看状态
type ItemStatus struct {
	LocalWatched  bool `json:"local_watched"`
	RemoteWatched bool `json:"remote_watched"`
}

// MovieStatus 查询一部电影的两侧状态
func (s *ReconcileService) MovieStatus(catalogID int) (*ItemStatus, error) {
	status := &ItemStatus{}

	entry, err := s.libRepo.Get(catalogID, true)
	if err != nil {
		return nil, err
	}
	status.LocalWatched = entry != nil && entry.Category == model.CategoryWatched

	if s.remoteActive() {
		remote, err := s.snapRepo.ContainsMovie(model.ProviderTrakt, model.CollectionHistory, catalogID)
		if err != nil {
			return nil, err
		}
		status.RemoteWatched = remote
	}
	return status, nil
}

// EpisodesStatus 查询若干集的两侧状态（全部在场才算已看）
func (s *ReconcileService) EpisodesStatus(showCatalogID, season int, episodes []int) (*ItemStatus, error) {
	status := &ItemStatus{}

	local, err := s.epRepo.IsEpisodeWatched(showCatalogID, season, episodes)
	if err != nil {
		return nil, err
	}
	status.LocalWatched = local

	if s.remoteActive() {
		remote := true
		for _, e := range episodes {
			ok, err := s.snapRepo.ContainsEpisode(model.ProviderTrakt, model.CollectionHistory, showCatalogID, season, e)
			if err != nil {
				return nil, err
			}
			if !ok {
				remote = false
				break
			}
		}
		status.RemoteWatched = remote
	}
	return status, nil
}

// refreshListSnapshot 对账成功后刷新供应商 B 的想看/收藏分区
func (s *ReconcileService) refreshListSnapshot(collection string, catalogID int, isMovie, add bool) error {
	mediaType := model.MediaTypeShow
	if isMovie {
		mediaType = model.MediaTypeMovie
	}
	if add {
		return s.snapRepo.AppendRows([]model.RemoteSnapshotEntry{{
			Provider:   model.ProviderTMDB,
			Collection: collection,
			MediaType:  mediaType,
			CatalogID:  catalogID,
			ListedAt:   time.Now().UTC().Format(time.RFC3339),
		}})
	}
	return s.snapRepo.RemoveItem(model.ProviderTMDB, collection, mediaType, catalogID)
}

// refreshMovieSnapshot 对账成功后刷新本地缓存的已看分区
func (s *ReconcileService) refreshMovieSnapshot(catalogID int, watched bool, now time.Time) error {
	if watched {
		return s.snapRepo.AppendRows([]model.RemoteSnapshotEntry{{
			Provider:   model.ProviderTrakt,
			Collection: model.CollectionHistory,
			MediaType:  model.MediaTypeMovie,
			CatalogID:  catalogID,
			ListedAt:   now.UTC().Format(time.RFC3339),
		}})
	}
	return s.snapRepo.RemoveMovie(model.ProviderTrakt, model.CollectionHistory, catalogID)
}

func (s *ReconcileService) refreshEpisodeSnapshot(showCatalogID, season int, episodes []int, watched bool, now time.Time) error {
	if !watched {
		return s.snapRepo.RemoveEpisodes(model.ProviderTrakt, model.CollectionHistory, showCatalogID, season, episodes)
	}
	rows := make([]model.RemoteSnapshotEntry, 0, len(episodes))
	for _, e := range episodes {
		rows = append(rows, model.RemoteSnapshotEntry{
			Provider:      model.ProviderTrakt,
			Collection:    model.CollectionHistory,
			MediaType:     model.MediaTypeEpisode,
			ShowCatalogID: showCatalogID,
			Season:        season,
			Episode:       e,
			ListedAt:      now.UTC().Format(time.RFC3339),
		})
	}
	return s.snapRepo.AppendRows(rows)
}
