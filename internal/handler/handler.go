package handler

import (
	"github.com/user/watchbase/internal/config"
	"github.com/user/watchbase/internal/repository"
	"github.com/user/watchbase/internal/service"
)

// Handler HTTP 处理器
// 这层只是命令入口：解析请求、调服务、回 JSON，不放业务逻辑
type Handler struct {
	Repos     *repository.Repositories
	Config    *config.Config
	TMDB      *service.TMDBService
	Importer  *service.SnapshotImportService
	Reconcile *service.ReconcileService
	BulkImp   *service.BulkImportService
}

// NewHandler 创建处理器
func NewHandler(repos *repository.Repositories, cfg *config.Config) *Handler {
	tmdb := service.NewTMDBService(repos.CatalogCache, cfg)
	trakt := service.NewTraktService(cfg)
	tmdbAcct := service.NewTMDBAccountService(cfg)

	return &Handler{
		Repos:     repos,
		Config:    cfg,
		TMDB:      tmdb,
		Importer:  service.NewSnapshotImportService(trakt, tmdbAcct, repos.Snapshot, repos.CatalogCache),
		Reconcile: service.NewReconcileService(repos, trakt, tmdbAcct, cfg),
		BulkImp:   service.NewBulkImportService(repos.Library, tmdb, cfg),
	}
}
