package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/user/watchbase/internal/config"
	"github.com/user/watchbase/internal/model"
)

// SyncScheduler 远端快照定时刷新
// 按固定间隔把当前供应商的常用集合整体刷新一遍；
// 单个集合失败只记日志，下个周期重试
type SyncScheduler struct {
	importer *SnapshotImportService
	config   *config.Config
}

func NewSyncScheduler(importer *SnapshotImportService, cfg *config.Config) *SyncScheduler {
	return &SyncScheduler{importer: importer, config: cfg}
}

// 定时刷新的集合（日历和片单变化慢，不在周期里）
// 供应商 B 没有观看历史集合
var scheduledCollections = map[string][]string{
	model.ProviderTrakt: {
		model.CollectionWatchlist,
		model.CollectionHistory,
		model.CollectionRatings,
		model.CollectionFavorites,
	},
	model.ProviderTMDB: {
		model.CollectionWatchlist,
		model.CollectionFavorites,
		model.CollectionRatings,
	},
}

// Start 启动定时任务，ctx 结束时停止
func (s *SyncScheduler) Start(ctx context.Context) {
	if s.config.SyncInterval <= 0 || s.config.SyncProvider == model.ProviderLocal {
		return
	}

	ticker := time.NewTicker(s.config.SyncInterval)

	// 启动时先跑一轮
	go s.runSync(ctx)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runSync(ctx)
			}
		}
	}()
}

func (s *SyncScheduler) runSync(ctx context.Context) {
	log.Info("[定时同步] 开始刷新远端快照...")

	for _, collection := range scheduledCollections[s.config.SyncProvider] {
		if ctx.Err() != nil {
			return
		}
		count, err := s.importer.ImportCollection(ctx, s.config.SyncProvider, collection)
		if err != nil {
			log.WithFields(log.Fields{"collection": collection, "error": err}).
				Warn("[定时同步] 集合刷新失败")
			continue
		}
		log.WithFields(log.Fields{"collection": collection, "count": count}).
			Info("[定时同步] 集合已刷新")
	}
}
