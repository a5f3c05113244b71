package repository

import (
	"fmt"

	"github.com/user/watchbase/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 打开本地数据库并迁移表结构
// 三组逻辑表：片库（条目+剧集）、目录缓存、远端快照
func InitDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("无法打开数据库: %w", err)
	}

	if err := db.AutoMigrate(
		&model.LibraryEntry{},
		&model.EpisodeEntry{},
		&model.CatalogDetail{},
		&model.RemoteSnapshotEntry{},
	); err != nil {
		return nil, fmt.Errorf("迁移表结构失败: %w", err)
	}

	return db, nil
}

// Repositories 仓库集合
type Repositories struct {
	DB           *gorm.DB
	Library      *LibraryRepository
	Episode      *EpisodeRepository
	CatalogCache *CatalogCacheRepository
	Snapshot     *SnapshotRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:           db,
		Library:      NewLibraryRepository(db),
		Episode:      NewEpisodeRepository(db),
		CatalogCache: NewCatalogCacheRepository(db),
		Snapshot:     NewSnapshotRepository(db),
	}
}

// storageErr 把底层存储错误归入 ErrStorage 分类
// 本地存储失败对当前操作是致命的，调用方不做自动重试
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %v", op, model.ErrStorage, err)
}
