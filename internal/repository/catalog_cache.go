package repository

import (
	"errors"
	"time"

	"github.com/user/watchbase/internal/model"
	"github.com/user/watchbase/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogCacheRepository struct {
	db *gorm.DB
}

func NewCatalogCacheRepository(db *gorm.DB) *CatalogCacheRepository {
	return &CatalogCacheRepository{db: db}
}

// Upsert 写入目录元数据缓存，最新一次抓取覆盖旧值，不做版本和冲突检测
func (r *CatalogCacheRepository) Upsert(detail *model.CatalogDetail) error {
	detail.UpdatedAt = time.Now()
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "catalog_id"}, {Name: "item_type"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "overview", "poster_path", "backdrop_path", "vote_average",
			"release_date", "genre_ids", "seasons_episodes", "updated_at",
		}),
	}).Create(detail).Error
	return storageErr("保存目录缓存", err)
}

// Get 读取缓存行，不存在返回 nil
func (r *CatalogCacheRepository) Get(catalogID int, itemType string) (*model.CatalogDetail, error) {
	var detail model.CatalogDetail
	err := r.db.Where("catalog_id = ? AND item_type = ?", catalogID, itemType).First(&detail).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storageErr("查询目录缓存", err)
	}
	return &detail, nil
}

// SeasonsFor 返回缓存中某部剧的季号列表，升序；无缓存返回空
func (r *CatalogCacheRepository) SeasonsFor(catalogID int) ([]int, error) {
	detail, err := r.Get(catalogID, model.ItemTypeShow)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, nil
	}
	return utils.SeasonNumbers(detail.SeasonsEpisodes), nil
}

// EpisodesFor 返回缓存中某季的集号列表，升序
func (r *CatalogCacheRepository) EpisodesFor(catalogID, season int) ([]int, error) {
	detail, err := r.Get(catalogID, model.ItemTypeShow)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, nil
	}
	return utils.EpisodeNumbers(detail.SeasonsEpisodes, season), nil
}

// Clear 清空全部目录缓存（用户显式操作，平时缓存只增不删）
func (r *CatalogCacheRepository) Clear() error {
	err := r.db.Where("1 = 1").Delete(&model.CatalogDetail{}).Error
	return storageErr("清空目录缓存", err)
}
