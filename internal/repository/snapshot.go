package repository

import (
	"time"

	"github.com/user/watchbase/internal/model"
	"gorm.io/gorm"
)

type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// ReplaceCollection 整体替换一个集合分区：
// 同一事务内先删光旧行再插入新行，失败时整体回滚，读者看不到半成品
func (r *SnapshotRepository) ReplaceCollection(provider, collection string, rows []model.RemoteSnapshotEntry) error {
	now := time.Now()
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("provider = ? AND collection = ?", provider, collection).
			Delete(&model.RemoteSnapshotEntry{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].ID = 0
			rows[i].Provider = provider
			rows[i].Collection = collection
			rows[i].CreatedAt = now
		}
		return tx.CreateInBatches(rows, 100).Error
	})
	return storageErr("替换快照分区", err)
}

// ListCollection 读取一个集合分区的全部行
func (r *SnapshotRepository) ListCollection(provider, collection string) ([]model.RemoteSnapshotEntry, error) {
	var rows []model.RemoteSnapshotEntry
	err := r.db.Where("provider = ? AND collection = ?", provider, collection).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, storageErr("查询快照分区", err)
	}
	return rows, nil
}

// ContainsMovie 电影是否出现在指定集合的快照里（按目录 ID）
func (r *SnapshotRepository) ContainsMovie(provider, collection string, catalogID int) (bool, error) {
	var count int64
	err := r.db.Model(&model.RemoteSnapshotEntry{}).
		Where("provider = ? AND collection = ? AND media_type = ? AND catalog_id = ?",
			provider, collection, model.MediaTypeMovie, catalogID).
		Count(&count).Error
	if err != nil {
		return false, storageErr("查询快照成员", err)
	}
	return count > 0, nil
}

// ContainsEpisode 某集是否出现在指定集合的快照里（按所属剧集的目录 ID 定位）
func (r *SnapshotRepository) ContainsEpisode(provider, collection string, showCatalogID, season, episode int) (bool, error) {
	var count int64
	err := r.db.Model(&model.RemoteSnapshotEntry{}).
		Where("provider = ? AND collection = ? AND media_type = ? AND show_catalog_id = ? AND season = ? AND episode = ?",
			provider, collection, model.MediaTypeEpisode, showCatalogID, season, episode).
		Count(&count).Error
	if err != nil {
		return false, storageErr("查询快照成员", err)
	}
	return count > 0, nil
}

// AppendRows 往分区追加若干行（对账成功后刷新本地缓存的已看分区）
func (r *SnapshotRepository) AppendRows(rows []model.RemoteSnapshotEntry) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now()
	for i := range rows {
		rows[i].CreatedAt = now
	}
	err := r.db.CreateInBatches(rows, 100).Error
	return storageErr("追加快照行", err)
}

// RemoveItem 从分区里删掉一个条目的行（按媒体类型和目录 ID）
func (r *SnapshotRepository) RemoveItem(provider, collection, mediaType string, catalogID int) error {
	err := r.db.Where("provider = ? AND collection = ? AND media_type = ? AND catalog_id = ?",
		provider, collection, mediaType, catalogID).
		Delete(&model.RemoteSnapshotEntry{}).Error
	return storageErr("删除快照行", err)
}

// RemoveMovie 从分区里删掉一部电影的行
func (r *SnapshotRepository) RemoveMovie(provider, collection string, catalogID int) error {
	return r.RemoveItem(provider, collection, model.MediaTypeMovie, catalogID)
}

// RemoveEpisodes 从分区里删掉某剧某季若干集的行
func (r *SnapshotRepository) RemoveEpisodes(provider, collection string, showCatalogID, season int, episodes []int) error {
	if len(episodes) == 0 {
		return nil
	}
	err := r.db.Where("provider = ? AND collection = ? AND media_type = ? AND show_catalog_id = ? AND season = ? AND episode IN ?",
		provider, collection, model.MediaTypeEpisode, showCatalogID, season, episodes).
		Delete(&model.RemoteSnapshotEntry{}).Error
	return storageErr("删除快照行", err)
}
