package repository

import (
	"github.com/user/watchbase/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EpisodeRepository struct {
	db *gorm.DB
}

func NewEpisodeRepository(db *gorm.DB) *EpisodeRepository {
	return &EpisodeRepository{db: db}
}

// AddEpisodes 批量标记剧集为已看，幂等：
// 已存在的行只刷新观看日期，不报错
func (r *EpisodeRepository) AddEpisodes(catalogID, season int, episodes []int, watchDate string) error {
	if len(episodes) == 0 {
		return nil
	}
	rows := make([]model.EpisodeEntry, 0, len(episodes))
	for _, e := range dedupe(episodes) {
		rows = append(rows, model.EpisodeEntry{
			CatalogID: catalogID,
			Season:    season,
			Episode:   e,
			WatchDate: watchDate,
		})
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "catalog_id"}, {Name: "season"}, {Name: "episode"}},
		DoUpdates: clause.AssignmentColumns([]string{"watch_date"}),
	}).Create(&rows).Error
	return storageErr("标记剧集已看", err)
}

// RemoveEpisodes 批量取消已看标记，删除不存在的行是空操作
func (r *EpisodeRepository) RemoveEpisodes(catalogID, season int, episodes []int) error {
	if len(episodes) == 0 {
		return nil
	}
	err := r.db.Where("catalog_id = ? AND season = ? AND episode IN ?", catalogID, season, episodes).
		Delete(&model.EpisodeEntry{}).Error
	return storageErr("取消剧集已看", err)
}

// IsEpisodeWatched 给定集号是否全部已看
func (r *EpisodeRepository) IsEpisodeWatched(catalogID, season int, episodes []int) (bool, error) {
	unique := dedupe(episodes)
	if len(unique) == 0 {
		return false, nil
	}
	var count int64
	err := r.db.Model(&model.EpisodeEntry{}).
		Where("catalog_id = ? AND season = ? AND episode IN ?", catalogID, season, unique).
		Count(&count).Error
	if err != nil {
		return false, storageErr("查询剧集已看状态", err)
	}
	return count == int64(len(unique)), nil
}

// ListBySeason 列出某季的已看剧集，按集号升序
func (r *EpisodeRepository) ListBySeason(catalogID, season int) ([]model.EpisodeEntry, error) {
	var rows []model.EpisodeEntry
	err := r.db.Where("catalog_id = ? AND season = ?", catalogID, season).
		Order("episode ASC").
		Find(&rows).Error
	if err != nil {
		return nil, storageErr("查询剧集记录", err)
	}
	return rows, nil
}

// CountByShow 某部剧已看的总集数
func (r *EpisodeRepository) CountByShow(catalogID int) (int64, error) {
	var count int64
	err := r.db.Model(&model.EpisodeEntry{}).
		Where("catalog_id = ?", catalogID).
		Count(&count).Error
	if err != nil {
		return 0, storageErr("统计已看集数", err)
	}
	return count, nil
}

// SetRatingReview 更新单集评分与短评
func (r *EpisodeRepository) SetRatingReview(catalogID, season, episode int, rating *float64, review string) error {
	err := r.db.Model(&model.EpisodeEntry{}).
		Where("catalog_id = ? AND season = ? AND episode = ?", catalogID, season, episode).
		Updates(map[string]interface{}{
			"rating": rating,
			"review": review,
		}).Error
	return storageErr("更新单集评价", err)
}

// dedupe 去重并保持原有顺序
func dedupe(nums []int) []int {
	seen := make(map[int]bool, len(nums))
	out := make([]int, 0, len(nums))
	for _, n := range nums {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
